package backend

import (
	"errors"
	"fmt"
	"strings"

	"fintrack/internal/config"
)

// Types lists the supported backends in preference order.
func Types() []BackendType {
	return []BackendType{SQLiteBackend, MemoryBackend}
}

// ParseBackendType accepts a backend name in any case.
func ParseBackendType(s string) (BackendType, error) {
	bt := BackendType(strings.ToLower(strings.TrimSpace(s)))
	if !bt.IsValid() {
		names := make([]string, 0, len(Types()))
		for _, t := range Types() {
			names = append(names, t.String())
		}
		return "", fmt.Errorf("unknown data backend %q (want one of %s)", s, strings.Join(names, ", "))
	}
	return bt, nil
}

// FromAppConfig selects the record store described by the application config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	bt, err := ParseBackendType(appConfig.DataBackend)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Type:          bt,
		SQLiteDBPath:  appConfig.SQLiteDBPath,
		DataDirectory: appConfig.DataDir,
	}
	return cfg, cfg.Validate()
}

// Validate reports every problem with c at once.
func (c Config) Validate() error {
	var errs []error
	if !c.Type.IsValid() {
		errs = append(errs, fmt.Errorf("invalid backend type: %s", c.Type))
	}
	if c.Type == SQLiteBackend && strings.TrimSpace(c.SQLiteDBPath) == "" {
		errs = append(errs, errors.New("SQLite database path is required for sqlite backend"))
	}
	return errors.Join(errs...)
}
