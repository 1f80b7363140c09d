package backend

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/memory"
	"fintrack/internal/storage"
)

// Factory builds a Backend from configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type constructor func(ctx context.Context, config Config) (*BackendResult, error)

// DefaultFactory builds the stores shipped with fintrack.
type DefaultFactory struct {
	logger       *slog.Logger
	constructors map[BackendType]constructor
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	f := &DefaultFactory{logger: logger.With("component", "backend")}
	f.constructors = map[BackendType]constructor{
		SQLiteBackend: f.openSQLite,
		MemoryBackend: f.openMemory,
	}
	return f
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	open, ok := f.constructors[config.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	return open(ctx, config)
}

func (f *DefaultFactory) openSQLite(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite repository: %w", err)
	}
	if err := repo.Ping(ctx); err != nil {
		repo.Close()
		return nil, fmt.Errorf("ping sqlite repository: %w", err)
	}

	f.logger.InfoContext(ctx, "Opened SQLite record store", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Backend: repo,
		Cleanup: func() error {
			f.logger.Info("Closing SQLite record store", "db_path", config.SQLiteDBPath)
			return repo.Close()
		},
	}, nil
}

func (f *DefaultFactory) openMemory(ctx context.Context, config Config) (*BackendResult, error) {
	dir := config.DataDirectory
	if dir == "" {
		dir = "data"
	}
	store := memory.NewFromFiles(dir)

	f.logger.InfoContext(ctx, "Opened in-memory record store", "data_directory", dir)
	return &BackendResult{Backend: store}, nil
}
