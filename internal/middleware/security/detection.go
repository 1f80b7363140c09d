package security

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"

	"fintrack/internal/metrics"
)

var (
	probePatterns = []string{
		"../", "..\\", ".env", "wp-admin", "phpmyadmin",
		".php", ".git", ".ssh", "etc/passwd", "cmd.exe",
		"<script", "javascript:", "union select", "eval(",
	}
	scannerAgents = []string{
		"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan", "zgrab",
	}
	unusualMethods = []string{"TRACE", "TRACK", "DEBUG", "CONNECT"}

	defaultTrustedProxies = []string{"127.0.0.0/8", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", "::1/128"}
)

const maxURLLength = 2048

// Detector resolves client addresses behind trusted proxies and flags
// requests that look like scans.
type Detector struct {
	trustedProxies []netip.Prefix
}

// NewDetector trusts loopback and private networks plus any extra CIDRs.
func NewDetector(extraProxies ...string) (*Detector, error) {
	d := &Detector{}
	for _, cidr := range append(append([]string{}, defaultTrustedProxies...), extraProxies...) {
		if err := d.AddTrustedProxy(cidr); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// AddTrustedProxy adds a trusted proxy network
func (d *Detector) AddTrustedProxy(cidr string) error {
	p, err := netip.ParsePrefix(strings.TrimSpace(cidr))
	if err != nil {
		return fmt.Errorf("invalid CIDR %s: %w", cidr, err)
	}
	d.trustedProxies = append(d.trustedProxies, p.Masked())
	return nil
}

// Suspicious returns the reason r looks like a probe, or "" when it does not.
func (d *Detector) Suspicious(r *http.Request) string {
	path := strings.ToLower(r.URL.Path)
	query := strings.ToLower(r.URL.RawQuery)
	for _, p := range probePatterns {
		if strings.Contains(path, p) || strings.Contains(query, p) {
			return "pattern " + p
		}
	}

	ua := strings.ToLower(r.Header.Get("User-Agent"))
	for _, agent := range scannerAgents {
		if strings.Contains(ua, agent) {
			return "agent " + agent
		}
	}

	for _, m := range unusualMethods {
		if r.Method == m {
			return "method " + m
		}
	}

	if len(r.URL.String()) > maxURLLength {
		return "url too long"
	}
	if strings.Count(r.Header.Get("X-Forwarded-For"), ",") > 5 {
		return "forwarding chain too long"
	}
	return ""
}

// ClientIP returns the caller's address, honouring X-Forwarded-For and
// X-Real-IP only when the direct peer is a trusted proxy.
func (d *Detector) ClientIP(r *http.Request) string {
	peer, err := netip.ParseAddrPort(r.RemoteAddr)
	if err != nil {
		addr, perr := netip.ParseAddr(r.RemoteAddr)
		if perr != nil {
			return r.RemoteAddr
		}
		peer = netip.AddrPortFrom(addr, 0)
	}
	direct := peer.Addr().Unmap()

	if !d.isTrustedProxy(direct) {
		return direct.String()
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if a, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return a.String()
		}
	}
	if a, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return a.String()
	}
	return direct.String()
}

func (d *Detector) isTrustedProxy(ip netip.Addr) bool {
	for _, network := range d.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// Middleware logs and counts suspicious requests. When block is set they are
// answered with 404 instead of reaching the router.
func (d *Detector) Middleware(block bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if reason := d.Suspicious(r); reason != "" {
				metrics.SuspiciousRequests.Inc()
				slog.WarnContext(r.Context(), "Suspicious request",
					"component", "security",
					"reason", reason,
					"method", r.Method,
					"path", r.URL.Path,
					"client_ip", d.ClientIP(r))
				if block {
					http.NotFound(w, r)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
