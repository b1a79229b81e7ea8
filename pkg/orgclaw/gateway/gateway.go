// Package gateway is the admin HTTP surface: read-only views over users,
// lists, events and the audit log, plus health and operational status. It is
// meant for operators and dashboards, never for end users.
package gateway

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/bus"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/channels"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/safety"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/scheduler"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/store"
)

// Config holds the gateway configuration.
type Config struct {
	// Address is the listen address (empty disables the gateway).
	Address string `yaml:"address"`

	// APIKey guards everything but /health (env API_SECRET_KEY).
	APIKey string `yaml:"-"`

	// HealthToken optionally guards /health (env HEALTH_CHECK_TOKEN).
	HealthToken string `yaml:"-"`

	// CORSOrigins lists allowed origins (env CORS_ORIGINS, comma-separated).
	CORSOrigins []string `yaml:"cors_origins"`
}

// Gateway serves the admin API.
type Gateway struct {
	cfg       Config
	store     *store.Store
	sched     *scheduler.Scheduler
	bus       *bus.MessageBus
	breaker   *safety.CircuitBreaker
	chans     *channels.Manager
	server    *http.Server
	logger    *slog.Logger
	startedAt time.Time
}

// New creates the gateway.
func New(cfg Config, st *store.Store, sched *scheduler.Scheduler, b *bus.MessageBus,
	breaker *safety.CircuitBreaker, chans *channels.Manager, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		cfg:     cfg,
		store:   st,
		sched:   sched,
		bus:     b,
		breaker: breaker,
		chans:   chans,
		logger:  logger.With("component", "gateway"),
	}
}

// handler assembles the routed mux with the middleware chain applied.
func (g *Gateway) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", g.handleHealth)
	mux.HandleFunc("GET /users", g.handleUsers)
	mux.HandleFunc("GET /users/{id}/lists", g.handleUserLists)
	mux.HandleFunc("GET /users/{id}/events", g.handleUserEvents)
	mux.HandleFunc("GET /audit", g.handleAudit)
	mux.HandleFunc("GET /api/status", g.handleStatus)
	return g.securityHeaders(g.cors(g.auth(mux)))
}

// Start begins serving. Returns immediately; errors after bind are logged.
func (g *Gateway) Start(ctx context.Context) error {
	g.startedAt = time.Now()
	g.server = &http.Server{Addr: g.cfg.Address, Handler: g.handler()}

	if g.cfg.APIKey == "" {
		host, _, _ := net.SplitHostPort(g.cfg.Address)
		ip := net.ParseIP(host)
		loopback := host == "localhost" || (ip != nil && ip.IsLoopback())
		if !loopback {
			g.logger.Warn("gateway has no API key and is bound to a non-loopback address",
				"address", g.cfg.Address)
		}
	}

	go func() {
		if err := g.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			g.logger.Error("gateway server error", "error", err)
		}
	}()
	g.logger.Info("gateway started", "address", g.cfg.Address)
	return nil
}

// Stop shuts the server down gracefully.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	return g.server.Shutdown(ctx)
}

// compareTokens hashes both sides before the constant-time compare so length
// never leaks.
func compareTokens(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:]) == 1
}

// auth requires X-API-Key on everything but /health when a key is set.
func (g *Gateway) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.cfg.APIKey == "" || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		if !compareTokens(r.Header.Get("X-API-Key"), g.cfg.APIKey) {
			g.writeError(w, http.StatusUnauthorized, "invalid api key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// cors applies the configured origin allowlist.
func (g *Gateway) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(g.cfg.CORSOrigins) == 0 {
			next.ServeHTTP(w, r)
			return
		}
		origin := r.Header.Get("Origin")
		for _, o := range g.cfg.CORSOrigins {
			if o == "*" || o == origin {
				if o == "*" {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				} else {
					w.Header().Set("Access-Control-Allow-Origin", origin)
				}
				w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "X-API-Key, X-Health-Token")
				break
			}
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Gateway) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
