// Package server provides HTTP server initialization and lifecycle
// management for the lithograph catalog.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/petralab/lithograph/internal/catalog"
	"github.com/petralab/lithograph/internal/config"
	"github.com/petralab/lithograph/web/handlers"
)

// Deps carries the wired application components. Suggester, Runs and
// RunLister are optional; nil disables the corresponding endpoints.
type Deps struct {
	Store     *catalog.Store
	Generator handlers.ReportGenerator
	Suggester handlers.Suggester
	Runs      handlers.RunRecorder
	RunLister handlers.RunLister
}

// securityHeadersMiddleware adds security headers to all HTTP responses.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// Start initializes and starts the HTTP server. Returns the actual address
// being listened on (useful for testing with port 0) and the WebSocketHub
// for wiring report event broadcasts. The server shuts down gracefully
// when ctx is cancelled.
func Start(ctx context.Context, cfg *config.Config, deps Deps) (string, *handlers.WebSocketHub, error) {
	mux := http.NewServeMux()

	wsHub := handlers.NewWebSocketHub()
	go wsHub.Run()

	rateLimiter := handlers.NewRateLimiter(10.0, 20)
	sessions := handlers.NewSessionStore()

	catalogHandlers := handlers.NewCatalogHandlers(deps.Store, cfg)
	reportHandlers := handlers.NewReportHandlers(deps.Store, cfg, deps.Generator, deps.Runs, wsHub)
	adminHandlers := handlers.NewAdminHandlers(deps.Store, cfg, sessions, deps.Suggester, deps.RunLister)

	// Public catalog routes.
	mux.HandleFunc("GET /api/minerals", catalogHandlers.ListMinerals)
	mux.HandleFunc("GET /api/minerals/{slug}", catalogHandlers.GetMineral)
	mux.HandleFunc("POST /api/minerals/{slug}/report", reportHandlers.GenerateReport)
	mux.HandleFunc("POST /api/language", catalogHandlers.SetLanguage)

	// Session routes.
	mux.HandleFunc("POST /api/admin/login", adminHandlers.Login)
	mux.HandleFunc("POST /api/admin/logout", adminHandlers.Logout)

	// Curation routes behind the admin session.
	adminMux := http.NewServeMux()
	adminMux.HandleFunc("POST /api/admin/suggest", adminHandlers.Suggest)
	adminMux.HandleFunc("POST /api/admin/minerals", adminHandlers.Publish)
	adminMux.HandleFunc("GET /api/admin/history", adminHandlers.History)
	mux.Handle("/api/admin/", handlers.RequireAdmin(adminMux, cfg, sessions))

	// Health endpoint, used by monitoring.
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	// Report event stream.
	mux.Handle("/ws", wsHub)

	// Mineral folders: specimen images and generated report documents.
	dataFS := http.FileServer(http.Dir(cfg.Storage.DataPath))
	mux.Handle("/data/", http.StripPrefix("/data/", dataFS))

	handler := handlers.RateLimitMiddleware(mux, rateLimiter)
	handler = securityHeadersMiddleware(handler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // report builds run inside the request
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("server: failed to listen on %s: %w", addr, err)
	}

	actualAddr := listener.Addr().String()

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
		wsHub.Stop()
	}()

	log.Info().Str("addr", actualAddr).Msg("server listening")
	return actualAddr, wsHub, nil
}
