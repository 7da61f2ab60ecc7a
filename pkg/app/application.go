package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/julienschmidt/httprouter"

	"moradia/pkg/config"
	"moradia/pkg/contracts"
	"moradia/pkg/middleware"
)

// Application assembles the router, middleware chain and HTTP server, and
// owns their lifecycle.
type Application struct {
	cfg     *config.Config
	server  *http.Server
	limiter *middleware.IPRateLimiter
}

func New(cfg *config.Config, handlers ...contracts.Handler) *Application {
	router := httprouter.New()
	for _, h := range handlers {
		h.RegisterRoutes(router)
	}

	// Anything outside the API surface falls through to the static frontend.
	router.NotFound = spaHandler(cfg.StaticDir)

	limiter := middleware.NewIPRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow, cfg.Log)

	chain := middleware.Recovery(cfg.Log)(
		middleware.RequestLogging(cfg.Log)(
			middleware.IPRateLimit(limiter)(
				middleware.RequestTimeout(cfg.RequestTimeout)(
					middleware.ContentTypeValidation(cfg.Log)(
						middleware.MaxRequestSize(int64(cfg.MaxRequestSize))(router),
					),
				),
			),
		),
	)

	return &Application{
		cfg:     cfg,
		limiter: limiter,
		server: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      chain,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}
}

// Run serves until SIGINT/SIGTERM, then drains in-flight requests.
func (a *Application) Run() {
	errCh := make(chan error, 1)
	go func() {
		a.cfg.Log.Info("Server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		a.cfg.Log.Fatal("Server failed", "error", err)
	case sig := <-quit:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig.String())
	}

	a.shutdown()
}

func (a *Application) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
	}
	a.limiter.Stop()

	a.cfg.Log.Info("Server stopped")
}

// spaHandler serves files from staticDir and falls back to index.html for
// unknown paths, so client-side routes resolve after a hard refresh.
func spaHandler(staticDir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Join(staticDir, filepath.Clean("/"+r.URL.Path))

		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			http.ServeFile(w, r, name)
			return
		}

		index := filepath.Join(staticDir, "index.html")
		if _, err := os.Stat(index); err != nil {
			http.Error(w, "index.html not found", http.StatusNotFound)
			return
		}
		http.ServeFile(w, r, index)
	})
}
