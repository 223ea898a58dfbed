package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// healthHandler answers liveness probes.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// healthMux serves /health and, when a metrics handler is given, /metrics.
func (a *App) healthMux(metrics http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	if metrics != nil {
		mux.Handle("/metrics", metrics)
	}
	return mux
}

// startHealthcheckServer runs the health server in the background.
func (a *App) startHealthcheckServer(port int, metrics http.Handler) {
	a.logger.Debug("Configuring health check server.")
	addr := fmt.Sprintf(":%d", port)
	a.httpServer = &http.Server{
		Addr:              addr,
		Handler:           a.healthMux(metrics),
		ReadHeaderTimeout: 5 * time.Second,
	}

	srv := a.httpServer
	go func() {
		a.logger.Info("🩺 Health check server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		// ListenAndServe returns ErrServerClosed on graceful shutdown.
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Health check server failed unexpectedly", "error", err)
		}
	}()
}

func (a *App) closeHealthcheckServer(ctx context.Context) error {
	if a.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	a.logger.Info("🩺 Shutting down health check server...")
	err := a.httpServer.Shutdown(ctx)
	a.httpServer = nil
	if err != nil {
		a.logger.Error("Health check server shutdown failed", "error", err)
		return err
	}
	return nil
}
