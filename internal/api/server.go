package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/cors"

	"github.com/enfq/app/internal/app"
	"github.com/enfq/app/internal/auth"
	"github.com/enfq/app/internal/config"
	"github.com/enfq/app/internal/device"
)

const shutdownTimeout = 5 * time.Second

// NewServer builds the HTTP server for rt with CORS limited to the UI
// shell's origins.
func NewServer(cfg config.ServerConfig, rt *app.Runtime, logger *slog.Logger) *http.Server {
	validate := validator.New()
	authHandler := auth.NewHandler(rt.Tokens, device.Collect(), validate, logger)
	r := NewRouter(NewHandler(rt.App, validate, logger), authHandler, rt.Tokens)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Serve runs srv until ctx is cancelled, then shuts it down gracefully.
func Serve(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
