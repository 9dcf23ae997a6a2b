package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 5 * time.Second

// NewRouter wires the game API routes.
func NewRouter(logger *slog.Logger, gameUseCase gameUseCase) http.Handler {
	ping := NewPingHandler(logger)
	games := NewGameHandlers(logger, gameUseCase)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/ping", ping.PingHandler)

	r.Route("/games", func(r chi.Router) {
		r.Post("/", games.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", games.Get)
			r.Post("/turn", games.MakeTurn)
			r.Post("/power-ups", games.UsePowerUp)
			r.Post("/restart", games.Restart)
			r.Delete("/", games.Leave)
		})
	})

	return r
}

// Start serves handler on port until ctx is done.
func Start(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx) //nolint: contextcheck // parent is already canceled
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
