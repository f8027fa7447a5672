package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/susu3304/votebot/internal/poll"
	"github.com/susu3304/votebot/internal/voting"
)

// PollService is what the API reads from and acts on.
type PollService interface {
	ActivePoll(ctx context.Context) (*poll.Poll, error)
	VotesDocument(ctx context.Context, actorID string) (voting.Document, error)
	ClosePoll(ctx context.Context, actorID string) (string, error)
	History(ctx context.Context, limit int) ([]*poll.Poll, error)
}

type API struct {
	router *mux.Router
	polls  PollService
	tokens *Issuer
	bind   string
	log    *slog.Logger
}

func New(bind string, polls PollService, tokens *Issuer, log *slog.Logger) *API {
	api := &API{
		router: mux.NewRouter(),
		polls:  polls,
		tokens: tokens,
		bind:   bind,
		log:    log,
	}

	api.setupRoutes()
	return api
}

func (a *API) setupRoutes() {
	a.router.HandleFunc("/", a.handleHealth).Methods("GET")

	// Public endpoints
	a.router.HandleFunc("/api/poll", a.handleGetPoll).Methods("GET")
	a.router.HandleFunc("/api/history", a.handleHistory).Methods("GET")

	// Protected endpoints
	protected := a.router.PathPrefix("/api/poll").Subrouter()
	protected.Use(a.authMiddleware)

	protected.HandleFunc("/export", a.handleExport).Methods("GET")
	protected.HandleFunc("/close", a.handleClose).Methods("POST")
}

// Handler returns the router wrapped with CORS.
func (a *API) Handler() http.Handler {
	// AllowCredentials stays false with a wildcard origin; tokens travel in
	// the Authorization header.
	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}
	return cors.New(corsOptions).Handler(a.router)
}

// Start serves until ctx is cancelled.
func (a *API) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.bind,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("api server listening", "addr", a.bind)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
