// Package httpapi exposes the dialog code hook and worker trigger over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/dining-concierge/dining/contract"
	"github.com/tanpawarit/dining-concierge/dining/fulfillment"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type TurnHandler interface {
	HandleTurn(ctx context.Context, turn contractx.Turn) (contractx.TurnResponse, error)
}

type BatchProcessor interface {
	ProcessBatch(ctx context.Context) (fulfillment.Report, error)
}

// Deps wires the optional surfaces; a nil field leaves its route unmounted.
type Deps struct {
	Dialog TurnHandler
	Worker BatchProcessor
	Logger zerolog.Logger
}

type api struct {
	dialog TurnHandler
	worker BatchProcessor
	logger zerolog.Logger
}

func NewRouter(cfg Config, deps Deps) http.Handler {
	a := &api{dialog: deps.Dialog, worker: deps.Worker, logger: deps.Logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/healthz", a.healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		if a.dialog != nil {
			r.With(rateLimit(cfg)).Post("/dialog/hook", a.dialogHook)
		}
		if a.worker != nil {
			r.Post("/fulfillment/invoke", a.invoke)
		}
	})

	return otelhttp.NewHandler(r, "dining.http")
}

func NewServer(cfg Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}
}

// ListenAndServe runs srv until ctx is cancelled, then shuts it down gracefully.
func ListenAndServe(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return <-errCh
}

func rateLimit(cfg Config) func(http.Handler) http.Handler {
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = 120
	}
	window := cfg.RateWindow
	if window <= 0 {
		window = time.Minute
	}
	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate_limit_exceeded"})
		}),
	)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
