// Package metrics exposes Prometheus counters for letter composition and delivery.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LettersCommitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "letterbot_letters_committed_total",
		Help: "Total letters persisted after a delay was chosen.",
	})
	CommitFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "letterbot_commit_failures_total",
		Help: "Total letter commits rejected by the store.",
	})
	DraftsCancelled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "letterbot_drafts_cancelled_total",
		Help: "Total drafts cancelled by the user.",
	})
	ActiveDrafts = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "letterbot_active_drafts",
		Help: "Drafts currently being composed.",
	})

	LettersDelivered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "letterbot_letters_delivered_total",
		Help: "Total letters sent by the delivery sweep.",
	})
	DeliveryFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "letterbot_delivery_failures_total",
		Help: "Total letters whose delivery send failed (not retried).",
	})
	Sweeps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "letterbot_delivery_sweeps_total",
		Help: "Delivery sweeps by result.",
	}, []string{"result"})
)

// Register registers all collectors with the default registry.
func Register() {
	prometheus.MustRegister(
		LettersCommitted, CommitFailures, DraftsCancelled, ActiveDrafts,
		LettersDelivered, DeliveryFailures, Sweeps,
	)
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Metrics endpoint listening", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Metrics server shutdown failed", "error", err)
		}
		return nil
	}
}
