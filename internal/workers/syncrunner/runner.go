package syncrunner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"certmap/internal/platform/metrics"
	"certmap/internal/ports"
	"certmap/internal/services/dataset"
)

// Result is the outcome of the one-shot sync.
type Result struct {
	Report dataset.HydrateReport
	Err    error
}

// Outcome labels a sync result for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, dataset.ErrNoData):
		return "no_data"
	case errors.Is(err, dataset.ErrUnmappable):
		return "unmappable"
	case errors.Is(err, dataset.ErrClosed):
		return "discarded"
	case errors.Is(err, dataset.ErrAlreadySynced):
		return "skipped"
	}
	return "error"
}

// Start launches the remote sync in the background and returns a channel
// that yields its single result. A nil source means remote sync is not
// configured: nothing runs and the channel is closed immediately.
func Start(ctx context.Context, store *dataset.Store, source ports.CertificationSource, timeout time.Duration, m *metrics.Metrics, log *slog.Logger) <-chan Result {
	done := make(chan Result, 1)
	if source == nil {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		res := Run(ctx, store, source, timeout, m, log)
		done <- res
	}()
	return done
}

// Run performs the sync synchronously. A zero timeout leaves the fetch
// without a deadline. No retry is attempted.
func Run(ctx context.Context, store *dataset.Store, source ports.CertificationSource, timeout time.Duration, m *metrics.Metrics, log *slog.Logger) Result {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	started := time.Now()
	report, err := store.Sync(ctx, source)
	outcome := Outcome(err)

	if m != nil {
		m.ObserveSync(outcome, report.Dropped, store.Snapshot().Provenance == dataset.ProvenanceRemote)
	}
	attrs := []any{"outcome", outcome, "rows", report.Rows, "dropped_rows", report.Dropped, "elapsed", time.Since(started)}
	switch {
	case err != nil && outcome != "discarded":
		log.Warn("remote sync failed; keeping bundled data", append(attrs, "error", err)...)
	case err != nil:
		log.Info("remote sync result discarded", attrs...)
	case report.Dropped > 0:
		log.Warn("remote sync dropped rows with missing references", attrs...)
	default:
		log.Info("remote sync finished", attrs...)
	}
	return Result{Report: report, Err: err}
}
