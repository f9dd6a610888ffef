package dataset

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certmap/internal/domain"
	"certmap/internal/ports"
)

type sourceFunc func(ctx context.Context) ([]ports.CertificationRow, error)

func (f sourceFunc) FetchCertificationRows(ctx context.Context) ([]ports.CertificationRow, error) {
	return f(ctx)
}

func rowsOf(rows ...ports.CertificationRow) sourceFunc {
	return func(context.Context) ([]ports.CertificationRow, error) { return rows, nil }
}

func newTestStore() *Store {
	return NewStore(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestStore_StartsWithReferenceData(t *testing.T) {
	snap := newTestStore().Snapshot()
	assert.Equal(t, ProvenanceStatic, snap.Provenance)
	assert.False(t, snap.Syncing)
	require.Len(t, snap.Sensors, 3)
	assert.Equal(t, domain.SensorOpenArea, snap.Sensors[0].Slug)
}

func TestStore_SyncReplacesDataset(t *testing.T) {
	store := newTestStore()
	report, err := store.Sync(context.Background(), rowsOf(row("entry", "FRA", "France", domain.StatusCertified)))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Rows)

	snap := store.Snapshot()
	assert.Equal(t, ProvenanceRemote, snap.Provenance)
	assert.Empty(t, snap.SyncError)
	require.Len(t, snap.Sensors, 1)
	assert.Equal(t, domain.SensorEntry, snap.Sensors[0].Slug)
	assert.False(t, snap.SyncedAt.IsZero())
}

func TestStore_SoftFailuresKeepReferenceData(t *testing.T) {
	orphan := row("entry", "FRA", "France", domain.StatusCertified)
	orphan.Sensor = nil

	tests := []struct {
		name    string
		source  sourceFunc
		wantErr error
		wantMsg string
	}{
		{
			name:    "zero rows",
			source:  rowsOf(),
			wantErr: ErrNoData,
			wantMsg: "No certification records returned from the remote store yet.",
		},
		{
			name:    "all rows unmappable",
			source:  rowsOf(orphan),
			wantErr: ErrUnmappable,
			wantMsg: "We could not map remote certification data with the current schema.",
		},
		{
			name: "query error",
			source: func(context.Context) ([]ports.CertificationRow, error) {
				return nil, errors.New("permission denied for table certification_records")
			},
			wantMsg: "permission denied for table certification_records",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newTestStore()
			_, err := store.Sync(context.Background(), tc.source)
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}

			snap := store.Snapshot()
			assert.Equal(t, ProvenanceStatic, snap.Provenance)
			assert.Equal(t, tc.wantMsg, snap.SyncError)
			assert.False(t, snap.Syncing)
			assert.Len(t, snap.Sensors, 3)
		})
	}
}

func TestStore_SyncRunsOnce(t *testing.T) {
	store := newTestStore()
	calls := 0
	src := sourceFunc(func(context.Context) ([]ports.CertificationRow, error) {
		calls++
		return nil, errors.New("network unreachable")
	})

	_, err := store.Sync(context.Background(), src)
	require.Error(t, err)
	_, err = store.Sync(context.Background(), src)
	require.ErrorIs(t, err, ErrAlreadySynced)
	assert.Equal(t, 1, calls, "failures are not retried")
}

func TestStore_LateResponseAfterCloseIsDiscarded(t *testing.T) {
	store := newTestStore()
	src := sourceFunc(func(context.Context) ([]ports.CertificationRow, error) {
		assert.True(t, store.Snapshot().Syncing, "syncing flag is visible while in flight")
		store.Close()
		return []ports.CertificationRow{row("entry", "FRA", "France", domain.StatusCertified)}, nil
	})

	_, err := store.Sync(context.Background(), src)
	require.ErrorIs(t, err, ErrClosed)

	snap := store.Snapshot()
	assert.Equal(t, ProvenanceStatic, snap.Provenance)
	assert.Len(t, snap.Sensors, 3)
}

func TestStore_DeadlineIsRecordedAsFailure(t *testing.T) {
	store := newTestStore()
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	src := sourceFunc(func(ctx context.Context) ([]ports.CertificationRow, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	_, err := store.Sync(ctx, src)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	snap := store.Snapshot()
	assert.Equal(t, ProvenanceStatic, snap.Provenance)
	assert.Equal(t, "Timed out waiting for the remote store.", snap.SyncError)
	assert.False(t, snap.Syncing)
}
