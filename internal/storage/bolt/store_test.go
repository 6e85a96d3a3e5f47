package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lotpool/internal/event"
	"lotpool/internal/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "lotpool.bolt"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
}

func TestRoundPutGet(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	drawTime := time.Date(2026, time.March, 1, 18, 0, 0, 0, time.UTC)

	record := storage.RoundRecord{
		ID:           "r1",
		Name:         "Friday Pot",
		EntryFee:     10,
		DrawTime:     drawTime,
		Creator:      "alice",
		Participants: []string{"bob"},
		PrizePool:    10,
		State:        "OPEN",
	}
	require.NoError(t, store.SaveRound(ctx, record))

	got, err := store.GetRound(ctx, "r1")
	require.NoError(t, err)
	require.Equal(t, record.Name, got.Name)
	require.Equal(t, record.Participants, got.Participants)
	require.True(t, got.DrawTime.Equal(drawTime))

	_, err = store.GetRound(ctx, "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEventJournalSequencing(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	ts := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	kinds := []event.Kind{event.KindRoundCreated, event.KindEntered, event.KindStateChanged}
	for i, kind := range kinds {
		evt, err := store.AppendEvent(ctx, event.Event{RoundID: "r1", Timestamp: ts, Kind: kind})
		require.NoError(t, err)
		require.Equal(t, uint64(i+1), evt.Seq)
	}

	other, err := store.AppendEvent(ctx, event.Event{RoundID: "r2", Timestamp: ts, Kind: event.KindRoundCreated})
	require.NoError(t, err)
	require.Equal(t, uint64(1), other.Seq, "sequences are per round")

	events, err := store.ListEvents(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, events, len(kinds))
	for i, evt := range events {
		require.Equal(t, kinds[i], evt.Kind)
		require.Equal(t, uint64(i+1), evt.Seq)
	}

	empty, err := store.ListEvents(ctx, "unknown")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestListRounds(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	for _, id := range []string{"b", "a"} {
		require.NoError(t, store.SaveRound(ctx, storage.RoundRecord{ID: id, State: "OPEN", DrawTime: time.Now()}))
	}

	records, err := store.ListRounds(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
}
