package session

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/va6996/tripplanner/models"
)

func SetupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_PutGet(t *testing.T) {
	ctx := context.Background()
	store := SetupTestStore(t)

	flights := models.NewFlightSearchResult(models.StatusSuccess)
	flights.Options = append(flights.Options, models.FlightOption{FlightID: "AMADEUS-142", Airline: "LX", Price: 450})
	require.NoError(t, store.Put(ctx, "s1", KeyFlightOptions, flights))

	var got models.FlightSearchResult
	require.NoError(t, store.Get(ctx, "s1", KeyFlightOptions, &got))
	assert.Equal(t, *flights, got)

	// Overwrite replaces rather than duplicates.
	flights.Status = models.StatusNoOffersFound
	flights.Options = []models.FlightOption{}
	require.NoError(t, store.Put(ctx, "s1", KeyFlightOptions, flights))
	require.NoError(t, store.Get(ctx, "s1", KeyFlightOptions, &got))
	assert.Equal(t, models.StatusNoOffersFound, got.Status)
	assert.Empty(t, got.Options)

	snap, err := store.Snapshot(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, snap, 1)
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := SetupTestStore(t)

	var out string
	assert.ErrorIs(t, store.Get(ctx, "missing", KeyItineraryPlan, &out), ErrNotFound)
	_, err := store.Snapshot(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := SetupTestStore(t)

	require.NoError(t, store.Put(ctx, "a", KeyItineraryPlan, "plan a"))
	require.NoError(t, store.Put(ctx, "a", KeyHotelOptions, models.NewHotelSearchResult(models.StatusNoOffersFound)))
	require.NoError(t, store.Put(ctx, "b", KeyItineraryPlan, "plan b"))

	snap, err := store.Snapshot(ctx, "a")
	require.NoError(t, err)
	assert.JSONEq(t, `"plan a"`, string(snap[KeyItineraryPlan]))
	assert.Contains(t, snap, KeyHotelOptions)

	require.NoError(t, store.Clear(ctx, "a"))
	_, err = store.Snapshot(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	var plan string
	require.NoError(t, store.Get(ctx, "b", KeyItineraryPlan, &plan))
	assert.Equal(t, "plan b", plan)
}

func TestStore_ConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	store := SetupTestStore(t)

	var wg sync.WaitGroup
	for _, key := range []string{KeyFlightOptions, KeyHotelOptions} {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			assert.NoError(t, store.Put(ctx, "s", key, key))
		}(key)
	}
	wg.Wait()

	snap, err := store.Snapshot(ctx, "s")
	require.NoError(t, err)
	assert.Len(t, snap, 2)
}
