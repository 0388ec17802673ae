package engine_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Talha-100/hft-matching-engine/internal/engine"
	"github.com/Talha-100/hft-matching-engine/internal/journal"
	"github.com/Talha-100/hft-matching-engine/internal/logger"
	"github.com/Talha-100/hft-matching-engine/internal/types"
)

func startEngine(t *testing.T, store journal.TradeStore) *engine.Engine {
	t.Helper()

	eng := engine.New(store, logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go eng.Run(ctx)
	return eng
}

func TestPlaceReturnsAssignedID(t *testing.T) {
	eng := startEngine(t, nil)

	id1, trades, err := eng.Place(types.Buy, 100.0, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id1)
	assert.Empty(t, trades)

	id2, _, err := eng.Place(types.Buy, 99.0, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), id2)
}

func TestPlaceReturnsProducedTrades(t *testing.T) {
	eng := startEngine(t, nil)

	buyID, trades, err := eng.Place(types.Buy, 100.0, 10)
	require.NoError(t, err)
	require.Empty(t, trades)

	sellID, trades, err := eng.Place(types.Sell, 100.0, 4)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, buyID, trades[0].BuyOrderID)
	assert.Equal(t, sellID, trades[0].SellOrderID)
	assert.Equal(t, 100.0, trades[0].Price)
	assert.Equal(t, 4, trades[0].Quantity)

	// The next placement sees none of the earlier trades.
	_, trades, err = eng.Place(types.Buy, 50.0, 1)
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestCancel(t *testing.T) {
	eng := startEngine(t, nil)

	id, _, err := eng.Place(types.Sell, 105.0, 10)
	require.NoError(t, err)

	ok, err := eng.Cancel(id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = eng.Cancel(id)
	require.NoError(t, err)
	assert.False(t, ok, "cancel of an already-cancelled order reports not found")
}

func TestConcurrentPlacersSerialise(t *testing.T) {
	eng := startEngine(t, nil)

	const placers = 8
	const perPlacer = 25

	var wg sync.WaitGroup
	ids := make(chan uint64, placers*perPlacer)

	for p := 0; p < placers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			side := types.Buy
			price := 90.0 // deep bid, never crosses
			if p%2 == 1 {
				side = types.Sell
				price = 110.0
			}
			for i := 0; i < perPlacer; i++ {
				id, _, err := eng.Place(side, price, 1)
				if err != nil {
					return
				}
				ids <- id
			}
		}(p)
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint64]bool)
	for id := range ids {
		assert.False(t, seen[id], "order id %d assigned twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, placers*perPlacer)
}

func TestStoppedEngineRejectsCommands(t *testing.T) {
	eng := engine.New(nil, logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		eng.Run(ctx)
		close(done)
	}()

	cancel()
	<-done

	_, _, err := eng.Place(types.Buy, 100.0, 1)
	assert.ErrorIs(t, err, engine.ErrStopped)

	_, err = eng.Cancel(1)
	assert.ErrorIs(t, err, engine.ErrStopped)
}

func TestTradesAreJournalled(t *testing.T) {
	store := journal.NewMemoryStore(100)
	eng := startEngine(t, store)

	_, _, err := eng.Place(types.Buy, 100.0, 5)
	require.NoError(t, err)
	_, trades, err := eng.Place(types.Sell, 100.0, 5)
	require.NoError(t, err)
	require.Len(t, trades, 1)

	// Journalling is asynchronous; wait for it to land.
	require.Eventually(t, func() bool {
		recorded, err := store.GetRecent(10)
		return err == nil && len(recorded) == 1
	}, 2*time.Second, 10*time.Millisecond)

	recorded, err := store.GetRecent(10)
	require.NoError(t, err)
	assert.Equal(t, trades[0].Price, recorded[0].Price)
	assert.Equal(t, trades[0].Quantity, recorded[0].Quantity)
}
