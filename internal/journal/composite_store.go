package journal

import "github.com/Talha-100/hft-matching-engine/internal/types"

// CompositeStore fans writes out to every sink and reads from the first
// sink that has data. Typical layering: memory (reads) + file (audit) +
// Redis/Postgres (shared/durable).
type CompositeStore struct {
	stores []TradeStore
}

func NewCompositeStore(stores ...TradeStore) *CompositeStore {
	return &CompositeStore{stores: stores}
}

func (c *CompositeStore) Save(trade types.Trade) error {
	var lastErr error
	for _, store := range c.stores {
		if err := store.Save(trade); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (c *CompositeStore) SaveBatch(trades []types.Trade) error {
	var lastErr error
	for _, store := range c.stores {
		if err := store.SaveBatch(trades); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (c *CompositeStore) GetRecent(limit int) ([]types.Trade, error) {
	for _, store := range c.stores {
		trades, err := store.GetRecent(limit)
		if err != nil {
			continue
		}
		if len(trades) > 0 {
			return trades, nil
		}
	}
	return []types.Trade{}, nil
}

func (c *CompositeStore) Close() error {
	var lastErr error
	for _, store := range c.stores {
		if err := store.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
