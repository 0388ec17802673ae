package journal

import (
	"sync"

	"github.com/Talha-100/hft-matching-engine/internal/types"
)

// MemoryStore keeps the N most recent trades in a bounded in-memory buffer.
type MemoryStore struct {
	mutex   sync.RWMutex
	trades  []types.Trade
	maxSize int
}

// NewMemoryStore creates an in-memory journal holding at most maxSize trades.
func NewMemoryStore(maxSize int) *MemoryStore {
	return &MemoryStore{
		trades:  make([]types.Trade, 0, maxSize),
		maxSize: maxSize,
	}
}

func (s *MemoryStore) Save(trade types.Trade) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.trades = append(s.trades, trade)
	s.trim()
	return nil
}

func (s *MemoryStore) SaveBatch(trades []types.Trade) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.trades = append(s.trades, trades...)
	s.trim()
	return nil
}

// trim drops the oldest entries once the buffer exceeds maxSize.
// Callers hold the lock.
func (s *MemoryStore) trim() {
	if len(s.trades) > s.maxSize {
		s.trades = s.trades[len(s.trades)-s.maxSize:]
	}
}

func (s *MemoryStore) GetRecent(limit int) ([]types.Trade, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if limit <= 0 || limit > len(s.trades) {
		limit = len(s.trades)
	}

	start := len(s.trades) - limit
	result := make([]types.Trade, limit)
	copy(result, s.trades[start:])
	return result, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
