// Package journal records every trade the engine produces in one or more
// sinks. Journalling is an audit trail for the simulation run; the book
// itself never reads it back, so sink failures must never affect matching.
package journal

import "github.com/Talha-100/hft-matching-engine/internal/types"

// TradeStore abstracts a trade journal sink. Implementations: in-memory
// ring, append-only file, Redis, PostgreSQL.
type TradeStore interface {
	// Save records a single trade
	Save(trade types.Trade) error

	// SaveBatch records the trades one match pass produced
	SaveBatch(trades []types.Trade) error

	// GetRecent retrieves up to limit of the most recently recorded trades
	GetRecent(limit int) ([]types.Trade, error)

	// Close releases any resources held by the store
	Close() error
}
