// Package engine serialises all order book access onto a single goroutine.
// Sessions submit commands over a channel and block on a per-command reply,
// so the book itself needs no locking and the recent-trades drain always
// happens on the goroutine that just ran the match.
package engine

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Talha-100/hft-matching-engine/internal/book"
	"github.com/Talha-100/hft-matching-engine/internal/journal"
	"github.com/Talha-100/hft-matching-engine/internal/types"
)

// ErrStopped is returned for commands submitted after the engine loop exited.
var ErrStopped = errors.New("engine stopped")

type placeCmd struct {
	side     types.SideType
	price    float64
	quantity int
	reply    chan placeResult
}

type placeResult struct {
	orderID uint64
	trades  []types.Trade
}

type cancelCmd struct {
	orderID uint64
	reply   chan bool
}

// Engine owns the shared order book. One Engine per server instance.
type Engine struct {
	book    *book.OrderBook
	journal journal.TradeStore
	log     *zap.SugaredLogger

	places  chan placeCmd
	cancels chan cancelCmd
	done    chan struct{}
}

// New creates an engine around a fresh book. store may be nil when no
// trade journalling is configured.
func New(store journal.TradeStore, log *zap.SugaredLogger) *Engine {
	return &Engine{
		book:    book.NewOrderBook(),
		journal: store,
		log:     log,
		places:  make(chan placeCmd),
		cancels: make(chan cancelCmd),
		done:    make(chan struct{}),
	}
}

// Run consumes commands until ctx is cancelled. It must run on exactly one
// goroutine; every book mutation happens here.
func (e *Engine) Run(ctx context.Context) {
	defer close(e.done)

	for {
		select {
		case <-ctx.Done():
			buys, sells := e.book.Depth()
			e.log.Infow("Engine stopped",
				"resting_buys", buys,
				"resting_sells", sells,
				"total_trades", e.book.TradeCount(),
			)
			return

		case cmd := <-e.places:
			orderID := e.book.AddOrder(cmd.side, cmd.price, cmd.quantity)
			e.book.MatchOrders()
			trades := e.book.RecentTrades()
			e.journalTrades(trades)
			cmd.reply <- placeResult{orderID: orderID, trades: trades}

		case cmd := <-e.cancels:
			cmd.reply <- e.book.CancelOrder(cmd.orderID)
		}
	}
}

// Place adds a limit order, matches, and returns the assigned ID together
// with the trades this order produced.
func (e *Engine) Place(side types.SideType, price float64, quantity int) (uint64, []types.Trade, error) {
	cmd := placeCmd{side: side, price: price, quantity: quantity, reply: make(chan placeResult, 1)}
	select {
	case e.places <- cmd:
	case <-e.done:
		return 0, nil, ErrStopped
	}
	select {
	case res := <-cmd.reply:
		return res.orderID, res.trades, nil
	case <-e.done:
		return 0, nil, ErrStopped
	}
}

// Cancel removes a resting order. Returns false when no such order rests.
func (e *Engine) Cancel(orderID uint64) (bool, error) {
	cmd := cancelCmd{orderID: orderID, reply: make(chan bool, 1)}
	select {
	case e.cancels <- cmd:
	case <-e.done:
		return false, ErrStopped
	}
	select {
	case ok := <-cmd.reply:
		return ok, nil
	case <-e.done:
		return false, ErrStopped
	}
}

// journalTrades hands a match pass's trades to the journal off-loop so a
// slow sink cannot stall matching.
func (e *Engine) journalTrades(trades []types.Trade) {
	if e.journal == nil || len(trades) == 0 {
		return
	}
	go func() {
		if err := e.journal.SaveBatch(trades); err != nil {
			e.log.Warnw("Trade journal write failed", "error", err, "trades", len(trades))
		}
	}()
}

// TradeCount reports the total number of trades produced so far. It reads
// the book without going through the loop, so call it only after Run has
// exited or from tests that own the sequencing.
func (e *Engine) TradeCount() int {
	return e.book.TradeCount()
}
