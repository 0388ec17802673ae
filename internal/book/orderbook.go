package book

import (
	"sort"
	"time"

	"github.com/Talha-100/hft-matching-engine/internal/types"
)

/*
Data structure notes.
Two slices, one per side, re-sorted by (price, id) before each match pass.
A heap keyed on (price, id) would avoid the sort, but cancellation needs an
efficient find, and at the session-driven order rates here a full sort of a
few hundred resting orders is cheaper than maintaining an indexed heap.
The observable trade order only depends on price-time priority, which the
sort comparators pin down exactly.
*/

// OrderBook is a single-instrument two-sided limit order book with
// price-time priority. It is not safe for concurrent use: the engine
// goroutine owns it and serialises every call.
type OrderBook struct {
	buys        []*types.Order
	sells       []*types.Order
	nextOrderID uint64

	// trades is append-only. recentMark is the drain cursor: everything at
	// index >= recentMark was produced since the last RecentTrades call.
	trades     []types.Trade
	recentMark int
}

func NewOrderBook() *OrderBook {
	return &OrderBook{
		nextOrderID: 1,
	}
}

// AddOrder appends a limit order to the requested side and returns its
// assigned ID. It does not match; callers invoke MatchOrders separately.
// Validation (positive price and quantity) happens at the session layer.
func (ob *OrderBook) AddOrder(side types.SideType, price float64, quantity int) uint64 {
	order := types.NewOrder(ob.nextOrderID, side, price, quantity)
	ob.nextOrderID++

	if side == types.Buy {
		ob.buys = append(ob.buys, order)
	} else {
		ob.sells = append(ob.sells, order)
	}
	return order.ID
}

// CancelOrder removes the order with the given ID from whichever side holds
// it. Returns false when no such order rests in the book (already filled,
// already cancelled, or never existed).
func (ob *OrderBook) CancelOrder(orderID uint64) bool {
	if removed, rest := removeByID(ob.buys, orderID); removed {
		ob.buys = rest
		return true
	}
	if removed, rest := removeByID(ob.sells, orderID); removed {
		ob.sells = rest
		return true
	}
	return false
}

func removeByID(side []*types.Order, orderID uint64) (bool, []*types.Order) {
	for i, order := range side {
		if order.ID == orderID {
			return true, append(side[:i], side[i+1:]...)
		}
	}
	return false, side
}

// MatchOrders crosses the book until the best buy no longer meets the best
// sell. Trades execute at the resting sell price, so an aggressive buy
// crossing a cheaper sell fills at the better (lower) price. Partial fills
// decrement the surviving order in place; it keeps its ID and therefore
// its time priority.
func (ob *OrderBook) MatchOrders() {
	ob.sortOrders()

	for len(ob.buys) > 0 && len(ob.sells) > 0 {
		bestBuy := ob.buys[0]
		bestSell := ob.sells[0]

		if bestBuy.Price < bestSell.Price {
			break
		}

		quantity := bestBuy.Quantity
		if bestSell.Quantity < quantity {
			quantity = bestSell.Quantity
		}

		ob.trades = append(ob.trades, types.Trade{
			BuyOrderID:  bestBuy.ID,
			SellOrderID: bestSell.ID,
			Price:       bestSell.Price,
			Quantity:    quantity,
			Timestamp:   time.Now(),
		})

		bestBuy.Quantity -= quantity
		bestSell.Quantity -= quantity

		if bestBuy.Quantity == 0 {
			ob.buys = ob.buys[1:]
		}
		if bestSell.Quantity == 0 {
			ob.sells = ob.sells[1:]
		}
	}
}

// sortOrders restores price-time priority on both sides: buys best-first by
// descending price, sells best-first by ascending price, ties broken by
// lower ID (earlier arrival).
func (ob *OrderBook) sortOrders() {
	sort.SliceStable(ob.buys, func(i, j int) bool {
		if ob.buys[i].Price != ob.buys[j].Price {
			return ob.buys[i].Price > ob.buys[j].Price
		}
		return ob.buys[i].ID < ob.buys[j].ID
	})

	sort.SliceStable(ob.sells, func(i, j int) bool {
		if ob.sells[i].Price != ob.sells[j].Price {
			return ob.sells[i].Price < ob.sells[j].Price
		}
		return ob.sells[i].ID < ob.sells[j].ID
	})
}

// RecentTrades returns every trade appended since the previous call and
// advances the drain cursor. Single-consumer: only the caller that just
// ran MatchOrders should drain, immediately afterwards.
func (ob *OrderBook) RecentTrades() []types.Trade {
	recent := ob.trades[ob.recentMark:]
	ob.recentMark = len(ob.trades)
	return recent
}

// TradeHistory returns the full append-only trade log.
func (ob *OrderBook) TradeHistory() []types.Trade {
	return ob.trades
}

// TradeCount reports how many trades the book has produced in total.
func (ob *OrderBook) TradeCount() int {
	return len(ob.trades)
}

// BestBid returns the highest resting buy price, if any buys rest.
func (ob *OrderBook) BestBid() (float64, bool) {
	if len(ob.buys) == 0 {
		return 0, false
	}
	best := ob.buys[0].Price
	for _, order := range ob.buys[1:] {
		if order.Price > best {
			best = order.Price
		}
	}
	return best, true
}

// BestAsk returns the lowest resting sell price, if any sells rest.
func (ob *OrderBook) BestAsk() (float64, bool) {
	if len(ob.sells) == 0 {
		return 0, false
	}
	best := ob.sells[0].Price
	for _, order := range ob.sells[1:] {
		if order.Price < best {
			best = order.Price
		}
	}
	return best, true
}

// Depth reports the number of resting orders on each side.
func (ob *OrderBook) Depth() (buys, sells int) {
	return len(ob.buys), len(ob.sells)
}

// FindOrder returns the resting order with the given ID, or nil.
func (ob *OrderBook) FindOrder(orderID uint64) *types.Order {
	for _, order := range ob.buys {
		if order.ID == orderID {
			return order
		}
	}
	for _, order := range ob.sells {
		if order.ID == orderID {
			return order
		}
	}
	return nil
}
