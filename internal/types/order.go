package types

import (
	"fmt"
	"strconv"
)

// SideType identifies which side of the book an order rests on
type SideType int

const (
	NoActionSide SideType = iota
	Buy
	Sell
)

func (s SideType) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Order represents a resting limit order. Quantity is the live remaining
// quantity; it only decreases as the order is matched, and an order with
// Quantity == 0 has left the book.
type Order struct {
	ID       uint64   `json:"order_id"`
	Side     SideType `json:"side"`
	Price    float64  `json:"price"`
	Quantity int      `json:"quantity"`
}

// NewOrder creates an order value. The book assigns IDs; callers outside
// the book should pass the ID it returned.
func NewOrder(id uint64, side SideType, price float64, quantity int) *Order {
	return &Order{
		ID:       id,
		Side:     side,
		Price:    price,
		Quantity: quantity,
	}
}

func (o *Order) String() string {
	return fmt.Sprintf("Order{ID: %d, Side: %s, Price: %s, Quantity: %d}",
		o.ID, o.Side, FormatPrice(o.Price), o.Quantity)
}

// FormatPrice renders a price in its shortest decimal form, so whole
// prices print without a fractional part (100, not 100.000000).
func FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}
