package types

import (
	"fmt"
	"time"
)

// Trade represents a matched trade between a buy and sell order
type Trade struct {
	BuyOrderID  uint64    `json:"buy_order_id"`
	SellOrderID uint64    `json:"sell_order_id"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	Timestamp   time.Time `json:"timestamp"`
}

// String renders the detailed trade line sent to the originating session.
func (t Trade) String() string {
	return fmt.Sprintf("TRADE BuyID: %d, SellID: %d, Price: %s, Quantity: %d",
		t.BuyOrderID, t.SellOrderID, FormatPrice(t.Price), t.Quantity)
}

// MarketString renders the redacted market-data line: price and quantity
// only, no counterparty order IDs.
func (t Trade) MarketString() string {
	return fmt.Sprintf("MARKET TRADE Price: %s, Quantity: %d",
		FormatPrice(t.Price), t.Quantity)
}
