package types_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Talha-100/hft-matching-engine/internal/types"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		price float64
		want  string
	}{
		{100.0, "100"},
		{100.5, "100.5"},
		{100.50, "100.5"},
		{0.01, "0.01"},
		{99.99, "99.99"},
		{12345.0, "12345"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, types.FormatPrice(tt.price), "price %v", tt.price)
	}
}

func TestTradeString(t *testing.T) {
	tr := types.Trade{
		BuyOrderID:  1,
		SellOrderID: 2,
		Price:       100.0,
		Quantity:    5,
		Timestamp:   time.Now(),
	}
	assert.Equal(t, "TRADE BuyID: 1, SellID: 2, Price: 100, Quantity: 5", tr.String())

	tr.Price = 99.5
	assert.Equal(t, "TRADE BuyID: 1, SellID: 2, Price: 99.5, Quantity: 5", tr.String())
}

func TestTradeMarketString(t *testing.T) {
	tr := types.Trade{
		BuyOrderID:  7,
		SellOrderID: 9,
		Price:       101.25,
		Quantity:    3,
	}
	assert.Equal(t, "MARKET TRADE Price: 101.25, Quantity: 3", tr.MarketString())
	assert.NotContains(t, tr.MarketString(), "7")
	assert.NotContains(t, tr.MarketString(), "9")
}

func TestSideString(t *testing.T) {
	assert.Equal(t, "BUY", types.Buy.String())
	assert.Equal(t, "SELL", types.Sell.String())
	assert.Equal(t, "UNKNOWN", types.NoActionSide.String())
}
