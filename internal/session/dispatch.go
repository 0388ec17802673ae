package session

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Talha-100/hft-matching-engine/internal/types"
)

type commandKind int

const (
	cmdInvalid commandKind = iota
	cmdPlace
	cmdCancel
	cmdDisconnect
)

type command struct {
	kind     commandKind
	side     types.SideType
	price    float64
	quantity int
	orderID  uint64
}

// parseLine turns one raw input line into a command. Anything malformed
// collapses to cmdInvalid; the engine is never consulted for invalid input.
func parseLine(line string) command {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{kind: cmdInvalid}
	}

	switch fields[0] {
	case "BUY", "SELL":
		if len(fields) < 3 {
			return command{kind: cmdInvalid}
		}
		price, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
			return command{kind: cmdInvalid}
		}
		quantity, err := strconv.Atoi(fields[2])
		if err != nil || quantity <= 0 {
			return command{kind: cmdInvalid}
		}
		side := types.Buy
		if fields[0] == "SELL" {
			side = types.Sell
		}
		return command{kind: cmdPlace, side: side, price: price, quantity: quantity}

	case "CANCEL":
		if len(fields) < 2 {
			return command{kind: cmdInvalid}
		}
		orderID, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil || orderID <= 0 {
			return command{kind: cmdInvalid}
		}
		return command{kind: cmdCancel, orderID: uint64(orderID)}

	case "DC":
		return command{kind: cmdDisconnect}

	default:
		return command{kind: cmdInvalid}
	}
}

// dispatch executes one parsed line and enqueues the response. Returns
// true when the client asked to disconnect.
func (s *Session) dispatch(line string) bool {
	cmd := parseLine(line)

	switch cmd.kind {
	case cmdPlace:
		s.handlePlace(cmd)

	case cmdCancel:
		s.handleCancel(cmd)

	case cmdDisconnect:
		s.enqueue("Disconnecting...\n\n")
		return true

	default:
		s.enqueue("INVALID INPUT\n\n")
	}
	return false
}

func (s *Session) handlePlace(cmd command) {
	s.log.Debugf("Processing order: [%s %s %d] from %s",
		cmd.side, types.FormatPrice(cmd.price), cmd.quantity, s.addr)

	orderID, trades, err := s.engine.Place(cmd.side, cmd.price, cmd.quantity)
	if err != nil {
		// Engine is gone; the server is shutting down and this session
		// is about to follow.
		return
	}

	var response strings.Builder
	fmt.Fprintf(&response, "CONFIRMED OrderID: %d\n\n", orderID)

	for _, trade := range trades {
		s.processTrade(&response, trade)
	}

	s.enqueue(response.String())
}

// processTrade appends the detailed trade block for the originator and
// broadcasts the redacted market line to everyone else. A panic while
// handling one trade is contained so the rest of the batch still goes out.
func (s *Session) processTrade(response *strings.Builder, trade types.Trade) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("Error processing trade", "addr", s.addr, "panic", r)
		}
	}()

	response.WriteString(trade.String() + "\n\n")
	s.publisher.BroadcastTrade(trade, s.addr)
}

func (s *Session) handleCancel(cmd command) {
	cancelled, err := s.engine.Cancel(cmd.orderID)
	if err != nil {
		return
	}

	if cancelled {
		s.log.Infow("Order cancelled", "order_id", cmd.orderID, "addr", s.addr)
		s.enqueue(fmt.Sprintf("CANCELLED OrderID: %d\n\n", cmd.orderID))
	} else {
		s.enqueue(fmt.Sprintf("ORDER NOT FOUND: %d\n\n", cmd.orderID))
	}
}
