// Package market fans redacted trade events out to every live session
// except the one whose order triggered them. The originator already gets
// the detailed TRADE lines in its private response; everyone else sees
// only price and quantity.
package market

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Talha-100/hft-matching-engine/internal/types"
)

// Subscriber is a session (or any other consumer) receiving market data.
// Deliver returns false once the subscriber is gone; the publisher purges
// such entries during the broadcast that discovers them.
type Subscriber interface {
	Addr() string
	Deliver(msg string) bool
}

// Consumer observes every trade regardless of originator. The Kafka feed
// implements this.
type Consumer interface {
	Consume(trade types.Trade)
}

// Publisher keeps the session registry for market-data fan-out. It is the
// one structure shared across goroutines, so the registry is mutex
// protected.
type Publisher struct {
	mutex     sync.Mutex
	sessions  map[string]Subscriber
	consumers []Consumer
	log       *zap.SugaredLogger
}

func NewPublisher(log *zap.SugaredLogger) *Publisher {
	return &Publisher{
		sessions: make(map[string]Subscriber),
		log:      log,
	}
}

// Register adds a session to the fan-out registry. Called once at session
// start.
func (p *Publisher) Register(sub Subscriber) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.sessions[sub.Addr()] = sub
}

// Unregister removes a session by address. Idempotent.
func (p *Publisher) Unregister(addr string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	delete(p.sessions, addr)
}

// AddConsumer attaches an unconditional trade consumer.
func (p *Publisher) AddConsumer(c Consumer) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.consumers = append(p.consumers, c)
}

// BroadcastTrade sends the redacted market line to every registered
// session except the originator, purging sessions whose delivery fails.
func (p *Publisher) BroadcastTrade(trade types.Trade, originAddr string) {
	msg := trade.MarketString() + "\n\n"

	p.mutex.Lock()
	defer p.mutex.Unlock()

	for addr, sub := range p.sessions {
		if addr == originAddr {
			continue
		}
		if !sub.Deliver(msg) {
			delete(p.sessions, addr)
			p.log.Debugw("Purged dead market-data subscriber", "addr", addr)
		}
	}

	for _, c := range p.consumers {
		c.Consume(trade)
	}
}

// SessionCount reports how many sessions are registered.
func (p *Publisher) SessionCount() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return len(p.sessions)
}
