// Package feed mirrors the redacted market-data stream onto a Kafka topic
// so consumers outside the TCP session layer can follow the tape.
package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Talha-100/hft-matching-engine/internal/types"
)

// marketEvent is the published payload: the same redaction as the in-band
// MARKET TRADE line, order IDs withheld.
type marketEvent struct {
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}

// KafkaConfig holds the market feed settings.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	Buffer  int
}

// KafkaFeed implements market.Consumer. Publishing is asynchronous and
// best-effort: when the buffer is full the event is dropped with a warning
// rather than stalling the broadcast path.
type KafkaFeed struct {
	writer *kafka.Writer
	log    *zap.SugaredLogger

	events chan types.Trade
	wg     sync.WaitGroup

	mutex  sync.Mutex
	closed bool
}

// NewKafkaFeed builds the feed and starts its publish loop.
func NewKafkaFeed(cfg KafkaConfig, log *zap.SugaredLogger) *KafkaFeed {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}

	buffer := cfg.Buffer
	if buffer <= 0 {
		buffer = 1024
	}

	f := &KafkaFeed{
		writer: writer,
		log:    log,
		events: make(chan types.Trade, buffer),
	}

	f.wg.Add(1)
	go f.publishLoop()
	return f
}

// Consume implements market.Consumer.
func (f *KafkaFeed) Consume(trade types.Trade) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.closed {
		return
	}

	select {
	case f.events <- trade:
	default:
		f.log.Warnw("Market feed buffer full, dropping trade",
			"price", trade.Price, "quantity", trade.Quantity)
	}
}

func (f *KafkaFeed) publishLoop() {
	defer f.wg.Done()

	for trade := range f.events {
		event := marketEvent{
			Price:     trade.Price,
			Quantity:  trade.Quantity,
			Timestamp: trade.Timestamp,
		}

		data, err := json.Marshal(event)
		if err != nil {
			f.log.Errorw("Failed to marshal market event", "error", err)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = f.writer.WriteMessages(ctx, kafka.Message{Value: data})
		cancel()
		if err != nil {
			f.log.Warnw("Failed to publish market event", "error", err)
		}
	}
}

// Close drains pending events and shuts the producer down.
func (f *KafkaFeed) Close() error {
	f.mutex.Lock()
	if f.closed {
		f.mutex.Unlock()
		return nil
	}
	f.closed = true
	close(f.events)
	f.mutex.Unlock()

	f.wg.Wait()
	return f.writer.Close()
}
