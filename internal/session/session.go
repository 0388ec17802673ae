// Package session implements the per-connection dispatch: it parses ASCII
// command lines, drives the engine, formats responses, and serialises all
// socket writes through a single writer goroutine.
package session

import (
	"bufio"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Talha-100/hft-matching-engine/internal/engine"
	"github.com/Talha-100/hft-matching-engine/internal/market"
)

const (
	// writeQueueSize bounds the per-session write queue. A session that
	// falls this far behind is dropped rather than allowed to stall the
	// broadcaster.
	writeQueueSize = 256

	// disconnectDelay gives the Disconnecting... acknowledgement time to
	// flush before the socket closes.
	disconnectDelay = 100 * time.Millisecond
)

const welcomeMessage = "====================================\n" +
	"  HFT Matching Engine - Welcome!\n" +
	"------------------------------------\n" +
	"Available Commands:\n" +
	"  BUY <price> <quantity>   - Place a buy order\n" +
	"  SELL <price> <quantity>  - Place a sell order\n" +
	"  CANCEL <orderId>         - Cancel an existing order\n" +
	"  DC                       - Disconnect from server\n" +
	"\nExample: BUY 100.50 25\n" +
	"         SELL 101.00 10\n" +
	"         CANCEL 5\n" +
	"====================================\n\n"

// Session owns one client connection. The read loop runs on the goroutine
// that calls Run; writes are funnelled through writeLoop so a response and
// a concurrent market-data broadcast can never interleave on the wire.
type Session struct {
	conn net.Conn
	addr string

	engine    *engine.Engine
	publisher *market.Publisher
	log       *zap.SugaredLogger

	// onDisconnect notifies the server exactly once, with this session's
	// client address.
	onDisconnect func(addr string)

	mutex  sync.Mutex
	queue  chan string
	closed bool

	done           chan struct{}
	disconnectOnce sync.Once
}

// New wires a session around an accepted connection. Call Run to start it.
func New(conn net.Conn, eng *engine.Engine, pub *market.Publisher, log *zap.SugaredLogger, onDisconnect func(addr string)) *Session {
	return &Session{
		conn:         conn,
		addr:         conn.RemoteAddr().String(),
		engine:       eng,
		publisher:    pub,
		log:          log,
		onDisconnect: onDisconnect,
		queue:        make(chan string, writeQueueSize),
		done:         make(chan struct{}),
	}
}

// Addr returns the remote client address identifying this session.
func (s *Session) Addr() string {
	return s.addr
}

// Run registers with the publisher, emits the welcome banner, and reads
// command lines until the client disconnects. It always ends in
// handleDisconnect.
func (s *Session) Run() {
	go s.writeLoop()

	s.publisher.Register(s)
	s.log.Infof("Client connected: %s (Total active clients: %d)",
		s.addr, s.publisher.SessionCount())

	s.enqueue(welcomeMessage)

	reader := bufio.NewReader(s.conn)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		if disconnect := s.dispatch(line); disconnect {
			// Let the writer flush the acknowledgement before the
			// socket closes.
			time.Sleep(disconnectDelay)
			break
		}
	}

	s.handleDisconnect()
}

// writeLoop is the only goroutine that touches the socket for writes,
// draining the queue in FIFO order. A write error tears the session down.
func (s *Session) writeLoop() {
	for {
		select {
		case msg := <-s.queue:
			if _, err := s.conn.Write([]byte(msg)); err != nil {
				s.handleDisconnect()
				return
			}
		case <-s.done:
			return
		}
	}
}

// enqueue appends a message to the write queue, returning false when the
// session is closed or the client is too far behind to keep up.
func (s *Session) enqueue(msg string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return false
	}

	select {
	case s.queue <- msg:
		return true
	default:
		s.log.Warnw("Write queue full, dropping client", "addr", s.addr)
		go s.handleDisconnect()
		return false
	}
}

// Deliver implements market.Subscriber.
func (s *Session) Deliver(msg string) bool {
	return s.enqueue(msg)
}

// Close tears the session down. Used by the server on shutdown.
func (s *Session) Close() {
	s.handleDisconnect()
}

// handleDisconnect runs the teardown exactly once, no matter how many
// paths reach it (read error, write error, DC, server shutdown).
func (s *Session) handleDisconnect() {
	s.disconnectOnce.Do(func() {
		s.mutex.Lock()
		s.closed = true
		s.mutex.Unlock()

		close(s.done)
		s.conn.Close()
		s.publisher.Unregister(s.addr)

		s.log.Infof("Client disconnected: %s", s.addr)
		if s.onDisconnect != nil {
			s.onDisconnect(s.addr)
		}
	})
}
