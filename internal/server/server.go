// Package server accepts TCP connections on the engine port and owns the
// set of live sessions.
package server

import (
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/Talha-100/hft-matching-engine/internal/engine"
	"github.com/Talha-100/hft-matching-engine/internal/market"
	"github.com/Talha-100/hft-matching-engine/internal/session"
)

// EngineServer listens for client connections, hands each one to a
// session, and coordinates graceful shutdown.
type EngineServer struct {
	listener  net.Listener
	engine    *engine.Engine
	publisher *market.Publisher
	log       *zap.SugaredLogger

	mutex    sync.Mutex
	sessions map[string]*session.Session
	shutdown bool

	shutdownOnce sync.Once
}

// New binds the listening socket. A bind failure is fatal to startup; the
// caller reports it and exits non-zero.
func New(port int, eng *engine.Engine, pub *market.Publisher, log *zap.SugaredLogger) (*EngineServer, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to bind port %d: %w", port, err)
	}

	return &EngineServer{
		listener:  listener,
		engine:    eng,
		publisher: pub,
		log:       log,
		sessions:  make(map[string]*session.Session),
	}, nil
}

// Port reports the bound port (useful when constructed with port 0).
func (s *EngineServer) Port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

// Serve runs the accept loop until Shutdown closes the listener. Accept
// errors are logged and the loop continues.
func (s *EngineServer) Serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.isShutdown() {
				return
			}
			s.log.Errorw("Accept error", "error", err)
			continue
		}

		if s.isShutdown() {
			conn.Close()
			return
		}

		sess := session.New(conn, s.engine, s.publisher, s.log, s.handleClientDisconnect)

		s.mutex.Lock()
		s.sessions[sess.Addr()] = sess
		s.mutex.Unlock()

		go sess.Run()
	}
}

// handleClientDisconnect removes a session from the live set. Idempotent:
// a second call for the same address finds nothing to remove.
func (s *EngineServer) handleClientDisconnect(addr string) {
	s.mutex.Lock()
	delete(s.sessions, addr)
	remaining := len(s.sessions)
	s.mutex.Unlock()

	s.log.Infof("Total active clients: %d", remaining)
}

func (s *EngineServer) isShutdown() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.shutdown
}

// SessionCount reports the number of live sessions.
func (s *EngineServer) SessionCount() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.sessions)
}

// Shutdown stops accepting, closes every live session, and closes the
// listener. Safe to call more than once.
func (s *EngineServer) Shutdown() {
	s.shutdownOnce.Do(func() {
		s.mutex.Lock()
		s.shutdown = true
		live := make([]*session.Session, 0, len(s.sessions))
		for _, sess := range s.sessions {
			live = append(live, sess)
		}
		s.sessions = make(map[string]*session.Session)
		s.mutex.Unlock()

		for _, sess := range live {
			sess.Close()
		}

		s.listener.Close()
		s.log.Info("All clients disconnected. Server shutdown complete.")
	})
}
