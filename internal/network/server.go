// Package network exposes the world server over a websocket endpoint. One
// viewer session is active at a time; a new connection supersedes the old
// one, which mirrors how a reconnecting client behaves.
package network

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pstepanovum/minecraft-classic-sub002/internal/config"
)

type Server struct {
	cfg     config.NetworkConfig
	welcome Welcome
	logger  *log.Logger

	upgrader websocket.Upgrader
	seq      atomic.Uint64
	events   chan Envelope

	mu  sync.Mutex
	out chan []byte // active session's write queue, nil when disconnected

	httpServer *http.Server
}

func NewServer(cfg config.NetworkConfig, welcome Welcome, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.Writer(), "network ", log.LstdFlags|log.Lmicroseconds)
	}
	return &Server{
		cfg:     cfg,
		welcome: welcome,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   64 * 1024,
			WriteBufferSize:  64 * 1024,
			HandshakeTimeout: cfg.HandshakeTimeout.Duration(),
			CheckOrigin:      func(r *http.Request) bool { return true }, // dev default
		},
		events: make(chan Envelope, 256),
	}
}

// Events exposes decoded inbound messages for the coordinator loop.
func (s *Server) Events() <-chan Envelope {
	return s.events
}

// Run serves the websocket endpoint until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	s.httpServer = &http.Server{Addr: s.cfg.Listen, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on %s", s.cfg.Listen)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("serve websocket: %w", err)
	}
}

func (s *Server) handleWS(rw http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	out := make(chan []byte, 256)
	s.attach(out)
	defer s.detach(out)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Writer goroutine.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case b, ok := <-out:
				if !ok {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout.Duration()))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	if err := s.Send(MessageWelcome, s.welcome); err != nil {
		s.logger.Printf("send welcome: %v", err)
		return
	}

	// Reader loop.
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			cancel()
			return
		}
		env, err := Decode(msg)
		if err != nil {
			s.logger.Printf("decode message: %v", err)
			continue
		}
		select {
		case s.events <- env:
		default:
			s.logger.Printf("dropping %s: event queue full", env.Type)
		}
	}
}

// attach makes out the active session, superseding any previous one.
func (s *Server) attach(out chan []byte) {
	s.mu.Lock()
	prev := s.out
	s.out = out
	s.mu.Unlock()
	if prev != nil {
		close(prev)
	}
}

func (s *Server) detach(out chan []byte) {
	s.mu.Lock()
	if s.out == out {
		s.out = nil
	}
	s.mu.Unlock()
}

// Send queues a message for the active session. With no session attached the
// message is dropped; the next session receives a fresh welcome and the full
// scene replays through subsequent batch additions.
func (s *Server) Send(msgType MessageType, payload any) error {
	data, err := s.prepare(msgType, payload)
	if err != nil {
		return err
	}

	s.mu.Lock()
	out := s.out
	s.mu.Unlock()
	if out == nil {
		return nil
	}

	select {
	case out <- data:
		return nil
	default:
		return fmt.Errorf("session write queue full, dropping %s", msgType)
	}
}

func (s *Server) prepare(msgType MessageType, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := Envelope{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Seq:       s.seq.Add(1),
		Payload:   raw,
	}
	return Encode(env)
}
