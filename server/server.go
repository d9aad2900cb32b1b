/*
DESCRIPTION
  server.go hosts the gating core behind a WebSocket endpoint: it
  accepts one connection at a time, decodes incoming "frame" messages,
  runs them through a Gater, and replies with "sync" messages.

AUTHORS
  gogater contributors

LICENSE
  Copyright (C) 2026 the gogater contributors. All Rights Reserved.
*/

// Package server exposes a Gater over a WebSocket connection using the
// wire package's tagged-map protocol, matching the client/server split
// described in SPEC_FULL.md §6: the acquisition side runs remotely and
// exchanges frames for trigger decisions over the wire.
package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ausocean/utils/logging"

	"github.com/cardiogate/gogater/gater"
	"github.com/cardiogate/gogater/wire"
)

// Server hosts a single Gater behind a WebSocket endpoint.
type Server struct {
	gater    *gater.Gater
	codec    wire.Codec
	log      logging.Logger
	upgrader websocket.Upgrader
	mu       sync.Mutex // Held while a connection is served, so one is served at a time.
}

// New returns a Server driving g, encoding replies with codec.
func New(g *gater.Gater, codec wire.Codec, log logging.Logger) *Server {
	return &Server{
		gater: g,
		codec: codec,
		log:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1 << 20,
			WriteBufferSize: 1 << 16,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP implements http.Handler, upgrading the connection to
// WebSocket and driving it until the client disconnects or a fatal
// gater error occurs.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("websocket upgrade failed", "error", err.Error())
		return
	}
	defer conn.Close()

	s.log.Info("client connected", "remote", r.RemoteAddr)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.log.Debug("client disconnected", "error", err.Error())
			return
		}
		if err := s.handleMessage(conn, data); err != nil {
			s.log.Error("fatal gater error, closing connection", "error", err.Error())
			return
		}
	}
}

// handleMessage decodes one incoming message and, for "frame" messages,
// runs it through the gater and writes back a "sync" reply. Protocol
// errors (decode failure, unknown type) are logged and the message is
// dropped; the connection is kept open, per SPEC_FULL.md §7. Fatal
// gater errors (out-of-order timestamp, shape mismatch, bad
// configuration) are returned so the caller can close the connection.
func (s *Server) handleMessage(conn *websocket.Conn, data []byte) error {
	msg, err := wire.DecodeMessage(s.codec, data)
	if err != nil {
		s.log.Warning("dropping malformed message", "error", err.Error())
		return nil
	}

	fm, ok := msg.(*wire.FrameMsg)
	if !ok {
		s.log.Warning("dropping unexpected message type")
		return nil
	}

	f, err := wire.ParseFrame(fm)
	if err != nil {
		s.log.Warning("dropping malformed frame message", "error", err.Error())
		return nil
	}

	processed, err := s.gater.Process(f)
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}

	reply := wire.EncodeSync(processed)
	out, err := wire.Encode(s.codec, reply)
	if err != nil {
		return fmt.Errorf("server: could not encode sync reply: %w", err)
	}

	mt := websocket.BinaryMessage
	if s.codec == wire.JSON {
		mt = websocket.TextMessage
	}
	if err := conn.WriteMessage(mt, out); err != nil {
		return fmt.Errorf("server: could not write sync reply: %w", err)
	}
	return nil
}
