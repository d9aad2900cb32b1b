package server

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/ausocean/utils/logging"

	"github.com/cardiogate/gogater/frame"
	"github.com/cardiogate/gogater/gater"
	"github.com/cardiogate/gogater/gater/config"
	"github.com/cardiogate/gogater/sink"
	"github.com/cardiogate/gogater/wire"
)

type nopOracle struct{}

func (nopOracle) Update(c *frame.Cycle, period float64, drift int) (int, error) { return 0, nil }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	l := logging.New(logging.Debug, &bytes.Buffer{}, true)
	cfg := config.New(80, l)
	g, err := gater.New(cfg, sink.LogSink{Logger: l}, nopOracle{}, nil, nil)
	if err != nil {
		t.Fatalf("gater.New: %v", err)
	}
	srv := New(g, wire.CBOR, l)
	return httptest.NewServer(srv)
}

func TestServeHTTPRoundTripsFrameAndSync(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	f := frame.Frame{Pixels: frame.NewPixels8(1, 1, []uint8{42}), Timestamp: 0.1}
	msg := wire.EncodeFrame(f)
	out, err := wire.Encode(wire.CBOR, msg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, out); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	_, reply, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	decoded, err := wire.DecodeMessage(wire.CBOR, reply)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if _, ok := decoded.(*wire.SyncMsg); !ok {
		t.Fatalf("decoded reply is %T, want *wire.SyncMsg", decoded)
	}
}

func TestServeHTTPDropsMalformedMessage(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte("not cbor")); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	f := frame.Frame{Pixels: frame.NewPixels8(1, 1, []uint8{1}), Timestamp: 1.0}
	msg := wire.EncodeFrame(f)
	out, err := wire.Encode(wire.CBOR, msg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, out); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	_, _, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf("connection closed after malformed message, want it to stay open: %v", err)
	}
}
