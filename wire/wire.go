/*
DESCRIPTION
  wire.go implements the tagged-map wire protocol exchanged with a
  remote acquisition client over WebSockets: "frame" messages carrying
  raw pixel data in, "sync" messages carrying the gating decision out.

AUTHORS
  gogater contributors

LICENSE
  Copyright (C) 2026 the gogater contributors. All Rights Reserved.
*/

// Package wire implements the CBOR/JSON tagged-map protocol between
// the gating server and an acquisition client: "frame" messages
// (image + metadata) in, "sync" messages (phase + trigger decision)
// out. The original implementation picked CBOR-vs-JSON with a single
// global module-level flag; here it is an explicit Codec value passed
// to Encode and DecodeMessage, resolving that design note.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/cardiogate/gogater/frame"
)

// Codec selects the wire encoding used by Encode and DecodeMessage.
type Codec int

const (
	CBOR Codec = iota
	JSON
)

// FrameMsg is the client->server message carrying one brightfield
// frame for analysis.
type FrameMsg struct {
	Type  string     `cbor:"type" json:"type"`
	Frame FrameArray `cbor:"frame" json:"frame"`
}

// FrameArray is the wire representation of frame.Pixels plus the
// timestamp metadata the gater requires.
type FrameArray struct {
	Dims  [2]int                 `cbor:"dims" json:"dims"`   // [height, width]
	Dtype string                 `cbor:"dtype" json:"dtype"` // "uint8" | "uint16"
	Data  []byte                 `cbor:"data" json:"data"`   // row-major, native width per Dtype
	Meta  map[string]interface{} `cbor:"meta" json:"meta"`
}

// SyncMsg is the server->client reply to a FrameMsg, carrying the
// gating decision for that frame.
type SyncMsg struct {
	Type string   `cbor:"type" json:"type"`
	Sync SyncData `cbor:"sync" json:"sync"`
}

// SyncData is the synchronisation outcome for one processed frame.
type SyncData struct {
	SendTrigger int     `cbor:"send_trigger" json:"send_trigger"`
	TriggerTime float64 `cbor:"trigger_time" json:"trigger_time"`
	Phase       float64 `cbor:"phase" json:"phase"`
}

// timestampKey is the metadata key ParseFrame reads the frame
// timestamp from, matching the protocol description.
const timestampKey = "timestamp"

// Encode marshals v (a FrameMsg or SyncMsg) using codec.
func Encode(codec Codec, v interface{}) ([]byte, error) {
	switch codec {
	case CBOR:
		b, err := cbor.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("wire: cbor encode: %w", err)
		}
		return b, nil
	case JSON:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("wire: json encode: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("wire: unknown codec %d", codec)
	}
}

// messageType peeks at the "type" tag of an encoded message without
// fully decoding it, so the caller can dispatch to ParseFrame or
// decode a SyncMsg as appropriate.
func messageType(codec Codec, data []byte) (string, error) {
	var head struct {
		Type string `cbor:"type" json:"type"`
	}
	if err := decode(codec, data, &head); err != nil {
		return "", err
	}
	return head.Type, nil
}

func decode(codec Codec, data []byte, v interface{}) error {
	switch codec {
	case CBOR:
		if err := cbor.Unmarshal(data, v); err != nil {
			return fmt.Errorf("wire: cbor decode: %w", err)
		}
		return nil
	case JSON:
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("wire: json decode: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("wire: unknown codec %d", codec)
	}
}

// DecodeMessage dispatches an incoming message by its "type" tag,
// returning either a *FrameMsg or a *SyncMsg. Unknown types are a
// transient protocol error the caller should log and drop, per
// SPEC_FULL.md §7.
func DecodeMessage(codec Codec, data []byte) (interface{}, error) {
	t, err := messageType(codec, data)
	if err != nil {
		return nil, fmt.Errorf("wire: could not read message type: %w", err)
	}
	switch t {
	case "frame":
		var m FrameMsg
		if err := decode(codec, data, &m); err != nil {
			return nil, err
		}
		return &m, nil
	case "sync":
		var m SyncMsg
		if err := decode(codec, data, &m); err != nil {
			return nil, err
		}
		return &m, nil
	default:
		return nil, fmt.Errorf("wire: unknown message type %q", t)
	}
}

// ParseFrame converts a FrameMsg into a frame.Frame, widening 8-bit
// data to frame.Pixels' internal uint16 representation.
func ParseFrame(m *FrameMsg) (frame.Frame, error) {
	h, w := m.Frame.Dims[0], m.Frame.Dims[1]
	if h <= 0 || w <= 0 {
		return frame.Frame{}, fmt.Errorf("wire: invalid frame dims %v", m.Frame.Dims)
	}

	var px frame.Pixels
	switch m.Frame.Dtype {
	case "uint8":
		if len(m.Frame.Data) != h*w {
			return frame.Frame{}, fmt.Errorf("wire: uint8 frame data length %d, want %d", len(m.Frame.Data), h*w)
		}
		px = frame.NewPixels8(h, w, m.Frame.Data)
	case "uint16":
		if len(m.Frame.Data) != h*w*2 {
			return frame.Frame{}, fmt.Errorf("wire: uint16 frame data length %d, want %d", len(m.Frame.Data), h*w*2)
		}
		data := make([]uint16, h*w)
		for i := range data {
			// Little-endian (low byte first) whatever the host byte
			// order, the same order EncodeFrame writes.
			data[i] = uint16(m.Frame.Data[2*i]) | uint16(m.Frame.Data[2*i+1])<<8
		}
		px = frame.NewPixels16(h, w, data)
	default:
		return frame.Frame{}, fmt.Errorf("wire: unsupported dtype %q", m.Frame.Dtype)
	}

	ts, _ := m.Frame.Meta[timestampKey].(float64)
	return frame.Frame{Pixels: px, Timestamp: ts}, nil
}

// EncodeFrame builds a FrameMsg from a frame.Frame, used by test
// harnesses and clients to drive a server over the wire.
func EncodeFrame(f frame.Frame) FrameMsg {
	dtype := "uint8"
	var data []byte
	if f.Pixels.SourceDepth == frame.Depth16 {
		dtype = "uint16"
		data = make([]byte, len(f.Pixels.Data)*2)
		for i, v := range f.Pixels.Data {
			data[2*i] = byte(v)
			data[2*i+1] = byte(v >> 8)
		}
	} else {
		data = make([]byte, len(f.Pixels.Data))
		for i, v := range f.Pixels.Data {
			data[i] = byte(v)
		}
	}
	return FrameMsg{
		Type: "frame",
		Frame: FrameArray{
			Dims:  [2]int{f.Pixels.H, f.Pixels.W},
			Dtype: dtype,
			Data:  data,
			Meta:  map[string]interface{}{timestampKey: f.Timestamp},
		},
	}
}

// EncodeSync builds a SyncMsg from a processed Frame's metadata.
func EncodeSync(f frame.Frame) SyncMsg {
	trig := 0
	if f.Meta.Sync.SendTrigger {
		trig = 1
	}
	return SyncMsg{
		Type: "sync",
		Sync: SyncData{
			SendTrigger: trig,
			TriggerTime: f.Meta.Sync.TriggerTime,
			Phase:       f.Meta.Sync.Phase,
		},
	}
}
