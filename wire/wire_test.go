package wire

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cardiogate/gogater/frame"
)

func TestCBORRoundTripUint8Frame(t *testing.T) {
	// S6 of spec.md §8: H=W=4, dtype uint8, pixels 0..15, timestamp 1.5.
	values := make([]uint8, 16)
	for i := range values {
		values[i] = uint8(i)
	}
	want := frame.Frame{Pixels: frame.NewPixels8(4, 4, values), Timestamp: 1.5}

	msg := EncodeFrame(want)
	encoded, err := Encode(CBOR, msg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := DecodeMessage(CBOR, encoded)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	fm, ok := decoded.(*FrameMsg)
	if !ok {
		t.Fatalf("DecodeMessage returned %T, want *FrameMsg", decoded)
	}

	got, err := ParseFrame(fm)
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONRoundTripUint16Frame(t *testing.T) {
	values := []uint16{0, 1000, 2000, 65535}
	want := frame.Frame{Pixels: frame.NewPixels16(1, 4, values), Timestamp: 0.25}

	msg := EncodeFrame(want)
	encoded, err := Encode(JSON, msg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := DecodeMessage(JSON, encoded)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	fm := decoded.(*FrameMsg)

	got, err := ParseFrame(fm)
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeSyncRoundTrip(t *testing.T) {
	f := frame.Frame{Meta: frame.Metadata{HasSync: true, Sync: frame.SyncInfo{
		SendTrigger: true,
		TriggerTime: 12.5,
		Phase:       1.23,
	}}}
	msg := EncodeSync(f)
	encoded, err := Encode(CBOR, msg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := DecodeMessage(CBOR, encoded)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	sm, ok := decoded.(*SyncMsg)
	if !ok {
		t.Fatalf("DecodeMessage returned %T, want *SyncMsg", decoded)
	}
	if sm.Sync.SendTrigger != 1 || sm.Sync.TriggerTime != 12.5 || sm.Sync.Phase != 1.23 {
		t.Errorf("SyncMsg = %+v, want SendTrigger=1 TriggerTime=12.5 Phase=1.23", sm.Sync)
	}
}

func TestDecodeMessageUnknownType(t *testing.T) {
	encoded, err := Encode(JSON, map[string]string{"type": "ping"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := DecodeMessage(JSON, encoded); err == nil {
		t.Error("DecodeMessage on unknown type = nil error, want error")
	}
}
