package transport

import (
	"context"
	"testing"
	"time"
)

func TestLoopbackSendReceiveRoundtrip(t *testing.T) {
	a, b := NewLoopbackPair()
	defer a.Close()
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	msg := []byte{0x11, 0x84, 0x00, 0x00}
	if err := a.Send(ctx, msg); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	got, err := b.Receive(ctx)
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	if len(got) != len(msg) {
		t.Fatalf("length mismatch: got %d want %d", len(got), len(msg))
	}
	for i := range msg {
		if got[i] != msg[i] {
			t.Fatalf("byte %d mismatch: got %x want %x", i, got[i], msg[i])
		}
	}
}

func TestLoopbackPreservesMessageBoundaries(t *testing.T) {
	a, b := NewLoopbackPair()
	defer a.Close()
	defer b.Close()
	ctx := context.Background()

	first := []byte{0x01, 0x02}
	second := []byte{0x03, 0x04, 0x05}
	if err := a.Send(ctx, first); err != nil {
		t.Fatalf("send 1 failed: %v", err)
	}
	if err := a.Send(ctx, second); err != nil {
		t.Fatalf("send 2 failed: %v", err)
	}

	got1, err := b.Receive(ctx)
	if err != nil || len(got1) != 2 {
		t.Fatalf("unexpected first receive: %v len=%d", err, len(got1))
	}
	got2, err := b.Receive(ctx)
	if err != nil || len(got2) != 3 {
		t.Fatalf("unexpected second receive: %v len=%d", err, len(got2))
	}
}

func TestNoEncapHeaderSizeIsZero(t *testing.T) {
	if (NoEncap{}).HeaderSize() != 0 {
		t.Errorf("expected zero header size")
	}
}
