package transport

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestStreamIOSendReceiveRoundtrip(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	server := NewStreamIO(serverConn)
	client := NewStreamIO(clientConn)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	msg := []byte{0x12, 0x84, 0x00, 0x00}
	go func() {
		if err := client.Send(ctx, msg); err != nil {
			t.Errorf("client send failed: %v", err)
		}
	}()

	got, err := server.Receive(ctx)
	if err != nil {
		t.Fatalf("server receive failed: %v", err)
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

func TestStreamIOPreservesMessageBoundaries(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	server := NewStreamIO(serverConn)
	client := NewStreamIO(clientConn)
	ctx := context.Background()

	first := []byte{0x01, 0x02}
	second := []byte{0x03, 0x04, 0x05}
	go func() {
		if err := client.Send(ctx, first); err != nil {
			t.Errorf("send 1 failed: %v", err)
		}
		if err := client.Send(ctx, second); err != nil {
			t.Errorf("send 2 failed: %v", err)
		}
	}()

	got1, err := server.Receive(ctx)
	if err != nil || len(got1) != 2 {
		t.Fatalf("unexpected first receive: %v len=%d", err, len(got1))
	}
	got2, err := server.Receive(ctx)
	if err != nil || len(got2) != 3 {
		t.Fatalf("unexpected second receive: %v len=%d", err, len(got2))
	}
}

func TestStreamIOReceiveRejectsOversizedFrame(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	server := NewStreamIO(serverConn)
	ctx := context.Background()

	go func() {
		var lenBuf [lengthPrefixSize]byte
		binary := uint32(maxStreamFrameSize + 1)
		lenBuf[0] = byte(binary)
		lenBuf[1] = byte(binary >> 8)
		lenBuf[2] = byte(binary >> 16)
		lenBuf[3] = byte(binary >> 24)
		clientConn.Write(lenBuf[:])
	}()

	if _, err := server.Receive(ctx); err != ErrFrameTooLarge {
		t.Fatalf("expected ErrFrameTooLarge, got %v", err)
	}
}
