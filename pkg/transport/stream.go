package transport

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

// lengthPrefixSize is the width of the frame-length prefix StreamIO reads
// and writes, matching the teacher's TCP transport's framing.
const lengthPrefixSize = 4

// maxStreamFrameSize bounds a single incoming frame so a peer sending a
// bogus length prefix cannot make StreamIO allocate unbounded memory.
const maxStreamFrameSize = 1 << 20

var (
	ErrFrameTooLarge   = errors.New("transport: incoming frame exceeds maximum size")
	ErrInvalidFrameLen = errors.New("transport: zero-length frame")
)

// StreamIO adapts a net.Conn (TCP, Unix socket, or any other stream) into
// a DeviceIO by framing each SPDM message with a 4-byte little-endian
// length prefix, mirroring the length-prefix framing the teacher's TCP
// transport applies over the same kind of stream. SPDM itself is
// transport-agnostic; this is one concrete carrier a responder process
// can run over.
type StreamIO struct {
	conn net.Conn
}

// NewStreamIO wraps conn as a DeviceIO. The caller owns conn's lifecycle;
// closing conn unblocks any in-flight Receive.
func NewStreamIO(conn net.Conn) *StreamIO {
	return &StreamIO{conn: conn}
}

// Send writes msg as one length-prefixed frame. ctx's deadline, if any, is
// applied to the underlying connection for the duration of the write.
func (s *StreamIO) Send(ctx context.Context, msg []byte) error {
	if err := applyDeadline(ctx, s.conn); err != nil {
		return err
	}
	var lenBuf [lengthPrefixSize]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(msg)))
	if _, err := s.conn.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("transport: write length prefix: %w", err)
	}
	if _, err := s.conn.Write(msg); err != nil {
		return fmt.Errorf("transport: write frame: %w", err)
	}
	return nil
}

// Receive blocks for the next length-prefixed frame.
func (s *StreamIO) Receive(ctx context.Context) ([]byte, error) {
	if err := applyDeadline(ctx, s.conn); err != nil {
		return nil, err
	}
	var lenBuf [lengthPrefixSize]byte
	if _, err := io.ReadFull(s.conn, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("transport: read length prefix: %w", err)
	}
	frameLen := binary.LittleEndian.Uint32(lenBuf[:])
	if frameLen == 0 {
		return nil, ErrInvalidFrameLen
	}
	if frameLen > maxStreamFrameSize {
		return nil, ErrFrameTooLarge
	}
	buf := make([]byte, frameLen)
	if _, err := io.ReadFull(s.conn, buf); err != nil {
		return nil, fmt.Errorf("transport: read frame: %w", err)
	}
	return buf, nil
}

// Close closes the underlying connection.
func (s *StreamIO) Close() error {
	return s.conn.Close()
}

// applyDeadline propagates ctx's deadline to conn, or clears any
// previously set deadline if ctx carries none.
func applyDeadline(ctx context.Context, conn net.Conn) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		return conn.SetDeadline(time.Time{})
	}
	return conn.SetDeadline(deadline)
}
