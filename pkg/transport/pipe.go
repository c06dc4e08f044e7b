package transport

import (
	"context"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/pion/transport/v3/test"
)

// NetworkCondition configures network behavior simulation on a Loopback,
// for exercising the dispatcher's handling of a lossy or delayed peer.
type NetworkCondition struct {
	// DropRate is the probability of silently dropping a message (0.0-1.0).
	DropRate float64

	// DelayMin/DelayMax bound a uniformly distributed send delay.
	DelayMin time.Duration
	DelayMax time.Duration
}

// Loopback provides an in-memory, bidirectional DeviceIO pair for tests:
// two Loopback endpoints created by NewLoopbackPair exchange SPDM messages
// without any real network I/O, using pion's test.Bridge as the underlying
// duplex pipe the teacher's transport layer also builds on.
//
// Messages are length-prefixed (a 4-byte big-endian length) over the raw
// byte stream test.Bridge provides, since SPDM message boundaries must
// survive the stream abstraction net.Conn offers.
type Loopback struct {
	conn io.ReadWriteCloser

	mu        sync.RWMutex
	condition NetworkCondition
	rng       *rand.Rand
}

// NewLoopbackPair creates two connected Loopback endpoints: writes to one
// are readable from the other, and vice versa.
func NewLoopbackPair() (*Loopback, *Loopback) {
	bridge := test.NewBridge()
	a := &Loopback{conn: bridge.GetConn0(), rng: rand.New(rand.NewSource(1))}
	b := &Loopback{conn: bridge.GetConn1(), rng: rand.New(rand.NewSource(2))}
	return a, b
}

// SetCondition configures network condition simulation for this endpoint's
// outgoing messages.
func (l *Loopback) SetCondition(cond NetworkCondition) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.condition = cond
}

// Send writes one length-prefixed SPDM message to the peer.
func (l *Loopback) Send(ctx context.Context, msg []byte) error {
	l.mu.RLock()
	cond := l.condition
	rng := l.rng
	l.mu.RUnlock()

	if cond.DropRate > 0 && rng.Float64() < cond.DropRate {
		return nil
	}
	if cond.DelayMax > 0 {
		delay := cond.DelayMin
		if cond.DelayMax > cond.DelayMin {
			delay += time.Duration(rng.Int63n(int64(cond.DelayMax - cond.DelayMin)))
		}
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	var lenPrefix [4]byte
	binary.BigEndian.PutUint32(lenPrefix[:], uint32(len(msg)))
	if _, err := l.conn.Write(lenPrefix[:]); err != nil {
		return err
	}
	_, err := l.conn.Write(msg)
	return err
}

// Receive blocks for the next complete SPDM message from the peer.
func (l *Loopback) Receive(ctx context.Context) ([]byte, error) {
	var lenPrefix [4]byte
	if _, err := io.ReadFull(l.conn, lenPrefix[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenPrefix[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(l.conn, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Close closes the underlying connection.
func (l *Loopback) Close() error {
	return l.conn.Close()
}

var _ DeviceIO = (*Loopback)(nil)
