// Package wire implements the on-wire shape of SPDM messages: the fixed
// 4-byte header every request/response shares, the ERROR response framing,
// and the individual payload encode/decode pairs the dispatcher invokes.
//
// All multi-byte payload fields are little-endian; the header itself is all
// single-byte fields so no endianness conversion applies to it.
package wire

import (
	"github.com/openspdm/responder-core/pkg/codec"
	"github.com/openspdm/responder-core/pkg/protocol"
)

// HeaderSize is the fixed size of an SPDM message header in bytes.
const HeaderSize = 4

// MessageHeader is the 4-byte header prefixing every SPDM request/response:
// version, request/response code, and two parameter bytes whose meaning is
// code-specific.
type MessageHeader struct {
	Version protocol.Version
	Code    protocol.RequestResponseCode
	Param1  uint8
	Param2  uint8
}

// EncodeTo writes the header into w. Returns false if w has insufficient
// space.
func (h MessageHeader) EncodeTo(w *codec.Writer) bool {
	return w.PutU8(uint8(h.Version)) &&
		w.PutU8(uint8(h.Code)) &&
		w.PutU8(h.Param1) &&
		w.PutU8(h.Param2)
}

// DecodeHeader reads a MessageHeader from r. Returns ok=false (never a
// panic) if r does not contain a full header.
func DecodeHeader(r *codec.Reader) (MessageHeader, bool) {
	var h MessageHeader
	v, ok := r.ReadU8()
	if !ok {
		return h, false
	}
	h.Version = protocol.Version(v)

	c, ok := r.ReadU8()
	if !ok {
		return h, false
	}
	h.Code = protocol.RequestResponseCode(c)

	p1, ok := r.ReadU8()
	if !ok {
		return h, false
	}
	h.Param1 = p1

	p2, ok := r.ReadU8()
	if !ok {
		return h, false
	}
	h.Param2 = p2

	return h, true
}

// PeekCode reports the request/response code of a framed message without
// fully decoding it, used by the dispatcher to pick a handler before
// committing to a parse.
func PeekCode(data []byte) (protocol.RequestResponseCode, bool) {
	if len(data) < HeaderSize {
		return 0, false
	}
	return protocol.RequestResponseCode(data[1]), true
}

// PeekVersion reports the version field of a framed message without a full
// decode.
func PeekVersion(data []byte) (protocol.Version, bool) {
	if len(data) < HeaderSize {
		return 0, false
	}
	return protocol.Version(data[0]), true
}
