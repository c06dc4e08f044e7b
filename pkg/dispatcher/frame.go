package dispatcher

// FrameTag distinguishes a clear-text SPDM message from a secured one on
// the wire. A real transport binding carries this distinction in its own
// encapsulation header (an MCTP message-type bit, a PCI DOE object type);
// this core's transport.DeviceIO sees only opaque length-prefixed byte
// messages (see transport.Loopback), so the dispatcher prepends this
// single tag byte itself and strips it again on receive, keeping
// transport.TransportEncap.HeaderSize() as the stable accounting hook for
// whatever overhead a real binding would add below this tag.
type FrameTag uint8

const (
	TagClear   FrameTag = 0x00
	TagSecured FrameTag = 0x01
)

// wrapFrame prepends tag to body without copying body's backing array
// further than necessary.
func wrapFrame(tag FrameTag, body []byte) []byte {
	out := make([]byte, 1+len(body))
	out[0] = uint8(tag)
	copy(out[1:], body)
	return out
}

// unwrapFrame splits a received transport message into its tag and body.
// Returns ok=false for an empty message.
func unwrapFrame(raw []byte) (FrameTag, []byte, bool) {
	if len(raw) < 1 {
		return 0, nil, false
	}
	return FrameTag(raw[0]), raw[1:], true
}
