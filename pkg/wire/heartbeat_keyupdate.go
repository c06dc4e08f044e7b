package wire

import "github.com/openspdm/responder-core/pkg/codec"

// HeartbeatRequest carries no payload beyond the header.
type HeartbeatRequest struct{}

func DecodeHeartbeatRequest(r *codec.Reader) (HeartbeatRequest, bool) {
	return HeartbeatRequest{}, true
}

// HeartbeatAckResponse carries no payload beyond the header.
type HeartbeatAckResponse struct{}

func (h HeartbeatAckResponse) EncodeTo(w *codec.Writer) bool {
	return true
}

// KeyUpdateOperation enumerates the KEY_UPDATE request's Param1 values.
type KeyUpdateOperation uint8

const (
	KeyUpdateUpdateKey          KeyUpdateOperation = 0x1
	KeyUpdateVerifyNewKey       KeyUpdateOperation = 0x2
	KeyUpdateUpdateAllKeys      KeyUpdateOperation = 0x3
	KeyUpdateUpdateAllKeysNonVerify KeyUpdateOperation = 0x4
)

// KeyUpdateRequest asks the responder to roll session keys in one
// direction, or to verify a just-rolled key, tagged with an opaque token
// the response must echo.
type KeyUpdateRequest struct {
	Operation KeyUpdateOperation
	Tag       uint8
}

func DecodeKeyUpdateRequest(header MessageHeader) KeyUpdateRequest {
	return KeyUpdateRequest{Operation: KeyUpdateOperation(header.Param1), Tag: header.Param2}
}

// KeyUpdateAckResponse echoes the operation and tag in its header fields;
// it carries no additional payload.
type KeyUpdateAckResponse struct {
	Operation KeyUpdateOperation
	Tag       uint8
}

func (k KeyUpdateAckResponse) EncodeTo(w *codec.Writer) bool {
	return true
}
