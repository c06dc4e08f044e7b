package wire

import "github.com/openspdm/responder-core/pkg/codec"

// EndSessionPreserveState is the END_SESSION request's Param1 bit
// requesting the negotiated state survive for a future session resumption.
const EndSessionPreserveState = 0x1

// EndSessionRequest closes a secure session.
type EndSessionRequest struct {
	PreserveNegotiatedState bool
}

func DecodeEndSessionRequest(header MessageHeader) EndSessionRequest {
	return EndSessionRequest{PreserveNegotiatedState: header.Param1&EndSessionPreserveState != 0}
}

// EndSessionAckResponse carries no payload beyond the header.
type EndSessionAckResponse struct{}

func (e EndSessionAckResponse) EncodeTo(w *codec.Writer) bool {
	return true
}
