package dispatcher

import "github.com/openspdm/responder-core/pkg/codec"

// newResponseWriter allocates a fresh payload buffer sized to this
// Responder's configured sender buffer and wraps it in a codec.Writer.
func (d *Responder) newResponseWriter() *codec.Writer {
	return codec.NewWriter(make([]byte, d.senderBufferSize))
}
