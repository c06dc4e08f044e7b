package wire

import (
	"fmt"

	"github.com/openspdm/responder-core/pkg/codec"
	"github.com/openspdm/responder-core/pkg/protocol"
)

// ErrorResponse is the payload of an SPDM ERROR response: an 8-bit error
// code, an 8-bit error-code-specific data byte, and optional extended data.
//
// ErrorResponse implements the error interface so handlers can return one
// directly and have the dispatcher's send path encode it uniformly.
type ErrorResponse struct {
	Code         protocol.ErrorCode
	Data         uint8
	ExtendedData []byte
}

// NewError builds an ErrorResponse with no extended data.
func NewError(code protocol.ErrorCode, data uint8) *ErrorResponse {
	return &ErrorResponse{Code: code, Data: data}
}

// Named constructors for the error conditions the dispatcher raises most
// often, mirroring the one-constructor-per-condition idiom used for Matter
// StatusReports (Success/InvalidParam/Busy/CloseSession).

func ErrInvalidRequest() *ErrorResponse       { return NewError(protocol.ErrorInvalidRequest, 0) }
func ErrUnsupportedRequest() *ErrorResponse   { return NewError(protocol.ErrorUnsupportedRequest, 0) }
func ErrUnexpectedRequest() *ErrorResponse    { return NewError(protocol.ErrorUnexpectedRequest, 0) }
func ErrVersionMismatch() *ErrorResponse      { return NewError(protocol.ErrorVersionMismatch, 0) }
func ErrResponseTooLarge() *ErrorResponse     { return NewError(protocol.ErrorResponseTooLarge, 0) }
func ErrSessionRequired() *ErrorResponse      { return NewError(protocol.ErrorSessionRequired, 0) }
func ErrSessionLimitExceeded() *ErrorResponse { return NewError(protocol.ErrorSessionLimitExceeded, 0) }
func ErrDecryptError() *ErrorResponse         { return NewError(protocol.ErrorDecryptError, 0) }
func ErrInvalidSession() *ErrorResponse       { return NewError(protocol.ErrorInvalidSession, 0) }

// EncodeTo writes the framed ERROR response into w: a header whose Param1
// is the error code and Param2 the error data byte, followed by any
// extended data. version is the SPDM version written into the header.
// Returns false on overflow; never allocates beyond w's buffer.
func (e *ErrorResponse) EncodeTo(w *codec.Writer, version protocol.Version) bool {
	hdr := MessageHeader{Version: version, Code: protocol.CodeError, Param1: uint8(e.Code), Param2: e.Data}
	if !hdr.EncodeTo(w) {
		return false
	}
	if len(e.ExtendedData) == 0 {
		return true
	}
	return w.PutBytes(e.ExtendedData)
}

// DecodeError parses an ERROR response payload (after the header has
// already been consumed from r).
func DecodeError(r *codec.Reader, header MessageHeader) (*ErrorResponse, bool) {
	if header.Code != protocol.CodeError {
		return nil, false
	}
	e := &ErrorResponse{Code: protocol.ErrorCode(header.Param1), Data: header.Param2}
	if r.Len() > 0 {
		e.ExtendedData = r.Rest()
	}
	return e, true
}

// Error implements the error interface.
func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("spdm: ERROR code=%s data=0x%02x", e.Code, e.Data)
}

// WriteError is the one helper spec §4.4 names: it writes a complete framed
// SPDM ERROR response directly into the caller's writer.
func WriteError(w *codec.Writer, version protocol.Version, code protocol.ErrorCode, data uint8, extended []byte) bool {
	e := &ErrorResponse{Code: code, Data: data, ExtendedData: extended}
	return e.EncodeTo(w, version)
}
