package protocol

// ErrorCode is the one-byte error code carried in an SPDM ERROR response
// (DSP0274 Table "Error Codes").
type ErrorCode uint8

const (
	ErrorInvalidRequest        ErrorCode = 0x01
	ErrorInvalidSession        ErrorCode = 0x02
	ErrorBusy                  ErrorCode = 0x03
	ErrorUnexpectedRequest     ErrorCode = 0x04
	ErrorUnspecified           ErrorCode = 0x05
	ErrorDecryptError          ErrorCode = 0x06
	ErrorUnsupportedRequest    ErrorCode = 0x07
	ErrorRequestInFlight       ErrorCode = 0x08
	ErrorInvalidResponseCode   ErrorCode = 0x09
	ErrorSessionLimitExceeded  ErrorCode = 0x0A
	ErrorSessionRequired       ErrorCode = 0x0B
	ErrorResetRequired         ErrorCode = 0x0C
	ErrorResponseTooLarge      ErrorCode = 0x0D
	ErrorRequestTooLarge       ErrorCode = 0x0E
	ErrorLargeResponse         ErrorCode = 0x0F
	ErrorMessageLost           ErrorCode = 0x10
	ErrorInvalidPolicy         ErrorCode = 0x11
	ErrorVersionMismatch       ErrorCode = 0x41
	ErrorResponseNotReady      ErrorCode = 0x42
	ErrorRequestResynch        ErrorCode = 0x43
	ErrorOperationFailed       ErrorCode = 0x44
	ErrorNoPendingRequest      ErrorCode = 0x45
	ErrorVendorDefined         ErrorCode = 0xFF
)

// String returns a human-readable mnemonic, for logging.
func (e ErrorCode) String() string {
	switch e {
	case ErrorInvalidRequest:
		return "InvalidRequest"
	case ErrorInvalidSession:
		return "InvalidSession"
	case ErrorBusy:
		return "Busy"
	case ErrorUnexpectedRequest:
		return "UnexpectedRequest"
	case ErrorUnspecified:
		return "Unspecified"
	case ErrorDecryptError:
		return "DecryptError"
	case ErrorUnsupportedRequest:
		return "UnsupportedRequest"
	case ErrorRequestInFlight:
		return "RequestInFlight"
	case ErrorInvalidResponseCode:
		return "InvalidResponseCode"
	case ErrorSessionLimitExceeded:
		return "SessionLimitExceeded"
	case ErrorSessionRequired:
		return "SessionRequired"
	case ErrorResetRequired:
		return "ResetRequired"
	case ErrorResponseTooLarge:
		return "ResponseTooLarge"
	case ErrorRequestTooLarge:
		return "RequestTooLarge"
	case ErrorLargeResponse:
		return "LargeResponse"
	case ErrorMessageLost:
		return "MessageLost"
	case ErrorInvalidPolicy:
		return "InvalidPolicy"
	case ErrorVersionMismatch:
		return "VersionMismatch"
	case ErrorResponseNotReady:
		return "ResponseNotReady"
	case ErrorRequestResynch:
		return "RequestResynch"
	case ErrorOperationFailed:
		return "OperationFailed"
	case ErrorNoPendingRequest:
		return "NoPendingRequest"
	case ErrorVendorDefined:
		return "VendorDefined"
	default:
		return "Unknown"
	}
}
