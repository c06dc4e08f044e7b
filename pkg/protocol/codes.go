package protocol

// RequestResponseCode identifies an SPDM message type (the single opcode
// byte in every SPDM header). Request codes and the matching response codes
// share this type so dispatch tables can be keyed uniformly.
type RequestResponseCode uint8

const (
	CodeGetDigests                  RequestResponseCode = 0x81
	CodeGetCertificate              RequestResponseCode = 0x82
	CodeChallenge                   RequestResponseCode = 0x83
	CodeGetVersion                  RequestResponseCode = 0x84
	CodeGetMeasurements             RequestResponseCode = 0xE0
	CodeGetCapabilities             RequestResponseCode = 0xE1
	CodeNegotiateAlgorithms         RequestResponseCode = 0xE3
	CodeKeyExchange                 RequestResponseCode = 0xE4
	CodeFinish                      RequestResponseCode = 0xE5
	CodePSKExchange                 RequestResponseCode = 0xE6
	CodePSKFinish                   RequestResponseCode = 0xE7
	CodeHeartbeat                   RequestResponseCode = 0xE8
	CodeKeyUpdate                   RequestResponseCode = 0xE9
	CodeGetEncapsulatedRequest      RequestResponseCode = 0xEA
	CodeDeliverEncapsulatedResponse RequestResponseCode = 0xEB
	CodeEndSession                  RequestResponseCode = 0xEC
	CodeResponseIfReady             RequestResponseCode = 0xEE
	CodeVendorDefinedRequest        RequestResponseCode = 0xEF

	CodeDigests                    RequestResponseCode = 0x01
	CodeCertificate                RequestResponseCode = 0x02
	CodeChallengeAuth               RequestResponseCode = 0x03
	CodeVersion                    RequestResponseCode = 0x04
	CodeMeasurements                RequestResponseCode = 0x60
	CodeCapabilities                RequestResponseCode = 0x61
	CodeAlgorithms                  RequestResponseCode = 0x63
	CodeKeyExchangeRsp              RequestResponseCode = 0x64
	CodeFinishRsp                   RequestResponseCode = 0x65
	CodePSKExchangeRsp              RequestResponseCode = 0x66
	CodePSKFinishRsp                RequestResponseCode = 0x67
	CodeHeartbeatAck                RequestResponseCode = 0x68
	CodeKeyUpdateAck                RequestResponseCode = 0x69
	CodeEncapsulatedRequest          RequestResponseCode = 0x6A
	CodeEncapsulatedResponseAck      RequestResponseCode = 0x6B
	CodeEndSessionAck               RequestResponseCode = 0x6C
	CodeVendorDefinedResponse        RequestResponseCode = 0x6F
	CodeError                        RequestResponseCode = 0x7F
)

// IsRequest reports whether code is a request (as opposed to a response or
// ERROR). SPDM requests always have the high nibble set to 0x8 or 0xE/0xF by
// convention of this code space; response codes use 0x0-0x7 and 0x6x/0x7x.
func (c RequestResponseCode) IsRequest() bool {
	switch c {
	case CodeGetDigests, CodeGetCertificate, CodeChallenge, CodeGetVersion,
		CodeGetMeasurements, CodeGetCapabilities, CodeNegotiateAlgorithms,
		CodeKeyExchange, CodeFinish, CodePSKExchange, CodePSKFinish,
		CodeHeartbeat, CodeKeyUpdate, CodeGetEncapsulatedRequest,
		CodeDeliverEncapsulatedResponse, CodeEndSession, CodeResponseIfReady,
		CodeVendorDefinedRequest:
		return true
	default:
		return false
	}
}

// String returns a human-readable mnemonic for the code, for logging.
func (c RequestResponseCode) String() string {
	switch c {
	case CodeGetDigests:
		return "GET_DIGESTS"
	case CodeGetCertificate:
		return "GET_CERTIFICATE"
	case CodeChallenge:
		return "CHALLENGE"
	case CodeGetVersion:
		return "GET_VERSION"
	case CodeGetMeasurements:
		return "GET_MEASUREMENTS"
	case CodeGetCapabilities:
		return "GET_CAPABILITIES"
	case CodeNegotiateAlgorithms:
		return "NEGOTIATE_ALGORITHMS"
	case CodeKeyExchange:
		return "KEY_EXCHANGE"
	case CodeFinish:
		return "FINISH"
	case CodePSKExchange:
		return "PSK_EXCHANGE"
	case CodePSKFinish:
		return "PSK_FINISH"
	case CodeHeartbeat:
		return "HEARTBEAT"
	case CodeKeyUpdate:
		return "KEY_UPDATE"
	case CodeGetEncapsulatedRequest:
		return "GET_ENCAPSULATED_REQUEST"
	case CodeDeliverEncapsulatedResponse:
		return "DELIVER_ENCAPSULATED_RESPONSE"
	case CodeEndSession:
		return "END_SESSION"
	case CodeResponseIfReady:
		return "RESPONSE_IF_READY"
	case CodeVendorDefinedRequest:
		return "VENDOR_DEFINED_REQUEST"
	case CodeDigests:
		return "DIGESTS"
	case CodeCertificate:
		return "CERTIFICATE"
	case CodeChallengeAuth:
		return "CHALLENGE_AUTH"
	case CodeVersion:
		return "VERSION"
	case CodeMeasurements:
		return "MEASUREMENTS"
	case CodeCapabilities:
		return "CAPABILITIES"
	case CodeAlgorithms:
		return "ALGORITHMS"
	case CodeKeyExchangeRsp:
		return "KEY_EXCHANGE_RSP"
	case CodeFinishRsp:
		return "FINISH_RSP"
	case CodePSKExchangeRsp:
		return "PSK_EXCHANGE_RSP"
	case CodePSKFinishRsp:
		return "PSK_FINISH_RSP"
	case CodeHeartbeatAck:
		return "HEARTBEAT_ACK"
	case CodeKeyUpdateAck:
		return "KEY_UPDATE_ACK"
	case CodeEncapsulatedRequest:
		return "ENCAPSULATED_REQUEST"
	case CodeEncapsulatedResponseAck:
		return "ENCAPSULATED_RESPONSE_ACK"
	case CodeEndSessionAck:
		return "END_SESSION_ACK"
	case CodeVendorDefinedResponse:
		return "VENDOR_DEFINED_RESPONSE"
	case CodeError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
