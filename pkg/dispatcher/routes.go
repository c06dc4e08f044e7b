package dispatcher

import (
	"github.com/openspdm/responder-core/pkg/protocol"
	"github.com/openspdm/responder-core/pkg/session"
	"github.com/openspdm/responder-core/pkg/spdmcontext"
	"github.com/openspdm/responder-core/pkg/wire"
)

// routeHandler processes one decoded request and returns the response
// code/payload to send, or an error. A *wire.ErrorResponse return is
// treated as a recoverable protocol error (encoded and sent as ERROR);
// any other error aborts the exchange and propagates to ProcessMessage's
// caller. sess is nil for clear-scope handlers.
type routeHandler func(d *Responder, sess *session.Session, header wire.MessageHeader, body []byte) (protocol.RequestResponseCode, []byte, error)

// scope identifies which of the three dispatch tables a route belongs to,
// generalizing pkg/exchange/manager.go's exchangeKey-indexed map and
// pkg/securechannel/manager.go's opcode-predicate-table style into a full
// (state, code) -> handler table.
type scope int

const (
	scopeClear scope = iota
	scopeHandshaking
	scopeEstablished
)

type routeKey struct {
	scope scope
	code  protocol.RequestResponseCode
}

// route pairs a handler with the minimum connection state required to
// reach it. minState is only consulted for scopeClear routes; secured
// routes are already gated by which table they're looked up in
// (Handshaking vs Established session state).
type route struct {
	handler  routeHandler
	minState spdmcontext.ConnectionState
}

// routeTable is built once at package init and never mutated, matching
// §9's "write-once" framing extended to the route table itself.
var routeTable = map[routeKey]route{
	// Clear-text (unsecured connection) dispatch, DSP0274's negotiation
	// and authentication sequence.
	{scopeClear, protocol.CodeGetVersion}:          {handleGetVersion, spdmcontext.NotStarted},
	{scopeClear, protocol.CodeGetCapabilities}:      {handleGetCapabilities, spdmcontext.AfterVersion},
	{scopeClear, protocol.CodeNegotiateAlgorithms}:  {handleNegotiateAlgorithms, spdmcontext.AfterCapabilities},
	{scopeClear, protocol.CodeGetDigests}:           {handleGetDigests, spdmcontext.Negotiated},
	{scopeClear, protocol.CodeGetCertificate}:       {handleGetCertificate, spdmcontext.Negotiated},
	{scopeClear, protocol.CodeChallenge}:            {handleChallenge, spdmcontext.Negotiated},
	{scopeClear, protocol.CodeGetMeasurements}:       {handleGetMeasurementsClear, spdmcontext.Negotiated},
	{scopeClear, protocol.CodeKeyExchange}:          {handleKeyExchange, spdmcontext.Negotiated},
	{scopeClear, protocol.CodePSKExchange}:          {handlePSKExchange, spdmcontext.Negotiated},
	{scopeClear, protocol.CodeVendorDefinedRequest}: {handleVendorDefined, spdmcontext.NotStarted},
	{scopeClear, protocol.CodeResponseIfReady}:      {handleResponseIfReadyReject, spdmcontext.NotStarted},

	// Secured dispatch, Handshaking state: only the messages that close
	// out the handshake, plus the encapsulated mutual-auth sub-protocol
	// and vendor-defined messages (supplemented per original_source).
	{scopeHandshaking, protocol.CodeFinish}:                        {handleFinish, spdmcontext.NotStarted},
	{scopeHandshaking, protocol.CodePSKFinish}:                     {handlePSKFinish, spdmcontext.NotStarted},
	{scopeHandshaking, protocol.CodeGetEncapsulatedRequest}:        {handleGetEncapsulatedRequest, spdmcontext.NotStarted},
	{scopeHandshaking, protocol.CodeDeliverEncapsulatedResponse}:   {handleDeliverEncapsulatedResponse, spdmcontext.NotStarted},
	{scopeHandshaking, protocol.CodeVendorDefinedRequest}:          {handleVendorDefined, spdmcontext.NotStarted},
	{scopeHandshaking, protocol.CodeResponseIfReady}:               {handleResponseIfReadyReject, spdmcontext.NotStarted},

	// Secured dispatch, Established state: ordinary session traffic.
	// Note PSK_FINISH has no entry here (DSP0274/Rust match arms accept
	// it only inside Handshaking; see SPEC_FULL §12). GET_ENCAPSULATED_
	// REQUEST/DELIVER_ENCAPSULATED_RESPONSE are likewise Handshaking-only
	// (spec.md: "Allowed only in Handshaking") and have no entry here.
	{scopeEstablished, protocol.CodeHeartbeat}:         {handleHeartbeat, spdmcontext.NotStarted},
	{scopeEstablished, protocol.CodeKeyUpdate}:         {handleKeyUpdate, spdmcontext.NotStarted},
	{scopeEstablished, protocol.CodeGetMeasurements}:    {handleGetMeasurementsSecured, spdmcontext.NotStarted},
	{scopeEstablished, protocol.CodeEndSession}:        {handleEndSession, spdmcontext.NotStarted},
	{scopeEstablished, protocol.CodeGetDigests}:        {handleGetDigests, spdmcontext.NotStarted},
	{scopeEstablished, protocol.CodeGetCertificate}:    {handleGetCertificate, spdmcontext.NotStarted},
	{scopeEstablished, protocol.CodeVendorDefinedRequest}: {handleVendorDefined, spdmcontext.NotStarted},
	{scopeEstablished, protocol.CodeResponseIfReady}:   {handleResponseIfReadyReject, spdmcontext.NotStarted},
}
