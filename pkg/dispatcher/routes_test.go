package dispatcher

import (
	"testing"

	"github.com/openspdm/responder-core/pkg/protocol"
)

func TestRouteTableHandlersNonNil(t *testing.T) {
	for key, rt := range routeTable {
		if rt.handler == nil {
			t.Errorf("route %+v has a nil handler", key)
		}
	}
}

func TestRouteTableClearScopeCoversNegotiationSequence(t *testing.T) {
	sequence := []protocol.RequestResponseCode{
		protocol.CodeGetVersion,
		protocol.CodeGetCapabilities,
		protocol.CodeNegotiateAlgorithms,
		protocol.CodeGetDigests,
		protocol.CodeGetCertificate,
		protocol.CodeChallenge,
	}
	for _, code := range sequence {
		if _, ok := routeTable[routeKey{scopeClear, code}]; !ok {
			t.Errorf("missing clear-scope route for %s", code)
		}
	}
}

func TestRouteTableMinStateMonotonicAcrossNegotiation(t *testing.T) {
	order := []protocol.RequestResponseCode{
		protocol.CodeGetVersion,
		protocol.CodeGetCapabilities,
		protocol.CodeNegotiateAlgorithms,
		protocol.CodeGetDigests,
	}
	prev := -1
	for _, code := range order {
		rt, ok := routeTable[routeKey{scopeClear, code}]
		if !ok {
			t.Fatalf("missing route for %s", code)
		}
		if int(rt.minState) < prev {
			t.Errorf("%s's minState %v regresses before the preceding request's", code, rt.minState)
		}
		prev = int(rt.minState)
	}
}

func TestRouteTablePSKFinishOnlyInHandshaking(t *testing.T) {
	if _, ok := routeTable[routeKey{scopeHandshaking, protocol.CodePSKFinish}]; !ok {
		t.Errorf("expected PSK_FINISH route in Handshaking scope")
	}
	if _, ok := routeTable[routeKey{scopeEstablished, protocol.CodePSKFinish}]; ok {
		t.Errorf("PSK_FINISH should not be routable once Established")
	}
}

func TestRouteTableEncapsulatedRequestOnlyInHandshaking(t *testing.T) {
	if _, ok := routeTable[routeKey{scopeHandshaking, protocol.CodeGetEncapsulatedRequest}]; !ok {
		t.Errorf("missing GET_ENCAPSULATED_REQUEST route in Handshaking scope")
	}
	if _, ok := routeTable[routeKey{scopeHandshaking, protocol.CodeDeliverEncapsulatedResponse}]; !ok {
		t.Errorf("missing DELIVER_ENCAPSULATED_RESPONSE route in Handshaking scope")
	}
	if _, ok := routeTable[routeKey{scopeEstablished, protocol.CodeGetEncapsulatedRequest}]; ok {
		t.Errorf("GET_ENCAPSULATED_REQUEST should not be routable once Established")
	}
	if _, ok := routeTable[routeKey{scopeEstablished, protocol.CodeDeliverEncapsulatedResponse}]; ok {
		t.Errorf("DELIVER_ENCAPSULATED_RESPONSE should not be routable once Established")
	}
}

func TestRouteTableDigestsAndCertificateRoutableInEstablished(t *testing.T) {
	for _, code := range []protocol.RequestResponseCode{protocol.CodeGetDigests, protocol.CodeGetCertificate} {
		if _, ok := routeTable[routeKey{scopeEstablished, code}]; !ok {
			t.Errorf("missing Established-scope route for %s", code)
		}
	}
}
