package dispatcher

import (
	"crypto/rand"
	"fmt"

	"github.com/openspdm/responder-core/pkg/codec"
	"github.com/openspdm/responder-core/pkg/crypto"
	"github.com/openspdm/responder-core/pkg/protocol"
	"github.com/openspdm/responder-core/pkg/wire"
)

// handleGetMeasurementsCommon builds the MEASUREMENTS response shared by
// the clear-channel and secured-session GET_MEASUREMENTS routes: both
// serve the same static block list from d.measurements, differing only in
// which dispatch table routed the request here.
func handleGetMeasurementsCommon(d *Responder, body []byte) (protocol.RequestResponseCode, []byte, error) {
	if !d.capabilities.MeasurementCapability() {
		return 0, nil, wire.ErrUnsupportedRequest()
	}
	req, ok := wire.DecodeGetMeasurementsRequest(codec.NewReader(body), 32)
	if !ok {
		return 0, nil, wire.ErrInvalidRequest()
	}

	resp := wire.MeasurementsResponse{NumberOfBlocks: uint8(len(d.measurements))}
	if req.RequestAll {
		resp.Blocks = d.measurements
	} else {
		for _, b := range d.measurements {
			if b.Index == req.MeasurementIndex {
				resp.Blocks = []wire.MeasurementBlock{b}
				resp.NumberOfBlocks = 1
				break
			}
		}
	}

	if req.RequestSignature {
		if !d.capabilities.Has(protocol.RspCapMeasCapSig) {
			return 0, nil, wire.ErrUnsupportedRequest()
		}
		hasher, err := d.ctx.Registry.Hasher(d.ctx.Negotiation.BaseHashAlgo)
		if err != nil {
			return 0, nil, wire.ErrUnsupportedRequest()
		}
		signer, err := d.ctx.Registry.Signer(d.ctx.Negotiation.BaseAsymAlgo)
		if err != nil {
			return 0, nil, wire.ErrUnsupportedRequest()
		}
		resp.Nonce = make([]byte, 32)
		if _, err := rand.Read(resp.Nonce); err != nil {
			return 0, nil, fmt.Errorf("%w: %v", ErrCrypto, err)
		}
		// Signed over a fresh digest of the request nonce and response
		// fields rather than the full connection transcript: DSP0274 defines
		// a dedicated L1/L2 measurement transcript this core does not model
		// separately from M1/M2 (see DESIGN.md).
		state := hasher.New()
		state.Write(req.Nonce)
		for _, b := range resp.Blocks {
			state.Write(b.Value)
		}
		state.Write(resp.Nonce)
		sig, err := signer.Sign(state.Sum())
		if err != nil {
			return 0, nil, fmt.Errorf("%w: %v", ErrCrypto, err)
		}
		resp.Signature = sig
	}

	w := d.newResponseWriter()
	if !resp.EncodeTo(w) {
		return 0, nil, wire.ErrResponseTooLarge()
	}
	return protocol.CodeMeasurements, w.UsedSlice(), nil
}

// summarizeMeasurements hashes every measurement block's value into one
// digest, the MeasurementSummaryHash KEY_EXCHANGE/PSK_EXCHANGE/CHALLENGE
// embed when the requester asked for one (hashType TCB-only vs all is not
// distinguished further since this core tags no block by TCB membership).
func summarizeMeasurements(d *Responder, hasher crypto.Hasher, hashType uint8) ([]byte, error) {
	if hashType == 0 {
		return nil, nil
	}
	state := hasher.New()
	for _, b := range d.measurements {
		state.Write(b.Value)
	}
	return state.Sum(), nil
}
