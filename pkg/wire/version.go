package wire

import (
	"github.com/openspdm/responder-core/pkg/codec"
	"github.com/openspdm/responder-core/pkg/protocol"
)

// GetVersionRequest carries no payload beyond the header.
type GetVersionRequest struct{}

func DecodeGetVersionRequest(r *codec.Reader) (GetVersionRequest, bool) {
	return GetVersionRequest{}, true
}

// VersionEntry is one (major.minor, alpha) entry in the VERSION response's
// version number table.
type VersionEntry struct {
	Version protocol.Version
	Alpha   uint8
}

// VersionResponse lists every SPDM version this responder supports.
type VersionResponse struct {
	Entries []VersionEntry
}

// EncodeTo writes the VERSION response (header already written by caller's
// convention is NOT assumed here — callers pass the pre-positioned writer
// after writing the MessageHeader).
func (v VersionResponse) EncodeTo(w *codec.Writer) bool {
	if !w.PutU8(0) { // reserved
		return false
	}
	if !w.PutU8(uint8(len(v.Entries))) {
		return false
	}
	for _, e := range v.Entries {
		// DSP0274 packs (major<<12|minor<<8|update<<4|alpha) into a uint16;
		// this core only needs major.minor + alpha resolution.
		word := uint16(e.Version)<<8 | uint16(e.Alpha)
		if !w.PutU16(word) {
			return false
		}
	}
	return true
}

func DecodeVersionResponse(r *codec.Reader) (VersionResponse, bool) {
	var v VersionResponse
	if _, ok := r.ReadU8(); !ok {
		return v, false
	}
	count, ok := r.ReadU8()
	if !ok {
		return v, false
	}
	for i := uint8(0); i < count; i++ {
		word, ok := r.ReadU16()
		if !ok {
			return v, false
		}
		v.Entries = append(v.Entries, VersionEntry{
			Version: protocol.Version(word >> 8),
			Alpha:   uint8(word & 0xFF),
		})
	}
	return v, true
}

// DefaultVersionResponse lists the full supported range, in the order
// negotiation prefers (highest last, per DSP0274 convention of requester
// picking the last mutually supported entry).
func DefaultVersionResponse() VersionResponse {
	entries := make([]VersionEntry, 0, len(protocol.SupportedVersions))
	for _, v := range protocol.SupportedVersions {
		entries = append(entries, VersionEntry{Version: v})
	}
	return VersionResponse{Entries: entries}
}
