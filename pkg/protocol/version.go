// Package protocol carries the SPDM (DMTF DSP0274) constant space: wire
// versions, request/response codes, capability and algorithm bitsets, and
// error codes. It has no behavior beyond string formatting and membership
// tests — the wire shapes that use these constants live in package wire.
package protocol

// Version identifies an SPDM protocol version. Only 1.0 through 1.2 are
// supported; the core never negotiates an SPDM extension version outside
// this range.
type Version uint8

const (
	Version10 Version = 0x10
	Version11 Version = 0x11
	Version12 Version = 0x12
)

// String returns a human-readable version string.
func (v Version) String() string {
	switch v {
	case Version10:
		return "1.0"
	case Version11:
		return "1.1"
	case Version12:
		return "1.2"
	default:
		return "unknown"
	}
}

// IsValid reports whether v is one of the supported versions.
func (v Version) IsValid() bool {
	switch v {
	case Version10, Version11, Version12:
		return true
	default:
		return false
	}
}

// AtLeast reports whether v is greater than or equal to other.
func (v Version) AtLeast(other Version) bool {
	return v >= other
}

// SupportedVersions is every version this responder core can negotiate, in
// the order the VERSION response enumerates them.
var SupportedVersions = []Version{Version10, Version11, Version12}
