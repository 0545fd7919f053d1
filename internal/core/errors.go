// Package core defines sentinel errors.
package core

import "errors"

// Sentinel errors following the wapdec error handling pattern.
// Decoders wrap them with fmt.Errorf("...: %w", err); callers match with errors.Is.
var (
	// Structural errors abort the current decode call.
	ErrTruncated          = errors.New("wapdec: buffer truncated")
	ErrUnsupportedVersion = errors.New("wapdec: unsupported wbxml version")
	ErrReservedToken      = errors.New("wapdec: reserved token")
	ErrNestingTooDeep     = errors.New("wapdec: element nesting too deep")
	ErrNotMMSE            = errors.New("wapdec: not an mms encapsulated pdu")
	ErrNotWSPPush         = errors.New("wapdec: not a wsp push pdu")
	ErrNotWBXML           = errors.New("wapdec: no wbxml document at offset")

	// Field-local errors are attached to Field.Err and decoding continues.
	ErrOversizedVarint = errors.New("wapdec: uintvar exceeds 32 bits")
	ErrMalformedHeader = errors.New("wapdec: malformed header value")
	ErrValueRange      = errors.New("wapdec: value out of range")
	ErrBadStringIndex  = errors.New("wapdec: string table index out of range")
	ErrUnexpectedEnd   = errors.New("wapdec: END without open element")
	ErrUnexpectedToken = errors.New("wapdec: token not allowed in this state")

	// Packet decoding errors
	ErrPacketTooShort   = errors.New("wapdec: packet too short")
	ErrUnsupportedProto = errors.New("wapdec: unsupported protocol")
	ErrFragmentPending  = errors.New("wapdec: ip fragment buffered for reassembly")
	ErrFragmentLimited  = errors.New("wapdec: ip fragment rate limited")

	// Plugin errors
	ErrPluginNotFound   = errors.New("wapdec: plugin not found")
	ErrPluginInitFailed = errors.New("wapdec: plugin init failed")

	// Configuration errors
	ErrConfigInvalid = errors.New("wapdec: invalid configuration")
)

// IsFatal reports whether err aborts a decode call rather than describing a single field.
func IsFatal(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrOversizedVarint),
		errors.Is(err, ErrMalformedHeader),
		errors.Is(err, ErrValueRange),
		errors.Is(err, ErrBadStringIndex),
		errors.Is(err, ErrUnexpectedEnd),
		errors.Is(err, ErrUnexpectedToken):
		return false
	}
	return true
}
