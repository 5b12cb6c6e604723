// Package radiotap defines the narrow interface the frame controller
// consumes for decoding the variable-length radiotap header prepended
// to every captured 802.11 frame. The header itself is self-describing
// (its length is one of the few fields whose offset is fixed
// regardless of which optional fields are present), so HeaderLength
// below can be computed without a full decode.
package radiotap

import "encoding/binary"

// headerLengthOffset and headerLengthSize describe where the 16-bit
// little-endian "it_len" field lives in every radiotap header,
// per the radiotap wire format: 1 byte version, 1 byte pad, then
// it_len, then a present-flags bitmask and the fields it selects.
const (
	headerLengthOffset = 2
	headerLengthSize   = 2
	MinHeaderSize      = headerLengthOffset + headerLengthSize
)

// HeaderLength reads the self-describing length of the radiotap
// header at the start of b, without interpreting any of its optional
// fields. Returns an error if b is too short to contain the length
// field itself.
func HeaderLength(b []byte) (int, error) {
	if len(b) < MinHeaderSize {
		return 0, errShortRadiotap
	}
	return int(binary.LittleEndian.Uint16(b[headerLengthOffset : headerLengthOffset+2])), nil
}

var errShortRadiotap = radiotapError("radiotap: header shorter than the length field itself")

type radiotapError string

func (e radiotapError) Error() string { return string(e) }

// Decoded is the set of radiotap fields the decoder reports: signal
// strength, channel, MCS, antenna, TSFT, and the radiotap Flags byte,
// plus a Has* flag per optional field so callers can tell which fields
// were actually supplied by the capture driver.
type Decoded struct {
	TSFT            uint64
	Flags           uint8
	ChannelFreqMHz  uint16
	ChannelFlags    uint16
	AntennaSignalDB int8
	MCS             uint8
	Antenna         uint8

	HasTSFT    bool
	HasChannel bool
	HasSignal  bool
	HasMCS     bool
	HasAntenna bool
}

// FCSAtEnd reports whether the radiotap Flags field's "FCS at end"
// bit is set — used only as a cross-check diagnostic against the
// receiver's own configured live/offline mode, never to override it.
func (d Decoded) FCSAtEnd() bool { return d.Flags&0x10 != 0 }

// Decoder decodes the radiotap header of a captured frame. The
// capture driver and its wire format are out of scope for the core;
// this interface is the seam a concrete implementation (see
// GopacketDecoder) plugs into.
type Decoder interface {
	// Decode parses the radiotap header occupying the first
	// HeaderLength(frame) bytes of frame and returns the fields the
	// Frame Controller records into capture statistics.
	Decode(frame []byte) (Decoded, error)
}
