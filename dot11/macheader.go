// Copyright (c) 2022 0x9ef. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.

// Package dot11 decodes the fixed-size IEEE 802.11 MAC header that
// precedes every captured frame's payload, and the frame-control bits
// that distinguish management, control, and data frames.
package dot11

import (
	"encoding/binary"
	"io"
)

// HeaderSize is the size, in bytes, of the fixed three-address 802.11
// data-frame MAC header this package decodes: frame control (2) +
// duration (2) + addr1 (6) + addr2 (6) + addr3 (6) + sequence control (2).
// The dxwifi link never uses the fourth address or QoS/HT control
// fields, so unlike a general-purpose 802.11 parser this header has a
// single fixed size rather than a variable one.
const HeaderSize = 2 + 2 + 6 + 6 + 6 + 2

// MACHeader is the fixed portion of an 802.11 MAC header carried by
// every dxwifi frame (control or data). It deliberately omits the
// optional fourth address, QoS, and HT-control fields present in
// Frame80211 upstream — the transmitter never emits them — keeping
// HeaderSize constant so the Frame Controller can do fixed-offset math.
type MACHeader struct {
	FrameControl uint16
	Duration     uint16
	Addr1        HardwareAddr
	Addr2        HardwareAddr
	Addr3        HardwareAddr
	SeqControl   uint16
}

// ParseMACHeader decodes a MACHeader from the start of b. b must be at
// least HeaderSize bytes; the caller (the Frame Controller) is
// responsible for locating the MAC header within the captured frame,
// i.e. skipping the variable-length radiotap header first.
func ParseMACHeader(b []byte) (MACHeader, error) {
	if len(b) < HeaderSize {
		return MACHeader{}, io.ErrUnexpectedEOF
	}
	var h MACHeader
	h.FrameControl = binary.BigEndian.Uint16(b[0:2])
	h.Duration = binary.BigEndian.Uint16(b[2:4])
	copy(h.Addr1[:], b[4:10])
	copy(h.Addr2[:], b[10:16])
	copy(h.Addr3[:], b[16:22])
	h.SeqControl = binary.BigEndian.Uint16(b[22:24])
	return h, nil
}

// Dot11FrameControl holds the decoded sub-fields of a frame-control word.
type Dot11FrameControl struct {
	Version uint16
	Type    uint16
	Subtype uint16
	ToDS    uint16
	FromDS  uint16
	MoreFrag uint16
	Retry    uint16
	PwrMgt   uint16
	MoreData uint16
	WEP      uint16
	Order    uint16
}

// EncodeFrameControl packs frame-control sub-fields into the wire format.
func EncodeFrameControl(fc Dot11FrameControl) uint16 {
	return (fc.Order << 15) | (fc.WEP << 14) |
		(fc.MoreData << 13) | (fc.PwrMgt << 12) |
		(fc.Retry << 11) | (fc.MoreFrag << 10) |
		(fc.FromDS << 9) | (fc.ToDS << 8) |
		(fc.Subtype << 4) | (fc.Type << 2) | fc.Version
}

// DecodeFrameControl unpacks a raw frame-control word into its sub-fields.
func DecodeFrameControl(encoded uint16) Dot11FrameControl {
	return Dot11FrameControl{
		Version:  encoded & 3,
		Type:     (encoded >> 2) & 3,
		Subtype:  (encoded >> 4) & 15,
		ToDS:     (encoded >> 8) & 1,
		FromDS:   (encoded >> 9) & 1,
		MoreFrag: (encoded >> 10) & 1,
		Retry:    (encoded >> 11) & 1,
		PwrMgt:   (encoded >> 12) & 1,
		MoreData: (encoded >> 13) & 1,
		WEP:      (encoded >> 14) & 1,
		Order:    (encoded >> 15) & 1,
	}
}
