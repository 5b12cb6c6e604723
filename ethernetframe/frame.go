// Copyright (c) 2022 0x9ef. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package ethernetframe

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"

	"github.com/oresat/dxwifi-receiver/dot11"
)

// Frame is a tunneled Ethernet II frame: destination and source MAC,
// an optional 802.1Q tag, an EtherType, payload, and a trailing FCS.
//
// The dxwifi reassembly core itself never constructs or parses a
// Frame — it delivers raw payload bytes to the sink. Frame exists so
// the optional Ethernet tunnel inspector can make a best-effort
// diagnostic decode of reassembled blocks when the transmitter happens
// to be tunneling Ethernet traffic.
type Frame struct {
	dst       dot11.HardwareAddr
	src       dot11.HardwareAddr
	tag       *Tag8021Q
	etherType EtherType
	payload   []byte
	fcs       [4]byte
}

// NewFrame constructs a Frame, padding payload up to minPayloadSize
// with zeroes if it is shorter.
func NewFrame(dst, src dot11.HardwareAddr, etherType EtherType, payload []byte) *Frame {
	b := payload
	if len(payload) < minPayloadSize {
		b = make([]byte, minPayloadSize)
		copy(b, payload)
	}
	f := &Frame{dst: dst, src: src, etherType: etherType, payload: b}
	f.fcs = f.computeFCS()
	return f
}

// Source returns the frame's source MAC address.
func (f *Frame) Source() dot11.HardwareAddr { return f.src }

// Destination returns the frame's destination MAC address.
func (f *Frame) Destination() dot11.HardwareAddr { return f.dst }

// EtherType reports which protocol the payload carries.
func (f *Frame) EtherType() EtherType { return f.etherType }

// Payload returns the frame's payload, including any zero-padding
// applied to satisfy the minimum frame size.
func (f *Frame) Payload() []byte { return f.payload }

// Tag returns the frame's 802.1Q tag, or nil if untagged.
func (f *Frame) Tag() *Tag8021Q       { return f.tag }
func (f *Frame) SetTag(tag *Tag8021Q) { f.tag = tag }

// FCS returns the frame's check sequence.
func (f *Frame) FCS() [4]byte { return f.fcs }

// Check reports whether the frame's addresses conform to the basic
// sanity rules expected of a real Ethernet frame: a source address
// cannot be the broadcast address, nor equal to the destination.
func (f *Frame) Check() error {
	if f.src.Compare(dot11.BroadcastAddr) || f.src.Compare(f.dst) {
		return errors.New("ethernetframe: source address is broadcast or equals destination")
	}
	return nil
}

const minSize = 60 // destination + source + ethertype + minPayloadSize, FCS excluded
const minPayloadSize = 46

func (f *Frame) size() int {
	var tagSz int
	if f.tag != nil {
		tagSz = 4
	}
	return 6 + 6 + tagSz + 2 + len(f.payload) + 4
}

// Marshal serializes the frame to its wire representation.
func (f *Frame) Marshal() []byte {
	sz := f.size()
	b := make([]byte, sz)
	var n int
	copy(b[n:n+6], f.dst[:])
	n += 6
	copy(b[n:n+6], f.src[:])
	n += 6
	if f.tag != nil {
		binary.BigEndian.PutUint16(b[n:n+2], f.tag.TPID)
		n += 2
		binary.BigEndian.PutUint16(b[n:n+2], f.tag.TCI)
		n += 2
	}
	binary.BigEndian.PutUint16(b[n:n+2], uint16(f.etherType))
	n += 2
	n += copy(b[n:sz-4], f.payload)
	binary.BigEndian.PutUint32(b[n:], crc32.ChecksumIEEE(b[:n]))
	return b
}

// Unmarshal decodes a Frame from its wire representation.
func Unmarshal(b []byte) (*Frame, error) {
	if len(b) < minSize {
		return nil, io.ErrUnexpectedEOF
	}
	f := new(Frame)
	sz := len(b)
	var n int
	copy(f.dst[:], b[n:n+6])
	n += 6
	copy(f.src[:], b[n:n+6])
	n += 6

	etype := EtherType(binary.BigEndian.Uint16(b[n : n+2]))
	if etype == EtherTypeVlan {
		f.tag = &Tag8021Q{
			TPID: uint16(etype),
			TCI:  binary.BigEndian.Uint16(b[n+2 : n+4]),
		}
		f.etherType = EtherType(binary.BigEndian.Uint16(b[n+4 : n+6]))
		n += 6
	} else {
		f.etherType = etype
		n += 2
	}

	f.payload = b[n : sz-4]
	n += len(f.payload)
	copy(f.fcs[:], b[n:])
	return f, nil
}

func (f *Frame) computeFCS() (fcs [4]byte) {
	b := f.Marshal()
	copy(fcs[:], b[len(b)-4:])
	return fcs
}
