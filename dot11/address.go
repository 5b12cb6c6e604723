// Copyright (c) 2022 0x9ef. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package dot11

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var BroadcastAddr = HardwareAddr{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
var ZeroAddr = HardwareAddr{0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

// HardwareAddr is an IEEE 802 media access control address: six octets,
// recognizable as groups of two hexadecimal digits separated by colons.
// It is used here for the three address fields of an 802.11 MAC
// header, not just Ethernet.
type HardwareAddr [6]byte

// NewHardwareAddr returns a new MAC address as HardwareAddr.
func NewHardwareAddr(b0, b1, b2, b3, b4, b5 byte) HardwareAddr {
	return HardwareAddr{b0, b1, b2, b3, b4, b5}
}

// ParseHardwareAddr parses a colon-separated MAC address string.
func ParseHardwareAddr(addr string) (HardwareAddr, error) {
	b := strings.SplitN(addr, ":", 6)
	if len(b) != 6 {
		return HardwareAddr{}, errors.New("dot11: cannot parse hardware address, expected 6 colon-separated octets")
	}
	var haddr HardwareAddr
	for i := range b {
		v, err := strconv.ParseUint(b[i], 16, 16)
		if err != nil {
			return HardwareAddr{}, err
		}
		haddr[i] = byte(v)
	}
	return haddr, nil
}

// String renders the address as lowercase colon-separated hex.
func (h HardwareAddr) String() string {
	return fmt.Sprintf("%.2x:%.2x:%.2x:%.2x:%.2x:%.2x",
		h[0], h[1], h[2], h[3], h[4], h[5],
	)
}

// Compare reports whether two addresses are byte-for-byte equal.
func (h HardwareAddr) Compare(raddr HardwareAddr) bool {
	return bytes.Equal(h[:], raddr[:])
}

// IsEmpty reports whether the address is all zero bytes.
func (h HardwareAddr) IsEmpty() bool {
	return h == ZeroAddr
}

// FrameNumber interprets bytes 2-5 of the address as a big-endian
// 32-bit frame number. This is where the dxwifi transmitter stamps its
// sequence number, at byte offset 2 of addr1.
func (h HardwareAddr) FrameNumber() int32 {
	return int32(binary.BigEndian.Uint32(h[2:6]))
}

// hammingWeight32 counts set bits, used by HammingDistance.
func hammingWeight32(x uint32) int {
	n := 0
	for x != 0 {
		x &= x - 1
		n++
	}
	return n
}

// HammingDistance returns the bit-count difference between h and other,
// computed as a (32-bit, 16-bit) pair: the first four bytes compared
// as a uint32, the last two as a uint16.
func (h HardwareAddr) HammingDistance(other HardwareAddr) int {
	hi := binary.BigEndian.Uint32(h[0:4]) ^ binary.BigEndian.Uint32(other[0:4])
	lo := uint32(binary.BigEndian.Uint16(h[4:6]) ^ binary.BigEndian.Uint16(other[4:6]))
	return hammingWeight32(hi) + hammingWeight32(lo)
}
