// Copyright (c) 2022 0x9ef. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package ethernetframe

// EtherType is a two-octet field in an Ethernet frame.
// It indicates which protocol is encapsulated in the payload of the
// frame, used here only to label the contents of a reassembled tunnel
// block for diagnostics.
//
// http://www.iana.org/assignments/ieee-802-numbers/ieee-802-numbers.xhtml
type EtherType uint16

const (
	EtherTypeIPv4 EtherType = 0x0800
	EtherTypeIPv6 EtherType = 0x86DD
	EtherTypeVlan EtherType = 0x8100
)
