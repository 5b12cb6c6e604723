// Copyright (c) 2022 0x9ef. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package ethernetframe

// Tag8021Q is an IEEE 802.1Q VLAN tag: a TPID (always EtherTypeVlan on
// the wire) followed by a TCI packing PCP, DEI, and VLAN ID.
type Tag8021Q struct {
	TPID uint16
	TCI  uint16
}

const maxPcp = 7     // from 0-7
const maxDei = 1     // from 0-1
const maxVlan = 4095 // from 0-4095

// EncodeTCI encodes PCP, DEI, VLAN into a single TCI word.
func EncodeTCI(pcp, dei, vlan uint16) uint16 {
	return (vlan << 4) | (dei << 3) | pcp
}

// DecodeTCI decodes a TCI word into PCP, DEI, and VLAN.
func DecodeTCI(encoded uint16) (pcp, dei, vlan uint16) {
	return encoded & maxPcp, (encoded >> 3) & maxDei, (encoded >> 4) & maxVlan
}
