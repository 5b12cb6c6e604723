// Package verify checks a captured frame's sender against an expected
// hardware address with bit-flip tolerance: a Hamming-distance check
// against the three MAC address fields of a captured frame's header,
// since the transmitter stuffs its identifier into all three address
// slots and the channel may flip bits in any one of them.
package verify

import "github.com/oresat/dxwifi-receiver/dot11"

// Verifier accepts a frame if any of its three MAC address fields
// differs from Expected by fewer than MaxHammingDist bits.
type Verifier struct {
	Expected       dot11.HardwareAddr
	MaxHammingDist int
}

// New returns a Verifier checking against expected with a distance
// threshold of maxDist bits (exclusive).
func New(expected dot11.HardwareAddr, maxDist int) *Verifier {
	return &Verifier{Expected: expected, MaxHammingDist: maxDist}
}

// Accept reports whether the frame should be accepted: at least one of
// addr1, addr2, addr3 must differ from Expected by strictly fewer than
// MaxHammingDist bits.
func (v *Verifier) Accept(addr1, addr2, addr3 dot11.HardwareAddr) bool {
	return v.Expected.HammingDistance(addr1) < v.MaxHammingDist ||
		v.Expected.HammingDistance(addr2) < v.MaxHammingDist ||
		v.Expected.HammingDistance(addr3) < v.MaxHammingDist
}
