package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/oresat/dxwifi-receiver/dot11"
)

func TestAcceptExactMatch(t *testing.T) {
	expected := dot11.HardwareAddr{0x02, 0x11, 0x22, 0x33, 0x44, 0x55}
	v := New(expected, 4)
	assert.True(t, v.Accept(expected, dot11.ZeroAddr, dot11.ZeroAddr))
}

func TestRejectAllFieldsFarFromExpected(t *testing.T) {
	expected := dot11.HardwareAddr{0x02, 0x11, 0x22, 0x33, 0x44, 0x55}
	far := dot11.HardwareAddr{0xFD, 0xEE, 0xDD, 0xCC, 0xBB, 0xAA}
	v := New(expected, 4)
	assert.False(t, v.Accept(far, far, far))
}

func TestAcceptAnySingleField(t *testing.T) {
	expected := dot11.HardwareAddr{0x02, 0x11, 0x22, 0x33, 0x44, 0x55}
	far := dot11.HardwareAddr{0xFD, 0xEE, 0xDD, 0xCC, 0xBB, 0xAA}

	almostExact := expected
	almostExact[5] ^= 0x01 // 1 bit flipped

	v := New(expected, 4)
	assert.True(t, v.Accept(far, almostExact, far), "addr2 alone within threshold should accept")
}

// TestAddressToleranceProperty checks that a frame whose any single
// address field differs from expected by fewer than MaxHammingDist
// bits is accepted.
func TestAddressToleranceProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		expectedBytes := rapid.ArrayOf(6, rapid.Byte()).Draw(t, "expected")
		var expected dot11.HardwareAddr
		copy(expected[:], expectedBytes[:])

		maxDist := rapid.IntRange(1, 20).Draw(t, "maxDist")
		flips := rapid.IntRange(0, maxDist-1).Draw(t, "flips")

		candidate := flipRandomBits(t, expected, flips)

		v := New(expected, maxDist)
		if !v.Accept(candidate, dot11.ZeroAddr, dot11.ZeroAddr) {
			t.Fatalf("expected acceptance: flips=%d < maxDist=%d", flips, maxDist)
		}
	})
}

func flipRandomBits(t *rapid.T, addr dot11.HardwareAddr, count int) dot11.HardwareAddr {
	out := addr
	for i := 0; i < count; i++ {
		byteIdx := rapid.IntRange(0, 5).Draw(t, "byteIdx")
		bitIdx := rapid.IntRange(0, 7).Draw(t, "bitIdx")
		out[byteIdx] ^= 1 << uint(bitIdx)
	}
	return out
}
