// Copyright (c) 2022 0x9ef. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.

// Package ethernetframe decodes the Ethernet frame a dxwifi tunnel may
// carry as payload, for the optional diagnostics inspector. Its Rate
// type is also used by the stats package to report throughput; the
// controller itself never decodes payload as Ethernet — it only ever
// sees opaque payload bytes.
package ethernetframe

import "fmt"

// Rate is a bit rate, used to report reassembly throughput in
// human-scale units rather than a raw byte count.
type Rate uint64

const (
	Bit  Rate = 1
	Byte Rate = 8 * Bit
	KB   Rate = 128 * Byte
	MB   Rate = 1024 * KB
	GB   Rate = 1024 * MB
)

const (
	// BASE105 (10BASE5) is the original 10 Mbit/s Ethernet rate.
	BASE105 = 10 * MB
	// BASE100T is Fast Ethernet, 100 Mbit/s.
	BASE100T = 100 * MB
	// BASE1000T is Gigabit Ethernet, 1 Gbit/s.
	BASE1000T = 1 * GB
)

// String renders the rate in the largest unit that keeps the value >= 1.
func (r Rate) String() string {
	switch {
	case r >= GB:
		return fmt.Sprintf("%.2fGbit/s", float64(r)/float64(GB))
	case r >= MB:
		return fmt.Sprintf("%.2fMbit/s", float64(r)/float64(MB))
	case r >= KB:
		return fmt.Sprintf("%.2fKbit/s", float64(r)/float64(KB))
	default:
		return fmt.Sprintf("%dbit/s", uint64(r))
	}
}
