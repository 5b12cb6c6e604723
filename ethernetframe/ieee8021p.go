// Copyright (c) 2022 0x9ef. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package ethernetframe

// IEEE 802.1p priority code points 0-7, in code-point order.
const (
	PcpBE = iota // Best Effort
	PcpBK        // Background
	PcpEE        // Excellent Effort
	PcpCA        // Critical Applications
	PcpVI        // Video, < 100 ms latency and jitter
	PcpVO        // Voice, < 10 ms latency and jitter
	PcpIC        // Internetwork Control
	PcpNC        // Network Control (highest)
)
