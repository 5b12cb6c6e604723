// Package stats defines the capture statistics record returned to the
// caller on capture completion.
package stats

import (
	"time"

	"github.com/oresat/dxwifi-receiver/ethernetframe"
	"github.com/oresat/dxwifi-receiver/radiotap"
)

// State is the terminal state a capture ends in.
type State int

const (
	// NORMAL is set only transiently at init; a finished capture
	// always ends in one of the other three states.
	NORMAL State = iota
	TIMEDOUT
	ERROR
	DEACTIVATED
)

func (s State) String() string {
	switch s {
	case NORMAL:
		return "NORMAL"
	case TIMEDOUT:
		return "TIMED_OUT"
	case ERROR:
		return "ERROR"
	case DEACTIVATED:
		return "DEACTIVATED"
	default:
		return "UNKNOWN"
	}
}

// PacketMetadata mirrors the last captured frame's packet-level
// metadata: capture length, wire length, and capture timestamp.
type PacketMetadata struct {
	CapLen    int
	WireLen   int
	Timestamp time.Time
}

// PcapStats mirrors the capture source's own drop counters, gathered
// into the final statistics snapshot when a capture ends.
type PcapStats struct {
	PacketsReceived int
	PacketsDropped  int
	PacketsIfDropped int
}

// Capture is the statistics record returned to the caller at the end
// of a capture.
type Capture struct {
	PacketsProcessed int
	PacketsDropped   int // address-mismatch drops only
	BadCRCs          int
	TotalCapLen      int64
	TotalPayloadSize int64
	TotalWriteLen    int64
	TotalNoiseAdded  int64
	TotalBlocksLost  int64

	LastPacket       PacketMetadata
	LastRadiotap     radiotap.Decoded
	PcapStats        PcapStats
	State            State

	// FirstDataCapturedAt is set the first time a data frame is
	// processed; used only to derive Throughput().
	FirstDataCapturedAt time.Time
	lastDataCapturedAt  time.Time
}

// RecordData updates the wall-clock span used by Throughput whenever a
// data frame is processed. It has no effect on any other counter.
func (c *Capture) RecordData(at time.Time) {
	if c.FirstDataCapturedAt.IsZero() {
		c.FirstDataCapturedAt = at
	}
	c.lastDataCapturedAt = at
}

// Throughput reports total payload bytes written to the sink, divided
// by the wall-clock span between the first and last data frame
// processed, as a bit rate. It is a derived convenience accessor, not
// one of the recorded counters.
func (c *Capture) Throughput() ethernetframe.Rate {
	span := c.lastDataCapturedAt.Sub(c.FirstDataCapturedAt)
	if span <= 0 {
		return 0
	}
	bitsPerSec := float64(c.TotalWriteLen) * 8 / span.Seconds()
	return ethernetframe.Rate(bitsPerSec)
}
