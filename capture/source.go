// Package capture implements a capture source contract against
// github.com/google/gopacket/pcap, consumed by the readiness-poll
// driven capture loop built on top of it.
package capture

import (
	"errors"
	"time"

	"github.com/google/gopacket"

	dxstats "github.com/oresat/dxwifi-receiver/stats"
)

// ErrTimeout is returned by Source.ReadFrame when no frame arrived
// within the source's own packet-buffer timeout. The capture loop
// treats this as an empty poll tick, not an error condition.
var ErrTimeout = errors.New("capture: read timed out")

// ErrEOF is returned by Source.ReadFrame when an offline/replay source
// has been fully consumed.
var ErrEOF = errors.New("capture: end of stream")

// Source is an abstract capability any capture backend can satisfy.
// gopacket/pcap does not expose a single portable selectable file
// descriptor across platforms, so rather than model readiness as an
// externally-waited-on fd, ReadFrame itself blocks up to the source's
// own internal packet-buffer timeout and returns ErrTimeout on expiry —
// any caller polling in a loop sees the same "wait with a timeout; no
// frame within it is not an error" readiness semantics either way.
type Source interface {
	// ReadFrame blocks until a frame is available, the internal
	// packet-buffer timeout expires (ErrTimeout), or the source is
	// exhausted (ErrEOF, offline only). After BreakLoop it returns
	// ErrEOF.
	ReadFrame() (frame []byte, info gopacket.CaptureInfo, err error)

	// Stats returns the source's own drop counters.
	Stats() (dxstats.PcapStats, error)

	// BreakLoop causes ReadFrame calls that start afterwards to return
	// ErrEOF. Whether a call already in progress is interrupted depends
	// on the implementation (PcapSource does not interrupt it). Safe to
	// call from another goroutine or a signal handler.
	BreakLoop()

	// Close releases the source. Must not be used after Close.
	Close() error
}

// Options configures how a Source is opened.
type Options struct {
	Device      string // live capture device; ignored if OfflinePath set
	OfflinePath string // offline replay file; takes precedence over Device
	Snaplen     int32
	Promisc     bool
	PBTimeout   time.Duration
	Filter      string
	Optimize    bool
}
