package capture

import (
	"fmt"
	"sync/atomic"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"

	dxstats "github.com/oresat/dxwifi-receiver/stats"
)

// PcapSource implements Source against a *pcap.Handle: pcap.OpenLive
// or pcap.OpenOffline, an installed BPF filter, and ReadPacketData in
// a loop.
type PcapSource struct {
	handle  *pcap.Handle
	stopped atomic.Bool
}

// OpenLive opens a live monitor-mode capture, compiles and installs
// the BPF filter, and relies on the interface already being in
// monitor mode delivering 802.11 frames with a radiotap header.
func OpenLive(opts Options) (*PcapSource, error) {
	handle, err := pcap.OpenLive(opts.Device, opts.Snaplen, opts.Promisc, opts.PBTimeout)
	if err != nil {
		return nil, fmt.Errorf("capture: open live %s: %w", opts.Device, err)
	}
	if err := configureHandle(handle, opts); err != nil {
		handle.Close()
		return nil, err
	}
	return &PcapSource{handle: handle}, nil
}

// OpenOffline replays a previously captured file. Offline captures
// carry no trailing FCS, so callers should leave Config.LiveCapture
// false when consuming one.
func OpenOffline(opts Options) (*PcapSource, error) {
	handle, err := pcap.OpenOffline(opts.OfflinePath)
	if err != nil {
		return nil, fmt.Errorf("capture: open offline %s: %w", opts.OfflinePath, err)
	}
	if err := configureHandle(handle, opts); err != nil {
		handle.Close()
		return nil, err
	}
	return &PcapSource{handle: handle}, nil
}

func configureHandle(handle *pcap.Handle, opts Options) error {
	if opts.Filter == "" {
		return nil
	}
	if err := handle.SetBPFFilter(opts.Filter); err != nil {
		return fmt.Errorf("capture: compile filter %q: %w", opts.Filter, err)
	}
	return nil
}

// ReadFrame reads one frame, translating pcap's timeout-expired error
// into ErrTimeout and EOF (offline exhaustion) into ErrEOF.
func (s *PcapSource) ReadFrame() ([]byte, gopacket.CaptureInfo, error) {
	if s.stopped.Load() {
		return nil, gopacket.CaptureInfo{}, ErrEOF
	}
	data, ci, err := s.handle.ReadPacketData()
	switch {
	case err == nil:
		return data, ci, nil
	case err == pcap.NextErrorTimeoutExpired:
		return nil, gopacket.CaptureInfo{}, ErrTimeout
	case err == pcap.NextErrorNoMorePackets:
		return nil, gopacket.CaptureInfo{}, ErrEOF
	default:
		return nil, gopacket.CaptureInfo{}, fmt.Errorf("capture: read: %w", err)
	}
}

// Stats returns the handle's drop counters.
func (s *PcapSource) Stats() (dxstats.PcapStats, error) {
	raw, err := s.handle.Stats()
	if err != nil {
		return dxstats.PcapStats{}, fmt.Errorf("capture: stats: %w", err)
	}
	return dxstats.PcapStats{
		PacketsReceived:  raw.PacketsReceived,
		PacketsDropped:   raw.PacketsDropped,
		PacketsIfDropped: raw.PacketsIfDropped,
	}, nil
}

// BreakLoop is the equivalent of pcap_breakloop: it marks the source
// stopped so every ReadFrame call that starts afterwards returns ErrEOF.
// A call already blocked in ReadPacketData is not interrupted; it
// returns on its own within the packet-buffer timeout. Safe for
// concurrent use.
func (s *PcapSource) BreakLoop() {
	s.stopped.Store(true)
}

// Close releases the underlying pcap handle.
func (s *PcapSource) Close() error {
	s.handle.Close()
	return nil
}
