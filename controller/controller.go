// Package controller implements the frame controller: the state
// machine that classifies each captured frame, stages data payloads
// into a min-heap ordered by frame number, and flushes them to the
// sink on buffer-full or capture end.
package controller

import (
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/gopacket"

	"github.com/oresat/dxwifi-receiver/classify"
	"github.com/oresat/dxwifi-receiver/config"
	"github.com/oresat/dxwifi-receiver/dot11"
	dxheap "github.com/oresat/dxwifi-receiver/heap"
	"github.com/oresat/dxwifi-receiver/radiotap"
	dxstats "github.com/oresat/dxwifi-receiver/stats"
	"github.com/oresat/dxwifi-receiver/verify"
)

// EthernetInspector is an optional diagnostics hook: invoked with each
// block written to the sink during a flush, purely for logging. It
// never affects what is written or how.
type EthernetInspector interface {
	Inspect(block []byte)
}

// Controller is the Frame Controller. It owns the staging buffer and
// ordering heap for the lifetime of one capture.
type Controller struct {
	cfg        config.Config
	classifier *classify.Classifier
	verifier   *verify.Verifier
	radiotap   radiotap.Decoder
	sink       io.Writer
	log        *log.Logger
	inspector  EthernetInspector

	staging    []byte
	writeIndex int
	heap       *dxheap.Ordering

	eotReached   bool
	preambleRecv bool
	endCapture   bool

	numPacketsProcessed int
	stats               dxstats.Capture
}

// New constructs a Controller for one capture: it zeroes counters,
// allocates the staging buffer and heap, and sets capture_state =
// NORMAL.
func New(cfg config.Config, verifier *verify.Verifier, decoder radiotap.Decoder, sink io.Writer, logger *log.Logger) *Controller {
	classifyCfg := classify.Config{
		PayloadBlockSize: cfg.PayloadBlockSize,
		ControlFrameSize: cfg.ControlFrameSize,
		MACHeaderSize:    cfg.MACHeaderSize,
		FCSSize:          cfg.FCSSize,
		LiveCapture:      cfg.LiveCapture,
		PreambleSentinel: cfg.PreambleSentinel,
		EOTSentinel:      cfg.EOTSentinel,
	}
	c := &Controller{
		cfg:        cfg,
		classifier: classify.New(classifyCfg),
		verifier:   verifier,
		radiotap:   decoder,
		sink:       sink,
		log:        logger,
		staging:    make([]byte, cfg.PacketBufferSize),
		heap:       dxheap.NewOrdering(cfg.HeapCapacity()),
	}
	c.stats.State = dxstats.NORMAL
	return c
}

// SetInspector attaches the optional Ethernet Tunnel Inspector.
func (c *Controller) SetInspector(i EthernetInspector) { c.inspector = i }

// EndCapture reports whether a following control frame has asked the
// capture loop to stop.
func (c *Controller) EndCapture() bool { return c.endCapture }

// EOTReached reports whether an EOT control frame has been seen this
// capture. Diagnostic only: EOT marks transmission completeness, but
// a following PREAMBLE (not EOT itself) is what actually ends the
// capture.
func (c *Controller) EOTReached() bool { return c.eotReached }

// Stats returns the current capture statistics snapshot.
func (c *Controller) Stats() dxstats.Capture { return c.stats }

// SetState sets the terminal capture_state; called by the Capture
// Loop on exit.
func (c *Controller) SetState(s dxstats.State) { c.stats.State = s }

// SetPcapStats records the capture source's own drop counters into the
// final statistics snapshot; called by the Capture Loop on exit.
func (c *Controller) SetPcapStats(p dxstats.PcapStats) { c.stats.PcapStats = p }

// ProcessFrame is the per-frame callback the capture loop invokes for
// every captured frame. It never returns an error that would abort
// the capture loop: every failure mode is logged and absorbed here —
// no exceptions escape, no partial error is surfaced per frame.
func (c *Controller) ProcessFrame(frame []byte, info gopacket.CaptureInfo) {
	radiotapLen, err := radiotap.HeaderLength(frame)
	if err != nil {
		c.log.Warn("malformed radiotap header, dropping frame", "err", err)
		return
	}
	if len(frame) < radiotapLen+c.cfg.MACHeaderSize {
		c.log.Warn("frame shorter than radiotap + MAC header, dropping frame")
		return
	}

	macHeader, err := dot11.ParseMACHeader(frame[radiotapLen:])
	if err != nil {
		c.log.Warn("malformed MAC header, dropping frame", "err", err)
		return
	}
	fc := dot11.DecodeFrameControl(macHeader.FrameControl)
	c.log.Debug("mac header parsed",
		"sender", macHeader.Addr2.String(),
		"frame_type", fc.Type,
		"frame_subtype", fc.Subtype,
	)

	if !c.verifier.Accept(macHeader.Addr1, macHeader.Addr2, macHeader.Addr3) {
		c.stats.PacketsDropped++
		return
	}

	if decoded, err := c.radiotap.Decode(frame); err == nil {
		c.stats.LastRadiotap = decoded
		if decoded.FCSAtEnd() != c.cfg.LiveCapture {
			c.log.Debug("radiotap FCS-at-end flag disagrees with configured capture mode",
				"fcs_at_end", decoded.FCSAtEnd(),
				"live_capture", c.cfg.LiveCapture,
			)
		}
	} else {
		c.log.Debug("radiotap decode failed", "err", err)
	}

	payloadStart := radiotapLen + c.cfg.MACHeaderSize
	payload := frame[payloadStart:]

	switch kind := c.classifier.Classify(info.CaptureLength, radiotapLen, payload); kind {
	case classify.UNKNOWN:
		c.log.Debug("unknown frame kind, dropping frame", "caplen", info.CaptureLength)
		return
	case classify.PREAMBLE, classify.EOT:
		c.handleControl(kind)
		return
	case classify.NONE:
		c.processData(macHeader, frame, radiotapLen, payload, info)
	}
}

// handleControl updates capture state in response to a control frame:
// a leading preamble primes the capture, a later preamble ends it, and
// an EOT marker is recorded but does not itself end the capture.
func (c *Controller) handleControl(kind classify.Kind) {
	switch kind {
	case classify.PREAMBLE:
		if c.numPacketsProcessed > 0 {
			// This preamble belongs to the next transmission.
			c.endCapture = true
			return
		}
		c.preambleRecv = true
		c.log.Debug("preamble received")
	case classify.EOT:
		c.eotReached = true
		c.log.Debug("end-of-transmission marker received")
	}
}

// processData stages a verified data frame's payload into the staging
// buffer, flushing first if there isn't room for it.
func (c *Controller) processData(mac dot11.MACHeader, frame []byte, radiotapLen int, payload []byte, info gopacket.CaptureInfo) {
	payloadSize, ok := c.classifier.PayloadSize(info.CaptureLength, radiotapLen)
	if !ok || payloadSize != c.cfg.PayloadBlockSize {
		c.log.Warn("data frame payload size mismatch, dropping frame", "got", payloadSize, "want", c.cfg.PayloadBlockSize)
		return
	}

	if c.writeIndex+c.cfg.PayloadBlockSize >= c.cfg.PacketBufferSize {
		if err := c.Flush(); err != nil {
			c.log.Error("flush failed", "err", err)
		}
	}

	dst := c.staging[c.writeIndex : c.writeIndex+c.cfg.PayloadBlockSize]
	copy(dst, payload[:c.cfg.PayloadBlockSize])

	frameNumber := c.frameNumberFor(mac)

	crcValid := c.checkCRC(frame, radiotapLen, dst, payload)

	c.heap.Push(dxheap.Node{
		FrameNumber: frameNumber,
		Offset:      c.writeIndex,
		CRCValid:    crcValid,
	})

	// Advance by the fixed payload block size rather than the frame's
	// captured length, so a short capture never leaves a gap in the
	// staging buffer.
	c.writeIndex += c.cfg.PayloadBlockSize

	c.numPacketsProcessed++
	c.stats.PacketsProcessed++
	c.stats.TotalCapLen += int64(info.CaptureLength)
	c.stats.TotalPayloadSize += int64(payloadSize)
	c.stats.LastPacket = dxstats.PacketMetadata{
		CapLen:    info.CaptureLength,
		WireLen:   info.Length,
		Timestamp: info.Timestamp,
	}
	if !crcValid {
		c.stats.BadCRCs++
	}
	c.stats.RecordData(info.Timestamp)

	c.log.Debug("data frame staged",
		"frame_number", frameNumber,
		"crc_valid", crcValid,
		"rssi", c.stats.LastRadiotap.AntennaSignalDB,
	)
}

// frameNumberFor returns the frame number a staged block is ordered
// by: the transmitter-stamped number when ordering is enabled, or a
// simple arrival counter otherwise.
func (c *Controller) frameNumberFor(mac dot11.MACHeader) int32 {
	if c.cfg.Ordered {
		return mac.Addr1.FrameNumber()
	}
	return int32(c.numPacketsProcessed)
}

// checkCRC computes a CRC-32 over the MAC header plus the copied
// payload and compares it against the 4 bytes immediately following
// the payload in the captured frame. Offline/test captures carry no
// trailing FCS, so the block is treated as valid without a check.
func (c *Controller) checkCRC(frame []byte, radiotapLen int, stagedPayload []byte, framePayload []byte) bool {
	if !c.cfg.LiveCapture {
		return true
	}
	if len(framePayload) < c.cfg.PayloadBlockSize+c.cfg.FCSSize {
		return false
	}
	macHeaderBytes := frame[radiotapLen : radiotapLen+c.cfg.MACHeaderSize]
	sum := crc32.NewIEEE()
	sum.Write(macHeaderBytes)
	sum.Write(stagedPayload)

	fcsBytes := framePayload[c.cfg.PayloadBlockSize : c.cfg.PayloadBlockSize+c.cfg.FCSSize]
	return binary.BigEndian.Uint32(fcsBytes) == sum.Sum32()
}

// Flush drains the heap in ascending frame-number order, writing
// noise for any gap, and resets write_index to 0.
func (c *Controller) Flush() error {
	root, ok := c.heap.Peek()
	if !ok {
		c.writeIndex = 0
		return nil
	}
	expected := root.FrameNumber

	var noiseBuf []byte
	if c.cfg.AddNoise {
		noiseBuf = make([]byte, c.cfg.PayloadBlockSize)
		for i := range noiseBuf {
			noiseBuf[i] = c.cfg.NoiseValue
		}
	}

	for {
		node, ok := c.heap.Pop()
		if !ok {
			break
		}

		if c.cfg.Ordered && node.FrameNumber > expected {
			missing := int64(node.FrameNumber - expected)
			c.stats.TotalBlocksLost += missing
			if c.cfg.AddNoise {
				for i := int64(0); i < missing; i++ {
					n, err := c.sink.Write(noiseBuf)
					if err != nil {
						c.log.Error("short write emitting noise", "err", err)
					}
					c.stats.TotalNoiseAdded += int64(n)
				}
			}
		}

		block := c.staging[node.Offset : node.Offset+c.cfg.PayloadBlockSize]
		if c.inspector != nil {
			c.inspector.Inspect(block)
		}
		n, err := c.sink.Write(block)
		if err != nil {
			c.log.Error("short write delivering block", "frame_number", node.FrameNumber, "err", err)
		}
		c.stats.TotalWriteLen += int64(n)

		expected = node.FrameNumber + 1
	}

	c.writeIndex = 0
	return nil
}

// Teardown releases the staging buffer and heap. Idempotent: safe to
// call after an aborted init or more than once.
func (c *Controller) Teardown() {
	c.heap.Teardown()
	c.staging = nil
}
