package controller

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"os"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/gopacket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oresat/dxwifi-receiver/config"
	"github.com/oresat/dxwifi-receiver/dot11"
	"github.com/oresat/dxwifi-receiver/radiotap"
	"github.com/oresat/dxwifi-receiver/verify"
)

const testRadiotapLen = 8

// fakeDecoder stubs out radiotap.Decoder so tests don't need to
// fabricate gopacket-parseable radiotap bytes.
type fakeDecoder struct{}

func (fakeDecoder) Decode(frame []byte) (radiotap.Decoded, error) {
	return radiotap.Decoded{HasSignal: true, AntennaSignalDB: -42}, nil
}

func testLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{Level: log.FatalLevel})
}

func addrWithFrameNumber(n int32) dot11.HardwareAddr {
	var a dot11.HardwareAddr
	binary.BigEndian.PutUint32(a[2:6], uint32(n))
	return a
}

func radiotapHeader() []byte {
	b := make([]byte, testRadiotapLen)
	binary.LittleEndian.PutUint16(b[2:4], uint16(testRadiotapLen))
	return b
}

// dataFrameControl and controlFrameControl are the frame-control words
// dxwifi frames carry on the wire: both are 802.11 Data subtype frames
// (type 2), since the link layer never emits management or QoS frames
// — control vs. data blocks are distinguished by payload classification,
// not by the frame-control subtype.
var (
	dataFrameControl    = dot11.EncodeFrameControl(dot11.Dot11FrameControl{Type: 2, Subtype: 0})
	controlFrameControl = dot11.EncodeFrameControl(dot11.Dot11FrameControl{Type: 2, Subtype: 0, Retry: 1})
)

func macHeaderBytes(fc uint16, addr1, addr2, addr3 dot11.HardwareAddr) []byte {
	b := make([]byte, dot11.HeaderSize)
	binary.BigEndian.PutUint16(b[0:2], fc)
	copy(b[4:10], addr1[:])
	copy(b[10:16], addr2[:])
	copy(b[16:22], addr3[:])
	return b
}

func buildDataFrame(cfg config.Config, frameNumber int32, senderAddr dot11.HardwareAddr, payloadByte byte) []byte {
	addr1 := addrWithFrameNumber(frameNumber)
	mac := macHeaderBytes(dataFrameControl, addr1, senderAddr, senderAddr)
	payload := bytes.Repeat([]byte{payloadByte}, cfg.PayloadBlockSize)

	frame := append([]byte{}, radiotapHeader()...)
	frame = append(frame, mac...)
	frame = append(frame, payload...)

	if cfg.LiveCapture {
		sum := crc32.NewIEEE()
		sum.Write(mac)
		sum.Write(payload)
		fcs := make([]byte, 4)
		binary.BigEndian.PutUint32(fcs, sum.Sum32())
		frame = append(frame, fcs...)
	}
	return frame
}

func buildControlFrame(cfg config.Config, senderAddr dot11.HardwareAddr, sentinel byte) []byte {
	mac := macHeaderBytes(controlFrameControl, dot11.ZeroAddr, senderAddr, senderAddr)
	payload := bytes.Repeat([]byte{sentinel}, cfg.ControlFrameSize)

	frame := append([]byte{}, radiotapHeader()...)
	frame = append(frame, mac...)
	frame = append(frame, payload...)
	if cfg.LiveCapture {
		frame = append(frame, make([]byte, cfg.FCSSize)...)
	}
	return frame
}

func testConfig() config.Config {
	cfg := config.Defaults()
	cfg.Device = "test0"
	cfg.PayloadBlockSize = 16
	cfg.ControlFrameSize = 8
	cfg.PacketBufferSize = 64
	cfg.LiveCapture = false
	cfg.Ordered = true
	cfg.MaxHammingDist = 2
	return cfg
}

func newTestController(cfg config.Config, sink *bytes.Buffer, expected dot11.HardwareAddr) *Controller {
	v := verify.New(expected, cfg.MaxHammingDist)
	return New(cfg, v, fakeDecoder{}, sink, testLogger())
}

func TestProcessFrameDataPathStagesAndFlushes(t *testing.T) {
	cfg := testConfig()
	sender := dot11.NewHardwareAddr(1, 2, 3, 4, 5, 6)
	sink := &bytes.Buffer{}
	c := newTestController(cfg, sink, sender)

	frame := buildDataFrame(cfg, 0, sender, 0xAB)
	c.ProcessFrame(frame, gopacket.CaptureInfo{CaptureLength: len(frame), Length: len(frame)})

	require.NoError(t, c.Flush())
	assert.Equal(t, bytes.Repeat([]byte{0xAB}, cfg.PayloadBlockSize), sink.Bytes())
	assert.Equal(t, 1, c.Stats().PacketsProcessed)
	assert.Equal(t, 0, c.Stats().BadCRCs)
}

func TestProcessFrameRejectsUnverifiedSender(t *testing.T) {
	cfg := testConfig()
	expected := dot11.NewHardwareAddr(1, 2, 3, 4, 5, 6)
	stranger := dot11.NewHardwareAddr(0xFF, 0xEE, 0xDD, 0xCC, 0xBB, 0xAA)
	sink := &bytes.Buffer{}
	c := newTestController(cfg, sink, expected)

	frame := buildDataFrame(cfg, 0, stranger, 0xAB)
	c.ProcessFrame(frame, gopacket.CaptureInfo{CaptureLength: len(frame), Length: len(frame)})

	assert.Equal(t, 1, c.Stats().PacketsDropped)
	assert.Equal(t, 0, c.Stats().PacketsProcessed)
	assert.Equal(t, int64(0), c.Stats().TotalCapLen)
	assert.Equal(t, 0, sink.Len())
}

// TestProcessFrameCountsOnlyDeliveredData checks that packets_processed
// and total_caplen stay untouched by control frames and rejected
// senders — they only advance on the successful data path.
func TestProcessFrameCountsOnlyDeliveredData(t *testing.T) {
	cfg := testConfig()
	expected := dot11.NewHardwareAddr(1, 2, 3, 4, 5, 6)
	stranger := dot11.NewHardwareAddr(0xFF, 0xEE, 0xDD, 0xCC, 0xBB, 0xAA)
	sink := &bytes.Buffer{}
	c := newTestController(cfg, sink, expected)

	for i := 0; i < 5; i++ {
		frame := buildDataFrame(cfg, int32(i), stranger, 0xAB)
		c.ProcessFrame(frame, gopacket.CaptureInfo{CaptureLength: len(frame), Length: len(frame)})
	}
	preamble := buildControlFrame(cfg, expected, cfg.PreambleSentinel)
	c.ProcessFrame(preamble, gopacket.CaptureInfo{CaptureLength: len(preamble), Length: len(preamble)})

	assert.Equal(t, 5, c.Stats().PacketsDropped)
	assert.Equal(t, 0, c.Stats().PacketsProcessed)
	assert.Equal(t, int64(0), c.Stats().TotalCapLen)
}

func TestProcessFrameCRCMismatchCounted(t *testing.T) {
	cfg := testConfig()
	cfg.LiveCapture = true
	sender := dot11.NewHardwareAddr(1, 2, 3, 4, 5, 6)
	sink := &bytes.Buffer{}
	c := newTestController(cfg, sink, sender)

	frame := buildDataFrame(cfg, 0, sender, 0xAB)
	// Corrupt the trailing FCS so it no longer matches.
	frame[len(frame)-1] ^= 0xFF
	c.ProcessFrame(frame, gopacket.CaptureInfo{CaptureLength: len(frame), Length: len(frame)})

	require.NoError(t, c.Flush())
	assert.Equal(t, 1, c.Stats().BadCRCs)
	// A bad CRC is still delivered; it is recorded but never gates delivery.
	assert.Equal(t, cfg.PayloadBlockSize, sink.Len())
}

func TestHandleControlPreambleEndsCaptureAfterData(t *testing.T) {
	cfg := testConfig()
	sender := dot11.NewHardwareAddr(1, 2, 3, 4, 5, 6)
	sink := &bytes.Buffer{}
	c := newTestController(cfg, sink, sender)

	dataFrame := buildDataFrame(cfg, 0, sender, 0xAB)
	c.ProcessFrame(dataFrame, gopacket.CaptureInfo{CaptureLength: len(dataFrame), Length: len(dataFrame)})
	assert.False(t, c.EndCapture())

	preamble := buildControlFrame(cfg, sender, cfg.PreambleSentinel)
	c.ProcessFrame(preamble, gopacket.CaptureInfo{CaptureLength: len(preamble), Length: len(preamble)})
	assert.True(t, c.EndCapture())
}

func TestHandleControlLeadingPreambleDoesNotEndCapture(t *testing.T) {
	cfg := testConfig()
	sender := dot11.NewHardwareAddr(1, 2, 3, 4, 5, 6)
	sink := &bytes.Buffer{}
	c := newTestController(cfg, sink, sender)

	preamble := buildControlFrame(cfg, sender, cfg.PreambleSentinel)
	c.ProcessFrame(preamble, gopacket.CaptureInfo{CaptureLength: len(preamble), Length: len(preamble)})
	assert.False(t, c.EndCapture())
}

func TestHandleControlEOTRecorded(t *testing.T) {
	cfg := testConfig()
	sender := dot11.NewHardwareAddr(1, 2, 3, 4, 5, 6)
	sink := &bytes.Buffer{}
	c := newTestController(cfg, sink, sender)

	eot := buildControlFrame(cfg, sender, cfg.EOTSentinel)
	c.ProcessFrame(eot, gopacket.CaptureInfo{CaptureLength: len(eot), Length: len(eot)})
	assert.True(t, c.EOTReached())
	assert.False(t, c.EndCapture())
}

func TestFlushOrdersOutOfOrderFramesAndFillsGaps(t *testing.T) {
	cfg := testConfig()
	cfg.AddNoise = true
	cfg.NoiseValue = 0xFF
	sender := dot11.NewHardwareAddr(1, 2, 3, 4, 5, 6)
	sink := &bytes.Buffer{}
	c := newTestController(cfg, sink, sender)

	// Arrive out of order: 2, 0. Frame 1 is missing and must be
	// backfilled with noise.
	f2 := buildDataFrame(cfg, 2, sender, 0x02)
	f0 := buildDataFrame(cfg, 0, sender, 0x00)
	c.ProcessFrame(f2, gopacket.CaptureInfo{CaptureLength: len(f2), Length: len(f2)})
	c.ProcessFrame(f0, gopacket.CaptureInfo{CaptureLength: len(f0), Length: len(f0)})

	require.NoError(t, c.Flush())

	want := append([]byte{}, bytes.Repeat([]byte{0x00}, cfg.PayloadBlockSize)...)
	want = append(want, bytes.Repeat([]byte{0xFF}, cfg.PayloadBlockSize)...)
	want = append(want, bytes.Repeat([]byte{0x02}, cfg.PayloadBlockSize)...)
	assert.Equal(t, want, sink.Bytes())
	assert.Equal(t, int64(1), c.Stats().TotalBlocksLost)
}

func TestFlushOnEmptyHeapIsNoop(t *testing.T) {
	cfg := testConfig()
	sender := dot11.NewHardwareAddr(1, 2, 3, 4, 5, 6)
	sink := &bytes.Buffer{}
	c := newTestController(cfg, sink, sender)

	require.NoError(t, c.Flush())
	assert.Equal(t, 0, sink.Len())
}

func TestProcessFrameAutoFlushesWhenBufferWouldOverflow(t *testing.T) {
	cfg := testConfig()
	cfg.PacketBufferSize = cfg.PayloadBlockSize + 4 // room for exactly one block
	sender := dot11.NewHardwareAddr(1, 2, 3, 4, 5, 6)
	sink := &bytes.Buffer{}
	c := newTestController(cfg, sink, sender)

	f0 := buildDataFrame(cfg, 0, sender, 0x01)
	f1 := buildDataFrame(cfg, 1, sender, 0x02)
	c.ProcessFrame(f0, gopacket.CaptureInfo{CaptureLength: len(f0), Length: len(f0)})
	c.ProcessFrame(f1, gopacket.CaptureInfo{CaptureLength: len(f1), Length: len(f1)})

	require.NoError(t, c.Flush())
	want := append([]byte{}, bytes.Repeat([]byte{0x01}, cfg.PayloadBlockSize)...)
	want = append(want, bytes.Repeat([]byte{0x02}, cfg.PayloadBlockSize)...)
	assert.Equal(t, want, sink.Bytes())
}
