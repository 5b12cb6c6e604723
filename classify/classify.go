// Package classify implements the frame classifier: it inspects a
// captured frame's payload region and reports whether it is a regular
// data block, a control frame (PREAMBLE or EOT), or neither.
package classify

// Kind is the classifier's verdict for one captured frame.
type Kind int

const (
	// NONE marks a regular data frame: its payload is exactly
	// PayloadBlockSize bytes.
	NONE Kind = iota
	// DATA is reserved for callers that want to distinguish "a data
	// path frame was handed off" from NONE's narrower classifier
	// meaning; the classifier itself only ever returns NONE for data.
	DATA
	// PREAMBLE marks a control frame whose payload is a majority of
	// the preamble sentinel byte.
	PREAMBLE
	// EOT marks a control frame whose payload is a majority of the
	// end-of-transmission sentinel byte.
	EOT
	// UNKNOWN marks a frame whose payload size matches neither a data
	// block nor a control frame, or a control-sized payload that fails
	// the majority-vote test for both sentinels.
	UNKNOWN
)

func (k Kind) String() string {
	switch k {
	case NONE:
		return "NONE"
	case DATA:
		return "DATA"
	case PREAMBLE:
		return "PREAMBLE"
	case EOT:
		return "EOT"
	default:
		return "UNKNOWN"
	}
}

// Threshold is the fixed majority-vote fraction a control frame's
// sentinel bytes must clear to be classified.
const Threshold = 0.66

// Config carries the fixed geometry the classifier needs: block
// sizes, framing overhead, and the two control-frame sentinel bytes.
type Config struct {
	PayloadBlockSize int
	ControlFrameSize int
	MACHeaderSize    int
	FCSSize          int
	LiveCapture      bool // whether captures carry a trailing FCS
	PreambleSentinel byte
	EOTSentinel      byte
}

// Classifier classifies captured frames against a fixed Config.
type Classifier struct {
	cfg Config
}

// New returns a Classifier for the given geometry.
func New(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// PayloadSize computes payload_size = caplen - radiotap_len -
// mac_header_size - (live ? fcs_size : 0). It returns false if the
// frame is too short to contain its own framing overhead (a runt
// capture), rather than underflowing into a bogus positive size.
func (c *Classifier) PayloadSize(caplen, radiotapLen int) (int, bool) {
	overhead := radiotapLen + c.cfg.MACHeaderSize
	if c.cfg.LiveCapture {
		overhead += c.cfg.FCSSize
	}
	size := caplen - overhead
	if size <= 0 {
		return 0, false
	}
	return size, true
}

// Classify returns the Kind of a captured frame given its full
// caplen and the radiotap header length already decoded for it, plus
// the payload bytes (payload[0:payloadSize] is read for sentinel
// voting on control-sized payloads).
func (c *Classifier) Classify(caplen, radiotapLen int, payload []byte) Kind {
	payloadSize, ok := c.PayloadSize(caplen, radiotapLen)
	if !ok {
		return UNKNOWN
	}

	switch payloadSize {
	case c.cfg.PayloadBlockSize:
		return NONE
	case c.cfg.ControlFrameSize:
		return c.classifyControl(payload, payloadSize)
	default:
		return UNKNOWN
	}
}

// classifyControl applies the majority-vote sentinel test: count
// bytes equal to each sentinel across the control frame's payload and
// compare the fraction against Threshold.
func (c *Classifier) classifyControl(payload []byte, payloadSize int) Kind {
	n := payloadSize
	if len(payload) < n {
		n = len(payload)
	}

	var eotCount, preambleCount int
	for i := 0; i < n; i++ {
		switch payload[i] {
		case c.cfg.EOTSentinel:
			eotCount++
		case c.cfg.PreambleSentinel:
			preambleCount++
		}
	}

	if float64(eotCount)/float64(payloadSize) > Threshold {
		return EOT
	}
	if float64(preambleCount)/float64(payloadSize) > Threshold {
		return PREAMBLE
	}
	return UNKNOWN
}
