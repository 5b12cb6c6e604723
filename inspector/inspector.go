// Package inspector implements an optional diagnostic: when a
// transmitter happens to be tunneling Ethernet traffic over the link,
// reassembled blocks decode as Ethernet II frames. The inspector makes
// a best-effort decode of each flushed block purely for logging — it
// never changes what reaches the sink or how.
package inspector

import (
	"github.com/charmbracelet/log"

	"github.com/oresat/dxwifi-receiver/ethernetframe"
)

// Inspector logs a best-effort Ethernet decode of each block the
// Frame Controller flushes. It satisfies controller.EthernetInspector.
type Inspector struct {
	log *log.Logger
}

// New returns an Inspector that logs through logger.
func New(logger *log.Logger) *Inspector {
	return &Inspector{log: logger}
}

// Inspect attempts to decode block as an Ethernet II frame and logs
// its addresses and EtherType at debug level. A decode failure is
// expected whenever the tunneled payload isn't Ethernet, or a block
// straddles a frame boundary the inspector has no way to realign —
// it is logged at debug level too, never surfaced as an error.
func (i *Inspector) Inspect(block []byte) {
	frame, err := ethernetframe.Unmarshal(block)
	if err != nil {
		i.log.Debug("block does not decode as an Ethernet frame", "err", err)
		return
	}
	if err := frame.Check(); err != nil {
		i.log.Debug("decoded Ethernet frame failed sanity check", "err", err)
		return
	}
	i.log.Debug("tunneled Ethernet frame",
		"src", frame.Source(),
		"dst", frame.Destination(),
		"ethertype", frame.EtherType(),
		"tagged", frame.Tag() != nil,
	)
}
