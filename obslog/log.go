// Package obslog wires the process-wide logger used throughout the
// receiver core: a global logger, initialized once, backed by
// github.com/charmbracelet/log for leveled, readable output to
// stderr.
package obslog

import (
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	once   sync.Once
	logger *log.Logger
)

// Init configures the global logger at the given level. Safe to call
// more than once; only the first call takes effect.
func Init(level log.Level) *log.Logger {
	once.Do(func() {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Level:           level,
			Prefix:          "dxwifi-receiver",
		})
	})
	return logger
}

// Default returns the global logger, initializing it at Info level if
// Init has not yet been called.
func Default() *log.Logger {
	if logger == nil {
		return Init(log.InfoLevel)
	}
	return logger
}
