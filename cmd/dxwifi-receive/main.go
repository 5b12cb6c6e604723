// Command dxwifi-receive captures a dxwifi link-layer transmission
// from a monitor-mode 802.11 interface (or replays one from a pcap
// file) and writes the reassembled payload stream to a file or
// stdout.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"
	"gopkg.in/yaml.v3"

	"github.com/oresat/dxwifi-receiver/capture"
	"github.com/oresat/dxwifi-receiver/config"
	"github.com/oresat/dxwifi-receiver/controller"
	"github.com/oresat/dxwifi-receiver/inspector"
	"github.com/oresat/dxwifi-receiver/obslog"
	"github.com/oresat/dxwifi-receiver/radiotap"
	"github.com/oresat/dxwifi-receiver/receiver"
	"github.com/oresat/dxwifi-receiver/verify"
)

func main() {
	var (
		configPath = pflag.StringP("config", "c", "", "YAML configuration file; CLI flags override its values.")
		output     = pflag.StringP("output", "o", "-", "Output path for the reassembled payload stream, or - for stdout.")

		device      = pflag.StringP("device", "i", "", "Monitor-mode interface to capture from.")
		offlinePath = pflag.String("offline-path", "", "Replay a previously captured pcap file instead of a live device.")
		filter      = pflag.String("filter", "", "BPF filter installed on the capture source.")
		snaplen     = pflag.Int("snaplen", 0, "Maximum bytes captured per frame.")
		pbTimeoutMS = pflag.Int("pb-timeout-ms", 0, "Packet-buffer timeout in milliseconds.")
		dispatch    = pflag.Int("dispatch-count", 0, "Frames processed per batch before the stop flag is rechecked.")
		liveCapture = pflag.Bool("live-capture", true, "Whether captures carry a trailing FCS.")

		expectedAddr  = pflag.String("expected-address", "", "Transmitter MAC address to verify against (colon-separated).")
		maxHammingDist = pflag.Int("max-hamming-dist", 0, "Bit-distance tolerance for sender address verification.")

		captureTimeout = pflag.Int("capture-timeout-seconds", 0, "Consecutive idle time before the capture is declared TIMED_OUT.")

		packetBufferSize = pflag.Int("packet-buffer-size", 0, "Staging buffer size in bytes.")
		payloadBlockSize = pflag.Int("payload-block-size", 0, "Expected data-frame payload size in bytes.")
		ordered          = pflag.Bool("ordered", true, "Reorder staged blocks by transmitter-stamped frame number.")
		addNoise         = pflag.Bool("add-noise", false, "Substitute a fixed byte for blocks lost between flushes.")

		logLevel        = pflag.String("log-level", "", "debug, info, warn, or error.")
		inspectEthernet = pflag.Bool("inspect-ethernet", false, "Log a best-effort Ethernet decode of each flushed block.")
	)
	pflag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	applyFlagOverrides(&cfg, map[string]func(){
		"device":                  func() { cfg.Device = *device },
		"offline-path":            func() { cfg.OfflinePath = *offlinePath },
		"filter":                  func() { cfg.Filter = *filter },
		"snaplen":                 func() { cfg.Snaplen = *snaplen },
		"pb-timeout-ms":           func() { cfg.PBTimeoutMS = *pbTimeoutMS },
		"dispatch-count":          func() { cfg.DispatchCount = *dispatch },
		"live-capture":            func() { cfg.LiveCapture = *liveCapture },
		"expected-address":        func() { cfg.ExpectedAddress = *expectedAddr },
		"max-hamming-dist":        func() { cfg.MaxHammingDist = *maxHammingDist },
		"capture-timeout-seconds": func() { cfg.CaptureTimeoutSeconds = *captureTimeout },
		"packet-buffer-size":      func() { cfg.PacketBufferSize = *packetBufferSize },
		"payload-block-size":      func() { cfg.PayloadBlockSize = *payloadBlockSize },
		"ordered":                 func() { cfg.Ordered = *ordered },
		"add-noise":               func() { cfg.AddNoise = *addNoise },
		"log-level":               func() { cfg.LogLevel = *logLevel },
		"inspect-ethernet":        func() { cfg.InspectEthernet = *inspectEthernet },
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := obslog.Init(parseLogLevel(cfg.LogLevel))

	if err := run(cfg, *output, logger); err != nil {
		logger.Error("receiver exited with error", "err", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Defaults(), nil
	}
	return config.LoadYAML(path)
}

// applyFlagOverrides applies only the setters for flags the user
// actually passed, so an unset CLI flag never clobbers a value the
// YAML file (or Defaults) already supplied.
func applyFlagOverrides(cfg *config.Config, setters map[string]func()) {
	pflag.Visit(func(f *pflag.Flag) {
		if setter, ok := setters[f.Name]; ok {
			setter()
		}
	})
}

func parseLogLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func openSink(path string) (*os.File, error) {
	if path == "-" || path == "" {
		return os.Stdout, nil
	}
	return os.Create(path)
}

func openSource(cfg config.Config) (capture.Source, error) {
	opts := capture.Options{
		Device:      cfg.Device,
		OfflinePath: cfg.OfflinePath,
		Snaplen:     int32(cfg.Snaplen),
		PBTimeout:   durationMS(cfg.PBTimeoutMS),
		Filter:      cfg.Filter,
		Optimize:    cfg.Optimize,
	}
	if cfg.OfflinePath != "" {
		return capture.OpenOffline(opts)
	}
	return capture.OpenLive(opts)
}

func run(cfg config.Config, outputPath string, logger *log.Logger) error {
	sink, err := openSink(outputPath)
	if err != nil {
		return fmt.Errorf("dxwifi-receive: open output: %w", err)
	}
	if sink != os.Stdout {
		defer sink.Close()
	}

	source, err := openSource(cfg)
	if err != nil {
		return fmt.Errorf("dxwifi-receive: open source: %w", err)
	}
	defer source.Close()

	verifier := verify.New(cfg.ExpectedHardwareAddr(), cfg.MaxHammingDist)
	ctrl := controller.New(cfg, verifier, radiotap.GopacketDecoder{}, sink, logger)
	if cfg.InspectEthernet {
		ctrl.SetInspector(inspector.New(logger))
	}

	rx := receiver.New(cfg, source, ctrl, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, unix.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		rx.BreakLoop()
	}()

	stats, runErr := rx.Run(ctx)

	report, err := yaml.Marshal(stats)
	if err != nil {
		logger.Error("marshal final stats", "err", err)
	} else {
		fmt.Fprint(os.Stderr, string(report))
	}

	return runErr
}

func durationMS(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
