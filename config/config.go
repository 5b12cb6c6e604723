// Package config defines the receiver's configuration: capture
// source, frame geometry, sender verification, staging/reorder
// behavior, plus ambient options for logging and the Ethernet tunnel
// inspector.
package config

import (
	"errors"
	"fmt"

	"github.com/oresat/dxwifi-receiver/dot11"
)

// Config holds every option the receiver recognizes. Defaults()
// returns one with every field at its default; Validate() rejects combinations
// that would break the receiver's invariants before a capture starts.
type Config struct {
	// Capture source.
	Device      string `yaml:"device"`
	Filter      string `yaml:"filter"`
	Optimize    bool   `yaml:"optimize"`
	Snaplen     int    `yaml:"snaplen"`
	PBTimeoutMS int    `yaml:"pb_timeout_ms"`
	DispatchCount int  `yaml:"dispatch_count"`
	OfflinePath string `yaml:"offline_path"` // non-empty selects offline replay
	LiveCapture bool   `yaml:"live_capture"` // whether captures carry a trailing FCS

	// Frame geometry.
	PayloadBlockSize int `yaml:"payload_block_size"`
	ControlFrameSize int `yaml:"control_frame_size"`
	MACHeaderSize    int `yaml:"mac_header_size"`
	FCSSize          int `yaml:"fcs_size"`
	PreambleSentinel byte `yaml:"preamble_sentinel"`
	EOTSentinel      byte `yaml:"eot_sentinel"`

	// Sender verification.
	ExpectedAddress string `yaml:"expected_address"` // colon-separated MAC
	MaxHammingDist  int    `yaml:"max_hamming_dist"`

	// Capture lifecycle.
	CaptureTimeoutSeconds int `yaml:"capture_timeout_seconds"`

	// Staging / reorder.
	PacketBufferSize int  `yaml:"packet_buffer_size"`
	Ordered          bool `yaml:"ordered"`
	AddNoise         bool `yaml:"add_noise"`
	NoiseValue       byte `yaml:"noise_value"`

	// Ambient.
	LogLevel        string `yaml:"log_level"` // debug|info|warn|error
	InspectEthernet bool   `yaml:"inspect_ethernet"`
}

// Defaults returns a Config with every field at its default value,
// before any CLI flag or YAML file override is applied.
func Defaults() Config {
	return Config{
		Filter:                "",
		Optimize:              true,
		Snaplen:               65535,
		PBTimeoutMS:           100,
		DispatchCount:         16,
		LiveCapture:           true,
		PayloadBlockSize:      1024,
		ControlFrameSize:      128,
		MACHeaderSize:         dot11.HeaderSize,
		FCSSize:               4,
		PreambleSentinel:      0xAA,
		EOTSentinel:           0x55,
		MaxHammingDist:        4,
		CaptureTimeoutSeconds: 10,
		PacketBufferSize:      1 << 20,
		Ordered:               true,
		AddNoise:              false,
		NoiseValue:            0x00,
		LogLevel:              "info",
	}
}

// HeapCapacity returns ⌈packet_buffer_size / payload_block_size⌉ + 1,
// the bound assigned to the ordering heap.
func (c Config) HeapCapacity() int {
	if c.PayloadBlockSize == 0 {
		return 1
	}
	return (c.PacketBufferSize+c.PayloadBlockSize-1)/c.PayloadBlockSize + 1
}

// Validate rejects a Config that would break the receiver's
// invariants, before a capture ever starts.
func (c Config) Validate() error {
	if c.PayloadBlockSize <= 0 {
		return errors.New("config: payload_block_size must be positive")
	}
	if c.PacketBufferSize < c.PayloadBlockSize {
		return fmt.Errorf("config: packet_buffer_size (%d) must be >= payload_block_size (%d)", c.PacketBufferSize, c.PayloadBlockSize)
	}
	if c.ControlFrameSize <= 0 {
		return errors.New("config: control_frame_size must be positive")
	}
	if c.MaxHammingDist <= 0 {
		return errors.New("config: max_hamming_dist must be positive")
	}
	if c.CaptureTimeoutSeconds <= 0 {
		return errors.New("config: capture_timeout_seconds must be positive")
	}
	if c.DispatchCount <= 0 {
		return errors.New("config: dispatch_count must be positive")
	}
	if c.Device == "" && c.OfflinePath == "" {
		return errors.New("config: one of device or offline_path is required")
	}
	if c.ExpectedAddress != "" {
		if _, err := dot11.ParseHardwareAddr(c.ExpectedAddress); err != nil {
			return fmt.Errorf("config: expected_address: %w", err)
		}
	}
	return nil
}

// ExpectedHardwareAddr parses ExpectedAddress, already validated by
// Validate.
func (c Config) ExpectedHardwareAddr() dot11.HardwareAddr {
	addr, _ := dot11.ParseHardwareAddr(c.ExpectedAddress)
	return addr
}
