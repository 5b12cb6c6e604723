package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsHeapCapacity(t *testing.T) {
	cfg := Defaults()
	cfg.Device = "wlan0"
	require.NoError(t, cfg.Validate())

	want := cfg.PacketBufferSize/cfg.PayloadBlockSize + 1
	assert.Equal(t, want, cfg.HeapCapacity())
}

func TestValidateRequiresSource(t *testing.T) {
	cfg := Defaults()
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUndersizedBuffer(t *testing.T) {
	cfg := Defaults()
	cfg.Device = "wlan0"
	cfg.PacketBufferSize = 10
	cfg.PayloadBlockSize = 1024
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadExpectedAddress(t *testing.T) {
	cfg := Defaults()
	cfg.Device = "wlan0"
	cfg.ExpectedAddress = "not-a-mac"
	assert.Error(t, cfg.Validate())
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "receiver.yaml")
	contents := "device: wlan1\nordered: false\npacket_buffer_size: 4096\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := LoadYAML(path)
	require.NoError(t, err)
	assert.Equal(t, "wlan1", cfg.Device)
	assert.False(t, cfg.Ordered)
	assert.Equal(t, 4096, cfg.PacketBufferSize)
	// Unset fields keep their default.
	assert.Equal(t, Defaults().PayloadBlockSize, cfg.PayloadBlockSize)
}
