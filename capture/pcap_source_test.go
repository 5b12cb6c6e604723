package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenOfflineRejectsMissingFile(t *testing.T) {
	_, err := OpenOffline(Options{OfflinePath: "/nonexistent/does-not-exist.pcap"})
	assert.Error(t, err)
}

func TestOpenLiveRejectsMissingDevice(t *testing.T) {
	_, err := OpenLive(Options{Device: "dxwifi-test-device-does-not-exist", Snaplen: 65535, PBTimeout: 0})
	assert.Error(t, err)
}
