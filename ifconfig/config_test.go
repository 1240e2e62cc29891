package ifconfig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/steveschnepp/ipxwrapper/ipx"
)

func TestDefaultMainConfig(t *testing.T) {
	cfg := DefaultMainConfig()
	assert.Equal(t, uint16(54792), cfg.UDPPort)
	assert.Equal(t, uint16(54793), cfg.RouterPort)
	assert.True(t, cfg.W95Bug)
	assert.False(t, cfg.BroadcastAll)
	assert.True(t, cfg.SourceFilter)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.AddrCacheTTL)
	assert.Equal(t, 5*time.Second, cfg.IfaceTTL)
	assert.False(t, cfg.SingleIface)
	assert.NoError(t, cfg.Validate())
}

func TestMainConfigValidate(t *testing.T) {
	cfg := DefaultMainConfig()
	cfg.UDPPort = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultMainConfig()
	cfg.RouterPort = cfg.UDPPort
	assert.Error(t, cfg.Validate(), "data and router ports must differ")

	cfg = DefaultMainConfig()
	cfg.LogLevel = "verbose"
	assert.Error(t, cfg.Validate())
	cfg.LogLevel = ""
	assert.NoError(t, cfg.Validate())

	cfg = DefaultMainConfig()
	cfg.AddrCacheTTL = -time.Second
	assert.Error(t, cfg.Validate())
	cfg.AddrCacheTTL = 0
	assert.NoError(t, cfg.Validate())

	cfg = DefaultMainConfig()
	cfg.IfaceTTL = 0
	assert.Error(t, cfg.Validate())
}

func TestMainConfigValidateSingleIface(t *testing.T) {
	cfg := DefaultMainConfig()
	cfg.SingleIface = true
	assert.Error(t, cfg.Validate(), "single interface mode needs a node number")

	cfg.SingleNode = ipx.Node{0, 1, 2, 3, 4, 5}
	assert.NoError(t, cfg.Validate())

	// The network number may legitimately stay zero.
	assert.True(t, cfg.SingleNetwork.IsZero())
}

func TestDefaultAdapterConfig(t *testing.T) {
	cfg := DefaultAdapterConfig()
	assert.False(t, cfg.Enabled)
	assert.True(t, cfg.Network.IsZero())
	assert.True(t, cfg.Node.IsZero())
}
