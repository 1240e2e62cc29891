package ifconfig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveschnepp/ipxwrapper/ipx"
)

func TestDecodeLegacyMainConfig(t *testing.T) {
	// 54792 little-endian, w95_bug on, bcast_all off, filter on.
	record := []byte{recordV1, 0x08, 0xd6, 1, 0, 1}

	cfg, err := decodeMainConfig(record)
	require.NoError(t, err)
	assert.Equal(t, uint16(54792), cfg.UDPPort)
	assert.True(t, cfg.W95Bug)
	assert.False(t, cfg.BroadcastAll)
	assert.True(t, cfg.SourceFilter)

	// Fields the legacy format never carried take defaults.
	assert.Equal(t, uint16(54793), cfg.RouterPort)
	assert.Equal(t, 5*time.Second, cfg.IfaceTTL)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestDecodeLegacyAdapterConfig(t *testing.T) {
	record := []byte{recordV1,
		0x00, 0x00, 0x00, 0x01, // network
		0x00, 0x01, 0x02, 0x03, 0x04, 0x05, // node
		1, // enabled
		1, // primary
	}

	cfg, primary, err := decodeAdapterConfig(record)
	require.NoError(t, err)
	assert.Equal(t, ipx.Network{0, 0, 0, 1}, cfg.Network)
	assert.Equal(t, ipx.Node{0, 1, 2, 3, 4, 5}, cfg.Node)
	assert.True(t, cfg.Enabled)
	assert.True(t, primary)

	record[11] = 0
	record[10] = 0
	cfg, primary, err = decodeAdapterConfig(record)
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
	assert.False(t, primary)
}

func TestMainConfigRecordRoundTrip(t *testing.T) {
	in := DefaultMainConfig()
	in.UDPPort = 1234
	in.BroadcastAll = true
	in.SingleIface = true
	in.SingleNetwork = ipx.Network{0xde, 0xad, 0xbe, 0xef}
	in.SingleNode = ipx.Node{9, 8, 7, 6, 5, 4}

	enc, err := encodeMainConfig(in)
	require.NoError(t, err)
	assert.Equal(t, recordV2, enc[0])

	out, err := decodeMainConfig(enc)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestAdapterConfigRecordRoundTrip(t *testing.T) {
	in := AdapterConfig{
		Network: ipx.Network{0, 0, 0, 2},
		Node:    ipx.Node{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff},
		Enabled: true,
	}

	enc, err := encodeAdapterConfig(in)
	require.NoError(t, err)
	assert.Equal(t, recordV2, enc[0])

	out, primary, err := decodeAdapterConfig(enc)
	require.NoError(t, err)
	assert.False(t, primary, "current records never carry the primary flag")
	assert.Equal(t, in, out)
}

func TestPrimaryRecordRoundTrip(t *testing.T) {
	node := ipx.Node{1, 2, 3, 4, 5, 6}
	enc, err := encodePrimary(node)
	require.NoError(t, err)
	out, err := decodePrimary(enc)
	require.NoError(t, err)
	assert.Equal(t, node, out)
}

func TestDecodeRejectsBadRecords(t *testing.T) {
	_, err := decodeMainConfig(nil)
	assert.Error(t, err)
	_, err = decodeMainConfig([]byte{9, 1, 2, 3})
	assert.Error(t, err)
	_, err = decodeMainConfig([]byte{recordV1, 1, 2})
	assert.Error(t, err, "truncated v1 payload")

	_, _, err = decodeAdapterConfig(nil)
	assert.Error(t, err)
	_, _, err = decodeAdapterConfig([]byte{recordV1, 1, 2, 3})
	assert.Error(t, err)
	_, _, err = decodeAdapterConfig([]byte{recordV2, 0xc1})
	assert.Error(t, err, "0xc1 is never valid msgpack")

	_, err = decodePrimary([]byte{recordV1, 0, 1, 2, 3, 4, 5})
	assert.Error(t, err, "the legacy format had no standalone primary record")
}
