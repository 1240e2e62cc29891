package ifconfig

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/steveschnepp/ipxwrapper/ipx"
)

// Stored records are self-describing: one version byte followed by the
// payload. Version 1 is the legacy fixed-layout little-endian format carried
// over from registry imports; version 2 is msgpack. Reads accept both,
// writes always produce version 2.
const (
	recordV1 byte = 1
	recordV2 byte = 2
)

// v1 payload sizes, fixed by the legacy layout.
const (
	v1GlobalLen = 5  // uint16 udp_port, w95_bug, bcast_all, filter
	v1IfaceLen  = 12 // 4 net, 6 node, enabled, primary
)

func encodeMainConfig(cfg MainConfig) ([]byte, error) {
	payload, err := msgpack.Marshal(&cfg)
	if err != nil {
		return nil, errors.Wrap(err, "ifconfig: encoding main config")
	}
	return append([]byte{recordV2}, payload...), nil
}

func decodeMainConfig(data []byte) (MainConfig, error) {
	if len(data) == 0 {
		return MainConfig{}, errors.New("ifconfig: empty main config record")
	}
	switch data[0] {
	case recordV1:
		p := data[1:]
		if len(p) != v1GlobalLen {
			return MainConfig{}, errors.Newf("ifconfig: v1 main config record is %d bytes, want %d", len(p), v1GlobalLen)
		}
		// Fields the v1 format never carried keep their defaults.
		cfg := DefaultMainConfig()
		cfg.UDPPort = binary.LittleEndian.Uint16(p[0:2])
		cfg.W95Bug = p[2] != 0
		cfg.BroadcastAll = p[3] != 0
		cfg.SourceFilter = p[4] != 0
		return cfg, nil
	case recordV2:
		var cfg MainConfig
		if err := msgpack.Unmarshal(data[1:], &cfg); err != nil {
			return MainConfig{}, errors.Wrap(err, "ifconfig: decoding main config")
		}
		return cfg, nil
	}
	return MainConfig{}, errors.Newf("ifconfig: unknown main config record version %d", data[0])
}

func encodeAdapterConfig(cfg AdapterConfig) ([]byte, error) {
	payload, err := msgpack.Marshal(&cfg)
	if err != nil {
		return nil, errors.Wrap(err, "ifconfig: encoding adapter config")
	}
	return append([]byte{recordV2}, payload...), nil
}

// decodeAdapterConfig returns the stored config plus the legacy primary
// flag. The flag is only ever set for version-1 records, where the primary
// designation lived on the adapter record instead of its own key.
func decodeAdapterConfig(data []byte) (AdapterConfig, bool, error) {
	if len(data) == 0 {
		return AdapterConfig{}, false, errors.New("ifconfig: empty adapter config record")
	}
	switch data[0] {
	case recordV1:
		p := data[1:]
		if len(p) != v1IfaceLen {
			return AdapterConfig{}, false, errors.Newf("ifconfig: v1 adapter config record is %d bytes, want %d", len(p), v1IfaceLen)
		}
		var cfg AdapterConfig
		copy(cfg.Network[:], p[0:4])
		copy(cfg.Node[:], p[4:10])
		cfg.Enabled = p[10] != 0
		return cfg, p[11] != 0, nil
	case recordV2:
		var cfg AdapterConfig
		if err := msgpack.Unmarshal(data[1:], &cfg); err != nil {
			return AdapterConfig{}, false, errors.Wrap(err, "ifconfig: decoding adapter config")
		}
		return cfg, false, nil
	}
	return AdapterConfig{}, false, errors.Newf("ifconfig: unknown adapter config record version %d", data[0])
}

func encodePrimary(node ipx.Node) ([]byte, error) {
	payload, err := msgpack.Marshal(node)
	if err != nil {
		return nil, errors.Wrap(err, "ifconfig: encoding primary designation")
	}
	return append([]byte{recordV2}, payload...), nil
}

func decodePrimary(data []byte) (ipx.Node, error) {
	if len(data) == 0 || data[0] != recordV2 {
		return ipx.Node{}, errors.New("ifconfig: unreadable primary designation record")
	}
	var node ipx.Node
	if err := msgpack.Unmarshal(data[1:], &node); err != nil {
		return ipx.Node{}, errors.Wrap(err, "ifconfig: decoding primary designation")
	}
	return node, nil
}
