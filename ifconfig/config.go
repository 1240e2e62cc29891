// Package ifconfig stores the tunnel's global and per-adapter configuration.
// Records are keyed by 48-bit adapter hardware address and survive the
// adapters themselves, so an adapter that disappears and returns keeps its
// settings. Backends: in-memory, SQLite, Redis.
package ifconfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/steveschnepp/ipxwrapper/ipx"
)

const (
	// DefaultUDPPort is the data port the tunnel listens on.
	DefaultUDPPort = 54792
	// DefaultRouterPort is the control port the router listens on.
	DefaultRouterPort = 54793
	// DefaultAddrCacheTTL bounds how long resolved peer addresses are reused.
	DefaultAddrCacheTTL = 30 * time.Second
	// DefaultIfaceTTL bounds how long the interface cache serves a snapshot
	// before re-reading the adapter table.
	DefaultIfaceTTL = 5 * time.Second
)

// MainConfig is the global tunnel configuration.
type MainConfig struct {
	UDPPort      uint16        `msgpack:"udp_port" validate:"required"`
	RouterPort   uint16        `msgpack:"router_port" validate:"required,nefield=UDPPort"`
	W95Bug       bool          `msgpack:"w95_bug"`
	BroadcastAll bool          `msgpack:"bcast_all"`
	SourceFilter bool          `msgpack:"src_filter"`
	LogLevel     string        `msgpack:"log_level" validate:"omitempty,oneof=trace debug info warn error none"`
	AddrCacheTTL time.Duration `msgpack:"addr_cache_ttl" validate:"gte=0"`
	IfaceTTL     time.Duration `msgpack:"iface_ttl" validate:"gt=0"`

	// SingleIface pins the tunnel to one virtual interface with the given
	// network and node numbers instead of deriving them per adapter.
	SingleIface   bool        `msgpack:"single_iface"`
	SingleNetwork ipx.Network `msgpack:"single_net"`
	SingleNode    ipx.Node    `msgpack:"single_node"`
}

// DefaultMainConfig returns the configuration used when none is stored.
func DefaultMainConfig() MainConfig {
	return MainConfig{
		UDPPort:      DefaultUDPPort,
		RouterPort:   DefaultRouterPort,
		W95Bug:       true,
		SourceFilter: true,
		LogLevel:     "info",
		AddrCacheTTL: DefaultAddrCacheTTL,
		IfaceTTL:     DefaultIfaceTTL,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration for storable consistency.
func (c MainConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s fails %q", fe.Field(), fe.Tag()))
			}
			return errors.Newf("ifconfig: invalid main config: %s", strings.Join(msgs, "; "))
		}
		return errors.Wrap(err, "ifconfig: invalid main config")
	}
	if c.SingleIface && c.SingleNode.IsZero() {
		return errors.New("ifconfig: single interface mode requires a node number")
	}
	return nil
}

// AdapterConfig is the stored per-adapter configuration. The zero value is
// the default for adapters never configured: disabled, with unset network
// and node numbers.
type AdapterConfig struct {
	Network ipx.Network `msgpack:"network"`
	Node    ipx.Node    `msgpack:"node"`
	Enabled bool        `msgpack:"enabled"`
}

// DefaultAdapterConfig returns the configuration assumed for adapters that
// have no stored record.
func DefaultAdapterConfig() AdapterConfig {
	return AdapterConfig{}
}
