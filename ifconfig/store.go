package ifconfig

import (
	"context"
	"time"

	"github.com/steveschnepp/ipxwrapper/ipx"
)

// Storage keys. Adapter records hang off their hardware address so hosts
// sharing a store (Redis) coexist without clobbering each other.
const (
	keyGlobal   = "global"
	keyPrimary  = "primary"
	keyIfacePre = "iface/"
)

func ifaceKey(hw ipx.Node) string {
	return keyIfacePre + hw.String()
}

// Store reads and writes tunnel configuration.
//
// Absence is never an error: MainConfig substitutes defaults outright, and
// IfaceConfig returns the default (disabled) config with a nil error for
// adapters that were never configured. I/O failures on per-adapter reads DO
// propagate: silently defaulting on a flaky backend would make configured
// adapters vanish from the interface list.
type Store interface {
	// MainConfig returns the global configuration, falling back to
	// DefaultMainConfig when nothing usable is stored. It never fails;
	// read problems are logged and absorbed.
	MainConfig(ctx context.Context) MainConfig
	// SetMainConfig validates and stores the global configuration.
	SetMainConfig(ctx context.Context, cfg MainConfig) error

	// IfaceConfig returns the configuration for one adapter.
	IfaceConfig(ctx context.Context, hw ipx.Node) (AdapterConfig, error)
	// SetIfaceConfig stores the configuration for one adapter.
	SetIfaceConfig(ctx context.Context, hw ipx.Node, cfg AdapterConfig) error

	// PrimaryIface returns the hardware address designated as the primary
	// interface. ok is false when no designation exists.
	PrimaryIface(ctx context.Context) (node ipx.Node, ok bool, err error)
	// SetPrimaryIface designates hw as the primary interface, or clears
	// the designation when present is false.
	SetPrimaryIface(ctx context.Context, hw ipx.Node, present bool) error

	Close() error
}

// DefaultQueryTimeout is the per-operation timeout for I/O-backed stores.
const DefaultQueryTimeout = 5 * time.Second

type config struct {
	queryTimeout time.Duration
	prefix       string
}

// Option configures a Store implementation.
type Option func(*config)

func defaultConfig() config {
	return config{queryTimeout: DefaultQueryTimeout}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithQueryTimeout sets the per-operation timeout for I/O-backed stores
// (SQLite, Redis). Defaults to DefaultQueryTimeout.
func WithQueryTimeout(d time.Duration) Option {
	return func(c *config) { c.queryTimeout = d }
}

// WithPrefix sets the key prefix for namespacing records.
// Applies to the Redis backend. Defaults to empty.
func WithPrefix(p string) Option {
	return func(c *config) { c.prefix = p }
}
