package ifcache

import (
	"context"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/steveschnepp/ipxwrapper/ipx"
	"github.com/steveschnepp/ipxwrapper/logger"
)

// DefaultTTL is how long a snapshot stays fresh. A query made more than this
// long after the last refresh attempt rebuilds the snapshot first.
const DefaultTTL = 5 * time.Second

type config struct {
	ttl   time.Duration
	log   logger.Logger
	clock func() time.Time
}

// Option configures a [Cache].
type Option func(*config)

func defaultConfig() config {
	return config{
		ttl:   DefaultTTL,
		log:   logger.NewConsoleLogger(),
		clock: time.Now,
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithTTL overrides the snapshot freshness window.
func WithTTL(d time.Duration) Option {
	return func(c *config) {
		c.ttl = d
	}
}

// WithLogger routes refresh diagnostics to log.
func WithLogger(log logger.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

// WithClock substitutes the time source used for staleness decisions. Tests
// use this to step across TTL edges without sleeping.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.clock = now
	}
}

// Cache owns the shared interface snapshot and hands out deep copies of it.
// One mutex serializes every operation end-to-end, so concurrent callers on
// a stale cache trigger exactly one rebuild. The zero value is not usable;
// construct with [New].
type Cache struct {
	builder *Builder
	ttl     time.Duration
	log     logger.Logger
	now     func() time.Time

	mu      sync.Mutex
	current []Interface
	have    bool
	ctime   time.Time
	fp      uint64
	closed  bool
}

func New(b *Builder, opts ...Option) *Cache {
	cfg := applyOptions(opts)
	return &Cache{
		builder: b,
		ttl:     cfg.ttl,
		log:     cfg.log,
		now:     cfg.clock,
		fp:      fingerprint(nil),
	}
}

// refreshIfStale rebuilds the snapshot when none is held or the last attempt
// is older than the TTL. Strictly older: a snapshot exactly TTL old is still
// fresh. The caller must hold c.mu.
func (c *Cache) refreshIfStale(ctx context.Context) {
	if c.closed {
		return
	}

	now := c.now()
	if c.have && now.Sub(c.ctime) <= c.ttl {
		return
	}

	ifaces, err := c.builder.Build(ctx)

	// Once a snapshot exists, a failed attempt advances the timestamp too:
	// the broken path is retried once per TTL window while the previous
	// snapshot stays in service, not by every caller.
	c.ctime = now

	if err != nil {
		c.log.Error("interface refresh failed, serving previous snapshot: %v", err)
		return
	}

	c.current = ifaces
	c.have = true

	if fp := fingerprint(ifaces); fp != c.fp {
		c.fp = fp
		c.log.Debug("interface snapshot changed: %d interface(s), fingerprint %016x", len(ifaces), fp)
	}
}

// Interfaces returns a deep copy of every cached interface, refreshing the
// snapshot first if it is stale. The result is the caller's to keep; it is
// empty if the cache has never been successfully populated.
func (c *Cache) Interfaces(ctx context.Context) []Interface {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.refreshIfStale(ctx)
	return copyInterfaces(c.current)
}

// ByAddress returns a deep copy of the first cached interface whose IPX
// network and node numbers match, in snapshot order. The second return is
// false when nothing matches.
func (c *Cache) ByAddress(ctx context.Context, network ipx.Network, node ipx.Node) (Interface, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.refreshIfStale(ctx)
	for _, iface := range c.current {
		if iface.Network == network && iface.Node == node {
			return iface.Copy(), true
		}
	}
	return Interface{}, false
}

// ByIndex returns a deep copy of the i-th cached interface, counting from
// zero in snapshot order. The second return is false when i is out of range.
func (c *Cache) ByIndex(ctx context.Context, i int) (Interface, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.refreshIfStale(ctx)
	if i < 0 || i >= len(c.current) {
		return Interface{}, false
	}
	return c.current[i].Copy(), true
}

// Count returns the number of cached interfaces, refreshing first if stale.
func (c *Cache) Count(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.refreshIfStale(ctx)
	return len(c.current)
}

// Fingerprint returns a hash of the current snapshot, refreshing first if
// stale. It changes exactly when the interface list's content or order
// changes. After Close it returns 0.
func (c *Cache) Fingerprint(ctx context.Context) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0
	}
	c.refreshIfStale(ctx)
	return c.fp
}

// Invalidate drops the snapshot so the next query rebuilds. It never
// rebuilds inline; call it after writing to the configuration store.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.current = nil
	c.have = false
	c.ctime = time.Time{}
}

// Close retires the cache. Subsequent queries return empty results without
// touching the builder. Close is idempotent and always returns nil.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = nil
	c.have = false
	c.closed = true
	return nil
}

// fingerprint hashes the msgpack encoding of a snapshot. Encoding is
// deterministic for Interface values, so two snapshots hash equal exactly
// when their content and order are equal.
func fingerprint(ifaces []Interface) uint64 {
	enc, err := msgpack.Marshal(ifaces)
	if err != nil {
		return 0
	}
	return xxhash.Sum64(enc)
}
