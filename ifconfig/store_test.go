package ifconfig

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveschnepp/ipxwrapper/ipx"
	"github.com/steveschnepp/ipxwrapper/logger"
)

// testStoreContract exercises the behavior every backend must share.
func testStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	// Unset main config falls back to defaults.
	assert.Equal(t, DefaultMainConfig(), store.MainConfig(ctx))

	// Invalid configs never land.
	bad := DefaultMainConfig()
	bad.IfaceTTL = 0
	assert.Error(t, store.SetMainConfig(ctx, bad))
	assert.Equal(t, DefaultMainConfig(), store.MainConfig(ctx))

	// Stored main config round-trips.
	want := DefaultMainConfig()
	want.UDPPort = 6000
	want.BroadcastAll = true
	require.NoError(t, store.SetMainConfig(ctx, want))
	assert.Equal(t, want, store.MainConfig(ctx))

	// Unknown adapters yield the disabled default, not an error.
	hw := ipx.Node{0x02, 0x00, 0x5a, 1, 2, 3}
	got, err := store.IfaceConfig(ctx, hw)
	require.NoError(t, err)
	assert.Equal(t, DefaultAdapterConfig(), got)

	// Stored adapter config round-trips.
	acfg := AdapterConfig{
		Network: ipx.Network{0, 0, 0, 1},
		Node:    ipx.Node{9, 9, 9, 9, 9, 9},
		Enabled: true,
	}
	require.NoError(t, store.SetIfaceConfig(ctx, hw, acfg))
	got, err = store.IfaceConfig(ctx, hw)
	require.NoError(t, err)
	assert.Equal(t, acfg, got)

	// Other adapters stay untouched.
	other, err := store.IfaceConfig(ctx, ipx.Node{1, 1, 1, 1, 1, 1})
	require.NoError(t, err)
	assert.False(t, other.Enabled)

	// Primary designation: absent, set, clear.
	_, ok, err := store.PrimaryIface(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetPrimaryIface(ctx, hw, true))
	node, ok, err := store.PrimaryIface(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, hw, node)

	require.NoError(t, store.SetPrimaryIface(ctx, hw, false))
	_, ok, err = store.PrimaryIface(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemory()
	defer store.Close()
	testStoreContract(t, store)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLite(context.Background(), ":memory:", logger.NewTestLogger())
	require.NoError(t, err)
	defer store.Close()
	testStoreContract(t, store)
}

func TestSQLiteStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "config.db")
	log := logger.NewTestLogger()

	store, err := NewSQLite(ctx, path, log)
	require.NoError(t, err)
	hw := ipx.Node{0, 1, 2, 3, 4, 5}
	require.NoError(t, store.SetIfaceConfig(ctx, hw, AdapterConfig{Enabled: true}))
	require.NoError(t, store.SetPrimaryIface(ctx, hw, true))
	require.NoError(t, store.Close())

	store, err = NewSQLite(ctx, path, log)
	require.NoError(t, err)
	defer store.Close()
	cfg, err := store.IfaceConfig(ctx, hw)
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	node, ok, err := store.PrimaryIface(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, hw, node)
}

// legacy fixtures shared by the migration tests
var (
	legacyGlobal = []byte{recordV1, 0x08, 0xd6, 1, 0, 1}
	legacyHWa    = ipx.Node{0x00, 0x01, 0x02, 0x03, 0x04, 0x05}
	legacyHWb    = ipx.Node{0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f}
	// enabled with the primary flag set
	legacyIfaceA = []byte{recordV1, 0, 0, 0, 1, 0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 1, 1}
	// enabled, also flagged primary; key order decides the winner
	legacyIfaceB = []byte{recordV1, 0, 0, 0, 2, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 1, 1}
)

func TestSQLiteLegacyMigration(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "config.db")

	// Seed a database the way a registry import would have left it.
	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = raw.Exec(`CREATE TABLE settings (key TEXT PRIMARY KEY, value BLOB NOT NULL)`)
	require.NoError(t, err)
	for key, value := range map[string][]byte{
		keyGlobal:           legacyGlobal,
		ifaceKey(legacyHWa): legacyIfaceA,
		ifaceKey(legacyHWb): legacyIfaceB,
	} {
		_, err = raw.Exec(`INSERT INTO settings (key, value) VALUES (?, ?)`, key, value)
		require.NoError(t, err)
	}
	require.NoError(t, raw.Close())

	store, err := NewSQLite(ctx, path, logger.NewTestLogger())
	require.NoError(t, err)
	defer store.Close()

	cfg := store.MainConfig(ctx)
	assert.Equal(t, uint16(54792), cfg.UDPPort)
	assert.Equal(t, uint16(54793), cfg.RouterPort, "field absent from the legacy record defaults")

	acfg, err := store.IfaceConfig(ctx, legacyHWa)
	require.NoError(t, err)
	assert.True(t, acfg.Enabled)
	assert.Equal(t, ipx.Network{0, 0, 0, 1}, acfg.Network)

	// The first flagged record by key order becomes the designation.
	node, ok, err := store.PrimaryIface(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, legacyHWa, node)

	// Rows were rewritten in the current format.
	raw, err = sql.Open("sqlite", path)
	require.NoError(t, err)
	defer raw.Close()
	var value []byte
	require.NoError(t, raw.QueryRow(`SELECT value FROM settings WHERE key = ?`, ifaceKey(legacyHWb)).Scan(&value))
	assert.Equal(t, recordV2, value[0])
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisStore(t *testing.T) {
	_, client := newTestRedis(t)
	store, err := NewRedis(context.Background(), client, logger.NewTestLogger())
	require.NoError(t, err)
	defer store.Close()
	testStoreContract(t, store)
}

func TestRedisLegacyMigration(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)

	require.NoError(t, mr.Set(keyGlobal, string(legacyGlobal)))
	require.NoError(t, mr.Set(ifaceKey(legacyHWa), string(legacyIfaceA)))
	require.NoError(t, mr.Set(ifaceKey(legacyHWb), string(legacyIfaceB)))

	store, err := NewRedis(ctx, client, logger.NewTestLogger())
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, uint16(54792), store.MainConfig(ctx).UDPPort)

	acfg, err := store.IfaceConfig(ctx, legacyHWb)
	require.NoError(t, err)
	assert.True(t, acfg.Enabled)

	node, ok, err := store.PrimaryIface(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, legacyHWa, node)

	// Records were rewritten in the current format.
	stored, err := mr.Get(ifaceKey(legacyHWa))
	require.NoError(t, err)
	assert.Equal(t, recordV2, stored[0])
}

func TestRedisMigrationKeepsExistingPrimary(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)

	existing := ipx.Node{0xee, 0xee, 0xee, 0xee, 0xee, 0xee}
	enc, err := encodePrimary(existing)
	require.NoError(t, err)
	require.NoError(t, mr.Set(keyPrimary, string(enc)))
	require.NoError(t, mr.Set(ifaceKey(legacyHWa), string(legacyIfaceA)))

	store, err := NewRedis(ctx, client, logger.NewTestLogger())
	require.NoError(t, err)
	defer store.Close()

	node, ok, err := store.PrimaryIface(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, existing, node, "a legacy flag never overrides an existing designation")
}

func TestRedisKeyPrefix(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)

	storeA, err := NewRedis(ctx, client, logger.NewTestLogger(), WithPrefix("hostA"))
	require.NoError(t, err)
	storeB, err := NewRedis(ctx, client, logger.NewTestLogger(), WithPrefix("hostB"))
	require.NoError(t, err)

	hw := ipx.Node{1, 2, 3, 4, 5, 6}
	require.NoError(t, storeA.SetIfaceConfig(ctx, hw, AdapterConfig{Enabled: true}))

	assert.True(t, mr.Exists("hostA:"+ifaceKey(hw)))
	assert.False(t, mr.Exists(ifaceKey(hw)))

	cfg, err := storeB.IfaceConfig(ctx, hw)
	require.NoError(t, err)
	assert.False(t, cfg.Enabled, "prefixes isolate hosts")
}
