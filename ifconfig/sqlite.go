package ifconfig

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"

	"github.com/steveschnepp/ipxwrapper/ipx"
	"github.com/steveschnepp/ipxwrapper/logger"
)

type sqliteStore struct {
	db  *sql.DB
	log logger.Logger
	cfg config
}

var _ Store = (*sqliteStore)(nil)

// NewSQLite returns a Store backed by SQLite at dbPath.
// If dbPath is empty or ":memory:", an in-memory database is used.
// Version-1 records found at open are rewritten in the current format,
// hoisting any legacy primary flag into its own record.
func NewSQLite(ctx context.Context, dbPath string, log logger.Logger, opts ...Option) (Store, error) {
	if dbPath == "" {
		dbPath = ":memory:"
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "ifconfig: opening database")
	}

	// Enable WAL mode for better concurrent performance.
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ifconfig: enabling WAL")
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ifconfig: creating settings table")
	}

	s := &sqliteStore{db: db, log: log, cfg: applyOptions(opts)}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// migrate rewrites version-1 records in the current format. The legacy
// format kept the primary designation as a flag on each adapter record; the
// first flagged record (by key order) becomes the primary designation,
// unless one already exists.
func (s *sqliteStore) migrate(ctx context.Context) error {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(qctx, nil)
	if err != nil {
		return errors.Wrap(err, "ifconfig: starting migration")
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(qctx, `SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return errors.Wrap(err, "ifconfig: scanning records")
	}

	type upgrade struct {
		key   string
		value []byte
	}
	var upgrades []upgrade
	var legacyPrimary *ipx.Node
	havePrimary := false

	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			rows.Close()
			return errors.Wrap(err, "ifconfig: scanning record")
		}
		if key == keyPrimary {
			havePrimary = true
			continue
		}
		if len(value) == 0 || value[0] != recordV1 {
			continue
		}
		switch {
		case key == keyGlobal:
			cfg, err := decodeMainConfig(value)
			if err != nil {
				s.log.Warn("skipping unreadable legacy record %q: %v", key, err)
				continue
			}
			enc, err := encodeMainConfig(cfg)
			if err != nil {
				rows.Close()
				return err
			}
			upgrades = append(upgrades, upgrade{key, enc})
		case strings.HasPrefix(key, keyIfacePre):
			cfg, primary, err := decodeAdapterConfig(value)
			if err != nil {
				s.log.Warn("skipping unreadable legacy record %q: %v", key, err)
				continue
			}
			enc, err := encodeAdapterConfig(cfg)
			if err != nil {
				rows.Close()
				return err
			}
			upgrades = append(upgrades, upgrade{key, enc})
			if primary && legacyPrimary == nil {
				if hw, err := ipx.ParseNode(strings.TrimPrefix(key, keyIfacePre)); err == nil {
					legacyPrimary = &hw
				}
			}
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return errors.Wrap(err, "ifconfig: scanning records")
	}
	rows.Close()

	for _, up := range upgrades {
		if _, err := tx.ExecContext(qctx, `UPDATE settings SET value = ? WHERE key = ?`, up.value, up.key); err != nil {
			return errors.Wrapf(err, "ifconfig: rewriting record %q", up.key)
		}
	}
	if legacyPrimary != nil && !havePrimary {
		enc, err := encodePrimary(*legacyPrimary)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(qctx, `INSERT INTO settings (key, value) VALUES (?, ?)`, keyPrimary, enc); err != nil {
			return errors.Wrap(err, "ifconfig: writing primary designation")
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "ifconfig: committing migration")
	}
	if len(upgrades) > 0 {
		s.log.Info("migrated %d legacy config records", len(upgrades))
	}
	return nil
}

func (s *sqliteStore) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, s.cfg.queryTimeout)
}

func (s *sqliteStore) get(ctx context.Context, key string) ([]byte, error) {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	var data []byte
	err := s.db.QueryRowContext(qctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&data)
	return data, err
}

func (s *sqliteStore) put(ctx context.Context, key string, value []byte) error {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	_, err := s.db.ExecContext(qctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *sqliteStore) MainConfig(ctx context.Context) MainConfig {
	data, err := s.get(ctx, keyGlobal)
	if err == sql.ErrNoRows {
		return DefaultMainConfig()
	}
	if err != nil {
		s.log.Error("reading main config: %v; using defaults", err)
		return DefaultMainConfig()
	}
	cfg, err := decodeMainConfig(data)
	if err != nil {
		s.log.Error("main config record unreadable: %v; using defaults", err)
		return DefaultMainConfig()
	}
	return cfg
}

func (s *sqliteStore) SetMainConfig(ctx context.Context, cfg MainConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	enc, err := encodeMainConfig(cfg)
	if err != nil {
		return err
	}
	if err := s.put(ctx, keyGlobal, enc); err != nil {
		return errors.Wrap(err, "ifconfig: writing main config")
	}
	return nil
}

func (s *sqliteStore) IfaceConfig(ctx context.Context, hw ipx.Node) (AdapterConfig, error) {
	data, err := s.get(ctx, ifaceKey(hw))
	if err == sql.ErrNoRows {
		return DefaultAdapterConfig(), nil
	}
	if err != nil {
		return AdapterConfig{}, errors.Wrapf(err, "ifconfig: reading config for %s", hw)
	}
	cfg, _, err := decodeAdapterConfig(data)
	if err != nil {
		return AdapterConfig{}, err
	}
	return cfg, nil
}

func (s *sqliteStore) SetIfaceConfig(ctx context.Context, hw ipx.Node, cfg AdapterConfig) error {
	enc, err := encodeAdapterConfig(cfg)
	if err != nil {
		return err
	}
	if err := s.put(ctx, ifaceKey(hw), enc); err != nil {
		return errors.Wrapf(err, "ifconfig: writing config for %s", hw)
	}
	return nil
}

func (s *sqliteStore) PrimaryIface(ctx context.Context) (ipx.Node, bool, error) {
	data, err := s.get(ctx, keyPrimary)
	if err == sql.ErrNoRows {
		return ipx.Node{}, false, nil
	}
	if err != nil {
		return ipx.Node{}, false, errors.Wrap(err, "ifconfig: reading primary designation")
	}
	node, err := decodePrimary(data)
	if err != nil {
		return ipx.Node{}, false, err
	}
	return node, true, nil
}

func (s *sqliteStore) SetPrimaryIface(ctx context.Context, hw ipx.Node, present bool) error {
	if !present {
		qctx, cancel := s.queryCtx(ctx)
		defer cancel()
		if _, err := s.db.ExecContext(qctx, `DELETE FROM settings WHERE key = ?`, keyPrimary); err != nil {
			return errors.Wrap(err, "ifconfig: clearing primary designation")
		}
		return nil
	}
	enc, err := encodePrimary(hw)
	if err != nil {
		return err
	}
	if err := s.put(ctx, keyPrimary, enc); err != nil {
		return errors.Wrap(err, "ifconfig: writing primary designation")
	}
	return nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
