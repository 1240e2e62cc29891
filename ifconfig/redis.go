package ifconfig

import (
	"context"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"

	"github.com/steveschnepp/ipxwrapper/ipx"
	"github.com/steveschnepp/ipxwrapper/logger"
)

type redisStore struct {
	client *redis.Client
	log    logger.Logger
	cfg    config
}

var _ Store = (*redisStore)(nil)

// NewRedis returns a Store backed by Redis, for deployments where one store
// serves a fleet of hosts. Records are keyed by hardware address so hosts
// coexist; use WithPrefix to namespace further. The caller owns the
// redis.Client lifecycle; Close is a no-op on the client.
// Version-1 records found at open are rewritten in the current format.
func NewRedis(ctx context.Context, client *redis.Client, log logger.Logger, opts ...Option) (Store, error) {
	s := &redisStore{client: client, log: log, cfg: applyOptions(opts)}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *redisStore) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, s.cfg.queryTimeout)
}

func (s *redisStore) prefixKey(key string) string {
	if s.cfg.prefix == "" {
		return key
	}
	return s.cfg.prefix + ":" + key
}

// migrate rewrites version-1 records in the current format, hoisting the
// first legacy primary flag (by key order) into its own record unless a
// designation already exists.
func (s *redisStore) migrate(ctx context.Context) error {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()

	data, err := s.client.Get(qctx, s.prefixKey(keyGlobal)).Bytes()
	if err != nil && err != redis.Nil {
		return errors.Wrap(err, "ifconfig: reading main config record")
	}
	if err == nil && len(data) > 0 && data[0] == recordV1 {
		cfg, derr := decodeMainConfig(data)
		if derr != nil {
			s.log.Warn("skipping unreadable legacy record %q: %v", keyGlobal, derr)
		} else {
			enc, eerr := encodeMainConfig(cfg)
			if eerr != nil {
				return eerr
			}
			if err := s.client.Set(qctx, s.prefixKey(keyGlobal), enc, 0).Err(); err != nil {
				return errors.Wrap(err, "ifconfig: rewriting main config record")
			}
		}
	}

	var keys []string
	iter := s.client.Scan(qctx, 0, s.prefixKey(keyIfacePre)+"*", 100).Iterator()
	for iter.Next(qctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return errors.Wrap(err, "ifconfig: scanning adapter records")
	}
	sort.Strings(keys)

	var legacyPrimary *ipx.Node
	pipe := s.client.Pipeline()
	rewrites := 0
	for _, key := range keys {
		data, err := s.client.Get(qctx, key).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "ifconfig: reading record %q", key)
		}
		if len(data) == 0 || data[0] != recordV1 {
			continue
		}
		cfg, primary, err := decodeAdapterConfig(data)
		if err != nil {
			s.log.Warn("skipping unreadable legacy record %q: %v", key, err)
			continue
		}
		enc, err := encodeAdapterConfig(cfg)
		if err != nil {
			return err
		}
		pipe.Set(qctx, key, enc, 0)
		rewrites++
		if primary && legacyPrimary == nil {
			raw := strings.TrimPrefix(key, s.prefixKey(keyIfacePre))
			if hw, perr := ipx.ParseNode(raw); perr == nil {
				legacyPrimary = &hw
			}
		}
	}
	if legacyPrimary != nil {
		enc, err := encodePrimary(*legacyPrimary)
		if err != nil {
			return err
		}
		pipe.SetNX(qctx, s.prefixKey(keyPrimary), enc, 0)
	}
	if rewrites == 0 && legacyPrimary == nil {
		return nil
	}
	if _, err := pipe.Exec(qctx); err != nil {
		return errors.Wrap(err, "ifconfig: rewriting legacy records")
	}
	s.log.Info("migrated %d legacy config records", rewrites)
	return nil
}

func (s *redisStore) MainConfig(ctx context.Context) MainConfig {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	data, err := s.client.Get(qctx, s.prefixKey(keyGlobal)).Bytes()
	if err == redis.Nil {
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

func (s *redisStore) SetMainConfig(ctx context.Context, cfg MainConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	enc, err := encodeMainConfig(cfg)
	if err != nil {
		return err
	}
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	if err := s.client.Set(qctx, s.prefixKey(keyGlobal), enc, 0).Err(); err != nil {
		return errors.Wrap(err, "ifconfig: writing main config")
	}
	return nil
}

func (s *redisStore) IfaceConfig(ctx context.Context, hw ipx.Node) (AdapterConfig, error) {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	data, err := s.client.Get(qctx, s.prefixKey(ifaceKey(hw))).Bytes()
	if err == redis.Nil {
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

func (s *redisStore) SetIfaceConfig(ctx context.Context, hw ipx.Node, cfg AdapterConfig) error {
	enc, err := encodeAdapterConfig(cfg)
	if err != nil {
		return err
	}
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	if err := s.client.Set(qctx, s.prefixKey(ifaceKey(hw)), enc, 0).Err(); err != nil {
		return errors.Wrapf(err, "ifconfig: writing config for %s", hw)
	}
	return nil
}

func (s *redisStore) PrimaryIface(ctx context.Context) (ipx.Node, bool, error) {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	data, err := s.client.Get(qctx, s.prefixKey(keyPrimary)).Bytes()
	if err == redis.Nil {
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

func (s *redisStore) SetPrimaryIface(ctx context.Context, hw ipx.Node, present bool) error {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	if !present {
		if err := s.client.Del(qctx, s.prefixKey(keyPrimary)).Err(); err != nil {
			return errors.Wrap(err, "ifconfig: clearing primary designation")
		}
		return nil
	}
	enc, err := encodePrimary(hw)
	if err != nil {
		return err
	}
	if err := s.client.Set(qctx, s.prefixKey(keyPrimary), enc, 0).Err(); err != nil {
		return errors.Wrap(err, "ifconfig: writing primary designation")
	}
	return nil
}

// Close is a no-op; the caller owns the redis.Client lifecycle.
func (s *redisStore) Close() error {
	return nil
}
