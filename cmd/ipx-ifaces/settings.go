package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	str2duration "github.com/xhit/go-str2duration/v2"
	"gopkg.in/yaml.v3"

	"github.com/steveschnepp/ipxwrapper/adapters"
	"github.com/steveschnepp/ipxwrapper/ifcache"
	"github.com/steveschnepp/ipxwrapper/ifconfig"
	"github.com/steveschnepp/ipxwrapper/logger"
	"github.com/steveschnepp/ipxwrapper/telemetry"
)

// fileConfig is the YAML settings file. Every field is optional; flags
// override whatever the file sets.
type fileConfig struct {
	Store     string `yaml:"store"`
	TTL       string `yaml:"ttl"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	OTLP      struct {
		URL   string `yaml:"url"`
		Token string `yaml:"token"`
	} `yaml:"otlp"`
}

type settings struct {
	storeURL  string
	ttl       time.Duration
	logLevel  logger.LogLevel
	logFormat string
	otlpURL   string
	otlpToken string
}

// resolveSettings layers defaults, then the settings file, then flags.
func resolveSettings() (settings, error) {
	s := settings{
		storeURL:  "memory:",
		ttl:       ifcache.DefaultTTL,
		logLevel:  logger.GetLevelFromEnv(),
		logFormat: "console",
	}

	if flags.configPath != "" {
		data, err := os.ReadFile(flags.configPath)
		if err != nil {
			return s, errors.Wrap(err, "reading settings file")
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return s, errors.Wrap(err, "parsing settings file")
		}
		if fc.Store != "" {
			s.storeURL = fc.Store
		}
		if fc.TTL != "" {
			d, err := str2duration.ParseDuration(fc.TTL)
			if err != nil {
				return s, errors.Wrapf(err, "invalid ttl %q in settings file", fc.TTL)
			}
			s.ttl = d
		}
		if fc.LogLevel != "" {
			s.logLevel = logger.ParseLevel(fc.LogLevel)
		}
		if fc.LogFormat != "" {
			s.logFormat = fc.LogFormat
		}
		if fc.OTLP.URL != "" {
			s.otlpURL = fc.OTLP.URL
		}
		if fc.OTLP.Token != "" {
			s.otlpToken = fc.OTLP.Token
		}
	}

	if flags.storeURL != "" {
		s.storeURL = flags.storeURL
	}
	if flags.ttl != "" {
		d, err := str2duration.ParseDuration(flags.ttl)
		if err != nil {
			return s, errors.Wrapf(err, "invalid --ttl %q", flags.ttl)
		}
		s.ttl = d
	}
	if flags.logLevel != "" {
		s.logLevel = logger.ParseLevel(flags.logLevel)
	}
	if flags.logFormat != "" {
		s.logFormat = flags.logFormat
	}
	if flags.otlpURL != "" {
		s.otlpURL = flags.otlpURL
	}
	if flags.otlpToken != "" {
		s.otlpToken = flags.otlpToken
	}

	if s.ttl <= 0 {
		return s, errors.Newf("ttl must be positive, got %s", s.ttl)
	}
	if s.logFormat != "console" && s.logFormat != "json" {
		return s, errors.Newf("unknown log format %q", s.logFormat)
	}
	return s, nil
}

// app bundles everything a subcommand needs. Close releases the cache, the
// store and any OTLP pipeline, in that order.
type app struct {
	log      logger.Logger
	store    ifconfig.Store
	cache    *ifcache.Cache
	shutdown []func()
}

func newApp(ctx context.Context) (*app, error) {
	s, err := resolveSettings()
	if err != nil {
		return nil, err
	}

	a := &app{}
	if s.logFormat == "json" {
		a.log = logger.NewJSONLoggerWithWriter(os.Stderr, s.logLevel)
	} else {
		a.log = logger.NewConsoleLogger(s.logLevel)
	}

	if s.otlpURL != "" {
		otelLog, stop, err := telemetry.New(ctx, s.otlpURL, s.otlpToken, "ipx-ifaces")
		if err != nil {
			return nil, err
		}
		a.log = otelLog
		a.shutdown = append(a.shutdown, stop)
	}

	store, closeStore, err := openStore(ctx, s.storeURL, a.log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = store
	if closeStore != nil {
		a.shutdown = append(a.shutdown, closeStore)
	}

	builder := ifcache.NewBuilder(adapters.NewSystemSource(a.log), a.store, a.log)
	a.cache = ifcache.New(builder,
		ifcache.WithTTL(s.ttl),
		ifcache.WithLogger(a.log),
	)
	return a, nil
}

func (a *app) Close() {
	if a.cache != nil {
		a.cache.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
	for _, stop := range a.shutdown {
		stop()
	}
}

// openStore maps a store URL to a backend. The returned func, when non-nil,
// releases resources the store does not own itself.
func openStore(ctx context.Context, rawURL string, log logger.Logger) (ifconfig.Store, func(), error) {
	switch {
	case rawURL == "memory:" || rawURL == "memory://":
		return ifconfig.NewMemory(), nil, nil

	case strings.HasPrefix(rawURL, "sqlite://"):
		store, err := ifconfig.NewSQLite(ctx, strings.TrimPrefix(rawURL, "sqlite://"), log)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil

	case strings.HasPrefix(rawURL, "redis://"), strings.HasPrefix(rawURL, "rediss://"):
		opts, err := redis.ParseURL(rawURL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "parsing redis URL")
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, errors.Wrap(err, "connecting to redis")
		}
		store, err := ifconfig.NewRedis(ctx, client, log)
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		return store, func() { client.Close() }, nil
	}

	return nil, nil, errors.Newf("unsupported store URL %q", rawURL)
}
