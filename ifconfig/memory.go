package ifconfig

import (
	"context"
	"sync"

	"github.com/steveschnepp/ipxwrapper/ipx"
)

type memoryStore struct {
	mu      sync.RWMutex
	main    *MainConfig
	ifaces  map[ipx.Node]AdapterConfig
	primary *ipx.Node
}

var _ Store = (*memoryStore)(nil)

// NewMemory returns a Store held entirely in memory. Useful for tests and
// for embedders that manage configuration themselves.
func NewMemory() Store {
	return &memoryStore{ifaces: make(map[ipx.Node]AdapterConfig)}
}

func (s *memoryStore) MainConfig(_ context.Context) MainConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.main == nil {
		return DefaultMainConfig()
	}
	return *s.main
}

func (s *memoryStore) SetMainConfig(_ context.Context, cfg MainConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.main = &cfg
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) IfaceConfig(_ context.Context, hw ipx.Node) (AdapterConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cfg, ok := s.ifaces[hw]; ok {
		return cfg, nil
	}
	return DefaultAdapterConfig(), nil
}

func (s *memoryStore) SetIfaceConfig(_ context.Context, hw ipx.Node, cfg AdapterConfig) error {
	s.mu.Lock()
	s.ifaces[hw] = cfg
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) PrimaryIface(_ context.Context) (ipx.Node, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.primary == nil {
		return ipx.Node{}, false, nil
	}
	return *s.primary, true, nil
}

func (s *memoryStore) SetPrimaryIface(_ context.Context, hw ipx.Node, present bool) error {
	s.mu.Lock()
	if present {
		s.primary = &hw
	} else {
		s.primary = nil
	}
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Close() error {
	return nil
}
