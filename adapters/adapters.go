// Package adapters enumerates the host's network adapters as candidates for
// IPX interface binding. Results are an ephemeral snapshot of OS state: the
// caller queries, uses, and discards them.
package adapters

import (
	"context"
	"net"

	"github.com/steveschnepp/ipxwrapper/ipx"
	"github.com/steveschnepp/ipxwrapper/logger"
)

// IPNet is one IPv4 binding reported by the OS for an adapter.
// Addr and Mask are in 4-byte form.
type IPNet struct {
	Addr net.IP
	Mask net.IPMask
}

// Adapter describes one physical or virtual network adapter. Name is the OS
// name and is diagnostic only. IPs preserves OS enumeration order and may be
// empty or contain zero addresses for unconfigured adapters.
type Adapter struct {
	HardwareAddr ipx.Node
	Name         string
	IPs          []IPNet
}

// Source produces the current adapter list. Implementations return the
// complete list or an error, never a partial result. An empty list is a
// valid result, not an error.
type Source interface {
	Enumerate(ctx context.Context) ([]Adapter, error)
}

// NewSystemSource returns the platform adapter source. On Windows it reads
// the adapter table via GetAdaptersInfo, on Linux via netlink, elsewhere via
// gopsutil.
func NewSystemSource(log logger.Logger) Source {
	return &systemSource{log: log}
}

// StaticSource serves a fixed adapter list. Useful for tests and embedders
// that manage adapters themselves.
type StaticSource struct {
	Adapters []Adapter
}

var _ Source = (*StaticSource)(nil)

func (s *StaticSource) Enumerate(_ context.Context) ([]Adapter, error) {
	return copyAdapters(s.Adapters), nil
}

// FuncSource adapts a function to the Source interface.
type FuncSource func(ctx context.Context) ([]Adapter, error)

var _ Source = (FuncSource)(nil)

func (f FuncSource) Enumerate(ctx context.Context) ([]Adapter, error) {
	return f(ctx)
}

// copyAdapters deep-copies an adapter list so callers own the result.
func copyAdapters(in []Adapter) []Adapter {
	out := make([]Adapter, len(in))
	for i, a := range in {
		out[i] = Adapter{
			HardwareAddr: a.HardwareAddr,
			Name:         a.Name,
			IPs:          make([]IPNet, len(a.IPs)),
		}
		for j, ipn := range a.IPs {
			out[i].IPs[j] = IPNet{
				Addr: append(net.IP(nil), ipn.Addr...),
				Mask: append(net.IPMask(nil), ipn.Mask...),
			}
		}
	}
	return out
}
