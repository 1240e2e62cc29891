package ifcache

import (
	"context"
	"net"

	"github.com/cockroachdb/errors"

	"github.com/steveschnepp/ipxwrapper/adapters"
	"github.com/steveschnepp/ipxwrapper/ifconfig"
	"github.com/steveschnepp/ipxwrapper/ipx"
	"github.com/steveschnepp/ipxwrapper/logger"
)

// Build failures carry one of these marks so callers can tell which
// dependency broke without inspecting backend-specific errors.
var (
	// ErrSource marks adapter enumeration failures.
	ErrSource = errors.New("adapter enumeration failed")

	// ErrStore marks configuration store read failures.
	ErrStore = errors.New("configuration read failed")
)

// hamachiPlaceholder is the node number buggy Hamachi drivers report for
// every adapter instead of a per-adapter hardware address: the 7a:79 vendor
// prefix followed by four zero bytes.
var hamachiPlaceholder = ipx.Node{0x7a, 0x79, 0x00, 0x00, 0x00, 0x00}

// Builder assembles the virtual IPX interface list from a system adapter
// snapshot and the configuration store. It holds no state between builds;
// [Cache] owns the snapshots it produces.
type Builder struct {
	source adapters.Source
	store  ifconfig.Store
	log    logger.Logger
}

func NewBuilder(source adapters.Source, store ifconfig.Store, log logger.Logger) *Builder {
	return &Builder{source: source, store: store, log: log}
}

// Build enumerates the system adapters and returns one Interface per enabled
// adapter, the primary one first and the rest in enumeration order. Node
// numbers equal to the Hamachi placeholder are corrected from the first
// bound IP address. Any enumeration or store failure aborts the whole build;
// Build never returns a partial list.
func (b *Builder) Build(ctx context.Context) ([]Interface, error) {
	sysAdapters, err := b.source.Enumerate(ctx)
	if err != nil {
		return nil, errors.Mark(err, ErrSource)
	}

	primary, havePrimary, err := b.store.PrimaryIface(ctx)
	if err != nil {
		return nil, errors.Mark(err, ErrStore)
	}

	ifaces := make([]Interface, 0, len(sysAdapters))
	seen := make(map[ipx.Node]struct{}, len(sysAdapters))

	for _, ad := range sysAdapters {
		if _, dup := seen[ad.HardwareAddr]; dup {
			b.log.Warn("duplicate hardware address %s (%s), keeping the first occurrence", ad.HardwareAddr, ad.Name)
			continue
		}
		seen[ad.HardwareAddr] = struct{}{}

		cfg, err := b.store.IfaceConfig(ctx, ad.HardwareAddr)
		if err != nil {
			return nil, errors.Mark(err, ErrStore)
		}
		if !cfg.Enabled {
			b.log.Trace("adapter %s (%s) is disabled", ad.HardwareAddr, ad.Name)
			continue
		}

		iface := Interface{
			HardwareAddr: ad.HardwareAddr,
			Network:      cfg.Network,
			Node:         cfg.Node,
		}

		for _, ipn := range ad.IPs {
			if bind, ok := makeBinding(ipn); ok {
				iface.Bindings = append(iface.Bindings, bind)
			}
		}

		if iface.Node == hamachiPlaceholder && len(iface.Bindings) > 0 {
			copy(iface.Node[2:], iface.Bindings[0].Addr.To4())
			b.log.Warn("invalid Hamachi interface detected, correcting node number of %s to %s", ad.HardwareAddr, iface.Node)
		}

		if havePrimary && iface.HardwareAddr == primary {
			ifaces = append([]Interface{iface}, ifaces...)
		} else {
			ifaces = append(ifaces, iface)
		}
	}

	return ifaces, nil
}

// makeBinding converts one reported address, rejecting anything that is not
// a configured IPv4 address. 0.0.0.0 means the adapter holds a slot with no
// assigned address. The broadcast address is addr | ^mask.
func makeBinding(ipn adapters.IPNet) (IPBinding, bool) {
	addr := ipn.Addr.To4()
	if addr == nil || addr.Equal(net.IPv4zero) {
		return IPBinding{}, false
	}

	mask := ipn.Mask
	if len(mask) == net.IPv6len {
		mask = mask[12:]
	}
	if len(mask) != net.IPv4len {
		return IPBinding{}, false
	}

	bind := IPBinding{
		Addr:      cloneIP(addr),
		Netmask:   net.IPMask(cloneBytes(mask)),
		Broadcast: make(net.IP, net.IPv4len),
	}
	for n := range bind.Broadcast {
		bind.Broadcast[n] = addr[n] | ^mask[n]
	}
	return bind, true
}
