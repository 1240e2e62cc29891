//go:build linux

package adapters

import (
	"context"
	"net"

	"github.com/cockroachdb/errors"
	"github.com/vishvananda/netlink"

	"github.com/steveschnepp/ipxwrapper/ipx"
	"github.com/steveschnepp/ipxwrapper/logger"
)

type systemSource struct {
	log logger.Logger
}

// retryDump re-runs a netlink dump that raced a table change. The kernel
// flags interrupted dumps instead of blocking, so a consistent snapshot is
// obtained by retrying until a clean pass.
func retryDump[T any](ctx context.Context, log logger.Logger, what string, dump func() (T, error)) (T, error) {
	for {
		out, err := dump()
		if err == nil || !errors.Is(err, netlink.ErrDumpInterrupted) {
			return out, err
		}
		if cerr := ctx.Err(); cerr != nil {
			return out, cerr
		}
		log.Trace("%s dump interrupted, retrying", what)
	}
}

// Enumerate lists links and their IPv4 addresses via netlink. Loopback is
// skipped: it is never a tunnel candidate and the Windows adapter table does
// not list it either. Links without a 48-bit hardware address are skipped.
func (s *systemSource) Enumerate(ctx context.Context) ([]Adapter, error) {
	links, err := retryDump(ctx, s.log, "link", netlink.LinkList)
	if err != nil {
		return nil, errors.Wrap(err, "adapters: listing links")
	}

	var out []Adapter
	for _, link := range links {
		attrs := link.Attrs()
		if attrs.Flags&net.FlagLoopback != 0 {
			continue
		}
		node, ok := ipx.NodeFromHardwareAddr(attrs.HardwareAddr)
		if !ok {
			continue
		}
		addrs, err := retryDump(ctx, s.log, "addr", func() ([]netlink.Addr, error) {
			return netlink.AddrList(link, netlink.FAMILY_V4)
		})
		if err != nil {
			return nil, errors.Wrapf(err, "adapters: listing addresses for %s", attrs.Name)
		}
		a := Adapter{HardwareAddr: node, Name: attrs.Name}
		for _, addr := range addrs {
			ip4 := addr.IP.To4()
			if ip4 == nil {
				continue
			}
			a.IPs = append(a.IPs, IPNet{Addr: ip4, Mask: addr.Mask})
		}
		out = append(out, a)
	}

	s.log.Trace("enumerated %d adapters", len(out))
	return out, nil
}
