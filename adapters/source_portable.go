//go:build !linux && !windows

package adapters

import (
	"context"
	"net"
	"slices"

	"github.com/cockroachdb/errors"
	psnet "github.com/shirou/gopsutil/v4/net"

	"github.com/steveschnepp/ipxwrapper/ipx"
	"github.com/steveschnepp/ipxwrapper/logger"
)

type systemSource struct {
	log logger.Logger
}

// Enumerate lists adapters via gopsutil. Loopback is skipped, as are links
// without a 48-bit hardware address. Only IPv4 addresses are reported.
func (s *systemSource) Enumerate(ctx context.Context) ([]Adapter, error) {
	stats, err := psnet.InterfacesWithContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "adapters: listing interfaces")
	}

	var out []Adapter
	for _, st := range stats {
		if slices.Contains(st.Flags, "loopback") {
			continue
		}
		hw, err := net.ParseMAC(st.HardwareAddr)
		if err != nil {
			continue
		}
		node, ok := ipx.NodeFromHardwareAddr(hw)
		if !ok {
			continue
		}
		a := Adapter{HardwareAddr: node, Name: st.Name}
		for _, ia := range st.Addrs {
			ip, ipnet, err := net.ParseCIDR(ia.Addr)
			if err != nil {
				continue
			}
			ip4 := ip.To4()
			if ip4 == nil {
				continue
			}
			a.IPs = append(a.IPs, IPNet{Addr: ip4, Mask: ipnet.Mask})
		}
		out = append(out, a)
	}

	s.log.Trace("enumerated %d adapters", len(out))
	return out, nil
}
