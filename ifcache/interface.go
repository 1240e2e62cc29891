package ifcache

import (
	"net"

	"github.com/steveschnepp/ipxwrapper/ipx"
)

// IPBinding is one IPv4 address bound to an interface, with its netmask and
// the broadcast address derived from them.
type IPBinding struct {
	Addr      net.IP     `msgpack:"addr"`
	Netmask   net.IPMask `msgpack:"netmask"`
	Broadcast net.IP     `msgpack:"broadcast"`
}

// Copy returns a binding backed by fresh storage.
func (b IPBinding) Copy() IPBinding {
	return IPBinding{
		Addr:      cloneIP(b.Addr),
		Netmask:   net.IPMask(cloneBytes(b.Netmask)),
		Broadcast: cloneIP(b.Broadcast),
	}
}

// Interface is one virtual IPX interface: a system adapter as seen through
// its stored configuration. HardwareAddr identifies the underlying adapter;
// Network and Node are the IPX addressing assigned to it. Bindings preserves
// the adapter's IP enumeration order and may be empty.
type Interface struct {
	HardwareAddr ipx.Node    `msgpack:"hwaddr"`
	Network      ipx.Network `msgpack:"net"`
	Node         ipx.Node    `msgpack:"node"`
	Bindings     []IPBinding `msgpack:"bindings"`
}

// Copy returns a deep copy sharing no storage with the receiver.
func (i Interface) Copy() Interface {
	out := i
	if i.Bindings != nil {
		out.Bindings = make([]IPBinding, len(i.Bindings))
		for n, b := range i.Bindings {
			out.Bindings[n] = b.Copy()
		}
	}
	return out
}

func copyInterfaces(in []Interface) []Interface {
	if in == nil {
		return nil
	}
	out := make([]Interface, len(in))
	for n, iface := range in {
		out[n] = iface.Copy()
	}
	return out
}

func cloneIP(ip net.IP) net.IP {
	return net.IP(cloneBytes(ip))
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
