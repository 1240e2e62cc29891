//go:build windows

package adapters

import (
	"context"
	"net"
	"runtime"
	"unsafe"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/windows"

	"github.com/steveschnepp/ipxwrapper/ipx"
	"github.com/steveschnepp/ipxwrapper/logger"
)

type systemSource struct {
	log logger.Logger
}

// Enumerate reads the adapter table via GetAdaptersInfo. The API reports the
// required buffer length through its size argument, so the buffer is grown
// and the call retried until the whole table fits. ERROR_NO_DATA means the
// host has no adapters.
func (s *systemSource) Enumerate(ctx context.Context) ([]Adapter, error) {
	size := uint32(unsafe.Sizeof(windows.IpAdapterInfo{}))
	var buf []byte
	for {
		buf = make([]byte, size)
		err := windows.GetAdaptersInfo((*windows.IpAdapterInfo)(unsafe.Pointer(&buf[0])), &size)
		if err == nil {
			break
		}
		if err == windows.ERROR_NO_DATA {
			return nil, nil
		}
		if err != windows.ERROR_BUFFER_OVERFLOW {
			return nil, errors.Wrap(err, "adapters: GetAdaptersInfo")
		}
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}
		s.log.Trace("adapter table needs %d bytes, growing", size)
	}

	var out []Adapter
	for ai := (*windows.IpAdapterInfo)(unsafe.Pointer(&buf[0])); ai != nil; ai = ai.Next {
		if ai.AddressLength != 6 {
			continue
		}
		var node ipx.Node
		copy(node[:], ai.Address[:6])
		a := Adapter{
			HardwareAddr: node,
			Name:         windows.ByteSliceToString(ai.Description[:]),
		}
		// A disconnected adapter lists 0.0.0.0; it is kept here and
		// filtered by the consumer, matching the raw table.
		for ips := &ai.IpAddressList; ips != nil; ips = ips.Next {
			addr := net.ParseIP(windows.ByteSliceToString(ips.IpAddress.String[:]))
			mask := net.ParseIP(windows.ByteSliceToString(ips.IpMask.String[:]))
			a4 := addr.To4()
			m4 := mask.To4()
			if a4 == nil || m4 == nil {
				continue
			}
			a.IPs = append(a.IPs, IPNet{Addr: a4, Mask: net.IPMask(m4)})
		}
		out = append(out, a)
	}
	runtime.KeepAlive(buf)

	s.log.Trace("enumerated %d adapters", len(out))
	return out, nil
}
