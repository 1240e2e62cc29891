package main

import (
	"encoding/json"
	"fmt"
	"net"
	"strings"

	"github.com/steveschnepp/ipxwrapper/adapters"
	"github.com/steveschnepp/ipxwrapper/ifcache"
	"github.com/steveschnepp/ipxwrapper/tui"
)

type bindingView struct {
	Addr      string `json:"addr"`
	Netmask   string `json:"netmask"`
	Broadcast string `json:"broadcast"`
}

type interfaceView struct {
	HardwareAddr string        `json:"hwaddr"`
	Network      string        `json:"net"`
	Node         string        `json:"node"`
	Bindings     []bindingView `json:"bindings"`
}

func toView(iface ifcache.Interface) interfaceView {
	v := interfaceView{
		HardwareAddr: iface.HardwareAddr.String(),
		Network:      iface.Network.String(),
		Node:         iface.Node.String(),
		Bindings:     []bindingView{},
	}
	for _, b := range iface.Bindings {
		v.Bindings = append(v.Bindings, bindingView{
			Addr:      b.Addr.String(),
			Netmask:   net.IP(b.Netmask).String(),
			Broadcast: b.Broadcast.String(),
		})
	}
	return v
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// bindingSummary compresses bindings into "addr/prefix" pairs for table
// cells, falling back to the dotted mask when it is not contiguous.
func bindingSummary(bindings []ifcache.IPBinding) string {
	if len(bindings) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if ones, bits := b.Netmask.Size(); bits == net.IPv4len*8 {
			parts = append(parts, fmt.Sprintf("%s/%d", b.Addr, ones))
		} else {
			parts = append(parts, fmt.Sprintf("%s %s", b.Addr, net.IP(b.Netmask)))
		}
	}
	return strings.Join(parts, ", ")
}

func interfaceRows(ifaces []ifcache.Interface) [][]string {
	rows := make([][]string, 0, len(ifaces))
	for _, iface := range ifaces {
		rows = append(rows, []string{
			iface.HardwareAddr.String(),
			iface.Network.String(),
			iface.Node.String(),
			bindingSummary(iface.Bindings),
		})
	}
	return rows
}

var interfaceHeaders = []string{"HWADDR", "NET", "NODE", "ADDRESSES"}

func renderInterfaces(ifaces []ifcache.Interface) error {
	if flags.jsonOut {
		views := make([]interfaceView, 0, len(ifaces))
		for _, iface := range ifaces {
			views = append(views, toView(iface))
		}
		return printJSON(views)
	}
	tui.Table(interfaceHeaders, interfaceRows(ifaces))
	return nil
}

type addrView struct {
	Addr    string `json:"addr"`
	Netmask string `json:"netmask"`
}

type adapterView struct {
	HardwareAddr string     `json:"hwaddr"`
	Name         string     `json:"name"`
	Addrs        []addrView `json:"addrs"`
}

func renderAdapters(list []adapters.Adapter) error {
	if flags.jsonOut {
		views := make([]adapterView, 0, len(list))
		for _, ad := range list {
			v := adapterView{
				HardwareAddr: ad.HardwareAddr.String(),
				Name:         ad.Name,
				Addrs:        []addrView{},
			}
			for _, ipn := range ad.IPs {
				v.Addrs = append(v.Addrs, addrView{
					Addr:    ipn.Addr.String(),
					Netmask: net.IP(ipn.Mask).String(),
				})
			}
			views = append(views, v)
		}
		return printJSON(views)
	}

	rows := make([][]string, 0, len(list))
	for _, ad := range list {
		addrs := make([]string, 0, len(ad.IPs))
		for _, ipn := range ad.IPs {
			addrs = append(addrs, fmt.Sprintf("%s %s", ipn.Addr, net.IP(ipn.Mask)))
		}
		summary := "-"
		if len(addrs) > 0 {
			summary = strings.Join(addrs, ", ")
		}
		rows = append(rows, []string{ad.HardwareAddr.String(), tui.MaxWidth(ad.Name, 40), summary})
	}
	tui.Table([]string{"HWADDR", "NAME", "ADDRESSES"}, rows)
	return nil
}
