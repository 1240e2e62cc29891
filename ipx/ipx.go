// Package ipx provides the address model shared by the interface cache and
// configuration layers: 32-bit network numbers and 48-bit node numbers.
// Node numbers double as adapter hardware addresses since both are 48-bit
// link-layer shaped values.
package ipx

import (
	"encoding/binary"
	"fmt"
	"net"
	"strings"
)

// Network is a 32-bit IPX network number. The zero value means "unset".
type Network [4]byte

// Node is a 48-bit IPX node number or adapter hardware address.
// The zero value means "unset".
type Node [6]byte

var (
	// ZeroNode is the unset node number.
	ZeroNode = Node{}
	// BroadcastNode is the link broadcast node number.
	BroadcastNode = Node{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
)

// NetworkFromUint32 builds a Network from a host integer in network byte order.
func NetworkFromUint32(v uint32) Network {
	var n Network
	binary.BigEndian.PutUint32(n[:], v)
	return n
}

// Uint32 returns the network number as a host integer in network byte order.
func (n Network) Uint32() uint32 {
	return binary.BigEndian.Uint32(n[:])
}

// IsZero reports whether the network number is unset.
func (n Network) IsZero() bool {
	return n == Network{}
}

func (n Network) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x", n[0], n[1], n[2], n[3])
}

// ParseNetwork parses a network number in xx:xx:xx:xx form.
// Both ':' and '-' separators are accepted, case-insensitive.
func ParseNetwork(s string) (Network, error) {
	var n Network
	if err := parseHexGroups(s, n[:]); err != nil {
		return Network{}, fmt.Errorf("ipx: invalid network number %q: %w", s, err)
	}
	return n, nil
}

// MarshalText implements encoding.TextMarshaler.
func (n Network) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *Network) UnmarshalText(text []byte) error {
	parsed, err := ParseNetwork(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// NodeFromHardwareAddr converts an OS hardware address to a Node.
// Only 48-bit addresses qualify; anything else returns ok=false.
func NodeFromHardwareAddr(hw net.HardwareAddr) (Node, bool) {
	if len(hw) != 6 {
		return Node{}, false
	}
	var n Node
	copy(n[:], hw)
	return n, true
}

// HardwareAddr returns the node as an OS hardware address.
func (n Node) HardwareAddr() net.HardwareAddr {
	hw := make(net.HardwareAddr, 6)
	copy(hw, n[:])
	return hw
}

// IsZero reports whether the node number is unset.
func (n Node) IsZero() bool {
	return n == Node{}
}

// IsBroadcast reports whether the node is the link broadcast address.
func (n Node) IsBroadcast() bool {
	return n == BroadcastNode
}

func (n Node) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", n[0], n[1], n[2], n[3], n[4], n[5])
}

// ParseNode parses a node number in xx:xx:xx:xx:xx:xx form.
// Both ':' and '-' separators are accepted, case-insensitive.
func ParseNode(s string) (Node, error) {
	var n Node
	if err := parseHexGroups(s, n[:]); err != nil {
		return Node{}, fmt.Errorf("ipx: invalid node number %q: %w", s, err)
	}
	return n, nil
}

// MarshalText implements encoding.TextMarshaler.
func (n Node) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *Node) UnmarshalText(text []byte) error {
	parsed, err := ParseNode(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// parseHexGroups fills dst from len(dst) two-digit hex groups.
func parseHexGroups(s string, dst []byte) error {
	groups := strings.FieldsFunc(s, func(r rune) bool {
		return r == ':' || r == '-'
	})
	if len(groups) != len(dst) {
		return fmt.Errorf("expected %d groups, got %d", len(dst), len(groups))
	}
	for i, g := range groups {
		if len(g) != 2 {
			return fmt.Errorf("group %q is not two hex digits", g)
		}
		hi := hexNibble(g[0])
		lo := hexNibble(g[1])
		if hi < 0 || lo < 0 {
			return fmt.Errorf("group %q is not two hex digits", g)
		}
		dst[i] = byte(hi<<4 | lo)
	}
	return nil
}

func hexNibble(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}
