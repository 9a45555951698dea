package peers

import (
	"fmt"
	"net"
	"strconv"
)

// Peer is one fixed counterparty, bound to its own port.
type Peer struct {
	Name string `json:"name"`
	Host string `json:"host,omitempty"`
	Port int    `json:"port"`
}

func (p Peer) Addr() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

func (p Peer) String() string {
	return p.Name + "@" + p.Addr()
}

type Peers []Peer

var DefaultPeers = Peers{
	{Name: "threshold", Port: 8888},
	{Name: "gemma3n", Port: 8889},
	{Name: "gemini_cli", Port: 8890},
}

func (p Peers) Lookup(name string) (Peer, bool) {
	for _, peer := range p {
		if peer.Name == name {
			return peer, true
		}
	}
	return Peer{}, false
}

func (p Peers) Names() []string {
	ret := make([]string, 0, len(p))
	for _, peer := range p {
		ret = append(ret, peer.Name)
	}
	return ret
}

func (p Peers) Validate() error {
	names := make(map[string]bool)
	addrs := make(map[string]string)
	for _, peer := range p {
		if peer.Name == "" {
			return fmt.Errorf("peer without name: %s", peer.Addr())
		}
		if peer.Port <= 0 || peer.Port > 65535 {
			return fmt.Errorf("peer %s: bad port %d", peer.Name, peer.Port)
		}
		if names[peer.Name] {
			return fmt.Errorf("duplicated peer: %s", peer.Name)
		}
		names[peer.Name] = true
		if other, ok := addrs[peer.Addr()]; ok {
			return fmt.Errorf("peers %s and %s share address %s", other, peer.Name, peer.Addr())
		}
		addrs[peer.Addr()] = peer.Name
	}
	return nil
}
