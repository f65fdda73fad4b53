package transport

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/itohio/godoze/pkg/wire"
)

// UDPConfig configures a host UDP transport.
type UDPConfig struct {
	// Address is this endpoint's 6-byte transport address.
	Address wire.MacAddress

	// Listen is the local UDP bind address, e.g. "127.0.0.1:0".
	Listen string

	// Channel emulates the radio channel: endpoints on different channels
	// cannot hear each other.
	Channel uint8

	// Seeds are UDP addresses that receive broadcasts and unicasts to
	// peers whose socket address has not been learned yet.
	Seeds []string
}

// UDP carries node datagrams over UDP sockets so the core can run on a host
// without a radio. Broadcast is emulated by fanning out to the seed
// addresses; unicast prefers the socket address learned from inbound
// traffic. Receivers filter on channel and destination address exactly like
// a shared radio medium.
type UDP struct {
	cfg   UDPConfig
	conn  *net.UDPConn
	seeds []*net.UDPAddr

	mu    sync.Mutex
	peers map[wire.MacAddress]*net.UDPAddr
}

// Ensure UDP implements Transport.
var _ Transport = (*UDP)(nil)

// NewUDP binds the socket and resolves the seed addresses.
func NewUDP(cfg UDPConfig) (*UDP, error) {
	laddr, err := net.ResolveUDPAddr("udp", cfg.Listen)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve listen address %q: %w", cfg.Listen, err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind %q: %w", cfg.Listen, err)
	}

	seeds := make([]*net.UDPAddr, 0, len(cfg.Seeds))
	for _, s := range cfg.Seeds {
		addr, err := net.ResolveUDPAddr("udp", s)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to resolve seed %q: %w", s, err)
		}
		seeds = append(seeds, addr)
	}

	return &UDP{
		cfg:   cfg,
		conn:  conn,
		seeds: seeds,
		peers: make(map[wire.MacAddress]*net.UDPAddr),
	}, nil
}

// LocalAddr returns the bound UDP address, useful when Listen used port 0.
func (u *UDP) LocalAddr() *net.UDPAddr {
	return u.conn.LocalAddr().(*net.UDPAddr)
}

// OwnAddress implements Transport.
func (u *UDP) OwnAddress() wire.MacAddress { return u.cfg.Address }

// AddPeer implements Transport. The socket address of the peer is learned
// from its traffic, so registration is pure bookkeeping here.
func (u *UDP) AddPeer(addr wire.MacAddress) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.peers[addr]; !ok {
		u.peers[addr] = nil
	}
	return nil
}

// Send implements Transport. The payload travels in a channel-prefixed
// envelope carrying the full datagram header.
func (u *UDP) Send(dest wire.MacAddress, payload []byte) error {
	frame := append([]byte{u.cfg.Channel}, wire.EncodeDatagram(wire.Datagram{
		Src:     u.cfg.Address,
		Dst:     dest,
		Payload: payload,
	})...)

	u.mu.Lock()
	learned := u.peers[dest]
	u.mu.Unlock()

	if !dest.IsBroadcast() && learned != nil {
		if _, err := u.conn.WriteToUDP(frame, learned); err != nil {
			return fmt.Errorf("failed to send to %s: %w", dest, err)
		}
		return nil
	}

	// Broadcast, or unicast to a peer whose socket we have not heard from
	// yet: fan out to the seeds and let receivers filter on Dst.
	if len(u.seeds) == 0 {
		return wire.ErrUnknownPeer
	}
	var firstErr error
	for _, s := range u.seeds {
		if _, err := u.conn.WriteToUDP(frame, s); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to send to seed %s: %w", s, err)
		}
	}
	return firstErr
}

// Receive implements Transport. Frames on foreign channels or addressed to
// someone else are dropped without consuming the window.
func (u *UDP) Receive(timeout time.Duration) (*wire.Datagram, error) {
	deadline := time.Now().Add(timeout)
	buf := make([]byte, 1500)

	for {
		if err := u.conn.SetReadDeadline(deadline); err != nil {
			return nil, fmt.Errorf("failed to set read deadline: %w", err)
		}
		n, raddr, err := u.conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return nil, wire.ErrTimeout
			}
			return nil, fmt.Errorf("receive failed: %w", err)
		}

		if n < 1 || buf[0] != u.cfg.Channel {
			continue
		}
		d, err := wire.DecodeDatagram(buf[1:n])
		if err != nil {
			continue
		}
		if d.Src == u.cfg.Address {
			// Our own broadcast echoed back through a seed.
			continue
		}

		u.mu.Lock()
		u.peers[d.Src] = raddr
		u.mu.Unlock()

		if d.Dst != u.cfg.Address && !d.Dst.IsBroadcast() {
			continue
		}
		return &d, nil
	}
}

// Close implements Transport.
func (u *UDP) Close() error {
	return u.conn.Close()
}
