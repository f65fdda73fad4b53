package transport

import (
	"sync"
	"time"

	"github.com/itohio/godoze/pkg/wire"
)

// Mock simulates a radio for tests and development. Inbound traffic is
// injected with InjectRx; everything sent is kept in an inspectable log.
type Mock struct {
	addr wire.MacAddress

	mu      sync.Mutex
	rx      []wire.Datagram
	tx      []wire.Datagram
	peers   map[wire.MacAddress]bool
	sendErr error
	closed  bool
}

// Ensure Mock implements Transport.
var _ Transport = (*Mock)(nil)

// NewMock creates a mock transport with the given own address.
func NewMock(addr wire.MacAddress) *Mock {
	return &Mock{
		addr:  addr,
		peers: make(map[wire.MacAddress]bool),
	}
}

// FailSends makes every subsequent Send return err (nil restores normal
// operation).
func (m *Mock) FailSends(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
}

// InjectRx queues a datagram for a later Receive.
func (m *Mock) InjectRx(d wire.Datagram) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rx = append(m.rx, d)
}

// TxLog returns a copy of everything sent so far.
func (m *Mock) TxLog() []wire.Datagram {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]wire.Datagram, len(m.tx))
	copy(out, m.tx)
	return out
}

// Peers returns the registered unicast peers.
func (m *Mock) Peers() []wire.MacAddress {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]wire.MacAddress, 0, len(m.peers))
	for p := range m.peers {
		out = append(out, p)
	}
	return out
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// OwnAddress implements Transport.
func (m *Mock) OwnAddress() wire.MacAddress { return m.addr }

// AddPeer implements Transport.
func (m *Mock) AddPeer(addr wire.MacAddress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.peers[addr] = true
	return nil
}

// Send implements Transport.
func (m *Mock) Send(dest wire.MacAddress, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	p := make([]byte, len(payload))
	copy(p, payload)
	m.tx = append(m.tx, wire.Datagram{Src: m.addr, Dst: dest, Payload: p})
	return nil
}

// Receive implements Transport. It returns queued datagrams immediately and
// wire.ErrTimeout once the queue is empty; it never actually waits, which
// keeps tests instant.
func (m *Mock) Receive(timeout time.Duration) (*wire.Datagram, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.rx) == 0 {
		return nil, wire.ErrTimeout
	}
	d := m.rx[0]
	m.rx = m.rx[1:]
	return &d, nil
}

// Close implements Transport.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
