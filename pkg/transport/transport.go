// Package transport abstracts the connectionless datagram radio. The node
// core only sees this interface; concrete implementations are the host UDP
// transport in this package and whatever radio binding a firmware build
// supplies.
package transport

import (
	"time"

	"github.com/itohio/godoze/pkg/wire"
)

// Transport sends and receives addressed datagrams.
type Transport interface {
	// OwnAddress returns this endpoint's transport address.
	OwnAddress() wire.MacAddress

	// AddPeer registers a unicast destination before sending to it.
	AddPeer(addr wire.MacAddress) error

	// Send transmits payload to dest and blocks until the transport
	// confirms completion. dest may be the broadcast address.
	Send(dest wire.MacAddress, payload []byte) error

	// Receive blocks for at most timeout and returns one inbound datagram
	// addressed to this endpoint (or broadcast). It returns
	// wire.ErrTimeout when the window expires empty.
	Receive(timeout time.Duration) (*wire.Datagram, error)

	// Close releases the underlying medium.
	Close() error
}
