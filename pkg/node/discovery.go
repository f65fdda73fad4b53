package node

import (
	"errors"
	"log"
	"time"

	"github.com/itohio/godoze/pkg/retained"
	"github.com/itohio/godoze/pkg/transport"
	"github.com/itohio/godoze/pkg/wire"
)

// DiscoveryWindow is how long the node listens for a coordinator reply
// after broadcasting a probe.
const DiscoveryWindow = 1000 * time.Millisecond

// discover broadcasts one probe and waits the fixed window for a reply. A
// datagram addressed to this node adopts its sender as the coordinator and
// substitutes for this cycle's status report. Anything else, including
// silence, leaves the state untouched; the next radio-path cycle probes
// again. There is no error to report: failure and "no peer yet" look the
// same.
func (n *Node) discover(t transport.Transport, st retained.State, emit bool) (retained.State, bool) {
	if err := t.Send(wire.Broadcast(), wire.EncodeProbe()); err != nil {
		log.Printf("probe send failed: %v", err)
		return st, emit
	}

	d, err := t.Receive(DiscoveryWindow)
	if err != nil {
		if !errors.Is(err, wire.ErrTimeout) {
			log.Printf("discovery receive failed: %v", err)
		}
		return st, emit
	}
	if d.Dst != t.OwnAddress() {
		return st, emit
	}

	log.Printf("adopting coordinator %s", d.Src)
	st.Coordinator = d.Src
	n.store.Commit(st)
	// The handshake itself stands in for a report this cycle.
	return st, false
}
