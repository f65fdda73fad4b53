// Package node drives one wake cycle of the sensor node: classify the wake,
// decide whether the radio is needed at all, discover or report, then hand
// the device back to the sleep controller. One program execution equals one
// cycle; there is no loop here on real hardware.
package node

import (
	"fmt"
	"log"

	"github.com/itohio/godoze/pkg/retained"
	"github.com/itohio/godoze/pkg/sleepctl"
	"github.com/itohio/godoze/pkg/transport"
	"github.com/itohio/godoze/pkg/wake"
	"github.com/itohio/godoze/pkg/wire"
)

// Board abstracts the node's pins.
type Board interface {
	// SampleWakePin reads the raw level of the monitored input.
	SampleWakePin() retained.Level

	// SetStatusLED drives the activity LED. It goes dark with the chip
	// when deep sleep cuts power.
	SetStatusLED(on bool)
}

// RadioFunc powers up and initialises the radio transport. It is only
// invoked on the radio path; the energy-critical fast path never touches it.
type RadioFunc func() (transport.Transport, error)

// Node wires the cycle collaborators together.
type Node struct {
	store retained.Store
	ctrl  sleepctl.Controller
	board Board
	radio RadioFunc
}

// New creates a cycle driver over the given collaborators.
func New(store retained.Store, ctrl sleepctl.Controller, board Board, radio RadioFunc) *Node {
	return &Node{
		store: store,
		ctrl:  ctrl,
		board: board,
		radio: radio,
	}
}

// RunCycle executes one complete wake cycle. Every path through it ends in
// exactly one DeepSleep call; the returned error is whatever the sleep
// controller reports (always nil on real hardware, which never returns).
func (n *Node) RunCycle() error {
	cause := n.ctrl.WakeCause()
	n.board.SetStatusLED(true)
	pin := n.board.SampleWakePin()

	st := n.store.Load()
	st, emit := wake.Classify(st, cause)
	// Persist before any fallible radio work.
	n.store.Commit(st)

	if st.CoordinatorKnown() && !emit {
		log.Print(cycleLine(cause, pin, emit, "fast"))
		return n.sleep(st)
	}
	log.Print(cycleLine(cause, pin, emit, "radio"))

	t, err := n.radio()
	if err != nil {
		// The radio path is aborted for this cycle; the pending update
		// re-derives on the next genuine wake.
		log.Printf("radio init failed: %v", err)
		return n.sleep(st)
	}
	defer t.Close()
	log.Printf("own address: %s", t.OwnAddress())

	if st.CoordinatorKnown() {
		if err := t.AddPeer(st.Coordinator); err != nil {
			log.Printf("failed to register coordinator %s: %v", st.Coordinator, err)
		}
	} else {
		st, emit = n.discover(t, st, emit)
	}

	if emit && st.CoordinatorKnown() {
		n.report(t, st.Coordinator, pin)
	}

	return n.sleep(st)
}

// sleep is the single exit path of every cycle.
func (n *Node) sleep(st retained.State) error {
	plan := sleepctl.PlanFor(st)
	log.Printf("sleeping: %s", plan)
	return n.ctrl.DeepSleep(plan)
}

// report sends one status datagram. Fire and forget: a failure is logged
// and implicitly retried only when a future cycle emits again.
func (n *Node) report(t transport.Transport, dest wire.MacAddress, pin retained.Level) {
	if err := t.Send(dest, wire.EncodeStatus(pin.Bit())); err != nil {
		log.Printf("status send to %s failed: %v", dest, err)
		return
	}
	log.Printf("status sent to %s: pin=%d", dest, pin.Bit())
}

// cycleLine formats the per-cycle diagnostic line. pkg/monitor parses this
// exact shape back out of the console stream.
func cycleLine(cause wake.Cause, pin retained.Level, emit bool, path string) string {
	return fmt.Sprintf("cycle cause=%s pin=%d emit=%t path=%s", cause, pin.Bit(), emit, path)
}
