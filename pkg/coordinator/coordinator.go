// Package coordinator implements the host-side peer that sensor nodes
// discover and report to. It answers every probe with a unicast reply (a
// datagram addressed to the prober is all the handshake requires) and keeps
// a record of the latest status per node.
package coordinator

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/itohio/godoze/internal/telemetry"
	"github.com/itohio/godoze/pkg/retained"
	"github.com/itohio/godoze/pkg/transport"
	"github.com/itohio/godoze/pkg/wire"
)

// pollInterval bounds each receive so Run notices context cancellation.
const pollInterval = 500 * time.Millisecond

// NodeRecord is the coordinator's view of one sensor node.
type NodeRecord struct {
	LastLevel retained.Level
	LastSeen  time.Time
	Reports   int
}

// Coordinator serves probes and collects status reports.
type Coordinator struct {
	t   transport.Transport
	log *zap.Logger

	mu    sync.Mutex
	nodes map[wire.MacAddress]NodeRecord
}

// New creates a coordinator over an initialised transport.
func New(t transport.Transport, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		t:     t,
		log:   logger,
		nodes: make(map[wire.MacAddress]NodeRecord),
	}
}

// Run receives and handles datagrams until the context is cancelled.
func (c *Coordinator) Run(ctx context.Context) error {
	c.log.Info("coordinator listening", zap.String("address", c.t.OwnAddress().String()))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		d, err := c.t.Receive(pollInterval)
		if err != nil {
			if errors.Is(err, wire.ErrTimeout) {
				continue
			}
			return err
		}
		c.Handle(d)
	}
}

// Handle processes one inbound datagram. Malformed or foreign traffic is
// counted and dropped.
func (c *Coordinator) Handle(d *wire.Datagram) {
	msg, err := wire.DecodeMessage(d.Payload)
	if err != nil {
		telemetry.DroppedDatagramsTotal.Inc()
		c.log.Debug("dropping datagram",
			zap.String("src", d.Src.String()),
			zap.Error(err),
		)
		return
	}

	switch msg.Tag {
	case wire.TagProbe:
		c.handleProbe(d)
	case wire.TagStatus:
		c.handleStatus(d, msg.Payload[0])
	}
}

func (c *Coordinator) handleProbe(d *wire.Datagram) {
	telemetry.ProbesTotal.Inc()
	c.log.Info("probe received", zap.String("node", d.Src.String()))

	if err := c.t.AddPeer(d.Src); err != nil {
		c.log.Warn("failed to register node", zap.String("node", d.Src.String()), zap.Error(err))
		return
	}
	// Any datagram addressed to the prober completes its handshake; echo
	// the probe body back.
	if err := c.t.Send(d.Src, wire.EncodeProbe()); err != nil {
		c.log.Warn("probe reply failed", zap.String("node", d.Src.String()), zap.Error(err))
	}
}

func (c *Coordinator) handleStatus(d *wire.Datagram, level byte) {
	lvl := retained.Low
	if level != 0 {
		lvl = retained.High
	}

	c.mu.Lock()
	rec := c.nodes[d.Src]
	rec.LastLevel = lvl
	rec.LastSeen = time.Now()
	rec.Reports++
	c.nodes[d.Src] = rec
	c.mu.Unlock()

	telemetry.StatusReportsTotal.WithLabelValues(d.Src.String()).Inc()
	telemetry.ReportedLevel.WithLabelValues(d.Src.String()).Set(float64(level))

	c.log.Info("status report",
		zap.String("node", d.Src.String()),
		zap.Uint8("level", level),
		zap.Int("reports", rec.Reports),
	)
}

// Nodes returns a snapshot of every node seen so far.
func (c *Coordinator) Nodes() map[wire.MacAddress]NodeRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[wire.MacAddress]NodeRecord, len(c.nodes))
	for k, v := range c.nodes {
		out[k] = v
	}
	return out
}
