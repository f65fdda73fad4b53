package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/itohio/godoze/pkg/retained"
	"github.com/itohio/godoze/pkg/transport"
	"github.com/itohio/godoze/pkg/wire"
)

var (
	coordMac = wire.MacAddress{0xA4, 0xCF, 0x12, 0x00, 0x0B, 0x02}
	nodeMac  = wire.MacAddress{0xA4, 0xCF, 0x12, 0x00, 0x0B, 0x01}
)

func newCoordinator() (*Coordinator, *transport.Mock) {
	m := transport.NewMock(coordMac)
	return New(m, zap.NewNop()), m
}

func TestHandle_ProbeGetsUnicastReply(t *testing.T) {
	c, m := newCoordinator()

	c.Handle(&wire.Datagram{Src: nodeMac, Dst: wire.Broadcast(), Payload: wire.EncodeProbe()})

	tx := m.TxLog()
	require.Len(t, tx, 1)
	assert.Equal(t, nodeMac, tx[0].Dst, "reply must be addressed to the prober")
	assert.Equal(t, []wire.MacAddress{nodeMac}, m.Peers())
}

func TestHandle_StatusRecorded(t *testing.T) {
	c, m := newCoordinator()

	c.Handle(&wire.Datagram{Src: nodeMac, Dst: coordMac, Payload: wire.EncodeStatus(1)})
	c.Handle(&wire.Datagram{Src: nodeMac, Dst: coordMac, Payload: wire.EncodeStatus(0)})

	nodes := c.Nodes()
	require.Contains(t, nodes, nodeMac)
	rec := nodes[nodeMac]
	assert.Equal(t, retained.Low, rec.LastLevel)
	assert.Equal(t, 2, rec.Reports)
	assert.False(t, rec.LastSeen.IsZero())

	// Status reports are not replied to.
	assert.Empty(t, m.TxLog())
}

func TestHandle_MalformedDropped(t *testing.T) {
	c, m := newCoordinator()

	c.Handle(&wire.Datagram{Src: nodeMac, Dst: coordMac, Payload: []byte{0xAB, 0x01}})
	c.Handle(&wire.Datagram{Src: nodeMac, Dst: coordMac, Payload: nil})

	assert.Empty(t, c.Nodes())
	assert.Empty(t, m.TxLog())
}

func TestRun_StopsOnCancel(t *testing.T) {
	c, m := newCoordinator()
	m.InjectRx(wire.Datagram{Src: nodeMac, Dst: wire.Broadcast(), Payload: wire.EncodeProbe()})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	// Give the loop a moment to drain the injected probe, then stop it.
	require.Eventually(t, func() bool {
		return len(m.TxLog()) == 1
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
