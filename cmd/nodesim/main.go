// nodesim runs the sensor node core on the host against a scripted wake-pin
// waveform and a UDP stand-in for the radio. Each loop iteration models one
// program execution of the real firmware: wake, classify, maybe talk to the
// coordinator, plan the next sleep.
package main

import (
	"errors"
	"flag"

	"go.uber.org/zap"

	"github.com/itohio/godoze/pkg/config"
	"github.com/itohio/godoze/pkg/node"
	"github.com/itohio/godoze/pkg/retained"
	"github.com/itohio/godoze/pkg/simulate"
	"github.com/itohio/godoze/pkg/transport"
	"github.com/itohio/godoze/pkg/wire"
)

func main() {
	var (
		configFlag   = flag.String("config", "config.yaml", "Configuration file path")
		cyclesFlag   = flag.Int("cycles", 0, "Stop after this many wake cycles (0 = run until idle)")
		realtimeFlag = flag.Bool("realtime", false, "Sleep out the simulated intervals on the wall clock")
	)
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	addr, err := wire.ParseMac(cfg.Node.Address)
	if err != nil {
		logger.Fatal("bad node address", zap.Error(err))
	}

	steps := make([]simulate.Step, 0, len(cfg.Waveform))
	for _, w := range cfg.Waveform {
		level := retained.Low
		if w.Level != 0 {
			level = retained.High
		}
		steps = append(steps, simulate.Step{At: w.At, Level: level})
	}

	sim := simulate.New(steps)
	sim.RealTime(*realtimeFlag)

	// Process memory stands in for the RTC retention RAM: it survives the
	// simulated sleep cycles and is garbage until the power-on reset.
	store := retained.NewMemStore(retained.State{})

	// The radio is brought up fresh on every radio-path cycle, exactly
	// like the real transport.
	radio := func() (transport.Transport, error) {
		return transport.NewUDP(transport.UDPConfig{
			Address: addr,
			Listen:  cfg.Node.Listen,
			Channel: cfg.Node.Channel,
			Seeds:   cfg.Node.Seeds,
		})
	}

	n := node.New(store, sim, sim, radio)

	logger.Info("starting node simulation",
		zap.String("address", addr.String()),
		zap.Int("waveform_steps", len(steps)),
	)

	cycles := 0
	for {
		if err := n.RunCycle(); err != nil {
			if errors.Is(err, simulate.ErrIdle) {
				logger.Info("waveform exhausted, device would sleep forever")
				break
			}
			logger.Fatal("cycle failed", zap.Error(err))
		}
		cycles++
		if *cyclesFlag > 0 && cycles >= *cyclesFlag {
			break
		}
	}

	st := store.Load()
	logger.Info("simulation finished",
		zap.Int("cycles", cycles),
		zap.Duration("elapsed", sim.Elapsed()),
		zap.String("coordinator", st.Coordinator.String()),
	)
}
