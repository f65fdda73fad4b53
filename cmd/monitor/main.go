// monitor attaches to a flashed node's serial console and prints each wake
// cycle as a structured record.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/itohio/godoze/pkg/config"
	"github.com/itohio/godoze/pkg/monitor"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		listFlag   = flag.Bool("list", false, "List available serial ports and exit")
	)
	flag.Parse()

	if *listFlag {
		ports, err := monitor.Ports()
		if err != nil {
			log.Fatalf("Failed to list serial ports: %v", err)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *portFlag != "" {
		cfg.Monitor.Port = *portFlag
	}

	m := monitor.New(cfg.Monitor.Port, cfg.Monitor.BaudRate, 0)
	if err := m.Connect(); err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	log.Printf("Monitoring %s at %d baud", cfg.Monitor.Port, cfg.Monitor.BaudRate)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		m.Close()
	}()

	for rec := range m.Records() {
		fmt.Printf("%-8s pin=%d emit=%-5t path=%s\n", rec.Cause, rec.Pin, rec.Emit, rec.Path)
	}
}
