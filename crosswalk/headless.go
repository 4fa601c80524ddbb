package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/itohio/gocrossing/pkg/config"
	"github.com/itohio/gocrossing/pkg/monitor"
	"github.com/itohio/gocrossing/pkg/telemetry"
)

// runHeadless prints every received diagnostic line to stdout until the
// device goes away or the process is interrupted.
func runHeadless(cfg *config.Config, useMock bool) error {
	dev := openDevice(cfg, useMock)
	if err := dev.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	go func() {
		<-sig
		dev.Close()
	}()

	m := monitor.New(cfg)
	out := bufio.NewWriter(os.Stdout)
	var line []byte
	for r := range dev.Records() {
		m.Add(r)
		line = telemetry.AppendRecord(line[:0], r)
		line = append(line, '\n')
		out.Write(line)
		if len(dev.Records()) == 0 {
			out.Flush()
		}
	}
	out.Flush()
	dev.Close()

	stats := m.Stats()
	log.Printf("Requests: %d, granted: %d, deferred: %d, interrupted: %d, glitches: %d, no echo: %d",
		stats.Requests, stats.Granted, stats.Deferred, stats.Interrupted, stats.Glitches, stats.NoEcho)
	return nil
}
