// Command hwenergy-sim serves simulated HomeWizard Energy appliances.
//
// Each YAML fixture in the fixtures directory becomes one appliance: an
// HTTP server with the local API surface (root info, data, state,
// telegram, identify, system) and optionally an mDNS announcement, so
// discovery-based tooling finds the fakes exactly like real hardware.
//
// Usage:
//
//	hwenergy-sim [flags]
//
// Flags:
//
//	-fixtures string         Directory of fixture YAML files (default "./fixtures")
//	-host string             Address to bind the appliance servers on (default "127.0.0.1")
//	-advertise               Announce the appliances via mDNS
//	-interface string        Network interface to announce on (default all)
//	-jitter-interval duration How often jittered readings change (default 5s)
//
// Examples:
//
//	# Serve the bundled demo fixtures on ephemeral ports
//	hwenergy-sim -fixtures ./fixtures
//
//	# Make the fakes discoverable on the LAN
//	hwenergy-sim -fixtures ./fixtures -host 0.0.0.0 -advertise
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hwenergy/hwenergy-go/internal/fixture"
)

var (
	fixturesDir    string
	bindHost       string
	advertise      bool
	advertiseIface string
	jitterInterval time.Duration
)

func init() {
	flag.StringVar(&fixturesDir, "fixtures", "./fixtures", "directory of appliance fixture YAML files")
	flag.StringVar(&bindHost, "host", "127.0.0.1", "address to bind the appliance servers on")
	flag.BoolVar(&advertise, "advertise", false, "announce the appliances via mDNS")
	flag.StringVar(&advertiseIface, "interface", "", "network interface to announce on (default all)")
	flag.DurationVar(&jitterInterval, "jitter-interval", 5*time.Second, "how often jittered readings change")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	log.Println("HomeWizard Energy Simulator")
	log.Println("===========================")

	fixtures, err := fixture.LoadDirectory(fixturesDir)
	if err != nil {
		log.Fatalf("Failed to load fixtures: %v", err)
	}
	if len(fixtures) == 0 {
		log.Fatalf("No fixtures found in %s", fixturesDir)
	}
	log.Printf("Loaded %d fixture(s) from %s", len(fixtures), fixturesDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var appliances []*appliance
	for _, f := range fixtures {
		a := newAppliance(f)
		if err := a.start(bindHost); err != nil {
			log.Fatalf("Failed to start %s: %v", f.Serial, err)
		}
		log.Printf("[SIM] %s (%s) serving on http://%s", f.Serial, f.ProductType, a.addr())

		if advertise {
			if err := a.advertise(advertiseIface); err != nil {
				log.Printf("[SIM] %s announce failed: %v", f.Serial, err)
			} else {
				log.Printf("[SIM] %s announced as %q", f.Serial, f.Name)
			}
		}

		if f.JitterPct > 0 {
			go a.runJitter(ctx, jitterInterval)
		}

		appliances = append(appliances, a)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	log.Printf("Received signal: %v", sig)
	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	for _, a := range appliances {
		a.stop(shutdownCtx)
	}
	log.Println("Goodbye!")
}
