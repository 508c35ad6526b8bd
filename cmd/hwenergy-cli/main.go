// Command hwenergy-cli is an interactive console for HomeWizard Energy
// appliances on the local network.
//
// The console discovers appliances via mDNS, loads them over the local
// HTTP API and exposes their operations as shell commands. A loaded
// appliance stays registered until unloaded, so a polling session can
// watch several meters and sockets at once.
//
// Usage:
//
//	hwenergy-cli [flags]
//
// Flags:
//
//	-log string         Append diagnostic events to this .hwlog file
//	-interval duration  Poll interval for 'monitor start' (default 5s)
//
// Interactive Commands:
//
//	discover    - List appliances announced on the network
//	load <target> - Load an appliance by serial, address or host name
//	list        - List loaded appliances
//	use <serial> - Select the appliance later commands act on
//	data        - Fetch a telemetry snapshot
//	state [on|off] - Show or switch the relay
//	monitor start|stop - Poll loaded appliances continuously
//	quit        - Exit the console
//
// Examples:
//
//	# Browse the network and inspect an energy socket
//	hwenergy-cli
//
//	# Record every API exchange for later analysis with hwenergy-log
//	hwenergy-cli -log session.hwlog
//
//	# Poll faster than the default once monitoring starts
//	hwenergy-cli -interval 2s
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hwenergy/hwenergy-go/cmd/hwenergy-cli/interactive"
	"github.com/hwenergy/hwenergy-go/pkg/discovery"
	hwlog "github.com/hwenergy/hwenergy-go/pkg/log"
	"github.com/hwenergy/hwenergy-go/pkg/monitor"
	"github.com/hwenergy/hwenergy-go/pkg/rest"
)

var (
	logFile      string
	pollInterval time.Duration
)

func init() {
	flag.StringVar(&logFile, "log", "", "Append diagnostic events to this .hwlog file")
	flag.DurationVar(&pollInterval, "interval", monitor.DefaultInterval, "Poll interval for 'monitor start'")
}

func main() {
	flag.Parse()

	log.SetFlags(log.Ltime | log.Lmicroseconds)

	log.Println("HomeWizard Energy Console")
	log.Println("=========================")

	diag, closeDiag, err := newDiagnostics(logFile)
	if err != nil {
		log.Fatalf("Failed to open diagnostic log: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := rest.NewClient(rest.Config{Logger: diag})

	collector := discovery.NewCollector(discovery.CollectorConfig{Logger: diag})
	if err := collector.Start(ctx); err != nil {
		log.Printf("Warning: discovery unavailable: %v", err)
	}

	mon := monitor.New(monitor.Config{
		Interval: pollInterval,
		Client:   client,
		Logger:   diag,
	})

	ic, err := interactive.New(client, collector, mon)
	if err != nil {
		log.Fatalf("Failed to create console: %v", err)
	}

	// Redirect log output through readline to avoid interfering with input
	log.SetOutput(ic.Stdout())
	go ic.Run(ctx, cancel)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received signal: %v", sig)
	case <-ctx.Done():
		// Context was cancelled (e.g., by the quit command)
	}

	log.Println("Shutting down...")

	cancel()
	mon.Stop()
	collector.Stop()
	closeDiag()

	log.Println("Goodbye!")
}

// newDiagnostics opens the .hwlog sink when a path is given. The console
// itself stays quiet on stderr; recorded events are for hwenergy-log.
func newDiagnostics(path string) (hwlog.Logger, func(), error) {
	if path == "" {
		return hwlog.NoopLogger{}, func() {}, nil
	}

	fileLogger, err := hwlog.NewFileLogger(path)
	if err != nil {
		return nil, nil, err
	}

	closeFile := func() {
		if err := fileLogger.Close(); err != nil {
			log.Printf("Warning: failed to close diagnostic log: %v", err)
		}
	}
	return fileLogger, closeFile, nil
}
