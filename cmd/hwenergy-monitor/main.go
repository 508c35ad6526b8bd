// Command hwenergy-monitor polls HomeWizard Energy appliances and
// publishes their telemetry.
//
// Appliances come from two sources: fixed addresses listed in the
// configuration file and mDNS discovery on the local network. Every
// poll result is logged, and with MQTT enabled each device's telemetry
// is published to <prefix>/<serial>/data with poll failures on
// <prefix>/<serial>/error.
//
// Usage:
//
//	hwenergy-monitor -config monitor.yaml
//
// Without -config the daemon runs on defaults and HWENERGY_*
// environment variables: discovery on, a 5 second poll interval and
// MQTT off.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hwenergy/hwenergy-go/pkg/device"
	"github.com/hwenergy/hwenergy-go/pkg/discovery"
	hwlog "github.com/hwenergy/hwenergy-go/pkg/log"
	"github.com/hwenergy/hwenergy-go/pkg/monitor"
	"github.com/hwenergy/hwenergy-go/pkg/rest"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file")
	flag.Parse()

	config, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hwenergy-monitor: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(config.Logging)

	diag, closeDiag, err := newDiagnostics(config.Logging, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hwenergy-monitor: %v\n", err)
		os.Exit(1)
	}
	defer closeDiag()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pub *Publisher
	if config.MQTT.Enabled {
		pub, err = ConnectPublisher(config.MQTT)
		if err != nil {
			logger.Error("mqtt connect failed", "host", config.MQTT.Host, "port", config.MQTT.Port, "err", err)
			os.Exit(1)
		}
		defer pub.Close()
		logger.Info("mqtt connected", "host", config.MQTT.Host, "port", config.MQTT.Port, "prefix", config.MQTT.TopicPrefix)
	}

	client := rest.NewClient(rest.Config{Logger: diag})

	mon := monitor.New(monitor.Config{
		Interval: config.Poll.Interval,
		Client:   client,
		Logger:   diag,
	})
	mon.OnEvent(eventHandler(logger, pub))

	mon.Add(loadStatic(ctx, client, config.Devices.Addresses, logger)...)

	if config.Devices.Discovery {
		collector := discovery.NewCollector(discovery.CollectorConfig{
			Debounce: time.Duration(config.Devices.DebounceMS) * time.Millisecond,
			Logger:   diag,
		})
		watchDiscovery(ctx, collector, client, mon, logger)
		if err := collector.Start(ctx); err != nil {
			logger.Error("discovery start failed", "err", err)
			os.Exit(1)
		}
		defer collector.Stop()
	}

	mon.Start()
	defer mon.Stop()

	logger.Info("monitoring",
		"interval", mon.Interval(),
		"devices", len(mon.Devices()),
		"discovery", config.Devices.Discovery)

	<-ctx.Done()
	logger.Info("shutting down")
}

// newLogger builds the console logger from the logging section.
func newLogger(cfg LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// newDiagnostics builds the diagnostic sink handed to the client,
// collector and monitor. Events always reach the console logger; with
// logging.file set they are additionally recorded for hwenergy-log.
func newDiagnostics(cfg LoggingConfig, logger *slog.Logger) (hwlog.Logger, func(), error) {
	adapter := hwlog.NewSlogAdapter(logger)
	if cfg.File == "" {
		return adapter, func() {}, nil
	}

	file, err := hwlog.NewFileLogger(cfg.File)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open diagnostic log: %w", err)
	}
	closeFile := func() {
		if err := file.Close(); err != nil {
			logger.Warn("diagnostic log close failed", "err", err)
		}
	}
	return hwlog.NewMultiLogger(adapter, file), closeFile, nil
}

// loadStatic resolves the configured fixed addresses. A failing address
// is logged and skipped so one unplugged appliance does not hold up the
// daemon.
func loadStatic(ctx context.Context, client *rest.Client, addresses []string, logger *slog.Logger) []device.Device {
	var devices []device.Device
	for _, address := range addresses {
		loaded, err := device.LoadAddress(ctx, client, address)
		if err != nil {
			logger.Warn("device load failed", "address", address, "err", err)
			continue
		}
		info := loaded.Info()
		logger.Info("device loaded",
			"address", address,
			"serial", info.Serial,
			"product_type", info.ProductType)
		devices = append(devices, loaded)
	}
	return devices
}

// watchDiscovery registers a change handler that loads newly announced
// appliances into the monitor. Announcements for serials the monitor
// already polls are ignored; the monitor replaces by serial anyway, so
// a duplicate load is harmless.
func watchDiscovery(ctx context.Context, collector *discovery.Collector, client *rest.Client, mon *monitor.Monitor, logger *slog.Logger) {
	collector.OnChange(func() {
		known := make(map[string]bool)
		for _, d := range mon.Devices() {
			known[d.Info().Serial] = true
		}

		for _, found := range collector.EnabledDevices() {
			if known[found.Serial] {
				continue
			}
			loaded, err := device.LoadDiscovered(ctx, client, found)
			if err != nil {
				logger.Warn("discovered device load failed", "serial", found.Serial, "host", found.Host, "err", err)
				continue
			}
			info := loaded.Info()
			logger.Info("device discovered",
				"serial", info.Serial,
				"product_type", info.ProductType,
				"base_url", loaded.BaseURL())
			mon.Add(loaded)
		}
	})
}

// errorPayload is the JSON body published on the error topic.
type errorPayload struct {
	Serial string `json:"serial"`
	Time   string `json:"time"`
	Error  string `json:"error"`
}

// eventHandler turns monitor events into log lines and, with a
// publisher, MQTT messages. A nil publisher means log-only operation.
func eventHandler(logger *slog.Logger, pub *Publisher) func(monitor.Event) {
	return func(event monitor.Event) {
		if event.Err != nil {
			logger.Warn("poll failed", "serial", event.Serial, "err", event.Err)
			if pub == nil {
				return
			}
			payload, err := json.Marshal(errorPayload{
				Serial: event.Serial,
				Time:   event.Time.UTC().Format(time.RFC3339),
				Error:  event.Err.Error(),
			})
			if err != nil {
				logger.Warn("error payload marshal failed", "serial", event.Serial, "err", err)
				return
			}
			if err := pub.Publish(pub.ErrorTopic(event.Serial), payload); err != nil {
				logger.Warn("mqtt publish failed", "serial", event.Serial, "err", err)
			}
			return
		}

		logger.Debug("telemetry", "serial", event.Serial)
		if pub == nil {
			return
		}
		payload, err := json.Marshal(event.Telemetry)
		if err != nil {
			logger.Warn("telemetry marshal failed", "serial", event.Serial, "err", err)
			return
		}
		if err := pub.Publish(pub.DataTopic(event.Serial), payload); err != nil {
			logger.Warn("mqtt publish failed", "serial", event.Serial, "err", err)
		}
	}
}
