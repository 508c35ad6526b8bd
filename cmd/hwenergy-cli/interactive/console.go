// Package interactive provides the interactive command-line interface
// for the HomeWizard Energy console.
package interactive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/hwenergy/hwenergy-go/pkg/device"
	"github.com/hwenergy/hwenergy-go/pkg/discovery"
	"github.com/hwenergy/hwenergy-go/pkg/monitor"
	"github.com/hwenergy/hwenergy-go/pkg/rest"
)

// requestTimeout bounds every appliance exchange issued from the prompt.
const requestTimeout = 5 * time.Second

// Console handles interactive mode for hwenergy-cli.
type Console struct {
	client    *rest.Client
	collector *discovery.Collector
	mon       *monitor.Monitor
	rl        *readline.Instance

	// Loaded appliances, keyed by serial. A load replaces the entry for
	// its serial; unload removes it.
	devices map[string]device.Device

	// current is the serial appliance commands act on.
	current string

	monRunning bool
}

// New creates a new interactive console handler.
func New(client *rest.Client, collector *discovery.Collector, mon *monitor.Monitor) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "hwenergy> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	c := &Console{
		client:    client,
		collector: collector,
		mon:       mon,
		rl:        rl,
		devices:   make(map[string]device.Device),
	}

	// Register event handler for displaying poll outcomes
	mon.OnEvent(c.handleMonitorEvent)

	return c, nil
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline input.
func (c *Console) Stderr() io.Writer {
	return c.rl.Stderr()
}

// Run starts the interactive command loop.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "discover", "d":
			c.cmdDiscover()

		case "load", "l":
			c.cmdLoad(ctx, args)

		case "list", "ls", "devices":
			c.cmdList()

		case "use", "u":
			c.cmdUse(args)

		case "unload", "rm":
			c.cmdUnload(args)

		case "info":
			c.cmdInfo()

		case "data":
			c.cmdData(ctx)

		case "state":
			c.cmdState(ctx, args)

		case "brightness":
			c.cmdBrightness(ctx, args)

		case "lock":
			c.cmdLock(ctx, args)

		case "telegram":
			c.cmdTelegram(ctx)

		case "identify", "blink":
			c.cmdIdentify(ctx)

		case "system":
			c.cmdSystem(ctx)

		case "cloud":
			c.cmdCloud(ctx, args)

		case "monitor", "mon":
			c.cmdMonitor(args)

		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `
HomeWizard Energy Commands:
  Discovery & Loading:
    discover           - List appliances announced on the network
    load <target>      - Load an appliance by serial, address or host name
    list               - List loaded appliances
    use <serial>       - Select the appliance later commands act on
    unload <serial>    - Forget a loaded appliance

  Appliance:
    info               - Show identity of the selected appliance
    data               - Fetch a telemetry snapshot
    state [on|off]     - Show or switch the relay (energy sockets)
    brightness <0-255> - Set the status LED brightness
    lock [on|off]      - Show or set the switch lock
    telegram           - Dump the raw DSMR telegram (P1 meters)
    identify           - Blink the status light
    system             - Show system configuration
    cloud <on|off>     - Switch cloud communication

  Monitoring:
    monitor start      - Poll loaded appliances continuously
    monitor stop       - Stop polling

  General:
    help               - Show this help
    quit               - Exit the console

  Targets:
    load 192.168.1.10        - by IP address
    load energysocket.local  - by host name
    load 5c2faf0011aa        - by serial of a discovered appliance`)
}

// cmdDiscover handles the discover command.
func (c *Console) cmdDiscover() {
	devices := c.collector.Devices()
	if len(devices) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No appliances discovered yet")
		return
	}

	fmt.Fprintf(c.rl.Stdout(), "\nDiscovered Appliances (%d):\n", len(devices))
	fmt.Fprintln(c.rl.Stdout(), "-------------------------------------------")
	for _, d := range devices {
		api := "enabled"
		if !d.APIEnabled {
			api = "disabled"
		}
		fmt.Fprintf(c.rl.Stdout(), "  Serial: %s\n", d.Serial)
		fmt.Fprintf(c.rl.Stdout(), "      Product: %s (%s)\n", d.ProductName, d.ProductType)
		fmt.Fprintf(c.rl.Stdout(), "      Host: %s:%d\n", d.Host, d.Port)
		fmt.Fprintf(c.rl.Stdout(), "      API: %s\n", api)
		fmt.Fprintln(c.rl.Stdout())
	}
}

// cmdLoad handles the load command.
func (c *Console) cmdLoad(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: load <serial|address>")
		fmt.Fprintln(c.rl.Stdout(), "  Examples:")
		fmt.Fprintln(c.rl.Stdout(), "    load 192.168.1.10")
		fmt.Fprintln(c.rl.Stdout(), "    load energysocket.local")
		fmt.Fprintln(c.rl.Stdout(), "    load 5c2faf0011aa")
		return
	}

	target := args[0]
	loadCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var (
		dev device.Device
		err error
	)
	if discovered := c.discoveredFor(target); discovered != nil {
		fmt.Fprintf(c.rl.Stdout(), "Loading discovered appliance %s...\n", discovered.Serial)
		dev, err = device.LoadDiscovered(loadCtx, c.client, discovered)
	} else {
		fmt.Fprintf(c.rl.Stdout(), "Loading %s...\n", target)
		dev, err = device.LoadAddress(loadCtx, c.client, target)
	}
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Load failed: %v\n", err)
		return
	}

	info := dev.Info()
	c.devices[info.Serial] = dev
	c.current = info.Serial
	c.mon.Add(dev)

	fmt.Fprintf(c.rl.Stdout(), "Loaded %s (%s) serial %s\n", info.ProductName, info.ProductType, info.Serial)
}

// discoveredFor matches a load target against discovered serials.
func (c *Console) discoveredFor(target string) *discovery.DiscoveredDevice {
	devices := c.collector.Devices()
	serials := make([]string, 0, len(devices))
	for _, d := range devices {
		serials = append(serials, d.Serial)
	}

	serial := resolveSerial(serials, target)
	if serial == "" {
		return nil
	}
	d, ok := c.collector.Device(serial)
	if !ok {
		return nil
	}
	return d
}

// cmdList handles the list command.
func (c *Console) cmdList() {
	serials := c.loadedSerials()
	if len(serials) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No appliances loaded")
		return
	}

	fmt.Fprintf(c.rl.Stdout(), "\nLoaded Appliances (%d):\n", len(serials))
	fmt.Fprintln(c.rl.Stdout(), "-------------------------------------------")
	for _, serial := range serials {
		dev := c.devices[serial]
		info := dev.Info()
		marker := " "
		if serial == c.current {
			marker = "*"
		}
		fmt.Fprintf(c.rl.Stdout(), "%s Serial: %s\n", marker, serial)
		fmt.Fprintf(c.rl.Stdout(), "      Product: %s (%s)\n", info.ProductName, info.ProductType)
		fmt.Fprintf(c.rl.Stdout(), "      Firmware: %s\n", info.FirmwareVersion)
		fmt.Fprintf(c.rl.Stdout(), "      URL: %s\n", dev.BaseURL())
		fmt.Fprintln(c.rl.Stdout())
	}
}

// cmdUse handles the use command.
func (c *Console) cmdUse(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: use <serial>")
		fmt.Fprintln(c.rl.Stdout(), "  Use 'list' to see loaded appliances")
		return
	}

	serial := resolveSerial(c.loadedSerials(), args[0])
	if serial == "" {
		fmt.Fprintf(c.rl.Stdout(), "Appliance not loaded: %s\n", args[0])
		return
	}

	c.current = serial
	fmt.Fprintf(c.rl.Stdout(), "Using %s\n", serial)
}

// cmdUnload handles the unload command.
func (c *Console) cmdUnload(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: unload <serial>")
		fmt.Fprintln(c.rl.Stdout(), "  Use 'list' to see loaded appliances")
		return
	}

	serial := resolveSerial(c.loadedSerials(), args[0])
	if serial == "" {
		fmt.Fprintf(c.rl.Stdout(), "Appliance not loaded: %s\n", args[0])
		return
	}

	delete(c.devices, serial)
	c.mon.RemoveSerial(serial)
	if c.current == serial {
		c.current = ""
	}

	fmt.Fprintf(c.rl.Stdout(), "Unloaded %s\n", serial)
}

// cmdInfo handles the info command.
func (c *Console) cmdInfo() {
	dev, ok := c.selected()
	if !ok {
		return
	}

	info := dev.Info()
	fmt.Fprintf(c.rl.Stdout(), "\nAppliance %s\n", info.Serial)
	fmt.Fprintln(c.rl.Stdout(), "-------------------------------------------")
	fmt.Fprintf(c.rl.Stdout(), "  Product:  %s (%s)\n", info.ProductName, info.ProductType)
	fmt.Fprintf(c.rl.Stdout(), "  Serial:   %s\n", info.Serial)
	fmt.Fprintf(c.rl.Stdout(), "  Firmware: %s\n", info.FirmwareVersion)
	fmt.Fprintf(c.rl.Stdout(), "  API:      %s\n", info.APIVersion)
	fmt.Fprintf(c.rl.Stdout(), "  URL:      %s\n", dev.BaseURL())
	fmt.Fprintln(c.rl.Stdout())
}

// cmdData handles the data command.
func (c *Console) cmdData(ctx context.Context) {
	dev, ok := c.selected()
	if !ok {
		return
	}

	dataCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var (
		snapshot any
		err      error
	)
	switch d := dev.(type) {
	case *device.P1Meter:
		snapshot, err = d.Data(dataCtx)
	case *device.EnergySocket:
		snapshot, err = d.Data(dataCtx)
	case *device.Watermeter:
		snapshot, err = d.Data(dataCtx)
	case *device.KWhMeter:
		snapshot, err = d.Data(dataCtx)
	case *device.UnknownDevice:
		snapshot, err = d.Data(dataCtx)
	default:
		fmt.Fprintf(c.rl.Stdout(), "No data endpoint for %s\n", dev.Info().ProductType)
		return
	}
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Data failed: %v\n", err)
		return
	}

	out, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Format failed: %v\n", err)
		return
	}
	fmt.Fprintln(c.rl.Stdout(), string(out))
}

// cmdState handles the state command.
func (c *Console) cmdState(ctx context.Context, args []string) {
	dev, ok := c.selected()
	if !ok {
		return
	}
	sc, ok := dev.(device.StateController)
	if !ok {
		fmt.Fprintf(c.rl.Stdout(), "%s has no controllable state\n", dev.Info().ProductType)
		return
	}

	stateCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	if len(args) == 0 {
		state, err := sc.State(stateCtx)
		if err != nil {
			fmt.Fprintf(c.rl.Stdout(), "State failed: %v\n", err)
			return
		}
		fmt.Fprintf(c.rl.Stdout(), "State: %s\n", describeState(state))
		return
	}

	on, err := parseOnOff(args[0])
	if err != nil {
		fmt.Fprintln(c.rl.Stdout(), "Usage: state [on|off]")
		return
	}

	applied, err := sc.SetState(stateCtx, device.State{PowerOn: &on})
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Switch failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Applied: %s\n", describeState(applied))
}

// cmdBrightness handles the brightness command.
func (c *Console) cmdBrightness(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: brightness <0-255>")
		return
	}

	dev, ok := c.selected()
	if !ok {
		return
	}
	sc, ok := dev.(device.StateController)
	if !ok {
		fmt.Fprintf(c.rl.Stdout(), "%s has no status LED\n", dev.Info().ProductType)
		return
	}

	value, err := strconv.ParseUint(args[0], 10, 8)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid brightness: %v\n", err)
		return
	}
	brightness := uint8(value)

	stateCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	applied, err := sc.SetState(stateCtx, device.State{Brightness: &brightness})
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Brightness failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Applied: %s\n", describeState(applied))
}

// cmdLock handles the lock command.
func (c *Console) cmdLock(ctx context.Context, args []string) {
	dev, ok := c.selected()
	if !ok {
		return
	}
	sc, ok := dev.(device.StateController)
	if !ok {
		fmt.Fprintf(c.rl.Stdout(), "%s has no switch lock\n", dev.Info().ProductType)
		return
	}

	stateCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	if len(args) == 0 {
		state, err := sc.State(stateCtx)
		if err != nil {
			fmt.Fprintf(c.rl.Stdout(), "State failed: %v\n", err)
			return
		}
		lock := "off"
		if state.SwitchLock != nil && *state.SwitchLock {
			lock = "on"
		}
		fmt.Fprintf(c.rl.Stdout(), "Switch lock: %s\n", lock)
		return
	}

	locked, err := parseOnOff(args[0])
	if err != nil {
		fmt.Fprintln(c.rl.Stdout(), "Usage: lock [on|off]")
		return
	}

	applied, err := sc.SetState(stateCtx, device.State{SwitchLock: &locked})
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Lock failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Applied: %s\n", describeState(applied))
}

// cmdTelegram handles the telegram command.
func (c *Console) cmdTelegram(ctx context.Context) {
	dev, ok := c.selected()
	if !ok {
		return
	}
	tp, ok := dev.(device.TelegramProvider)
	if !ok {
		fmt.Fprintf(c.rl.Stdout(), "%s has no telegram endpoint\n", dev.Info().ProductType)
		return
	}

	telegramCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	telegram, err := tp.Telegram(telegramCtx)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Telegram failed: %v\n", err)
		return
	}
	fmt.Fprintln(c.rl.Stdout(), telegram)
}

// cmdIdentify handles the identify command.
func (c *Console) cmdIdentify(ctx context.Context) {
	dev, ok := c.selected()
	if !ok {
		return
	}
	id, ok := dev.(device.Identifiable)
	if !ok {
		fmt.Fprintf(c.rl.Stdout(), "%s cannot identify itself\n", dev.Info().ProductType)
		return
	}

	identifyCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	if err := id.Identify(identifyCtx); err != nil {
		if errors.Is(err, device.ErrIdentifyUnsupported) {
			fmt.Fprintln(c.rl.Stdout(), "This firmware cannot identify itself")
			return
		}
		fmt.Fprintf(c.rl.Stdout(), "Identify failed: %v\n", err)
		return
	}
	fmt.Fprintln(c.rl.Stdout(), "Status light blinking")
}

// cmdSystem handles the system command.
func (c *Console) cmdSystem(ctx context.Context) {
	dev, ok := c.selected()
	if !ok {
		return
	}
	sc, ok := dev.(device.SystemConfigurer)
	if !ok {
		fmt.Fprintf(c.rl.Stdout(), "%s has no system endpoint\n", dev.Info().ProductType)
		return
	}

	systemCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	config, err := sc.SystemConfig(systemCtx)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "System failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Cloud communication: %s\n", describeCloud(config))
}

// cmdCloud handles the cloud command.
func (c *Console) cmdCloud(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: cloud <on|off>")
		return
	}

	dev, ok := c.selected()
	if !ok {
		return
	}
	sc, ok := dev.(device.SystemConfigurer)
	if !ok {
		fmt.Fprintf(c.rl.Stdout(), "%s has no system endpoint\n", dev.Info().ProductType)
		return
	}

	enabled, err := parseOnOff(args[0])
	if err != nil {
		fmt.Fprintln(c.rl.Stdout(), "Usage: cloud <on|off>")
		return
	}

	cloudCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	applied, err := sc.SetCloudEnabled(cloudCtx, enabled)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Cloud switch failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Cloud communication: %s\n", describeCloud(applied))
}

// cmdMonitor handles the monitor command.
func (c *Console) cmdMonitor(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: monitor start|stop")
		return
	}

	switch strings.ToLower(args[0]) {
	case "start":
		if c.monRunning {
			fmt.Fprintln(c.rl.Stdout(), "Monitor already running")
			return
		}
		if len(c.devices) == 0 {
			fmt.Fprintln(c.rl.Stdout(), "No appliances loaded, 'load' some first")
			return
		}
		c.mon.Start()
		c.monRunning = true
		fmt.Fprintf(c.rl.Stdout(), "Monitor started (interval %s)\n", c.mon.Interval())

	case "stop":
		if !c.monRunning {
			fmt.Fprintln(c.rl.Stdout(), "Monitor not running")
			return
		}
		c.mon.Stop()
		c.monRunning = false
		fmt.Fprintln(c.rl.Stdout(), "Monitor stopped")

	default:
		fmt.Fprintln(c.rl.Stdout(), "Usage: monitor start|stop")
	}
}

// selected returns the appliance commands act on.
func (c *Console) selected() (device.Device, bool) {
	if c.current == "" {
		fmt.Fprintln(c.rl.Stdout(), "No appliance selected (use 'load' or 'use')")
		return nil, false
	}
	dev, ok := c.devices[c.current]
	if !ok {
		fmt.Fprintf(c.rl.Stdout(), "Selected appliance %s is gone\n", c.current)
		return nil, false
	}
	return dev, true
}

// loadedSerials returns the serials of loaded appliances, sorted.
func (c *Console) loadedSerials() []string {
	serials := make([]string, 0, len(c.devices))
	for serial := range c.devices {
		serials = append(serials, serial)
	}
	sort.Strings(serials)
	return serials
}

// handleMonitorEvent displays poll outcomes while the monitor runs.
func (c *Console) handleMonitorEvent(event monitor.Event) {
	if event.Err != nil {
		fmt.Fprintf(c.rl.Stdout(), "\n[%s] %s: poll failed: %v\n",
			event.Time.Format("15:04:05"), event.Serial, event.Err)
		c.rl.Refresh()
		return
	}

	fmt.Fprintf(c.rl.Stdout(), "\n[%s] %s: %s\n",
		event.Time.Format("15:04:05"), event.Serial, summarize(event.Telemetry))
	c.rl.Refresh()
}

// resolveSerial resolves a possibly partial serial against known serials.
// An exact match wins; otherwise the first containing match in order.
func resolveSerial(serials []string, partial string) string {
	for _, serial := range serials {
		if serial == partial {
			return serial
		}
	}
	for _, serial := range serials {
		if strings.Contains(serial, partial) {
			return serial
		}
	}
	return ""
}

// parseOnOff parses a switch argument. "on" and "off" are canonical;
// strconv.ParseBool spellings are accepted as well.
func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	value, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("not a switch value: %q", s)
	}
	return value, nil
}

// describeState renders the set fields of a state.
func describeState(state *device.State) string {
	parts := make([]string, 0, 3)
	if state.PowerOn != nil {
		parts = append(parts, "power="+onOff(*state.PowerOn))
	}
	if state.SwitchLock != nil {
		parts = append(parts, "lock="+onOff(*state.SwitchLock))
	}
	if state.Brightness != nil {
		parts = append(parts, fmt.Sprintf("brightness=%d", *state.Brightness))
	}
	if len(parts) == 0 {
		return "(empty)"
	}
	return strings.Join(parts, " ")
}

// describeCloud renders the cloud switch of a system configuration.
func describeCloud(config *device.SystemConfig) string {
	if config == nil || config.CloudEnabled == nil {
		return "unknown"
	}
	if *config.CloudEnabled {
		return "enabled"
	}
	return "disabled"
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// summarize renders the headline reading of a telemetry snapshot.
func summarize(t device.Telemetry) string {
	switch data := t.(type) {
	case *device.P1Data:
		if data.ActivePowerW != nil {
			return fmt.Sprintf("power %.1f W", *data.ActivePowerW)
		}
	case *device.SocketData:
		if data.ActivePowerW != nil {
			return fmt.Sprintf("power %.1f W", *data.ActivePowerW)
		}
	case *device.WaterData:
		if data.ActiveLiterLPM != nil {
			return fmt.Sprintf("flow %.2f l/min", *data.ActiveLiterLPM)
		}
	case *device.KWhData:
		if data.ActivePowerW != nil {
			return fmt.Sprintf("power %.1f W", *data.ActivePowerW)
		}
	}
	return "snapshot received"
}
