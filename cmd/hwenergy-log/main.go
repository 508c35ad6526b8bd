// Command hwenergy-log inspects diagnostic log files.
//
// Log files are written by hwenergy-cli -log, by hwenergy-monitor when
// logging.file is set, or by any program that wires a log.FileLogger
// into the client stack. Four subcommands cover the usual workflow:
//
//	hwenergy-log view -source rest session.hwlog
//	hwenergy-log filter -serial 5c2faf0011aa -o socket.hwlog session.hwlog
//	hwenergy-log export -format csv -o session.csv session.hwlog
//	hwenergy-log stats session.hwlog
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/hwenergy/hwenergy-go/cmd/hwenergy-log/commands"
)

type subcommand struct {
	name     string
	synopsis string
	run      func(args []string) error
}

var subcommands = []subcommand{
	{"view", "View log file in human-readable format", viewCmd},
	{"export", "Export log file to JSON or CSV format", exportCmd},
	{"filter", "Filter log file and write to new file", filterCmd},
	{"stats", "Show statistics about the log file", statsCmd},
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(1)
	}
	name, args := os.Args[1], os.Args[2:]

	switch name {
	case "-h", "-help", "--help", "help":
		usage(os.Stdout)
		return
	}

	for _, sc := range subcommands {
		if sc.name != name {
			continue
		}
		if err := sc.run(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
	usage(os.Stderr)
	os.Exit(1)
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "hwenergy-log - HomeWizard Energy log analyzer")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  hwenergy-log <command> [flags] <file.hwlog>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, sc := range subcommands {
		fmt.Fprintf(w, "  %-8s %s\n", sc.name, sc.synopsis)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, `Use "hwenergy-log <command> -help" for details on a command.`)
}

func newFlagSet(name, synopsis string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "hwenergy-log %s - %s\n\nUsage:\n  hwenergy-log %s [flags] <file.hwlog>\n\nFlags:\n",
			name, synopsis, name)
		fs.PrintDefaults()
	}
	return fs
}

// logPath parses args and returns the trailing log file argument.
func logPath(fs *flag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return "", errors.New("log file path required")
	}
	return fs.Arg(0), nil
}

func viewCmd(args []string) error {
	fs := newFlagSet("view", "View log file in human-readable format")
	source := fs.String("source", "", "Only events from this source (rest, discovery, monitor, device)")
	direction := fs.String("direction", "", "Only events with this direction (in, out, local)")
	category := fs.String("category", "", "Only events in this category (exchange, announce, state, error)")

	path, err := logPath(fs, args)
	if err != nil {
		return err
	}

	var filter commands.ViewFilter
	if *source != "" {
		s, err := commands.ParseSource(*source)
		if err != nil {
			return err
		}
		filter.Source = &s
	}
	if *direction != "" {
		d, err := commands.ParseDirection(*direction)
		if err != nil {
			return err
		}
		filter.Direction = &d
	}
	if *category != "" {
		c, err := commands.ParseCategory(*category)
		if err != nil {
			return err
		}
		filter.Category = &c
	}

	return commands.RunView(path, filter, os.Stdout)
}

func exportCmd(args []string) error {
	fs := newFlagSet("export", "Export log file to JSON or CSV format")
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")

	path, err := logPath(fs, args)
	if err != nil {
		return err
	}
	return commands.RunExport(path, *format, *output)
}

func filterCmd(args []string) error {
	fs := newFlagSet("filter", "Filter log file and write to new file")
	output := fs.String("o", "", "Output file (required)")
	clientID := fs.String("client-id", "", "Only events from this client instance")
	serial := fs.String("serial", "", "Only events for this appliance serial")
	timeStart := fs.String("time-start", "", "Only events at or after this RFC 3339 time")
	timeEnd := fs.String("time-end", "", "Only events before this RFC 3339 time")
	source := fs.String("source", "", "Only events from this source (rest, discovery, monitor, device)")
	direction := fs.String("direction", "", "Only events with this direction (in, out, local)")
	category := fs.String("category", "", "Only events in this category (exchange, announce, state, error)")

	path, err := logPath(fs, args)
	if err != nil {
		return err
	}
	if *output == "" {
		fs.Usage()
		return errors.New("output file (-o) required")
	}

	return commands.RunFilter(path, commands.FilterOptions{
		Output:    *output,
		ClientID:  *clientID,
		Serial:    *serial,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
		Source:    *source,
		Direction: *direction,
		Category:  *category,
	})
}

func statsCmd(args []string) error {
	fs := newFlagSet("stats", "Show statistics about the log file")
	path, err := logPath(fs, args)
	if err != nil {
		return err
	}
	return commands.RunStats(path, os.Stdout)
}
