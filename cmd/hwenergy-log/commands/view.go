// Package commands implements the hwenergy-log subcommands.
package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/hwenergy/hwenergy-go/pkg/log"
)

// ViewFilter narrows which events the view command renders. Nil fields
// match every event.
type ViewFilter struct {
	Source    *log.Source
	Direction *log.Direction
	Category  *log.Category
}

func (f ViewFilter) matches(event log.Event) bool {
	if f.Source != nil && event.Source != *f.Source {
		return false
	}
	if f.Direction != nil && event.Direction != *f.Direction {
		return false
	}
	if f.Category != nil && event.Category != *f.Category {
		return false
	}
	return true
}

// filterEvents returns the events accepted by filter, in order.
func filterEvents(events []log.Event, filter ViewFilter) []log.Event {
	var kept []log.Event
	for _, e := range events {
		if filter.matches(e) {
			kept = append(kept, e)
		}
	}
	return kept
}

// RunView renders the events in path as text blocks on output.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if filter.matches(event) {
			formatEvent(output, event)
		}
	}
}

// formatEvent writes one event as a header line followed by indented
// detail lines, closed off by a blank separator line.
func formatEvent(w io.Writer, event log.Event) {
	fmt.Fprintf(w, "%s [client:%s] %-5s %s %s\n",
		event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
		shortID(event.ClientID),
		event.Direction.String(),
		event.Source.String(),
		eventLabel(event))

	switch {
	case event.Exchange != nil:
		printExchange(w, event.Exchange)
	case event.Announce != nil:
		printAnnounce(w, event.Announce)
	case event.StateChange != nil:
		printStateChange(w, event.StateChange)
	case event.Error != nil:
		printError(w, event.Error)
	}

	if event.Serial != "" {
		fmt.Fprintf(w, "  Serial: %s\n", event.Serial)
	}
	fmt.Fprintln(w)
}

// eventLabel names the payload an event carries. Exchanges split into
// request and response by whether a status has been recorded yet.
func eventLabel(event log.Event) string {
	switch {
	case event.Exchange != nil:
		if event.Exchange.Status != 0 {
			return "Response"
		}
		return "Request"
	case event.Announce != nil:
		if event.Announce.Withdrawn {
			return "Withdraw"
		}
		return "Announce"
	case event.StateChange != nil:
		return "State"
	case event.Error != nil:
		return "Error"
	}
	return "Unknown"
}

// shortID truncates instance IDs to their first 8 characters for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func printExchange(w io.Writer, ex *log.ExchangeEvent) {
	fmt.Fprintf(w, "  Seq: %d\n", ex.Seq)
	fmt.Fprintf(w, "  %s %s\n", ex.Method, ex.URL)
	if ex.Status != 0 {
		fmt.Fprintf(w, "  Status: %d\n", ex.Status)
	}
	if ex.BodySize > 0 {
		fmt.Fprintf(w, "  Size: %d bytes\n", ex.BodySize)
	}
	if ex.Duration != nil {
		fmt.Fprintf(w, "  Duration: %s\n", formatDuration(*ex.Duration))
	}
}

func printAnnounce(w io.Writer, a *log.AnnounceEvent) {
	fmt.Fprintf(w, "  Instance: %s\n", a.Instance)
	if a.ProductType != "" {
		fmt.Fprintf(w, "  Type: %s\n", a.ProductType)
	}
}

func printStateChange(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity.String())
	if sc.OldState == "" {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	} else {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func printError(w io.Writer, e *log.ErrorEventData) {
	fmt.Fprintf(w, "  Source: %s\n", e.Source.String())
	fmt.Fprintf(w, "  Message: %s\n", e.Message)
	if e.Kind != "" {
		fmt.Fprintf(w, "  Kind: %s\n", e.Kind)
	}
	if e.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", e.Context)
	}
}

// formatDuration picks a unit that keeps three meaningful decimals.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	case d < time.Second:
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	default:
		return fmt.Sprintf("%.3fs", d.Seconds())
	}
}
