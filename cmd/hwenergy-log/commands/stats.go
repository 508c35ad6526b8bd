package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/hwenergy/hwenergy-go/pkg/log"
)

// Stats aggregates what a log file contains.
type Stats struct {
	Total       int
	BySource    map[log.Source]int
	ByCategory  map[log.Category]int
	ByDirection map[log.Direction]int
	Clients     map[string]*ClientStats
	Appliances  map[string]int
	Errors      int
	First, Last time.Time
}

// ClientStats aggregates the events of one client instance.
type ClientStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	Exchanges int
	Failures  int
}

func newStats() *Stats {
	return &Stats{
		BySource:    make(map[log.Source]int),
		ByCategory:  make(map[log.Category]int),
		ByDirection: make(map[log.Direction]int),
		Clients:     make(map[string]*ClientStats),
		Appliances:  make(map[string]int),
	}
}

// observe folds one event into the aggregate.
func (s *Stats) observe(event log.Event) {
	s.Total++
	s.BySource[event.Source]++
	s.ByCategory[event.Category]++
	s.ByDirection[event.Direction]++

	if s.First.IsZero() || event.Timestamp.Before(s.First) {
		s.First = event.Timestamp
	}
	if event.Timestamp.After(s.Last) {
		s.Last = event.Timestamp
	}

	if event.ClientID != "" {
		c := s.Clients[event.ClientID]
		if c == nil {
			c = &ClientStats{FirstSeen: event.Timestamp, LastSeen: event.Timestamp}
			s.Clients[event.ClientID] = c
		}
		c.Events++
		if event.Timestamp.After(c.LastSeen) {
			c.LastSeen = event.Timestamp
		}
		if event.Exchange != nil {
			c.Exchanges++
		}
		if event.Error != nil {
			c.Failures++
		}
	}

	if event.Serial != "" {
		s.Appliances[event.Serial]++
	}
	if event.Error != nil {
		s.Errors++
	}
}

// RunStats aggregates the log file at path and prints a summary to w.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := newStats()
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.observe(event)
	}

	stats.report(w)
	return nil
}

func (s *Stats) report(w io.Writer) {
	fmt.Fprintln(w, "=== HomeWizard Energy Log Statistics ===")
	fmt.Fprintln(w)

	if s.Total > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n", s.First.Format(time.RFC3339), s.Last.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", s.Last.Sub(s.First).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", s.Total)
	fmt.Fprintln(w)

	writeCounts(w, "Events by Source",
		[]log.Source{log.SourceREST, log.SourceDiscovery, log.SourceMonitor, log.SourceDevice}, s.BySource)
	writeCounts(w, "Events by Category",
		[]log.Category{log.CategoryExchange, log.CategoryAnnounce, log.CategoryState, log.CategoryError}, s.ByCategory)
	writeCounts(w, "Events by Direction",
		[]log.Direction{log.DirectionIn, log.DirectionOut, log.DirectionLocal}, s.ByDirection)

	s.reportClients(w)
	s.reportAppliances(w)

	if s.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", s.Errors)
	}
}

// writeCounts prints one breakdown block, skipping zero rows.
func writeCounts[K interface {
	comparable
	fmt.Stringer
}](w io.Writer, title string, order []K, counts map[K]int) {
	fmt.Fprintf(w, "%s:\n", title)
	for _, k := range order {
		if n := counts[k]; n > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", k.String()+":", n)
		}
	}
	fmt.Fprintln(w)
}

func (s *Stats) reportClients(w io.Writer) {
	fmt.Fprintf(w, "Clients: %d\n", len(s.Clients))
	if len(s.Clients) == 0 {
		return
	}

	ids := make([]string, 0, len(s.Clients))
	for id := range s.Clients {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return s.Clients[ids[i]].FirstSeen.Before(s.Clients[ids[j]].FirstSeen)
	})

	fmt.Fprintln(w)
	for _, id := range ids {
		c := s.Clients[id]
		span := c.LastSeen.Sub(c.FirstSeen).Round(time.Millisecond)
		fmt.Fprintf(w, "  [%s] %d events, duration %s\n", shortID(id), c.Events, span)
		if c.Exchanges > 0 {
			fmt.Fprintf(w, "           Exchanges: %d\n", c.Exchanges)
		}
		if c.Failures > 0 {
			fmt.Fprintf(w, "           Failures: %d\n", c.Failures)
		}
	}
}

func (s *Stats) reportAppliances(w io.Writer) {
	if len(s.Appliances) == 0 {
		return
	}

	serials := make([]string, 0, len(s.Appliances))
	for serial := range s.Appliances {
		serials = append(serials, serial)
	}
	sort.Strings(serials)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Appliances: %d\n", len(serials))
	for _, serial := range serials {
		fmt.Fprintf(w, "  %s: %d events\n", serial, s.Appliances[serial])
	}
}
