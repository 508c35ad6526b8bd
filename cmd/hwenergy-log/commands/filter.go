package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/hwenergy/hwenergy-go/pkg/log"
)

// FilterOptions carries the filter command's flag values. Times are
// RFC 3339 strings and the enums their flag spellings; toFilter parses
// them.
type FilterOptions struct {
	Output    string
	ClientID  string
	Serial    string
	TimeStart string
	TimeEnd   string
	Source    string
	Direction string
	Category  string
}

func (o FilterOptions) toFilter() (log.Filter, error) {
	filter := log.Filter{
		ClientID: o.ClientID,
		Serial:   o.Serial,
	}
	if o.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, o.TimeStart)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-start: %w", err)
		}
		filter.TimeStart = &t
	}
	if o.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, o.TimeEnd)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-end: %w", err)
		}
		filter.TimeEnd = &t
	}
	if o.Source != "" {
		s, err := ParseSource(o.Source)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Source = &s
	}
	if o.Direction != "" {
		d, err := ParseDirection(o.Direction)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Direction = &d
	}
	if o.Category != "" {
		c, err := ParseCategory(o.Category)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Category = &c
	}
	return filter, nil
}

// RunFilter copies the events matching opts from path into a new log
// file at opts.Output.
func RunFilter(path string, opts FilterOptions) error {
	filter, err := opts.toFilter()
	if err != nil {
		return err
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	out, err := log.NewFileLogger(opts.Output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", opts.Output, err)
	}
	defer out.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		out.Log(event)
		count++
	}

	fmt.Printf("Wrote %d events to %s\n", count, opts.Output)
	return nil
}
