package log

import (
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Filter selects a subset of a log file. The zero value matches every
// event; each field that is set must match for an event to pass.
type Filter struct {
	// ClientID keeps events logged by one client instance.
	ClientID string

	// Serial keeps events concerning one appliance.
	Serial string

	// Source, Direction and Category keep events equal to the
	// pointed-to value when non-nil.
	Source    *Source
	Direction *Direction
	Category  *Category

	// TimeStart and TimeEnd bound the accepted timestamps, inclusive
	// at the start and exclusive at the end.
	TimeStart *time.Time
	TimeEnd   *time.Time
}

func (f *Filter) matches(event Event) bool {
	if f.ClientID != "" && event.ClientID != f.ClientID {
		return false
	}
	if f.Serial != "" && event.Serial != f.Serial {
		return false
	}
	if f.Source != nil && event.Source != *f.Source {
		return false
	}
	if f.Direction != nil && event.Direction != *f.Direction {
		return false
	}
	if f.Category != nil && event.Category != *f.Category {
		return false
	}
	if f.TimeStart != nil && event.Timestamp.Before(*f.TimeStart) {
		return false
	}
	if f.TimeEnd != nil && !event.Timestamp.Before(*f.TimeEnd) {
		return false
	}
	return true
}

// Reader streams events back out of a file written by FileLogger,
// optionally applying a Filter. Events arrive in file order, so large
// files never need to be held in memory.
type Reader struct {
	src    *os.File
	dec    *cbor.Decoder
	filter Filter
}

// NewReader reads every event in the file at path.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader reads the events in path accepted by filter.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{src: f, dec: newDecoder(f), filter: filter}, nil
}

// Next returns the next matching event, or io.EOF once the file is
// exhausted.
func (r *Reader) Next() (Event, error) {
	for {
		var event Event
		if err := r.dec.Decode(&event); err != nil {
			return Event{}, err
		}
		if r.filter.matches(event) {
			return event, nil
		}
	}
}

// Close releases the file handle.
func (r *Reader) Close() error {
	return r.src.Close()
}
