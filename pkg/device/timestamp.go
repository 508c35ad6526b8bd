package device

import (
	"fmt"
	"strconv"
	"time"
)

// timestampLayout is the compact yyMMddHHmmss form, two digits per
// component.
const timestampLayout = "060102150405"

// Timestamp is a compact numeric timestamp in yyMMddHHmmss form, for
// example 251231143005 for 2025-12-31 14:30:05. Appliances report it in
// their own local time with no zone attached. The raw wire value is kept
// as is, so decoding and re-encoding is loss free.
type Timestamp int64

// In interprets the timestamp in the given zone and returns the
// resulting wall clock time. A nil location falls back to the process
// local zone. The zone is the caller's claim about where the appliance
// lives; the wire value itself carries none.
func (t Timestamp) In(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	parsed, err := time.ParseInLocation(timestampLayout, fmt.Sprintf("%012d", int64(t)), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %d: %w", int64(t), err)
	}
	return parsed, nil
}

// NewTimestamp encodes a wall clock time into the compact form. The zone
// is dropped, matching what appliances report.
func NewTimestamp(t time.Time) Timestamp {
	encoded, _ := strconv.ParseInt(t.Format(timestampLayout), 10, 64)
	return Timestamp(encoded)
}

// String renders the raw compact value.
func (t Timestamp) String() string {
	return strconv.FormatInt(int64(t), 10)
}
