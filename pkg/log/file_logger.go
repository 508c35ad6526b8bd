package log

import (
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// FileLogger appends diagnostic events to a file as CBOR records, the
// .hwlog format read by Reader and the hwenergy-log tool. Safe for
// concurrent use.
type FileLogger struct {
	mu     sync.Mutex
	out    *os.File
	enc    *cbor.Encoder
	closed bool
}

// NewFileLogger opens path for appending, creating the file when absent.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &FileLogger{out: f, enc: newEncoder(f)}, nil
}

// Log implements Logger. An event that fails to encode is dropped;
// diagnostics never fail the operation they describe.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	_ = l.enc.Encode(event)
}

// Close closes the underlying file. Close is idempotent, and events
// logged after Close are dropped, so shutdown order between producers
// and the logger does not matter.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.out.Close()
}

var _ Logger = (*FileLogger)(nil)
