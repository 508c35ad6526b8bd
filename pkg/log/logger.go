package log

// Logger consumes the diagnostic event stream. The client stack calls Log
// inline with the operation that produced the event, so implementations
// must be safe for concurrent use and return quickly.
type Logger interface {
	Log(event Event)
}

// NoopLogger drops every event. It is the default sink wherever a Logger
// is optional; the zero value is ready to use.
type NoopLogger struct{}

// Log implements Logger.
func (NoopLogger) Log(Event) {}
