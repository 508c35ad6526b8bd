package log

// MultiLogger fans the event stream out to several sinks, typically an
// SlogAdapter for the console next to a FileLogger for the record.
type MultiLogger []Logger

// NewMultiLogger builds a fan-out over the given sinks.
func NewMultiLogger(sinks ...Logger) MultiLogger {
	return MultiLogger(sinks)
}

// Log forwards the event to every sink in registration order.
func (m MultiLogger) Log(event Event) {
	for _, sink := range m {
		sink.Log(event)
	}
}
