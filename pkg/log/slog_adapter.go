package log

import (
	"context"
	"log/slog"
)

// SlogAdapter mirrors the event stream onto an slog.Logger at debug
// level, one record per event. It is the usual console sink during
// development, often paired with a FileLogger via MultiLogger.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter wraps logger as an event sink.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log implements Logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("direction", event.Direction.String()),
		slog.String("source", event.Source.String()),
		slog.String("category", event.Category.String()),
	}
	if event.ClientID != "" {
		attrs = append(attrs, slog.String("client_id", event.ClientID))
	}
	if event.Serial != "" {
		attrs = append(attrs, slog.String("serial", event.Serial))
	}
	attrs = appendPayloadAttrs(attrs, event)

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "hwenergy", attrs...)
}

// appendPayloadAttrs flattens the payload an event carries into slog
// attributes, leaving out empty optional fields.
func appendPayloadAttrs(attrs []slog.Attr, event Event) []slog.Attr {
	switch {
	case event.Exchange != nil:
		ex := event.Exchange
		attrs = append(attrs,
			slog.Uint64("seq", ex.Seq),
			slog.String("method", ex.Method),
			slog.String("url", ex.URL),
		)
		if ex.Status != 0 {
			attrs = append(attrs, slog.Int("status", ex.Status))
		}
		if ex.BodySize != 0 {
			attrs = append(attrs, slog.Int("body_size", ex.BodySize))
		}
		if ex.Duration != nil {
			attrs = append(attrs, slog.Duration("duration", *ex.Duration))
		}

	case event.Announce != nil:
		attrs = append(attrs,
			slog.String("instance", event.Announce.Instance),
			slog.Bool("withdrawn", event.Announce.Withdrawn),
		)
		if event.Announce.ProductType != "" {
			attrs = append(attrs, slog.String("product_type", event.Announce.ProductType))
		}

	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}

	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_source", event.Error.Source.String()),
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.Kind != "" {
			attrs = append(attrs, slog.String("error_kind", event.Error.Kind))
		}
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}
	return attrs
}

var _ Logger = (*SlogAdapter)(nil)
