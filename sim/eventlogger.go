package sim

import (
	"reflect"

	"go.uber.org/zap"
)

type named interface {
	Name() string
}

// EventLogger is a hook that logs every event before it is handled.
type EventLogger struct {
	logger *zap.Logger
}

// NewEventLogger returns an EventLogger that writes at debug level.
func NewEventLogger(logger *zap.Logger) *EventLogger {
	return &EventLogger{logger: logger}
}

// Func writes the event information into the logger
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	fields := []zap.Field{
		zap.Float64("time", float64(evt.Time())),
		zap.Stringer("type", reflect.TypeOf(evt)),
	}

	if n, ok := evt.Handler().(named); ok {
		fields = append(fields, zap.String("handler", n.Name()))
	}

	h.logger.Debug("event", fields...)
}
