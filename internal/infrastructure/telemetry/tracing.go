package telemetry

import (
	"context"

	"github.com/spicemill/stockledger/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope for spans started here
const TracerName = "stockledger"

// StartSpan starts an internal span on the global provider
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// RecordError marks the span failed. Not-found errors are recorded as
// events only, since they are ordinary client outcomes.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	if shared.CodeOf(err) == shared.CodeNotFound {
		return
	}
	span.SetStatus(codes.Error, err.Error())
}

// GetTraceID returns the trace ID of the span in ctx, or "" when there is none
func GetTraceID(ctx context.Context) string {
	traceID := trace.SpanFromContext(ctx).SpanContext().TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}

// TracedHandler starts a span around every event delivered to the wrapped handler
type TracedHandler struct {
	handler shared.EventHandler
}

// NewTracedHandler wraps handler
func NewTracedHandler(handler shared.EventHandler) *TracedHandler {
	return &TracedHandler{handler: handler}
}

// EventTypes returns the wrapped handler's event types
func (h *TracedHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle delegates inside an "event <type>" span. Profiling samples taken
// meanwhile carry the event type as their operation label.
func (h *TracedHandler) Handle(ctx context.Context, event shared.DomainEvent) (err error) {
	WithProfilingLabels(ctx, map[string]string{ProfilingLabelOperation: event.EventType()}, func(ctx context.Context) {
		err = h.handle(ctx, event)
	})
	return err
}

func (h *TracedHandler) handle(ctx context.Context, event shared.DomainEvent) error {
	ctx, span := StartSpan(ctx, "event "+event.EventType(),
		attribute.String("event.id", event.EventID().String()),
		attribute.String("event.aggregate_type", event.AggregateType()),
		attribute.String("event.aggregate_id", event.AggregateID().String()),
	)
	defer span.End()

	err := h.handler.Handle(ctx, event)
	if err != nil {
		span.SetAttributes(attribute.String("error.code", shared.CodeOf(err)))
		RecordError(span, err)
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// Ensure TracedHandler implements EventHandler
var _ shared.EventHandler = (*TracedHandler)(nil)
