package fileops

import (
	"context"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/shaharia-lab/fileops"

// StartSpan starts a new span with the given name and options using the
// tracer provider attached to ctx, which is a no-op unless the host installs one.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return trace.SpanFromContext(ctx).TracerProvider().
		Tracer(tracerName).
		Start(ctx, name, opts...)
}

// recordSpanError marks span as failed when err is non-nil.
func recordSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
