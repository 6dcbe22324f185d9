package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/sortbench/internal/batch"
	"github.com/torosent/sortbench/internal/supplier"
)

// StartTrialSpan starts the root span of one produce-and-sort trial.
func StartTrialSpan(ctx context.Context, tracer trace.Tracer, supplierKind, algorithm string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "sort trial", trace.WithSpanKind(trace.SpanKindInternal))
	span.SetAttributes(
		attribute.String("sortbench.supplier", supplierKind),
		attribute.String("sortbench.algorithm", algorithm),
	)
	return ctx, span
}

// EndSpan finishes a span, recording error status if applicable.
func EndSpan(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type tracedSupplier struct {
	inner  supplier.Supplier
	tracer trace.Tracer
	calls  int
}

// WrapSupplier records one child span per Next call under the span carried
// by ctx.
func WrapSupplier(s supplier.Supplier, tracer trace.Tracer) supplier.Supplier {
	if tracer == nil {
		return s
	}
	return &tracedSupplier{inner: s, tracer: tracer}
}

func (t *tracedSupplier) Next(ctx context.Context, b *batch.Batch) (bool, error) {
	t.calls++
	ctx, span := t.tracer.Start(ctx, "supplier next")
	eos, err := t.inner.Next(ctx, b)
	rows := 0
	if b != nil {
		rows = b.Len()
	}
	EndSpan(span, err,
		attribute.Int("sortbench.call", t.calls),
		attribute.Int("sortbench.rows", rows),
		attribute.Bool("sortbench.eos", eos),
	)
	return eos, err
}

func (t *tracedSupplier) Close() error { return t.inner.Close() }
