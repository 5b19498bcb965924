package telemetry

import (
	"context"
	"time"

	"infrasense-be/models"
	"infrasense-be/store"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const storeScopeName = "infrasense-be/store"

// InstrumentedStore wraps store.IssueStore with a span and counters per call.
type InstrumentedStore struct {
	inner  store.IssueStore
	tracer trace.Tracer
	ops    metric.Int64Counter
	dur    metric.Float64Histogram
	errs   metric.Int64Counter
}

// WrapStore returns s decorated with OTel instrumentation, or s itself when
// telemetry is disabled.
func WrapStore(s store.IssueStore) store.IssueStore {
	if !Enabled() {
		return s
	}
	return newInstrumentedStore(s, Tracer(storeScopeName), Meter(storeScopeName))
}

func newInstrumentedStore(s store.IssueStore, tracer trace.Tracer, m metric.Meter) *InstrumentedStore {
	ops, _ := m.Int64Counter("issues.store.operations",
		metric.WithDescription("Total issue store operations executed"),
	)
	dur, _ := m.Float64Histogram("issues.store.operation.duration",
		metric.WithDescription("Issue store operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("issues.store.errors",
		metric.WithDescription("Total issue store operation errors"),
	)
	return &InstrumentedStore{inner: s, tracer: tracer, ops: ops, dur: dur, errs: errs}
}

func (s *InstrumentedStore) op(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	all := append([]attribute.KeyValue{attribute.String("db.operation", name)}, attrs...)
	ctx, span := s.tracer.Start(ctx, "store."+name,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	s.ops.Add(ctx, 1, metric.WithAttributes(all...))
	return ctx, span, time.Now()
}

func (s *InstrumentedStore) done(ctx context.Context, span trace.Span, start time.Time, name string, err error) {
	attrs := metric.WithAttributes(attribute.String("db.operation", name))
	s.dur.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.errs.Add(ctx, 1, attrs)
	}
	span.End()
}

func (s *InstrumentedStore) Create(ctx context.Context, issue models.Issue) (models.Issue, error) {
	ctx, span, t := s.op(ctx, "Create",
		attribute.String("issue.severity", string(issue.Severity)),
		attribute.String("issue.category", string(issue.Category)),
	)
	v, err := s.inner.Create(ctx, issue)
	if err == nil {
		span.SetAttributes(attribute.String("issue.id", v.ID))
	}
	s.done(ctx, span, t, "Create", err)
	return v, err
}

func (s *InstrumentedStore) GetByID(ctx context.Context, id string) (models.Issue, error) {
	ctx, span, t := s.op(ctx, "GetByID", attribute.String("issue.id", id))
	v, err := s.inner.GetByID(ctx, id)
	s.done(ctx, span, t, "GetByID", err)
	return v, err
}

func (s *InstrumentedStore) List(ctx context.Context, filter models.IssueFilter) ([]models.Issue, error) {
	ctx, span, t := s.op(ctx, "List",
		attribute.String("filter.status", string(filter.Status)),
		attribute.String("filter.severity", string(filter.Severity)),
		attribute.String("filter.category", string(filter.Category)),
		attribute.String("sort.by", filter.SortBy),
	)
	issues, err := s.inner.List(ctx, filter)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(issues)))
	}
	s.done(ctx, span, t, "List", err)
	return issues, err
}

func (s *InstrumentedStore) UpdateStatus(ctx context.Context, id string, change models.StatusChange) (models.Issue, error) {
	ctx, span, t := s.op(ctx, "UpdateStatus",
		attribute.String("issue.id", id),
		attribute.String("issue.status", string(change.Status)),
		attribute.String("issue.updated_by", change.UpdatedBy),
	)
	v, err := s.inner.UpdateStatus(ctx, id, change)
	s.done(ctx, span, t, "UpdateStatus", err)
	return v, err
}

func (s *InstrumentedStore) Persistent() bool {
	return s.inner.Persistent()
}
