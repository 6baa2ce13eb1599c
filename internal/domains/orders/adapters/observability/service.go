package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	types "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-marketplace-server/internal/shared/identity"
)

const tracerName = "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/adapters/observability/service"

// Service decorates an orders application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// List returns the actor's orders, newest first.
func (s *Service) List(ctx context.Context, actor identity.Actor, input types.ListOrdersInput) (*types.PagedOrders, error) {
	ctx, span := s.startSpan(ctx, "Service.List", actorAttrs(actor)...)
	defer span.End()

	result, err := s.inner.List(ctx, actor, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders", actorLogAttrs(actor)...)
	}
	if result != nil {
		span.SetAttributes(attribute.Int("order.result.count", len(result.Orders)))
	}
	return result, nil
}

// Get loads a single order projection for the actor.
func (s *Service) Get(ctx context.Context, actor identity.Actor, orderID string) (*types.OrderProjection, error) {
	attrs := append(actorAttrs(actor), attribute.String("order.id", orderID))
	ctx, span := s.startSpan(ctx, "Service.Get", attrs...)
	defer span.End()

	result, err := s.inner.Get(ctx, actor, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", append(actorLogAttrs(actor), slog.String("order.id", orderID))...)
	}
	return result, nil
}

// UpdateStatus advances the order along the fulfilment path.
func (s *Service) UpdateStatus(ctx context.Context, actor identity.Actor, input types.UpdateStatusInput) (*types.OrderProjection, error) {
	attrs := append(actorAttrs(actor),
		attribute.String("order.id", input.OrderID),
		attribute.String("order.status.next", string(input.Next)),
	)
	ctx, span := s.startSpan(ctx, "Service.UpdateStatus", attrs...)
	defer span.End()

	s.logInfo(ctx, "updating order status", append(actorLogAttrs(actor), slog.String("order.id", input.OrderID), slog.String("status.next", string(input.Next)))...)
	result, err := s.inner.UpdateStatus(ctx, actor, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order status", append(actorLogAttrs(actor), slog.String("order.id", input.OrderID))...)
	}
	if result != nil && result.Order != nil {
		s.metrics.recordTransition(ctx, result.Order.Status)
		s.logInfo(ctx, "order status updated", slog.String("order.id", result.Order.ID), slog.String("order.status", string(result.Order.Status)))
	}
	return result, nil
}

// Cancel stops an order while it is still in the cancellation window.
func (s *Service) Cancel(ctx context.Context, actor identity.Actor, input types.CancelInput) (*types.OrderProjection, error) {
	attrs := append(actorAttrs(actor), attribute.String("order.id", input.OrderID))
	ctx, span := s.startSpan(ctx, "Service.Cancel", attrs...)
	defer span.End()

	s.logInfo(ctx, "cancelling order", append(actorLogAttrs(actor), slog.String("order.id", input.OrderID))...)
	result, err := s.inner.Cancel(ctx, actor, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to cancel order", append(actorLogAttrs(actor), slog.String("order.id", input.OrderID))...)
	}
	if result != nil && result.Order != nil {
		s.metrics.recordTransition(ctx, result.Order.Status)
		s.logInfo(ctx, "order cancelled", slog.String("order.id", result.Order.ID))
	}
	return result, nil
}

// Refund returns money on a settled order.
func (s *Service) Refund(ctx context.Context, actor identity.Actor, input types.RefundInput) (*types.OrderProjection, error) {
	attrs := append(actorAttrs(actor),
		attribute.String("order.id", input.OrderID),
		attribute.Float64("order.refund.amount", input.Amount),
	)
	ctx, span := s.startSpan(ctx, "Service.Refund", attrs...)
	defer span.End()

	s.logInfo(ctx, "refunding order", append(actorLogAttrs(actor), slog.String("order.id", input.OrderID), slog.Float64("amount", input.Amount))...)
	result, err := s.inner.Refund(ctx, actor, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to refund order", append(actorLogAttrs(actor), slog.String("order.id", input.OrderID))...)
	}
	if result != nil && result.Order != nil {
		s.metrics.recordRefunded(ctx)
		s.logInfo(ctx, "order refunded", slog.String("order.id", result.Order.ID), slog.String("payment.status", string(result.Order.PaymentStatus)))
	}
	return result, nil
}

func actorAttrs(actor identity.Actor) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("actor.id", actor.ID),
		attribute.String("actor.role", string(actor.Role)),
	}
}

func actorLogAttrs(actor identity.Actor) []slog.Attr {
	return []slog.Attr{
		slog.String("actor.id", actor.ID),
		slog.String("actor.role", string(actor.Role)),
	}
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	transitions metric.Int64Counter
	refunds     metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	transitions, _ := m.Int64Counter("orders.service.transitions", metric.WithDescription("Number of order status transitions"))
	refunds, _ := m.Int64Counter("orders.service.refunds", metric.WithDescription("Number of order refunds"))
	return serviceMetrics{
		transitions: transitions,
		refunds:     refunds,
	}
}

func (m serviceMetrics) recordTransition(ctx context.Context, status domain.OrderStatus) {
	addCounter(ctx, m.transitions, 1, attribute.String("order.status", string(status)))
}

func (m serviceMetrics) recordRefunded(ctx context.Context) {
	addCounter(ctx, m.refunds, 1)
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
