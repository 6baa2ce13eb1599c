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

	"github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/domain"
	"github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/ports"
)

const tracerName = "github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/adapters/observability/service"

// Service decorates a cart application port with tracing, logging, and metrics.
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

// GetCart loads or lazily creates the owner's cart.
func (s *Service) GetCart(ctx context.Context, owner string) (*domain.Cart, error) {
	ctx, span := s.startSpan(ctx, "Service.GetCart", ownerAttrs(owner)...)
	defer span.End()

	result, err := s.inner.GetCart(ctx, owner)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load cart", slog.String("cart.owner", owner))
	}
	if result != nil {
		span.SetAttributes(attribute.Int("cart.items", result.TotalItems))
	}
	return result, nil
}

// AddItem puts a product line into the cart, merging quantity on repeats.
func (s *Service) AddItem(ctx context.Context, owner, productID string, quantity int, unitPrice float64) (*domain.Cart, error) {
	attrs := append(ownerAttrs(owner),
		attribute.String("cart.product_id", productID),
		attribute.Int("cart.quantity", quantity),
	)
	ctx, span := s.startSpan(ctx, "Service.AddItem", attrs...)
	defer span.End()

	s.logInfo(ctx, "adding cart item", slog.String("cart.owner", owner), slog.String("product.id", productID), slog.Int("quantity", quantity))
	result, err := s.inner.AddItem(ctx, owner, productID, quantity, unitPrice)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to add cart item", slog.String("cart.owner", owner), slog.String("product.id", productID))
	}
	s.metrics.recordItemAdded(ctx, domain.IsGuestOwner(owner))
	if result != nil {
		s.logInfo(ctx, "cart item added", slog.String("cart.owner", owner), slog.String("product.id", productID), slog.Int("cart.total_items", result.TotalItems))
	}
	return result, nil
}

// UpdateQuantity replaces a line quantity; zero or less removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, owner, productID string, quantity int) (*domain.Cart, error) {
	attrs := append(ownerAttrs(owner),
		attribute.String("cart.product_id", productID),
		attribute.Int("cart.quantity", quantity),
	)
	ctx, span := s.startSpan(ctx, "Service.UpdateQuantity", attrs...)
	defer span.End()

	result, err := s.inner.UpdateQuantity(ctx, owner, productID, quantity)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update cart quantity", slog.String("cart.owner", owner), slog.String("product.id", productID))
	}
	return result, nil
}

// RemoveItem drops a line from the cart.
func (s *Service) RemoveItem(ctx context.Context, owner, productID string) (*domain.Cart, error) {
	attrs := append(ownerAttrs(owner), attribute.String("cart.product_id", productID))
	ctx, span := s.startSpan(ctx, "Service.RemoveItem", attrs...)
	defer span.End()

	result, err := s.inner.RemoveItem(ctx, owner, productID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to remove cart item", slog.String("cart.owner", owner), slog.String("product.id", productID))
	}
	return result, nil
}

// ClearCart empties the cart while keeping it addressable.
func (s *Service) ClearCart(ctx context.Context, owner string) (*domain.Cart, error) {
	ctx, span := s.startSpan(ctx, "Service.ClearCart", ownerAttrs(owner)...)
	defer span.End()

	s.logInfo(ctx, "clearing cart", slog.String("cart.owner", owner))
	result, err := s.inner.ClearCart(ctx, owner)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to clear cart", slog.String("cart.owner", owner))
	}
	return result, nil
}

// MergeGuestCart folds a guest cart into the buyer's cart after sign-in.
func (s *Service) MergeGuestCart(ctx context.Context, buyerID, guestToken string) (*domain.Cart, error) {
	ctx, span := s.startSpan(ctx, "Service.MergeGuestCart", attribute.String("cart.buyer_id", buyerID))
	defer span.End()

	s.logInfo(ctx, "merging guest cart", slog.String("cart.buyer_id", buyerID))
	result, err := s.inner.MergeGuestCart(ctx, buyerID, guestToken)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to merge guest cart", slog.String("cart.buyer_id", buyerID))
	}
	s.metrics.recordMerged(ctx)
	if result != nil {
		s.logInfo(ctx, "guest cart merged", slog.String("cart.buyer_id", buyerID), slog.Int("cart.total_items", result.TotalItems))
	}
	return result, nil
}

// ValidateCart cross-checks every line against the live catalog.
func (s *Service) ValidateCart(ctx context.Context, owner string) ([]ports.Issue, error) {
	ctx, span := s.startSpan(ctx, "Service.ValidateCart", ownerAttrs(owner)...)
	defer span.End()

	issues, err := s.inner.ValidateCart(ctx, owner)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to validate cart", slog.String("cart.owner", owner))
	}
	span.SetAttributes(attribute.Int("cart.issues", len(issues)))
	if len(issues) > 0 {
		s.logInfo(ctx, "cart validation found issues", slog.String("cart.owner", owner), slog.Int("count", len(issues)))
	}
	return issues, nil
}

func ownerAttrs(owner string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("cart.owner", owner),
		attribute.Bool("cart.guest", domain.IsGuestOwner(owner)),
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
	itemsAdded  metric.Int64Counter
	cartsMerged metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	itemsAdded, _ := m.Int64Counter("cart.service.items_added", metric.WithDescription("Number of cart line additions"))
	cartsMerged, _ := m.Int64Counter("cart.service.merged", metric.WithDescription("Number of guest cart merges"))
	return serviceMetrics{
		itemsAdded:  itemsAdded,
		cartsMerged: cartsMerged,
	}
}

func (m serviceMetrics) recordItemAdded(ctx context.Context, guest bool) {
	addCounter(ctx, m.itemsAdded, 1, attribute.Bool("cart.guest", guest))
}

func (m serviceMetrics) recordMerged(ctx context.Context) {
	addCounter(ctx, m.cartsMerged, 1)
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
