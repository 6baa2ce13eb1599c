package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order persistence adapter.
type Repository struct {
	mu       sync.RWMutex
	orders   map[string]*domain.Order
	byNumber map[string]string
}

func NewRepository() *Repository {
	return &Repository{orders: map[string]*domain.Order{}, byNumber: map[string]string{}}
}

func (r *Repository) Save(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	clone := cloneOrder(order)
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	if clone.ID == "" {
		clone.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = now
	}
	clone.UpdatedAt = now
	r.mu.Lock()
	defer r.mu.Unlock()
	if existingID, ok := r.byNumber[clone.OrderNumber]; ok && existingID != clone.ID {
		return nil, errors.New("order number already exists")
	}
	r.orders[clone.ID] = clone
	r.byNumber[clone.OrderNumber] = clone.ID
	return cloneOrder(clone), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cloneOrder(order), nil
}

func (r *Repository) GetByNumber(_ context.Context, number string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byNumber[number]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cloneOrder(r.orders[id]), nil
}

func (r *Repository) ListByBuyer(_ context.Context, buyerID string, page ports.Page) ([]*domain.Order, int64, error) {
	return r.list(func(o *domain.Order) bool { return o.BuyerID == buyerID }, page)
}

func (r *Repository) ListBySupplier(_ context.Context, supplierID string, page ports.Page) ([]*domain.Order, int64, error) {
	return r.list(func(o *domain.Order) bool { return o.HasSupplier(supplierID) }, page)
}

func (r *Repository) list(match func(*domain.Order) bool, page ports.Page) ([]*domain.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if match(order) {
			matched = append(matched, order)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	start := page.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if page.Limit > 0 && start+page.Limit < end {
		end = start + page.Limit
	}
	result := make([]*domain.Order, 0, end-start)
	for _, order := range matched[start:end] {
		result = append(result, cloneOrder(order))
	}
	return result, total, nil
}

func cloneOrder(order *domain.Order) *domain.Order {
	clone := *order
	clone.Items = append([]domain.Item(nil), order.Items...)
	clone.Timeline = append([]domain.TimelineEntry(nil), order.Timeline...)
	clone.CancelledAt = cloneTime(order.CancelledAt)
	clone.RefundedAt = cloneTime(order.RefundedAt)
	clone.ActualDeliveryDate = cloneTime(order.ActualDeliveryDate)
	return &clone
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}
