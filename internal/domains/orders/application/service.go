package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	types "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-marketplace-server/internal/shared/identity"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Service orchestrates order lifecycle use cases: listing and reading with
// party authorization, supplier-driven status transitions, buyer
// cancellation, and refunds.
type Service struct {
	repo ports.Repository
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

// List returns the actor's page of orders: the buyer's own orders, or the
// orders carrying at least one of the supplier's items, projected per role.
func (s *Service) List(ctx context.Context, actor identity.Actor, input types.ListOrdersInput) (*types.PagedOrders, error) {
	page, perPage := normalizePage(input.Page, input.PerPage)
	offset := (page - 1) * perPage
	repoPage := ports.Page{Offset: offset, Limit: perPage}

	var (
		orders []*domain.Order
		total  int64
		err    error
	)
	switch {
	case actor.IsBuyer():
		orders, total, err = s.repo.ListByBuyer(ctx, actor.ID, repoPage)
	case actor.IsSupplier():
		orders, total, err = s.repo.ListBySupplier(ctx, actor.ID, repoPage)
	default:
		return nil, ErrNotParty
	}
	if err != nil {
		return nil, err
	}
	projections := make([]*types.OrderProjection, 0, len(orders))
	for _, order := range orders {
		projections = append(projections, s.project(order, actor))
	}
	return &types.PagedOrders{Orders: projections, Total: total, Page: page, PerPage: perPage}, nil
}

// Get returns one order, projected for the actor. Actors that are not a
// party to the order get a uniform denial regardless of whether it exists.
func (s *Service) Get(ctx context.Context, actor identity.Actor, orderID string) (*types.OrderProjection, error) {
	order, err := s.authorize(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	return s.project(order, actor), nil
}

// UpdateStatus drives one forward transition. Any supplier owning at least
// one item may advance the whole order; there is no item-level status.
func (s *Service) UpdateStatus(ctx context.Context, actor identity.Actor, input types.UpdateStatusInput) (*types.OrderProjection, error) {
	if !actor.IsSupplier() {
		return nil, ErrNotParty
	}
	order, err := s.authorize(ctx, actor, input.OrderID)
	if err != nil {
		return nil, err
	}
	if !domain.IsValidStatus(input.Next) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, input.Next)
	}
	if err := order.Advance(input.Next, actor.ID, input.Note, time.Now().UTC()); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Save(ctx, order)
	if err != nil {
		return nil, err
	}
	return s.project(saved, actor), nil
}

// Cancel is the buyer's side exit, allowed only before processing starts.
func (s *Service) Cancel(ctx context.Context, actor identity.Actor, input types.CancelInput) (*types.OrderProjection, error) {
	if !actor.IsBuyer() {
		return nil, ErrNotParty
	}
	order, err := s.authorize(ctx, actor, input.OrderID)
	if err != nil {
		return nil, err
	}
	if err := order.Cancel(actor.ID, input.Reason, time.Now().UTC()); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Save(ctx, order)
	if err != nil {
		return nil, err
	}
	return s.project(saved, actor), nil
}

// Refund records a refund on a paid delivered or cancelled order.
func (s *Service) Refund(ctx context.Context, actor identity.Actor, input types.RefundInput) (*types.OrderProjection, error) {
	if !actor.IsSupplier() {
		return nil, ErrNotParty
	}
	order, err := s.authorize(ctx, actor, input.OrderID)
	if err != nil {
		return nil, err
	}
	amount := input.Amount
	if amount == 0 {
		amount = order.TotalAmount
	}
	if err := order.Refund(amount, actor.ID, input.Reason, time.Now().UTC()); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Save(ctx, order)
	if err != nil {
		return nil, err
	}
	return s.project(saved, actor), nil
}

// authorize loads the order and checks the actor is a party to it. The
// denial is identical for "order missing" and "order belongs to someone
// else" so callers cannot probe for existence.
func (s *Service) authorize(ctx context.Context, actor identity.Actor, orderID string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, ErrNotParty
	}
	if err != nil {
		return nil, err
	}
	switch {
	case actor.IsBuyer() && order.BuyerID == actor.ID:
		return order, nil
	case actor.IsSupplier() && order.HasSupplier(actor.ID):
		return order, nil
	default:
		return nil, ErrNotParty
	}
}

func (s *Service) project(order *domain.Order, actor identity.Actor) *types.OrderProjection {
	if actor.IsSupplier() {
		return SupplierView(order, actor.ID)
	}
	return BuyerView(order)
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

var _ ports.Service = (*Service)(nil)
