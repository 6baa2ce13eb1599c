package mapper

import (
	"time"

	"github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/domain"
	"github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/ports"
)

// CartLine is the HTTP representation of one cart line.
type CartLine struct {
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unitPrice"`
	Subtotal  float64   `json:"subtotal"`
	AddedAt   time.Time `json:"addedAt,omitempty"`
}

// Cart is the HTTP representation of a cart aggregate.
type Cart struct {
	Owner       string     `json:"owner"`
	Items       []CartLine `json:"items"`
	TotalItems  int        `json:"totalItems"`
	TotalAmount float64    `json:"totalAmount"`
	Currency    string     `json:"currency"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt,omitempty"`
}

// AddItemRequest captures the inbound payload for adding a cart line.
type AddItemRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required"`
	UnitPrice float64 `json:"unitPrice"`
}

// UpdateQuantityRequest captures the inbound payload for a quantity change.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// MergeRequest names the guest session whose cart folds into the buyer's.
type MergeRequest struct {
	GuestToken string `json:"guestToken" binding:"required"`
}

// ValidationIssue reports one problem found while validating a cart line.
type ValidationIssue struct {
	ProductID    string  `json:"productId"`
	Code         string  `json:"code"`
	Detail       string  `json:"detail,omitempty"`
	CurrentPrice float64 `json:"currentPrice,omitempty"`
}

// ValidationResult is the response of a cart validation pass.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Issues []ValidationIssue `json:"issues"`
}

// FromDomainCart maps a cart aggregate into its transport shape.
func FromDomainCart(c *domain.Cart) Cart {
	items := make([]CartLine, 0, len(c.Items))
	for _, line := range c.Items {
		items = append(items, CartLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  line.Subtotal(),
			AddedAt:   line.AddedAt,
		})
	}
	var expires *time.Time
	if c.ExpiresAt != nil {
		copy := *c.ExpiresAt
		expires = &copy
	}
	return Cart{
		Owner:       c.Owner,
		Items:       items,
		TotalItems:  c.TotalItems,
		TotalAmount: c.TotalAmount,
		Currency:    string(c.Currency),
		ExpiresAt:   expires,
		UpdatedAt:   c.UpdatedAt,
	}
}

// FromIssues maps validation issues into the transport result.
func FromIssues(issues []ports.Issue) ValidationResult {
	out := make([]ValidationIssue, 0, len(issues))
	for _, issue := range issues {
		out = append(out, ValidationIssue{
			ProductID:    issue.ProductID,
			Code:         string(issue.Code),
			Detail:       issue.Detail,
			CurrentPrice: issue.CurrentPrice,
		})
	}
	return ValidationResult{Valid: len(out) == 0, Issues: out}
}
