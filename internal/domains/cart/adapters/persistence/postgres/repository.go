package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/domain"
	"github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists carts in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&cartRecord{}, &cartLineRecord{})
	}
	return repo
}

// cartRecord maps the cart aggregate to a relational table. The owner key is
// the primary key, which is what enforces one cart per owner.
type cartRecord struct {
	Owner       string     `gorm:"primaryKey;column:owner;size:128"`
	TotalItems  int        `gorm:"column:total_items"`
	TotalAmount float64    `gorm:"column:total_amount"`
	Currency    string     `gorm:"column:currency;type:varchar(8)"`
	ExpiresAt   *time.Time `gorm:"column:expires_at;index"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (cartRecord) TableName() string { return "carts" }

type cartLineRecord struct {
	CartOwner string    `gorm:"primaryKey;column:cart_owner;size:128"`
	ProductID string    `gorm:"primaryKey;column:product_id;size:64"`
	Quantity  int       `gorm:"column:quantity"`
	UnitPrice float64   `gorm:"column:unit_price"`
	AddedAt   time.Time `gorm:"column:added_at"`
	Position  int       `gorm:"column:position"`
}

func (cartLineRecord) TableName() string { return "cart_lines" }

// GetByOwner loads a cart with its lines in insertion order.
func (r *Repository) GetByOwner(ctx context.Context, owner string) (*domain.Cart, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record cartRecord
	if err := r.db.WithContext(ctx).First(&record, "owner = ?", owner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	var lines []cartLineRecord
	if err := r.db.WithContext(ctx).
		Where("cart_owner = ?", owner).
		Order("position ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return toDomain(record, lines), nil
}

// Save upserts the cart row and replaces its lines in one transaction.
func (r *Repository) Save(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, errors.New("cart is nil")
	}
	record, lines := toRecords(cart)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "owner"}},
			DoUpdates: clause.Assignments(map[string]any{
				"total_items":  record.TotalItems,
				"total_amount": record.TotalAmount,
				"currency":     record.Currency,
				"expires_at":   record.ExpiresAt,
				"updated_at":   gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
			return err
		}
		if err := tx.Where("cart_owner = ?", record.Owner).Delete(&cartLineRecord{}).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		return tx.Create(&lines).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetByOwner(ctx, record.Owner)
}

// Delete removes a cart and its lines.
func (r *Repository) Delete(ctx context.Context, owner string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_owner = ?", owner).Delete(&cartLineRecord{}).Error; err != nil {
			return err
		}
		result := tx.Where("owner = ?", owner).Delete(&cartRecord{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ports.ErrNotFound
		}
		return nil
	})
}

// PurgeExpired deletes guest carts whose TTL elapsed before now.
func (r *Repository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	var purged int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owners []string
		if err := tx.Model(&cartRecord{}).
			Where("owner LIKE ? AND expires_at IS NOT NULL AND expires_at < ?", domain.GuestOwnerPrefix+"%", now).
			Pluck("owner", &owners).Error; err != nil {
			return err
		}
		if len(owners) == 0 {
			return nil
		}
		if err := tx.Where("cart_owner IN ?", owners).Delete(&cartLineRecord{}).Error; err != nil {
			return err
		}
		result := tx.Where("owner IN ?", owners).Delete(&cartRecord{})
		if result.Error != nil {
			return result.Error
		}
		purged = result.RowsAffected
		return nil
	})
	return purged, err
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres cart repository not configured")
	}
	return nil
}

func toRecords(cart *domain.Cart) (cartRecord, []cartLineRecord) {
	record := cartRecord{
		Owner:       cart.Owner,
		TotalItems:  cart.TotalItems,
		TotalAmount: cart.TotalAmount,
		Currency:    string(cart.Currency),
		ExpiresAt:   cart.ExpiresAt,
	}
	lines := make([]cartLineRecord, 0, len(cart.Items))
	for i, line := range cart.Items {
		lines = append(lines, cartLineRecord{
			CartOwner: cart.Owner,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			AddedAt:   line.AddedAt,
			Position:  i,
		})
	}
	return record, lines
}

func toDomain(record cartRecord, lines []cartLineRecord) *domain.Cart {
	cart := &domain.Cart{
		Owner:       record.Owner,
		TotalItems:  record.TotalItems,
		TotalAmount: record.TotalAmount,
		Currency:    domain.Currency(record.Currency),
		ExpiresAt:   record.ExpiresAt,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
	for _, line := range lines {
		cart.Items = append(cart.Items, domain.Line{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			AddedAt:   line.AddedAt,
		})
	}
	return cart
}
