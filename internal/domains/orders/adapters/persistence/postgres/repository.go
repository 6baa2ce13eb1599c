package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&orderRecord{}, &orderItemRecord{}, &orderTimelineRecord{})
	}
	return repo
}

// orderRecord maps the order aggregate to a relational table. The distinct
// supplier ids are denormalized into an array column so supplier-scoped
// listings need no item join.
type orderRecord struct {
	ID                 string         `gorm:"primaryKey;column:id;size:36"`
	OrderNumber        string         `gorm:"column:order_number;uniqueIndex;size:64"`
	BuyerID            string         `gorm:"column:buyer_id;size:64;index"`
	SupplierIDs        pq.StringArray `gorm:"column:supplier_ids;type:text[]"`
	Status             string         `gorm:"column:status;type:varchar(32);index"`
	PaymentStatus      string         `gorm:"column:payment_status;type:varchar(32)"`
	PaymentMethod      string         `gorm:"column:payment_method;type:varchar(32)"`
	CardLastFour       string         `gorm:"column:card_last_four;size:4"`
	CardBrand          string         `gorm:"column:card_brand;size:32"`
	TransactionID      string         `gorm:"column:transaction_id;size:128"`
	Currency           string         `gorm:"column:currency;type:varchar(8)"`
	Subtotal           float64        `gorm:"column:subtotal"`
	ShippingCost       float64        `gorm:"column:shipping_cost"`
	Tax                float64        `gorm:"column:tax"`
	Discount           float64        `gorm:"column:discount"`
	TotalAmount        float64        `gorm:"column:total_amount"`
	Notes              string         `gorm:"column:notes"`
	ShippingAddress    addressColumns `gorm:"embedded;embeddedPrefix:ship_"`
	BillingAddress     addressColumns `gorm:"embedded;embeddedPrefix:bill_"`
	CancellationReason string         `gorm:"column:cancellation_reason"`
	CancelledAt        *time.Time     `gorm:"column:cancelled_at"`
	CancelledBy        string         `gorm:"column:cancelled_by;size:64"`
	RefundAmount       float64        `gorm:"column:refund_amount"`
	RefundReason       string         `gorm:"column:refund_reason"`
	RefundedAt         *time.Time     `gorm:"column:refunded_at"`
	ActualDeliveryDate *time.Time     `gorm:"column:actual_delivery_date"`
	CreatedAt          time.Time      `gorm:"column:created_at;index"`
	UpdatedAt          time.Time      `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type addressColumns struct {
	Name    string `gorm:"column:name"`
	Street  string `gorm:"column:street"`
	City    string `gorm:"column:city"`
	State   string `gorm:"column:state"`
	Zip     string `gorm:"column:zip;size:16"`
	Country string `gorm:"column:country;size:64"`
	Phone   string `gorm:"column:phone;size:32"`
}

type orderItemRecord struct {
	OrderID     string  `gorm:"primaryKey;column:order_id;size:36"`
	Position    int     `gorm:"primaryKey;column:position"`
	ProductID   string  `gorm:"column:product_id;size:64"`
	ProductName string  `gorm:"column:product_name"`
	Quantity    int     `gorm:"column:quantity"`
	UnitPrice   float64 `gorm:"column:unit_price"`
	SupplierID  string  `gorm:"column:supplier_id;size:64;index"`
}

func (orderItemRecord) TableName() string { return "order_items" }

type orderTimelineRecord struct {
	OrderID   string    `gorm:"primaryKey;column:order_id;size:36"`
	Position  int       `gorm:"primaryKey;column:position"`
	Status    string    `gorm:"column:status;type:varchar(32)"`
	Timestamp time.Time `gorm:"column:timestamp"`
	Note      string    `gorm:"column:note"`
	Actor     string    `gorm:"column:actor;size:64"`
}

func (orderTimelineRecord) TableName() string { return "order_timeline" }

// Save upserts the order row and rewrites its items and timeline. Items are
// immutable after creation and timeline entries are append-only, so the
// rewrite only ever grows the child tables.
func (r *Repository) Save(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	record, items, timeline := toRecords(order)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveTx(tx, record, items, timeline)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// SaveTx persists the order inside an existing transaction. The checkout
// store uses it to commit order creation and cart emptying as one unit.
func SaveTx(tx *gorm.DB, order *domain.Order) error {
	if tx == nil {
		return errors.New("transaction is nil")
	}
	if err := order.Validate(); err != nil {
		return err
	}
	record, items, timeline := toRecords(order)
	return saveTx(tx, record, items, timeline)
}

func saveTx(tx *gorm.DB, record orderRecord, items []orderItemRecord, timeline []orderTimelineRecord) error {
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"status":               record.Status,
			"payment_status":       record.PaymentStatus,
			"cancellation_reason":  record.CancellationReason,
			"cancelled_at":         record.CancelledAt,
			"cancelled_by":         record.CancelledBy,
			"refund_amount":        record.RefundAmount,
			"refund_reason":        record.RefundReason,
			"refunded_at":          record.RefundedAt,
			"actual_delivery_date": record.ActualDeliveryDate,
			"updated_at":           gorm.Expr("NOW()"),
		}),
	}).Create(&record).Error; err != nil {
		return err
	}
	if err := tx.Where("order_id = ?", record.ID).Delete(&orderItemRecord{}).Error; err != nil {
		return err
	}
	if len(items) > 0 {
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("order_id = ?", record.ID).Delete(&orderTimelineRecord{}).Error; err != nil {
		return err
	}
	if len(timeline) > 0 {
		if err := tx.Create(&timeline).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetByID fetches an order with its items and timeline.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return r.hydrate(ctx, record)
}

// GetByNumber fetches an order by its human-readable number.
func (r *Repository) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "order_number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return r.hydrate(ctx, record)
}

// ListByBuyer returns the buyer's orders, newest first.
func (r *Repository) ListByBuyer(ctx context.Context, buyerID string, page ports.Page) ([]*domain.Order, int64, error) {
	return r.list(ctx, page, "buyer_id = ?", buyerID)
}

// ListBySupplier returns orders carrying at least one of the supplier's items.
func (r *Repository) ListBySupplier(ctx context.Context, supplierID string, page ports.Page) ([]*domain.Order, int64, error) {
	return r.list(ctx, page, "? = ANY(supplier_ids)", supplierID)
}

func (r *Repository) list(ctx context.Context, page ports.Page, query string, arg any) ([]*domain.Order, int64, error) {
	if err := r.ensureDB(); err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&orderRecord{}).Where(query, arg).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var records []orderRecord
	q := r.db.WithContext(ctx).Where(query, arg).Order("created_at DESC")
	if page.Limit > 0 {
		q = q.Limit(page.Limit)
	}
	if page.Offset > 0 {
		q = q.Offset(page.Offset)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, 0, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for _, record := range records {
		order, err := r.hydrate(ctx, record)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}
	return orders, total, nil
}

func (r *Repository) hydrate(ctx context.Context, record orderRecord) (*domain.Order, error) {
	var items []orderItemRecord
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", record.ID).
		Order("position ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	var timeline []orderTimelineRecord
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", record.ID).
		Order("position ASC").
		Find(&timeline).Error; err != nil {
		return nil, err
	}
	return toDomain(record, items, timeline), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecords(order *domain.Order) (orderRecord, []orderItemRecord, []orderTimelineRecord) {
	record := orderRecord{
		ID:                 order.ID,
		OrderNumber:        order.OrderNumber,
		BuyerID:            order.BuyerID,
		SupplierIDs:        pq.StringArray(order.SupplierIDs()),
		Status:             string(order.Status),
		PaymentStatus:      string(order.PaymentStatus),
		PaymentMethod:      string(order.PaymentMethod),
		CardLastFour:       order.PaymentDetails.CardLastFour,
		CardBrand:          order.PaymentDetails.CardBrand,
		TransactionID:      order.PaymentDetails.TransactionID,
		Currency:           order.Currency,
		Subtotal:           order.Subtotal,
		ShippingCost:       order.ShippingCost,
		Tax:                order.Tax,
		Discount:           order.Discount,
		TotalAmount:        order.TotalAmount,
		Notes:              order.Notes,
		ShippingAddress:    toAddressColumns(order.ShippingAddress),
		BillingAddress:     toAddressColumns(order.BillingAddress),
		CancellationReason: order.CancellationReason,
		CancelledAt:        order.CancelledAt,
		CancelledBy:        order.CancelledBy,
		RefundAmount:       order.RefundAmount,
		RefundReason:       order.RefundReason,
		RefundedAt:         order.RefundedAt,
		ActualDeliveryDate: order.ActualDeliveryDate,
	}
	items := make([]orderItemRecord, 0, len(order.Items))
	for i, item := range order.Items {
		items = append(items, orderItemRecord{
			OrderID:     order.ID,
			Position:    i,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			SupplierID:  item.SupplierID,
		})
	}
	timeline := make([]orderTimelineRecord, 0, len(order.Timeline))
	for i, entry := range order.Timeline {
		timeline = append(timeline, orderTimelineRecord{
			OrderID:   order.ID,
			Position:  i,
			Status:    string(entry.Status),
			Timestamp: entry.Timestamp,
			Note:      entry.Note,
			Actor:     entry.Actor,
		})
	}
	return record, items, timeline
}

func toDomain(record orderRecord, items []orderItemRecord, timeline []orderTimelineRecord) *domain.Order {
	order := &domain.Order{
		ID:            record.ID,
		OrderNumber:   record.OrderNumber,
		BuyerID:       record.BuyerID,
		PaymentMethod: domain.PaymentMethod(record.PaymentMethod),
		PaymentDetails: domain.PaymentDetails{
			CardLastFour:  record.CardLastFour,
			CardBrand:     record.CardBrand,
			TransactionID: record.TransactionID,
		},
		Status:             domain.OrderStatus(record.Status),
		PaymentStatus:      domain.PaymentStatus(record.PaymentStatus),
		Currency:           record.Currency,
		Subtotal:           record.Subtotal,
		ShippingCost:       record.ShippingCost,
		Tax:                record.Tax,
		Discount:           record.Discount,
		TotalAmount:        record.TotalAmount,
		Notes:              record.Notes,
		ShippingAddress:    fromAddressColumns(record.ShippingAddress),
		BillingAddress:     fromAddressColumns(record.BillingAddress),
		CancellationReason: record.CancellationReason,
		CancelledAt:        record.CancelledAt,
		CancelledBy:        record.CancelledBy,
		RefundAmount:       record.RefundAmount,
		RefundReason:       record.RefundReason,
		RefundedAt:         record.RefundedAt,
		ActualDeliveryDate: record.ActualDeliveryDate,
		CreatedAt:          record.CreatedAt,
		UpdatedAt:          record.UpdatedAt,
	}
	for _, item := range items {
		order.Items = append(order.Items, domain.Item{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			SupplierID:  item.SupplierID,
		})
	}
	for _, entry := range timeline {
		order.Timeline = append(order.Timeline, domain.TimelineEntry{
			Status:    domain.OrderStatus(entry.Status),
			Timestamp: entry.Timestamp,
			Note:      entry.Note,
			Actor:     entry.Actor,
		})
	}
	return order
}

func toAddressColumns(a domain.Address) addressColumns {
	return addressColumns{Name: a.Name, Street: a.Street, City: a.City, State: a.State, Zip: a.Zip, Country: a.Country, Phone: a.Phone}
}

func fromAddressColumns(c addressColumns) domain.Address {
	return domain.Address{Name: c.Name, Street: c.Street, City: c.City, State: c.State, Zip: c.Zip, Country: c.Country, Phone: c.Phone}
}
