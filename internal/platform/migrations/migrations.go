package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Intended to replace adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&cartRecord{},
		&cartLineRecord{},
		&orderRecord{},
		&orderItemRecord{},
		&orderTimelineRecord{},
		&idempotencyRecord{},
	)
}

// Cart schema mirrors the cart Postgres adapter. One row per owner key;
// guest carts carry an expiry consumed by the purger.
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

// Order schema mirrors the orders Postgres adapter.
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

// Idempotency schema mirrors the checkout Postgres adapter.
type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128"`
	OrderID     string    `gorm:"column:order_id;size:36"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (idempotencyRecord) TableName() string { return "checkout_idempotency_keys" }
