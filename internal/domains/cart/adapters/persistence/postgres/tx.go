package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/ports"
)

// ClearTx empties the owner's cart inside an existing transaction: all lines
// are deleted and the derived totals reset, while the cart document itself
// survives. The checkout store uses it to commit the cart emptying together
// with the order insert.
func ClearTx(tx *gorm.DB, owner string) error {
	if tx == nil {
		return errors.New("transaction is nil")
	}
	if err := tx.Where("cart_owner = ?", owner).Delete(&cartLineRecord{}).Error; err != nil {
		return err
	}
	result := tx.Model(&cartRecord{}).
		Where("owner = ?", owner).
		Updates(map[string]any{
			"total_items":  0,
			"total_amount": 0,
			"updated_at":   gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}
