package db

import (
	"context"
	"fmt"
	"time"
)

// UpsertOrderByProductCode inserts or replaces one customer order, resolving
// the product code from an import row to its master id. Returns an error if
// the code has no matching product.
func (q *Queries) UpsertOrderByProductCode(ctx context.Context, orderID, productCode string, deliveryDate time.Time, orderQuantity int) error {
	var productID int64
	err := q.db.QueryRowContext(ctx, `SELECT id FROM products WHERE code = $1`, productCode).Scan(&productID)
	if err != nil {
		return fmt.Errorf("unknown product code %q: %w", productCode, err)
	}

	_, err = q.db.ExecContext(ctx, `
		INSERT INTO customer_orders (id, product_id, delivery_date, order_quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			product_id = EXCLUDED.product_id,
			delivery_date = EXCLUDED.delivery_date,
			order_quantity = EXCLUDED.order_quantity
	`, orderID, productID, deliveryDate, orderQuantity)
	if err != nil {
		return fmt.Errorf("upsert customer order %s: %w", orderID, err)
	}
	return nil
}
