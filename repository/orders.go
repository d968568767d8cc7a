package repository

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-storefront"
	"github.com/goliatone/go-storefront/checkout"
)

// OrderRepository implements checkout.OrderPlacer using Bun.
type OrderRepository struct {
	db  *bun.DB
	now func() time.Time
}

var _ checkout.OrderPlacer = (*OrderRepository)(nil)

// NewOrderRepository creates a new repository.
func NewOrderRepository(db *bun.DB) *OrderRepository {
	return &OrderRepository{db: db, now: time.Now}
}

// PlaceOrder moves the cart of userID into a new order in one transaction.
// An empty cart returns storefront.ErrEmptyCart.
func (r *OrderRepository) PlaceOrder(ctx context.Context, userID string) error {
	if userID == "" {
		return storefront.ErrMissingIdentity
	}

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		rows, err := selectCartRows(ctx, tx, userID)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return storefront.ErrEmptyCart
		}

		order := &OrderModel{
			ID:         uuid.New(),
			UserID:     userID,
			TotalPrice: decimal.Zero,
			OrderDate:  r.now().UTC(),
		}

		items := make([]*OrderItemModel, 0, len(rows))
		for _, row := range rows {
			lineTotal := row.Price.Mul(decimal.NewFromInt(row.Quantity))
			order.TotalPrice = order.TotalPrice.Add(lineTotal)
			items = append(items, &OrderItemModel{
				OrderID:    order.ID,
				ProductID:  row.ProductID,
				Quantity:   row.Quantity,
				TotalPrice: lineTotal,
			})
		}

		if _, err := tx.NewInsert().Model(order).Exec(ctx); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to insert order")
		}
		if _, err := tx.NewInsert().Model(&items).Exec(ctx); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to insert order items")
		}

		_, err = tx.NewDelete().
			Model((*CartItemModel)(nil)).
			Where("user_id = ?", userID).
			Exec(ctx)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to clear cart")
		}
		return nil
	})
}

// FindByUserID returns the orders of userID, newest first, with their items.
func (r *OrderRepository) FindByUserID(ctx context.Context, userID string) ([]*OrderModel, error) {
	var orders []*OrderModel
	err := r.db.NewSelect().
		Model(&orders).
		Relation("Items").
		Where("?TableAlias.user_id = ?", userID).
		Order("order_date DESC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list orders")
	}
	return orders, nil
}
