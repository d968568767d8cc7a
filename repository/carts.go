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

// CartRepository implements checkout.CartProvider using Bun.
type CartRepository struct {
	db       *bun.DB
	customer storefront.CustomerResolver
}

var _ checkout.CartProvider = (*CartRepository)(nil)

// NewCartRepository creates a new repository. A nil customer resolves the
// user from the request claims.
func NewCartRepository(db *bun.DB, customer storefront.CustomerResolver) *CartRepository {
	if customer == nil {
		customer = storefront.ContextCustomer{}
	}
	return &CartRepository{db: db, customer: customer}
}

type cartRow struct {
	ProductID uuid.UUID       `bun:"product_id"`
	Title     string          `bun:"title"`
	ImageURL  string          `bun:"image_url"`
	Price     decimal.Decimal `bun:"price"`
	Quantity  int64           `bun:"quantity"`
}

// GetCartProducts implements checkout.CartProvider for the user bound to ctx.
func (r *CartRepository) GetCartProducts(ctx context.Context) ([]checkout.CartProduct, error) {
	userID := r.customer.GetUserID(ctx)
	if userID == "" {
		return nil, storefront.ErrMissingIdentity
	}
	return r.ProductsFor(ctx, userID)
}

// ProductsFor returns the cart of userID in the order items were added.
func (r *CartRepository) ProductsFor(ctx context.Context, userID string) ([]checkout.CartProduct, error) {
	rows, err := selectCartRows(ctx, r.db, userID)
	if err != nil {
		return nil, err
	}

	products := make([]checkout.CartProduct, 0, len(rows))
	for _, row := range rows {
		products = append(products, checkout.CartProduct{
			ProductID: row.ProductID.String(),
			Title:     row.Title,
			ImageURL:  row.ImageURL,
			Price:     row.Price,
			Quantity:  row.Quantity,
		})
	}
	return products, nil
}

// Add puts quantity units of productID in the cart of userID, adding to any
// quantity already there.
func (r *CartRepository) Add(ctx context.Context, userID string, productID uuid.UUID, quantity int64) error {
	if userID == "" {
		return storefront.ErrMissingIdentity
	}
	if quantity <= 0 {
		return errors.New("quantity must be positive", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest).
			WithMetadata(map[string]any{"quantity": quantity})
	}

	model := &CartItemModel{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: time.Now().UTC(),
	}

	_, err := r.db.NewInsert().
		Model(model).
		On("CONFLICT (user_id, product_id) DO UPDATE").
		Set("quantity = quantity + EXCLUDED.quantity").
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to add cart item")
	}
	return nil
}

// Remove drops productID from the cart of userID.
func (r *CartRepository) Remove(ctx context.Context, userID string, productID uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*CartItemModel)(nil)).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to remove cart item")
	}
	return nil
}

func selectCartRows(ctx context.Context, db bun.IDB, userID string) ([]cartRow, error) {
	var rows []cartRow
	err := db.NewSelect().
		TableExpr("cart_items AS ci").
		ColumnExpr("p.id AS product_id").
		ColumnExpr("p.title AS title").
		ColumnExpr("p.image_url AS image_url").
		ColumnExpr("p.price AS price").
		ColumnExpr("ci.quantity AS quantity").
		Join("JOIN products AS p ON p.id = ci.product_id").
		Where("ci.user_id = ?", userID).
		OrderExpr("ci.created_at ASC, p.title ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to read cart").
			WithMetadata(map[string]any{"user_id": userID})
	}
	return rows, nil
}
