package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ProductRepository stores catalog products.
type ProductRepository struct {
	db *bun.DB
}

// NewProductRepository creates a new repository.
func NewProductRepository(db *bun.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts product, assigning an ID when missing.
func (r *ProductRepository) Create(ctx context.Context, product *ProductModel) (*ProductModel, error) {
	if product == nil {
		return nil, errors.New("product is required", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}

	if _, err := r.db.NewInsert().Model(product).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create product")
	}
	return product, nil
}

// GetByID returns the product with id.
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*ProductModel, error) {
	var model ProductModel
	err := r.db.NewSelect().
		Model(&model).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.New("product not found", errors.CategoryNotFound).
				WithCode(errors.CodeNotFound).
				WithMetadata(map[string]any{"product_id": id.String()})
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to get product")
	}
	return &model, nil
}
