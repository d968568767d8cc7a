package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// ProductModel is the Bun model for catalog products.
type ProductModel struct {
	bun.BaseModel `bun:"table:products"`

	ID        uuid.UUID       `bun:"id,pk,type:uuid"`
	Title     string          `bun:"title,notnull"`
	ImageURL  string          `bun:"image_url"`
	Price     decimal.Decimal `bun:"price,notnull,type:decimal(12,2)"`
	CreatedAt time.Time       `bun:"created_at,notnull,default:current_timestamp"`
}

// CartItemModel is one product in a user's cart.
type CartItemModel struct {
	bun.BaseModel `bun:"table:cart_items"`

	UserID    string    `bun:"user_id,pk"`
	ProductID uuid.UUID `bun:"product_id,pk,type:uuid"`
	Quantity  int64     `bun:"quantity,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// OrderModel is a placed order.
type OrderModel struct {
	bun.BaseModel `bun:"table:orders"`

	ID         uuid.UUID       `bun:"id,pk,type:uuid"`
	UserID     string          `bun:"user_id,notnull"`
	TotalPrice decimal.Decimal `bun:"total_price,notnull,type:decimal(12,2)"`
	OrderDate  time.Time       `bun:"order_date,notnull"`

	Items []*OrderItemModel `bun:"rel:has-many,join:id=order_id"`
}

// OrderItemModel is one line of a placed order.
type OrderItemModel struct {
	bun.BaseModel `bun:"table:order_items"`

	OrderID    uuid.UUID       `bun:"order_id,pk,type:uuid"`
	ProductID  uuid.UUID       `bun:"product_id,pk,type:uuid"`
	Quantity   int64           `bun:"quantity,notnull"`
	TotalPrice decimal.Decimal `bun:"total_price,notnull,type:decimal(12,2)"`
}

var models = []any{
	(*ProductModel)(nil),
	(*CartItemModel)(nil),
	(*OrderModel)(nil),
	(*OrderItemModel)(nil),
}
