package repository

import (
	"context"
	"database/sql"
	"log"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-storefront"
)

// Manager groups the storefront repositories over one database.
type Manager struct {
	db       *bun.DB
	products *ProductRepository
	carts    *CartRepository
	orders   *OrderRepository
}

// NewRepositoryManager creates the repositories for db. Carts resolve the
// current user with customer.
func NewRepositoryManager(db *bun.DB, customer storefront.CustomerResolver) *Manager {
	return &Manager{
		db:       db,
		products: NewProductRepository(db),
		carts:    NewCartRepository(db, customer),
		orders:   NewOrderRepository(db),
	}
}

func (m *Manager) Validate() error {
	if m.db == nil {
		return errors.New("repository db should be initialized", errors.CategoryInternal)
	}

	if m.carts == nil {
		return errors.New("repository carts should be initialized", errors.CategoryInternal)
	}

	if m.orders == nil {
		return errors.New("repository orders should be initialized", errors.CategoryInternal)
	}

	return nil
}

func (m *Manager) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

// CreateSchema creates the storefront tables when missing.
func (m *Manager) CreateSchema(ctx context.Context) error {
	for _, model := range models {
		if _, err := m.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to create storefront schema")
		}
	}
	return nil
}

func (m *Manager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m *Manager) Products() *ProductRepository {
	return m.products
}

func (m *Manager) Carts() *CartRepository {
	return m.carts
}

func (m *Manager) Orders() *OrderRepository {
	return m.orders
}
