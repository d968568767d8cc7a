package localstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/goliatone/go-storefront/authstate"
)

// ItemModel is a single stored key/value pair.
type ItemModel struct {
	bun.BaseModel `bun:"table:local_storage"`

	Key       string    `bun:"item_key,pk"`
	Value     string    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// BunStorage keeps items in a SQL table through bun.
type BunStorage struct {
	db *bun.DB
}

var _ authstate.WritableStorage = (*BunStorage)(nil)

// NewBunStorage creates a store on top of db.
func NewBunStorage(db *bun.DB) *BunStorage {
	return &BunStorage{db: db}
}

// OpenSQLite opens a sqlite database for dsn, e.g. "file::memory:?cache=shared".
func OpenSQLite(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "open sqlite store")
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// CreateSchema creates the storage table when missing.
func (s *BunStorage) CreateSchema(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*ItemModel)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "create local_storage table")
	}
	return nil
}

// GetItemAsString implements authstate.Storage.
func (s *BunStorage) GetItemAsString(ctx context.Context, key string) (string, bool, error) {
	var model ItemModel
	err := s.db.NewSelect().
		Model(&model).
		Where("item_key = ?", key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, errors.Wrap(err, errors.CategoryInternal, "read item").
			WithMetadata(map[string]any{"key": key})
	}
	return model.Value, true, nil
}

// SetItemAsString implements authstate.WritableStorage.
func (s *BunStorage) SetItemAsString(ctx context.Context, key, value string) error {
	model := &ItemModel{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}

	_, err := s.db.NewInsert().
		Model(model).
		On("CONFLICT (item_key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "write item").
			WithMetadata(map[string]any{"key": key})
	}
	return nil
}

// RemoveItem implements authstate.Storage. Removing a missing key is not an
// error.
func (s *BunStorage) RemoveItem(ctx context.Context, key string) error {
	_, err := s.db.NewDelete().
		Model((*ItemModel)(nil)).
		Where("item_key = ?", key).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "remove item").
			WithMetadata(map[string]any{"key": key})
	}
	return nil
}
