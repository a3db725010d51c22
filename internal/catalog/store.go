package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"log/slog"

	"shopbot/internal/logger"
)

// ErrNotFound reports that an item id does not resolve to an active record.
var ErrNotFound = errors.New("catalog: item not found")

// Store answers point lookups and active-set queries over the catalog.
type Store interface {
	// GetByID returns the active item with the given id or ErrNotFound.
	GetByID(ctx context.Context, id int64) (Item, error)
	// ListActive returns every active item in insertion (id) order.
	ListActive(ctx context.Context) ([]Item, error)
}

// PostgresStore reads items from the items table via the shared sqlx pool.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps the provided pool.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const itemColumns = `id, title, description, img_link, demo_file_link, full_file_link, price, is_active`

// GetByID returns the active item with the given id or ErrNotFound for
// missing and inactive records alike.
func (s *PostgresStore) GetByID(ctx context.Context, id int64) (Item, error) {
	start := time.Now()
	var item Item
	q := `SELECT ` + itemColumns + ` FROM items WHERE id = $1 AND is_active`
	err := s.db.GetContext(ctx, &item, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		logger.SVCCatalog.Debug("item lookup",
			slog.String("event", "item.get"),
			slog.String("status", "skip"),
			slog.Int64("item_id", id),
			slog.Duration("duration", logger.Took(start)),
		)
		return Item{}, ErrNotFound
	}
	if err != nil {
		logger.SVCCatalog.Error("item lookup failed",
			slog.String("event", "item.get"),
			slog.String("status", "fail"),
			slog.Int64("item_id", id),
			slog.String("err", err.Error()),
		)
		return Item{}, fmt.Errorf("catalog: get item %d: %w", id, err)
	}

	item.Normalize()
	if err := item.Validate(); err != nil {
		return Item{}, fmt.Errorf("catalog: invalid record: %w", err)
	}

	logger.SVCCatalog.Debug("item lookup",
		slog.String("event", "item.get"),
		slog.String("status", "ok"),
		slog.Int64("item_id", id),
		slog.Duration("duration", logger.Took(start)),
	)
	return item, nil
}

// ListActive returns every active item in id order.
func (s *PostgresStore) ListActive(ctx context.Context) ([]Item, error) {
	start := time.Now()
	var items []Item
	q := `SELECT ` + itemColumns + ` FROM items WHERE is_active ORDER BY id`
	if err := s.db.SelectContext(ctx, &items, q); err != nil {
		logger.SVCCatalog.Error("active items query failed",
			slog.String("event", "item.list"),
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("catalog: list active items: %w", err)
	}

	for idx := range items {
		items[idx].Normalize()
		if err := items[idx].Validate(); err != nil {
			return nil, fmt.Errorf("catalog: invalid record: %w", err)
		}
	}

	logger.SVCCatalog.Debug("active items",
		slog.String("event", "item.list"),
		slog.String("status", "ok"),
		slog.Int("count", len(items)),
		slog.Duration("duration", logger.Took(start)),
	)
	return items, nil
}
