package itemrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/school-store/backend/internal/domain"
	"github.com/school-store/backend/internal/pg"
)

// ErrItemReferenced is returned by Delete when purchase rows still
// reference the item.
var ErrItemReferenced = errors.New("store item is referenced by purchases")

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

const itemColumns = `id, name, description, available_sizes, image_url, category, is_available, created_at, updated_at`

func scanItem(row pgx.Row) (*domain.StoreItem, error) {
	var item domain.StoreItem
	var sizes []string
	err := row.Scan(
		&item.ID, &item.Name, &item.Description, &sizes,
		&item.ImageURL, &item.Category, &item.IsAvailable,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.AvailableSizes = make([]domain.Size, len(sizes))
	for i, s := range sizes {
		item.AvailableSizes[i] = domain.Size(s)
	}
	return &item, nil
}

func sizeStrings(sizes []domain.Size) []string {
	out := make([]string, len(sizes))
	for i, s := range sizes {
		out[i] = string(s)
	}
	return out
}

func (r *Repository) GetByID(ctx context.Context, itemID int) (*domain.StoreItem, error) {
	query := `SELECT ` + itemColumns + ` FROM store_items WHERE id = $1`
	item, err := scanItem(r.db.QueryRow(ctx, query, itemID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("can't find store item", zap.Error(err))
		return nil, err
	}
	return item, nil
}

func (r *Repository) List(ctx context.Context, category string, availableOnly bool) ([]domain.StoreItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM store_items
		WHERE ($1 = '' OR category = $1)
		  AND (NOT $2 OR is_available)
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query, category, availableOnly)
	if err != nil {
		zap.L().Error("can't list store items", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var items []domain.StoreItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			zap.L().Error("can't scan store item row", zap.Error(err))
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *Repository) Create(ctx context.Context, item *domain.StoreItem) (*domain.StoreItem, error) {
	query := `
		INSERT INTO store_items (name, description, available_sizes, image_url, category, is_available)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		item.Name, item.Description, sizeStrings(item.AvailableSizes),
		item.ImageURL, item.Category, item.IsAvailable,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		zap.L().Error("can't save store item", zap.Error(err))
		return nil, err
	}
	return item, nil
}

func (r *Repository) Update(ctx context.Context, item *domain.StoreItem) (*domain.StoreItem, error) {
	query := `
		UPDATE store_items
		SET name = $1, description = $2, available_sizes = $3, image_url = $4,
		    category = $5, is_available = $6, updated_at = now()
		WHERE id = $7
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		item.Name, item.Description, sizeStrings(item.AvailableSizes),
		item.ImageURL, item.Category, item.IsAvailable, item.ID,
	).Scan(&item.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("can't update store item", zap.Error(err))
		return nil, err
	}
	return item, nil
}

func (r *Repository) Delete(ctx context.Context, itemID int) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM store_items WHERE id = $1`, itemID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return false, ErrItemReferenced
		}
		zap.L().Error("can't delete store item", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) Categories(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT category
		FROM store_items
		WHERE category <> ''
		ORDER BY category
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		zap.L().Error("can't list categories", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			zap.L().Error("can't scan category row", zap.Error(err))
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}
