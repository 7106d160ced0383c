package purchaserepo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/school-store/backend/internal/domain"
	"github.com/school-store/backend/internal/pg"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) Create(ctx context.Context, purchase *domain.Purchase) (*domain.Purchase, error) {
	query := `
		INSERT INTO purchases (user_id, item_id, quantity, size, total_cost, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		purchase.UserID, purchase.ItemID, purchase.Quantity,
		purchase.Size, purchase.TotalCost, purchase.Status,
	).Scan(&purchase.ID, &purchase.CreatedAt)
	if err != nil {
		zap.L().Error("can't save purchase", zap.Error(err))
		return nil, err
	}
	return purchase, nil
}

func (r *Repository) GetByID(ctx context.Context, purchaseID int) (*domain.Purchase, error) {
	query := `
		SELECT id, user_id, item_id, quantity, size, total_cost, status, created_at
		FROM purchases
		WHERE id = $1
	`
	var p domain.Purchase
	err := r.db.QueryRow(ctx, query, purchaseID).Scan(
		&p.ID, &p.UserID, &p.ItemID, &p.Quantity, &p.Size, &p.TotalCost, &p.Status, &p.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("can't find purchase", zap.Error(err))
		return nil, err
	}
	return &p, nil
}

// List returns purchases newest first. userID = 0 means all users.
func (r *Repository) List(ctx context.Context, userID int, limit, offset int) ([]domain.Purchase, int, error) {
	var total int
	countQuery := `SELECT count(*) FROM purchases WHERE ($1 = 0 OR user_id = $1)`
	if err := r.db.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		zap.L().Error("can't count purchases", zap.Error(err))
		return nil, 0, err
	}

	query := `
		SELECT id, user_id, item_id, quantity, size, total_cost, status, created_at
		FROM purchases
		WHERE ($1 = 0 OR user_id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		zap.L().Error("can't list purchases", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var purchases []domain.Purchase
	for rows.Next() {
		var p domain.Purchase
		err := rows.Scan(&p.ID, &p.UserID, &p.ItemID, &p.Quantity, &p.Size, &p.TotalCost, &p.Status, &p.CreatedAt)
		if err != nil {
			zap.L().Error("can't scan purchase row", zap.Error(err))
			return nil, 0, err
		}
		purchases = append(purchases, p)
	}
	return purchases, total, rows.Err()
}
