package transactionrepo

import (
	"context"

	"go.uber.org/zap"

	"github.com/school-store/backend/internal/domain"
	"github.com/school-store/backend/internal/pg"
)

// Repository appends and reads the points ledger. There are deliberately
// no update or delete statements: entries are immutable, corrections are
// new offsetting entries.
type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) Create(ctx context.Context, tx *domain.PointsTransaction) (*domain.PointsTransaction, error) {
	query := `
		INSERT INTO points_transactions (user_id, transaction_type, amount, reason, reference_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		tx.UserID, tx.Type, tx.Amount, tx.Reason, tx.ReferenceID, tx.CreatedBy,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		zap.L().Error("can't save points transaction", zap.Error(err))
		return nil, err
	}
	return tx, nil
}

// List returns ledger entries newest first. userID = 0 means all users.
func (r *Repository) List(ctx context.Context, userID int, limit, offset int) ([]domain.PointsTransaction, int, error) {
	var total int
	countQuery := `SELECT count(*) FROM points_transactions WHERE ($1 = 0 OR user_id = $1)`
	if err := r.db.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		zap.L().Error("can't count points transactions", zap.Error(err))
		return nil, 0, err
	}

	query := `
		SELECT id, user_id, transaction_type, amount, reason, reference_id, created_by, created_at
		FROM points_transactions
		WHERE ($1 = 0 OR user_id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		zap.L().Error("can't list points transactions", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var transactions []domain.PointsTransaction
	for rows.Next() {
		var tx domain.PointsTransaction
		err := rows.Scan(&tx.ID, &tx.UserID, &tx.Type, &tx.Amount, &tx.Reason, &tx.ReferenceID, &tx.CreatedBy, &tx.CreatedAt)
		if err != nil {
			zap.L().Error("can't scan points transaction row", zap.Error(err))
			return nil, 0, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, total, rows.Err()
}
