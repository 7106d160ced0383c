package userrepo

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

const userColumns = `id, username, password_hash, email, first_name, last_name, role, points_balance, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Email,
		&user.FirstName, &user.LastName, &user.Role, &user.PointsBalance,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetByID(ctx context.Context, userID int) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("can't find user by id", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (r *Repository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, username))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("can't find user by username", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (r *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (username, password_hash, email, first_name, last_name, role, points_balance)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		user.Username, user.PasswordHash, user.Email,
		user.FirstName, user.LastName, user.Role, user.PointsBalance,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		zap.L().Error("can't save user", zap.Error(err))
		return nil, err
	}
	return user, nil
}

// Debit decrements the balance only when it covers the amount. The row
// lock taken by UPDATE re-evaluates the predicate after any concurrent
// writer commits, so two racing debits can never both succeed on funds
// that cover only one. Returns ok=false when the balance was short.
func (r *Repository) Debit(ctx context.Context, userID int, amount int) (int, bool, error) {
	query := `
		UPDATE users
		SET points_balance = points_balance - $1, updated_at = now()
		WHERE id = $2 AND points_balance >= $1
		RETURNING points_balance
	`
	var balance int
	err := r.db.QueryRow(ctx, query, amount, userID).Scan(&balance)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, false, nil
		}
		zap.L().Error("can't debit user balance", zap.Error(err))
		return 0, false, err
	}
	return balance, true, nil
}

func (r *Repository) Credit(ctx context.Context, userID int, amount int) (int, error) {
	query := `
		UPDATE users
		SET points_balance = points_balance + $1, updated_at = now()
		WHERE id = $2
		RETURNING points_balance
	`
	var balance int
	err := r.db.QueryRow(ctx, query, amount, userID).Scan(&balance)
	if err != nil {
		zap.L().Error("can't credit user balance", zap.Error(err))
		return 0, err
	}
	return balance, nil
}

func (r *Repository) List(ctx context.Context, role domain.Role) ([]domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE ($1 = '' OR role = $1)
		ORDER BY last_name, first_name, id
	`
	rows, err := r.db.Query(ctx, query, string(role))
	if err != nil {
		zap.L().Error("can't list users", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			zap.L().Error("can't scan user row", zap.Error(err))
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *Repository) ListStudentsByBalance(ctx context.Context, limit int) ([]domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = 'student'
		ORDER BY points_balance DESC, id
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		zap.L().Error("can't list students by balance", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			zap.L().Error("can't scan student row", zap.Error(err))
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}
