package pointsservice

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/school-store/backend/internal/domain"
	"github.com/school-store/backend/internal/pg"
)

//go:generate mockgen -source=pointsservice.go -destination=pointsservice_mock.go -package=pointsservice

const nameLookupConcurrency = 4

type UserRepo interface {
	GetByID(ctx context.Context, userID int) (*domain.User, error)
	Credit(ctx context.Context, userID int, amount int) (int, error)
	ListStudentsByBalance(ctx context.Context, limit int) ([]domain.User, error)
}

type TransactionRepo interface {
	Create(ctx context.Context, tx *domain.PointsTransaction) (*domain.PointsTransaction, error)
	List(ctx context.Context, userID int, limit, offset int) ([]domain.PointsTransaction, int, error)
}

var (
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrInvalidTarget = errors.New("can only award points to students")
	ErrUserNotFound  = errors.New("user not found")
	ErrAccessDenied  = errors.New("access denied")
)

type Service struct {
	userRepo        UserRepo
	transactionRepo TransactionRepo
	txManager       pg.TXManager
}

func New(userRepo UserRepo, transactionRepo TransactionRepo, txManager pg.TXManager) *Service {
	return &Service{
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		txManager:       txManager,
	}
}

type AwardResult struct {
	Transaction *domain.PointsTransaction
	NewBalance  int
}

// Award credits the student's balance and records the earned ledger entry
// in one transaction.
func (s *Service) Award(ctx context.Context, teacherID, studentID, amount int, reason string) (*AwardResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	// The actor's role is re-checked against the database, not just the
	// token claim.
	teacher, err := s.userRepo.GetByID(ctx, teacherID)
	if err != nil {
		zap.L().Error("failed to get awarding teacher", zap.Error(err))
		return nil, err
	}
	if teacher == nil || teacher.Role != domain.RoleTeacher {
		return nil, ErrAccessDenied
	}

	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		zap.L().Error("failed to get student", zap.Error(err))
		return nil, err
	}
	if student == nil {
		return nil, ErrUserNotFound
	}
	if student.Role != domain.RoleStudent {
		return nil, ErrInvalidTarget
	}

	transaction := &domain.PointsTransaction{
		UserID:    studentID,
		Type:      domain.TransactionEarned,
		Amount:    amount,
		Reason:    reason,
		CreatedBy: &teacherID,
	}
	var newBalance int

	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		balance, err := s.userRepo.Credit(ctx, studentID, amount)
		if err != nil {
			return err
		}
		newBalance = balance

		if _, err := s.transactionRepo.Create(ctx, transaction); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		zap.L().Error("award failed",
			zap.Int("teacherID", teacherID),
			zap.Int("studentID", studentID),
			zap.Error(err),
		)
		return nil, err
	}

	zap.L().Info("points awarded",
		zap.Int("teacherID", teacherID),
		zap.Int("studentID", studentID),
		zap.Int("amount", amount),
	)
	return &AwardResult{Transaction: transaction, NewBalance: newBalance}, nil
}

// GetPoints returns the user's balance. Students may only read their own.
func (s *Service) GetPoints(ctx context.Context, actorID int, actorRole domain.Role, userID int) (*domain.User, error) {
	if actorRole != domain.RoleTeacher && actorID != userID {
		return nil, ErrAccessDenied
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get user points", zap.Error(err))
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ListTransactions returns the user's ledger newest first. Students may
// only read their own.
func (s *Service) ListTransactions(ctx context.Context, actorID int, actorRole domain.Role, userID, page, perPage int) ([]domain.PointsTransaction, int, error) {
	if actorRole != domain.RoleTeacher && actorID != userID {
		return nil, 0, ErrAccessDenied
	}
	transactions, total, err := s.transactionRepo.List(ctx, userID, perPage, (page-1)*perPage)
	if err != nil {
		zap.L().Error("failed to list transactions", zap.Error(err))
		return nil, 0, err
	}
	return transactions, total, nil
}

type TransactionDetail struct {
	Transaction domain.PointsTransaction
	UserName    string
	TeacherName string
}

// ListAllTransactions is the school-wide feed for teachers, enriched
// with user and awarding-teacher display names. userID = 0 means all.
func (s *Service) ListAllTransactions(ctx context.Context, userID, page, perPage int) ([]TransactionDetail, int, error) {
	transactions, total, err := s.transactionRepo.List(ctx, userID, perPage, (page-1)*perPage)
	if err != nil {
		zap.L().Error("failed to list all transactions", zap.Error(err))
		return nil, 0, err
	}

	details := make([]TransactionDetail, len(transactions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(nameLookupConcurrency)
	for i, tx := range transactions {
		i, tx := i, tx
		g.Go(func() error {
			detail := TransactionDetail{Transaction: tx}
			user, err := s.userRepo.GetByID(gctx, tx.UserID)
			if err != nil {
				return err
			}
			if user != nil {
				detail.UserName = user.FirstName + " " + user.LastName
			}
			if tx.CreatedBy != nil {
				teacher, err := s.userRepo.GetByID(gctx, *tx.CreatedBy)
				if err != nil {
					return err
				}
				if teacher != nil {
					detail.TeacherName = teacher.FirstName + " " + teacher.LastName
				}
			}
			details[i] = detail
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		zap.L().Error("failed to enrich transactions", zap.Error(err))
		return nil, 0, err
	}
	return details, total, nil
}

type LeaderboardEntry struct {
	Rank    int
	Student domain.User
}

func (s *Service) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	students, err := s.userRepo.ListStudentsByBalance(ctx, limit)
	if err != nil {
		zap.L().Error("failed to build leaderboard", zap.Error(err))
		return nil, err
	}
	entries := make([]LeaderboardEntry, len(students))
	for i, student := range students {
		entries[i] = LeaderboardEntry{Rank: i + 1, Student: student}
	}
	return entries, nil
}
