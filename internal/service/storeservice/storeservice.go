package storeservice

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/school-store/backend/internal/domain"
	"github.com/school-store/backend/internal/pg"
)

//go:generate mockgen -source=storeservice.go -destination=storeservice_mock.go -package=storeservice

type ItemRepo interface {
	GetByID(ctx context.Context, itemID int) (*domain.StoreItem, error)
	List(ctx context.Context, category string, availableOnly bool) ([]domain.StoreItem, error)
	Create(ctx context.Context, item *domain.StoreItem) (*domain.StoreItem, error)
	Update(ctx context.Context, item *domain.StoreItem) (*domain.StoreItem, error)
	Delete(ctx context.Context, itemID int) (bool, error)
	Categories(ctx context.Context) ([]string, error)
}

type PurchaseRepo interface {
	Create(ctx context.Context, purchase *domain.Purchase) (*domain.Purchase, error)
	GetByID(ctx context.Context, purchaseID int) (*domain.Purchase, error)
	List(ctx context.Context, userID int, limit, offset int) ([]domain.Purchase, int, error)
}

type UserRepo interface {
	GetByID(ctx context.Context, userID int) (*domain.User, error)
	Debit(ctx context.Context, userID int, amount int) (int, bool, error)
}

type TransactionRepo interface {
	Create(ctx context.Context, tx *domain.PointsTransaction) (*domain.PointsTransaction, error)
}

type Service struct {
	itemRepo        ItemRepo
	purchaseRepo    PurchaseRepo
	userRepo        UserRepo
	transactionRepo TransactionRepo
	txManager       pg.TXManager
}

func New(itemRepo ItemRepo, purchaseRepo PurchaseRepo, userRepo UserRepo, transactionRepo TransactionRepo, txManager pg.TXManager) *Service {
	return &Service{
		itemRepo:        itemRepo,
		purchaseRepo:    purchaseRepo,
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		txManager:       txManager,
	}
}

type PurchaseResult struct {
	Purchase   *domain.Purchase
	Item       *domain.StoreItem
	NewBalance int
}

// maxPurchaseQuantity caps a single order. The bound keeps
// price*quantity within int range so the cost can never wrap.
const maxPurchaseQuantity = 100

// Purchase validates the request, then debits the balance and writes the
// purchase row plus its ledger entry in one transaction. Either all three
// effects commit or none do.
func (s *Service) Purchase(ctx context.Context, userID, itemID int, size domain.Size, quantity int) (*PurchaseResult, error) {
	if quantity <= 0 || quantity > maxPurchaseQuantity {
		return nil, ErrInvalidQuantity
	}

	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		zap.L().Error("failed to get store item", zap.Error(err))
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	if !item.IsAvailable {
		return nil, ErrItemNotAvailable
	}

	price, ok := item.PriceForSize(size)
	if !ok {
		return nil, &SizeUnavailableError{Size: size, AvailableSizes: item.AvailableSizes}
	}
	totalCost := price * quantity

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get user", zap.Error(err))
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.PointsBalance < totalCost {
		return nil, &InsufficientFundsError{Required: totalCost, Available: user.PointsBalance}
	}

	purchase := &domain.Purchase{
		UserID:    userID,
		ItemID:    itemID,
		Quantity:  quantity,
		Size:      size,
		TotalCost: totalCost,
		Status:    domain.PurchaseCompleted,
	}
	var newBalance int

	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		// The conditional debit re-checks the balance under the row
		// lock, so a racing purchase or award cannot make both debits
		// succeed on funds that cover only one.
		balance, ok, err := s.userRepo.Debit(ctx, userID, totalCost)
		if err != nil {
			return err
		}
		if !ok {
			current, err := s.userRepo.GetByID(ctx, userID)
			if err != nil {
				return err
			}
			available := 0
			if current != nil {
				available = current.PointsBalance
			}
			return &InsufficientFundsError{Required: totalCost, Available: available}
		}
		newBalance = balance

		if _, err := s.purchaseRepo.Create(ctx, purchase); err != nil {
			return err
		}

		transaction := &domain.PointsTransaction{
			UserID:      userID,
			Type:        domain.TransactionSpent,
			Amount:      totalCost,
			Reason:      fmt.Sprintf("Purchased %dx %s (%s)", quantity, item.Name, size),
			ReferenceID: &purchase.ID,
		}
		if _, err := s.transactionRepo.Create(ctx, transaction); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		zap.L().Error("purchase failed",
			zap.Int("userID", userID),
			zap.Int("itemID", itemID),
			zap.Error(err),
		)
		return nil, err
	}

	zap.L().Info("purchase completed",
		zap.Int("userID", userID),
		zap.Int("purchaseID", purchase.ID),
		zap.Int("totalCost", totalCost),
	)
	return &PurchaseResult{Purchase: purchase, Item: item, NewBalance: newBalance}, nil
}

type PurchaseDetail struct {
	Purchase domain.Purchase
	Item     *domain.StoreItem
}

// ListPurchases returns purchases newest first. Students only ever see
// their own; teachers may filter by user.
func (s *Service) ListPurchases(ctx context.Context, actorID int, actorRole domain.Role, userID, page, perPage int) ([]PurchaseDetail, int, error) {
	if actorRole != domain.RoleTeacher {
		userID = actorID
	}

	purchases, total, err := s.purchaseRepo.List(ctx, userID, perPage, (page-1)*perPage)
	if err != nil {
		zap.L().Error("failed to list purchases", zap.Error(err))
		return nil, 0, err
	}

	details := make([]PurchaseDetail, len(purchases))
	items := make(map[int]*domain.StoreItem)
	for i, p := range purchases {
		item, ok := items[p.ItemID]
		if !ok {
			item, err = s.itemRepo.GetByID(ctx, p.ItemID)
			if err != nil {
				zap.L().Error("failed to get item for purchase", zap.Error(err))
				return nil, 0, err
			}
			items[p.ItemID] = item
		}
		details[i] = PurchaseDetail{Purchase: p, Item: item}
	}
	return details, total, nil
}

func (s *Service) GetPurchase(ctx context.Context, actorID int, actorRole domain.Role, purchaseID int) (*PurchaseDetail, error) {
	purchase, err := s.purchaseRepo.GetByID(ctx, purchaseID)
	if err != nil {
		zap.L().Error("failed to get purchase", zap.Error(err))
		return nil, err
	}
	if purchase == nil {
		return nil, ErrPurchaseNotFound
	}
	if actorRole != domain.RoleTeacher && purchase.UserID != actorID {
		return nil, ErrAccessDenied
	}

	item, err := s.itemRepo.GetByID(ctx, purchase.ItemID)
	if err != nil {
		zap.L().Error("failed to get item for purchase", zap.Error(err))
		return nil, err
	}
	return &PurchaseDetail{Purchase: *purchase, Item: item}, nil
}
