package storeservice

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/school-store/backend/internal/domain"
	"github.com/school-store/backend/internal/pg"
)

func NewMock(t *testing.T) (*Service, *MockItemRepo, *MockPurchaseRepo, *MockUserRepo, *MockTransactionRepo, *pg.MockTXManager) {
	ctrl := gomock.NewController(t)
	itemRepo := NewMockItemRepo(ctrl)
	purchaseRepo := NewMockPurchaseRepo(ctrl)
	userRepo := NewMockUserRepo(ctrl)
	transactionRepo := NewMockTransactionRepo(ctrl)
	txManager := pg.NewMockTXManager(ctrl)
	service := New(itemRepo, purchaseRepo, userRepo, transactionRepo, txManager)
	defer ctrl.Finish()
	return service, itemRepo, purchaseRepo, userRepo, transactionRepo, txManager
}

func passthroughTx(txManager *pg.MockTXManager) {
	txManager.EXPECT().
		Begin(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		})
}

func hoodie() *domain.StoreItem {
	return &domain.StoreItem{
		ID:             10,
		Name:           "Hoodie",
		AvailableSizes: []domain.Size{domain.SizeSmall, domain.SizeMedium},
		IsAvailable:    true,
	}
}

func TestPurchase(t *testing.T) {
	tests := []struct {
		name        string
		userID      int
		itemID      int
		size        domain.Size
		quantity    int
		prepareMock func(itemRepo *MockItemRepo, purchaseRepo *MockPurchaseRepo, userRepo *MockUserRepo, transactionRepo *MockTransactionRepo, txManager *pg.MockTXManager)
		check       func(t *testing.T, result *PurchaseResult, err error)
	}{
		{
			name:     "Successful purchase debits balance and records ledger entry",
			userID:   1,
			itemID:   10,
			size:     domain.SizeMedium,
			quantity: 1,
			prepareMock: func(itemRepo *MockItemRepo, purchaseRepo *MockPurchaseRepo, userRepo *MockUserRepo, transactionRepo *MockTransactionRepo, txManager *pg.MockTXManager) {
				itemRepo.EXPECT().GetByID(gomock.Any(), 10).Return(hoodie(), nil)
				userRepo.EXPECT().GetByID(gomock.Any(), 1).Return(&domain.User{ID: 1, Role: domain.RoleStudent, PointsBalance: 300}, nil)
				passthroughTx(txManager)
				userRepo.EXPECT().Debit(gomock.Any(), 1, 250).Return(50, true, nil)
				purchaseRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *domain.Purchase) (*domain.Purchase, error) {
						assert.Equal(t, 250, p.TotalCost)
						assert.Equal(t, domain.PurchaseCompleted, p.Status)
						p.ID = 77
						return p, nil
					})
				transactionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *domain.PointsTransaction) (*domain.PointsTransaction, error) {
						assert.Equal(t, domain.TransactionSpent, tx.Type)
						assert.Equal(t, 250, tx.Amount)
						assert.NotNil(t, tx.ReferenceID)
						assert.Equal(t, 77, *tx.ReferenceID)
						assert.Equal(t, "Purchased 1x Hoodie (medium)", tx.Reason)
						tx.ID = 5
						return tx, nil
					})
			},
			check: func(t *testing.T, result *PurchaseResult, err error) {
				assert.NoError(t, err)
				assert.Equal(t, 50, result.NewBalance)
				assert.Equal(t, 77, result.Purchase.ID)
				assert.Equal(t, 250, result.Purchase.TotalCost)
				assert.Equal(t, "Hoodie", result.Item.Name)
			},
		},
		{
			name:     "Size not offered reports valid size set",
			userID:   1,
			itemID:   10,
			size:     domain.SizeLarge,
			quantity: 1,
			prepareMock: func(itemRepo *MockItemRepo, _ *MockPurchaseRepo, _ *MockUserRepo, _ *MockTransactionRepo, _ *pg.MockTXManager) {
				itemRepo.EXPECT().GetByID(gomock.Any(), 10).Return(hoodie(), nil)
			},
			check: func(t *testing.T, result *PurchaseResult, err error) {
				assert.Nil(t, result)
				var sizeErr *SizeUnavailableError
				assert.ErrorAs(t, err, &sizeErr)
				assert.Equal(t, domain.SizeLarge, sizeErr.Size)
				assert.Equal(t, []domain.Size{domain.SizeSmall, domain.SizeMedium}, sizeErr.AvailableSizes)
			},
		},
		{
			name:     "Insufficient funds reports required and available",
			userID:   1,
			itemID:   10,
			size:     domain.SizeSmall,
			quantity: 1,
			prepareMock: func(itemRepo *MockItemRepo, _ *MockPurchaseRepo, userRepo *MockUserRepo, _ *MockTransactionRepo, _ *pg.MockTXManager) {
				itemRepo.EXPECT().GetByID(gomock.Any(), 10).Return(hoodie(), nil)
				userRepo.EXPECT().GetByID(gomock.Any(), 1).Return(&domain.User{ID: 1, Role: domain.RoleStudent, PointsBalance: 40}, nil)
			},
			check: func(t *testing.T, result *PurchaseResult, err error) {
				assert.Nil(t, result)
				var fundsErr *InsufficientFundsError
				assert.ErrorAs(t, err, &fundsErr)
				assert.Equal(t, 100, fundsErr.Required)
				assert.Equal(t, 40, fundsErr.Available)
			},
		},
		{
			name:     "Concurrent debit loses the race",
			userID:   1,
			itemID:   10,
			size:     domain.SizeMedium,
			quantity: 1,
			prepareMock: func(itemRepo *MockItemRepo, _ *MockPurchaseRepo, userRepo *MockUserRepo, _ *MockTransactionRepo, txManager *pg.MockTXManager) {
				itemRepo.EXPECT().GetByID(gomock.Any(), 10).Return(hoodie(), nil)
				userRepo.EXPECT().GetByID(gomock.Any(), 1).Return(&domain.User{ID: 1, Role: domain.RoleStudent, PointsBalance: 300}, nil)
				passthroughTx(txManager)
				// Another purchase committed first; the conditional debit
				// finds the balance short.
				userRepo.EXPECT().Debit(gomock.Any(), 1, 250).Return(0, false, nil)
				userRepo.EXPECT().GetByID(gomock.Any(), 1).Return(&domain.User{ID: 1, Role: domain.RoleStudent, PointsBalance: 50}, nil)
			},
			check: func(t *testing.T, result *PurchaseResult, err error) {
				assert.Nil(t, result)
				var fundsErr *InsufficientFundsError
				assert.ErrorAs(t, err, &fundsErr)
				assert.Equal(t, 250, fundsErr.Required)
				assert.Equal(t, 50, fundsErr.Available)
			},
		},
		{
			name:     "Zero quantity rejected before any lookup",
			userID:   1,
			itemID:   10,
			size:     domain.SizeSmall,
			quantity: 0,
			check: func(t *testing.T, result *PurchaseResult, err error) {
				assert.Nil(t, result)
				assert.ErrorIs(t, err, ErrInvalidQuantity)
			},
		},
		{
			name:     "Negative quantity rejected before any lookup",
			userID:   1,
			itemID:   10,
			size:     domain.SizeSmall,
			quantity: -3,
			check: func(t *testing.T, result *PurchaseResult, err error) {
				assert.Nil(t, result)
				assert.ErrorIs(t, err, ErrInvalidQuantity)
			},
		},
		{
			name:     "Quantity above the cap rejected before any lookup",
			userID:   1,
			itemID:   10,
			size:     domain.SizeSmall,
			quantity: maxPurchaseQuantity + 1,
			check: func(t *testing.T, result *PurchaseResult, err error) {
				assert.Nil(t, result)
				assert.ErrorIs(t, err, ErrInvalidQuantity)
			},
		},
		{
			name:     "Huge quantity cannot wrap the cost past the balance check",
			userID:   1,
			itemID:   10,
			size:     domain.SizeSmall,
			quantity: 368934881474191033,
			check: func(t *testing.T, result *PurchaseResult, err error) {
				assert.Nil(t, result)
				assert.ErrorIs(t, err, ErrInvalidQuantity)
			},
		},
		{
			name:     "Unknown item",
			userID:   1,
			itemID:   404,
			size:     domain.SizeSmall,
			quantity: 1,
			prepareMock: func(itemRepo *MockItemRepo, _ *MockPurchaseRepo, _ *MockUserRepo, _ *MockTransactionRepo, _ *pg.MockTXManager) {
				itemRepo.EXPECT().GetByID(gomock.Any(), 404).Return(nil, nil)
			},
			check: func(t *testing.T, result *PurchaseResult, err error) {
				assert.Nil(t, result)
				assert.ErrorIs(t, err, ErrItemNotFound)
			},
		},
		{
			name:     "Unavailable item",
			userID:   1,
			itemID:   10,
			size:     domain.SizeSmall,
			quantity: 1,
			prepareMock: func(itemRepo *MockItemRepo, _ *MockPurchaseRepo, _ *MockUserRepo, _ *MockTransactionRepo, _ *pg.MockTXManager) {
				item := hoodie()
				item.IsAvailable = false
				itemRepo.EXPECT().GetByID(gomock.Any(), 10).Return(item, nil)
			},
			check: func(t *testing.T, result *PurchaseResult, err error) {
				assert.Nil(t, result)
				assert.ErrorIs(t, err, ErrItemNotAvailable)
			},
		},
		{
			name:     "Item with empty size set can never be purchased",
			userID:   1,
			itemID:   10,
			size:     domain.SizeMedium,
			quantity: 1,
			prepareMock: func(itemRepo *MockItemRepo, _ *MockPurchaseRepo, _ *MockUserRepo, _ *MockTransactionRepo, _ *pg.MockTXManager) {
				item := hoodie()
				item.AvailableSizes = nil
				itemRepo.EXPECT().GetByID(gomock.Any(), 10).Return(item, nil)
			},
			check: func(t *testing.T, result *PurchaseResult, err error) {
				assert.Nil(t, result)
				var sizeErr *SizeUnavailableError
				assert.ErrorAs(t, err, &sizeErr)
				assert.Empty(t, sizeErr.AvailableSizes)
			},
		},
		{
			name:     "Quantity multiplies the tier price",
			userID:   1,
			itemID:   10,
			size:     domain.SizeSmall,
			quantity: 3,
			prepareMock: func(itemRepo *MockItemRepo, purchaseRepo *MockPurchaseRepo, userRepo *MockUserRepo, transactionRepo *MockTransactionRepo, txManager *pg.MockTXManager) {
				itemRepo.EXPECT().GetByID(gomock.Any(), 10).Return(hoodie(), nil)
				userRepo.EXPECT().GetByID(gomock.Any(), 1).Return(&domain.User{ID: 1, Role: domain.RoleStudent, PointsBalance: 300}, nil)
				passthroughTx(txManager)
				userRepo.EXPECT().Debit(gomock.Any(), 1, 300).Return(0, true, nil)
				purchaseRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *domain.Purchase) (*domain.Purchase, error) {
						p.ID = 78
						return p, nil
					})
				transactionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *domain.PointsTransaction) (*domain.PointsTransaction, error) {
						assert.Equal(t, 300, tx.Amount)
						return tx, nil
					})
			},
			check: func(t *testing.T, result *PurchaseResult, err error) {
				assert.NoError(t, err)
				assert.Equal(t, 0, result.NewBalance)
				assert.Equal(t, 300, result.Purchase.TotalCost)
			},
		},
		{
			name:     "Ledger write failure rolls the whole unit back",
			userID:   1,
			itemID:   10,
			size:     domain.SizeMedium,
			quantity: 1,
			prepareMock: func(itemRepo *MockItemRepo, purchaseRepo *MockPurchaseRepo, userRepo *MockUserRepo, transactionRepo *MockTransactionRepo, txManager *pg.MockTXManager) {
				itemRepo.EXPECT().GetByID(gomock.Any(), 10).Return(hoodie(), nil)
				userRepo.EXPECT().GetByID(gomock.Any(), 1).Return(&domain.User{ID: 1, Role: domain.RoleStudent, PointsBalance: 300}, nil)
				txManager.EXPECT().
					Begin(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, fn func(ctx context.Context) error) error {
						if err := fn(ctx); err != nil {
							return err
						}
						return nil
					})
				userRepo.EXPECT().Debit(gomock.Any(), 1, 250).Return(50, true, nil)
				purchaseRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *domain.Purchase) (*domain.Purchase, error) {
						p.ID = 79
						return p, nil
					})
				transactionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("db error"))
			},
			check: func(t *testing.T, result *PurchaseResult, err error) {
				assert.Nil(t, result)
				assert.EqualError(t, err, "db error")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, itemRepo, purchaseRepo, userRepo, transactionRepo, txManager := NewMock(t)
			if tt.prepareMock != nil {
				tt.prepareMock(itemRepo, purchaseRepo, userRepo, transactionRepo, txManager)
			}

			result, err := service.Purchase(context.Background(), tt.userID, tt.itemID, tt.size, tt.quantity)
			tt.check(t, result, err)
		})
	}
}

func TestListPurchases(t *testing.T) {
	t.Run("Student is scoped to their own purchases", func(t *testing.T) {
		service, itemRepo, purchaseRepo, _, _, _ := NewMock(t)

		purchaseRepo.EXPECT().List(gomock.Any(), 1, 20, 0).Return([]domain.Purchase{
			{ID: 3, UserID: 1, ItemID: 10, Quantity: 1, Size: domain.SizeSmall, TotalCost: 100, Status: domain.PurchaseCompleted},
		}, 1, nil)
		itemRepo.EXPECT().GetByID(gomock.Any(), 10).Return(hoodie(), nil)

		// Requests for someone else's purchases silently collapse to the
		// actor's own.
		details, total, err := service.ListPurchases(context.Background(), 1, domain.RoleStudent, 99, 1, 20)
		assert.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Len(t, details, 1)
		assert.Equal(t, "Hoodie", details[0].Item.Name)
	})

	t.Run("Teacher may filter by user", func(t *testing.T) {
		service, _, purchaseRepo, _, _, _ := NewMock(t)

		purchaseRepo.EXPECT().List(gomock.Any(), 7, 10, 10).Return(nil, 0, nil)

		details, total, err := service.ListPurchases(context.Background(), 2, domain.RoleTeacher, 7, 2, 10)
		assert.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, details)
	})
}

func TestGetPurchase(t *testing.T) {
	tests := []struct {
		name        string
		actorID     int
		actorRole   domain.Role
		purchaseID  int
		prepareMock func(itemRepo *MockItemRepo, purchaseRepo *MockPurchaseRepo)
		expectedErr error
	}{
		{
			name:       "Owner reads own purchase",
			actorID:    1,
			actorRole:  domain.RoleStudent,
			purchaseID: 3,
			prepareMock: func(itemRepo *MockItemRepo, purchaseRepo *MockPurchaseRepo) {
				purchaseRepo.EXPECT().GetByID(gomock.Any(), 3).Return(&domain.Purchase{ID: 3, UserID: 1, ItemID: 10}, nil)
				itemRepo.EXPECT().GetByID(gomock.Any(), 10).Return(hoodie(), nil)
			},
		},
		{
			name:       "Student denied another user's purchase",
			actorID:    2,
			actorRole:  domain.RoleStudent,
			purchaseID: 3,
			prepareMock: func(_ *MockItemRepo, purchaseRepo *MockPurchaseRepo) {
				purchaseRepo.EXPECT().GetByID(gomock.Any(), 3).Return(&domain.Purchase{ID: 3, UserID: 1, ItemID: 10}, nil)
			},
			expectedErr: ErrAccessDenied,
		},
		{
			name:       "Unknown purchase",
			actorID:    1,
			actorRole:  domain.RoleStudent,
			purchaseID: 404,
			prepareMock: func(_ *MockItemRepo, purchaseRepo *MockPurchaseRepo) {
				purchaseRepo.EXPECT().GetByID(gomock.Any(), 404).Return(nil, nil)
			},
			expectedErr: ErrPurchaseNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, itemRepo, purchaseRepo, _, _, _ := NewMock(t)
			if tt.prepareMock != nil {
				tt.prepareMock(itemRepo, purchaseRepo)
			}

			detail, err := service.GetPurchase(context.Background(), tt.actorID, tt.actorRole, tt.purchaseID)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, detail)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, detail)
			}
		})
	}
}
