package repo

import (
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"

	itemrepo "github.com/school-store/backend/internal/repo/item-repo"
	purchaserepo "github.com/school-store/backend/internal/repo/purchase-repo"
	transactionrepo "github.com/school-store/backend/internal/repo/transaction-repo"
	userrepo "github.com/school-store/backend/internal/repo/user-repo"
)

func NewMock(t *testing.T) (*Repositories, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

func TestNew(t *testing.T) {
	repo, mock := NewMock(t)

	assert.NotNil(t, repo.UserRepo)
	assert.NotNil(t, repo.ItemRepo)
	assert.NotNil(t, repo.PurchaseRepo)
	assert.NotNil(t, repo.TransactionRepo)

	assert.IsType(t, &userrepo.Repository{}, repo.UserRepo)
	assert.IsType(t, &itemrepo.Repository{}, repo.ItemRepo)
	assert.IsType(t, &purchaserepo.Repository{}, repo.PurchaseRepo)
	assert.IsType(t, &transactionrepo.Repository{}, repo.TransactionRepo)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unmet expectations: %v", err)
	}
}
