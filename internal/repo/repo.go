package repo

import (
	"github.com/school-store/backend/internal/pg"
	itemrepo "github.com/school-store/backend/internal/repo/item-repo"
	purchaserepo "github.com/school-store/backend/internal/repo/purchase-repo"
	transactionrepo "github.com/school-store/backend/internal/repo/transaction-repo"
	userrepo "github.com/school-store/backend/internal/repo/user-repo"
)

type Repositories struct {
	UserRepo        *userrepo.Repository
	ItemRepo        *itemrepo.Repository
	PurchaseRepo    *purchaserepo.Repository
	TransactionRepo *transactionrepo.Repository
}

func New(conn pg.Database) *Repositories {
	return &Repositories{
		UserRepo:        userrepo.New(conn),
		ItemRepo:        itemrepo.New(conn),
		PurchaseRepo:    purchaserepo.New(conn),
		TransactionRepo: transactionrepo.New(conn),
	}
}
