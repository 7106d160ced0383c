package service

import (
	"github.com/school-store/backend/internal/handlers/auth"
	"github.com/school-store/backend/internal/handlers/points"
	"github.com/school-store/backend/internal/handlers/store"
	"github.com/school-store/backend/internal/handlers/user"

	pkgauth "github.com/school-store/backend/pkg/auth"

	"github.com/school-store/backend/internal/pg"
	"github.com/school-store/backend/internal/repo"
	"github.com/school-store/backend/internal/service/authservice"
	"github.com/school-store/backend/internal/service/pointsservice"
	"github.com/school-store/backend/internal/service/storeservice"
	"github.com/school-store/backend/internal/service/userservice"
)

type Services struct {
	AuthService   auth.Service
	StoreService  store.Service
	PointsService points.Service
	UserService   user.Service
}

func New(repo *repo.Repositories, txManager pg.TXManager) *Services {
	authService := authservice.New(repo.UserRepo, &pkgauth.HashService{}, &pkgauth.JWTService{})
	storeService := storeservice.New(repo.ItemRepo, repo.PurchaseRepo, repo.UserRepo, repo.TransactionRepo, txManager)
	pointsService := pointsservice.New(repo.UserRepo, repo.TransactionRepo, txManager)
	userService := userservice.New(repo.UserRepo)

	return &Services{
		AuthService:   authService,
		StoreService:  storeService,
		PointsService: pointsService,
		UserService:   userService,
	}
}
