package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/school-store/backend/docs"
	authhandlers "github.com/school-store/backend/internal/handlers/auth"
	pointshandlers "github.com/school-store/backend/internal/handlers/points"
	storehandlers "github.com/school-store/backend/internal/handlers/store"
	userhandlers "github.com/school-store/backend/internal/handlers/user"
	"github.com/school-store/backend/internal/service"
	"github.com/school-store/backend/pkg/auth"
)

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
}

type StoreHandler interface {
	GetItems(w http.ResponseWriter, r *http.Request)
	GetItem(w http.ResponseWriter, r *http.Request)
	CreateItem(w http.ResponseWriter, r *http.Request)
	UpdateItem(w http.ResponseWriter, r *http.Request)
	DeleteItem(w http.ResponseWriter, r *http.Request)
	GetCategories(w http.ResponseWriter, r *http.Request)
	Purchase(w http.ResponseWriter, r *http.Request)
	GetPurchases(w http.ResponseWriter, r *http.Request)
	GetPurchase(w http.ResponseWriter, r *http.Request)
}

type PointsHandler interface {
	GetPoints(w http.ResponseWriter, r *http.Request)
	Award(w http.ResponseWriter, r *http.Request)
	GetTransactions(w http.ResponseWriter, r *http.Request)
	GetAllTransactions(w http.ResponseWriter, r *http.Request)
	GetLeaderboard(w http.ResponseWriter, r *http.Request)
}

type UserHandler interface {
	GetUsers(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	AuthHandler   AuthHandler
	StoreHandler  StoreHandler
	PointsHandler PointsHandler
	UserHandler   UserHandler
}

func New(s *service.Services) *Handlers {
	return &Handlers{
		AuthHandler:   authhandlers.New(s.AuthService),
		StoreHandler:  storehandlers.New(s.StoreService),
		PointsHandler: pointshandlers.New(s.PointsService),
		UserHandler:   userhandlers.New(s.UserService),
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.AuthHandler.Register)
			r.Post("/login", h.AuthHandler.Login)
			r.With(auth.AuthMiddleware).Get("/me", h.UserHandler.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.AuthMiddleware)

			r.With(auth.TeacherMiddleware).Get("/users", h.UserHandler.GetUsers)

			r.Route("/store", func(r chi.Router) {
				r.Get("/items", h.StoreHandler.GetItems)
				r.Get("/items/{id}", h.StoreHandler.GetItem)
				r.Get("/categories", h.StoreHandler.GetCategories)
				r.Post("/purchase", h.StoreHandler.Purchase)
				r.Get("/purchases", h.StoreHandler.GetPurchases)
				r.Get("/purchases/{id}", h.StoreHandler.GetPurchase)

				r.Group(func(r chi.Router) {
					r.Use(auth.TeacherMiddleware)
					r.Post("/items", h.StoreHandler.CreateItem)
					r.Put("/items/{id}", h.StoreHandler.UpdateItem)
					r.Delete("/items/{id}", h.StoreHandler.DeleteItem)
				})
			})

			r.Route("/points", func(r chi.Router) {
				r.Get("/{userID}", h.PointsHandler.GetPoints)
				r.Get("/transactions/{userID}", h.PointsHandler.GetTransactions)

				r.Group(func(r chi.Router) {
					r.Use(auth.TeacherMiddleware)
					r.Post("/award", h.PointsHandler.Award)
					r.Get("/transactions", h.PointsHandler.GetAllTransactions)
					r.Get("/leaderboard", h.PointsHandler.GetLeaderboard)
				})
			})
		})
	})

	return r
}
