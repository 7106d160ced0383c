package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	_ "github.com/school-store/backend/docs"
	authhandlers "github.com/school-store/backend/internal/handlers/auth"
	pointshandlers "github.com/school-store/backend/internal/handlers/points"
	storehandlers "github.com/school-store/backend/internal/handlers/store"
	userhandlers "github.com/school-store/backend/internal/handlers/user"
	"github.com/school-store/backend/internal/service"
)

func TestNew(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	services := &service.Services{
		AuthService:   authhandlers.NewMockService(ctrl),
		StoreService:  storehandlers.NewMockService(ctrl),
		PointsService: pointshandlers.NewMockService(ctrl),
		UserService:   userhandlers.NewMockService(ctrl),
	}

	h := New(services)
	assert.NotNil(t, h, "Handlers should not be nil")
}

func TestInitRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuthHandler := NewMockAuthHandler(ctrl)
	mockStoreHandler := NewMockStoreHandler(ctrl)
	mockPointsHandler := NewMockPointsHandler(ctrl)
	mockUserHandler := NewMockUserHandler(ctrl)

	mockAuthHandler.EXPECT().Register(gomock.Any(), gomock.Any()).AnyTimes()
	mockAuthHandler.EXPECT().Login(gomock.Any(), gomock.Any()).AnyTimes()
	mockStoreHandler.EXPECT().GetItems(gomock.Any(), gomock.Any()).AnyTimes()
	mockStoreHandler.EXPECT().Purchase(gomock.Any(), gomock.Any()).AnyTimes()
	mockStoreHandler.EXPECT().GetPurchases(gomock.Any(), gomock.Any()).AnyTimes()
	mockPointsHandler.EXPECT().GetPoints(gomock.Any(), gomock.Any()).AnyTimes()
	mockPointsHandler.EXPECT().Award(gomock.Any(), gomock.Any()).AnyTimes()
	mockUserHandler.EXPECT().GetUsers(gomock.Any(), gomock.Any()).AnyTimes()
	mockUserHandler.EXPECT().Me(gomock.Any(), gomock.Any()).AnyTimes()

	h := &Handlers{
		AuthHandler:   mockAuthHandler,
		StoreHandler:  mockStoreHandler,
		PointsHandler: mockPointsHandler,
		UserHandler:   mockUserHandler,
	}

	router := chi.NewRouter()
	h.InitRoutes(router)

	tests := []struct {
		method string
		url    string
		status int
	}{
		{"POST", "/api/auth/register", http.StatusOK},
		{"POST", "/api/auth/login", http.StatusOK},
		{"GET", "/api/store/items", http.StatusUnauthorized},
		{"POST", "/api/store/purchase", http.StatusUnauthorized},
		{"GET", "/api/store/purchases", http.StatusUnauthorized},
		{"POST", "/api/store/items", http.StatusUnauthorized},
		{"GET", "/api/points/1", http.StatusUnauthorized},
		{"POST", "/api/points/award", http.StatusUnauthorized},
		{"GET", "/api/points/leaderboard", http.StatusUnauthorized},
		{"GET", "/api/auth/me", http.StatusUnauthorized},
		{"GET", "/api/users", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.url, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.url, nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
