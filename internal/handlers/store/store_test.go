package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/school-store/backend/internal/domain"
	"github.com/school-store/backend/internal/dto"
	"github.com/school-store/backend/internal/service/storeservice"
	"github.com/school-store/backend/pkg/auth"
)

func NewMock(t *testing.T) (*StoreHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	defer ctrl.Finish()
	return handler, service
}

func authCtx(userID int, role domain.Role) context.Context {
	ctx := context.WithValue(context.Background(), auth.UserIDKey, userID)
	return context.WithValue(ctx, auth.RoleKey, string(role))
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func hoodie() *domain.StoreItem {
	return &domain.StoreItem{
		ID:             10,
		Name:           "Hoodie",
		AvailableSizes: []domain.Size{domain.SizeSmall, domain.SizeMedium},
		Category:       "apparel",
		IsAvailable:    true,
	}
}

func TestPurchaseHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
		checkBody    func(t *testing.T, body []byte)
	}{
		{
			name: "Successful purchase",
			body: `{"item_id":10,"size":"medium","quantity":1}`,
			prepareMock: func() {
				service.EXPECT().
					Purchase(gomock.Any(), 1, 10, domain.SizeMedium, 1).
					Return(&storeservice.PurchaseResult{
						Purchase: &domain.Purchase{
							ID: 77, UserID: 1, ItemID: 10, Quantity: 1,
							Size: domain.SizeMedium, TotalCost: 250, Status: domain.PurchaseCompleted,
						},
						Item:       hoodie(),
						NewBalance: 50,
					}, nil)
			},
			expectedCode: http.StatusCreated,
			checkBody: func(t *testing.T, body []byte) {
				var resp dto.PurchaseResponseDTO
				assert.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, "Purchase successful", resp.Message)
				assert.Equal(t, 77, resp.Purchase.ID)
				assert.Equal(t, 250, resp.Purchase.TotalCost)
				assert.Equal(t, 50, resp.NewBalance)
			},
		},
		{
			name: "Size alias is normalized",
			body: `{"item_id":10,"size":"XS","quantity":1}`,
			prepareMock: func() {
				service.EXPECT().
					Purchase(gomock.Any(), 1, 10, domain.SizeXSmall, 1).
					Return(&storeservice.PurchaseResult{
						Purchase: &domain.Purchase{ID: 80, UserID: 1, ItemID: 10, Quantity: 1, Size: domain.SizeXSmall, TotalCost: 50},
						Item:     hoodie(),
					}, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "Invalid request body",
			body:         `{"item_id":invalid}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Unknown size name",
			body:         `{"item_id":10,"size":"gigantic","quantity":1}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
			checkBody: func(t *testing.T, body []byte) {
				assert.Contains(t, string(body), "Invalid size: gigantic")
			},
		},
		{
			name: "Size not offered for the item",
			body: `{"item_id":10,"size":"large","quantity":1}`,
			prepareMock: func() {
				service.EXPECT().
					Purchase(gomock.Any(), 1, 10, domain.SizeLarge, 1).
					Return(nil, &storeservice.SizeUnavailableError{
						Size:           domain.SizeLarge,
						AvailableSizes: []domain.Size{domain.SizeSmall, domain.SizeMedium},
					})
			},
			expectedCode: http.StatusBadRequest,
			checkBody: func(t *testing.T, body []byte) {
				var resp dto.SizeUnavailableResponseDTO
				assert.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, []string{"small", "medium"}, resp.AvailableSizes)
			},
		},
		{
			name: "Insufficient points",
			body: `{"item_id":10,"size":"small","quantity":1}`,
			prepareMock: func() {
				service.EXPECT().
					Purchase(gomock.Any(), 1, 10, domain.SizeSmall, 1).
					Return(nil, &storeservice.InsufficientFundsError{Required: 100, Available: 40})
			},
			expectedCode: http.StatusBadRequest,
			checkBody: func(t *testing.T, body []byte) {
				var resp dto.InsufficientFundsResponseDTO
				assert.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, 100, resp.Required)
				assert.Equal(t, 40, resp.Available)
			},
		},
		{
			name: "Item not found",
			body: `{"item_id":404,"size":"small","quantity":1}`,
			prepareMock: func() {
				service.EXPECT().
					Purchase(gomock.Any(), 1, 404, domain.SizeSmall, 1).
					Return(nil, storeservice.ErrItemNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name: "Internal server error",
			body: `{"item_id":10,"size":"small","quantity":1}`,
			prepareMock: func() {
				service.EXPECT().
					Purchase(gomock.Any(), 1, 10, domain.SizeSmall, 1).
					Return(nil, errors.New("error"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			r := httptest.NewRequest(http.MethodPost, "/api/store/purchase", bytes.NewBufferString(tt.body))
			r = r.WithContext(authCtx(1, domain.RoleStudent))
			w := httptest.NewRecorder()

			handler.Purchase(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.checkBody != nil {
				tt.checkBody(t, w.Body.Bytes())
			}
		})
	}
}

func TestGetItemsHandler(t *testing.T) {
	handler, service := NewMock(t)

	t.Run("Listing includes size pricing", func(t *testing.T) {
		service.EXPECT().
			ListItems(gomock.Any(), "apparel", true).
			Return([]domain.StoreItem{*hoodie()}, nil)

		r := httptest.NewRequest(http.MethodGet, "/api/store/items?category=apparel", nil)
		r = r.WithContext(authCtx(1, domain.RoleStudent))
		w := httptest.NewRecorder()

		handler.GetItems(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		var items []dto.ItemResponseDTO
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
		assert.Len(t, items, 1)
		assert.Equal(t, map[string]int{"small": 100, "medium": 250}, items[0].SizePricing)
	})

	t.Run("available_only=false is passed through", func(t *testing.T) {
		service.EXPECT().
			ListItems(gomock.Any(), "", false).
			Return(nil, nil)

		r := httptest.NewRequest(http.MethodGet, "/api/store/items?available_only=false", nil)
		r = r.WithContext(authCtx(1, domain.RoleStudent))
		w := httptest.NewRecorder()

		handler.GetItems(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestCreateItemHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Successful create",
			body: `{"name":"Hoodie","available_sizes":["small","medium"],"category":"apparel"}`,
			prepareMock: func() {
				service.EXPECT().
					CreateItem(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, item *domain.StoreItem) (*domain.StoreItem, error) {
						assert.Equal(t, []domain.Size{domain.SizeSmall, domain.SizeMedium}, item.AvailableSizes)
						assert.True(t, item.IsAvailable)
						item.ID = 10
						return item, nil
					})
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "Missing name",
			body:         `{"available_sizes":["small"]}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Unknown size name rejected",
			body:         `{"name":"Hoodie","available_sizes":["small","gigantic"]}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Empty size set rejected by service",
			body: `{"name":"Hoodie","available_sizes":[]}`,
			prepareMock: func() {
				service.EXPECT().
					CreateItem(gomock.Any(), gomock.Any()).
					Return(nil, storeservice.ErrNoValidSizes)
			},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			r := httptest.NewRequest(http.MethodPost, "/api/store/items", bytes.NewBufferString(tt.body))
			r = r.WithContext(authCtx(2, domain.RoleTeacher))
			w := httptest.NewRecorder()

			handler.CreateItem(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestDeleteItemHandler(t *testing.T) {
	handler, service := NewMock(t)

	t.Run("Successful delete", func(t *testing.T) {
		service.EXPECT().DeleteItem(gomock.Any(), 10).Return(nil)

		r := httptest.NewRequest(http.MethodDelete, "/api/store/items/10", nil)
		r = withURLParam(r.WithContext(authCtx(2, domain.RoleTeacher)), "id", "10")
		w := httptest.NewRecorder()

		handler.DeleteItem(w, r)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Item not found", func(t *testing.T) {
		service.EXPECT().DeleteItem(gomock.Any(), 404).Return(storeservice.ErrItemNotFound)

		r := httptest.NewRequest(http.MethodDelete, "/api/store/items/404", nil)
		r = withURLParam(r.WithContext(authCtx(2, domain.RoleTeacher)), "id", "404")
		w := httptest.NewRecorder()

		handler.DeleteItem(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Item with purchases", func(t *testing.T) {
		service.EXPECT().DeleteItem(gomock.Any(), 10).Return(storeservice.ErrItemInUse)

		r := httptest.NewRequest(http.MethodDelete, "/api/store/items/10", nil)
		r = withURLParam(r.WithContext(authCtx(2, domain.RoleTeacher)), "id", "10")
		w := httptest.NewRecorder()

		handler.DeleteItem(w, r)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Invalid item id", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodDelete, "/api/store/items/abc", nil)
		r = withURLParam(r.WithContext(authCtx(2, domain.RoleTeacher)), "id", "abc")
		w := httptest.NewRecorder()

		handler.DeleteItem(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetPurchasesHandler(t *testing.T) {
	handler, service := NewMock(t)

	t.Run("Paged history", func(t *testing.T) {
		service.EXPECT().
			ListPurchases(gomock.Any(), 1, domain.RoleStudent, 0, 2, 10).
			Return([]storeservice.PurchaseDetail{
				{Purchase: domain.Purchase{ID: 77, UserID: 1, ItemID: 10, TotalCost: 250}, Item: hoodie()},
			}, 11, nil)

		r := httptest.NewRequest(http.MethodGet, "/api/store/purchases?page=2&per_page=10", nil)
		r = r.WithContext(authCtx(1, domain.RoleStudent))
		w := httptest.NewRecorder()

		handler.GetPurchases(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		var page dto.PurchasesPageDTO
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Equal(t, 11, page.Total)
		assert.Equal(t, 2, page.Pages)
		assert.Equal(t, 2, page.CurrentPage)
		assert.Len(t, page.Purchases, 1)
	})

	t.Run("Defaults applied for bad paging params", func(t *testing.T) {
		service.EXPECT().
			ListPurchases(gomock.Any(), 1, domain.RoleStudent, 0, 1, 20).
			Return(nil, 0, nil)

		r := httptest.NewRequest(http.MethodGet, "/api/store/purchases?page=-1&per_page=1000", nil)
		r = r.WithContext(authCtx(1, domain.RoleStudent))
		w := httptest.NewRecorder()

		handler.GetPurchases(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetPurchaseHandler(t *testing.T) {
	handler, service := NewMock(t)

	t.Run("Access denied for another student's purchase", func(t *testing.T) {
		service.EXPECT().
			GetPurchase(gomock.Any(), 2, domain.RoleStudent, 77).
			Return(nil, storeservice.ErrAccessDenied)

		r := httptest.NewRequest(http.MethodGet, "/api/store/purchases/77", nil)
		r = withURLParam(r.WithContext(authCtx(2, domain.RoleStudent)), "id", "77")
		w := httptest.NewRecorder()

		handler.GetPurchase(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Owner reads own purchase", func(t *testing.T) {
		service.EXPECT().
			GetPurchase(gomock.Any(), 1, domain.RoleStudent, 77).
			Return(&storeservice.PurchaseDetail{
				Purchase: domain.Purchase{ID: 77, UserID: 1, ItemID: 10, TotalCost: 250},
				Item:     hoodie(),
			}, nil)

		r := httptest.NewRequest(http.MethodGet, "/api/store/purchases/77", nil)
		r = withURLParam(r.WithContext(authCtx(1, domain.RoleStudent)), "id", "77")
		w := httptest.NewRecorder()

		handler.GetPurchase(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		var purchase dto.PurchaseDTO
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &purchase))
		assert.Equal(t, 77, purchase.ID)
		assert.Equal(t, "Hoodie", purchase.Item.Name)
	})
}
