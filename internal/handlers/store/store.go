package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/school-store/backend/internal/domain"
	"github.com/school-store/backend/internal/dto"
	"github.com/school-store/backend/internal/service/storeservice"
	"github.com/school-store/backend/pkg/auth"
	"github.com/school-store/backend/pkg/utils"
)

type Service interface {
	ListItems(ctx context.Context, category string, availableOnly bool) ([]domain.StoreItem, error)
	GetItem(ctx context.Context, itemID int) (*domain.StoreItem, error)
	CreateItem(ctx context.Context, item *domain.StoreItem) (*domain.StoreItem, error)
	UpdateItem(ctx context.Context, item *domain.StoreItem) (*domain.StoreItem, error)
	DeleteItem(ctx context.Context, itemID int) error
	Categories(ctx context.Context) ([]string, error)
	Purchase(ctx context.Context, userID, itemID int, size domain.Size, quantity int) (*storeservice.PurchaseResult, error)
	ListPurchases(ctx context.Context, actorID int, actorRole domain.Role, userID, page, perPage int) ([]storeservice.PurchaseDetail, int, error)
	GetPurchase(ctx context.Context, actorID int, actorRole domain.Role, purchaseID int) (*storeservice.PurchaseDetail, error)
}

type StoreHandler struct {
	storeService Service
}

func New(storeService Service) *StoreHandler {
	return &StoreHandler{
		storeService: storeService,
	}
}

func identity(r *http.Request) (int, domain.Role) {
	userID, _ := r.Context().Value(auth.UserIDKey).(int)
	role, _ := r.Context().Value(auth.RoleKey).(string)
	return userID, domain.Role(role)
}

func pagination(r *http.Request, defaultPerPage int) (int, int) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(r.URL.Query().Get("per_page"))
	if err != nil || perPage < 1 || perPage > 100 {
		perPage = defaultPerPage
	}
	return page, perPage
}

func itemToDTO(item *domain.StoreItem) *dto.ItemResponseDTO {
	sizes := make([]string, len(item.AvailableSizes))
	for i, s := range item.AvailableSizes {
		sizes[i] = string(s)
	}
	pricing := make(map[string]int, len(item.AvailableSizes))
	for size, price := range item.SizePricing() {
		pricing[string(size)] = price
	}
	return &dto.ItemResponseDTO{
		ID:             item.ID,
		Name:           item.Name,
		Description:    item.Description,
		AvailableSizes: sizes,
		SizePricing:    pricing,
		ImageURL:       item.ImageURL,
		Category:       item.Category,
		IsAvailable:    item.IsAvailable,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
}

func purchaseToDTO(p domain.Purchase, item *domain.StoreItem) dto.PurchaseDTO {
	d := dto.PurchaseDTO{
		ID:        p.ID,
		UserID:    p.UserID,
		ItemID:    p.ItemID,
		Quantity:  p.Quantity,
		Size:      string(p.Size),
		TotalCost: p.TotalCost,
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt,
	}
	if item != nil {
		d.Item = itemToDTO(item)
	}
	return d
}

func (h *StoreHandler) respondError(w http.ResponseWriter, err error) {
	var sizeErr *storeservice.SizeUnavailableError
	var fundsErr *storeservice.InsufficientFundsError

	switch {
	case errors.As(err, &sizeErr):
		sizes := make([]string, len(sizeErr.AvailableSizes))
		for i, s := range sizeErr.AvailableSizes {
			sizes[i] = string(s)
		}
		utils.RespondWithJSON(w, http.StatusBadRequest, dto.SizeUnavailableResponseDTO{
			Error:          sizeErr.Error(),
			AvailableSizes: sizes,
		})
	case errors.As(err, &fundsErr):
		utils.RespondWithJSON(w, http.StatusBadRequest, dto.InsufficientFundsResponseDTO{
			Error:     "Insufficient points",
			Required:  fundsErr.Required,
			Available: fundsErr.Available,
		})
	case errors.Is(err, storeservice.ErrInvalidQuantity),
		errors.Is(err, storeservice.ErrItemNotAvailable),
		errors.Is(err, storeservice.ErrNoValidSizes):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storeservice.ErrItemNotFound),
		errors.Is(err, storeservice.ErrPurchaseNotFound),
		errors.Is(err, storeservice.ErrUserNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, storeservice.ErrAccessDenied):
		utils.RespondWithError(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, storeservice.ErrItemInUse):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// GetItems godoc
//
//	@Summary		List store items
//	@Description	List catalog items, optionally filtered by category and availability.
//	@Tags			Store
//	@Security		BearerAuth
//	@Produce		json
//	@Param			category		query		string	false	"Category filter"
//	@Param			available_only	query		bool	false	"Only available items (default true)"
//	@Success		200				{array}		dto.ItemResponseDTO
//	@Failure		401				{object}	utils.Response	"User not authorized"
//	@Failure		500				{object}	utils.Response	"Internal server error"
//	@Router			/api/store/items [get]
func (h *StoreHandler) GetItems(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	availableOnly := r.URL.Query().Get("available_only") != "false"

	items, err := h.storeService.ListItems(r.Context(), category, availableOnly)
	if err != nil {
		h.respondError(w, err)
		return
	}

	response := make([]dto.ItemResponseDTO, len(items))
	for i := range items {
		response[i] = *itemToDTO(&items[i])
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// GetItem godoc
//
//	@Summary		Get store item
//	@Tags			Store
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int	true	"Item ID"
//	@Success		200	{object}	dto.ItemResponseDTO
//	@Failure		404	{object}	utils.Response	"Item not found"
//	@Router			/api/store/items/{id} [get]
func (h *StoreHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid item id")
		return
	}
	item, err := h.storeService.GetItem(r.Context(), itemID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, itemToDTO(item))
}

func itemFromRequest(w http.ResponseWriter, r *http.Request) (*domain.StoreItem, bool) {
	var req dto.ItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	if req.Name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "name is required")
		return nil, false
	}

	// Size names are normalized once here at the boundary; services only
	// ever see canonical tiers.
	sizes, invalid := domain.ParseSizes(req.AvailableSizes)
	if len(invalid) > 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid sizes: "+strings.Join(invalid, ", "))
		return nil, false
	}

	isAvailable := true
	if req.IsAvailable != nil {
		isAvailable = *req.IsAvailable
	}
	return &domain.StoreItem{
		Name:           req.Name,
		Description:    req.Description,
		AvailableSizes: sizes,
		ImageURL:       req.ImageURL,
		Category:       req.Category,
		IsAvailable:    isAvailable,
	}, true
}

// CreateItem godoc
//
//	@Summary		Create store item
//	@Description	Create a catalog item with its available size tiers. Teacher only.
//	@Tags			Store
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.ItemRequestDTO	true	"Item payload"
//	@Success		201		{object}	dto.ItemResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid payload"
//	@Failure		403		{object}	utils.Response	"Teacher access required"
//	@Router			/api/store/items [post]
func (h *StoreHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	item, ok := itemFromRequest(w, r)
	if !ok {
		return
	}
	created, err := h.storeService.CreateItem(r.Context(), item)
	if err != nil {
		h.respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, itemToDTO(created))
}

// UpdateItem godoc
//
//	@Summary		Update store item
//	@Tags			Store
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int					true	"Item ID"
//	@Param			request	body		dto.ItemRequestDTO	true	"Item payload"
//	@Success		200		{object}	dto.ItemResponseDTO
//	@Failure		404		{object}	utils.Response	"Item not found"
//	@Router			/api/store/items/{id} [put]
func (h *StoreHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid item id")
		return
	}
	item, ok := itemFromRequest(w, r)
	if !ok {
		return
	}
	item.ID = itemID

	updated, err := h.storeService.UpdateItem(r.Context(), item)
	if err != nil {
		h.respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, itemToDTO(updated))
}

// DeleteItem godoc
//
//	@Summary	Delete store item
//	@Tags		Store
//	@Security	BearerAuth
//	@Param		id	path	int	true	"Item ID"
//	@Success	204
//	@Failure	404	{object}	utils.Response	"Item not found"
//	@Failure	409	{object}	utils.Response	"Item has purchases"
//	@Router		/api/store/items/{id} [delete]
func (h *StoreHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid item id")
		return
	}
	if err := h.storeService.DeleteItem(r.Context(), itemID); err != nil {
		h.respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusNoContent, nil)
}

// GetCategories godoc
//
//	@Summary	List distinct item categories
//	@Tags		Store
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}	string
//	@Router		/api/store/categories [get]
func (h *StoreHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.storeService.Categories(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	utils.RespondWithJSON(w, http.StatusOK, categories)
}

// Purchase godoc
//
//	@Summary		Purchase an item
//	@Description	Debit the caller's balance and record the purchase with its ledger entry atomically.
//	@Tags			Store
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.PurchaseRequestDTO	true	"Purchase payload"
//	@Success		201		{object}	dto.PurchaseResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request, size unavailable or insufficient points"
//	@Failure		404		{object}	utils.Response	"Item not found"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/store/purchase [post]
func (h *StoreHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity(r)

	var req dto.PurchaseRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	size, ok := domain.ParseSize(req.Size)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid size: "+req.Size)
		return
	}

	result, err := h.storeService.Purchase(r.Context(), userID, req.ItemID, size, req.Quantity)
	if err != nil {
		h.respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.PurchaseResponseDTO{
		Message:    "Purchase successful",
		Purchase:   purchaseToDTO(*result.Purchase, result.Item),
		NewBalance: result.NewBalance,
	})
}

// GetPurchases godoc
//
//	@Summary		Purchase history
//	@Description	Paged purchase history, newest first. Students see only their own; teachers may filter by user_id.
//	@Tags			Store
//	@Security		BearerAuth
//	@Produce		json
//	@Param			page		query		int	false	"Page (default 1)"
//	@Param			per_page	query		int	false	"Page size (default 20)"
//	@Param			user_id		query		int	false	"User filter (teachers only)"
//	@Success		200			{object}	dto.PurchasesPageDTO
//	@Router			/api/store/purchases [get]
func (h *StoreHandler) GetPurchases(w http.ResponseWriter, r *http.Request) {
	actorID, actorRole := identity(r)
	page, perPage := pagination(r, 20)
	userID, _ := strconv.Atoi(r.URL.Query().Get("user_id"))

	details, total, err := h.storeService.ListPurchases(r.Context(), actorID, actorRole, userID, page, perPage)
	if err != nil {
		h.respondError(w, err)
		return
	}

	purchases := make([]dto.PurchaseDTO, len(details))
	for i, d := range details {
		purchases[i] = purchaseToDTO(d.Purchase, d.Item)
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.PurchasesPageDTO{
		Purchases:   purchases,
		Total:       total,
		Pages:       (total + perPage - 1) / perPage,
		CurrentPage: page,
	})
}

// GetPurchase godoc
//
//	@Summary	Get purchase by id
//	@Tags		Store
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		int	true	"Purchase ID"
//	@Success	200	{object}	dto.PurchaseDTO
//	@Failure	403	{object}	utils.Response	"Access denied"
//	@Failure	404	{object}	utils.Response	"Purchase not found"
//	@Router		/api/store/purchases/{id} [get]
func (h *StoreHandler) GetPurchase(w http.ResponseWriter, r *http.Request) {
	actorID, actorRole := identity(r)
	purchaseID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid purchase id")
		return
	}

	detail, err := h.storeService.GetPurchase(r.Context(), actorID, actorRole, purchaseID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, purchaseToDTO(detail.Purchase, detail.Item))
}
