package points

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/school-store/backend/internal/domain"
	"github.com/school-store/backend/internal/dto"
	"github.com/school-store/backend/internal/service/pointsservice"
	"github.com/school-store/backend/pkg/auth"
	"github.com/school-store/backend/pkg/utils"
)

type Service interface {
	Award(ctx context.Context, teacherID, studentID, amount int, reason string) (*pointsservice.AwardResult, error)
	GetPoints(ctx context.Context, actorID int, actorRole domain.Role, userID int) (*domain.User, error)
	ListTransactions(ctx context.Context, actorID int, actorRole domain.Role, userID, page, perPage int) ([]domain.PointsTransaction, int, error)
	ListAllTransactions(ctx context.Context, userID, page, perPage int) ([]pointsservice.TransactionDetail, int, error)
	Leaderboard(ctx context.Context, limit int) ([]pointsservice.LeaderboardEntry, error)
}

type PointsHandler struct {
	pointsService Service
}

func New(pointsService Service) *PointsHandler {
	return &PointsHandler{
		pointsService: pointsService,
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

func transactionToDTO(tx domain.PointsTransaction) dto.TransactionDTO {
	return dto.TransactionDTO{
		ID:          tx.ID,
		UserID:      tx.UserID,
		Type:        string(tx.Type),
		Amount:      tx.Amount,
		Reason:      tx.Reason,
		ReferenceID: tx.ReferenceID,
		CreatedBy:   tx.CreatedBy,
		CreatedAt:   tx.CreatedAt,
	}
}

func (h *PointsHandler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pointsservice.ErrInvalidAmount),
		errors.Is(err, pointsservice.ErrInvalidTarget):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, pointsservice.ErrUserNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, pointsservice.ErrAccessDenied):
		utils.RespondWithError(w, http.StatusForbidden, "Access denied")
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// GetPoints godoc
//
//	@Summary		Get user points balance
//	@Description	Students may only read their own balance; teachers may read anyone's.
//	@Tags			Points
//	@Security		BearerAuth
//	@Produce		json
//	@Param			userID	path		int	true	"User ID"
//	@Success		200		{object}	dto.PointsResponseDTO
//	@Failure		403		{object}	utils.Response	"Access denied"
//	@Failure		404		{object}	utils.Response	"User not found"
//	@Router			/api/points/{userID} [get]
func (h *PointsHandler) GetPoints(w http.ResponseWriter, r *http.Request) {
	actorID, actorRole := identity(r)
	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	user, err := h.pointsService.GetPoints(r.Context(), actorID, actorRole, userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.PointsResponseDTO{
		UserID:        user.ID,
		PointsBalance: user.PointsBalance,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
	})
}

// Award godoc
//
//	@Summary		Award points to a student
//	@Description	Credit the student's balance and record the earned ledger entry atomically. Teacher only.
//	@Tags			Points
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.AwardRequestDTO	true	"Award payload"
//	@Success		201		{object}	dto.AwardResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid amount or target"
//	@Failure		403		{object}	utils.Response	"Teacher access required"
//	@Failure		404		{object}	utils.Response	"Student not found"
//	@Router			/api/points/award [post]
func (h *PointsHandler) Award(w http.ResponseWriter, r *http.Request) {
	teacherID, _ := identity(r)

	var req dto.AwardRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Reason == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "reason is required")
		return
	}

	result, err := h.pointsService.Award(r.Context(), teacherID, req.UserID, req.Amount, req.Reason)
	if err != nil {
		h.respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.AwardResponseDTO{
		Message:     "Points awarded successfully",
		Transaction: transactionToDTO(*result.Transaction),
		NewBalance:  result.NewBalance,
	})
}

// GetTransactions godoc
//
//	@Summary		User transaction history
//	@Description	Paged ledger entries for the user, newest first. Students may only read their own.
//	@Tags			Points
//	@Security		BearerAuth
//	@Produce		json
//	@Param			userID		path		int	true	"User ID"
//	@Param			page		query		int	false	"Page (default 1)"
//	@Param			per_page	query		int	false	"Page size (default 20)"
//	@Success		200			{object}	dto.TransactionsPageDTO
//	@Failure		403			{object}	utils.Response	"Access denied"
//	@Router			/api/points/transactions/{userID} [get]
func (h *PointsHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	actorID, actorRole := identity(r)
	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	page, perPage := pagination(r, 20)

	transactions, total, err := h.pointsService.ListTransactions(r.Context(), actorID, actorRole, userID, page, perPage)
	if err != nil {
		h.respondError(w, err)
		return
	}

	response := make([]dto.TransactionDTO, len(transactions))
	for i, tx := range transactions {
		response[i] = transactionToDTO(tx)
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.TransactionsPageDTO{
		Transactions: response,
		Total:        total,
		Pages:        (total + perPage - 1) / perPage,
		CurrentPage:  page,
	})
}

// GetAllTransactions godoc
//
//	@Summary		School-wide transaction feed
//	@Description	Paged ledger across all users, newest first, enriched with display names. Teacher only.
//	@Tags			Points
//	@Security		BearerAuth
//	@Produce		json
//	@Param			page		query		int	false	"Page (default 1)"
//	@Param			per_page	query		int	false	"Page size (default 50)"
//	@Param			user_id		query		int	false	"User filter"
//	@Success		200			{object}	dto.TransactionsPageDTO
//	@Failure		403			{object}	utils.Response	"Teacher access required"
//	@Router			/api/points/transactions [get]
func (h *PointsHandler) GetAllTransactions(w http.ResponseWriter, r *http.Request) {
	page, perPage := pagination(r, 50)
	userID, _ := strconv.Atoi(r.URL.Query().Get("user_id"))

	details, total, err := h.pointsService.ListAllTransactions(r.Context(), userID, page, perPage)
	if err != nil {
		h.respondError(w, err)
		return
	}

	response := make([]dto.TransactionDTO, len(details))
	for i, d := range details {
		response[i] = transactionToDTO(d.Transaction)
		response[i].UserName = d.UserName
		response[i].TeacherName = d.TeacherName
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.TransactionsPageDTO{
		Transactions: response,
		Total:        total,
		Pages:        (total + perPage - 1) / perPage,
		CurrentPage:  page,
	})
}

// GetLeaderboard godoc
//
//	@Summary	Top students by balance
//	@Tags		Points
//	@Security	BearerAuth
//	@Produce	json
//	@Param		limit	query		int	false	"Max entries (default 10)"
//	@Success	200		{object}	dto.LeaderboardResponseDTO
//	@Failure	403		{object}	utils.Response	"Teacher access required"
//	@Router		/api/points/leaderboard [get]
func (h *PointsHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 10
	}

	entries, err := h.pointsService.Leaderboard(r.Context(), limit)
	if err != nil {
		h.respondError(w, err)
		return
	}

	leaderboard := make([]dto.LeaderboardEntryDTO, len(entries))
	for i, e := range entries {
		leaderboard[i] = dto.LeaderboardEntryDTO{
			Rank:          e.Rank,
			UserID:        e.Student.ID,
			FirstName:     e.Student.FirstName,
			LastName:      e.Student.LastName,
			PointsBalance: e.Student.PointsBalance,
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.LeaderboardResponseDTO{Leaderboard: leaderboard})
}
