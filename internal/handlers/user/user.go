package user

import (
	"context"
	"errors"
	"net/http"

	"github.com/school-store/backend/internal/domain"
	"github.com/school-store/backend/internal/dto"
	"github.com/school-store/backend/internal/service/userservice"
	"github.com/school-store/backend/pkg/auth"
	"github.com/school-store/backend/pkg/utils"
)

type Service interface {
	List(ctx context.Context, role domain.Role) ([]domain.User, error)
	Get(ctx context.Context, userID int) (*domain.User, error)
}

type UserHandler struct {
	userService Service
}

func New(userService Service) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func userToDTO(user *domain.User) dto.UserDTO {
	return dto.UserDTO{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		Role:          string(user.Role),
		PointsBalance: user.PointsBalance,
	}
}

// GetUsers godoc
//
//	@Summary		List users
//	@Description	List accounts, optionally filtered by role. Teachers use it to pick award targets.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			role	query		string	false	"Role filter (student or teacher)"
//	@Success		200		{array}		dto.UserDTO
//	@Failure		400		{object}	utils.Response	"Unknown role"
//	@Failure		403		{object}	utils.Response	"Teacher access required"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/users [get]
func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	role := domain.Role(r.URL.Query().Get("role"))

	users, err := h.userService.List(r.Context(), role)
	if err != nil {
		if errors.Is(err, userservice.ErrInvalidRole) {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response := make([]dto.UserDTO, len(users))
	for i := range users {
		response[i] = userToDTO(&users[i])
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// Me godoc
//
//	@Summary		Current account
//	@Description	Return the account behind the bearer token.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.UserDTO
//	@Failure		404	{object}	utils.Response	"User not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/auth/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(auth.UserIDKey).(int)

	user, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, userservice.ErrUserNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, userToDTO(user))
}
