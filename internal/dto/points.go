package dto

import "time"

type PointsResponseDTO struct {
	UserID        int    `json:"user_id"`
	PointsBalance int    `json:"points_balance"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
}

type AwardRequestDTO struct {
	UserID int    `json:"user_id" validate:"required"`
	Amount int    `json:"amount" validate:"required,gt=0"`
	Reason string `json:"reason" validate:"required"`
}

type AwardResponseDTO struct {
	Message     string         `json:"message"`
	Transaction TransactionDTO `json:"transaction"`
	NewBalance  int            `json:"new_balance"`
}

type TransactionDTO struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	Type        string    `json:"transaction_type"`
	Amount      int       `json:"amount"`
	Reason      string    `json:"reason"`
	ReferenceID *int      `json:"reference_id"`
	CreatedBy   *int      `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UserName    string    `json:"user_name,omitempty"`
	TeacherName string    `json:"teacher_name,omitempty"`
}

type TransactionsPageDTO struct {
	Transactions []TransactionDTO `json:"transactions"`
	Total        int              `json:"total"`
	Pages        int              `json:"pages"`
	CurrentPage  int              `json:"current_page"`
}

type LeaderboardEntryDTO struct {
	Rank          int    `json:"rank"`
	UserID        int    `json:"user_id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	PointsBalance int    `json:"points_balance"`
}

type LeaderboardResponseDTO struct {
	Leaderboard []LeaderboardEntryDTO `json:"leaderboard"`
}
