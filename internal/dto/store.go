package dto

import "time"

type ItemRequestDTO struct {
	Name           string   `json:"name" validate:"required"`
	Description    string   `json:"description"`
	AvailableSizes []string `json:"available_sizes" validate:"required,min=1"`
	ImageURL       string   `json:"image_url"`
	Category       string   `json:"category"`
	IsAvailable    *bool    `json:"is_available"`
}

type ItemResponseDTO struct {
	ID             int            `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	AvailableSizes []string       `json:"available_sizes"`
	SizePricing    map[string]int `json:"size_pricing"`
	ImageURL       string         `json:"image_url,omitempty"`
	Category       string         `json:"category,omitempty"`
	IsAvailable    bool           `json:"is_available"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type PurchaseRequestDTO struct {
	ItemID   int    `json:"item_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
	Size     string `json:"size" validate:"required"`
}

type PurchaseDTO struct {
	ID        int              `json:"id"`
	UserID    int              `json:"user_id"`
	ItemID    int              `json:"item_id"`
	Quantity  int              `json:"quantity"`
	Size      string           `json:"size"`
	TotalCost int              `json:"total_cost"`
	Status    string           `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	Item      *ItemResponseDTO `json:"item,omitempty"`
	UserName  string           `json:"user_name,omitempty"`
}

type PurchaseResponseDTO struct {
	Message    string      `json:"message"`
	Purchase   PurchaseDTO `json:"purchase"`
	NewBalance int         `json:"new_balance"`
}

type PurchasesPageDTO struct {
	Purchases   []PurchaseDTO `json:"purchases"`
	Total       int           `json:"total"`
	Pages       int           `json:"pages"`
	CurrentPage int           `json:"current_page"`
}

type SizeUnavailableResponseDTO struct {
	Error          string   `json:"error"`
	AvailableSizes []string `json:"available_sizes"`
}

type InsufficientFundsResponseDTO struct {
	Error     string `json:"error"`
	Required  int    `json:"required"`
	Available int    `json:"available"`
}
