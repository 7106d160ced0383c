package domain

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

type User struct {
	ID            int       `db:"id"`
	Username      string    `db:"username"`
	PasswordHash  string    `db:"password_hash"`
	Email         string    `db:"email"`
	FirstName     string    `db:"first_name"`
	LastName      string    `db:"last_name"`
	Role          Role      `db:"role"`
	PointsBalance int       `db:"points_balance"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type StoreItem struct {
	ID             int       `db:"id"`
	Name           string    `db:"name"`
	Description    string    `db:"description"`
	AvailableSizes []Size    `db:"available_sizes"`
	ImageURL       string    `db:"image_url"`
	Category       string    `db:"category"`
	IsAvailable    bool      `db:"is_available"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// PriceForSize resolves the point cost of the item in the given size.
// The size must be a canonical tier and offered by this item.
func (i *StoreItem) PriceForSize(size Size) (int, bool) {
	price, ok := SizePrices[size]
	if !ok {
		return 0, false
	}
	for _, s := range i.AvailableSizes {
		if s == size {
			return price, true
		}
	}
	return 0, false
}

// SizePricing maps every size the item offers to its point cost.
func (i *StoreItem) SizePricing() map[Size]int {
	pricing := make(map[Size]int, len(i.AvailableSizes))
	for _, s := range i.AvailableSizes {
		if price, ok := SizePrices[s]; ok {
			pricing[s] = price
		}
	}
	return pricing
}

type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "pending"
	PurchaseCompleted PurchaseStatus = "completed"
	PurchaseCancelled PurchaseStatus = "cancelled"
)

type Purchase struct {
	ID        int            `db:"id"`
	UserID    int            `db:"user_id"`
	ItemID    int            `db:"item_id"`
	Quantity  int            `db:"quantity"`
	Size      Size           `db:"size"`
	TotalCost int            `db:"total_cost"`
	Status    PurchaseStatus `db:"status"`
	CreatedAt time.Time      `db:"created_at"`
}

type TransactionType string

const (
	TransactionEarned TransactionType = "earned"
	TransactionSpent  TransactionType = "spent"
)

// PointsTransaction is one immutable ledger entry. Entries are never
// updated or deleted; corrections must be new offsetting entries.
type PointsTransaction struct {
	ID          int             `db:"id"`
	UserID      int             `db:"user_id"`
	Type        TransactionType `db:"transaction_type"`
	Amount      int             `db:"amount"`
	Reason      string          `db:"reason"`
	ReferenceID *int            `db:"reference_id"`
	CreatedBy   *int            `db:"created_by"`
	CreatedAt   time.Time       `db:"created_at"`
}
