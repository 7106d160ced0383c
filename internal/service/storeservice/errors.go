package storeservice

import (
	"errors"
	"fmt"

	"github.com/school-store/backend/internal/domain"
)

var (
	ErrInvalidQuantity  = errors.New("quantity must be between 1 and 100")
	ErrItemInUse        = errors.New("item has purchases and cannot be deleted")
	ErrItemNotAvailable = errors.New("item is not available")
	ErrItemNotFound     = errors.New("store item not found")
	ErrPurchaseNotFound = errors.New("purchase not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrAccessDenied     = errors.New("access denied")
	ErrNoValidSizes     = errors.New("available sizes must contain at least one valid size")
)

// SizeUnavailableError carries the item's valid size set so the caller
// can self-correct.
type SizeUnavailableError struct {
	Size           domain.Size
	AvailableSizes []domain.Size
}

func (e *SizeUnavailableError) Error() string {
	return fmt.Sprintf("size %q is not available for this item", e.Size)
}

// InsufficientFundsError reports required versus available points. The
// balance is never partially debited.
type InsufficientFundsError struct {
	Required  int
	Available int
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient points: required %d, available %d", e.Required, e.Available)
}
