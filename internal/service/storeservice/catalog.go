package storeservice

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/school-store/backend/internal/domain"
	itemrepo "github.com/school-store/backend/internal/repo/item-repo"
)

func (s *Service) ListItems(ctx context.Context, category string, availableOnly bool) ([]domain.StoreItem, error) {
	items, err := s.itemRepo.List(ctx, category, availableOnly)
	if err != nil {
		zap.L().Error("failed to list items", zap.Error(err))
		return nil, err
	}
	return items, nil
}

func (s *Service) GetItem(ctx context.Context, itemID int) (*domain.StoreItem, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		zap.L().Error("failed to get item", zap.Error(err))
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	return item, nil
}

// CreateItem requires at least one valid size tier.
func (s *Service) CreateItem(ctx context.Context, item *domain.StoreItem) (*domain.StoreItem, error) {
	if len(item.AvailableSizes) == 0 {
		return nil, ErrNoValidSizes
	}
	created, err := s.itemRepo.Create(ctx, item)
	if err != nil {
		zap.L().Error("failed to create item", zap.Error(err))
		return nil, err
	}
	zap.L().Info("store item created", zap.Int("itemID", created.ID), zap.String("name", created.Name))
	return created, nil
}

func (s *Service) UpdateItem(ctx context.Context, item *domain.StoreItem) (*domain.StoreItem, error) {
	if len(item.AvailableSizes) == 0 {
		return nil, ErrNoValidSizes
	}
	updated, err := s.itemRepo.Update(ctx, item)
	if err != nil {
		zap.L().Error("failed to update item", zap.Error(err))
		return nil, err
	}
	if updated == nil {
		return nil, ErrItemNotFound
	}
	return updated, nil
}

// DeleteItem removes a catalog item. Items with recorded purchases
// cannot be deleted; mark them unavailable instead.
func (s *Service) DeleteItem(ctx context.Context, itemID int) error {
	deleted, err := s.itemRepo.Delete(ctx, itemID)
	if err != nil {
		if errors.Is(err, itemrepo.ErrItemReferenced) {
			return ErrItemInUse
		}
		zap.L().Error("failed to delete item", zap.Error(err))
		return err
	}
	if !deleted {
		return ErrItemNotFound
	}
	return nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.itemRepo.Categories(ctx)
	if err != nil {
		zap.L().Error("failed to list categories", zap.Error(err))
		return nil, err
	}
	return categories, nil
}
