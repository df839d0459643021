package service

import (
	"context"
	"fmt"
	"time"

	"foodhub/internal/model"
	"foodhub/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// mostlyOrderedThreshold is exceeded by an item ordered on more than this
// many order lines in one day.
const mostlyOrderedThreshold = 10

// catalogService implements CatalogService.
type catalogService struct {
	catalogRepo repository.CatalogRepository
	logger      zerolog.Logger
	now         func() time.Time
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(catalogRepo repository.CatalogRepository, logger zerolog.Logger) CatalogService {
	return &catalogService{
		catalogRepo: catalogRepo,
		logger:      logger.With().Str("service", "catalog").Logger(),
		now:         time.Now,
	}
}

// GetMenuItem retrieves a menu item with its popularity flag.
func (s *catalogService) GetMenuItem(ctx context.Context, id uuid.UUID) (*model.MenuItemView, error) {
	item, err := s.catalogRepo.GetMenuItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}
	if item == nil {
		return nil, model.Detail(model.ErrNotFound, "Menu item not found")
	}

	mostly, err := s.IsMostlyOrdered(ctx, id)
	if err != nil {
		return nil, err
	}

	return &model.MenuItemView{Item: *item, MostlyOrdered: mostly}, nil
}

// IsMostlyOrdered counts today's order lines for the item.
func (s *catalogService) IsMostlyOrdered(ctx context.Context, id uuid.UUID) (bool, error) {
	now := s.now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	count, err := s.catalogRepo.CountOrderLinesBetween(ctx, id, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to count orders: %w", err)
	}
	return count > mostlyOrderedThreshold, nil
}

// UpdateMenuItem applies a partial update on behalf of the restaurant owner.
// Existing order lines keep the price they were settled at.
func (s *catalogService) UpdateMenuItem(ctx context.Context, ownerID, id uuid.UUID, update *model.MenuItemUpdate) (updated *model.MenuItem, err error) {
	if update.Price != nil && update.Price.IsNegative() {
		return nil, model.Detail(model.ErrValidation, "Price must not be negative")
	}
	if update.Name != nil && *update.Name == "" {
		return nil, model.Detail(model.ErrValidation, "Name must not be empty")
	}

	existing, err := s.catalogRepo.GetMenuItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update menu item: %w", err)
	}
	if existing == nil {
		return nil, model.Detail(model.ErrNotFound, "Menu item not found")
	}

	tx, err := s.catalogRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update menu item: %w", err)
	}
	defer rollbackOnError(ctx, tx, &err, s.logger)

	restaurant, err := s.catalogRepo.LockRestaurant(ctx, tx, existing.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to update menu item: %w", err)
	}
	if restaurant == nil {
		return nil, model.Detail(model.ErrNotFound, "Menu item not found")
	}
	if restaurant.OwnerID != ownerID {
		s.logger.Warn().
			Str("menu_item_id", id.String()).
			Str("user_id", ownerID.String()).
			Msg("menu item update by non-owner")
		return nil, model.ErrForbidden
	}

	items, err := s.catalogRepo.LockMenuItems(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("failed to update menu item: %w", err)
	}
	if len(items) == 0 {
		return nil, model.Detail(model.ErrNotFound, "Menu item not found")
	}

	item := items[0]
	update.Apply(&item)

	if err = s.catalogRepo.UpdateMenuItem(ctx, tx, &item); err != nil {
		return nil, fmt.Errorf("failed to update menu item: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to update menu item: %w", err)
	}

	s.logger.Info().
		Str("menu_item_id", id.String()).
		Str("price", item.Price.StringFixed(2)).
		Bool("available", item.Available).
		Msg("menu item updated")

	return &item, nil
}

// DeleteRestaurant removes a restaurant with its menu, orders and reviews.
func (s *catalogService) DeleteRestaurant(ctx context.Context, ownerID, id uuid.UUID) (err error) {
	tx, err := s.catalogRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete restaurant: %w", err)
	}
	defer rollbackOnError(ctx, tx, &err, s.logger)

	restaurant, err := s.catalogRepo.LockRestaurantForDelete(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("failed to delete restaurant: %w", err)
	}
	if restaurant == nil {
		return model.Detail(model.ErrNotFound, "Restaurant not found")
	}
	if restaurant.OwnerID != ownerID {
		return model.ErrForbidden
	}

	if err = s.catalogRepo.DeleteRestaurant(ctx, tx, id); err != nil {
		return fmt.Errorf("failed to delete restaurant: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to delete restaurant: %w", err)
	}

	s.logger.Info().Str("restaurant_id", id.String()).Msg("restaurant deleted")
	return nil
}
