package services

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

// CategoryChoices lists the values a category's type and color may take.
type CategoryChoices struct {
	Colors []core.Choice `json:"colors"`
	Types  []core.Choice `json:"types"`
}

func (s *FinanceService) CategoryChoices() CategoryChoices {
	return CategoryChoices{Colors: core.CategoryColors, Types: core.CategoryTypes}
}

func (s *FinanceService) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	cats, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if cats == nil {
		cats = []core.Category{}
	}
	return cats, nil
}

func (s *FinanceService) GetCategory(ctx context.Context, userID, id int64) (core.Category, error) {
	c, err := s.store.GetCategory(ctx, userID, id)
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, nil
}

// CreateCategory stores a category, defaulting an empty type to general and
// an empty color to core.DefaultCategoryColor.
func (s *FinanceService) CreateCategory(ctx context.Context, userID int64, c core.Category) (core.Category, error) {
	c = c.WithDefaults()
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	created, err := s.store.CreateCategory(ctx, userID, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

func (s *FinanceService) UpdateCategory(ctx context.Context, userID int64, c core.Category) (core.Category, error) {
	c = c.WithDefaults()
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := s.store.UpdateCategory(ctx, userID, c); err != nil {
		return core.Category{}, fmt.Errorf("update category %d: %w", c.ID, err)
	}
	return c, nil
}

func (s *FinanceService) DeleteCategory(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteCategory(ctx, userID, id); err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	return nil
}
