package pricelist

import (
	"context"
	"errors"
	"math"
)

// Service enforces the invariants the repository does not.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) ReorderCategories(ctx context.Context, positions []CategoryPosition) error {
	if len(positions) == 0 {
		return nil
	}
	for _, pos := range positions {
		if pos.ID <= 0 {
			return errors.New("invalid category ID")
		}
	}
	return s.repo.ReorderCategories(ctx, positions)
}

func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) CreateProduct(ctx context.Context, req CreateProductRequest) (int64, error) {
	if req.Name == "" {
		return 0, errors.New("product name required")
	}
	if req.CategoryID <= 0 {
		return 0, errors.New("invalid category ID")
	}
	return s.repo.CreateProduct(ctx, req.product())
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, patch ProductPatch) error {
	if id <= 0 {
		return errors.New("invalid product ID")
	}
	if patch.IsZero() {
		return nil
	}
	return s.repo.UpdateProduct(ctx, id, patch)
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("invalid product ID")
	}
	return s.repo.DeleteProduct(ctx, id)
}

// GetRate returns the stored exchange rate, coercing malformed values
// to 0 rather than failing.
func (s *Service) GetRate(ctx context.Context) (float64, error) {
	rate, err := s.repo.GetRate(ctx)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
		return 0, nil
	}
	return rate, nil
}

func (s *Service) SetRate(ctx context.Context, rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
		return errors.New("invalid rate")
	}
	return s.repo.SetRate(ctx, rate)
}
