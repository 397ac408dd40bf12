package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"restaurant-pos/internal/common/pagination"
	"restaurant-pos/internal/microservices/pos/domain/dao"
	"restaurant-pos/internal/microservices/pos/domain/dto"
	"restaurant-pos/internal/microservices/pos/repository"
)

type MenuServiceInterface interface {
	List(ctx context.Context, category string, p pagination.Params) (pagination.Page[dao.MenuItem], error)
	Get(ctx context.Context, id string) (dao.MenuItem, error)
	Create(ctx context.Context, req dto.CreateMenuItemRequest) (dao.MenuItem, error)
}

type MenuService struct {
	repo repository.MenuRepositoryInterface
}

func NewMenuService(repo repository.MenuRepositoryInterface) MenuServiceInterface {
	return &MenuService{repo: repo}
}

func (ms *MenuService) List(ctx context.Context, category string, p pagination.Params) (pagination.Page[dao.MenuItem], error) {
	p = pagination.Normalize(p)
	items, total, err := ms.repo.List(ctx, strings.ToLower(strings.TrimSpace(category)), p)
	if err != nil {
		return pagination.Page[dao.MenuItem]{}, err
	}
	return pagination.NewPage(items, p, total), nil
}

func (ms *MenuService) Get(ctx context.Context, id string) (dao.MenuItem, error) {
	return ms.repo.Get(ctx, id)
}

func (ms *MenuService) Create(ctx context.Context, req dto.CreateMenuItemRequest) (dao.MenuItem, error) {
	name := strings.TrimSpace(req.Name)
	category := strings.ToLower(strings.TrimSpace(req.Category))
	if name == "" {
		return dao.MenuItem{}, invalid("name is required")
	}
	if category == "" {
		return dao.MenuItem{}, invalid("category is required")
	}
	if req.Price < 0 {
		return dao.MenuItem{}, invalid("price must not be negative")
	}
	available := true
	if req.Available != nil {
		available = *req.Available
	}
	return ms.repo.Create(ctx, dao.MenuItem{
		ID:        uuid.NewString(),
		Name:      name,
		Category:  category,
		Image:     strings.TrimSpace(req.Image),
		Price:     req.Price,
		Available: available,
	})
}
