package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"thokmarket/internal/domain/model"
	repo "thokmarket/internal/repository"
	"thokmarket/internal/validator"

	"go.uber.org/zap"
)

const maxCatalogNameLen = 100

// CatalogUsecase はカテゴリと商品タイプの管理
type CatalogUsecase struct {
	categories repo.CategoryRepository
	types      repo.ProductTypeRepository
	idGen      IDGenerator
	clock      Clock
	logger     *zap.Logger
}

func NewCatalogUsecase(
	categories repo.CategoryRepository,
	types repo.ProductTypeRepository,
	idGen IDGenerator,
	clock Clock,
	logger *zap.Logger,
) *CatalogUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogUsecase{
		categories: categories,
		types:      types,
		idGen:      idGen,
		clock:      clock,
		logger:     logger,
	}
}

func (u *CatalogUsecase) CreateCategory(ctx context.Context, actor model.Actor, name string) (model.Category, error) {
	if !actor.IsAdmin() {
		return model.Category{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	name = validator.CleanText(name, maxCatalogNameLen)
	if name == "" {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "category required")
	}

	c := model.Category{
		ID:        u.idGen.NewID(),
		Name:      name,
		CreatedBy: actor.UserID,
		CreatedAt: u.clock.Now(),
	}
	if err := u.categories.Create(ctx, &c); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return model.Category{}, NewHTTPError(http.StatusConflict, "category already exists")
		}
		return model.Category{}, internalError(u.logger, "create category", err)
	}
	return c, nil
}

// 0件でも空配列を返す
func (u *CatalogUsecase) ListCategories(ctx context.Context) ([]model.Category, error) {
	list, err := u.categories.List(ctx)
	if err != nil {
		return []model.Category{}, internalError(u.logger, "list categories", err)
	}
	if list == nil {
		list = []model.Category{}
	}
	return list, nil
}

func (u *CatalogUsecase) DeleteCategory(ctx context.Context, actor model.Actor, categoryID string) error {
	if !actor.IsAdmin() {
		return NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if !validID(categoryID) {
		return NewHTTPError(http.StatusNotFound, "category not found")
	}
	if err := u.categories.Delete(ctx, categoryID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "category not found")
		}
		return internalError(u.logger, "delete category", err)
	}
	return nil
}

type CreateProductTypeInput struct {
	Category    string `json:"category"`
	ProductType string `json:"productType"`
	Image       string `json:"image"`
}

func (u *CatalogUsecase) CreateProductType(ctx context.Context, actor model.Actor, in CreateProductTypeInput) (model.ProductType, error) {
	if !actor.IsAdmin() {
		return model.ProductType{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	category := validator.CleanText(in.Category, maxCatalogNameLen)
	name := validator.CleanText(in.ProductType, maxCatalogNameLen)
	if category == "" || name == "" {
		return model.ProductType{}, NewHTTPError(http.StatusBadRequest, "category and productType required")
	}
	image := strings.TrimSpace(in.Image)
	if image != "" && !validator.IsHTTPURL(image) {
		return model.ProductType{}, NewHTTPError(http.StatusBadRequest, "invalid image url")
	}

	// カテゴリが存在すること（保存名に揃える）
	c, err := u.categories.FindByName(ctx, category)
	if errors.Is(err, repo.ErrNotFound) {
		return model.ProductType{}, NewHTTPError(http.StatusNotFound, "category not found")
	}
	if err != nil {
		return model.ProductType{}, internalError(u.logger, "find category", err)
	}

	pt := model.ProductType{
		ID:        u.idGen.NewID(),
		Category:  c.Name,
		Name:      name,
		Image:     image,
		CreatedBy: actor.UserID,
		CreatedAt: u.clock.Now(),
	}
	if err := u.types.Create(ctx, &pt); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return model.ProductType{}, NewHTTPError(http.StatusConflict, "product type already exists in this category")
		}
		return model.ProductType{}, internalError(u.logger, "create product type", err)
	}
	return pt, nil
}

// categoryが空なら全件
func (u *CatalogUsecase) ListProductTypes(ctx context.Context, category string) ([]model.ProductType, error) {
	list, err := u.types.List(ctx, strings.TrimSpace(category))
	if err != nil {
		return []model.ProductType{}, internalError(u.logger, "list product types", err)
	}
	if list == nil {
		list = []model.ProductType{}
	}
	return list, nil
}

func (u *CatalogUsecase) DeleteProductType(ctx context.Context, actor model.Actor, typeID string) error {
	if !actor.IsAdmin() {
		return NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if !validID(typeID) {
		return NewHTTPError(http.StatusNotFound, "product type not found")
	}
	if err := u.types.Delete(ctx, typeID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "product type not found")
		}
		return internalError(u.logger, "delete product type", err)
	}
	return nil
}
