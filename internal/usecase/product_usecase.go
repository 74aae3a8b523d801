package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"thokmarket/internal/domain/model"
	repo "thokmarket/internal/repository"
	"thokmarket/internal/validator"

	"go.uber.org/zap"
)

const (
	maxProductNameLen = 255
	maxDescriptionLen = 2000
	defaultPageLimit  = 20
	maxPageLimit      = 100
)

type ProductUsecase struct {
	products  repo.ProductRepository
	types     repo.ProductTypeRepository
	auditLogs repo.AuditLogRepository
	idGen     IDGenerator
	clock     Clock
	logger    *zap.Logger
}

// DI
func NewProductUsecase(
	products repo.ProductRepository,
	types repo.ProductTypeRepository,
	auditLogs repo.AuditLogRepository,
	idGen IDGenerator,
	clock Clock,
	logger *zap.Logger,
) *ProductUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductUsecase{
		products:  products,
		types:     types,
		auditLogs: auditLogs,
		idGen:     idGen,
		clock:     clock,
		logger:    logger,
	}
}

// GET /products の入力DTO
type ListProductsInput struct {
	Category    string
	ProductType string
	Page        int
	Limit       int
}

type ProductListOutput struct {
	Items []model.Product `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page == 0 {
		in.Page = 1
	}
	if in.Limit == 0 {
		in.Limit = defaultPageLimit
	}
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > maxPageLimit {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.products.List(ctx, repo.ProductListQuery{
		Category:    strings.TrimSpace(in.Category),
		ProductType: strings.TrimSpace(in.ProductType),
		Limit:       in.Limit,
		Offset:      (in.Page - 1) * in.Limit,
	})
	if err != nil {
		return ProductListOutput{}, internalError(u.logger, "list products", err)
	}
	if items == nil {
		items = []model.Product{}
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *ProductUsecase) GetProduct(ctx context.Context, productID string) (model.Product, error) {
	if !validID(productID) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "product not found")
	}

	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, internalError(u.logger, "find product", err)
	}
	return p, nil
}

type CreateProductInput struct {
	Name        string   `json:"productName"`
	Price       int64    `json:"productPrice"`
	Description string   `json:"productDescription"`
	ProductType string   `json:"productType"`
	Images      []string `json:"images"`
}

// CreateProduct は管理者の担当カテゴリに商品を登録する
func (u *ProductUsecase) CreateProduct(ctx context.Context, actor model.Actor, in CreateProductInput) (model.Product, error) {
	if actor.UserID == "" {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if !actor.IsAdmin() || actor.Category == "" {
		return model.Product{}, NewHTTPError(http.StatusForbidden, "admin with a category is required")
	}

	name := validator.CleanText(in.Name, maxProductNameLen)
	if name == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "productName required")
	}
	if in.Price < 0 || in.Price > model.MaxProductPrice {
		return model.Product{}, NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("productPrice must be between 0 and %d", model.MaxProductPrice))
	}
	typeName := validator.CleanText(in.ProductType, 100)
	if typeName == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "productType required")
	}
	if len(in.Images) == 0 || len(in.Images) > model.MaxProductImages {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "1 to 3 images are required")
	}
	images := make(model.StringList, 0, len(in.Images))
	for _, img := range in.Images {
		img = strings.TrimSpace(img)
		if !validator.IsHTTPURL(img) {
			return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid image url")
		}
		images = append(images, img)
	}

	// 担当カテゴリにタイプが登録済みであること
	pt, err := u.types.FindByName(ctx, actor.Category, typeName)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "product type not found")
	}
	if err != nil {
		return model.Product{}, internalError(u.logger, "find product type", err)
	}

	now := u.clock.Now()
	p := model.Product{
		ID:          u.idGen.NewID(),
		Name:        name,
		Description: validator.CleanText(in.Description, maxDescriptionLen),
		Price:       in.Price,
		Category:    actor.Category,
		ProductType: pt.Name,
		Images:      images,
		CreatedBy:   actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := u.products.Create(ctx, &p); err != nil {
		return model.Product{}, internalError(u.logger, "create product", err)
	}
	return p, nil
}

// DeleteProduct は論理削除。自分の担当カテゴリの商品だけ
func (u *ProductUsecase) DeleteProduct(ctx context.Context, actor model.Actor, productID string) error {
	if actor.UserID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if !actor.IsAdmin() {
		return NewHTTPError(http.StatusForbidden, "forbidden")
	}

	p, err := u.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if p.Category != actor.Category {
		return NewHTTPError(http.StatusForbidden, "product belongs to another category")
	}

	if err := u.products.SoftDelete(ctx, p.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}
		return internalError(u.logger, "delete product", err)
	}

	//監査ログ（誰がどの商品を消したか）
	before, _ := json.Marshal(map[string]any{"productName": p.Name, "category": p.Category, "productPrice": p.Price})
	if err := u.auditLogs.Create(ctx, model.AuditLog{
		ID:           u.idGen.NewID(),
		ActorUserID:  actor.UserID,
		ActorRole:    actor.Role,
		Action:       model.AuditActionDeleteProduct,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   p.ID,
		BeforeJSON:   string(before),
		AfterJSON:    `{"deleted":true}`,
		CreatedAt:    u.clock.Now(),
	}); err != nil {
		return internalError(u.logger, "create audit log", err)
	}
	return nil
}
