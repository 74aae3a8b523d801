package handler

import (
	"net/http"

	"thokmarket/internal/domain/model"
	"thokmarket/internal/middleware"
	"thokmarket/internal/usecase"

	"github.com/labstack/echo/v4"
)

// カテゴリ・商品タイプ
type CatalogHandler struct {
	uc *usecase.CatalogUsecase
}

func NewCatalogHandler(uc *usecase.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

type CategoryCreateRequest struct {
	Category string `json:"category"`
}

type categoryResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    model.Category `json:"data"`
}

type categoryListResponse struct {
	Success bool             `json:"success"`
	Data    []model.Category `json:"data"`
}

type productTypeResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    model.ProductType `json:"data"`
}

type productTypeListResponse struct {
	Success bool                `json:"success"`
	Data    []model.ProductType `json:"data"`
}

func (h *CatalogHandler) RegisterRoutes(e Router, session echo.MiddlewareFunc) {
	// 一覧は誰でも
	e.GET("/getAllCategory", h.listCategories)
	e.GET("/getAllProductType", h.listProductTypes)

	adminOnly := []echo.MiddlewareFunc{session, middleware.AdminRoleGuard()}
	e.POST("/category", h.createCategory, adminOnly...)
	e.DELETE("/category/:categoryId", h.deleteCategory, adminOnly...)
	e.POST("/productType", h.createProductType, adminOnly...)
	e.DELETE("/productType/:typeId", h.deleteProductType, adminOnly...)
}

func (h *CatalogHandler) createCategory(c echo.Context) error {
	actor, ok := getActor(c)
	if !ok {
		return unauthorized(c)
	}

	var req CategoryCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.CreateCategory(c.Request().Context(), actor, req.Category)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, categoryResponse{Success: true, Message: "category created", Data: out})
}

func (h *CatalogHandler) listCategories(c echo.Context) error {
	list, err := h.uc.ListCategories(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, categoryListResponse{Success: true, Data: list})
}

func (h *CatalogHandler) deleteCategory(c echo.Context) error {
	actor, ok := getActor(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.uc.DeleteCategory(c.Request().Context(), actor, c.Param("categoryId")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, success("category deleted"))
}

func (h *CatalogHandler) createProductType(c echo.Context) error {
	actor, ok := getActor(c)
	if !ok {
		return unauthorized(c)
	}

	var req usecase.CreateProductTypeInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.CreateProductType(c.Request().Context(), actor, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, productTypeResponse{Success: true, Message: "product type created", Data: out})
}

func (h *CatalogHandler) listProductTypes(c echo.Context) error {
	list, err := h.uc.ListProductTypes(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, productTypeListResponse{Success: true, Data: list})
}

func (h *CatalogHandler) deleteProductType(c echo.Context) error {
	actor, ok := getActor(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.uc.DeleteProductType(c.Request().Context(), actor, c.Param("typeId")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, success("product type deleted"))
}
