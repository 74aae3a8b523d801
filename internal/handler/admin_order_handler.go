package handler

import (
	"net/http"
	"strconv"

	"thokmarket/internal/domain/model"
	"thokmarket/internal/middleware"
	"thokmarket/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 注文のステータス変更履歴（監査ログ）を管理者に返す
type AdminOrderHandler struct {
	uc *usecase.AuditLogUsecase
}

func NewAdminOrderHandler(uc *usecase.AuditLogUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

type orderHistoryResponse struct {
	Success bool             `json:"success"`
	Data    []model.AuditLog `json:"data"`
}

func (h *AdminOrderHandler) RegisterRoutes(e Router, session echo.MiddlewareFunc) {
	e.GET("/admin/orders/:orderId/history", h.history, session, middleware.AdminRoleGuard())
}

func (h *AdminOrderHandler) history(c echo.Context) error {
	actor, ok := getActor(c)
	if !ok {
		return unauthorized(c)
	}

	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "invalid limit")
		}
		limit = l
	}

	logs, err := h.uc.OrderHistory(c.Request().Context(), actor, c.Param("orderId"), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, orderHistoryResponse{Success: true, Data: logs})
}
