package handler

import (
	"net/http"

	"thokmarket/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// itemsはクライアントのカートのコピー（照合だけに使う）
type OrderCreateRequest struct {
	Items []usecase.ClientItem `json:"items"`
}

type OrderStatusUpdateRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type orderResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Order   usecase.OrderOutput `json:"order"`
}

type orderDetailResponse struct {
	Success      bool                `json:"success"`
	OrderDetails usecase.OrderOutput `json:"orderDetails"`
	Rank         string              `json:"rank"`
}

func (h *OrderHandler) RegisterRoutes(e Router, session echo.MiddlewareFunc) {
	e.POST("/orderHistory", h.create, session)
	e.GET("/viewSingleOrder", h.detail, session)
	e.POST("/updateOrderStatus/:orderId", h.updateStatus, session)
}

func (h *OrderHandler) create(c echo.Context) error {
	actor, ok := getActor(c)
	if !ok {
		return unauthorized(c)
	}

	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	//二重送信防止キーはヘッダーから受け取る（bodyには入れない）
	idemKey := c.Request().Header.Get("Idempotency-Key")

	out, err := h.uc.PlaceOrder(c.Request().Context(), actor, usecase.PlaceOrderInput{
		Items:          req.Items,
		IdempotencyKey: idemKey,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, orderResponse{Success: true, Message: "order placed", Order: out})
}

func (h *OrderHandler) detail(c echo.Context) error {
	actor, ok := getActor(c)
	if !ok {
		return unauthorized(c)
	}

	orderID := c.QueryParam("orderId")
	if orderID == "" {
		return badRequest(c, "orderId required")
	}

	out, err := h.uc.GetOrder(c.Request().Context(), actor, orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, orderDetailResponse{Success: true, OrderDetails: out, Rank: string(actor.Role)})
}

func (h *OrderHandler) updateStatus(c echo.Context) error {
	actor, ok := getActor(c)
	if !ok {
		return unauthorized(c)
	}

	var req OrderStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.UpdateStatus(c.Request().Context(), actor, c.Param("orderId"), usecase.UpdateStatusInput{
		Status: req.Status,
		Reason: req.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, orderResponse{Success: true, Message: "order status updated", Order: out})
}
