package handler

import (
	"net/http"

	"thokmarket/internal/domain/model"
	"thokmarket/internal/middleware"
	"thokmarket/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ルートの登録先（*echo.Echo / *echo.Group）
type Router interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// 失敗時のレスポンス
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// 成功時の { success, message }
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func success(message string) SuccessResponse {
	return SuccessResponse{Success: true, Message: message}
}

func errorBody(kind usecase.ErrorKind, message string) ErrorResponse {
	return ErrorResponse{Success: false, Error: string(kind), Message: message}
}

// usecaseのHTTPErrorをそのままレスポンスにする
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, errorBody(he.Kind, he.Message))
	}

	//500
	return c.JSON(http.StatusInternalServerError, errorBody(usecase.KindInternal, "internal error"))
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, errorBody(usecase.KindValidation, message))
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorBody(usecase.KindUnauthenticated, "unauthorized"))
}

// Sessionミドルウェアが入れた操作者
func getActor(c echo.Context) (model.Actor, bool) {
	return middleware.ActorFrom(c)
}
