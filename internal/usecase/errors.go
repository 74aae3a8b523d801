package usecase

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// エラー種別（レスポンスのerrorに入る）
type ErrorKind string

const (
	KindValidation          ErrorKind = "validation_error"
	KindUnauthenticated     ErrorKind = "unauthenticated"
	KindForbidden           ErrorKind = "forbidden"
	KindForbiddenTransition ErrorKind = "forbidden_transition"
	KindNotFound            ErrorKind = "not_found"
	KindConflict            ErrorKind = "conflict"
	KindInternal            ErrorKind = "internal_error"
)

type HTTPError struct {
	Status  int
	Kind    ErrorKind
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// statusから種別を決める
func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Kind:    KindForStatus(status),
		Message: message,
	}
}

func newForbiddenTransition(message string) error {
	return &HTTPError{Status: http.StatusForbidden, Kind: KindForbiddenTransition, Message: message}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// KindForStatus はHTTPステータスに対応するエラー種別
func KindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusUnauthorized:
		return KindUnauthenticated
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	}
	if status < http.StatusInternalServerError {
		return KindValidation
	}
	return KindInternal
}

// 詳細はログにだけ出して、レスポンスは汎用メッセージ
func internalError(logger *zap.Logger, op string, err error) error {
	logger.Error("internal error", zap.String("op", op), zap.Error(err))
	return NewHTTPError(http.StatusInternalServerError, "internal error")
}
