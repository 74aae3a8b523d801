package usecase

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"thokmarket/internal/domain/model"
	"thokmarket/internal/validator"
)

const maxCancelReasonLen = 300

// 旧フロントが送る "cancel (<理由>) by <role>"。roleは信用しない
var legacyCancelRe = regexp.MustCompile(`(?is)^cancel\s*\((.*)\)\s*by\s+\w+$`)

// 解析済みのステータス変更要求
type StatusRequest struct {
	Status model.OrderStatus
	Reason string
}

// ParseStatusRequest はリクエストのstatus文字列を閉じた列挙に変換する
func ParseStatusRequest(status string, reason string) (StatusRequest, error) {
	s := strings.TrimSpace(status)

	var req StatusRequest
	switch strings.ToLower(s) {
	case "pending":
		req.Status = model.OrderStatusPending
	case "confirmed", "order confirmed":
		req.Status = model.OrderStatusConfirmed
	case "delivered", "order delivered":
		req.Status = model.OrderStatusDelivered
	case "cancel", "cancelled", "canceled":
		req.Status = model.OrderStatusCancelled
	default:
		m := legacyCancelRe.FindStringSubmatch(s)
		if m == nil {
			return StatusRequest{}, NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown status %q", s))
		}
		req.Status = model.OrderStatusCancelled
		if strings.TrimSpace(reason) == "" {
			reason = m[1]
		}
	}

	if req.Status == model.OrderStatusCancelled {
		req.Reason = validator.CleanText(reason, maxCancelReasonLen)
		if req.Reason == "" {
			return StatusRequest{}, NewHTTPError(http.StatusBadRequest, "cancellation reason is required")
		}
	}
	return req, nil
}
