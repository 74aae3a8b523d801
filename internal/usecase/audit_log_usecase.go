package usecase

import (
	"context"
	"net/http"

	"thokmarket/internal/domain/model"
	repo "thokmarket/internal/repository"

	"go.uber.org/zap"
)

const defaultAuditLimit = 50

// 管理者向けの監査ログ参照
type AuditLogUsecase struct {
	auditLogs repo.AuditLogRepository
	logger    *zap.Logger
}

func NewAuditLogUsecase(auditLogs repo.AuditLogRepository, logger *zap.Logger) *AuditLogUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditLogUsecase{auditLogs: auditLogs, logger: logger}
}

// OrderHistory は1件の注文のステータス変更履歴（新しい順）
func (u *AuditLogUsecase) OrderHistory(ctx context.Context, actor model.Actor, orderID string, limit int) ([]model.AuditLog, error) {
	if !actor.IsAdmin() {
		return []model.AuditLog{}, NewHTTPError(http.StatusForbidden, "admin only")
	}
	if !validID(orderID) {
		return []model.AuditLog{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if limit <= 0 || limit > maxPageLimit {
		limit = defaultAuditLimit
	}

	logs, err := u.auditLogs.List(ctx, repo.AuditLogFilter{
		ResourceType: model.AuditResourceOrder,
		ResourceID:   orderID,
		Limit:        limit,
	})
	if err != nil {
		return []model.AuditLog{}, internalError(u.logger, "list audit logs", err)
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return logs, nil
}
