package repository

import (
	"context"

	"thokmarket/internal/domain/model"
)

type AuditLogFilter struct {
	ResourceType model.AuditResourceType
	ResourceID   string
	Limit        int
}

// 監査ログの保存・一覧取得の約束。
type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}
