package usecase

import (
	"time"

	"github.com/google/uuid"
)

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// 注文まわりのメトリクス（nilなら何もしない）
type OrderMetrics interface {
	OrderPlaced()
	StatusChanged(from, to, role string)
}

type nopMetrics struct{}

func (nopMetrics) OrderPlaced()                  {}
func (nopMetrics) StatusChanged(_, _, _ string) {}

// IDはすべてUUID。形式が違えば存在しない扱いにする
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
