package events

import (
	"context"
	"time"

	"thokmarket/internal/domain/model"
)

const (
	OrderPlacedType        = "order.placed"
	OrderStatusChangedType = "order.status_changed"
)

// Event は送信単位。Keyは注文IDで、同じ注文のイベントは同じパーティションに入る
type Event struct {
	Type    string
	Key     string
	Payload any
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

type OrderItem struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

type OrderPlaced struct {
	EventType     string      `json:"eventType"`
	OrderID       string      `json:"orderId"`
	OwnerID       string      `json:"ownerId"`
	TotalProducts int         `json:"totalProducts"`
	TotalPrice    int64       `json:"totalPrice"`
	Items         []OrderItem `json:"items"`
	Timestamp     time.Time   `json:"timestamp"`
}

type OrderStatusChanged struct {
	EventType string    `json:"eventType"`
	OrderID   string    `json:"orderId"`
	OwnerID   string    `json:"ownerId"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ActorRole string    `json:"actorRole"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewOrderPlaced(o model.Order) Event {
	items := make([]OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItem{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return Event{
		Type: OrderPlacedType,
		Key:  o.ID,
		Payload: OrderPlaced{
			EventType:     OrderPlacedType,
			OrderID:       o.ID,
			OwnerID:       o.OwnerID,
			TotalProducts: o.TotalProducts,
			TotalPrice:    o.TotalPrice,
			Items:         items,
			Timestamp:     o.CreatedAt.UTC(),
		},
	}
}

func NewOrderStatusChanged(o model.Order, from model.OrderStatus, role model.Role) Event {
	return Event{
		Type: OrderStatusChangedType,
		Key:  o.ID,
		Payload: OrderStatusChanged{
			EventType: OrderStatusChangedType,
			OrderID:   o.ID,
			OwnerID:   o.OwnerID,
			From:      string(from),
			To:        string(o.Status),
			ActorRole: string(role),
			Reason:    o.Cancellation.Reason,
			Timestamp: o.UpdatedAt.UTC(),
		},
	}
}

// 送信先が無い構成用
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
