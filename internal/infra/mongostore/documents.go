package mongostore

import (
	"time"

	"thokmarket/internal/domain/model"
)

type orderItemDoc struct {
	ID          string `bson:"id"`
	ProductID   string `bson:"productId"`
	ProductName string `bson:"productName"`
	Category    string `bson:"category"`
	ProductType string `bson:"productType"`
	UnitPrice   int64  `bson:"productPrice"`
	Quantity    int64  `bson:"productQuantity"`
}

type cancellationDoc struct {
	Reason string    `bson:"reason"`
	By     string    `bson:"cancelledBy"`
	At     time.Time `bson:"cancelledAt"`
}

type orderDoc struct {
	ID             string           `bson:"_id"`
	OwnerID        string           `bson:"ownerId"`
	Items          []orderItemDoc   `bson:"items"`
	TotalProducts  int              `bson:"totalProducts"`
	TotalPrice     int64            `bson:"totalPrice"`
	Status         string           `bson:"status"`
	Cancellation   *cancellationDoc `bson:"cancellation,omitempty"`
	Version        int64            `bson:"version"`
	IdempotencyKey *string          `bson:"idempotencyKey,omitempty"`
	CreatedAt      time.Time        `bson:"createdAt"`
	UpdatedAt      time.Time        `bson:"updatedAt"`
}

type cartItemDoc struct {
	ID          string    `bson:"_id"`
	UserID      string    `bson:"userId"`
	ProductID   string    `bson:"productId"`
	ProductName string    `bson:"productName"`
	Category    string    `bson:"category"`
	ProductType string    `bson:"productType"`
	UnitPrice   int64     `bson:"productPrice"`
	Quantity    int64     `bson:"productQuantity"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

func toCancellationDoc(c model.Cancellation) *cancellationDoc {
	if c.IsZero() {
		return nil
	}
	d := &cancellationDoc{Reason: c.Reason, By: string(c.By)}
	if c.At != nil {
		d.At = *c.At
	}
	return d
}

func toOrderDoc(o *model.Order) orderDoc {
	items := make([]orderItemDoc, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemDoc{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Category:    it.Category,
			ProductType: it.ProductType,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
		})
	}
	return orderDoc{
		ID:             o.ID,
		OwnerID:        o.OwnerID,
		Items:          items,
		TotalProducts:  o.TotalProducts,
		TotalPrice:     o.TotalPrice,
		Status:         string(o.Status),
		Cancellation:   toCancellationDoc(o.Cancellation),
		Version:        o.Version,
		IdempotencyKey: o.IdempotencyKey,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

func (d orderDoc) toModel() model.Order {
	items := make([]model.OrderItem, 0, len(d.Items))
	for i, it := range d.Items {
		items = append(items, model.OrderItem{
			ID:          it.ID,
			OrderID:     d.ID,
			Position:    i,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Category:    it.Category,
			ProductType: it.ProductType,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
		})
	}
	o := model.Order{
		ID:             d.ID,
		OwnerID:        d.OwnerID,
		Items:          items,
		TotalProducts:  d.TotalProducts,
		TotalPrice:     d.TotalPrice,
		Status:         model.OrderStatus(d.Status),
		Version:        d.Version,
		IdempotencyKey: d.IdempotencyKey,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	if d.Cancellation != nil {
		at := d.Cancellation.At
		o.Cancellation = model.Cancellation{Reason: d.Cancellation.Reason, By: model.Role(d.Cancellation.By), At: &at}
	}
	return o
}

func (d cartItemDoc) toModel() model.CartItem {
	return model.CartItem{
		ID:          d.ID,
		UserID:      d.UserID,
		ProductID:   d.ProductID,
		ProductName: d.ProductName,
		Category:    d.Category,
		ProductType: d.ProductType,
		UnitPrice:   d.UnitPrice,
		Quantity:    d.Quantity,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
