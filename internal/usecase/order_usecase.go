package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"thokmarket/internal/domain/model"
	"thokmarket/internal/events"
	repo "thokmarket/internal/repository"

	"go.uber.org/zap"
)

type OrderUsecase struct {
	tx        repo.TransactionManager
	orders    repo.OrderRepository
	publisher events.Publisher
	metrics   OrderMetrics
	idGen     IDGenerator
	clock     Clock
	logger    *zap.Logger
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	publisher events.Publisher,
	metrics OrderMetrics,
	idGen IDGenerator,
	clock Clock,
	logger *zap.Logger,
) *OrderUsecase {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderUsecase{
		tx:        tx,
		orders:    orders,
		publisher: publisher,
		metrics:   metrics,
		idGen:     idGen,
		clock:     clock,
		logger:    logger,
	}
}

// クライアントが持っているカートのコピー（照合にだけ使う）
type ClientItem struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"productQuantity"`
}

type PlaceOrderInput struct {
	Items          []ClientItem
	IdempotencyKey string
}

type UpdateStatusInput struct {
	Status string
	Reason string
}

type OrderItemOutput struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Category    string `json:"category"`
	ProductType string `json:"productType"`
	UnitPrice   int64  `json:"productPrice"`
	Quantity    int64  `json:"productQuantity"`
}

type CancellationOutput struct {
	Reason      string    `json:"reason"`
	CancelledBy string    `json:"cancelledBy"`
	CancelledAt time.Time `json:"cancelledAt"`
}

type OrderOutput struct {
	ID            string              `json:"id"`
	OwnerID       string              `json:"ownerId"`
	Items         []OrderItemOutput   `json:"items"`
	TotalProducts int                 `json:"totalProducts"`
	TotalPrice    int64               `json:"totalPrice"`
	Status        string              `json:"status"`
	State         string              `json:"state"`
	Cancellation  *CancellationOutput `json:"cancellation,omitempty"`
	Version       int64               `json:"version"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

const maxIdempotencyKeyLen = 255

// PlaceOrder はサーバー側のカートから注文を作り、同じトランザクションでカートを空にする
func (u *OrderUsecase) PlaceOrder(ctx context.Context, actor model.Actor, in PlaceOrderInput) (OrderOutput, error) {
	if actor.UserID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if actor.Role != model.RoleCustomer {
		return OrderOutput{}, NewHTTPError(http.StatusForbidden, "only customers can place orders")
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if len(key) > maxIdempotencyKeyLen {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency key")
	}

	var created model.Order
	replayed := false

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		if key != "" {
			existing, found, err := r.Orders().FindByIdempotencyKey(ctx, actor.UserID, key)
			if err != nil {
				return internalError(u.logger, "find order by idempotency key", err)
			}
			if found {
				created = existing
				replayed = true
				return nil
			}
		}

		// クライアントの送った明細は信用せず、カートを読み直す
		cartItems, err := r.Carts().ListItems(ctx, actor.UserID)
		if err != nil {
			return internalError(u.logger, "list cart items", err)
		}
		if len(cartItems) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart is empty")
		}
		if len(in.Items) > 0 && !sameItems(in.Items, cartItems) {
			return NewHTTPError(http.StatusBadRequest, "cart changed, reload and retry")
		}

		// 1つでも数量が範囲外なら注文は作らない
		for _, it := range cartItems {
			if it.Quantity < model.MinOrderQuantity {
				return NewHTTPError(http.StatusBadRequest,
					fmt.Sprintf("quantity for %q must be at least %d", it.ProductName, model.MinOrderQuantity))
			}
			if it.Quantity > model.MaxLineQuantity {
				return NewHTTPError(http.StatusBadRequest,
					fmt.Sprintf("quantity for %q must be at most %d", it.ProductName, model.MaxLineQuantity))
			}
		}

		order, err := u.newOrder(actor.UserID, cartItems, key)
		if err != nil {
			return err
		}
		if err := r.Orders().Create(ctx, &order); err != nil {
			if errors.Is(err, repo.ErrConflict) && key != "" {
				return NewHTTPError(http.StatusConflict, "order with this idempotency key is being processed")
			}
			return internalError(u.logger, "create order", err)
		}

		//カートを空にする（再注文防止）
		if err := r.Carts().Clear(ctx, actor.UserID); err != nil {
			return internalError(u.logger, "clear cart", err)
		}

		created = order
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	if !replayed {
		u.metrics.OrderPlaced()
		u.publish(ctx, events.NewOrderPlaced(created))
	}
	return toOrderOutput(created), nil
}

func (u *OrderUsecase) newOrder(ownerID string, cartItems []model.CartItem, key string) (model.Order, error) {
	now := u.clock.Now()
	orderID := u.idGen.NewID()

	//スナップショット
	items := make([]model.OrderItem, 0, len(cartItems))
	var total int64
	for i, ci := range cartItems {
		it := model.OrderItem{
			ID:          u.idGen.NewID(),
			OrderID:     orderID,
			Position:    i,
			ProductID:   ci.ProductID,
			ProductName: ci.ProductName,
			Category:    ci.Category,
			ProductType: ci.ProductType,
			UnitPrice:   ci.UnitPrice,
			Quantity:    ci.Quantity,
		}
		sub, ok := it.Subtotal()
		if ok {
			total, ok = model.AddAmount(total, sub)
		}
		if !ok {
			return model.Order{}, NewHTTPError(http.StatusBadRequest, "order total is too large")
		}
		items = append(items, it)
	}

	o := model.Order{
		ID:            orderID,
		OwnerID:       ownerID,
		Items:         items,
		TotalProducts: len(items),
		TotalPrice:    total,
		Status:        model.OrderStatusPending,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if key != "" {
		o.IdempotencyKey = &key
	}
	return o, nil
}

// 件数と、商品ごとの数量が一致すること
func sameItems(client []ClientItem, server []model.CartItem) bool {
	if len(client) != len(server) {
		return false
	}
	qty := make(map[string]int64, len(server))
	for _, it := range server {
		qty[it.ProductID] = it.Quantity
	}
	for _, it := range client {
		q, ok := qty[it.ProductID]
		if !ok || q != it.Quantity {
			return false
		}
		delete(qty, it.ProductID)
	}
	return true
}

// UpdateStatus は遷移表で検査し、versionを条件にした更新で反映する
func (u *OrderUsecase) UpdateStatus(ctx context.Context, actor model.Actor, orderID string, in UpdateStatusInput) (OrderOutput, error) {
	if actor.UserID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	req, err := ParseStatusRequest(in.Status, in.Reason)
	if err != nil {
		return OrderOutput{}, err
	}
	if !validID(orderID) {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "order not found")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return OrderOutput{}, internalError(u.logger, "find order", err)
	}

	// customerは自分の注文だけ
	if actor.Role == model.RoleCustomer && o.OwnerID != actor.UserID {
		return OrderOutput{}, newForbiddenTransition("cannot change another customer's order")
	}

	// すでに同じなら何もしない（200）
	if o.Status == req.Status {
		if !model.CanRequest(actor.Role, req.Status) {
			return OrderOutput{}, newForbiddenTransition(fmt.Sprintf("cannot set %q as %s", req.Status, actor.Role))
		}
		return toOrderOutput(o), nil
	}
	if !model.CanTransition(actor.Role, o.Status, req.Status) {
		return OrderOutput{}, newForbiddenTransition(
			fmt.Sprintf("cannot change %q to %q as %s", o.Status, req.Status, actor.Role))
	}

	now := u.clock.Now()
	upd := repo.OrderStatusUpdate{
		OrderID:         o.ID,
		ExpectedVersion: o.Version,
		Status:          req.Status,
		UpdatedAt:       now,
	}
	if req.Status == model.OrderStatusCancelled {
		upd.Cancellation = model.Cancellation{Reason: req.Reason, By: actor.Role, At: &now}
	}

	before := o
	after := o
	after.Status = upd.Status
	after.Cancellation = upd.Cancellation
	after.Version = o.Version + 1
	after.UpdatedAt = now

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Orders().UpdateStatus(ctx, upd); err != nil {
			switch {
			case errors.Is(err, repo.ErrNotFound):
				return NewHTTPError(http.StatusNotFound, "order not found")
			case errors.Is(err, repo.ErrVersionConflict):
				return NewHTTPError(http.StatusConflict, "order was changed by someone else, reload and retry")
			}
			return internalError(u.logger, "update order status", err)
		}

		// 監査ログ（UPDATE_ORDER_STATUS）
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ID:           u.idGen.NewID(),
			ActorUserID:  actor.UserID,
			ActorRole:    actor.Role,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   o.ID,
			BeforeJSON:   statusJSON(before),
			AfterJSON:    statusJSON(after),
			CreatedAt:    now,
		}); err != nil {
			return internalError(u.logger, "create audit log", err)
		}
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	u.metrics.StatusChanged(string(before.Status), string(after.Status), string(actor.Role))
	u.publish(ctx, events.NewOrderStatusChanged(after, before.Status, actor.Role))
	return toOrderOutput(after), nil
}

// GetOrder は1件取得。customerが他人の注文を見た場合は存在しない扱い
func (u *OrderUsecase) GetOrder(ctx context.Context, actor model.Actor, orderID string) (OrderOutput, error) {
	if actor.UserID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if !validID(orderID) {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "order not found")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return OrderOutput{}, internalError(u.logger, "find order", err)
	}
	if !actor.IsAdmin() && o.OwnerID != actor.UserID {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	return toOrderOutput(o), nil
}

// ListForActor はcustomerなら自分の注文、adminなら未完了の注文（どちらも新しい順）
func (u *OrderUsecase) ListForActor(ctx context.Context, actor model.Actor) ([]OrderOutput, error) {
	if actor.UserID == "" {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var (
		orders []model.Order
		err    error
	)
	if actor.IsAdmin() {
		orders, err = u.orders.ListOpen(ctx)
	} else {
		orders, err = u.orders.ListByOwner(ctx, actor.UserID)
	}
	if err != nil {
		return []OrderOutput{}, internalError(u.logger, "list orders", err)
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		if actor.IsAdmin() && o.Status.IsTerminal() {
			continue
		}
		outs = append(outs, toOrderOutput(o))
	}
	return outs, nil
}

// 送信失敗は注文処理を失敗にしない
func (u *OrderUsecase) publish(ctx context.Context, ev events.Event) {
	if err := u.publisher.Publish(ctx, ev); err != nil {
		u.logger.Warn("publish event failed",
			zap.String("event", ev.Type),
			zap.String("order_id", ev.Key),
			zap.Error(err))
	}
}

func statusJSON(o model.Order) string {
	v := map[string]any{"status": o.Status, "version": o.Version}
	if o.Status == model.OrderStatusCancelled {
		v["reason"] = o.Cancellation.Reason
		v["cancelledBy"] = o.Cancellation.By
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func toOrderOutput(o model.Order) OrderOutput {
	items := make([]OrderItemOutput, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemOutput{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Category:    it.Category,
			ProductType: it.ProductType,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
		})
	}

	out := OrderOutput{
		ID:            o.ID,
		OwnerID:       o.OwnerID,
		Items:         items,
		TotalProducts: o.TotalProducts,
		TotalPrice:    o.TotalPrice,
		Status:        o.DisplayStatus(),
		State:         string(o.Status),
		Version:       o.Version,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if o.Status == model.OrderStatusCancelled && o.Cancellation.At != nil {
		out.Cancellation = &CancellationOutput{
			Reason:      o.Cancellation.Reason,
			CancelledBy: string(o.Cancellation.By),
			CancelledAt: *o.Cancellation.At,
		}
	}
	return out
}
