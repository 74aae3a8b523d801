package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"thokmarket/internal/domain/model"
	"thokmarket/internal/events"
	repo "thokmarket/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders    repo.OrderRepository
	carts     repo.CartRepository
	auditLogs repo.AuditLogRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository       { return r.orders }
func (r *TxReposMock) Carts() repo.CartRepository         { return r.carts }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository { return r.auditLogs }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) Create(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByIdempotencyKey(ctx context.Context, ownerID string, key string) (model.Order, bool, error) {
	args := m.Called(ctx, ownerID, key)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *OrderRepoMock) ListByOwner(ctx context.Context, ownerID string) ([]model.Order, error) {
	args := m.Called(ctx, ownerID)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *OrderRepoMock) ListOpen(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, u repo.OrderStatusUpdate) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) ListItems(ctx context.Context, userID string) ([]model.CartItem, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartRepoMock) AddItem(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	args := m.Called(ctx, item)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartRepoMock) UpdateQuantity(ctx context.Context, userID string, itemID string, qty int64) (model.CartItem, error) {
	args := m.Called(ctx, userID, itemID, qty)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartRepoMock) DeleteItem(ctx context.Context, userID string, itemID string) error {
	args := m.Called(ctx, userID, itemID)
	return args.Error(0)
}

func (m *CartRepoMock) Clear(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) Create(ctx context.Context, p *model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id string) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	total, _ := args.Get(1).(int64)
	return items, total, args.Error(2)
}

func (m *ProductRepoMock) SoftDelete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type CategoryRepoMock struct{ mock.Mock }

func (m *CategoryRepoMock) Create(ctx context.Context, c *model.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *CategoryRepoMock) List(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.Category)
	return list, args.Error(1)
}

func (m *CategoryRepoMock) FindByName(ctx context.Context, name string) (model.Category, error) {
	args := m.Called(ctx, name)
	c, _ := args.Get(0).(model.Category)
	return c, args.Error(1)
}

func (m *CategoryRepoMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type ProductTypeRepoMock struct{ mock.Mock }

func (m *ProductTypeRepoMock) Create(ctx context.Context, pt *model.ProductType) error {
	args := m.Called(ctx, pt)
	return args.Error(0)
}

func (m *ProductTypeRepoMock) List(ctx context.Context, category string) ([]model.ProductType, error) {
	args := m.Called(ctx, category)
	list, _ := args.Get(0).([]model.ProductType)
	return list, args.Error(1)
}

func (m *ProductTypeRepoMock) FindByName(ctx context.Context, category string, name string) (model.ProductType, error) {
	args := m.Called(ctx, category, name)
	pt, _ := args.Get(0).(model.ProductType)
	return pt, args.Error(1)
}

func (m *ProductTypeRepoMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(ctx context.Context, ev events.Event) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *PublisherMock) Close() error { return nil }

type MetricsMock struct {
	placed      int
	transitions []string
}

func (m *MetricsMock) OrderPlaced() { m.placed++ }
func (m *MetricsMock) StatusChanged(from, to, role string) {
	m.transitions = append(m.transitions, from+"->"+to+"/"+role)
}

// =====================
// ID / Clock
// =====================

type seqIDGen struct {
	mu sync.Mutex
	n  int
}

// UUID形式の連番
func (g *seqIDGen) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", g.n)
}

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

// =====================
// in-memory store（シナリオテスト用）
// =====================

type memStore struct {
	mu     sync.Mutex
	orders map[string]model.Order
	carts  map[string][]model.CartItem
	audits []model.AuditLog
}

func newMemStore() *memStore {
	return &memStore{orders: map[string]model.Order{}, carts: map[string][]model.CartItem{}}
}

func (s *memStore) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(&TxReposMock{orders: memOrders{s}, carts: memCarts{s}, auditLogs: memAudits{s}})
}

type memOrders struct{ s *memStore }

func cloneOrder(o model.Order) model.Order {
	o.Items = append([]model.OrderItem(nil), o.Items...)
	return o
}

func (r memOrders) Create(ctx context.Context, order *model.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		if order.IdempotencyKey != nil && o.IdempotencyKey != nil && o.OwnerID == order.OwnerID && *o.IdempotencyKey == *order.IdempotencyKey {
			return repo.ErrConflict
		}
	}
	r.s.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (r memOrders) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (r memOrders) FindByIdempotencyKey(ctx context.Context, ownerID string, key string) (model.Order, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		if o.OwnerID == ownerID && o.IdempotencyKey != nil && *o.IdempotencyKey == key {
			return cloneOrder(o), true, nil
		}
	}
	return model.Order{}, false, nil
}

func (r memOrders) list(keep func(model.Order) bool) []model.Order {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Order{}
	for _, o := range r.s.orders {
		if keep(o) {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r memOrders) ListByOwner(ctx context.Context, ownerID string) ([]model.Order, error) {
	return r.list(func(o model.Order) bool { return o.OwnerID == ownerID }), nil
}

func (r memOrders) ListOpen(ctx context.Context) ([]model.Order, error) {
	return r.list(func(o model.Order) bool { return !o.Status.IsTerminal() }), nil
}

func (r memOrders) UpdateStatus(ctx context.Context, u repo.OrderStatusUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[u.OrderID]
	if !ok {
		return repo.ErrNotFound
	}
	if o.Version != u.ExpectedVersion {
		return repo.ErrVersionConflict
	}
	o.Status = u.Status
	o.Cancellation = u.Cancellation
	o.Version++
	o.UpdatedAt = u.UpdatedAt
	r.s.orders[u.OrderID] = o
	return nil
}

type memCarts struct{ s *memStore }

func (r memCarts) ListItems(ctx context.Context, userID string) ([]model.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]model.CartItem(nil), r.s.carts[userID]...), nil
}

func (r memCarts) AddItem(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := r.s.carts[item.UserID]
	for i, it := range items {
		if it.ProductID == item.ProductID {
			items[i].Quantity += item.Quantity
			return items[i], nil
		}
	}
	r.s.carts[item.UserID] = append(items, item)
	return item, nil
}

func (r memCarts) UpdateQuantity(ctx context.Context, userID string, itemID string, qty int64) (model.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := r.s.carts[userID]
	for i, it := range items {
		if it.ID == itemID {
			items[i].Quantity = qty
			return items[i], nil
		}
	}
	return model.CartItem{}, repo.ErrNotFound
}

func (r memCarts) DeleteItem(ctx context.Context, userID string, itemID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := r.s.carts[userID]
	for i, it := range items {
		if it.ID == itemID {
			r.s.carts[userID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return repo.ErrNotFound
}

func (r memCarts) Clear(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.carts, userID)
	return nil
}

type memAudits struct{ s *memStore }

func (r memAudits) Create(ctx context.Context, log model.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audits = append(r.s.audits, log)
	return nil
}

func (r memAudits) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]model.AuditLog(nil), r.s.audits...), nil
}

// =====================
// Helper
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

func assertHTTPStatus(t *testing.T, err error, status int, kind ErrorKind) {
	t.Helper()
	he, ok := AsHTTPError(err)
	if assert.True(t, ok, "err=%v is not HTTPError", err) {
		assert.Equal(t, status, he.Status)
		assert.Equal(t, kind, he.Kind)
	}
}
