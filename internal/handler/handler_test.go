package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"thokmarket/internal/domain/model"
	"thokmarket/internal/middleware"
	repo "thokmarket/internal/repository"
	"thokmarket/internal/usecase"
	auth "thokmarket/internal/usecase/auth_usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =====================
// in-memory store
// =====================

type fakeStore struct {
	mu     sync.Mutex
	orders map[string]model.Order
	carts  map[string][]model.CartItem
	audits []model.AuditLog
}

func newFakeStore() *fakeStore {
	return &fakeStore{orders: map[string]model.Order{}, carts: map[string][]model.CartItem{}}
}

func (s *fakeStore) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(s)
}

func (s *fakeStore) Orders() repo.OrderRepository       { return fakeOrders{s} }
func (s *fakeStore) Carts() repo.CartRepository         { return fakeCarts{s} }
func (s *fakeStore) AuditLogs() repo.AuditLogRepository { return fakeAudits{s} }

type fakeOrders struct{ s *fakeStore }

func (r fakeOrders) Create(ctx context.Context, o *model.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.orders[o.ID] = *o
	return nil
}

func (r fakeOrders) FindByID(ctx context.Context, id string) (model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (r fakeOrders) FindByIdempotencyKey(ctx context.Context, ownerID, key string) (model.Order, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		if o.OwnerID == ownerID && o.IdempotencyKey != nil && *o.IdempotencyKey == key {
			return o, true, nil
		}
	}
	return model.Order{}, false, nil
}

func (r fakeOrders) ListByOwner(ctx context.Context, ownerID string) ([]model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Order{}
	for _, o := range r.s.orders {
		if o.OwnerID == ownerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r fakeOrders) ListOpen(ctx context.Context) ([]model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Order{}
	for _, o := range r.s.orders {
		if !o.Status.IsTerminal() {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r fakeOrders) UpdateStatus(ctx context.Context, u repo.OrderStatusUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[u.OrderID]
	if !ok {
		return repo.ErrNotFound
	}
	if o.Version != u.ExpectedVersion {
		return repo.ErrVersionConflict
	}
	o.Status, o.Cancellation, o.UpdatedAt = u.Status, u.Cancellation, u.UpdatedAt
	o.Version++
	r.s.orders[u.OrderID] = o
	return nil
}

type fakeCarts struct{ s *fakeStore }

func (r fakeCarts) ListItems(ctx context.Context, userID string) ([]model.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]model.CartItem(nil), r.s.carts[userID]...), nil
}

func (r fakeCarts) AddItem(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	return model.CartItem{}, errors.New("not used")
}

func (r fakeCarts) UpdateQuantity(ctx context.Context, userID, itemID string, qty int64) (model.CartItem, error) {
	return model.CartItem{}, repo.ErrNotFound
}

func (r fakeCarts) DeleteItem(ctx context.Context, userID, itemID string) error {
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

func (r fakeCarts) Clear(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.carts, userID)
	return nil
}

type fakeAudits struct{ s *fakeStore }

func (r fakeAudits) Create(ctx context.Context, l model.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audits = append(r.s.audits, l)
	return nil
}

func (r fakeAudits) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.AuditLog{}
	for _, l := range r.s.audits {
		if l.ResourceID == f.ResourceID {
			out = append(out, l)
		}
	}
	return out, nil
}

type uuidGen struct{}

func (uuidGen) NewID() string { return uuid.NewString() }

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now().UTC() }

type fakeUsers struct {
	byID map[string]*model.User
}

func (r fakeUsers) Create(ctx context.Context, u *model.User) error { return nil }

func (r fakeUsers) FindByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r fakeUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, repo.ErrNotFound
}

func (r fakeUsers) Update(ctx context.Context, u *model.User) error { return nil }

func (r fakeUsers) IncrementTokenVersion(ctx context.Context, id string) error { return nil }

// =====================
// test server
// =====================

var (
	customerID = uuid.NewString()
	otherID    = uuid.NewString()
	adminID    = uuid.NewString()
)

// X-Test-User / X-Test-Role ヘッダーから操作者を入れる（Sessionの代わり）
func fakeSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Request().Header.Get("X-Test-User")
		if id == "" {
			return c.JSON(http.StatusUnauthorized, errorBody(usecase.KindUnauthenticated, "unauthorized"))
		}
		c.Set(middleware.CtxUserIDKey, id)
		c.Set(middleware.CtxUserRoleKey, c.Request().Header.Get("X-Test-Role"))
		c.Set(middleware.CtxUserCategoryKey, "tea")
		return next(c)
	}
}

func newTestServer(store *fakeStore) *echo.Echo {
	e := echo.New()
	orderUC := usecase.NewOrderUsecase(store, fakeOrders{store}, nil, nil, uuidGen{}, wallClock{}, zap.NewNop())
	cartUC := usecase.NewCartUsecase(fakeCarts{store}, nil, uuidGen{}, wallClock{}, zap.NewNop())
	auditUC := usecase.NewAuditLogUsecase(fakeAudits{store}, zap.NewNop())

	NewOrderHandler(orderUC).RegisterRoutes(e, fakeSession)
	NewCartHandler(cartUC).RegisterRoutes(e, fakeSession)
	NewAdminOrderHandler(auditUC).RegisterRoutes(e, fakeSession)
	return e
}

func do(e *echo.Echo, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func as(userID string, role model.Role) map[string]string {
	return map[string]string{"X-Test-User": userID, "X-Test-Role": string(role)}
}

func seedCart(store *fakeStore, userID string, qty int64) {
	store.carts[userID] = []model.CartItem{{
		ID: uuid.NewString(), UserID: userID, ProductID: uuid.NewString(),
		ProductName: "Assam", Category: "tea", ProductType: "black", UnitPrice: 200, Quantity: qty,
	}}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// =====================
// tests
// =====================

func TestOrderHandler_PlaceAndView(t *testing.T) {
	store := newFakeStore()
	e := newTestServer(store)
	seedCart(store, customerID, 5)

	rec := do(e, http.MethodPost, "/orderHistory", `{}`, as(customerID, model.RoleCustomer))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	placed := decode[orderResponse](t, rec)
	assert.True(t, placed.Success)
	assert.Equal(t, int64(1000), placed.Order.TotalPrice)
	assert.Equal(t, "pending", placed.Order.Status)

	rec = do(e, http.MethodGet, "/viewSingleOrder?orderId="+placed.Order.ID, "", as(customerID, model.RoleCustomer))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rank":"customer"`)
	assert.Contains(t, rec.Body.String(), `"orderDetails"`)

	// 他人の注文は404
	rec = do(e, http.MethodGet, "/viewSingleOrder?orderId="+placed.Order.ID, "", as(otherID, model.RoleCustomer))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"not_found","message":"order not found"}`, rec.Body.String())
}

func TestOrderHandler_ShortQuantityIsValidationError(t *testing.T) {
	store := newFakeStore()
	e := newTestServer(store)
	seedCart(store, customerID, 3)

	rec := do(e, http.MethodPost, "/orderHistory", `{}`, as(customerID, model.RoleCustomer))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"validation_error","message":"quantity for \"Assam\" must be at least 5"}`, rec.Body.String())
	assert.Empty(t, store.orders)
}

func TestOrderHandler_IdempotencyKeyHeader(t *testing.T) {
	store := newFakeStore()
	e := newTestServer(store)
	seedCart(store, customerID, 5)
	h := as(customerID, model.RoleCustomer)
	h["Idempotency-Key"] = "checkout-1"

	first := decode[orderResponse](t, do(e, http.MethodPost, "/orderHistory", `{}`, h))
	second := decode[orderResponse](t, do(e, http.MethodPost, "/orderHistory", `{}`, h))
	assert.Equal(t, first.Order.ID, second.Order.ID)
	assert.Len(t, store.orders, 1)
}

func TestOrderHandler_StatusFlow(t *testing.T) {
	store := newFakeStore()
	e := newTestServer(store)
	seedCart(store, customerID, 5)
	placed := decode[orderResponse](t, do(e, http.MethodPost, "/orderHistory", `{}`, as(customerID, model.RoleCustomer)))
	path := "/updateOrderStatus/" + placed.Order.ID

	rec := do(e, http.MethodPost, path, `{"status":"order confirmed"}`, as(customerID, model.RoleCustomer))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"forbidden_transition"`)

	rec = do(e, http.MethodPost, path, `{"status":"cancelled","reason":"wrong item"}`, as(customerID, model.RoleCustomer))
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[orderResponse](t, rec)
	assert.Equal(t, "cancel (wrong item) by customer", got.Order.Status)

	rec = do(e, http.MethodGet, "/admin/orders/"+placed.Order.ID+"/history", "", as(adminID, model.RoleAdmin))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"action":"UPDATE_ORDER_STATUS"`)

	rec = do(e, http.MethodGet, "/admin/orders/"+placed.Order.ID+"/history", "", as(customerID, model.RoleCustomer))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOrderHandler_RequiresSession(t *testing.T) {
	e := newTestServer(newFakeStore())

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/orderHistory"},
		{http.MethodGet, "/viewSingleOrder?orderId=x"},
		{http.MethodPost, "/updateOrderStatus/x"},
		{http.MethodGet, "/cartView"},
	} {
		rec := do(e, tc.method, tc.path, `{}`, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
	}
}

func TestCartHandler_ViewAndDelete(t *testing.T) {
	store := newFakeStore()
	e := newTestServer(store)
	seedCart(store, customerID, 6)
	itemID := store.carts[customerID][0].ID

	rec := do(e, http.MethodGet, "/cartView", "", as(customerID, model.RoleCustomer))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1200), body["total"])
	assert.Len(t, body["data"], 1)

	rec = do(e, http.MethodDelete, "/deleteCartProduct/"+itemID, "", as(otherID, model.RoleCustomer))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodDelete, "/deleteCartProduct/"+itemID, "", as(customerID, model.RoleCustomer))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"product removed from cart"}`, rec.Body.String())
}

func TestWriteError(t *testing.T) {
	e := echo.New()

	tests := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"http error", usecase.NewHTTPError(http.StatusConflict, "dup"), http.StatusConflict, `{"success":false,"error":"conflict","message":"dup"}`},
		{"plain error is hidden", errors.New("pq: connection refused"), http.StatusInternalServerError, `{"success":false,"error":"internal_error","message":"internal error"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			require.NoError(t, writeError(c, tt.err))
			assert.Equal(t, tt.code, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

func TestAdminSignup_KeyCheck(t *testing.T) {
	for _, tt := range []struct {
		name      string
		configKey string
		sentKey   string
	}{
		{"disabled when unset", "", "anything"},
		{"wrong key", "s3cret-admin-key", "guess"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			NewAdminUserHandler(tt.configKey, NewAuthHandler(nil, nil, nil, nil, nil, false, nil)).RegisterRoutes(e)

			rec := do(e, http.MethodPost, "/admin/signup", `{}`, map[string]string{"X-Admin-Key": tt.sentKey})
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error":"forbidden"`)
		})
	}
}

func TestAuthHandler_Profile(t *testing.T) {
	store := newFakeStore()
	users := fakeUsers{byID: map[string]*model.User{
		customerID: {ID: customerID, Name: "Hana", Email: "hana@example.com", PasswordHash: "secret-hash", Role: model.RoleCustomer, IsActive: true},
		adminID:    {ID: adminID, Name: "Ken", Email: "ken@example.com", Role: model.RoleAdmin, Category: "tea", IsActive: true},
	}}
	e := newTestServer(store)
	orderUC := usecase.NewOrderUsecase(store, fakeOrders{store}, nil, nil, uuidGen{}, wallClock{}, zap.NewNop())
	NewAuthHandler(nil, nil, nil, auth.NewMeUsecase(users), orderUC, false, zap.NewNop()).RegisterRoutes(e, fakeSession)

	seedCart(store, customerID, 5)
	placed := decode[orderResponse](t, do(e, http.MethodPost, "/orderHistory", `{}`, as(customerID, model.RoleCustomer)))
	require.True(t, placed.Success)

	type profileBody struct {
		Success bool `json:"success"`
		User    struct {
			ID    string `json:"id"`
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
		Orders []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"orders"`
	}

	t.Run("customer sees own orders", func(t *testing.T) {
		rec := do(e, http.MethodGet, "/profile", "", as(customerID, model.RoleCustomer))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.NotContains(t, rec.Body.String(), "secret-hash")

		body := decode[profileBody](t, rec)
		assert.True(t, body.Success)
		assert.Equal(t, customerID, body.User.ID)
		assert.Equal(t, "hana@example.com", body.User.Email)
		assert.Equal(t, "customer", body.User.Role)
		require.Len(t, body.Orders, 1)
		assert.Equal(t, placed.Order.ID, body.Orders[0].ID)
		assert.Equal(t, "pending", body.Orders[0].Status)
	})

	t.Run("other customer has no orders", func(t *testing.T) {
		users.byID[otherID] = &model.User{ID: otherID, Email: "mio@example.com", Role: model.RoleCustomer, IsActive: true}
		t.Cleanup(func() { delete(users.byID, otherID) })

		body := decode[profileBody](t, do(e, http.MethodGet, "/profile", "", as(otherID, model.RoleCustomer)))
		assert.True(t, body.Success)
		assert.Empty(t, body.Orders)
	})

	t.Run("admin sees open orders", func(t *testing.T) {
		body := decode[profileBody](t, do(e, http.MethodGet, "/profile", "", as(adminID, model.RoleAdmin)))
		assert.Equal(t, "admin", body.User.Role)
		require.Len(t, body.Orders, 1)
		assert.Equal(t, placed.Order.ID, body.Orders[0].ID)
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := do(e, http.MethodGet, "/profile", "", as(uuid.NewString(), model.RoleCustomer))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("no session", func(t *testing.T) {
		rec := do(e, http.MethodGet, "/profile", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
