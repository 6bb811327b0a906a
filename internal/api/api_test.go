package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"order-management-service/internal/api"
	"order-management-service/internal/entity"
	"order-management-service/internal/repository"
	"order-management-service/internal/service"
	"order-management-service/internal/token"
)

type memUserRepo struct {
	users []*entity.User
}

func (f *memUserRepo) CreateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	for _, u := range f.users {
		if u.Username == user.Username {
			return nil, repository.ErrDuplicate
		}
	}
	user.ID = len(f.users) + 1
	f.users = append(f.users, user)
	return user, nil
}

func (f *memUserRepo) GetUserByUsername(ctx context.Context, username string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

type memOrderRepo struct {
	users  *memUserRepo
	orders []entity.Order
}

func (f *memOrderRepo) username(userID int) *string {
	for _, u := range f.users.users {
		if u.ID == userID {
			name := u.Username
			return &name
		}
	}
	return nil
}

func (f *memOrderRepo) CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	order.ID = len(f.orders) + 1
	order.Username = f.username(order.UserID)
	f.orders = append(f.orders, *order)
	return order, nil
}

func (f *memOrderRepo) ListOrdersByUser(ctx context.Context, userID int) ([]entity.Order, error) {
	owned := []entity.Order{}
	for _, o := range f.orders {
		if o.UserID == userID {
			owned = append(owned, o)
		}
	}
	return owned, nil
}

type memGuard struct {
	claimed map[string]bool
}

func (g *memGuard) Claim(ctx context.Context, key string) (bool, error) {
	if g.claimed[key] {
		return false, nil
	}
	g.claimed[key] = true
	return true, nil
}

type testApp struct {
	e         *echo.Echo
	userRepo  *memUserRepo
	orderRepo *memOrderRepo
}

func newTestApp(ttl time.Duration) *testApp {
	tokens := token.New("test-secret", ttl)
	userRepo := &memUserRepo{}
	orderRepo := &memOrderRepo{users: userRepo}
	guard := &memGuard{claimed: map[string]bool{}}

	userHandler := api.NewUserHandler(service.NewUserService(userRepo, tokens))
	orderHandler := api.NewOrderHandler(service.NewOrderService(orderRepo, nil, guard))

	e := echo.New()
	api.RegisterRoutes(e, userHandler, orderHandler, api.RequireAuth(tokens))

	return &testApp{e: e, userRepo: userRepo, orderRepo: orderRepo}
}

func (a *testApp) request(t *testing.T, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) registerAndLogin(t *testing.T, username, password string) string {
	t.Helper()

	rec := a.request(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": username, "password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("register %s: expected 200, got %d (%s)", username, rec.Code, rec.Body)
	}

	rec = a.request(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": username, "password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d (%s)", username, rec.Code, rec.Body)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}
	if resp["token"] == "" {
		t.Fatal("login returned empty token")
	}
	return resp["token"]
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding error response %q: %v", rec.Body, err)
	}
	return resp["error"]
}

func TestRegisterDuplicate(t *testing.T) {
	app := newTestApp(time.Hour)

	rec := app.request(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice", "password": "secret",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	rec = app.request(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice", "password": "secret",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 on duplicate register, got %d", rec.Code)
	}
	if len(app.userRepo.users) != 1 {
		t.Errorf("Expected 1 stored user, got %d", len(app.userRepo.users))
	}
}

func TestLoginFailuresIdentical(t *testing.T) {
	app := newTestApp(time.Hour)
	app.registerAndLogin(t, "alice", "secret")

	wrongPass := app.request(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	})
	noUser := app.request(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "nobody", "password": "secret",
	})

	if wrongPass.Code != http.StatusUnauthorized || noUser.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401/401, got %d/%d", wrongPass.Code, noUser.Code)
	}
	if wrongPass.Body.String() != noUser.Body.String() {
		t.Errorf("login failure bodies differ: %q vs %q", wrongPass.Body, noUser.Body)
	}
}

func TestProtectedRoutesRejectWithoutToken(t *testing.T) {
	app := newTestApp(time.Hour)

	// No Authorization header at all.
	rec := app.request(t, http.MethodGet, "/orders/", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no header: expected 401, got %d", rec.Code)
	}
	if msg := errorBody(t, rec); msg != "token missing" {
		t.Errorf("no header: expected \"token missing\", got %q", msg)
	}

	// Wrong scheme.
	req := httptest.NewRequest(http.MethodGet, "/orders/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Token abc")
	raw := httptest.NewRecorder()
	app.e.ServeHTTP(raw, req)
	if raw.Code != http.StatusUnauthorized {
		t.Errorf("wrong scheme: expected 401, got %d", raw.Code)
	}

	// Rejection happens before business logic: no order row appears.
	rec = app.request(t, http.MethodPost, "/orders/", "", map[string]interface{}{
		"item": "Burger", "quantity": 2,
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated create: expected 401, got %d", rec.Code)
	}
	if len(app.orderRepo.orders) != 0 {
		t.Errorf("Expected no orders created, got %d", len(app.orderRepo.orders))
	}
}

func TestProtectedRoutesRejectBadTokens(t *testing.T) {
	app := newTestApp(time.Hour)

	rec := app.request(t, http.MethodGet, "/orders/", "garbage", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: expected 401, got %d", rec.Code)
	}
	if msg := errorBody(t, rec); msg != "invalid token" {
		t.Errorf("garbage token: expected \"invalid token\", got %q", msg)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	// Tokens from this app are born expired.
	app := newTestApp(-time.Minute)
	tkn := app.registerAndLogin(t, "alice", "secret")

	rec := app.request(t, http.MethodGet, "/orders/", tkn, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
	if msg := errorBody(t, rec); msg != "token expired" {
		t.Errorf("Expected \"token expired\", got %q", msg)
	}
}

func TestCreateAndListOrders(t *testing.T) {
	app := newTestApp(time.Hour)
	aliceToken := app.registerAndLogin(t, "alice", "secret")
	bobToken := app.registerAndLogin(t, "bob", "hunter2")

	rec := app.request(t, http.MethodPost, "/orders/", aliceToken, map[string]interface{}{
		"item": "Burger", "quantity": 3,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create order: expected 201, got %d (%s)", rec.Code, rec.Body)
	}

	var created struct {
		Message string               `json:"message"`
		Order   entity.OrderResponse `json:"order"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding create response: %v", err)
	}
	if created.Order.Item != "Burger" || created.Order.Quantity != 3 {
		t.Errorf("create response mismatch: %+v", created.Order)
	}
	if created.Order.User == nil || *created.Order.User != "alice" {
		t.Errorf("Expected order user alice, got %v", created.Order.User)
	}

	rec = app.request(t, http.MethodPost, "/orders/", bobToken, map[string]interface{}{
		"item": "Fries", "quantity": 1,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create order as bob: expected 201, got %d", rec.Code)
	}

	// Alice sees only her own order.
	rec = app.request(t, http.MethodGet, "/orders/", aliceToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list orders: expected 200, got %d", rec.Code)
	}

	var listed []entity.OrderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decoding list response: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("Expected 1 order for alice, got %d", len(listed))
	}
	if listed[0].Item != "Burger" || listed[0].Quantity != 3 {
		t.Errorf("Round trip mismatch: %+v", listed[0])
	}
	if listed[0].User == nil || *listed[0].User != "alice" {
		t.Errorf("Expected user alice, got %v", listed[0].User)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	app := newTestApp(time.Hour)
	tkn := app.registerAndLogin(t, "alice", "secret")

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"zero quantity", map[string]interface{}{"item": "Burger", "quantity": 0}},
		{"negative quantity", map[string]interface{}{"item": "Burger", "quantity": -5}},
		{"missing item", map[string]interface{}{"quantity": 2}},
		{"missing quantity", map[string]interface{}{"item": "Burger"}},
	}
	for _, tc := range cases {
		rec := app.request(t, http.MethodPost, "/orders/", tkn, tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d (%s)", tc.name, rec.Code, rec.Body)
		}
	}
	if len(app.orderRepo.orders) != 0 {
		t.Errorf("Expected no orders created, got %d", len(app.orderRepo.orders))
	}
}

func TestCreateOrderIdempotentKeyReplay(t *testing.T) {
	app := newTestApp(time.Hour)
	tkn := app.registerAndLogin(t, "alice", "secret")

	body, err := json.Marshal(map[string]interface{}{"item": "Burger", "quantity": 2})
	if err != nil {
		t.Fatalf("encoding request body: %v", err)
	}

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/orders/", bytes.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tkn)
		req.Header.Set("Idempotent-Key", "abc-123")
		rec := httptest.NewRecorder()
		app.e.ServeHTTP(rec, req)
		return rec
	}

	rec := send()
	if rec.Code != http.StatusCreated {
		t.Fatalf("first create: expected 201, got %d (%s)", rec.Code, rec.Body)
	}

	rec = send()
	if rec.Code != http.StatusConflict {
		t.Errorf("replay: expected 409, got %d", rec.Code)
	}
	if msg := errorBody(t, rec); msg != "duplicate request" {
		t.Errorf("replay: expected \"duplicate request\", got %q", msg)
	}
	if len(app.orderRepo.orders) != 1 {
		t.Errorf("Expected 1 persisted order after replay, got %d", len(app.orderRepo.orders))
	}
}

func TestListOrdersEmptyArray(t *testing.T) {
	app := newTestApp(time.Hour)
	tkn := app.registerAndLogin(t, "alice", "secret")

	rec := app.request(t, http.MethodGet, "/orders/", tkn, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if body := bytes.TrimSpace(rec.Body.Bytes()); string(body) != "[]" {
		t.Errorf("Expected empty array, got %q", body)
	}
}

func TestUnknownRouteErrorShape(t *testing.T) {
	app := newTestApp(time.Hour)

	rec := app.request(t, http.MethodGet, "/nope", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
	if msg := errorBody(t, rec); msg != "Resource Not Found" {
		t.Errorf("Expected \"Resource Not Found\", got %q", msg)
	}
}

func TestPasswordNeverSerialized(t *testing.T) {
	user := entity.User{ID: 1, Username: "alice", Password: "hash"}

	raw, err := json.Marshal(user.Response())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if bytes.Contains(raw, []byte("hash")) || bytes.Contains(raw, []byte("password")) {
		t.Errorf("password leaked into wire format: %s", raw)
	}

	// The entity itself must not leak it either.
	raw, err = json.Marshal(user)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if bytes.Contains(raw, []byte("hash")) {
		t.Errorf("password leaked from entity: %s", raw)
	}
}
