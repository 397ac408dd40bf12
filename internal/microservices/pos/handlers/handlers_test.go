package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-pos/internal/common/logger"
	"restaurant-pos/internal/common/pagination"
	"restaurant-pos/internal/microservices/pos/cart"
	"restaurant-pos/internal/microservices/pos/domain/dao"
	"restaurant-pos/internal/microservices/pos/domain/dto"
	"restaurant-pos/internal/microservices/pos/repository"
	"restaurant-pos/internal/microservices/pos/service"
)

type stubMenuRepo struct{ items map[string]dao.MenuItem }

func (s stubMenuRepo) List(context.Context, string, pagination.Params) ([]dao.MenuItem, int, error) {
	out := make([]dao.MenuItem, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	return out, len(out), nil
}

func (s stubMenuRepo) Get(_ context.Context, id string) (dao.MenuItem, error) {
	it, ok := s.items[id]
	if !ok {
		return dao.MenuItem{}, repository.ErrNotFound
	}
	return it, nil
}

func (s stubMenuRepo) Create(_ context.Context, item dao.MenuItem) (dao.MenuItem, error) {
	s.items[item.ID] = item
	return item, nil
}

type stubOrders struct {
	err  error
	last dto.CheckoutRequest
}

func (s *stubOrders) Checkout(_ context.Context, _ string, req dto.CheckoutRequest) (dto.CheckoutResponse, error) {
	s.last = req
	if s.err != nil {
		return dto.CheckoutResponse{}, s.err
	}
	return dto.CheckoutResponse{OrderNumber: "ORD_20240501_001", Status: dao.StatusReceived, TotalAmount: 22}, nil
}

type stubTracking struct {
	err error
}

func (s *stubTracking) List(_ context.Context, _ string, p pagination.Params) (pagination.Page[dao.Order], error) {
	return pagination.NewPage([]dao.Order{{OrderNumber: "ORD_1"}}, pagination.Normalize(p), 1), s.err
}

func (s *stubTracking) Get(_ context.Context, number string) (dao.Order, error) {
	if s.err != nil {
		return dao.Order{}, s.err
	}
	return dao.Order{OrderNumber: number, Status: dao.StatusReceived}, nil
}

func (s *stubTracking) Timeline(_ context.Context, number string) (dto.TimelineResponse, error) {
	return dto.TimelineResponse{OrderNumber: number, Events: []dao.StatusLogEntry{{Status: dao.StatusReceived}}}, s.err
}

func (s *stubTracking) UpdateStatus(_ context.Context, number string, req dto.StatusUpdateRequest) (dto.StatusUpdateResponse, error) {
	if s.err != nil {
		return dto.StatusUpdateResponse{}, s.err
	}
	return dto.StatusUpdateResponse{OrderNumber: number, OldStatus: dao.StatusReceived, NewStatus: dao.Status(req.Status)}, nil
}

type stubReceipts struct{}

func (stubReceipts) Receipt(_ context.Context, number string) ([]byte, error) {
	if number == "ORD_404" {
		return nil, repository.ErrNotFound
	}
	return []byte("%PDF-1.3 fake"), nil
}

type stubReports struct{}

func (stubReports) Sales(_ context.Context, from, to string) (dto.SalesReport, error) {
	if from == "bad" {
		return dto.SalesReport{}, fmt.Errorf("%w: from must be YYYY-MM-DD", service.ErrValidation)
	}
	return dto.SalesReport{From: from, To: to, OrderCount: 2}, nil
}

func (stubReports) Workers(context.Context) ([]dao.Worker, error) {
	return []dao.Worker{{Name: "chef_anna", Type: "dine_in", Status: "online", OrdersProcessed: 4}}, nil
}

type testServer struct {
	router   http.Handler
	orders   *stubOrders
	tracking *stubTracking
}

func newTestServer() *testServer {
	menu := stubMenuRepo{items: map[string]dao.MenuItem{
		"B": {ID: "B", Name: "Cola", Category: "drink", Price: 5, Available: true},
		"C": {ID: "C", Name: "Tiramisu", Category: "dessert", Price: 15, Available: true},
		"S": {ID: "S", Name: "Special", Category: "main", Price: 30},
	}}
	orders := &stubOrders{}
	tracking := &stubTracking{}
	svc := &service.Service{
		MenuService:     service.NewMenuService(menu),
		CartService:     service.NewCartService(cart.NewRegistry(), menu, cart.DefaultRates),
		OrderService:    orders,
		TrackingService: tracking,
		ReportService:   stubReports{},
		ReceiptService:  stubReceipts{},
	}
	return &testServer{router: Router(New(svc, logger.NewNop())), orders: orders, tracking: tracking}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func (ts *testServer) openSession(t *testing.T) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode[dto.SessionResponse](t, rec).SessionID
}

func TestCartFlow(t *testing.T) {
	ts := newTestServer()
	session := ts.openSession(t)
	base := "/api/v1/sessions/" + session + "/cart"

	rec := ts.do(t, http.MethodPost, base+"/items", dto.AddItemRequest{MenuItemID: "B", Quantity: qty(1)})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodPost, base+"/items", dto.AddItemRequest{MenuItemID: "C", Quantity: qty(1)})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, base+"?promo=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[dto.CartView](t, rec)
	assert.Len(t, view.Items, 2)
	assert.InDelta(t, 20, view.Totals.Subtotal, 1e-9)
	assert.InDelta(t, 2, view.Totals.Tax, 1e-9)
	assert.InDelta(t, 2, view.Totals.Discount, 1e-9)
	assert.InDelta(t, 20, view.Totals.Total, 1e-9)

	rec = ts.do(t, http.MethodPatch, base+"/items/B", dto.UpdateQuantityRequest{Quantity: qty(3)})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 30, decode[dto.CartView](t, rec).Totals.Subtotal, 1e-9)

	rec = ts.do(t, http.MethodPatch, base+"/items/B", dto.UpdateQuantityRequest{Quantity: qty(0)})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[dto.CartView](t, rec).Items, 1)

	rec = ts.do(t, http.MethodDelete, base+"/items/Z", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodDelete, base+"?promo=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := decode[dto.CartView](t, rec)
	assert.Empty(t, cleared.Items)
	assert.True(t, cleared.PromoApplied)

	rec = ts.do(t, http.MethodDelete, "/api/v1/sessions/"+session, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = ts.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOmittedQuantity(t *testing.T) {
	ts := newTestServer()
	session := ts.openSession(t)
	base := "/api/v1/sessions/" + session + "/cart"

	rec := ts.do(t, http.MethodPost, base+"/items", map[string]any{"menu_item_id": "B"})
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[dto.CartView](t, rec)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 1, view.Items[0].Quantity)

	rec = ts.do(t, http.MethodPatch, base+"/items/B", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", decode[map[string]any](t, rec)["type"])

	rec = ts.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view = decode[dto.CartView](t, rec)
	require.Len(t, view.Items, 1, "a missing quantity must not delete the line")
	assert.Equal(t, 1, view.Items[0].Quantity)
}

func TestAddItemErrors(t *testing.T) {
	ts := newTestServer()
	session := ts.openSession(t)
	path := "/api/v1/sessions/" + session + "/cart/items"

	tests := []struct {
		name string
		body any
		code int
		typ  string
	}{
		{"zero quantity", dto.AddItemRequest{MenuItemID: "B", Quantity: qty(0)}, http.StatusBadRequest, "validation_error"},
		{"unknown item", dto.AddItemRequest{MenuItemID: "X", Quantity: qty(1)}, http.StatusNotFound, "not_found"},
		{"unavailable", dto.AddItemRequest{MenuItemID: "S", Quantity: qty(1)}, http.StatusConflict, "item_unavailable"},
		{"unknown field", map[string]any{"menu_item_id": "B", "qty": 1}, http.StatusBadRequest, "invalid_json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, path, tt.body)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.typ, decode[map[string]any](t, rec)["type"])
		})
	}
}

func TestCheckout(t *testing.T) {
	ts := newTestServer()
	session := ts.openSession(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/sessions/"+session+"/checkout",
		dto.CheckoutRequest{CustomerName: "Ada", OrderType: "takeout", PromoApplied: true})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "ORD_20240501_001", decode[dto.CheckoutResponse](t, rec).OrderNumber)
	assert.True(t, ts.orders.last.PromoApplied)

	for _, tc := range []struct {
		err  error
		code int
	}{
		{service.ErrEmptyCart, http.StatusUnprocessableEntity},
		{service.ErrPublishFailed, http.StatusServiceUnavailable},
		{cart.ErrSessionNotFound, http.StatusNotFound},
		{cart.ErrCheckoutInProgress, http.StatusConflict},
		{fmt.Errorf("%w: customer name is required", service.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("db exploded"), http.StatusInternalServerError},
	} {
		ts.orders.err = tc.err
		rec = ts.do(t, http.MethodPost, "/api/v1/sessions/"+session+"/checkout", dto.CheckoutRequest{})
		assert.Equal(t, tc.code, rec.Code, tc.err.Error())
	}
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	ts := newTestServer()
	ts.tracking.err = fmt.Errorf("pq: password authentication failed")

	rec := ts.do(t, http.MethodGet, "/api/v1/orders/ORD_1", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestOrderEndpoints(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodGet, "/api/v1/orders?status=received&page=1&page_size=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[pagination.Page[dao.Order]](t, rec)
	assert.Equal(t, 5, page.PageSize)
	assert.Len(t, page.Items, 1)

	rec = ts.do(t, http.MethodGet, "/api/v1/orders/ORD_1/timeline", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[dto.TimelineResponse](t, rec).Events, 1)

	rec = ts.do(t, http.MethodPatch, "/api/v1/orders/ORD_1/status", dto.StatusUpdateRequest{Status: "cooking"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dao.StatusCooking, decode[dto.StatusUpdateResponse](t, rec).NewStatus)

	ts.tracking.err = service.ErrInvalidTransition
	rec = ts.do(t, http.MethodPatch, "/api/v1/orders/ORD_1/status", dto.StatusUpdateRequest{Status: "completed"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestReceiptEndpoint(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodGet, "/api/v1/orders/ORD_1/receipt", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))

	rec = ts.do(t, http.MethodGet, "/api/v1/orders/ORD_404/receipt", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMenuAndReports(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodGet, "/api/v1/menu", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[pagination.Page[dao.MenuItem]](t, rec).Total)

	rec = ts.do(t, http.MethodPost, "/api/v1/menu", dto.CreateMenuItemRequest{Name: "Soup", Category: "starter", Price: 4})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[dao.MenuItem](t, rec)

	rec = ts.do(t, http.MethodGet, "/api/v1/menu/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/reports/sales?from=2024-05-01&to=2024-05-02", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[dto.SalesReport](t, rec).OrderCount)

	rec = ts.do(t, http.MethodGet, "/api/v1/reports/sales?from=bad", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/workers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	workers := decode[[]dao.Worker](t, rec)
	require.Len(t, workers, 1)
	assert.Equal(t, "chef_anna", workers[0].Name)
}

func TestRouting(t *testing.T) {
	ts := newTestServer()
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/v1/nope", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, ts.do(t, http.MethodPut, "/api/v1/menu", nil).Code)
}

func qty(n int) *int { return &n }
