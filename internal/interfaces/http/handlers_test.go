package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Pedidos-api/internal/application/dto"
	"github.com/jhoicas/Pedidos-api/internal/domain"
	apphttp "github.com/jhoicas/Pedidos-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes de casos de uso
// ──────────────────────────────────────────────────────────────────────────────

type fakeOrders struct {
	created  []dto.CreateOrderRequest
	err      error
	lastPage dto.PageRequest
}

func (f *fakeOrders) CreateOrder(_ context.Context, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	if in.ProductID <= 0 || in.Quantity <= 0 {
		return nil, domain.ErrValidation
	}
	f.created = append(f.created, in)
	return &dto.OrderResponse{ID: int64(len(f.created)), ProductID: in.ProductID, Quantity: in.Quantity, CreatedAt: time.Now()}, nil
}

func (f *fakeOrders) GetByID(_ context.Context, id int64) (*dto.OrderResponse, error) {
	if id != 1 {
		return nil, domain.ErrNotFound
	}
	return &dto.OrderResponse{ID: 1, ProductID: 2, Quantity: 3}, nil
}

func (f *fakeOrders) List(_ context.Context, page dto.PageRequest) (*dto.OrderListResponse, error) {
	f.lastPage = page
	return &dto.OrderListResponse{Items: []dto.OrderResponse{{ID: 1}}, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

type fakeProducts struct {
	deleteErr error
}

func (f *fakeProducts) Create(_ context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	return &dto.ProductResponse{ID: 1, Name: in.Name, Price: in.Price, Stock: in.Stock}, nil
}

func (f *fakeProducts) GetByID(_ context.Context, id int64) (*dto.ProductResponse, error) {
	if id != 1 {
		return nil, domain.ErrNotFound
	}
	return &dto.ProductResponse{ID: 1, Name: "Widget", Price: decimal.NewFromInt(10), Stock: 5}, nil
}

func (f *fakeProducts) Update(_ context.Context, id int64, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	out := &dto.ProductResponse{ID: id}
	if in.Stock != nil {
		out.Stock = *in.Stock
	}
	return out, nil
}

func (f *fakeProducts) List(context.Context, dto.PageRequest) (*dto.ProductListResponse, error) {
	return &dto.ProductListResponse{}, nil
}

func (f *fakeProducts) Delete(context.Context, int64) error { return f.deleteErr }

func newTestApp(orders *fakeOrders, products *fakeProducts, jwtSecret string, health func(context.Context) error) *fiber.App {
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		PlaceOrder:  orders,
		OrderQuery:  orders,
		ProductUC:   products,
		HealthCheck: health,
		ServiceName: "pedidos-api",
		JWTSecret:   jwtSecret,
	})
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body, auth string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

func errorCode(t *testing.T, body []byte) dto.ErrorResponse {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	return e
}

// ──────────────────────────────────────────────────────────────────────────────
// Orders
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateOrder_Retorna201(t *testing.T) {
	orders := &fakeOrders{}
	app := newTestApp(orders, &fakeProducts{}, "", nil)

	resp, body := do(t, app, http.MethodPost, "/orders", `{"product_id":2,"quantity":3}`, "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var out dto.OrderResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, int64(1), out.ID)
	assert.Equal(t, int64(2), out.ProductID)
	assert.Equal(t, int64(3), out.Quantity)
	assert.Equal(t, []dto.CreateOrderRequest{{ProductID: 2, Quantity: 3}}, orders.created)
}

func TestCreateOrder_CuerpoInvalido(t *testing.T) {
	app := newTestApp(&fakeOrders{}, &fakeProducts{}, "", nil)

	resp, body := do(t, app, http.MethodPost, "/orders", `{"product_id":`, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", errorCode(t, body).Code)
}

func TestCreateOrder_MapeoDeErrores(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrValidation, http.StatusBadRequest, "VALIDATION"},
		{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrInsufficientStock, http.StatusBadRequest, "INSUFFICIENT_STOCK"},
		{fmt.Errorf("get product for update: %w", domain.ErrTimeout), http.StatusServiceUnavailable, "TIMEOUT"},
		{fmt.Errorf("commit transaction: %w: %w", domain.ErrTransaction, errors.New("conn reset")), http.StatusInternalServerError, "TRANSACTION_FAILED"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			app := newTestApp(&fakeOrders{err: tt.err}, &fakeProducts{}, "", nil)
			resp, body := do(t, app, http.MethodPost, "/orders", `{"product_id":1,"quantity":1}`, "")
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, errorCode(t, body).Code)
		})
	}
}

func TestCreateOrder_ErrorInternoNoExponeDetalle(t *testing.T) {
	err := fmt.Errorf("commit transaction: %w: %w", domain.ErrTransaction, errors.New("password authentication failed"))
	app := newTestApp(&fakeOrders{err: err}, &fakeProducts{}, "", nil)

	_, body := do(t, app, http.MethodPost, "/orders", `{"product_id":1,"quantity":1}`, "")
	assert.NotContains(t, string(body), "password")
}

func TestCreateOrder_CantidadCero(t *testing.T) {
	app := newTestApp(&fakeOrders{}, &fakeProducts{}, "", nil)

	resp, body := do(t, app, http.MethodPost, "/orders", `{"product_id":1,"quantity":0}`, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, body).Code)
}

func TestGetOrder(t *testing.T) {
	app := newTestApp(&fakeOrders{}, &fakeProducts{}, "", nil)

	resp, _ := do(t, app, http.MethodGet, "/orders/1", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, app, http.MethodGet, "/orders/2", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := do(t, app, http.MethodGet, "/orders/abc", "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_ID", errorCode(t, body).Code)
}

func TestListOrders_PasaPaginacion(t *testing.T) {
	orders := &fakeOrders{}
	app := newTestApp(orders, &fakeProducts{}, "", nil)

	resp, _ := do(t, app, http.MethodGet, "/orders?limit=5&offset=10", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, dto.PageRequest{Limit: 5, Offset: 10}, orders.lastPage)
}

// ──────────────────────────────────────────────────────────────────────────────
// Products
// ──────────────────────────────────────────────────────────────────────────────

func TestProducts_EscrituraRequiereAdminConJWT(t *testing.T) {
	app := newTestApp(&fakeOrders{}, &fakeProducts{}, testJWTSecret, nil)
	body := `{"name":"Widget","price":"10.50","stock":5}`

	resp, _ := do(t, app, http.MethodPost, "/products", body, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = do(t, app, http.MethodPost, "/products", body, tokenForRole(t, "operador"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, out := do(t, app, http.MethodPost, "/products", body, tokenForRole(t, "admin"))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var p dto.ProductResponse
	require.NoError(t, json.Unmarshal(out, &p))
	assert.True(t, p.Price.Equal(decimal.RequireFromString("10.50")))

	// Lectura pública
	resp, _ = do(t, app, http.MethodGet, "/products/1", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProducts_SinJWTSecretNoExigeToken(t *testing.T) {
	app := newTestApp(&fakeOrders{}, &fakeProducts{}, "", nil)

	resp, body := do(t, app, http.MethodPut, "/products/3", `{"stock":7}`, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var p dto.ProductResponse
	require.NoError(t, json.Unmarshal(body, &p))
	assert.Equal(t, int64(7), p.Stock)
}

func TestDeleteProduct(t *testing.T) {
	app := newTestApp(&fakeOrders{}, &fakeProducts{deleteErr: domain.ErrConflict}, "", nil)
	resp, body := do(t, app, http.MethodDelete, "/products/1", "", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", errorCode(t, body).Code)

	app = newTestApp(&fakeOrders{}, &fakeProducts{}, "", nil)
	resp, _ = do(t, app, http.MethodDelete, "/products/1", "", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Health
// ──────────────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	app := newTestApp(&fakeOrders{}, &fakeProducts{}, "", func(context.Context) error { return nil })
	resp, body := do(t, app, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"ok"`)

	app = newTestApp(&fakeOrders{}, &fakeProducts{}, "", func(context.Context) error { return errors.New("db down") })
	resp, _ = do(t, app, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
