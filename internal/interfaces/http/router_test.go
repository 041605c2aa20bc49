package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/gelp-api/internal/application/analytics"
	appinventory "github.com/jhoicas/gelp-api/internal/application/inventory"
	"github.com/jhoicas/gelp-api/internal/application/sales"
	"github.com/jhoicas/gelp-api/internal/application/usecase"
	"github.com/jhoicas/gelp-api/internal/infrastructure/memory"
	"github.com/jhoicas/gelp-api/internal/infrastructure/metrics"
	apphttp "github.com/jhoicas/gelp-api/internal/interfaces/http"
)

// buildTestApp arma la API completa sobre el store en memoria.
func buildTestApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	app := apphttp.NewApp("gelp-test")
	apphttp.Router(app, apphttp.RouterDeps{
		CategoryUC: usecase.NewCategoryUseCase(store.Categories()),
		ProductUC:  usecase.NewProductUseCase(store.Products(), store.Categories()),
		ClientUC:   usecase.NewClientUseCase(store.Clients()),
		SupplierUC: usecase.NewSupplierUseCase(store.Suppliers()),
		StockUC: appinventory.NewStockLedgerUseCase(store, store.Stock(), store.Products(),
			store.Suppliers(), store.StockEntries(), m, nil, time.Second),
		SaleUC: sales.NewSaleUseCase(store, store.Products(), store.Clients(), store.Sales(), nil, m, nil,
			sales.Config{Timeout: time.Second, MaxAttempts: 3, RetryInitial: time.Millisecond, RetryMax: 2 * time.Millisecond}),
		DashboardUC: appanalytics.NewDashboardUseCase(store.Dashboard(), time.UTC),
		Metrics:     reg,
	})
	return app
}

// do ejecuta un request JSON y decodifica la respuesta en out (si no es nil).
func do(t *testing.T, app *fiber.App, method, path string, body any, headers map[string]string, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// createProduct crea un producto y fija su stock.
func createProduct(t *testing.T, app *fiber.App, name string, qty int) string {
	t.Helper()
	var product struct {
		ID string `json:"id"`
	}
	status := do(t, app, http.MethodPost, "/api/products", map[string]any{"name": name, "price": "2.50"}, nil, &product)
	require.Equal(t, fiber.StatusCreated, status)
	require.NotEmpty(t, product.ID)

	status = do(t, app, http.MethodPut, "/api/stock/"+product.ID, map[string]any{"quantity": qty}, nil, nil)
	require.Equal(t, fiber.StatusOK, status)
	return product.ID
}

type errorBody struct {
	Code      string            `json:"code"`
	Field     string            `json:"field"`
	Retryable bool              `json:"retryable"`
	Details   []json.RawMessage `json:"details"`
}

func TestHealth(t *testing.T) {
	app := buildTestApp(t)
	var body map[string]string
	status := do(t, app, http.MethodGet, "/health", nil, nil, &body)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestSaleFlow(t *testing.T) {
	app := buildTestApp(t)
	productID := createProduct(t, app, "Maçã", 10)

	sale := map[string]any{
		"items": []map[string]any{{"product_id": productID, "quantity": 3, "unit_price": "2.50"}},
	}
	headers := map[string]string{apphttp.IdempotencyKeyHeader: "pos-1-0001"}

	var created struct {
		SaleID   string `json:"sale_id"`
		Total    string `json:"total"`
		Replayed bool   `json:"replayed"`
	}
	status := do(t, app, http.MethodPost, "/api/sales", sale, headers, &created)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "7.5", created.Total)
	assert.False(t, created.Replayed)

	var level struct {
		Quantity int `json:"quantity"`
	}
	require.Equal(t, fiber.StatusOK, do(t, app, http.MethodGet, "/api/stock/"+productID, nil, nil, &level))
	assert.Equal(t, 7, level.Quantity)

	// Reenvío con la misma clave: misma venta, sin nuevo descuento.
	var replay struct {
		SaleID   string `json:"sale_id"`
		Replayed bool   `json:"replayed"`
	}
	status = do(t, app, http.MethodPost, "/api/sales", sale, headers, &replay)
	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, replay.Replayed)
	assert.Equal(t, created.SaleID, replay.SaleID)
	require.Equal(t, fiber.StatusOK, do(t, app, http.MethodGet, "/api/stock/"+productID, nil, nil, &level))
	assert.Equal(t, 7, level.Quantity)

	var detail struct {
		ID    string `json:"id"`
		Items []struct {
			ProductName string `json:"product_name"`
			Quantity    int    `json:"quantity"`
		} `json:"items"`
	}
	require.Equal(t, fiber.StatusOK, do(t, app, http.MethodGet, "/api/sales/"+created.SaleID, nil, nil, &detail))
	assert.Equal(t, created.SaleID, detail.ID)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, "Maçã", detail.Items[0].ProductName)
	assert.Equal(t, 3, detail.Items[0].Quantity)

	var list struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	require.Equal(t, fiber.StatusOK, do(t, app, http.MethodGet, "/api/sales?limit=10", nil, nil, &list))
	require.Len(t, list.Items, 1)

	var counts struct {
		TotalProducts int `json:"total_products"`
		SalesToday    int `json:"sales_today"`
	}
	require.Equal(t, fiber.StatusOK, do(t, app, http.MethodGet, "/api/dashboard", nil, nil, &counts))
	assert.Equal(t, 1, counts.TotalProducts)
	assert.Equal(t, 1, counts.SalesToday)
}

func TestSaleIdempotencyMismatch(t *testing.T) {
	app := buildTestApp(t)
	productID := createProduct(t, app, "Leite", 10)
	headers := map[string]string{apphttp.IdempotencyKeyHeader: "k-1"}

	first := map[string]any{"items": []map[string]any{{"product_id": productID, "quantity": 1, "unit_price": "4.20"}}}
	require.Equal(t, fiber.StatusCreated, do(t, app, http.MethodPost, "/api/sales", first, headers, nil))

	second := map[string]any{"items": []map[string]any{{"product_id": productID, "quantity": 2, "unit_price": "4.20"}}}
	var body errorBody
	status := do(t, app, http.MethodPost, "/api/sales", second, headers, &body)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "IDEMPOTENCY_MISMATCH", body.Code)
	assert.False(t, body.Retryable)
}

func TestSaleInsufficientStock(t *testing.T) {
	app := buildTestApp(t)
	productID := createProduct(t, app, "Pão", 2)

	sale := map[string]any{"items": []map[string]any{{"product_id": productID, "quantity": 5, "unit_price": "0.80"}}}
	var body errorBody
	status := do(t, app, http.MethodPost, "/api/sales", sale, nil, &body)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.Len(t, body.Details, 1)

	var level struct {
		Quantity int `json:"quantity"`
	}
	require.Equal(t, fiber.StatusOK, do(t, app, http.MethodGet, "/api/stock/"+productID, nil, nil, &level))
	assert.Equal(t, 2, level.Quantity)
}

func TestSaleValidationErrors(t *testing.T) {
	app := buildTestApp(t)
	productID := createProduct(t, app, "Queijo", 5)

	tests := []struct {
		name     string
		body     any
		wantCode string
		status   int
	}{
		{"sin ítems", map[string]any{"items": []any{}}, "EMPTY_SALE", fiber.StatusBadRequest},
		{"cantidad cero", map[string]any{"items": []map[string]any{{"product_id": productID, "quantity": 0, "unit_price": "1"}}}, "INVALID_QUANTITY", fiber.StatusBadRequest},
		{"producto inexistente", map[string]any{"items": []map[string]any{{"product_id": "no-existe", "quantity": 1, "unit_price": "1"}}}, "NOT_FOUND", fiber.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body errorBody
			status := do(t, app, http.MethodPost, "/api/sales", tt.body, nil, &body)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}

func TestInvalidBody(t *testing.T) {
	app := buildTestApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/sales", strings.NewReader("{no-json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", body.Code)
}

func TestStockEndpoints(t *testing.T) {
	app := buildTestApp(t)
	productID := createProduct(t, app, "Manteiga", 4)

	var adjusted struct {
		Quantity int `json:"quantity"`
	}
	status := do(t, app, http.MethodPost, "/api/stock/"+productID+"/adjust", map[string]any{"delta": -3}, nil, &adjusted)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 1, adjusted.Quantity)

	var body errorBody
	status = do(t, app, http.MethodPost, "/api/stock/"+productID+"/adjust", map[string]any{"delta": -2}, nil, &body)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)

	status = do(t, app, http.MethodPut, "/api/stock/"+productID, map[string]any{"quantity": -1}, nil, &body)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status = do(t, app, http.MethodPut, "/api/stock/"+productID, map[string]any{}, nil, &body)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "quantity", body.Field)

	var many struct {
		Quantities map[string]int `json:"quantities"`
	}
	status = do(t, app, http.MethodPost, "/api/stock/adjustments", map[string]any{
		"items": []map[string]any{{"product_id": productID, "delta": 5}},
	}, nil, &many)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 6, many.Quantities[productID])

	var entry struct {
		NewQuantity int `json:"new_quantity"`
	}
	status = do(t, app, http.MethodPost, "/api/stock/entries", map[string]any{
		"product_id": productID, "quantity": 4, "unit_cost": "1.00",
	}, nil, &entry)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, 10, entry.NewQuantity)

	var entries struct {
		Items []json.RawMessage `json:"items"`
	}
	require.Equal(t, fiber.StatusOK, do(t, app, http.MethodGet, "/api/stock/entries?product_id="+productID, nil, nil, &entries))
	assert.Len(t, entries.Items, 1)

	var stockList []struct {
		ProductID   string `json:"product_id"`
		ProductName string `json:"product_name"`
	}
	require.Equal(t, fiber.StatusOK, do(t, app, http.MethodGet, "/api/stock", nil, nil, &stockList))
	require.Len(t, stockList, 1)
	assert.Equal(t, "Manteiga", stockList[0].ProductName)

	status = do(t, app, http.MethodGet, "/api/stock/no-existe", nil, nil, &body)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestStockKeysSurviveLaterRequests(t *testing.T) {
	app := buildTestApp(t)
	productID := createProduct(t, app, "Feijão", 1)

	var many struct {
		Quantities map[string]int `json:"quantities"`
	}
	status := do(t, app, http.MethodPost, "/api/stock/adjustments", map[string]any{
		"items": []map[string]any{{"product_id": productID, "delta": 5}},
	}, nil, &many)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 6, many.Quantities[productID])

	// Requests posteriores reutilizan los buffers de fasthttp.
	for _, fill := range []string{"x", "y", "z"} {
		do(t, app, http.MethodGet, "/api/stock/"+strings.Repeat(fill, len(productID)), nil, nil, nil)
		do(t, app, http.MethodPost, "/api/sales", map[string]any{"items": []map[string]any{}}, map[string]string{
			apphttp.IdempotencyKeyHeader: strings.Repeat(fill, len(productID)),
		}, nil)
		do(t, app, http.MethodGet, "/api/categories", nil, nil, nil)
	}

	var level struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	require.Equal(t, fiber.StatusOK, do(t, app, http.MethodGet, "/api/stock/"+productID, nil, nil, &level))
	assert.Equal(t, productID, level.ProductID)
	assert.Equal(t, 6, level.Quantity)

	var stockList []struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	require.Equal(t, fiber.StatusOK, do(t, app, http.MethodGet, "/api/stock", nil, nil, &stockList))
	require.Len(t, stockList, 1)
	assert.Equal(t, productID, stockList[0].ProductID)
	assert.Equal(t, 6, stockList[0].Quantity)
}

func TestStockAdjustOutOfRange(t *testing.T) {
	app := buildTestApp(t)
	productID := createProduct(t, app, "Açúcar", 1)

	var body errorBody
	status := do(t, app, http.MethodPost, "/api/stock/"+productID+"/adjust", map[string]any{"delta": math.MaxInt64}, nil, &body)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "delta", body.Field)

	var level struct {
		Quantity int `json:"quantity"`
	}
	require.Equal(t, fiber.StatusOK, do(t, app, http.MethodGet, "/api/stock/"+productID, nil, nil, &level))
	assert.Equal(t, 1, level.Quantity)
}

func TestCatalogCRUD(t *testing.T) {
	app := buildTestApp(t)

	var client struct {
		ID string `json:"id"`
	}
	require.Equal(t, fiber.StatusCreated, do(t, app, http.MethodPost, "/api/clients",
		map[string]any{"name": "Ana", "cpf": "123.456.789-00"}, nil, &client))

	var body errorBody
	status := do(t, app, http.MethodPost, "/api/clients", map[string]any{"name": "Otra", "cpf": "123.456.789-00"}, nil, &body)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", body.Code)

	require.Equal(t, fiber.StatusNoContent, do(t, app, http.MethodDelete, "/api/clients/"+client.ID, nil, nil, nil))
	assert.Equal(t, fiber.StatusNotFound, do(t, app, http.MethodGet, "/api/clients/"+client.ID, nil, nil, &body))

	var category struct {
		ID string `json:"id"`
	}
	require.Equal(t, fiber.StatusCreated, do(t, app, http.MethodPost, "/api/categories", map[string]any{"name": "Frutas"}, nil, &category))

	var product struct {
		CategoryName string `json:"category_name"`
	}
	require.Equal(t, fiber.StatusCreated, do(t, app, http.MethodPost, "/api/products",
		map[string]any{"name": "Banana", "price": "3.00", "category_id": category.ID}, nil, nil))

	var products struct {
		Items []json.RawMessage `json:"items"`
	}
	require.Equal(t, fiber.StatusOK, do(t, app, http.MethodGet, "/api/products", nil, nil, &products))
	require.Len(t, products.Items, 1)
	require.NoError(t, json.Unmarshal(products.Items[0], &product))
	assert.Equal(t, "Frutas", product.CategoryName)

	var supplier struct {
		ID string `json:"id"`
	}
	require.Equal(t, fiber.StatusCreated, do(t, app, http.MethodPost, "/api/suppliers", map[string]any{"name": "Fazenda"}, nil, &supplier))
	require.Equal(t, fiber.StatusOK, do(t, app, http.MethodGet, "/api/suppliers/"+supplier.ID, nil, nil, nil))
}

func TestMetricsEndpoint(t *testing.T) {
	app := buildTestApp(t)
	productID := createProduct(t, app, "Uva", 3)
	sale := map[string]any{"items": []map[string]any{{"product_id": productID, "quantity": 1, "unit_price": "1.00"}}}
	require.Equal(t, fiber.StatusCreated, do(t, app, http.MethodPost, "/api/sales", sale, nil, nil))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "sales_committed_total 1")
}
