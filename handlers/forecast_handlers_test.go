package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"app/forecast"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStore serves canned data to the engine without a database.
type stubStore struct {
	sales     []forecast.SalesRecord
	inventory []forecast.InventoryLevel
	stored    []forecast.RestockPrediction
}

func (s *stubStore) SalesSince(context.Context, string, time.Time) ([]forecast.SalesRecord, error) {
	return s.sales, nil
}

func (s *stubStore) Inventory(context.Context, string) ([]forecast.InventoryLevel, error) {
	return s.inventory, nil
}

func (s *stubStore) ReplacePredictions(_ context.Context, _ string, predictions []forecast.RestockPrediction) error {
	s.stored = predictions
	return nil
}

func (s *stubStore) PredictionsByShop(context.Context, string, forecast.PlanSort) ([]forecast.RestockPrediction, error) {
	return s.stored, nil
}

func newForecastTestApp(t *testing.T, store *stubStore) *fiber.App {
	t.Helper()
	ForecastEngine = forecast.NewEngine(store, nil)
	t.Cleanup(func() { ForecastEngine = nil })

	app := fiber.New()
	app.Post("/api/v1/shops/:shopId/forecast/run", HandleRunForecast)
	app.Get("/api/v1/shops/:shopId/forecast", HandleGetForecast)
	return app
}

func TestHandleRunForecast(t *testing.T) {
	store := &stubStore{
		inventory: []forecast.InventoryLevel{{ID: "i1", MedicineName: "Paracetamol", Quantity: 20}},
	}
	for i := 0; i < 60; i++ {
		raw, _ := json.Marshal([]map[string]any{{"name": "Paracetamol", "quantity_sold": 3}})
		store.sales = append(store.sales, forecast.SalesRecord{
			CreatedAt: time.Now().AddDate(0, 0, -(i + 1)),
			Items:     forecast.ResolveLineItems(raw),
		})
	}
	app := newForecastTestApp(t, store)

	req := httptest.NewRequest("POST", "/api/v1/shops/shop-1/forecast/run?windowDays=90", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Status string                       `json:"status"`
		Data   []forecast.RestockPrediction `json:"data"`
	}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &body))

	assert.Equal(t, "success", body.Status)
	require.Len(t, body.Data, 1)
	assert.Equal(t, 12, body.Data[0].PredictedQuantity)
	assert.Equal(t, forecast.ReasonLowStock, body.Data[0].Reason)
}

func TestHandleRunForecastRejectsBadWindow(t *testing.T) {
	app := newForecastTestApp(t, &stubStore{})

	req := httptest.NewRequest("POST", "/api/v1/shops/shop-1/forecast/run?windowDays=-5", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleGetForecast(t *testing.T) {
	store := &stubStore{
		stored: []forecast.RestockPrediction{
			{ShopID: "shop-1", MedicineName: "Paracetamol", PredictedQuantity: 12, Reason: forecast.ReasonLowStock},
		},
	}
	app := newForecastTestApp(t, store)

	req := httptest.NewRequest("GET", "/api/v1/shops/shop-1/forecast?sort=priority", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHandleGetForecastRejectsUnknownSort(t *testing.T) {
	app := newForecastTestApp(t, &stubStore{})

	req := httptest.NewRequest("GET", "/api/v1/shops/shop-1/forecast?sort=alphabetical", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestForecastHandlersWithoutEngine(t *testing.T) {
	ForecastEngine = nil
	app := fiber.New()
	app.Post("/run", HandleRunForecast)

	req := httptest.NewRequest("POST", "/run", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
