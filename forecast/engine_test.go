package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store double.
type fakeStore struct {
	sales     []SalesRecord
	inventory []InventoryLevel
	stored    map[string][]RestockPrediction

	salesErr   error
	invErr     error
	replaceErr error

	replaceCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{stored: make(map[string][]RestockPrediction)}
}

func (f *fakeStore) SalesSince(_ context.Context, _ string, since time.Time) ([]SalesRecord, error) {
	if f.salesErr != nil {
		return nil, f.salesErr
	}
	var out []SalesRecord
	for _, rec := range f.sales {
		if !rec.CreatedAt.Before(since) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) Inventory(_ context.Context, _ string) ([]InventoryLevel, error) {
	if f.invErr != nil {
		return nil, f.invErr
	}
	return f.inventory, nil
}

func (f *fakeStore) ReplacePredictions(_ context.Context, shopID string, predictions []RestockPrediction) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.replaceCalls++
	f.stored[shopID] = predictions
	return nil
}

func (f *fakeStore) PredictionsByShop(_ context.Context, shopID string, _ PlanSort) ([]RestockPrediction, error) {
	return f.stored[shopID], nil
}

func itemsJSON(t *testing.T, items []map[string]any) LineItems {
	t.Helper()
	raw, err := json.Marshal(items)
	require.NoError(t, err)
	return ResolveLineItems(raw)
}

func saleOn(t *testing.T, daysAgo int, name string, qty int) SalesRecord {
	t.Helper()
	return SalesRecord{
		CreatedAt: time.Now().AddDate(0, 0, -daysAgo),
		Items:     itemsJSON(t, []map[string]any{{"name": name, "quantity_sold": qty}}),
	}
}

func TestComputeRestockPlanExampleScenario(t *testing.T) {
	store := newFakeStore()
	store.inventory = []InventoryLevel{{ID: "i1", MedicineName: "Paracetamol", Quantity: 20}}
	// 180 units over the 90-day window: 2.0/day, reorder point 32.
	for i := 0; i < 60; i++ {
		store.sales = append(store.sales, saleOn(t, i+1, "Paracetamol", 3))
	}
	engine := NewEngine(store, nil)

	plan, err := engine.ComputeRestockPlan(context.Background(), "shop-1", 90)
	require.NoError(t, err)
	require.Len(t, plan, 1)

	p := plan[0]
	assert.Equal(t, "Paracetamol", p.MedicineName)
	assert.Equal(t, 20, p.CurrentStock)
	assert.Equal(t, 2.0, p.AvgDailySales)
	assert.Equal(t, 12, p.PredictedQuantity)
	assert.Equal(t, ReasonLowStock, p.Reason)
	assert.Equal(t, 0.9, p.ConfidenceScore)
}

func TestDeadStockClassification(t *testing.T) {
	store := newFakeStore()
	store.inventory = []InventoryLevel{{ID: "i1", MedicineName: "Cetirizine", Quantity: 40}}
	engine := NewEngine(store, nil)

	plan, err := engine.ComputeRestockPlan(context.Background(), "shop-1", 90)
	require.NoError(t, err)
	require.Len(t, plan, 1)

	p := plan[0]
	assert.Zero(t, p.AvgDailySales)
	assert.Zero(t, p.PredictedQuantity)
	assert.Equal(t, ReasonDeadStock, p.Reason)
	assert.Equal(t, 0.5, p.ConfidenceScore)
}

func TestReorderThreshold(t *testing.T) {
	store := newFakeStore()
	store.inventory = []InventoryLevel{
		{ID: "i1", MedicineName: "Amoxicillin", Quantity: 10},  // below 1.0*16
		{ID: "i2", MedicineName: "Ibuprofen", Quantity: 100},   // well above
	}
	for i := 0; i < 90; i++ {
		store.sales = append(store.sales,
			saleOn(t, i, "Amoxicillin", 1),
			saleOn(t, i, "Ibuprofen", 1))
	}
	engine := NewEngine(store, nil)

	plan, err := engine.ComputeRestockPlan(context.Background(), "shop-1", 90)
	require.NoError(t, err)
	require.Len(t, plan, 2)

	byName := map[string]RestockPrediction{}
	for _, p := range plan {
		byName[p.MedicineName] = p
	}

	low := byName["Amoxicillin"]
	assert.Equal(t, ReasonLowStock, low.Reason)
	assert.Equal(t, 6, low.PredictedQuantity) // ceil(16 - 10)

	healthy := byName["Ibuprofen"]
	assert.Equal(t, ReasonHealthy, healthy.Reason)
	assert.Zero(t, healthy.PredictedQuantity)
	assert.Equal(t, 0.9, healthy.ConfidenceScore)
}

func TestAggregationSumsAcrossOrders(t *testing.T) {
	records := []SalesRecord{
		saleOn(t, 1, "X", 3),
		saleOn(t, 5, "X", 5),
		saleOn(t, 10, "X", 2),
		saleOn(t, 10, "Y", 7),
	}
	totals, skipped := aggregateSales(records)
	assert.Equal(t, 10, totals["X"])
	assert.Equal(t, 7, totals["Y"])
	assert.Zero(t, skipped)
}

func TestMalformedOrdersContributeNothing(t *testing.T) {
	store := newFakeStore()
	store.inventory = []InventoryLevel{{ID: "i1", MedicineName: "Dolo 650", Quantity: 5}}
	store.sales = []SalesRecord{
		{CreatedAt: time.Now().AddDate(0, 0, -3), Items: ResolveLineItems([]byte(`"not json"`))},
		{CreatedAt: time.Now().AddDate(0, 0, -4), Items: ResolveLineItems(nil)},
	}
	engine := NewEngine(store, nil)

	plan, err := engine.ComputeRestockPlan(context.Background(), "shop-1", 90)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, ReasonDeadStock, plan[0].Reason)
}

func TestEmptyInventoryReturnsEmptyPlan(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, nil)

	plan, err := engine.ComputeRestockPlan(context.Background(), "shop-1", 90)
	require.NoError(t, err)
	assert.Empty(t, plan)
	assert.Equal(t, 1, store.replaceCalls)
}

func TestRepeatRunsAreIdempotent(t *testing.T) {
	store := newFakeStore()
	store.inventory = []InventoryLevel{
		{ID: "i1", MedicineName: "Paracetamol", Quantity: 20},
		{ID: "i2", MedicineName: "Cetirizine", Quantity: 8},
	}
	for i := 0; i < 30; i++ {
		store.sales = append(store.sales, saleOn(t, i+1, "Paracetamol", 2))
	}
	engine := NewEngine(store, nil)

	first, err := engine.ComputeRestockPlan(context.Background(), "shop-1", 90)
	require.NoError(t, err)
	second, err := engine.ComputeRestockPlan(context.Background(), "shop-1", 90)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].AvgDailySales, second[i].AvgDailySales)
		assert.Equal(t, first[i].PredictedQuantity, second[i].PredictedQuantity)
		assert.Equal(t, first[i].Reason, second[i].Reason)
	}
}

func TestOnlyActiveRowsPersisted(t *testing.T) {
	store := newFakeStore()
	store.inventory = []InventoryLevel{
		{ID: "i1", MedicineName: "Paracetamol", Quantity: 2},
		{ID: "i2", MedicineName: "Unsold Syrup", Quantity: 50},
	}
	store.sales = []SalesRecord{saleOn(t, 1, "Paracetamol", 9)}
	engine := NewEngine(store, nil)

	plan, err := engine.ComputeRestockPlan(context.Background(), "shop-1", 90)
	require.NoError(t, err)
	assert.Len(t, plan, 2) // caller sees every item

	stored := store.stored["shop-1"]
	require.Len(t, stored, 1) // dead stock with zero restock is not persisted
	assert.Equal(t, "Paracetamol", stored[0].MedicineName)
}

func TestInvalidWindowRejectedBeforeIO(t *testing.T) {
	store := newFakeStore()
	store.salesErr = errors.New("should not be called")
	engine := NewEngine(store, nil)

	_, err := engine.ComputeRestockPlan(context.Background(), "shop-1", 0)
	require.Error(t, err)
	_, err = engine.ComputeRestockPlan(context.Background(), "shop-1", -7)
	require.Error(t, err)
}

func TestFetchFailureAbortsWithoutWrites(t *testing.T) {
	store := newFakeStore()
	store.inventory = []InventoryLevel{{ID: "i1", MedicineName: "Paracetamol", Quantity: 20}}
	store.salesErr = errors.New("connection refused")
	engine := NewEngine(store, nil)

	_, err := engine.ComputeRestockPlan(context.Background(), "shop-1", 90)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch orders")
	assert.Zero(t, store.replaceCalls)

	store.salesErr = nil
	store.invErr = errors.New("connection refused")
	_, err = engine.ComputeRestockPlan(context.Background(), "shop-1", 90)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch inventory")
	assert.Zero(t, store.replaceCalls)
}

func TestStoreFailureSurfaced(t *testing.T) {
	store := newFakeStore()
	store.inventory = []InventoryLevel{{ID: "i1", MedicineName: "Paracetamol", Quantity: 1}}
	store.sales = []SalesRecord{saleOn(t, 1, "Paracetamol", 5)}
	store.replaceErr = errors.New("disk full")
	engine := NewEngine(store, nil)

	_, err := engine.ComputeRestockPlan(context.Background(), "shop-1", 90)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store predictions")
}

func TestCurrentPlanSortValidation(t *testing.T) {
	store := newFakeStore()
	store.stored["shop-1"] = []RestockPrediction{{MedicineName: "Paracetamol"}}
	engine := NewEngine(store, nil)

	plan, err := engine.CurrentPlan(context.Background(), "shop-1", "")
	require.NoError(t, err)
	assert.Len(t, plan, 1)

	_, err = engine.CurrentPlan(context.Background(), "shop-1", "alphabetical")
	require.Error(t, err)
}
