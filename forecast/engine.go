package forecast

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Prediction reasons shown on the restock dashboard.
const (
	ReasonHealthy   = "Healthy"
	ReasonLowStock  = "Low Stock"
	ReasonDeadStock = "Dead Stock"
)

// PlanSort selects the ordering of a stored restock plan.
type PlanSort string

const (
	// SortByPriority orders by predicted restock quantity, highest first.
	SortByPriority PlanSort = "priority"
	// SortByConfidence orders by confidence score, highest first.
	SortByConfidence PlanSort = "confidence"
)

const (
	// DefaultWindowDays is the sales history window used when the caller
	// does not override it.
	DefaultWindowDays = 90

	leadTimeDays    = 2
	safetyStockDays = 14
)

// SalesRecord is one historical order, with its item column already resolved.
type SalesRecord struct {
	CreatedAt time.Time
	Items     LineItems
}

// InventoryLevel is the current on-hand snapshot for one medicine.
type InventoryLevel struct {
	ID           string
	MedicineName string
	Quantity     int
}

// RestockPrediction is one row of a shop's computed restock plan.
type RestockPrediction struct {
	ID                string    `json:"id,omitempty"`
	ShopID            string    `json:"shop_id"`
	MedicineName      string    `json:"medicine_name"`
	CurrentStock      int       `json:"current_stock"`
	AvgDailySales     float64   `json:"avg_daily_sales"`
	PredictedQuantity int       `json:"predicted_quantity"`
	ConfidenceScore   float64   `json:"confidence_score"`
	Reason            string    `json:"reason"`
	CreatedAt         time.Time `json:"created_at"`
}

// Store is the persistence boundary of the engine. The engine reads sales
// and inventory snapshots and owns the restock_predictions set outright.
type Store interface {
	SalesSince(ctx context.Context, shopID string, since time.Time) ([]SalesRecord, error)
	Inventory(ctx context.Context, shopID string) ([]InventoryLevel, error)
	ReplacePredictions(ctx context.Context, shopID string, predictions []RestockPrediction) error
	PredictionsByShop(ctx context.Context, shopID string, sort PlanSort) ([]RestockPrediction, error)
}

// Engine computes restock plans from sales velocity. It holds no database
// state of its own; the store is injected so tests can swap in a double.
type Engine struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine builds an engine over the given store.
func NewEngine(store Store, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:  store,
		logger: logger,
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
	}
}

// shopLock returns the mutex serializing runs for one shop. Overlapping runs
// for the same shop would otherwise interleave their delete+insert replaces.
func (e *Engine) shopLock(shopID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[shopID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[shopID] = l
	}
	return l
}

// ComputeRestockPlan aggregates the shop's sales over the trailing window,
// derives a restock quantity per inventory item, and replaces the shop's
// stored plan. The full per-item plan is returned; only rows with sales or a
// positive restock quantity are persisted.
func (e *Engine) ComputeRestockPlan(ctx context.Context, shopID string, windowDays int) ([]RestockPrediction, error) {
	if windowDays <= 0 {
		return nil, fmt.Errorf("forecast: window must be positive, got %d", windowDays)
	}

	lock := e.shopLock(shopID)
	lock.Lock()
	defer lock.Unlock()

	now := e.now()
	since := now.AddDate(0, 0, -windowDays)

	records, err := e.store.SalesSince(ctx, shopID, since)
	if err != nil {
		return nil, fmt.Errorf("forecast: fetch orders: %w", err)
	}
	inventory, err := e.store.Inventory(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("forecast: fetch inventory: %w", err)
	}

	totals, skipped := aggregateSales(records)
	if skipped > 0 {
		e.logger.Warn("orders with unreadable line items skipped",
			zap.String("shop_id", shopID), zap.Int("skipped", skipped))
	}

	predictions := make([]RestockPrediction, 0, len(inventory))
	for _, item := range inventory {
		predictions = append(predictions, predictItem(shopID, item, totals[item.MedicineName], windowDays, now))
	}

	persisted := make([]RestockPrediction, 0, len(predictions))
	for _, p := range predictions {
		if p.PredictedQuantity > 0 || p.AvgDailySales > 0 {
			persisted = append(persisted, p)
		}
	}

	if err := e.store.ReplacePredictions(ctx, shopID, persisted); err != nil {
		return nil, fmt.Errorf("forecast: store predictions: %w", err)
	}

	e.logger.Info("restock plan computed",
		zap.String("shop_id", shopID),
		zap.Int("window_days", windowDays),
		zap.Int("items", len(predictions)),
		zap.Int("persisted", len(persisted)))

	return predictions, nil
}

// CurrentPlan reads the stored plan for a shop in the requested order.
func (e *Engine) CurrentPlan(ctx context.Context, shopID string, sort PlanSort) ([]RestockPrediction, error) {
	switch sort {
	case SortByPriority, SortByConfidence:
	case "":
		sort = SortByPriority
	default:
		return nil, fmt.Errorf("forecast: unknown sort %q", sort)
	}
	predictions, err := e.store.PredictionsByShop(ctx, shopID, sort)
	if err != nil {
		return nil, fmt.Errorf("forecast: fetch plan: %w", err)
	}
	return predictions, nil
}

// aggregateSales sums quantity sold per medicine name across every readable
// order. Orders whose item column resolved to Unparseable are counted and
// skipped; they are a data-quality signal, not an error.
func aggregateSales(records []SalesRecord) (map[string]int, int) {
	totals := make(map[string]int)
	skipped := 0
	for _, rec := range records {
		switch rec.Items.Kind {
		case LineItemsParsed:
			for _, item := range rec.Items.Items {
				if item.Name == "" {
					continue
				}
				totals[item.Name] += item.QuantitySold
			}
		case LineItemsUnparseable:
			skipped++
		}
	}
	return totals, skipped
}

// predictItem applies the reorder-point heuristic to one inventory item.
// avg daily sales is rounded to 2 decimals before any further use so repeat
// runs over the same data produce identical rows.
func predictItem(shopID string, item InventoryLevel, totalSold, windowDays int, at time.Time) RestockPrediction {
	avg := math.Round(float64(totalSold)/float64(windowDays)*100) / 100

	p := RestockPrediction{
		ShopID:        shopID,
		MedicineName:  item.MedicineName,
		CurrentStock:  item.Quantity,
		AvgDailySales: avg,
		CreatedAt:     at,
	}

	if avg > 0 {
		reorderPoint := avg * float64(leadTimeDays+safetyStockDays)
		if float64(item.Quantity) < reorderPoint {
			p.PredictedQuantity = int(math.Ceil(reorderPoint - float64(item.Quantity)))
			p.Reason = ReasonLowStock
		} else {
			p.Reason = ReasonHealthy
		}
		p.ConfidenceScore = 0.9
		return p
	}

	p.Reason = ReasonDeadStock
	p.ConfidenceScore = 0.5
	return p
}
