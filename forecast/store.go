package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore backs the engine with the orders, inventory and
// restock_predictions tables.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// SalesSince reads the shop's orders from the window start onward. The items
// column is resolved into the tagged union here, at the ingestion boundary.
func (s *PostgresStore) SalesSince(ctx context.Context, shopID string, since time.Time) ([]SalesRecord, error) {
	query := `
        SELECT created_at, items
        FROM orders
        WHERE shop_id = $1 AND created_at >= $2
    `
	rows, err := s.db.Query(ctx, query, shopID, since)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var records []SalesRecord
	for rows.Next() {
		var rec SalesRecord
		var rawItems []byte
		if err := rows.Scan(&rec.CreatedAt, &rawItems); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		rec.Items = ResolveLineItems(rawItems)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read orders: %w", err)
	}
	return records, nil
}

// Inventory reads the current stock snapshot for a shop.
func (s *PostgresStore) Inventory(ctx context.Context, shopID string) ([]InventoryLevel, error) {
	query := `
        SELECT id, medicine_name, quantity
        FROM inventory
        WHERE shop_id = $1
    `
	rows, err := s.db.Query(ctx, query, shopID)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	defer rows.Close()

	var levels []InventoryLevel
	for rows.Next() {
		var lvl InventoryLevel
		if err := rows.Scan(&lvl.ID, &lvl.MedicineName, &lvl.Quantity); err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		levels = append(levels, lvl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}
	return levels, nil
}

// ReplacePredictions swaps the shop's stored plan for the given set inside a
// single transaction, so a failed insert cannot leave the shop with no rows.
func (s *PostgresStore) ReplacePredictions(ctx context.Context, shopID string, predictions []RestockPrediction) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM restock_predictions WHERE shop_id = $1`, shopID); err != nil {
		return fmt.Errorf("delete old predictions: %w", err)
	}

	insert := `
        INSERT INTO restock_predictions
            (id, shop_id, medicine_name, current_stock, avg_daily_sales, predicted_quantity, confidence_score, reason, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	for _, p := range predictions {
		id := p.ID
		if id == "" {
			id = uuid.NewString()
		}
		_, err := tx.Exec(ctx, insert,
			id, p.ShopID, p.MedicineName, p.CurrentStock, p.AvgDailySales,
			p.PredictedQuantity, p.ConfidenceScore, p.Reason, p.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert prediction for %s: %w", p.MedicineName, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

// PredictionsByShop reads the stored plan in the requested order.
func (s *PostgresStore) PredictionsByShop(ctx context.Context, shopID string, sort PlanSort) ([]RestockPrediction, error) {
	order := "predicted_quantity DESC, medicine_name ASC"
	if sort == SortByConfidence {
		order = "confidence_score DESC, medicine_name ASC"
	}
	query := fmt.Sprintf(`
        SELECT id, shop_id, medicine_name, current_stock, avg_daily_sales, predicted_quantity, confidence_score, reason, created_at
        FROM restock_predictions
        WHERE shop_id = $1
        ORDER BY %s
    `, order)

	rows, err := s.db.Query(ctx, query, shopID)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	var predictions []RestockPrediction
	for rows.Next() {
		var p RestockPrediction
		if err := rows.Scan(&p.ID, &p.ShopID, &p.MedicineName, &p.CurrentStock, &p.AvgDailySales,
			&p.PredictedQuantity, &p.ConfidenceScore, &p.Reason, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		predictions = append(predictions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read predictions: %w", err)
	}
	return predictions, nil
}
