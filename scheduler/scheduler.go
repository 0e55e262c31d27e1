package scheduler

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"app/forecast"
)

// Scheduler runs the restock forecast for every active shop on a schedule,
// so dashboards have fresh predictions without a manual "Run Analysis".
type Scheduler struct {
	cron       *cron.Cron
	engine     *forecast.Engine
	db         *pgxpool.Pool
	windowDays int
	logger     *zap.Logger
}

// New creates a scheduler instance.
func New(engine *forecast.Engine, db *pgxpool.Pool, windowDays int, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:       cron.New(),
		engine:     engine,
		db:         db,
		windowDays: windowDays,
		logger:     logger,
	}
}

// Start schedules the nightly forecast run at 02:00.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler")

	if _, err := s.cron.AddFunc("0 2 * * *", s.runForecasts); err != nil {
		s.logger.Error("failed to schedule forecast run", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runForecasts() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	rows, err := s.db.Query(ctx, `SELECT id FROM shops WHERE is_active = true`)
	if err != nil {
		s.logger.Error("failed to list active shops", zap.Error(err))
		return
	}
	defer rows.Close()

	var shopIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			s.logger.Error("failed to scan shop id", zap.Error(err))
			continue
		}
		shopIDs = append(shopIDs, id)
	}
	if err := rows.Err(); err != nil {
		s.logger.Error("failed to read active shops", zap.Error(err))
		return
	}

	for _, shopID := range shopIDs {
		if _, err := s.engine.ComputeRestockPlan(ctx, shopID, s.windowDays); err != nil {
			s.logger.Error("scheduled forecast failed",
				zap.String("shop_id", shopID), zap.Error(err))
		}
	}

	s.logger.Info("scheduled forecast run finished", zap.Int("shops", len(shopIDs)))
}
