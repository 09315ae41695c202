package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Rajchodisetti/npc-market/internal/market"
	"github.com/Rajchodisetti/npc-market/internal/news"
	"github.com/Rajchodisetti/npc-market/internal/npc"
)

// Postgres implements Store on a PostgreSQL database. Schema migrations run
// at construction time and are idempotent.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string, maxOpenConns, maxIdleConns int, connMaxLifetime time.Duration) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	s := &Postgres{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

func (s *Postgres) Close() error { return s.db.Close() }

func (s *Postgres) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS npc_traders (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			archetype VARCHAR(30) NOT NULL,
			risk_tolerance DECIMAL(6, 2) NOT NULL DEFAULT 50,
			skill_level INTEGER NOT NULL DEFAULT 5,
			capital DECIMAL(20, 2) NOT NULL DEFAULT 0,
			total_trades INTEGER NOT NULL DEFAULT 0,
			win_rate DECIMAL(6, 2) NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT true
		)`,
		`CREATE TABLE IF NOT EXISTS npc_trader_strategies (
			trader_id VARCHAR(64) PRIMARY KEY REFERENCES npc_traders(id),
			max_position_pct DECIMAL(6, 2) NOT NULL DEFAULT 10,
			holding_period_days INTEGER NOT NULL DEFAULT 7,
			stop_loss_pct DECIMAL(6, 2) NOT NULL DEFAULT 10,
			take_profit_pct DECIMAL(6, 2) NOT NULL DEFAULT 20,
			preferred_asset_types TEXT[] NOT NULL DEFAULT '{}'
		)`,
		`CREATE TABLE IF NOT EXISTS npc_trader_psychology (
			trader_id VARCHAR(64) PRIMARY KEY REFERENCES npc_traders(id),
			panic_threshold DECIMAL(6, 2) NOT NULL DEFAULT 50,
			greed_threshold DECIMAL(6, 2) NOT NULL DEFAULT 50,
			fomo_susceptibility DECIMAL(6, 2) NOT NULL DEFAULT 50,
			news_reaction VARCHAR(20) NOT NULL DEFAULT 'consider',
			loss_cut_speed VARCHAR(20) NOT NULL DEFAULT 'slow'
		)`,
		`CREATE TABLE IF NOT EXISTS npc_trader_positions (
			trader_id VARCHAR(64) NOT NULL REFERENCES npc_traders(id),
			asset_id VARCHAR(64) NOT NULL,
			quantity INTEGER NOT NULL,
			entry_price DECIMAL(20, 2) NOT NULL,
			entry_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (trader_id, asset_id)
		)`,
		`CREATE TABLE IF NOT EXISTS assets (
			id VARCHAR(64) PRIMARY KEY,
			type VARCHAR(40) NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS market_data (
			id SERIAL PRIMARY KEY,
			asset_id VARCHAR(64) NOT NULL,
			open DECIMAL(20, 2) NOT NULL DEFAULT 0,
			high DECIMAL(20, 2) NOT NULL DEFAULT 0,
			low DECIMAL(20, 2) NOT NULL DEFAULT 0,
			close DECIMAL(20, 2) NOT NULL,
			volume DECIMAL(20, 2) NOT NULL DEFAULT 0,
			period_start TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_market_data_asset_period
			ON market_data (asset_id, period_start)`,
		`CREATE TABLE IF NOT EXISTS market_events (
			id VARCHAR(64) PRIMARY KEY,
			category VARCHAR(40) NOT NULL DEFAULT 'general',
			impact VARCHAR(20) NOT NULL DEFAULT 'neutral',
			significance DECIMAL(6, 2) NOT NULL DEFAULT 5,
			affected_assets TEXT[] NOT NULL DEFAULT '{}',
			active BOOLEAN NOT NULL DEFAULT true,
			occurred_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS npc_trader_activity_log (
			id SERIAL PRIMARY KEY,
			trader_id VARCHAR(64) NOT NULL,
			action VARCHAR(20) NOT NULL,
			asset_id VARCHAR(64),
			quantity INTEGER,
			price DECIMAL(20, 2),
			reasoning TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

func (s *Postgres) ListActiveTraders(ctx context.Context) ([]npc.Trader, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, archetype, risk_tolerance, skill_level, capital, total_trades, win_rate, active
		FROM npc_traders WHERE active = true ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list active traders: %w", err)
	}
	defer rows.Close()

	var out []npc.Trader
	for rows.Next() {
		var t npc.Trader
		var archetype string
		if err := rows.Scan(&t.ID, &t.Name, &archetype, &t.RiskTolerance, &t.SkillLevel,
			&t.Capital, &t.TotalTrades, &t.WinRate, &t.Active); err != nil {
			return nil, fmt.Errorf("scan trader: %w", err)
		}
		t.Archetype = npc.ParseArchetype(archetype)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Postgres) GetStrategy(ctx context.Context, traderID string) (npc.Strategy, error) {
	var st npc.Strategy
	st.TraderID = traderID
	err := s.db.QueryRowContext(ctx, `
		SELECT max_position_pct, holding_period_days, stop_loss_pct, take_profit_pct, preferred_asset_types
		FROM npc_trader_strategies WHERE trader_id = $1`, traderID).
		Scan(&st.MaxPositionPct, &st.HoldingPeriodDays, &st.StopLossPct, &st.TakeProfitPct,
			pq.Array(&st.PreferredAssetTypes))
	if err != nil {
		return npc.Strategy{}, fmt.Errorf("get strategy for %s: %w", traderID, err)
	}
	return st, nil
}

func (s *Postgres) GetPsychology(ctx context.Context, traderID string) (npc.Psychology, error) {
	var p npc.Psychology
	p.TraderID = traderID
	var reaction, lossCut string
	err := s.db.QueryRowContext(ctx, `
		SELECT panic_threshold, greed_threshold, fomo_susceptibility, news_reaction, loss_cut_speed
		FROM npc_trader_psychology WHERE trader_id = $1`, traderID).
		Scan(&p.PanicThreshold, &p.GreedThreshold, &p.FomoSusceptibility, &reaction, &lossCut)
	if err != nil {
		return npc.Psychology{}, fmt.Errorf("get psychology for %s: %w", traderID, err)
	}
	p.NewsReaction = npc.NewsReaction(reaction)
	p.LossCutSpeed = npc.LossCutSpeed(lossCut)
	return p, nil
}

func (s *Postgres) ListPositions(ctx context.Context, traderID string) ([]npc.Position, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT trader_id, asset_id, quantity, entry_price, entry_date
		FROM npc_trader_positions WHERE trader_id = $1 ORDER BY asset_id`, traderID)
	if err != nil {
		return nil, fmt.Errorf("list positions for %s: %w", traderID, err)
	}
	defer rows.Close()

	var out []npc.Position
	for rows.Next() {
		var p npc.Position
		if err := rows.Scan(&p.TraderID, &p.AssetID, &p.Quantity, &p.EntryPrice, &p.EntryDate); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Postgres) ListAssets(ctx context.Context) ([]npc.AssetRef, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, type FROM assets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var out []npc.AssetRef
	for rows.Next() {
		var ref npc.AssetRef
		if err := rows.Scan(&ref.ID, &ref.Type); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func (s *Postgres) CandleHistory(ctx context.Context, assetID string, window time.Duration) ([]market.Candle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT asset_id, open, high, low, close, volume, period_start
		FROM market_data
		WHERE asset_id = $1 AND period_start >= $2
		ORDER BY period_start`, assetID, time.Now().Add(-window))
	if err != nil {
		return nil, fmt.Errorf("candle history for %s: %w", assetID, err)
	}
	defer rows.Close()

	var out []market.Candle
	for rows.Next() {
		var c market.Candle
		if err := rows.Scan(&c.AssetID, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume, &c.PeriodStart); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Postgres) RecentEvents(ctx context.Context, window time.Duration) ([]news.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, impact, significance, affected_assets, active, occurred_at
		FROM market_events
		WHERE active = true AND occurred_at >= $1
		ORDER BY occurred_at DESC`, time.Now().Add(-window))
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	defer rows.Close()

	var out []news.Event
	for rows.Next() {
		var ev news.Event
		if err := rows.Scan(&ev.ID, &ev.Category, &ev.Impact, &ev.Significance,
			pq.Array(&ev.AffectedAssets), &ev.Active, &ev.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (s *Postgres) UpsertPosition(ctx context.Context, pos npc.Position) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO npc_trader_positions (trader_id, asset_id, quantity, entry_price, entry_date)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (trader_id, asset_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, entry_price = EXCLUDED.entry_price`,
		pos.TraderID, pos.AssetID, pos.Quantity, pos.EntryPrice, pos.EntryDate)
	if err != nil {
		return fmt.Errorf("upsert position %s/%s: %w", pos.TraderID, pos.AssetID, err)
	}
	return nil
}

func (s *Postgres) DeletePosition(ctx context.Context, traderID, assetID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM npc_trader_positions WHERE trader_id = $1 AND asset_id = $2`, traderID, assetID)
	if err != nil {
		return fmt.Errorf("delete position %s/%s: %w", traderID, assetID, err)
	}
	return nil
}

func (s *Postgres) UpdateTraderStats(ctx context.Context, traderID string, capital float64, totalTrades int, winRate float64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE npc_traders SET capital = $2, total_trades = $3, win_rate = $4 WHERE id = $1`,
		traderID, capital, totalTrades, winRate)
	if err != nil {
		return fmt.Errorf("update stats for %s: %w", traderID, err)
	}
	return nil
}

func (s *Postgres) AppendActivity(ctx context.Context, entry npc.ActivityEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO npc_trader_activity_log (trader_id, action, asset_id, quantity, price, reasoning, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7)`,
		entry.TraderID, entry.Action, entry.AssetID, entry.Quantity, entry.Price,
		entry.Reasoning, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("append activity for %s: %w", entry.TraderID, err)
	}
	return nil
}
