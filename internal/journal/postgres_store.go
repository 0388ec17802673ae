package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Talha-100/hft-matching-engine/internal/types"
)

// PostgresConfig holds PostgreSQL connection settings for the trade journal.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	MaxConns int
	SSLMode  string
}

const createTradesTable = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id      BIGSERIAL PRIMARY KEY,
	buy_order_id  BIGINT           NOT NULL,
	sell_order_id BIGINT           NOT NULL,
	price         DOUBLE PRECISION NOT NULL,
	quantity      INT              NOT NULL,
	executed_at   TIMESTAMPTZ      NOT NULL
)`

// PostgresStore journals trades into a PostgreSQL table, creating the
// schema on first connect.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects, pings, and ensures the trades table exists.
func NewPostgresStore(cfg PostgresConfig) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	connString := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s pool_max_conns=%d",
		cfg.Host, cfg.Port, cfg.Database, cfg.User, cfg.Password, cfg.SSLMode, cfg.MaxConns,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, createTradesTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create trades table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Save(trade types.Trade) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO trades (buy_order_id, sell_order_id, price, quantity, executed_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.pool.Exec(ctx, query,
		trade.BuyOrderID, trade.SellOrderID, trade.Price, trade.Quantity, trade.Timestamp,
	)
	return err
}

func (s *PostgresStore) SaveBatch(trades []types.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	batch := &pgx.Batch{}
	query := `
		INSERT INTO trades (buy_order_id, sell_order_id, price, quantity, executed_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, trade := range trades {
		batch.Queue(query, trade.BuyOrderID, trade.SellOrderID, trade.Price, trade.Quantity, trade.Timestamp)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(trades); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert failed at index %d: %w", i, err)
		}
	}
	return nil
}

func (s *PostgresStore) GetRecent(limit int) ([]types.Trade, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT buy_order_id, sell_order_id, price, quantity, executed_at
		FROM trades
		ORDER BY executed_at DESC
		LIMIT $1
	`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []types.Trade
	for rows.Next() {
		var trade types.Trade
		if err := rows.Scan(
			&trade.BuyOrderID, &trade.SellOrderID,
			&trade.Price, &trade.Quantity, &trade.Timestamp,
		); err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}
	return trades, rows.Err()
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
