package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Talha-100/hft-matching-engine/internal/types"
)

const tradesKey = "engine:trades"

// RedisConfig holds Redis connection settings for the trade journal.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	PoolSize  int
	MaxTrades int
}

// RedisStore journals trades into a Redis sorted set scored by execution
// time, trimmed to the configured size.
type RedisStore struct {
	client    *redis.Client
	maxTrades int
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisStore{client: client, maxTrades: cfg.MaxTrades}, nil
}

func (s *RedisStore) Save(trade types.Trade) error {
	return s.SaveBatch([]types.Trade{trade})
}

func (s *RedisStore) SaveBatch(trades []types.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pipe := s.client.Pipeline()
	for _, trade := range trades {
		data, err := json.Marshal(trade)
		if err != nil {
			return fmt.Errorf("marshal trade: %w", err)
		}
		pipe.ZAdd(ctx, tradesKey, redis.Z{
			Score:  float64(trade.Timestamp.UnixNano()),
			Member: data,
		})
	}

	// Keep only the newest maxTrades entries
	pipe.ZRemRangeByRank(ctx, tradesKey, 0, int64(-s.maxTrades-1))

	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) GetRecent(limit int) ([]types.Trade, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if limit <= 0 {
		limit = s.maxTrades
	}

	raw, err := s.client.ZRevRange(ctx, tradesKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	trades := make([]types.Trade, 0, len(raw))
	for _, member := range raw {
		var trade types.Trade
		if err := json.Unmarshal([]byte(member), &trade); err != nil {
			continue
		}
		trades = append(trades, trade)
	}
	return trades, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
