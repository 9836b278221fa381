package redisq

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/findyourside/findyourside-backend/internal/logger"
	"github.com/findyourside/findyourside-backend/internal/types"
)

// Counter key layout. Day counters outlive their window by a day so that
// late readers (check-limits) still see them; spend counters stick around
// long enough for end-of-month reporting.
const (
	keyPrefixIP    = "fys:quota:ip:"
	keyPrefixSpend = "fys:quota:spend:"

	ttlIPCounter    = 48 * time.Hour
	ttlSpendCounter = 40 * 24 * time.Hour
)

// Store is the Redis-backed quota.CounterStore. INCR/INCRBYFLOAT make the
// reserve a single atomic round trip, which is what keeps caps honest across
// replicas and serverless cold starts.
type Store struct {
	log *logger.Logger
	rdb *goredis.Client
}

func New(log *logger.Logger) (*Store, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    strings.TrimSpace(os.Getenv("REDIS_PASSWORD")),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Store{
		log: log.With("client", "RedisQuotaStore"),
		rdb: rdb,
	}, nil
}

func (s *Store) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

func ipKey(ip string, kind types.GenerationKind, day string) string {
	return keyPrefixIP + ip + ":" + string(kind) + ":" + day
}

func spendKey(month string) string {
	return keyPrefixSpend + month
}

func (s *Store) IncrIP(ctx context.Context, ip string, kind types.GenerationKind, day string) (int64, error) {
	key := ipKey(ip, kind, day)
	count, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", key, err)
	}
	if count == 1 {
		if err := s.rdb.Expire(ctx, key, ttlIPCounter).Err(); err != nil {
			s.log.Warn("Failed to set TTL on quota counter", "key", key, "error", err)
		}
	}
	return count, nil
}

func (s *Store) DecrIP(ctx context.Context, ip string, kind types.GenerationKind, day string) error {
	key := ipKey(ip, kind, day)
	if err := s.rdb.Decr(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis decr %s: %w", key, err)
	}
	return nil
}

func (s *Store) IPCount(ctx context.Context, ip string, kind types.GenerationKind, day string) (int64, error) {
	key := ipKey(ip, kind, day)
	count, err := s.rdb.Get(ctx, key).Int64()
	if err != nil {
		if err == goredis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get %s: %w", key, err)
	}
	return count, nil
}

func (s *Store) AddSpend(ctx context.Context, month string, amount float64) (float64, error) {
	key := spendKey(month)
	total, err := s.rdb.IncrByFloat(ctx, key, amount).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incrbyfloat %s: %w", key, err)
	}
	if total == amount {
		if err := s.rdb.Expire(ctx, key, ttlSpendCounter).Err(); err != nil {
			s.log.Warn("Failed to set TTL on spend counter", "key", key, "error", err)
		}
	}
	return total, nil
}

func (s *Store) Spend(ctx context.Context, month string) (float64, error) {
	key := spendKey(month)
	total, err := s.rdb.Get(ctx, key).Float64()
	if err != nil {
		if err == goredis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get %s: %w", key, err)
	}
	return total, nil
}
