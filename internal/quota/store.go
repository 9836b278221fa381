package quota

import (
	"context"
	"sync"

	"github.com/findyourside/findyourside-backend/internal/types"
)

// CounterStore is the shared per-window counter backing quota enforcement.
// Implementations must make Incr/Decr atomic so that concurrent requests
// from the same subject cannot both slip under a cap. Keys carry the window
// (calendar day or month), so rollover is a new key rather than a mutable
// reset.
type CounterStore interface {
	// IncrIP bumps the (ip, kind, day) counter and returns the new value.
	IncrIP(ctx context.Context, ip string, kind types.GenerationKind, day string) (int64, error)
	// DecrIP undoes a reservation that was denied downstream or whose
	// generation failed.
	DecrIP(ctx context.Context, ip string, kind types.GenerationKind, day string) error
	// IPCount reads the (ip, kind, day) counter without modifying it.
	IPCount(ctx context.Context, ip string, kind types.GenerationKind, day string) (int64, error)
	// AddSpend adds amount to the month's spend counter and returns the new
	// total.
	AddSpend(ctx context.Context, month string, amount float64) (float64, error)
	// Spend reads the month's spend counter.
	Spend(ctx context.Context, month string) (float64, error)
}

// MemoryStore is a process-local CounterStore. Only correct for a single
// long-lived instance; production deployments use the Redis store so
// counters survive cold starts and are shared across replicas.
type MemoryStore struct {
	mu     sync.Mutex
	counts map[string]int64
	spend  map[string]float64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counts: make(map[string]int64),
		spend:  make(map[string]float64),
	}
}

func ipKey(ip string, kind types.GenerationKind, day string) string {
	return ip + ":" + string(kind) + ":" + day
}

func (s *MemoryStore) IncrIP(ctx context.Context, ip string, kind types.GenerationKind, day string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ipKey(ip, kind, day)
	s.counts[key]++
	return s.counts[key], nil
}

func (s *MemoryStore) DecrIP(ctx context.Context, ip string, kind types.GenerationKind, day string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ipKey(ip, kind, day)
	if s.counts[key] > 0 {
		s.counts[key]--
	}
	return nil
}

func (s *MemoryStore) IPCount(ctx context.Context, ip string, kind types.GenerationKind, day string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[ipKey(ip, kind, day)], nil
}

func (s *MemoryStore) AddSpend(ctx context.Context, month string, amount float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spend[month] += amount
	return s.spend[month], nil
}

func (s *MemoryStore) Spend(ctx context.Context, month string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spend[month], nil
}
