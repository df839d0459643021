package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// memoryStore is a process-local Store used when Redis is disabled.
type memoryStore struct {
	mu      sync.RWMutex
	coupons map[uuid.UUID]string
}

// NewMemoryStore creates an in-process Store.
func NewMemoryStore() Store {
	return &memoryStore{coupons: make(map[uuid.UUID]string)}
}

func (s *memoryStore) Coupon(ctx context.Context, customerID uuid.UUID) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.coupons[customerID], nil
}

func (s *memoryStore) SetCoupon(ctx context.Context, customerID uuid.UUID, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coupons[customerID] = code
	return nil
}

func (s *memoryStore) ClearCoupon(ctx context.Context, customerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.coupons, customerID)
	return nil
}
