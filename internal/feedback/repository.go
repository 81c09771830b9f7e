package feedback

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository stores feedback entries. The product only ever writes.
type Repository interface {
	Insert(ctx context.Context, entry Feedback) (*Feedback, error)
}

// InMemoryRepository keeps feedback in memory, in insertion order.
type InMemoryRepository struct {
	mu      sync.RWMutex
	entries []Feedback
	failing error
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// FailWith makes every subsequent call return err. Test hook for
// backend-failure paths.
func (r *InMemoryRepository) FailWith(err error) {
	r.mu.Lock()
	r.failing = err
	r.mu.Unlock()
}

func (r *InMemoryRepository) Insert(_ context.Context, entry Feedback) (*Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing != nil {
		return nil, r.failing
	}

	entry.ID = uuid.New().String()
	entry.CreatedAt = time.Now().UTC()
	r.entries = append(r.entries, entry)
	copied := entry
	return &copied, nil
}

// All returns stored entries. Test helper.
func (r *InMemoryRepository) All() []Feedback {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Feedback(nil), r.entries...)
}
