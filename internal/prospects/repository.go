package prospects

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines prospect storage. Every operation is scoped to the
// owning user.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]Prospect, error)
	InsertBatch(ctx context.Context, userID string, batch []Prospect) ([]Prospect, error)
	Update(ctx context.Context, userID, id string, update Update) (*Prospect, error)
	Delete(ctx context.Context, userID, id string) error
	DeleteAllByUser(ctx context.Context, userID string) error
}

// InMemoryRepository keeps prospects in memory, in insertion order.
type InMemoryRepository struct {
	mu      sync.RWMutex
	byUser  map[string][]*Prospect
	failing error
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byUser: make(map[string][]*Prospect)}
}

// FailWith makes every subsequent call return err. Test hook for
// remote-failure paths.
func (r *InMemoryRepository) FailWith(err error) {
	r.mu.Lock()
	r.failing = err
	r.mu.Unlock()
}

func (r *InMemoryRepository) ListByUser(_ context.Context, userID string) ([]Prospect, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.failing != nil {
		return nil, r.failing
	}

	list := make([]Prospect, 0, len(r.byUser[userID]))
	for _, p := range r.byUser[userID] {
		list = append(list, *p)
	}
	return list, nil
}

func (r *InMemoryRepository) InsertBatch(_ context.Context, userID string, batch []Prospect) ([]Prospect, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing != nil {
		return nil, r.failing
	}

	now := time.Now().UTC()
	inserted := make([]Prospect, 0, len(batch))
	for _, p := range batch {
		p.UserID = userID
		p.ID = uuid.New().String()
		p.CreatedAt = now
		p.UpdatedAt = now
		stored := p
		r.byUser[userID] = append(r.byUser[userID], &stored)
		inserted = append(inserted, p)
	}
	return inserted, nil
}

func (r *InMemoryRepository) Update(_ context.Context, userID, id string, update Update) (*Prospect, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing != nil {
		return nil, r.failing
	}

	for _, p := range r.byUser[userID] {
		if p.ID == id {
			update.Apply(p)
			p.UpdatedAt = time.Now().UTC()
			copied := *p
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (r *InMemoryRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing != nil {
		return r.failing
	}

	list := r.byUser[userID]
	for i, p := range list {
		if p.ID == id {
			r.byUser[userID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) DeleteAllByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing != nil {
		return r.failing
	}
	delete(r.byUser, userID)
	return nil
}
