package feedback

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type db interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores feedback in the relational database.
type PostgresRepository struct {
	pool db
}

// NewPostgresRepository initializes a repo backed by a pgx pool.
func NewPostgresRepository(pool db) *PostgresRepository {
	if pool == nil {
		panic("feedback: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Insert(ctx context.Context, entry Feedback) (*Feedback, error) {
	entry.ID = uuid.New().String()
	query := `
		INSERT INTO feedback (id, user_id, email, name, whatsapp, suggestion, rating)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, 0))
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		entry.ID, entry.UserID, entry.Email, entry.Name, entry.Whatsapp,
		entry.Suggestion, entry.Rating,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("feedback: insert failed: %w", err)
	}
	return &entry, nil
}
