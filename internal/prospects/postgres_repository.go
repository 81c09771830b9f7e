package prospects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores prospects in the relational database.
type PostgresRepository struct {
	pool db
}

// NewPostgresRepository initializes a repo backed by a pgx pool.
func NewPostgresRepository(pool db) *PostgresRepository {
	if pool == nil {
		panic("prospects: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const prospectColumns = `
	id, user_id, name, description, phone, address, website, instagram_url,
	status, ai_score, analysis, analysis_breakdown, improvement_suggestions,
	next_recommended_action, found_on, created_at, updated_at
`

// ListByUser returns the user's prospects in insertion order.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Prospect, error) {
	query := `SELECT ` + prospectColumns + ` FROM prospects WHERE user_id = $1 ORDER BY created_at, id`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("prospects: select failed: %w", err)
	}
	defer rows.Close()

	var list []Prospect
	for rows.Next() {
		p, err := scanProspect(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("prospects: row iteration failed: %w", err)
	}
	return list, nil
}

// InsertBatch inserts new prospects inside one transaction.
func (r *PostgresRepository) InsertBatch(ctx context.Context, userID string, batch []Prospect) ([]Prospect, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("prospects: begin failed: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO prospects (
			id, user_id, name, description, phone, address, website, instagram_url,
			status, ai_score, analysis, analysis_breakdown, improvement_suggestions,
			next_recommended_action, found_on
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at
	`

	inserted := make([]Prospect, 0, len(batch))
	for _, p := range batch {
		p.ID = uuid.New().String()
		p.UserID = userID
		if p.Status == "" {
			p.Status = StatusNew
		}
		breakdown, err := json.Marshal(p.AnalysisBreakdown)
		if err != nil {
			return nil, fmt.Errorf("prospects: encode breakdown: %w", err)
		}

		if err := tx.QueryRow(ctx, query,
			p.ID,
			p.UserID,
			p.Name,
			p.Description,
			p.Phone,
			p.Address,
			p.Website,
			p.InstagramURL,
			p.Status,
			p.AIScore,
			p.Analysis,
			breakdown,
			p.ImprovementSuggestions,
			p.NextRecommendedAction,
			p.FoundOn,
		).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("prospects: insert failed: %w", err)
		}
		inserted = append(inserted, p)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("prospects: commit failed: %w", err)
	}
	return inserted, nil
}

// Update applies the set fields and returns the stored row.
func (r *PostgresRepository) Update(ctx context.Context, userID, id string, update Update) (*Prospect, error) {
	if update.Empty() {
		return nil, ErrEmptyUpdate
	}
	if err := update.Validate(); err != nil {
		return nil, err
	}

	sets := []string{"updated_at = now()"}
	args := []any{id, userID}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Name != nil {
		add("name", *update.Name)
	}
	if update.Description != nil {
		add("description", *update.Description)
	}
	if update.Phone != nil {
		add("phone", *update.Phone)
	}
	if update.Address != nil {
		add("address", *update.Address)
	}
	if update.Website != nil {
		add("website", *update.Website)
	}
	if update.InstagramURL != nil {
		add("instagram_url", *update.InstagramURL)
	}
	if update.Status != nil {
		add("status", string(*update.Status))
	}
	if update.AIScore != nil {
		add("ai_score", *update.AIScore)
	}
	if update.Analysis != nil {
		add("analysis", *update.Analysis)
	}
	if update.ImprovementSuggestions != nil {
		add("improvement_suggestions", *update.ImprovementSuggestions)
	}
	if update.NextRecommendedAction != nil {
		add("next_recommended_action", *update.NextRecommendedAction)
	}

	query := `UPDATE prospects SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 AND user_id = $2 RETURNING ` + prospectColumns

	row := r.pool.QueryRow(ctx, query, args...)
	p, err := scanProspect(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// Delete removes one prospect owned by the user.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM prospects WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("prospects: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAllByUser wipes the user's entire base.
func (r *PostgresRepository) DeleteAllByUser(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM prospects WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("prospects: bulk delete failed: %w", err)
	}
	return nil
}

func scanProspect(row pgx.Row) (*Prospect, error) {
	var (
		p         Prospect
		breakdown []byte
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Description,
		&p.Phone,
		&p.Address,
		&p.Website,
		&p.InstagramURL,
		&p.Status,
		&p.AIScore,
		&p.Analysis,
		&breakdown,
		&p.ImprovementSuggestions,
		&p.NextRecommendedAction,
		&p.FoundOn,
		&createdAt,
		&updatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("prospects: %w", pgx.ErrNoRows)
		}
		return nil, fmt.Errorf("prospects: scan failed: %w", err)
	}

	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &p.AnalysisBreakdown); err != nil {
			return nil, fmt.Errorf("prospects: decode breakdown: %w", err)
		}
	}
	if p.AnalysisBreakdown == nil {
		p.AnalysisBreakdown = []AnalysisDetail{}
	}
	p.CreatedAt = createdAt
	p.UpdatedAt = updatedAt
	return &p, nil
}
