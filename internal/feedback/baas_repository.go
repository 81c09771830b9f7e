package feedback

import (
	"context"
	"fmt"
	"time"

	"github.com/prospecta/prospecta-platform/internal/baas"
)

// BaaSRepository persists feedback through the hosted PostgREST API.
type BaaSRepository struct {
	client *baas.Client
}

func NewBaaSRepository(client *baas.Client) *BaaSRepository {
	if client == nil {
		panic("feedback: baas client required")
	}
	return &BaaSRepository{client: client}
}

type feedbackRow struct {
	ID         string     `json:"id,omitempty"`
	UserID     string     `json:"user_id"`
	Email      *string    `json:"email"`
	Name       *string    `json:"name"`
	Whatsapp   *string    `json:"whatsapp"`
	Suggestion *string    `json:"suggestion"`
	Rating     *int       `json:"rating"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

func (r *BaaSRepository) Insert(ctx context.Context, entry Feedback) (*Feedback, error) {
	row := feedbackRow{
		UserID:     entry.UserID,
		Email:      nullable(entry.Email),
		Name:       nullable(entry.Name),
		Whatsapp:   nullable(entry.Whatsapp),
		Suggestion: nullable(entry.Suggestion),
	}
	if entry.Rating != 0 {
		rating := entry.Rating
		row.Rating = &rating
	}

	var out []feedbackRow
	if err := r.client.Insert(ctx, "feedback", []feedbackRow{row}, &out); err != nil {
		return nil, fmt.Errorf("feedback: insert failed: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("feedback: insert returned no rows")
	}

	stored := out[0]
	entry.ID = stored.ID
	if stored.CreatedAt != nil {
		entry.CreatedAt = *stored.CreatedAt
	}
	return &entry, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
