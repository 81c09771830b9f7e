package prospects

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/prospecta/prospecta-platform/internal/baas"
)

const prospectsTable = "prospects"

// BaaSRepository stores prospects through the backend-as-a-service data
// API. Expired-session refresh and retry live in the underlying client.
type BaaSRepository struct {
	client *baas.Client
}

func NewBaaSRepository(client *baas.Client) *BaaSRepository {
	if client == nil {
		panic("prospects: baas client required")
	}
	return &BaaSRepository{client: client}
}

// prospectRow is the data API's snake_case shape for a prospect.
type prospectRow struct {
	ID                     string           `json:"id,omitempty"`
	UserID                 string           `json:"user_id"`
	Name                   string           `json:"name"`
	Description            string           `json:"description"`
	Phone                  string           `json:"phone"`
	Address                string           `json:"address"`
	Website                string           `json:"website"`
	InstagramURL           string           `json:"instagram_url"`
	Status                 string           `json:"status"`
	AIScore                int              `json:"ai_score"`
	Analysis               string           `json:"analysis"`
	AnalysisBreakdown      []AnalysisDetail `json:"analysis_breakdown"`
	ImprovementSuggestions string           `json:"improvement_suggestions"`
	NextRecommendedAction  string           `json:"next_recommended_action"`
	FoundOn                []string         `json:"found_on"`
	CreatedAt              time.Time        `json:"created_at,omitempty"`
	UpdatedAt              time.Time        `json:"updated_at,omitempty"`
}

func rowFromProspect(p Prospect) prospectRow {
	return prospectRow{
		ID:                     p.ID,
		UserID:                 p.UserID,
		Name:                   p.Name,
		Description:            p.Description,
		Phone:                  p.Phone,
		Address:                p.Address,
		Website:                p.Website,
		InstagramURL:           p.InstagramURL,
		Status:                 string(p.Status),
		AIScore:                p.AIScore,
		Analysis:               p.Analysis,
		AnalysisBreakdown:      p.AnalysisBreakdown,
		ImprovementSuggestions: p.ImprovementSuggestions,
		NextRecommendedAction:  p.NextRecommendedAction,
		FoundOn:                p.FoundOn,
	}
}

func (r prospectRow) toProspect() Prospect {
	breakdown := r.AnalysisBreakdown
	if breakdown == nil {
		breakdown = []AnalysisDetail{}
	}
	return Prospect{
		ID:                     r.ID,
		UserID:                 r.UserID,
		Name:                   r.Name,
		Description:            r.Description,
		Phone:                  r.Phone,
		Address:                r.Address,
		Website:                r.Website,
		InstagramURL:           r.InstagramURL,
		Status:                 Status(r.Status),
		AIScore:                r.AIScore,
		Analysis:               r.Analysis,
		AnalysisBreakdown:      breakdown,
		ImprovementSuggestions: r.ImprovementSuggestions,
		NextRecommendedAction:  r.NextRecommendedAction,
		FoundOn:                r.FoundOn,
		CreatedAt:              r.CreatedAt,
		UpdatedAt:              r.UpdatedAt,
	}
}

func userFilter(userID string) url.Values {
	return url.Values{"user_id": {"eq." + userID}}
}

func (r *BaaSRepository) ListByUser(ctx context.Context, userID string) ([]Prospect, error) {
	filters := userFilter(userID)
	filters.Set("order", "created_at.asc")

	var rows []prospectRow
	if err := r.client.Select(ctx, prospectsTable, filters, &rows); err != nil {
		return nil, fmt.Errorf("prospects: list failed: %w", err)
	}

	list := make([]Prospect, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.toProspect())
	}
	return list, nil
}

func (r *BaaSRepository) InsertBatch(ctx context.Context, userID string, batch []Prospect) ([]Prospect, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	rows := make([]prospectRow, 0, len(batch))
	for _, p := range batch {
		p.UserID = userID
		if p.Status == "" {
			p.Status = StatusNew
		}
		rows = append(rows, rowFromProspect(p))
	}

	var stored []prospectRow
	if err := r.client.Insert(ctx, prospectsTable, rows, &stored); err != nil {
		return nil, fmt.Errorf("prospects: batch insert failed: %w", err)
	}

	inserted := make([]Prospect, 0, len(stored))
	for _, row := range stored {
		inserted = append(inserted, row.toProspect())
	}
	return inserted, nil
}

func (r *BaaSRepository) Update(ctx context.Context, userID, id string, update Update) (*Prospect, error) {
	if update.Empty() {
		return nil, ErrEmptyUpdate
	}
	if err := update.Validate(); err != nil {
		return nil, err
	}

	filters := userFilter(userID)
	filters.Set("id", "eq."+id)

	patch := make(map[string]any)
	setIf := func(column string, v any, ok bool) {
		if ok {
			patch[column] = v
		}
	}
	setIf("name", deref(update.Name), update.Name != nil)
	setIf("description", deref(update.Description), update.Description != nil)
	setIf("phone", deref(update.Phone), update.Phone != nil)
	setIf("address", deref(update.Address), update.Address != nil)
	setIf("website", deref(update.Website), update.Website != nil)
	setIf("instagram_url", deref(update.InstagramURL), update.InstagramURL != nil)
	if update.Status != nil {
		patch["status"] = string(*update.Status)
	}
	if update.AIScore != nil {
		patch["ai_score"] = *update.AIScore
	}
	setIf("analysis", deref(update.Analysis), update.Analysis != nil)
	setIf("improvement_suggestions", deref(update.ImprovementSuggestions), update.ImprovementSuggestions != nil)
	setIf("next_recommended_action", deref(update.NextRecommendedAction), update.NextRecommendedAction != nil)
	patch["updated_at"] = time.Now().UTC()

	var stored []prospectRow
	if err := r.client.Update(ctx, prospectsTable, filters, patch, &stored); err != nil {
		return nil, fmt.Errorf("prospects: update failed: %w", err)
	}
	if len(stored) == 0 {
		return nil, ErrNotFound
	}
	p := stored[0].toProspect()
	return &p, nil
}

func (r *BaaSRepository) Delete(ctx context.Context, userID, id string) error {
	filters := userFilter(userID)
	filters.Set("id", "eq."+id)
	if err := r.client.Delete(ctx, prospectsTable, filters); err != nil {
		var apiErr *baas.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("prospects: delete failed: %w", err)
	}
	return nil
}

func (r *BaaSRepository) DeleteAllByUser(ctx context.Context, userID string) error {
	if err := r.client.Delete(ctx, prospectsTable, userFilter(userID)); err != nil {
		return fmt.Errorf("prospects: bulk delete failed: %w", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
