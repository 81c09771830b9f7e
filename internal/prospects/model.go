package prospects

import (
	"strings"
	"time"

	"github.com/prospecta/prospecta-platform/internal/ai"
)

// Status is a prospect's funnel stage. Any stage is reachable from any
// other; won is terminal only in the sense that nothing advances past
// it automatically.
type Status string

const (
	StatusNew         Status = "new"
	StatusContacted   Status = "contacted"
	StatusNegotiating Status = "negotiating"
	StatusWon         Status = "won"
)

// AllStatuses is the Kanban column order.
var AllStatuses = []Status{StatusNew, StatusContacted, StatusNegotiating, StatusWon}

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusNegotiating, StatusWon:
		return true
	}
	return false
}

// StageLabels are the funnel stage names used in coaching prompts.
// Fixed product copy, unlike the user-editable Kanban column titles.
var StageLabels = map[Status]string{
	StatusNew:         "Novo Prospect",
	StatusContacted:   "Contato Iniciado",
	StatusNegotiating: "Em Negociação",
	StatusWon:         "Contrato Fechado",
}

// AnalysisDetail is one finding of the AI's digital-presence audit.
type AnalysisDetail struct {
	Finding  string `json:"finding"`
	Evidence string `json:"evidence"`
	Source   string `json:"source,omitempty"`
}

// Prospect is one discovered business lead. Empty strings stand in for
// the nullable contact fields.
type Prospect struct {
	ID                     string           `json:"id"`
	UserID                 string           `json:"userId"`
	Name                   string           `json:"name"`
	Description            string           `json:"description"`
	Phone                  string           `json:"phone,omitempty"`
	Address                string           `json:"address,omitempty"`
	Website                string           `json:"website,omitempty"`
	InstagramURL           string           `json:"instagramUrl,omitempty"`
	Status                 Status           `json:"status"`
	AIScore                int              `json:"aiScore"`
	Analysis               string           `json:"analysis"`
	AnalysisBreakdown      []AnalysisDetail `json:"analysisBreakdown"`
	ImprovementSuggestions string           `json:"improvementSuggestions"`
	NextRecommendedAction  string           `json:"nextRecommendedAction"`
	FoundOn                []string         `json:"foundOn"`
	CreatedAt              time.Time        `json:"createdAt"`
	UpdatedAt              time.Time        `json:"updatedAt"`
}

// IdentityKey is the dedupe key: lowercase-trimmed name joined with
// lowercase-trimmed website. Two businesses sharing both collide; an
// accepted limitation of the heuristic.
func (p Prospect) IdentityKey() string {
	return identityKey(p.Name, p.Website)
}

func identityKey(name, website string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "|" + strings.ToLower(strings.TrimSpace(website))
}

// FromCandidate stamps a discovery candidate with its owner and the
// source channels of the search that produced it.
func FromCandidate(c ai.ProspectCandidate, userID string, foundOn []string) Prospect {
	breakdown := make([]AnalysisDetail, 0, len(c.AnalysisBreakdown))
	for _, f := range c.AnalysisBreakdown {
		breakdown = append(breakdown, AnalysisDetail{Finding: f.Finding, Evidence: f.Evidence, Source: f.Source})
	}
	return Prospect{
		UserID:                 userID,
		Name:                   c.Name,
		Description:            c.Description,
		Phone:                  c.Phone,
		Address:                c.Address,
		Website:                c.Website,
		InstagramURL:           c.InstagramURL,
		Status:                 StatusNew,
		AIScore:                c.AIScore,
		Analysis:               c.Analysis,
		AnalysisBreakdown:      breakdown,
		ImprovementSuggestions: c.ImprovementSuggestions,
		NextRecommendedAction:  c.NextRecommendedAction,
		FoundOn:                append([]string(nil), foundOn...),
	}
}

// Context renders the prompt-facing view of a prospect.
func (p Prospect) Context() ai.ProspectContext {
	return ai.ProspectContext{
		Name:                   p.Name,
		Description:            p.Description,
		Website:                p.Website,
		InstagramURL:           p.InstagramURL,
		Analysis:               p.Analysis,
		ImprovementSuggestions: p.ImprovementSuggestions,
		AIScore:                p.AIScore,
		StageLabel:             StageLabels[p.Status],
	}
}

// Update carries a partial edit; nil fields are left untouched.
type Update struct {
	Name                   *string `json:"name,omitempty"`
	Description            *string `json:"description,omitempty"`
	Phone                  *string `json:"phone,omitempty"`
	Address                *string `json:"address,omitempty"`
	Website                *string `json:"website,omitempty"`
	InstagramURL           *string `json:"instagramUrl,omitempty"`
	Status                 *Status `json:"status,omitempty"`
	AIScore                *int    `json:"aiScore,omitempty"`
	Analysis               *string `json:"analysis,omitempty"`
	ImprovementSuggestions *string `json:"improvementSuggestions,omitempty"`
	NextRecommendedAction  *string `json:"nextRecommendedAction,omitempty"`
}

func (u Update) Empty() bool {
	return u == Update{}
}

func (u Update) Validate() error {
	if u.Status != nil && !u.Status.Valid() {
		return ErrInvalidStatus
	}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return ErrInvalidName
	}
	if u.AIScore != nil && (*u.AIScore < 0 || *u.AIScore > 100) {
		return ErrInvalidScore
	}
	return nil
}

// Apply copies the set fields onto the prospect.
func (u Update) Apply(p *Prospect) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Phone != nil {
		p.Phone = *u.Phone
	}
	if u.Address != nil {
		p.Address = *u.Address
	}
	if u.Website != nil {
		p.Website = *u.Website
	}
	if u.InstagramURL != nil {
		p.InstagramURL = *u.InstagramURL
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.AIScore != nil {
		p.AIScore = *u.AIScore
	}
	if u.Analysis != nil {
		p.Analysis = *u.Analysis
	}
	if u.ImprovementSuggestions != nil {
		p.ImprovementSuggestions = *u.ImprovementSuggestions
	}
	if u.NextRecommendedAction != nil {
		p.NextRecommendedAction = *u.NextRecommendedAction
	}
}
