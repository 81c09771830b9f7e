package ai

import "encoding/json"

// Finding is one entry of a prospect's digital-presence analysis.
type Finding struct {
	Finding  string `json:"finding"`
	Evidence string `json:"evidence"`
	Source   string `json:"source,omitempty"`
}

// ProspectCandidate is one business returned by discovery, already
// normalized. Persistence identity and ownership are stamped later by
// the funnel layer.
type ProspectCandidate struct {
	Name                   string    `json:"name"`
	Description            string    `json:"description"`
	Phone                  string    `json:"phone"`
	Address                string    `json:"address,omitempty"`
	Website                string    `json:"website,omitempty"`
	InstagramURL           string    `json:"instagramUrl,omitempty"`
	AIScore                int       `json:"aiScore"`
	Analysis               string    `json:"analysis"`
	AnalysisBreakdown      []Finding `json:"analysisBreakdown"`
	ImprovementSuggestions string    `json:"improvementSuggestions"`
	NextRecommendedAction  string    `json:"nextRecommendedAction"`
}

// DiscoveryResult carries normalized candidates plus the web sources
// the model grounded its answer on.
type DiscoveryResult struct {
	Candidates []ProspectCandidate
	Sources    []GroundingSource
}

// OutreachMessages is the three-part WhatsApp prospecting sequence.
type OutreachMessages struct {
	Greeting       string `json:"greeting"`
	MainMessage    string `json:"mainMessage"`
	ClosingMessage string `json:"closingMessage"`
}

// InteractionAnalysis is the advisory result of analyzing a pasted
// conversation transcript.
type InteractionAnalysis struct {
	SuggestedResponse string `json:"suggestedResponse"`
	NewNextAction     string `json:"newNextAction"`
}

// ProspectContext is the slice of a prospect the prompt templates need.
// The funnel layer builds it so this package stays independent of the
// storage model.
type ProspectContext struct {
	Name                   string
	Description            string
	Website                string
	InstagramURL           string
	Analysis               string
	ImprovementSuggestions string
	AIScore                int
	StageLabel             string
}

// decodeCandidates turns the extracted discovery JSON into normalized
// candidates, dropping entries without both a name and a usable phone.
func decodeCandidates(raw json.RawMessage) ([]ProspectCandidate, error) {
	var entries []map[string]any
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, ErrInvalidProspectList
	}

	candidates := make([]ProspectCandidate, 0, len(entries))
	for _, entry := range entries {
		c := ProspectCandidate{
			Name:                   asString(entry["name"]),
			Description:            asString(entry["description"]),
			Phone:                  normalizePhone(entry["phone"]),
			Address:                asString(entry["address"]),
			Website:                asString(entry["website"]),
			InstagramURL:           asString(entry["instagramUrl"]),
			AIScore:                normalizeScore(entry["aiScore"]),
			Analysis:               asString(entry["analysis"]),
			AnalysisBreakdown:      coerceBreakdown(entry["analysisBreakdown"]),
			ImprovementSuggestions: coerceSuggestions(entry["improvementSuggestions"]),
			NextRecommendedAction:  asString(entry["nextRecommendedAction"]),
		}
		if c.Name == "" || c.Phone == "" {
			continue
		}
		if c.NextRecommendedAction == "" {
			c.NextRecommendedAction = "Iniciar contato"
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}
