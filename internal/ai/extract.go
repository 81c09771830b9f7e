package ai

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?s)```[a-zA-Z0-9]*\\s*(.*?)```")

// ExtractJSON recovers a JSON value from free-form model output. Models
// wrap payloads in code fences, prose, or both, so a direct parse is
// only the second attempt.
func ExtractJSON(raw string) (json.RawMessage, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, ErrNoJSON
	}

	for _, candidate := range extractionCandidates(text) {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if json.Valid([]byte(candidate)) {
			return json.RawMessage(candidate), nil
		}
	}
	return nil, ErrNoJSON
}

func extractionCandidates(text string) []string {
	candidates := make([]string, 0, 4)

	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		candidates = append(candidates, m[1])
	}

	candidates = append(candidates, text)

	// Discovery replies are arrays wrapped in prose, so when both an
	// object and an array slice exist the one opening earlier wins.
	objStart, objEnd := strings.Index(text, "{"), strings.LastIndex(text, "}")
	arrStart, arrEnd := strings.Index(text, "["), strings.LastIndex(text, "]")
	obj, arr := "", ""
	if objStart >= 0 && objEnd > objStart {
		obj = text[objStart : objEnd+1]
	}
	if arrStart >= 0 && arrEnd > arrStart {
		arr = text[arrStart : arrEnd+1]
	}
	if arr != "" && (obj == "" || arrStart < objStart) {
		candidates = append(candidates, arr, obj)
	} else {
		candidates = append(candidates, obj, arr)
	}

	for i, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			candidates = append(candidates, strings.Join(strings.Split(text, "\n")[i:], "\n"))
			break
		}
	}

	return candidates
}

// normalizePhone keeps digits and a single leading plus sign.
func normalizePhone(v any) string {
	raw := asString(v)
	var b strings.Builder
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "+" {
		return ""
	}
	return s
}

// normalizeScore coerces an arbitrary JSON value to an int score,
// defaulting to 50 and clamping to the 0..100 range.
func normalizeScore(v any) int {
	score := 50
	switch n := v.(type) {
	case float64:
		score = finiteScore(n)
	case int:
		score = n
	case json.Number:
		if f, err := n.Float64(); err == nil {
			score = finiteScore(f)
		}
	case string:
		// ParseFloat accepts "NaN" and "Inf" spellings without error.
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			score = finiteScore(f)
		}
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// finiteScore drops NaN and infinities back to the neutral default
// before the int conversion, whose result for them is unspecified.
func finiteScore(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 50
	}
	return int(f)
}

// coerceBreakdown accepts either a single finding object or a list of
// them; anything else becomes an empty list.
func coerceBreakdown(v any) []Finding {
	switch entries := v.(type) {
	case map[string]any:
		return []Finding{findingFromMap(entries)}
	case []any:
		findings := make([]Finding, 0, len(entries))
		for _, entry := range entries {
			if m, ok := entry.(map[string]any); ok {
				findings = append(findings, findingFromMap(m))
			}
		}
		return findings
	default:
		return []Finding{}
	}
}

func findingFromMap(m map[string]any) Finding {
	return Finding{
		Finding:  asString(m["finding"]),
		Evidence: asString(m["evidence"]),
		Source:   asString(m["source"]),
	}
}

// coerceSuggestions accepts a string or a list of strings joined with
// newlines.
func coerceSuggestions(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []any:
		parts := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				parts = append(parts, str)
			}
		}
		return strings.Join(parts, "\n")
	default:
		return ""
	}
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	default:
		return ""
	}
}
