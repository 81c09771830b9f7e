package ai

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "fenced block with language tag",
			input: "```json\n{\"a\": 1}\n```",
			want:  `{"a": 1}`,
		},
		{
			name:  "fenced block without tag",
			input: "```\n[1, 2]\n```",
			want:  `[1, 2]`,
		},
		{
			name:  "bare json",
			input: `{"greeting": "Oi"}`,
			want:  `{"greeting": "Oi"}`,
		},
		{
			name:  "object surrounded by prose",
			input: "Claro! Aqui está o resultado: {\"a\": 1} Espero que ajude.",
			want:  `{"a": 1}`,
		},
		{
			name:  "array surrounded by prose",
			input: "Segue a lista:\n[{\"name\": \"Padaria\"}]\nFim.",
			want:  `[{"name": "Padaria"}]`,
		},
		{
			name:  "line scan picks up multi-line array",
			input: "Resultado abaixo.\n[\n  {\"name\": \"Padaria\"}\n]",
			want:  "[\n  {\"name\": \"Padaria\"}\n]",
		},
		{
			name:  "array wins over the object it contains",
			input: "Segue a lista:\n[\n  {\"name\": \"Padaria\"},\n  {\"name\": \"Mercado\"}\n]\nBoa prospecção!",
			want:  "[\n  {\"name\": \"Padaria\"},\n  {\"name\": \"Mercado\"}\n]",
		},
		{
			name:  "object wins when it opens first",
			input: "Resultado: {\"greeting\": \"Oi\"} e depois [1, 2].",
			want:  `{"greeting": "Oi"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			if err != nil {
				t.Fatalf("ExtractJSON failed: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", string(got), tt.want)
			}
		})
	}
}

func TestExtractJSONNoValue(t *testing.T) {
	for _, input := range []string{"", "nenhum resultado encontrado", "{broken"} {
		if _, err := ExtractJSON(input); !errors.Is(err, ErrNoJSON) {
			t.Errorf("input %q: expected ErrNoJSON, got %v", input, err)
		}
	}
}

func TestExtractJSONIdempotent(t *testing.T) {
	raw, err := ExtractJSON("```json\n{\"b\": [1, 2], \"a\": \"x\"}\n```")
	if err != nil {
		t.Fatalf("first extraction failed: %v", err)
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	reserialized, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	again, err := ExtractJSON(string(reserialized))
	if err != nil {
		t.Fatalf("second extraction failed: %v", err)
	}
	if string(again) != string(reserialized) {
		t.Errorf("re-extraction changed value: %q vs %q", string(again), string(reserialized))
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		input any
		want  string
	}{
		{"+55 (21) 99999-9999", "+5521999999999"},
		{"(11) 3333-4444", "1133334444"},
		{"sem telefone", ""},
		{"+", ""},
		{nil, ""},
		{float64(21999999999), "21999999999"},
	}
	for _, tt := range tests {
		if got := normalizePhone(tt.input); got != tt.want {
			t.Errorf("normalizePhone(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeScore(t *testing.T) {
	tests := []struct {
		input any
		want  int
	}{
		{float64(87), 87},
		{"72", 72},
		{"alto", 50},
		{nil, 50},
		{float64(-5), 0},
		{float64(250), 100},
		{math.NaN(), 50},
		{math.Inf(1), 50},
		{"NaN", 50},
		{"+Inf", 50},
		{"Infinity", 50},
		{json.Number("70"), 70},
	}
	for _, tt := range tests {
		if got := normalizeScore(tt.input); got != tt.want {
			t.Errorf("normalizeScore(%v) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestCoerceBreakdown(t *testing.T) {
	single := map[string]any{"finding": "GMN incompleto", "evidence": "Sem fotos"}
	got := coerceBreakdown(single)
	if len(got) != 1 || got[0].Finding != "GMN incompleto" {
		t.Errorf("single object not coerced: %+v", got)
	}

	list := []any{
		map[string]any{"finding": "f1"},
		map[string]any{"evidence": "e2"},
		"lixo",
	}
	got = coerceBreakdown(list)
	if len(got) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(got))
	}
	if got[0].Evidence != "" || got[1].Finding != "" {
		t.Errorf("missing fields should be empty strings: %+v", got)
	}

	if got := coerceBreakdown("texto solto"); len(got) != 0 {
		t.Errorf("non-list non-object should be empty, got %+v", got)
	}
}

func TestCoerceSuggestions(t *testing.T) {
	if got := coerceSuggestions([]any{"a", "b", float64(3)}); got != "a\nb" {
		t.Errorf("list coercion = %q", got)
	}
	if got := coerceSuggestions("já é texto"); got != "já é texto" {
		t.Errorf("string coercion = %q", got)
	}
	if got := coerceSuggestions(map[string]any{}); got != "" {
		t.Errorf("unexpected value should be empty, got %q", got)
	}
}
