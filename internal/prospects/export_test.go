package prospects

import (
	"bytes"
	"encoding/csv"
	"testing"
)

func TestWriteCSV(t *testing.T) {
	list := []Prospect{
		{
			Name:                   "Padaria Central",
			Description:            "Padaria artesanal",
			Phone:                  "+5521999999999",
			Website:                "https://padaria.com",
			InstagramURL:           "https://instagram.com/padaria",
			Status:                 StatusNegotiating,
			AIScore:                85,
			NextRecommendedAction:  "Enviar proposta",
			Analysis:               "Site lento, GMN forte",
			ImprovementSuggestions: "Acelerar o site\nPostar no GMN",
		},
		{Name: "Café do Porto", Status: StatusNew, AIScore: 50},
	}
	titles := map[string]string{"negotiating": "Negociando Agora"}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, list, titles); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading exported csv failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if records[0][0] != "Nome" || records[0][6] != "Score IA" {
		t.Errorf("unexpected header: %v", records[0])
	}
	if records[1][5] != "Negociando Agora" {
		t.Errorf("custom column title not used, got %q", records[1][5])
	}
	if records[2][5] != "new" {
		t.Errorf("missing title should fall back to the raw status, got %q", records[2][5])
	}
	if records[1][9] != "Acelerar o site\nPostar no GMN" {
		t.Errorf("multi-line suggestions mangled: %q", records[1][9])
	}
}
