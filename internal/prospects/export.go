package prospects

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// exportHeader mirrors the spreadsheet the product exports; columns are
// product copy.
var exportHeader = []string{
	"Nome",
	"Descrição",
	"Telefone",
	"Website",
	"Instagram",
	"Status",
	"Score IA",
	"Próxima Ação",
	"Análise Resumida",
	"Sugestões",
}

// WriteCSV renders the prospect collection as a CSV download. Status
// cells use the user's Kanban column titles, falling back to the raw
// status value.
func WriteCSV(w io.Writer, list []Prospect, columnTitles map[string]string) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("prospects: write export header: %w", err)
	}
	for _, p := range list {
		label := columnTitles[string(p.Status)]
		if label == "" {
			label = string(p.Status)
		}
		record := []string{
			p.Name,
			p.Description,
			p.Phone,
			p.Website,
			p.InstagramURL,
			label,
			strconv.Itoa(p.AIScore),
			p.NextRecommendedAction,
			p.Analysis,
			p.ImprovementSuggestions,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("prospects: write export row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
