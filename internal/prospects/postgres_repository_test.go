package prospects

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var prospectColumnNames = []string{
	"id", "user_id", "name", "description", "phone", "address", "website", "instagram_url",
	"status", "ai_score", "analysis", "analysis_breakdown", "improvement_suggestions",
	"next_recommended_action", "found_on", "created_at", "updated_at",
}

func prospectRowValues(id, userID, name string) []any {
	now := time.Now().UTC()
	return []any{
		id, userID, name, "Padaria artesanal", "+5511999999999", "Rua A, 10",
		"https://padaria.example", "https://instagram.com/padaria",
		StatusNew, 72, "Boa presença local.",
		[]byte(`[{"finding":"Sem site próprio","evidence":"Só Instagram"}]`),
		"Criar landing page", "Iniciar contato", []string{"google"}, now, now,
	}
}

func TestPostgresListByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT(.+)FROM prospects").
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(prospectColumnNames).
			AddRow(prospectRowValues("p-1", "user-1", "Padaria Central")...))

	repo := NewPostgresRepository(mock)
	list, err := repo.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	got := list[0]
	assert.Equal(t, "Padaria Central", got.Name)
	assert.Equal(t, StatusNew, got.Status)
	assert.Equal(t, 72, got.AIScore)
	require.Len(t, got.AnalysisBreakdown, 1)
	assert.Equal(t, "Sem site próprio", got.AnalysisBreakdown[0].Finding)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsertBatchRunsInOneTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO prospects").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectQuery("INSERT INTO prospects").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	repo := NewPostgresRepository(mock)
	inserted, err := repo.InsertBatch(context.Background(), "user-1", []Prospect{
		{Name: "Padaria Central", Phone: "+5511999999999"},
		{Name: "Café do Bairro", Phone: "+5511888888888"},
	})
	require.NoError(t, err)
	require.Len(t, inserted, 2)
	assert.NotEmpty(t, inserted[0].ID)
	assert.Equal(t, StatusNew, inserted[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateBuildsDynamicSet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	name := "Padaria Nova"
	score := 88
	mock.ExpectQuery("UPDATE prospects SET").
		WithArgs("p-1", "user-1", name, score).
		WillReturnRows(pgxmock.NewRows(prospectColumnNames).
			AddRow(prospectRowValues("p-1", "user-1", name)...))

	repo := NewPostgresRepository(mock)
	got, err := repo.Update(context.Background(), "user-1", "p-1", Update{Name: &name, AIScore: &score})
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	name := "Padaria Nova"
	mock.ExpectQuery("UPDATE prospects SET").
		WithArgs("missing", "user-1", name).
		WillReturnError(pgx.ErrNoRows)

	repo := NewPostgresRepository(mock)
	_, err = repo.Update(context.Background(), "user-1", "missing", Update{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresDeleteNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM prospects").
		WithArgs("missing", "user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewPostgresRepository(mock)
	err = repo.Delete(context.Background(), "user-1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
