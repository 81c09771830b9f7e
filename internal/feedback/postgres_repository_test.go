package feedback

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresInsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO feedback").
		WithArgs(pgxmock.AnyArg(), "user-1", "user@example.com", "Maria", "", "Muito útil!", 5).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))

	repo := NewPostgresRepository(mock)
	stored, err := repo.Insert(context.Background(), Feedback{
		UserID:     "user-1",
		Email:      "user@example.com",
		Name:       "Maria",
		Suggestion: "Muito útil!",
		Rating:     5,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, now, stored.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsertFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO feedback").
		WillReturnError(assert.AnError)

	repo := NewPostgresRepository(mock)
	_, err = repo.Insert(context.Background(), Feedback{UserID: "user-1", Rating: 3})
	assert.Error(t, err)
}
