package repository

import (
	"context"
	"testing"

	"healgenie-portal/internal/domain/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"doe", "%doe%"},
		{"_", `%\_%`},
		{"50%", `%50\%%`},
		{`a\b`, `%a\\b%`},
		{`100%_\`, `%100\%\_\\%`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, containsPattern(tt.query), tt.query)
	}
}

func TestSearchPatientsMatchesWildcardsLiterally(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewProfileRepository()

	mock.ExpectQuery(`ILIKE \$3 ESCAPE '\\'.*LIMIT \$4`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), `%\_%`, defaultSearchLimit).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name"}))

	results, err := repo.SearchPatients(context.Background(), db, entity.PatientSearchFilter{
		DoctorID: uuid.New(),
		Query:    " _ ",
	})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NoError(t, mock.ExpectationsWereMet())
}
