package sequence

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return db, mock
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "PA-2025-0001", Format(PlanPrefix, 2025, 1))
	assert.Equal(t, "PR-2025-0042", Format(ProjectPrefix, 2025, 42))
	assert.Equal(t, "VZ-2030-1234", Format(VisualizationPrefix, 2030, 1234))
	assert.Equal(t, "GL-2025-10000", Format(GalleryPrefix, 2025, 10000))
}

func TestGeneratePlanNumber_FormatMatches(t *testing.T) {
	db, mock := newMockDB(t)

	year := time.Now().Year()
	mock.ExpectQuery("INSERT INTO plan_sequences").
		WithArgs(year).
		WillReturnRows(sqlmock.NewRows([]string{"next_sequence"}).AddRow(1))

	number, err := GeneratePlanNumber(db)
	require.NoError(t, err)

	pattern := regexp.MustCompile(`^PA-\d{4}-\d{4}$`)
	assert.True(t, pattern.MatchString(number), "got %s", number)
	assert.Equal(t, fmt.Sprintf("PA-%d-0001", year), number)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGeneratePlanNumber_SequentialNoGaps(t *testing.T) {
	db, mock := newMockDB(t)
	year := time.Now().Year()

	for i := 1; i <= 5; i++ {
		mock.ExpectQuery("INSERT INTO plan_sequences").
			WithArgs(year).
			WillReturnRows(sqlmock.NewRows([]string{"next_sequence"}).AddRow(i))
	}

	var previous string
	for i := 1; i <= 5; i++ {
		number, err := GeneratePlanNumber(db)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("PA-%d-%04d", year, i), number)
		assert.Greater(t, number, previous)
		previous = number
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerate_AllEntityPrefixes(t *testing.T) {
	cases := []struct {
		table    string
		prefix   string
		generate func(*gorm.DB) (string, error)
	}{
		{"project_sequences", "PR", GenerateProjectNumber},
		{"visualization_sequences", "VZ", GenerateVisualizationNumber},
		{"gallery_sequences", "GL", GenerateGalleryNumber},
	}

	year := time.Now().Year()
	for _, tc := range cases {
		db, mock := newMockDB(t)
		mock.ExpectQuery("INSERT INTO "+tc.table).
			WithArgs(year).
			WillReturnRows(sqlmock.NewRows([]string{"next_sequence"}).AddRow(7))

		number, err := tc.generate(db)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("%s-%d-0007", tc.prefix, year), number)
		assert.NoError(t, mock.ExpectationsWereMet())
	}
}

func TestGeneratePlanNumber_DBError(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("INSERT INTO plan_sequences").
		WillReturnError(fmt.Errorf("connection reset"))

	_, err := GeneratePlanNumber(db)
	assert.Error(t, err)
}
