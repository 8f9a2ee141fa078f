package license

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"planforge_backend/internal/model"
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

func licenseRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "plan_id", "license_type",
		"download_count", "max_downloads", "expires_at", "is_active",
	})
}

func TestGetUserPlanAccess_NoLicense(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "licenses"`).
		WillReturnRows(licenseRows())

	access, err := GetUserPlanAccess(db, 1, 42)
	require.NoError(t, err)
	assert.False(t, access.HasAccess)
	assert.Nil(t, access.LicenseType)
	assert.Nil(t, access.DownloadsRemaining)
}

func TestGetUserPlanAccess_ValidLicense(t *testing.T) {
	db, mock := newMockDB(t)

	planID := uint(42)
	max := 5
	mock.ExpectQuery(`SELECT \* FROM "licenses"`).
		WillReturnRows(licenseRows().
			AddRow(7, 1, planID, "STANDARD", 2, max, nil, true))

	access, err := GetUserPlanAccess(db, 1, planID)
	require.NoError(t, err)
	assert.True(t, access.HasAccess)
	assert.Equal(t, uint(7), access.LicenseID)
	require.NotNil(t, access.LicenseType)
	assert.Equal(t, model.LicenseStandard, *access.LicenseType)
	require.NotNil(t, access.DownloadsRemaining)
	assert.Equal(t, 3, *access.DownloadsRemaining)
}

func TestGetUserPlanAccess_UnlimitedLicense(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "licenses"`).
		WillReturnRows(licenseRows().
			AddRow(8, 1, 42, "EXTENDED", 100, nil, nil, true))

	access, err := GetUserPlanAccess(db, 1, 42)
	require.NoError(t, err)
	assert.True(t, access.HasAccess)
	assert.Nil(t, access.DownloadsRemaining)
}

func TestConsumeDownload_Allowed(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`UPDATE "licenses" SET "download_count"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := ConsumeDownload(db, 7)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeDownload_LimitReached(t *testing.T) {
	db, mock := newMockDB(t)

	// The conditional WHERE matches no row once the quota is exhausted
	mock.ExpectExec(`UPDATE "licenses" SET "download_count"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := ConsumeDownload(db, 7)
	assert.ErrorIs(t, err, ErrDownloadDenied)
}

func TestLicenseIsValidAt(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	// Expired license is invalid even while is_active is still set
	expired := model.License{IsActive: true, ExpiresAt: &past}
	assert.False(t, expired.IsValidAt(now))

	active := model.License{IsActive: true, ExpiresAt: &future}
	assert.True(t, active.IsValidAt(now))

	perpetual := model.License{IsActive: true}
	assert.True(t, perpetual.IsValidAt(now))

	revoked := model.License{IsActive: false, ExpiresAt: &future}
	assert.False(t, revoked.IsValidAt(now))
}

func TestDownloadsRemaining_AtLimit(t *testing.T) {
	max := 5
	lic := model.License{MaxDownloads: &max, DownloadCount: 5}

	remaining := lic.DownloadsRemaining()
	require.NotNil(t, remaining)
	assert.Equal(t, 0, *remaining)
}

func TestNewFromOrderItem_TierDefaults(t *testing.T) {
	planID := uint(42)

	standard := NewFromOrderItem(&model.OrderItem{
		PlanID:      &planID,
		LicenseType: model.LicenseStandard,
	}, 1, 9)
	require.NotNil(t, standard.MaxDownloads)
	assert.Equal(t, 5, *standard.MaxDownloads)
	require.NotNil(t, standard.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(365*24*time.Hour), *standard.ExpiresAt, time.Minute)

	commercial := NewFromOrderItem(&model.OrderItem{
		PlanID:      &planID,
		LicenseType: model.LicenseCommercial,
	}, 1, 9)
	require.NotNil(t, commercial.MaxDownloads)
	assert.Equal(t, 10, *commercial.MaxDownloads)
	assert.Nil(t, commercial.ExpiresAt)

	extended := NewFromOrderItem(&model.OrderItem{
		PlanID:      &planID,
		LicenseType: model.LicenseExtended,
	}, 1, 9)
	assert.Nil(t, extended.MaxDownloads)
	assert.Nil(t, extended.ExpiresAt)

	preview := NewFromOrderItem(&model.OrderItem{
		PlanID:      &planID,
		LicenseType: model.LicensePreview,
	}, 1, 9)
	require.NotNil(t, preview.MaxDownloads)
	assert.Equal(t, 3, *preview.MaxDownloads)

	assert.True(t, standard.IsActive)
	assert.Equal(t, uint(1), standard.UserID)
	require.NotNil(t, standard.OrderID)
	assert.Equal(t, uint(9), *standard.OrderID)
}
