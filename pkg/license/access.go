package license

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"planforge_backend/internal/model"
)

var ErrDownloadDenied = errors.New("download limit reached or license no longer valid")

// Access summarizes what a user may do with a plan or image. DownloadsRemaining
// is nil for unlimited licenses.
type Access struct {
	HasAccess          bool               `json:"has_access"`
	LicenseID          uint               `json:"license_id,omitempty"`
	LicenseType        *model.LicenseType `json:"license_type,omitempty"`
	DownloadsRemaining *int               `json:"downloads_remaining,omitempty"`
	ExpiresAt          *time.Time         `json:"expires_at,omitempty"`
}

// GetUserPlanAccess checks for a currently valid license on (user, plan).
// Read-only: nothing is consumed here, the download endpoint does that.
func GetUserPlanAccess(db *gorm.DB, userID, planID uint) (Access, error) {
	var lic model.License
	err := db.Where("user_id = ? AND plan_id = ? AND is_active = ?", userID, planID, true).
		Where("expires_at IS NULL OR expires_at > ?", time.Now()).
		Order("created_at DESC").
		First(&lic).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Access{HasAccess: false}, nil
		}
		return Access{}, err
	}

	return accessFrom(&lic), nil
}

// GetUserImageAccess is the gallery-image counterpart of GetUserPlanAccess.
func GetUserImageAccess(db *gorm.DB, userID, imageID uint) (Access, error) {
	var lic model.License
	err := db.Where("user_id = ? AND gallery_image_id = ? AND is_active = ?", userID, imageID, true).
		Where("expires_at IS NULL OR expires_at > ?", time.Now()).
		Order("created_at DESC").
		First(&lic).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Access{HasAccess: false}, nil
		}
		return Access{}, err
	}

	return accessFrom(&lic), nil
}

func accessFrom(lic *model.License) Access {
	t := lic.LicenseType
	return Access{
		HasAccess:          true,
		LicenseID:          lic.ID,
		LicenseType:        &t,
		DownloadsRemaining: lic.DownloadsRemaining(),
		ExpiresAt:          lic.ExpiresAt,
	}
}

// ConsumeDownload burns one download from the license. Check and increment
// happen in a single conditional UPDATE so two simultaneous downloads cannot
// both pass a nearly exhausted limit. Zero rows affected means denied.
func ConsumeDownload(db *gorm.DB, licenseID uint) error {
	res := db.Model(&model.License{}).
		Where("id = ? AND is_active = ?", licenseID, true).
		Where("max_downloads IS NULL OR download_count < max_downloads").
		Where("expires_at IS NULL OR expires_at > ?", time.Now()).
		UpdateColumn("download_count", gorm.Expr("download_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDownloadDenied
	}
	return nil
}

// Defaults per tier applied when licenses are created from a completed order.
type TierDefaults struct {
	MaxDownloads *int
	ValidFor     *time.Duration
}

func intPtr(v int) *int                     { return &v }
func durPtr(d time.Duration) *time.Duration { return &d }

var tierDefaults = map[model.LicenseType]TierDefaults{
	model.LicensePreview:    {MaxDownloads: intPtr(3), ValidFor: durPtr(7 * 24 * time.Hour)},
	model.LicenseStandard:   {MaxDownloads: intPtr(5), ValidFor: durPtr(365 * 24 * time.Hour)},
	model.LicenseCommercial: {MaxDownloads: intPtr(10)},
	model.LicenseExtended:   {},
}

// NewFromOrderItem builds the license granted by a paid order item.
func NewFromOrderItem(item *model.OrderItem, userID uint, orderID uint) model.License {
	defaults := tierDefaults[item.LicenseType]

	lic := model.License{
		UserID:         userID,
		PlanID:         item.PlanID,
		GalleryImageID: item.GalleryImageID,
		OrderID:        &orderID,
		LicenseType:    item.LicenseType,
		IsActive:       true,
	}
	if defaults.MaxDownloads != nil {
		md := *defaults.MaxDownloads
		lic.MaxDownloads = &md
	}
	if defaults.ValidFor != nil {
		exp := time.Now().Add(*defaults.ValidFor)
		lic.ExpiresAt = &exp
	}
	return lic
}
