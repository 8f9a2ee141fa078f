package model

import (
	"time"

	"gorm.io/gorm"
)

type LicenseType string

const (
	LicensePreview    LicenseType = "PREVIEW"
	LicenseStandard   LicenseType = "STANDARD"
	LicenseCommercial LicenseType = "COMMERCIAL"
	LicenseExtended   LicenseType = "EXTENDED"
)

// License binds a user to a plan or gallery image under a tier. Download
// counting happens through an atomic conditional update (pkg/license), never
// through read-modify-write on this struct.
type License struct {
	gorm.Model
	UserID         uint  `json:"user_id" gorm:"index:idx_license_user_plan"`
	PlanID         *uint `json:"plan_id" gorm:"index:idx_license_user_plan"`
	GalleryImageID *uint `json:"gallery_image_id" gorm:"index"`
	OrderID        *uint `json:"order_id"`

	LicenseType   LicenseType `json:"license_type" gorm:"type:varchar(20);not null"`
	DownloadCount int         `json:"download_count" gorm:"default:0"`
	MaxDownloads  *int        `json:"max_downloads"` // nil means unlimited
	ExpiresAt     *time.Time  `json:"expires_at"`    // nil means perpetual
	IsActive      bool        `json:"is_active" gorm:"default:true"`

	User         User          `json:"-" gorm:"foreignKey:UserID"`
	Plan         *Plan         `json:"plan,omitempty" gorm:"foreignKey:PlanID"`
	GalleryImage *GalleryImage `json:"gallery_image,omitempty" gorm:"foreignKey:GalleryImageID"`
	Order        *Order        `json:"-" gorm:"foreignKey:OrderID"`
}

// IsValidAt reports whether the license grants access at the given instant.
// An expired license is invalid even while is_active is still set.
func (l *License) IsValidAt(now time.Time) bool {
	if !l.IsActive {
		return false
	}
	if l.ExpiresAt != nil && !l.ExpiresAt.After(now) {
		return false
	}
	return true
}

// DownloadsRemaining returns the remaining quota, or nil when unlimited.
func (l *License) DownloadsRemaining() *int {
	if l.MaxDownloads == nil {
		return nil
	}
	remaining := *l.MaxDownloads - l.DownloadCount
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}

// DownloadLog records every served download for auditing and analytics.
type DownloadLog struct {
	gorm.Model
	LicenseID    uint      `json:"license_id" gorm:"index"`
	UserID       uint      `json:"user_id" gorm:"index"`
	FileURL      string    `json:"file_url"`
	IP           string    `json:"ip"`
	UserAgent    string    `json:"user_agent"`
	DownloadedAt time.Time `json:"downloaded_at" gorm:"index"`

	License License `json:"-" gorm:"foreignKey:LicenseID"`
}
