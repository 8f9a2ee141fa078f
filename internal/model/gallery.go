package model

import "gorm.io/gorm"

// GalleryImage is a standalone purchasable render sold under image licenses.
type GalleryImage struct {
	gorm.Model
	GalleryNumber string  `json:"gallery_number" gorm:"uniqueIndex;not null"` // e.g. GL-2025-0001
	Title         string  `json:"title" gorm:"not null"`
	Description   string  `json:"description"`
	URL           string  `json:"url" gorm:"not null"`
	ThumbnailURL  string  `json:"thumbnail_url"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency" gorm:"default:'USD'"`
	IsPublished   bool    `json:"is_published" gorm:"default:false"`

	Licenses []License `json:"-" gorm:"foreignKey:GalleryImageID"`
}

// PriceForTier mirrors Plan.PriceForTier for gallery images. Images carry a
// single list price; commercial and extended tiers are multiples of it.
func (g *GalleryImage) PriceForTier(tier LicenseType) float64 {
	switch tier {
	case LicensePreview:
		return 0
	case LicenseCommercial:
		return g.Price * 2
	case LicenseExtended:
		return g.Price * 4
	default:
		return g.Price
	}
}
