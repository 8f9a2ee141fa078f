package model

import (
	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Plan Status
type PlanStatus string

const (
	PlanStatusDraft     PlanStatus = "DRAFT"
	PlanStatusPublished PlanStatus = "PUBLISHED"
	PlanStatusArchived  PlanStatus = "ARCHIVED"
)

// Architectural Styles
type ArchStyle string

const (
	StyleModern        ArchStyle = "MODERN"
	StyleContemporary  ArchStyle = "CONTEMPORARY"
	StyleTraditional   ArchStyle = "TRADITIONAL"
	StyleMediterranean ArchStyle = "MEDITERRANEAN"
	StyleMinimalist    ArchStyle = "MINIMALIST"
	StyleScandinavian  ArchStyle = "SCANDINAVIAN"
)

// Plan File Types
type PlanFileType string

const (
	PlanFilePDF PlanFileType = "PDF"
	PlanFileDWG PlanFileType = "DWG"
	PlanFileZIP PlanFileType = "ZIP"
)

type Category struct {
	gorm.Model
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`

	Plans []Plan `json:"-"`
}

type Plan struct {
	gorm.Model
	PlanNumber  string     `json:"plan_number" gorm:"uniqueIndex;not null"` // e.g. PA-2025-0001
	Slug        string     `json:"slug" gorm:"uniqueIndex;not null"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description" gorm:"type:text"`
	Status      PlanStatus `json:"status" gorm:"type:varchar(20);default:'DRAFT';not null"`
	CategoryID  *uint      `json:"category_id"`

	// Pricing fields (per license tier)
	BasePrice       float64 `json:"base_price" gorm:"not null"`
	StandardPrice   float64 `json:"standard_price"`
	CommercialPrice float64 `json:"commercial_price"`
	ExtendedPrice   float64 `json:"extended_price"`
	Currency        string  `json:"currency" gorm:"default:'USD'"`

	// Specification fields
	AreaSqM      float64   `json:"area_sq_m"`
	Floors       int       `json:"floors"`
	Bedrooms     int       `json:"bedrooms"`
	Bathrooms    int       `json:"bathrooms"`
	GarageSpaces int       `json:"garage_spaces"`
	Style        ArchStyle `json:"style" gorm:"type:varchar(20)"`

	// Free-form extras (ceiling height, roof type, foundation...)
	Specs datatypes.JSON `json:"specs"`

	IsActive bool `json:"is_active" gorm:"default:true"`

	Category *Category   `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Files    []PlanFile  `json:"files" gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE"`
	Images   []PlanImage `json:"images" gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE"`
	Tags     []PlanTag   `json:"tags" gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE"`
}

type PlanFile struct {
	gorm.Model
	PlanID    uint         `json:"plan_id" gorm:"index"`
	FileType  PlanFileType `json:"file_type" gorm:"type:varchar(10);not null"`
	URL       string       `json:"url" gorm:"not null"`
	SizeBytes int64        `json:"size_bytes"`

	Plan Plan `json:"-" gorm:"foreignKey:PlanID"`
}

type PlanImage struct {
	gorm.Model
	PlanID  uint   `json:"plan_id" gorm:"index"`
	URL     string `json:"url" gorm:"not null"`
	IsCover bool   `json:"is_cover" gorm:"default:false"`
	Order   int    `json:"order" gorm:"default:0"`

	Plan Plan `json:"-" gorm:"foreignKey:PlanID"`
}

type PlanTag struct {
	gorm.Model
	PlanID uint   `json:"plan_id" gorm:"uniqueIndex:idx_plan_tag"`
	Name   string `json:"name" gorm:"uniqueIndex:idx_plan_tag;not null"`
}

// BeforeCreate derives the slug from the title when none is provided.
func (p *Plan) BeforeCreate(tx *gorm.DB) error {
	if p.Slug == "" {
		s := slug.Make(p.Title)

		var count int64
		tx.Model(&Plan{}).Where("slug = ?", s).Count(&count)
		if count > 0 {
			// Plan numbers are unique, so suffixing with the counter part keeps slugs unique too
			s = s + "-" + slug.Make(p.PlanNumber)
		}

		p.Slug = s
	}
	return nil
}

// PriceForTier returns the captured unit price for a license tier. Tiers
// without a configured price fall back to the base price.
func (p *Plan) PriceForTier(tier LicenseType) float64 {
	switch tier {
	case LicensePreview:
		return 0
	case LicenseStandard:
		if p.StandardPrice > 0 {
			return p.StandardPrice
		}
	case LicenseCommercial:
		if p.CommercialPrice > 0 {
			return p.CommercialPrice
		}
	case LicenseExtended:
		if p.ExtendedPrice > 0 {
			return p.ExtendedPrice
		}
	}
	return p.BasePrice
}
