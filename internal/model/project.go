package model

import (
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectStatusDraft     ProjectStatus = "DRAFT"
	ProjectStatusPublished ProjectStatus = "PUBLISHED"
	ProjectStatusArchived  ProjectStatus = "ARCHIVED"
)

// Project is a realized build showcased in the portfolio section.
type Project struct {
	gorm.Model
	ProjectNumber string        `json:"project_number" gorm:"uniqueIndex;not null"` // e.g. PR-2025-0001
	Slug          string        `json:"slug" gorm:"uniqueIndex;not null"`
	Title         string        `json:"title" gorm:"not null"`
	Description   string        `json:"description" gorm:"type:text"`
	Status        ProjectStatus `json:"status" gorm:"type:varchar(20);default:'DRAFT';not null"`
	Style         ArchStyle     `json:"style" gorm:"type:varchar(20)"`
	AreaSqM       float64       `json:"area_sq_m"`
	Location      string        `json:"location"`
	YearBuilt     int           `json:"year_built"`
	CoverImage    string        `json:"cover_image"`
	PlanID        *uint         `json:"plan_id"`
	IsActive      bool          `json:"is_active" gorm:"default:true"`

	Plan   *Plan          `json:"plan,omitempty" gorm:"foreignKey:PlanID"`
	Images []ProjectImage `json:"images" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

type ProjectImage struct {
	gorm.Model
	ProjectID uint   `json:"project_id" gorm:"index"`
	URL       string `json:"url" gorm:"not null"`
	Order     int    `json:"order" gorm:"default:0"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.Slug == "" {
		s := slug.Make(p.Title)

		var count int64
		tx.Model(&Project{}).Where("slug = ?", s).Count(&count)
		if count > 0 {
			s = s + "-" + slug.Make(p.ProjectNumber)
		}

		p.Slug = s
	}
	return nil
}

// Visualization is a rendered interior/exterior view, optionally tied to a plan.
type Visualization struct {
	gorm.Model
	VisualizationNumber string `json:"visualization_number" gorm:"uniqueIndex;not null"` // e.g. VZ-2025-0001
	Title               string `json:"title" gorm:"not null"`
	RoomType            string `json:"room_type"`
	URL                 string `json:"url" gorm:"not null"`
	PlanID              *uint  `json:"plan_id"`
	IsPublished         bool   `json:"is_published" gorm:"default:false"`

	Plan *Plan `json:"-" gorm:"foreignKey:PlanID"`
}
