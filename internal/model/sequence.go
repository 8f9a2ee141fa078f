package model

// Per-year counter rows backing the human-readable reference numbers.
// One row per calendar year per entity type; next_sequence is only ever
// touched through the atomic upsert in pkg/sequence.

type PlanSequence struct {
	ID           uint `gorm:"primarykey"`
	Year         int  `gorm:"uniqueIndex;not null"`
	NextSequence int  `gorm:"default:1;not null"`
}

type ProjectSequence struct {
	ID           uint `gorm:"primarykey"`
	Year         int  `gorm:"uniqueIndex;not null"`
	NextSequence int  `gorm:"default:1;not null"`
}

type VisualizationSequence struct {
	ID           uint `gorm:"primarykey"`
	Year         int  `gorm:"uniqueIndex;not null"`
	NextSequence int  `gorm:"default:1;not null"`
}

type GallerySequence struct {
	ID           uint `gorm:"primarykey"`
	Year         int  `gorm:"uniqueIndex;not null"`
	NextSequence int  `gorm:"default:1;not null"`
}
