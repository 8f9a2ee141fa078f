package model

import "gorm.io/gorm"

type RateKind string

const (
	RateKindStyle      RateKind = "STYLE"
	RateKindComplexity RateKind = "COMPLEXITY"
	RateKindRegion     RateKind = "REGION"
	RateKindFloors     RateKind = "FLOORS"
)

// PricingRate is one multiplier row consulted by the estimate calculator.
// Missing keys default to 1.0 in pkg/pricing.
type PricingRate struct {
	gorm.Model
	Kind       RateKind `json:"kind" gorm:"type:varchar(20);uniqueIndex:idx_rate_kind_key;not null"`
	Key        string   `json:"key" gorm:"uniqueIndex:idx_rate_kind_key;not null"`
	Multiplier float64  `json:"multiplier" gorm:"not null"`
}

// RegionRate holds the base price per square meter for a region.
type RegionRate struct {
	gorm.Model
	Region     string  `json:"region" gorm:"uniqueIndex;not null"`
	PricePerM2 float64 `json:"price_per_m2" gorm:"not null"`
	Currency   string  `json:"currency" gorm:"default:'USD'"`
}
