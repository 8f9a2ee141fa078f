package pricing

import (
	"errors"
	"math"
	"sort"

	"gorm.io/gorm"

	"planforge_backend/internal/model"
)

// SqFtPerSqM is the fixed conversion constant used across the calculator.
const SqFtPerSqM = 10.7639

var (
	ErrInvalidArea  = errors.New("area must be greater than zero")
	ErrInvalidFloor = errors.New("floors must be between 1 and 4")
)

type AreaUnit string

const (
	UnitSqM  AreaUnit = "sqm"
	UnitSqFt AreaUnit = "sqft"
)

func ConvertAreaToSqFt(area float64, from AreaUnit) float64 {
	if from == UnitSqFt {
		return area
	}
	return area * SqFtPerSqM
}

func ConvertAreaToSqM(area float64, from AreaUnit) float64 {
	if from == UnitSqM {
		return area
	}
	return area / SqFtPerSqM
}

type Input struct {
	Area       float64  `json:"area" validate:"required,gt=0"`
	Unit       AreaUnit `json:"unit" validate:"omitempty,oneof=sqm sqft"`
	Floors     int      `json:"floors" validate:"required,min=1,max=4"`
	Style      string   `json:"style"`
	Complexity string   `json:"complexity"`
	Region     string   `json:"region"`
}

type Adjustment struct {
	Factor     string  `json:"factor"`
	Key        string  `json:"key"`
	Multiplier float64 `json:"multiplier"`
	Amount     float64 `json:"amount"`
}

type Estimate struct {
	AreaSqM     float64      `json:"area_sq_m"`
	PricePerM2  float64      `json:"price_per_m2"`
	BasePrice   float64      `json:"base_price"`
	Adjustments []Adjustment `json:"adjustments"`
	TotalPrice  float64      `json:"total_price"`
	Currency    string       `json:"currency"`
}

// Rates carries the multiplier tables the calculator works from. Missing keys
// fall back to 1.0, so a partially seeded table never breaks an estimate.
type Rates struct {
	PricePerM2 map[string]float64 // keyed by region
	Style      map[string]float64
	Complexity map[string]float64
	Floors     map[int]float64
	Currency   string
}

// DefaultRates mirrors the seeded pricing_rates rows and acts as the fallback
// when the table is empty.
func DefaultRates() Rates {
	return Rates{
		PricePerM2: map[string]float64{
			"NORTH_AMERICA": 15.0,
			"EUROPE":        14.0,
			"MIDDLE_EAST":   12.0,
			"ASIA":          10.0,
			"AFRICA":        9.0,
		},
		Style: map[string]float64{
			"MODERN":        1.2,
			"CONTEMPORARY":  1.15,
			"MEDITERRANEAN": 1.1,
			"TRADITIONAL":   1.0,
			"MINIMALIST":    1.0,
			"SCANDINAVIAN":  1.05,
		},
		Complexity: map[string]float64{
			"SIMPLE":   0.9,
			"MODERATE": 1.0,
			"COMPLEX":  1.25,
			"LUXURY":   1.5,
		},
		Floors: map[int]float64{
			1: 1.0,
			2: 1.1,
			3: 1.2,
			4: 1.3,
		},
		Currency: "USD",
	}
}

// LoadRates reads the pricing tables from the database, falling back to the
// defaults for anything not present.
func LoadRates(db *gorm.DB) Rates {
	rates := DefaultRates()

	var regionRows []model.RegionRate
	if err := db.Find(&regionRows).Error; err == nil {
		for _, r := range regionRows {
			rates.PricePerM2[r.Region] = r.PricePerM2
			if r.Currency != "" {
				rates.Currency = r.Currency
			}
		}
	}

	var rateRows []model.PricingRate
	if err := db.Find(&rateRows).Error; err == nil {
		for _, r := range rateRows {
			switch r.Kind {
			case model.RateKindStyle:
				rates.Style[r.Key] = r.Multiplier
			case model.RateKindComplexity:
				rates.Complexity[r.Key] = r.Multiplier
			}
		}
	}

	return rates
}

func lookup(table map[string]float64, key string) float64 {
	if m, ok := table[key]; ok {
		return m
	}
	return 1.0
}

// Calculate produces a deterministic estimate:
//
//	totalPrice = basePrice * (1 + sum(multiplier_i - 1))
//
// where basePrice = area(sqm) * regional rate. Adjustments are additive on
// top of the base, not compounded.
func Calculate(in Input, rates Rates) (*Estimate, error) {
	if in.Area <= 0 {
		return nil, ErrInvalidArea
	}
	if in.Floors < 1 || in.Floors > 4 {
		return nil, ErrInvalidFloor
	}

	unit := in.Unit
	if unit == "" {
		unit = UnitSqM
	}
	areaSqM := ConvertAreaToSqM(in.Area, unit)

	pricePerM2, ok := rates.PricePerM2[in.Region]
	if !ok {
		pricePerM2 = rates.PricePerM2["NORTH_AMERICA"]
	}
	basePrice := areaSqM * pricePerM2

	floorMult := 1.0
	if m, ok := rates.Floors[in.Floors]; ok {
		floorMult = m
	}

	factors := []Adjustment{
		{Factor: "floors", Key: "", Multiplier: floorMult},
		{Factor: "style", Key: in.Style, Multiplier: lookup(rates.Style, in.Style)},
		{Factor: "complexity", Key: in.Complexity, Multiplier: lookup(rates.Complexity, in.Complexity)},
		{Factor: "region", Key: in.Region, Multiplier: 1.0},
	}

	total := basePrice
	adjustments := make([]Adjustment, 0, len(factors))
	for _, f := range factors {
		f.Amount = round2(basePrice * (f.Multiplier - 1))
		total += f.Amount
		adjustments = append(adjustments, f)
	}

	return &Estimate{
		AreaSqM:     round2(areaSqM),
		PricePerM2:  pricePerM2,
		BasePrice:   round2(basePrice),
		Adjustments: adjustments,
		TotalPrice:  round2(total),
		Currency:    rates.Currency,
	}, nil
}

type BudgetRecommendation struct {
	MaxAreaSqM  float64 `json:"max_area_sq_m"`
	MaxAreaSqFt float64 `json:"max_area_sq_ft"`
	PlanType    string  `json:"plan_type"`
}

// RecommendByBudget inverts the estimate formula using the cheapest
// style/complexity/floor combination: maxArea = budget / (rate * product of
// minimum multipliers), then buckets the area into a coarse plan-type label.
func RecommendByBudget(budget float64, region string, rates Rates) (*BudgetRecommendation, error) {
	if budget <= 0 {
		return nil, errors.New("budget must be greater than zero")
	}

	pricePerM2, ok := rates.PricePerM2[region]
	if !ok {
		pricePerM2 = rates.PricePerM2["NORTH_AMERICA"]
	}

	effectiveRate := pricePerM2 * minValue(rates.Style) * minValue(rates.Complexity) * minFloor(rates.Floors)
	maxArea := budget / effectiveRate

	return &BudgetRecommendation{
		MaxAreaSqM:  round2(maxArea),
		MaxAreaSqFt: round2(ConvertAreaToSqFt(maxArea, UnitSqM)),
		PlanType:    bucketPlanType(maxArea),
	}, nil
}

func bucketPlanType(areaSqM float64) string {
	switch {
	case areaSqM < 60:
		return "STUDIO"
	case areaSqM < 120:
		return "COMPACT_HOME"
	case areaSqM < 250:
		return "FAMILY_HOME"
	case areaSqM < 450:
		return "LUXURY_HOME"
	default:
		return "ESTATE"
	}
}

func minValue(table map[string]float64) float64 {
	if len(table) == 0 {
		return 1.0
	}
	values := make([]float64, 0, len(table))
	for _, v := range table {
		values = append(values, v)
	}
	sort.Float64s(values)
	return values[0]
}

func minFloor(table map[int]float64) float64 {
	if len(table) == 0 {
		return 1.0
	}
	min := math.MaxFloat64
	for _, v := range table {
		if v < min {
			min = v
		}
	}
	return min
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
