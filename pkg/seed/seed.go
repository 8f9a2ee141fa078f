package seed

import (
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"planforge_backend/internal/model"
	"planforge_backend/pkg/sequence"
)

func SeedCategories(db *gorm.DB) {
	categories := []model.Category{
		{Name: "Single Family", Slug: "single-family", Description: "Detached homes for one household"},
		{Name: "Multi Family", Slug: "multi-family", Description: "Duplexes and apartment buildings"},
		{Name: "Tiny Homes", Slug: "tiny-homes", Description: "Compact living under 60 sqm"},
		{Name: "Garages & Workshops", Slug: "garages-workshops", Description: "Standalone garages and workspaces"},
		{Name: "Commercial", Slug: "commercial", Description: "Offices, retail and mixed use"},
	}

	for _, category := range categories {
		result := db.FirstOrCreate(&category, model.Category{Slug: category.Slug})
		if result.Error != nil {
			log.Printf("Error creating category %s: %v", category.Name, result.Error)
		}
	}

	log.Println("Categories seeded successfully!")
}

func SeedPricingRates(db *gorm.DB) {
	regions := []model.RegionRate{
		{Region: "NORTH_AMERICA", PricePerM2: 15.0, Currency: "USD"},
		{Region: "EUROPE", PricePerM2: 14.0, Currency: "USD"},
		{Region: "MIDDLE_EAST", PricePerM2: 12.0, Currency: "USD"},
		{Region: "ASIA", PricePerM2: 10.0, Currency: "USD"},
		{Region: "AFRICA", PricePerM2: 9.0, Currency: "USD"},
	}
	for _, r := range regions {
		result := db.FirstOrCreate(&r, model.RegionRate{Region: r.Region})
		if result.Error != nil {
			log.Printf("Error creating region rate %s: %v", r.Region, result.Error)
		}
	}

	rates := []model.PricingRate{
		{Kind: model.RateKindStyle, Key: "MODERN", Multiplier: 1.2},
		{Kind: model.RateKindStyle, Key: "CONTEMPORARY", Multiplier: 1.15},
		{Kind: model.RateKindStyle, Key: "MEDITERRANEAN", Multiplier: 1.1},
		{Kind: model.RateKindStyle, Key: "SCANDINAVIAN", Multiplier: 1.05},
		{Kind: model.RateKindStyle, Key: "TRADITIONAL", Multiplier: 1.0},
		{Kind: model.RateKindStyle, Key: "MINIMALIST", Multiplier: 1.0},
		{Kind: model.RateKindComplexity, Key: "SIMPLE", Multiplier: 0.9},
		{Kind: model.RateKindComplexity, Key: "MODERATE", Multiplier: 1.0},
		{Kind: model.RateKindComplexity, Key: "COMPLEX", Multiplier: 1.25},
		{Kind: model.RateKindComplexity, Key: "LUXURY", Multiplier: 1.5},
	}
	for _, r := range rates {
		result := db.FirstOrCreate(&r, model.PricingRate{Kind: r.Kind, Key: r.Key})
		if result.Error != nil {
			log.Printf("Error creating pricing rate %s/%s: %v", r.Kind, r.Key, result.Error)
		}
	}

	log.Println("Pricing rates seeded successfully!")
}

// SeedDemoPlans creates a couple of published plans on an empty catalog so a
// fresh install has something to browse. Skipped as soon as any plan exists.
func SeedDemoPlans(db *gorm.DB) {
	var count int64
	if err := db.Model(&model.Plan{}).Count(&count).Error; err != nil || count > 0 {
		return
	}

	var category model.Category
	if err := db.Where("slug = ?", "single-family").First(&category).Error; err != nil {
		log.Printf("Error loading demo category: %v", err)
		return
	}

	plans := []model.Plan{
		{
			Title:        "Aspen Ridge",
			Description:  "Three-bedroom modern family home with an open plan living area.",
			Status:       model.PlanStatusPublished,
			CategoryID:   &category.ID,
			BasePrice:    1800,
			Currency:     "USD",
			AreaSqM:      145,
			Floors:       2,
			Bedrooms:     3,
			Bathrooms:    2,
			GarageSpaces: 2,
			Style:        model.StyleModern,
			IsActive:     true,
		},
		{
			Title:       "Birch Cabin",
			Description: "Compact single-floor cabin for narrow lots.",
			Status:      model.PlanStatusPublished,
			CategoryID:  &category.ID,
			BasePrice:   650,
			Currency:    "USD",
			AreaSqM:     52,
			Floors:      1,
			Bedrooms:    1,
			Bathrooms:   1,
			Style:       model.StyleScandinavian,
			IsActive:    true,
		},
	}

	for i := range plans {
		err := db.Transaction(func(tx *gorm.DB) error {
			number, err := sequence.GeneratePlanNumber(tx)
			if err != nil {
				return err
			}
			plans[i].PlanNumber = number
			return tx.Create(&plans[i]).Error
		})
		if err != nil {
			log.Printf("Error creating demo plan %s: %v", plans[i].Title, err)
		}
	}

	log.Println("Demo plans seeded successfully!")
}

// SeedAdminUser creates the initial super admin from env credentials.
func SeedAdminUser(db *gorm.DB) {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		return
	}

	var existing model.User
	if err := db.Where("email = ?", adminEmail).First(&existing).Error; err == nil {
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing admin password: %v", err)
		return
	}

	admin := model.User{
		Email:    adminEmail,
		Password: string(hashed),
		Role:     model.RoleSuperAdmin,
		IsActive: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("Error creating admin user: %v", err)
		return
	}

	log.Println("Admin user seeded successfully!")
}
