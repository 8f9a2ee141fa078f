package controller

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"planforge_backend/internal/model"
	"planforge_backend/pkg/database"
	"planforge_backend/pkg/license"
	"planforge_backend/pkg/sequence"
	"planforge_backend/pkg/utils/jwt"
	"planforge_backend/pkg/utils/validation"
)

type PlanInput struct {
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description"`
	CategoryID  *uint           `json:"category_id"`
	Style       model.ArchStyle `json:"style" validate:"omitempty,oneof=MODERN CONTEMPORARY TRADITIONAL MEDITERRANEAN MINIMALIST SCANDINAVIAN"`

	BasePrice       float64 `json:"base_price" validate:"required,gt=0"`
	StandardPrice   float64 `json:"standard_price" validate:"omitempty,gt=0"`
	CommercialPrice float64 `json:"commercial_price" validate:"omitempty,gt=0"`
	ExtendedPrice   float64 `json:"extended_price" validate:"omitempty,gt=0"`
	Currency        string  `json:"currency"`

	AreaSqM      float64        `json:"area_sq_m" validate:"omitempty,gt=0"`
	Floors       int            `json:"floors" validate:"omitempty,min=1,max=4"`
	Bedrooms     int            `json:"bedrooms" validate:"omitempty,min=0"`
	Bathrooms    int            `json:"bathrooms" validate:"omitempty,min=0"`
	GarageSpaces int            `json:"garage_spaces" validate:"omitempty,min=0"`
	Specs        datatypes.JSON `json:"specs"`
	Tags         []string       `json:"tags"`
}

// planFilters applies the catalog query params onto a plans query.
func planFilters(c *fiber.Ctx, q *gorm.DB) *gorm.DB {
	if cat := c.Query("category"); cat != "" {
		q = q.Joins("JOIN categories ON categories.id = plans.category_id").
			Where("categories.slug = ?", cat)
	}
	if style := c.Query("style"); style != "" {
		q = q.Where("plans.style = ?", style)
	}
	if v := c.Query("min_bedrooms"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			q = q.Where("plans.bedrooms >= ?", n)
		}
	}
	if v := c.Query("min_bathrooms"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			q = q.Where("plans.bathrooms >= ?", n)
		}
	}
	if v := c.Query("floors"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			q = q.Where("plans.floors = ?", n)
		}
	}
	if v := c.Query("min_area"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			q = q.Where("plans.area_sq_m >= ?", f)
		}
	}
	if v := c.Query("max_area"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			q = q.Where("plans.area_sq_m <= ?", f)
		}
	}
	if v := c.Query("min_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			q = q.Where("plans.base_price >= ?", f)
		}
	}
	if v := c.Query("max_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			q = q.Where("plans.base_price <= ?", f)
		}
	}
	if tag := c.Query("tag"); tag != "" {
		q = q.Joins("JOIN plan_tags ON plan_tags.plan_id = plans.id").
			Where("plan_tags.name = ?", tag)
	}
	if search := c.Query("q"); search != "" {
		q = q.Where("plans.title ILIKE ?", "%"+search+"%")
	}
	return q
}

func planSort(c *fiber.Ctx) string {
	switch c.Query("sort", "newest") {
	case "price_asc":
		return "plans.base_price ASC"
	case "price_desc":
		return "plans.base_price DESC"
	case "area_asc":
		return "plans.area_sq_m ASC"
	case "area_desc":
		return "plans.area_sq_m DESC"
	default:
		return "plans.created_at DESC"
	}
}

// ListPlans is the public catalog: published, active plans only.
func ListPlans(c *fiber.Ctx) error {
	page, perPage, offset := pagination(c)

	q := database.GetDB().Model(&model.Plan{}).
		Where("plans.status = ? AND plans.is_active = ?", model.PlanStatusPublished, true)
	q = planFilters(c, q)

	var total int64
	if err := q.Distinct("plans.id").Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch plans",
		})
	}

	var plans []model.Plan
	err := q.Distinct("plans.*").
		Order(planSort(c)).
		Limit(perPage).Offset(offset).
		Preload("Category").
		Preload("Tags").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("plan_images.order ASC")
		}).
		Find(&plans).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch plans",
		})
	}

	return c.JSON(fiber.Map{
		"plans":    plans,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// GetPlan resolves a plan by slug or plan number. When the caller is
// authenticated the response includes their license summary for the plan.
func GetPlan(c *fiber.Ctx) error {
	ref := c.Params("ref")

	var plan model.Plan
	err := database.GetDB().
		Where("(slug = ? OR plan_number = ?) AND status = ? AND is_active = ?",
			ref, ref, model.PlanStatusPublished, true).
		Preload("Category").
		Preload("Tags").
		Preload("Files").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("plan_images.order ASC")
		}).
		First(&plan).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Plan not found",
		})
	}

	resp := fiber.Map{"plan": plan}

	if claims, ok := c.Locals("user").(*jwt.Claims); ok {
		access, err := license.GetUserPlanAccess(database.GetDB(), claims.UserID, plan.ID)
		if err == nil {
			resp["access"] = access
		}
	}

	return c.JSON(resp)
}

func ListCategories(c *fiber.Ctx) error {
	var categories []model.Category
	if err := database.GetDB().Order("name ASC").Find(&categories).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch categories",
		})
	}
	return c.JSON(categories)
}

// CreatePlan is admin-only: allocates the plan number and creates the plan
// in DRAFT, with tags, atomically.
func CreatePlan(c *fiber.Ctx) error {
	input := new(PlanInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}
	if fields := validation.ValidateStruct(input); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": fields,
		})
	}

	tx := database.GetDB().Begin()

	planNumber, err := sequence.GeneratePlanNumber(tx)
	if err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not allocate plan number",
		})
	}

	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}

	plan := model.Plan{
		PlanNumber:      planNumber,
		Title:           input.Title,
		Description:     input.Description,
		Status:          model.PlanStatusDraft,
		CategoryID:      input.CategoryID,
		BasePrice:       input.BasePrice,
		StandardPrice:   input.StandardPrice,
		CommercialPrice: input.CommercialPrice,
		ExtendedPrice:   input.ExtendedPrice,
		Currency:        currency,
		AreaSqM:         input.AreaSqM,
		Floors:          input.Floors,
		Bedrooms:        input.Bedrooms,
		Bathrooms:       input.Bathrooms,
		GarageSpaces:    input.GarageSpaces,
		Style:           input.Style,
		Specs:           input.Specs,
		IsActive:        true,
	}

	if err := tx.Create(&plan).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create plan",
		})
	}

	for _, name := range input.Tags {
		if err := tx.Create(&model.PlanTag{PlanID: plan.ID, Name: name}).Error; err != nil {
			tx.Rollback()
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not save tags",
			})
		}
	}

	if err := tx.Commit().Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not complete plan creation",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(plan)
}

func UpdatePlan(c *fiber.Ctx) error {
	id := c.Params("id")
	input := new(PlanInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}
	if fields := validation.ValidateStruct(input); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": fields,
		})
	}

	var plan model.Plan
	if err := database.GetDB().First(&plan, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Plan not found",
		})
	}

	plan.Title = input.Title
	plan.Description = input.Description
	plan.CategoryID = input.CategoryID
	plan.BasePrice = input.BasePrice
	plan.StandardPrice = input.StandardPrice
	plan.CommercialPrice = input.CommercialPrice
	plan.ExtendedPrice = input.ExtendedPrice
	plan.AreaSqM = input.AreaSqM
	plan.Floors = input.Floors
	plan.Bedrooms = input.Bedrooms
	plan.Bathrooms = input.Bathrooms
	plan.GarageSpaces = input.GarageSpaces
	plan.Style = input.Style
	if input.Specs != nil {
		plan.Specs = input.Specs
	}
	if input.Currency != "" {
		plan.Currency = input.Currency
	}

	if err := database.GetDB().Save(&plan).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update plan",
		})
	}

	return c.JSON(plan)
}

type PlanStatusInput struct {
	Status model.PlanStatus `json:"status" validate:"required,oneof=DRAFT PUBLISHED ARCHIVED"`
}

func UpdatePlanStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	input := new(PlanStatusInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}
	if fields := validation.ValidateStruct(input); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": fields,
		})
	}

	res := database.GetDB().Model(&model.Plan{}).
		Where("id = ?", id).
		Update("status", input.Status)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update plan status",
		})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Plan not found",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Plan status updated",
	})
}

// DeletePlan soft-disables the plan; existing licenses stay valid.
func DeletePlan(c *fiber.Ctx) error {
	id := c.Params("id")

	res := database.GetDB().Model(&model.Plan{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete plan",
		})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Plan not found",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Plan deactivated",
	})
}
