package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"planforge_backend/internal/model"
	"planforge_backend/pkg/database"
	"planforge_backend/pkg/sequence"
	"planforge_backend/pkg/utils/validation"
)

type ProjectInput struct {
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description"`
	Style       model.ArchStyle `json:"style" validate:"omitempty,oneof=MODERN CONTEMPORARY TRADITIONAL MEDITERRANEAN MINIMALIST SCANDINAVIAN"`
	AreaSqM     float64         `json:"area_sq_m" validate:"omitempty,gt=0"`
	Location    string          `json:"location"`
	YearBuilt   int             `json:"year_built"`
	CoverImage  string          `json:"cover_image"`
	PlanID      *uint           `json:"plan_id"`
}

func ListProjects(c *fiber.Ctx) error {
	page, perPage, offset := pagination(c)

	q := database.GetDB().Model(&model.Project{}).
		Where("status = ? AND is_active = ?", model.ProjectStatusPublished, true)
	if style := c.Query("style"); style != "" {
		q = q.Where("style = ?", style)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch projects",
		})
	}

	var projects []model.Project
	err := q.Order("created_at DESC").
		Limit(perPage).Offset(offset).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("project_images.order ASC")
		}).
		Find(&projects).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch projects",
		})
	}

	return c.JSON(fiber.Map{
		"projects": projects,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

func GetProject(c *fiber.Ctx) error {
	ref := c.Params("ref")

	var project model.Project
	err := database.GetDB().
		Where("(slug = ? OR project_number = ?) AND status = ? AND is_active = ?",
			ref, ref, model.ProjectStatusPublished, true).
		Preload("Plan").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("project_images.order ASC")
		}).
		First(&project).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Project not found",
		})
	}

	return c.JSON(project)
}

func CreateProject(c *fiber.Ctx) error {
	input := new(ProjectInput)
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

	projectNumber, err := sequence.GenerateProjectNumber(tx)
	if err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not allocate project number",
		})
	}

	project := model.Project{
		ProjectNumber: projectNumber,
		Title:         input.Title,
		Description:   input.Description,
		Status:        model.ProjectStatusDraft,
		Style:         input.Style,
		AreaSqM:       input.AreaSqM,
		Location:      input.Location,
		YearBuilt:     input.YearBuilt,
		CoverImage:    input.CoverImage,
		PlanID:        input.PlanID,
		IsActive:      true,
	}

	if err := tx.Create(&project).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create project",
		})
	}

	if err := tx.Commit().Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not complete project creation",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(project)
}

func UpdateProjectStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	input := new(PlanStatusInput) // same DRAFT/PUBLISHED/ARCHIVED set
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

	res := database.GetDB().Model(&model.Project{}).
		Where("id = ?", id).
		Update("status", model.ProjectStatus(input.Status))
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update project status",
		})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Project not found",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Project status updated",
	})
}

// ListVisualizations returns published renders, optionally scoped to a plan.
func ListVisualizations(c *fiber.Ctx) error {
	page, perPage, offset := pagination(c)

	q := database.GetDB().Model(&model.Visualization{}).Where("is_published = ?", true)
	if planID := c.Query("plan_id"); planID != "" {
		q = q.Where("plan_id = ?", planID)
	}
	if room := c.Query("room_type"); room != "" {
		q = q.Where("room_type = ?", room)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch visualizations",
		})
	}

	var visualizations []model.Visualization
	err := q.Order("created_at DESC").
		Limit(perPage).Offset(offset).
		Find(&visualizations).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch visualizations",
		})
	}

	return c.JSON(fiber.Map{
		"visualizations": visualizations,
		"total":          total,
		"page":           page,
		"per_page":       perPage,
	})
}
