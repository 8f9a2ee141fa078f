package controller

import (
	"github.com/gofiber/fiber/v2"

	"planforge_backend/internal/model"
	"planforge_backend/pkg/database"
	"planforge_backend/pkg/license"
	"planforge_backend/pkg/utils/jwt"
)

// ListGalleryImages is the public gallery feed.
func ListGalleryImages(c *fiber.Ctx) error {
	page, perPage, offset := pagination(c)

	q := database.GetDB().Model(&model.GalleryImage{}).Where("is_published = ?", true)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch gallery images",
		})
	}

	var images []model.GalleryImage
	err := q.Order("created_at DESC").
		Limit(perPage).Offset(offset).
		Find(&images).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch gallery images",
		})
	}

	return c.JSON(fiber.Map{
		"images":   images,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// GetGalleryImage includes the caller's license summary when authenticated,
// so the frontend can swap the buy button for a download button.
func GetGalleryImage(c *fiber.Ctx) error {
	id := c.Params("id")

	var img model.GalleryImage
	if err := database.GetDB().Where("is_published = ?", true).First(&img, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Image not found",
		})
	}

	resp := fiber.Map{"image": img}

	if claims, ok := c.Locals("user").(*jwt.Claims); ok {
		access, err := license.GetUserImageAccess(database.GetDB(), claims.UserID, img.ID)
		if err == nil {
			resp["access"] = access
		}
	}

	return c.JSON(resp)
}
