package controller

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"planforge_backend/internal/model"
	"planforge_backend/pkg/database"
	"planforge_backend/pkg/license"
	"planforge_backend/pkg/utils/jwt"
)

// GetPlanAccess exposes the read-only access predicate for the frontend.
func GetPlanAccess(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	planID, err := c.ParamsInt("plan_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid plan id",
		})
	}

	access, err := license.GetUserPlanAccess(database.GetDB(), claims.UserID, uint(planID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not check access",
		})
	}

	return c.JSON(access)
}

// DownloadPlanFile serves one plan file download: re-checks access, burns one
// download atomically, logs it and returns the asset URL.
func DownloadPlanFile(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	planID, err := c.ParamsInt("plan_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid plan id",
		})
	}
	fileID, err := c.ParamsInt("file_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid file id",
		})
	}

	db := database.GetDB()

	var file model.PlanFile
	if err := db.Where("id = ? AND plan_id = ?", fileID, planID).First(&file).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "File not found",
		})
	}

	access, err := license.GetUserPlanAccess(db, claims.UserID, uint(planID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not check access",
		})
	}
	if !access.HasAccess {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "No valid license for this plan",
		})
	}

	// The conditional update is the authoritative check; the read above only
	// picks which license to consume.
	if err := license.ConsumeDownload(db, access.LicenseID); err != nil {
		if errors.Is(err, license.ErrDownloadDenied) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Download limit reached",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not process download",
		})
	}

	logDownload(access.LicenseID, claims.UserID, file.URL, c)

	return c.JSON(fiber.Map{
		"url":       file.URL,
		"file_type": file.FileType,
	})
}

// DownloadGalleryImage is the image counterpart of DownloadPlanFile.
func DownloadGalleryImage(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	imageID, err := c.ParamsInt("image_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid image id",
		})
	}

	db := database.GetDB()

	var img model.GalleryImage
	if err := db.First(&img, imageID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Image not found",
		})
	}

	access, err := license.GetUserImageAccess(db, claims.UserID, img.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not check access",
		})
	}
	if !access.HasAccess {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "No valid license for this image",
		})
	}

	if err := license.ConsumeDownload(db, access.LicenseID); err != nil {
		if errors.Is(err, license.ErrDownloadDenied) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Download limit reached",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not process download",
		})
	}

	logDownload(access.LicenseID, claims.UserID, img.URL, c)

	return c.JSON(fiber.Map{
		"url": img.URL,
	})
}

func logDownload(licenseID, userID uint, fileURL string, c *fiber.Ctx) {
	entry := model.DownloadLog{
		LicenseID:    licenseID,
		UserID:       userID,
		FileURL:      fileURL,
		IP:           c.IP(),
		UserAgent:    c.Get("User-Agent"),
		DownloadedAt: time.Now(),
	}
	// Logging is best effort, the download already happened
	database.GetDB().Create(&entry)
}
