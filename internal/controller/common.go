package controller

import (
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"planforge_backend/internal/model"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// pagination reads page/per_page query params with sane caps.
func pagination(c *fiber.Ctx) (page, perPage, offset int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(c.Query("per_page", strconv.Itoa(defaultPerPage)))
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage, (page - 1) * perPage
}

func logEmailError(kind, to string, err error) {
	log.Printf("Could not send %s email to %s: %v", kind, to, err)
}

func parsePrice(v string) (float64, error) {
	return strconv.ParseFloat(v, 64)
}

func fileTypeFromName(name string) model.PlanFileType {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return model.PlanFilePDF
	case ".dwg":
		return model.PlanFileDWG
	default:
		return model.PlanFileZIP
	}
}
