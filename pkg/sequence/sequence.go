package sequence

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Reference number prefixes per entity type.
const (
	PlanPrefix          = "PA"
	ProjectPrefix       = "PR"
	VisualizationPrefix = "VZ"
	GalleryPrefix       = "GL"
)

// allocate claims the next counter value for the given year in a single
// statement. The upsert inserts the year row on first use and increments it
// atomically afterwards, so concurrent allocations can never observe the
// same value.
func allocate(db *gorm.DB, table string, year int) (int, error) {
	var seq int
	query := fmt.Sprintf(`
		INSERT INTO %s (year, next_sequence) VALUES (?, 2)
		ON CONFLICT (year) DO UPDATE SET next_sequence = %s.next_sequence + 1
		RETURNING next_sequence - 1`, table, table)

	err := db.Raw(query, year).Scan(&seq).Error
	if err != nil {
		return 0, fmt.Errorf("could not allocate sequence from %s: %w", table, err)
	}
	return seq, nil
}

func generate(db *gorm.DB, table, prefix string) (string, error) {
	year := time.Now().Year()
	seq, err := allocate(db, table, year)
	if err != nil {
		return "", err
	}
	return Format(prefix, year, seq), nil
}

// Format builds a reference number like PA-2025-0001.
func Format(prefix string, year, seq int) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}

func GeneratePlanNumber(db *gorm.DB) (string, error) {
	return generate(db, "plan_sequences", PlanPrefix)
}

func GenerateProjectNumber(db *gorm.DB) (string, error) {
	return generate(db, "project_sequences", ProjectPrefix)
}

func GenerateVisualizationNumber(db *gorm.DB) (string, error) {
	return generate(db, "visualization_sequences", VisualizationPrefix)
}

func GenerateGalleryNumber(db *gorm.DB) (string, error) {
	return generate(db, "gallery_sequences", GalleryPrefix)
}
