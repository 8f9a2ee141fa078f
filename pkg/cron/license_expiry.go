package cron

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"planforge_backend/internal/model"
	"planforge_backend/pkg/database"
	"planforge_backend/pkg/email"
)

func InitLicenseExpiryCron() {
	c := cron.New()

	_, err := c.AddFunc("0 9 * * *", func() {
		checkExpiringLicenses()
	})

	if err != nil {
		log.Printf("Could not initialize license expiry cron: %v", err)
		return
	}

	c.Start()
}

func checkExpiringLicenses() {
	log.Println("Checking for expiring licenses...")

	warningDays := []int{7, 3}

	for _, days := range warningDays {
		windowStart := time.Now().AddDate(0, 0, days)
		windowEnd := windowStart.Add(24 * time.Hour)

		var licenses []model.License
		err := database.DB.
			Where("is_active = ? AND expires_at >= ? AND expires_at < ?", true, windowStart, windowEnd).
			Preload("User").
			Preload("User.Profile").
			Preload("Plan").
			Find(&licenses).Error
		if err != nil {
			log.Printf("Error fetching expiring licenses: %v", err)
			continue
		}

		log.Printf("Found %d licenses expiring in %d days", len(licenses), days)

		for _, lic := range licenses {
			if email.GlobalEmailService == nil || lic.ExpiresAt == nil {
				continue
			}

			title := "your purchased item"
			if lic.Plan != nil {
				title = lic.Plan.Title
			}

			err := email.GlobalEmailService.SendLicenseExpiryWarning(
				lic.User.Email,
				lic.User.GetFullName(),
				title,
				*lic.ExpiresAt,
				days,
			)
			if err != nil {
				log.Printf("Error sending expiry warning to %s: %v", lic.User.Email, err)
			}
		}
	}
}
