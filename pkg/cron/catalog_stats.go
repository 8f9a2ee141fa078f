// pkg/cron/catalog_stats.go
package cron

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"planforge_backend/internal/model"
	"planforge_backend/pkg/database"
	"planforge_backend/pkg/email"
)

func InitCatalogStatsCron(emailService *email.EmailService) {
	c := cron.New()

	// Sunday 20:00
	_, err := c.AddFunc("0 20 * * 0", func() {
		sendCatalogStats(emailService, time.Now().AddDate(0, 0, -7), "weekly")
	})
	if err != nil {
		log.Printf("Could not register weekly catalog stats cron: %v", err)
	}

	// First of the month, 20:00
	_, err = c.AddFunc("0 20 1 * *", func() {
		sendCatalogStats(emailService, time.Now().AddDate(0, -1, 0), "monthly")
	})
	if err != nil {
		log.Printf("Could not register monthly catalog stats cron: %v", err)
	}

	c.Start()
}

func sendCatalogStats(emailService *email.EmailService, startDate time.Time, period string) {
	if emailService == nil {
		return
	}

	db := database.GetDB()
	data := email.CatalogStatsData{
		Period:    period,
		StartDate: startDate,
	}

	db.Model(&model.Order{}).
		Where("status = ? AND created_at >= ?", model.OrderStatusCompleted, startDate).
		Count(&data.OrderCount)

	db.Model(&model.Order{}).
		Where("status = ? AND created_at >= ?", model.OrderStatusCompleted, startDate).
		Select("COALESCE(SUM(total), 0)").
		Scan(&data.Revenue)

	db.Model(&model.DownloadLog{}).
		Where("downloaded_at >= ?", startDate).
		Count(&data.DownloadCount)

	db.Model(&model.User{}).
		Where("created_at >= ?", startDate).
		Count(&data.NewUserCount)

	type topPlan struct {
		Title   string
		Revenue float64
	}
	var top topPlan
	db.Table("order_items").
		Select("plans.title, SUM(order_items.unit_price * order_items.quantity) as revenue").
		Joins("JOIN plans ON plans.id = order_items.plan_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status = ? AND orders.created_at >= ?", model.OrderStatusCompleted, startDate).
		Group("plans.title").
		Order("revenue DESC").
		Limit(1).
		Scan(&top)
	data.TopPlanTitle = top.Title
	data.TopPlanRevenue = top.Revenue

	var admins []model.User
	if err := db.Where("role IN ?", []model.UserRole{model.RoleAdmin, model.RoleSuperAdmin}).
		Find(&admins).Error; err != nil {
		log.Printf("Error fetching admins for stats email: %v", err)
		return
	}

	for _, admin := range admins {
		if err := emailService.SendCatalogStatsEmail(admin.Email, data); err != nil {
			log.Printf("Error sending %s stats to %s: %v", period, admin.Email, err)
		}
	}
}
