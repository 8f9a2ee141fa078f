package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"planforge_backend/internal/model"
	"planforge_backend/pkg/database"
	"planforge_backend/pkg/sequence"
	"planforge_backend/pkg/utils/image"
	"planforge_backend/pkg/utils/storage"
	"planforge_backend/pkg/utils/validation"
)

// ListOrders is the staff order overview with optional status filter.
func ListOrders(c *fiber.Ctx) error {
	page, perPage, offset := pagination(c)

	q := database.GetDB().Model(&model.Order{})
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch orders",
		})
	}

	var orders []model.Order
	err := q.Order("created_at DESC").
		Limit(perPage).Offset(offset).
		Preload("Items").
		Find(&orders).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch orders",
		})
	}

	return c.JSON(fiber.Map{
		"orders":   orders,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

type OrderStatusInput struct {
	Status model.OrderStatus `json:"status" validate:"required,oneof=PENDING PROCESSING COMPLETED CANCELLED"`
}

// UpdateOrderStatus applies a manual status change, rejecting illegal
// transitions (completed orders are immutable).
func UpdateOrderStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	input := new(OrderStatusInput)
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

	var order model.Order
	if err := database.GetDB().First(&order, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Order not found",
		})
	}

	if !order.Status.CanTransitionTo(input.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Illegal status transition",
			"from":  order.Status,
			"to":    input.Status,
		})
	}

	if err := database.GetDB().Model(&order).Update("status", input.Status).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update order status",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Order status updated",
	})
}

// UploadGalleryImage runs the image pipeline and creates a gallery record
// with an allocated gallery number.
func UploadGalleryImage(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No image provided",
		})
	}
	if err := validation.ValidateImage(file); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	buf, contentType, size, err := image.ProcessImage(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	url, err := storage.UploadBuffer(buf, contentType, "gallery", file.Filename)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not store image",
		})
	}

	tx := database.GetDB().Begin()

	galleryNumber, err := sequence.GenerateGalleryNumber(tx)
	if err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not allocate gallery number",
		})
	}

	price := 0.0
	if v := c.FormValue("price"); v != "" {
		if f, err := parsePrice(v); err == nil {
			price = f
		}
	}

	img := model.GalleryImage{
		GalleryNumber: galleryNumber,
		Title:         c.FormValue("title", file.Filename),
		Description:   c.FormValue("description"),
		URL:           url,
		Width:         size.X,
		Height:        size.Y,
		Price:         price,
		IsPublished:   false,
	}

	if err := tx.Create(&img).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save gallery image",
		})
	}

	if err := tx.Commit().Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save gallery image",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(img)
}

// UploadPlanImage attaches a render to a plan.
func UploadPlanImage(c *fiber.Ctx) error {
	planID, err := c.ParamsInt("plan_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid plan id",
		})
	}

	var plan model.Plan
	if err := database.GetDB().First(&plan, planID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Plan not found",
		})
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No image provided",
		})
	}
	if err := validation.ValidateImage(file); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	buf, contentType, _, err := image.ProcessImage(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	url, err := storage.UploadBuffer(buf, contentType, "plans", file.Filename)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not store image",
		})
	}

	var count int64
	database.GetDB().Model(&model.PlanImage{}).Where("plan_id = ?", plan.ID).Count(&count)

	img := model.PlanImage{
		PlanID:  plan.ID,
		URL:     url,
		IsCover: count == 0,
		Order:   int(count),
	}

	if err := database.GetDB().Create(&img).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save plan image",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(img)
}

// UploadPlanFile attaches a purchasable archive (PDF/DWG/ZIP) to a plan.
func UploadPlanFile(c *fiber.Ctx) error {
	planID, err := c.ParamsInt("plan_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid plan id",
		})
	}

	var plan model.Plan
	if err := database.GetDB().First(&plan, planID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Plan not found",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file provided",
		})
	}
	if err := validation.ValidatePlanFile(file); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	url, err := storage.UploadPlanFile(file, plan.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not store file",
		})
	}

	planFile := model.PlanFile{
		PlanID:    plan.ID,
		FileType:  fileTypeFromName(file.Filename),
		URL:       url,
		SizeBytes: file.Size,
	}

	if err := database.GetDB().Create(&planFile).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save file record",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(planFile)
}

type PublishImageInput struct {
	IsPublished bool `json:"is_published"`
}

func PublishGalleryImage(c *fiber.Ctx) error {
	id := c.Params("id")
	input := new(PublishImageInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	res := database.GetDB().Model(&model.GalleryImage{}).
		Where("id = ?", id).
		Update("is_published", input.IsPublished)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update image",
		})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Image not found",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Image updated",
	})
}

func DeleteGalleryImage(c *fiber.Ctx) error {
	id := c.Params("id")

	var img model.GalleryImage
	if err := database.GetDB().First(&img, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Image not found",
		})
	}

	if err := storage.DeleteObject(img.URL); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete stored image",
		})
	}

	if err := database.GetDB().Delete(&img).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete image",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Image deleted",
	})
}

type LicenseUpdateInput struct {
	IsActive     *bool      `json:"is_active"`
	MaxDownloads *int       `json:"max_downloads" validate:"omitempty,min=0"`
	ExpiresAt    *time.Time `json:"expires_at"`
}

// UpdateLicense lets staff revoke, extend or top up a license.
func UpdateLicense(c *fiber.Ctx) error {
	id := c.Params("id")
	input := new(LicenseUpdateInput)
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

	var lic model.License
	if err := database.GetDB().First(&lic, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "License not found",
		})
	}

	updates := map[string]interface{}{}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.MaxDownloads != nil {
		updates["max_downloads"] = *input.MaxDownloads
	}
	if input.ExpiresAt != nil {
		updates["expires_at"] = *input.ExpiresAt
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Nothing to update",
		})
	}

	if err := database.GetDB().Model(&lic).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update license",
		})
	}

	return c.JSON(fiber.Map{
		"message": "License updated",
	})
}

// AnalyticsOverview aggregates the numbers shown on the admin dashboard.
type AnalyticsOverview struct {
	TotalRevenue    float64          `json:"total_revenue"`
	OrdersByStatus  map[string]int64 `json:"orders_by_status"`
	TotalDownloads  int64            `json:"total_downloads"`
	NewUsers        int64            `json:"new_users"`
	PublishedPlans  int64            `json:"published_plans"`
	ActiveLicenses  int64            `json:"active_licenses"`
	TopPlans        []TopPlan        `json:"top_plans"`
	WindowStartDate time.Time        `json:"window_start_date"`
}

type TopPlan struct {
	ID         uint    `json:"id"`
	Title      string  `json:"title"`
	PlanNumber string  `json:"plan_number"`
	Sold       int64   `json:"sold"`
	Revenue    float64 `json:"revenue"`
}

func GetAnalytics(c *fiber.Ctx) error {
	days := c.QueryInt("days", 30)
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	db := database.GetDB()
	overview := AnalyticsOverview{
		OrdersByStatus:  map[string]int64{},
		WindowStartDate: since,
	}

	db.Model(&model.Order{}).
		Where("status = ? AND created_at > ?", model.OrderStatusCompleted, since).
		Select("COALESCE(SUM(total), 0)").
		Scan(&overview.TotalRevenue)

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	db.Model(&model.Order{}).
		Where("created_at > ?", since).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&counts)
	for _, sc := range counts {
		overview.OrdersByStatus[sc.Status] = sc.Count
	}

	db.Model(&model.DownloadLog{}).Where("downloaded_at > ?", since).Count(&overview.TotalDownloads)
	db.Model(&model.User{}).Where("created_at > ?", since).Count(&overview.NewUsers)
	db.Model(&model.Plan{}).Where("status = ? AND is_active = ?", model.PlanStatusPublished, true).
		Count(&overview.PublishedPlans)
	db.Model(&model.License{}).Where("is_active = ?", true).Count(&overview.ActiveLicenses)

	db.Table("order_items").
		Select("plans.id, plans.title, plans.plan_number, SUM(order_items.quantity) as sold, SUM(order_items.unit_price * order_items.quantity) as revenue").
		Joins("JOIN plans ON plans.id = order_items.plan_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status = ? AND orders.created_at > ?", model.OrderStatusCompleted, since).
		Group("plans.id").
		Order("revenue DESC").
		Limit(5).
		Scan(&overview.TopPlans)

	return c.JSON(overview)
}
