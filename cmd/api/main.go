package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"planforge_backend/internal/controller"
	"planforge_backend/internal/middleware"
	"planforge_backend/internal/model"
	"planforge_backend/pkg/config"
	"planforge_backend/pkg/cron"
	"planforge_backend/pkg/database"
	"planforge_backend/pkg/email"
	"planforge_backend/pkg/seed"
	"planforge_backend/pkg/utils/jwt"
	"planforge_backend/pkg/utils/storage"
)

func setupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Auth Routes
	auth := api.Group("/auth")
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/refresh", controller.Refresh)
	auth.Post("/logout", middleware.AuthMiddleware(), controller.Logout)
	auth.Get("/verify", middleware.AuthMiddleware(), controller.Verify)

	// Public Catalog Routes
	api.Get("/categories", controller.ListCategories)
	api.Get("/plans", controller.ListPlans)
	api.Get("/plans/:ref", middleware.OptionalAuth(), controller.GetPlan)
	api.Get("/projects", controller.ListProjects)
	api.Get("/projects/:ref", controller.GetProject)
	api.Get("/visualizations", controller.ListVisualizations)
	api.Get("/gallery/images", controller.ListGalleryImages)
	api.Get("/gallery/images/:id", middleware.OptionalAuth(), controller.GetGalleryImage)

	// Pricing calculator
	api.Post("/pricing/calculate", controller.CalculatePricing)
	api.Post("/pricing/recommend", controller.RecommendPlanByBudget)

	// Checkout + orders
	api.Post("/checkout", middleware.AuthMiddleware(), controller.CreateCheckoutSession)
	api.Get("/orders", middleware.AuthMiddleware(), controller.ListMyOrders)
	api.Get("/orders/:id", middleware.AuthMiddleware(), controller.GetOrder)
	api.Get("/licenses", middleware.AuthMiddleware(), controller.ListMyLicenses)

	// Downloads (license gated)
	download := api.Group("/download", middleware.AuthMiddleware())
	download.Get("/plans/:plan_id/access", controller.GetPlanAccess)
	download.Get("/plans/:plan_id/files/:file_id", controller.DownloadPlanFile)
	download.Get("/images/:image_id", controller.DownloadGalleryImage)

	// Profile
	settings := api.Group("/settings", middleware.AuthMiddleware())
	settings.Get("/profile", controller.Verify)
	settings.Put("/profile", controller.UpdateProfile)
	settings.Put("/password", controller.ChangePassword)

	// Stripe webhook
	api.Post("/webhook", controller.HandleStripeWebhook)

	// Admin routes
	admin := api.Group("/admin", middleware.AuthMiddleware(), middleware.RequireAdmin())
	admin.Get("/orders", controller.ListOrders)
	admin.Put("/orders/:id/status", controller.UpdateOrderStatus)
	admin.Get("/analytics", controller.GetAnalytics)

	admin.Post("/plans", controller.CreatePlan)
	admin.Put("/plans/:id", controller.UpdatePlan)
	admin.Put("/plans/:id/status", controller.UpdatePlanStatus)
	admin.Delete("/plans/:id", controller.DeletePlan)
	admin.Post("/plans/:plan_id/images", controller.UploadPlanImage)
	admin.Post("/plans/:plan_id/files", controller.UploadPlanFile)

	admin.Post("/projects", controller.CreateProject)
	admin.Put("/projects/:id/status", controller.UpdateProjectStatus)

	admin.Post("/images", controller.UploadGalleryImage)
	admin.Put("/images/:id/publish", controller.PublishGalleryImage)
	admin.Delete("/images/:id", controller.DeleteGalleryImage)

	admin.Put("/licenses/:id", controller.UpdateLicense)
}

func main() {
	cfg := config.Load()

	if cfg.JWT.Secret == "" {
		log.Fatal("JWT_SECRET is not set in .env")
	}
	jwt.Init(cfg.JWT.Secret)

	if cfg.Email.ResendAPIKey != "" {
		if err := email.InitEmailService(cfg.Email.ResendAPIKey); err != nil {
			log.Fatal("Could not initialize email service:", err)
		}
	} else {
		log.Println("RESEND_API_KEY not set, email notifications disabled")
	}

	if err := storage.InitStorage(cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
		log.Fatal("Could not initialize storage:", err)
	}

	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is not set in .env")
	}

	database.InitDB(cfg.Database.URL)
	err := database.MigrateDatabase(
		&model.User{},
		&model.UserProfile{},
		&model.Category{},
		&model.Plan{},
		&model.PlanFile{},
		&model.PlanImage{},
		&model.PlanTag{},
		&model.Project{},
		&model.ProjectImage{},
		&model.Visualization{},
		&model.GalleryImage{},
		&model.Order{},
		&model.OrderItem{},
		&model.License{},
		&model.DownloadLog{},
		&model.PlanSequence{},
		&model.ProjectSequence{},
		&model.VisualizationSequence{},
		&model.GallerySequence{},
		&model.PricingRate{},
		&model.RegionRate{},
	)
	if err != nil {
		log.Printf("Migration warning: %v", err)
	}

	seed.SeedCategories(database.GetDB())
	seed.SeedPricingRates(database.GetDB())
	seed.SeedDemoPlans(database.GetDB())
	seed.SeedAdminUser(database.GetDB())

	cron.InitLicenseExpiryCron()
	cron.InitCatalogStatsCron(email.GlobalEmailService)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New())

	setupRoutes(app)

	log.Printf("Server is running on port %s", cfg.Server.Port)
	log.Fatal(app.Listen(":" + cfg.Server.Port))
}
