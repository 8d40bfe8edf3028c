package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/soorihai2/ssksilks-sub000/internal/config"
	"github.com/soorihai2/ssksilks-sub000/internal/handlers"
	"github.com/soorihai2/ssksilks-sub000/internal/middleware"
	"github.com/soorihai2/ssksilks-sub000/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	razorpay := services.NewRazorpayService(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	mailer := services.NewMailerService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, cfg.StoreName)
	reconciler := services.NewReconcilerService(db)

	customerHandler := handlers.NewCustomerHandler(db, cfg, reconciler)
	profileHandler := handlers.NewProfileHandler(db)
	resetHandler := handlers.NewPasswordResetHandler(db, mailer)
	orderHandler := handlers.NewOrderHandler(db, razorpay, mailer)
	posHandler := handlers.NewPOSHandler(db)
	catalogHandler := handlers.NewCatalogHandler(db)
	productHandler := handlers.NewProductHandler(db)
	adminHandler := handlers.NewAdminHandler(db)

	api := app.Group("/api")

	auth := middleware.AuthMiddleware(cfg)
	optionalAuth := middleware.OptionalAuthMiddleware(cfg)
	admin := middleware.RequireAdmin()

	// Customer accounts
	customers := api.Group("/customers")
	customers.Post("/register", customerHandler.Register)
	customers.Post("/login", customerHandler.Login)
	customers.Get("/phone/:phone", customerHandler.LookupByPhone)
	customers.Post("/password-reset-request", resetHandler.RequestReset)
	customers.Post("/password-reset", resetHandler.ResetPassword)

	customers.Get("/profile", auth, profileHandler.GetProfile)
	customers.Patch("/profile", auth, profileHandler.UpdateProfile)
	customers.Post("/change-password", auth, profileHandler.ChangePassword)
	customers.Get("/orders", auth, profileHandler.ListMyOrders)
	customers.Get("/addresses", auth, profileHandler.ListAddresses)
	customers.Post("/addresses", auth, profileHandler.CreateAddress)
	customers.Put("/addresses/:id", auth, profileHandler.UpdateAddress)
	customers.Delete("/addresses/:id", auth, profileHandler.DeleteAddress)
	customers.Patch("/addresses/:id/default", auth, profileHandler.SetDefaultAddress)

	// Checkout and payment verification. Order creation accepts guests, so
	// auth is optional there.
	orders := api.Group("/orders")
	orders.Post("/", optionalAuth, orderHandler.CreateOrder)
	orders.Post("/verify", orderHandler.VerifyPayment)
	orders.Post("/failed", orderHandler.ReportFailure)
	orders.Post("/pos", auth, admin, posHandler.Checkout)
	orders.Get("/", auth, admin, orderHandler.ListOrders)
	orders.Get("/:id", auth, admin, orderHandler.GetOrder)
	orders.Put("/:id", auth, admin, orderHandler.UpdateOrder)

	// Catalog
	categories := api.Group("/categories")
	categories.Get("/", catalogHandler.ListCategories)
	categories.Get("/:id", catalogHandler.GetCategory)
	categories.Post("/", auth, admin, catalogHandler.CreateCategory)
	categories.Put("/:id", auth, admin, catalogHandler.UpdateCategory)
	categories.Delete("/:id", auth, admin, catalogHandler.DeleteCategory)

	products := api.Group("/products")
	products.Get("/", productHandler.ListProducts)
	products.Get("/:id", productHandler.GetProduct)
	products.Post("/", auth, admin, productHandler.CreateProduct)
	products.Put("/:id", auth, admin, productHandler.UpdateProduct)
	products.Delete("/:id", auth, admin, productHandler.DeleteProduct)

	// Back office
	api.Get("/admin/dashboard", auth, admin, adminHandler.DashboardStats)
	api.Get("/customers", auth, admin, adminHandler.ListCustomers)
}
