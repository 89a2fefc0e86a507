package routes

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/lumo/internal/config"
	"github.com/example/lumo/internal/handlers"
	"github.com/example/lumo/internal/middleware"
	"github.com/example/lumo/internal/services"
	"github.com/example/lumo/internal/storage"
)

func newStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageDriver {
	case config.StorageCloudinary:
		return storage.NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret), nil
	case config.StorageLocal:
		return storage.NewLocal(cfg.UploadDir, cfg.UploadBaseURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// Register mounts all API routes on the app.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) error {
	assets, err := newStorage(cfg)
	if err != nil {
		return err
	}
	if cfg.StorageDriver == config.StorageLocal {
		app.Static(cfg.UploadBaseURL, cfg.UploadDir)
	}

	var gateway services.PaymentGateway
	if cfg.OrderConfirmation == config.ConfirmationGateway {
		gateway = services.NewStripeService(cfg.StripeSecretKey)
	}

	auth := middleware.AuthMiddleware(cfg)

	userHandler := handlers.NewUserHandler(db)
	serviceHandler := handlers.NewServiceHandler(db, assets)
	orderHandler := handlers.NewOrderHandler(db, gateway, cfg.Currency)
	messageHandler := handlers.NewMessageHandler(db)
	dashboardHandler := handlers.NewDashboardHandler(db)

	api := app.Group("/api")

	users := api.Group("/users")
	users.Post("/sync-user", auth, userHandler.SyncUser)

	svc := api.Group("/services")
	svc.Get("/search-services", serviceHandler.SearchServices)
	svc.Get("/get-service-data/:serviceId", serviceHandler.GetServiceData)
	svc.Post("/add", auth, serviceHandler.AddService)
	svc.Put("/edit-service/:serviceId", auth, serviceHandler.EditService)
	svc.Get("/get-user-services", auth, serviceHandler.GetUserServices)
	svc.Get("/check-service-order/:serviceId", auth, serviceHandler.CheckServiceOrder)
	svc.Post("/add-review/:serviceId", auth, serviceHandler.AddReview)

	orders := api.Group("/orders")
	orders.Post("/create", auth, orderHandler.CreateOrder)
	orders.Get("/get-buyer-orders", auth, orderHandler.GetBuyerOrders)
	orders.Get("/get-seller-orders", auth, orderHandler.GetSellerOrders)
	orders.Get("/get-order/:orderId", auth, orderHandler.GetOrder)
	switch cfg.OrderConfirmation {
	case config.ConfirmationManual:
		orders.Put("/success/:orderId", auth, orderHandler.ConfirmOrder)
	case config.ConfirmationGateway:
		orders.Post("/webhook", middleware.StripeWebhookAuth(cfg.StripeWebhookSecret), orderHandler.StripeWebhook)
	}

	messages := api.Group("/messages", auth)
	messages.Post("/add-message/:orderId", messageHandler.AddMessage)
	messages.Get("/get-messages/:orderId", messageHandler.GetMessages)
	messages.Get("/unread-messages", messageHandler.GetUnreadMessages)
	messages.Put("/mark-as-read/:messageId", messageHandler.MarkAsRead)

	dashboard := api.Group("/dashboard", auth)
	dashboard.Get("/seller", dashboardHandler.GetSellerData)

	return nil
}
