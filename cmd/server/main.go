package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/lumo/internal/config"
	"github.com/example/lumo/internal/database"
	"github.com/example/lumo/internal/routes"
)

func main() {
	cfg := config.Load()

	db := database.Connect(cfg.DatabaseURL)
	defer database.Close(db)

	app := fiber.New(fiber.Config{
		AppName: "Lumo Marketplace Backend",
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigin,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
	}))

	if err := routes.Register(app, db, cfg); err != nil {
		log.Fatalf("[Server] register routes: %v", err)
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("[Server] shutting down")
		if err := app.Shutdown(); err != nil {
			log.Printf("[Server] shutdown: %v", err)
		}
	}()

	log.Printf("[Server] listening on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("[Server] listen: %v", err)
	}
}
