package main

import (
	"log"
	"time"

	config "github.com/codewithedgar/bothost/configs"
	"github.com/codewithedgar/bothost/database"
	"github.com/codewithedgar/bothost/handlers"
	"github.com/codewithedgar/bothost/jobs"
	"github.com/codewithedgar/bothost/notifications"
	"github.com/codewithedgar/bothost/provisioning"
	"github.com/codewithedgar/bothost/routes"
	"github.com/codewithedgar/bothost/services"
	ws "github.com/codewithedgar/bothost/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

func main() {
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("🔥 %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	database.SeedAdmin(db)

	var rdb *redis.Client
	if addr := config.Config("REDIS_ADDR"); addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.Config("REDIS_PASSWORD"),
		})
	}

	mailer := notifications.NewMailer()

	var provisioner provisioning.Provisioner
	if baseURL := config.Config("PROVISIONER_URL"); baseURL != "" {
		provisioner = provisioning.NewClient(
			baseURL,
			config.Config("PROVISIONER_API_KEY"),
			config.Config("PROVISIONER_CALLBACK_URL"),
		)
	}

	ledger := services.NewLedgerService(db)
	claims := services.NewClaimService(db)
	deployments := services.NewDeploymentService(db, provisioner)
	stats := services.NewStatsService(db, rdb)

	hub := ws.NewHub()
	go hub.Run()

	c := cron.New()
	c.AddFunc("*/15 * * * *", func() { jobs.AuditLedger(db) })
	c.AddFunc("*/5 * * * *", func() { jobs.RetryStuckDeployments(db, deployments) })
	c.Start()
	log.Println("✅ Cron jobs scheduled successfully.")

	app := fiber.New(fiber.Config{
		AppName:       "BotHost",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	authHandler := &handlers.AuthHandler{DB: db, Mailer: mailer}
	profileHandler := &handlers.ProfileHandler{DB: db, Claims: claims}
	botHandler := &handlers.BotHandler{DB: db, Deployments: deployments}
	provisionHandler := &handlers.ProvisionHandler{Deployments: deployments}
	communityHandler := &handlers.CommunityHandler{DB: db, Hub: hub}
	adminHandler := &handlers.AdminHandler{DB: db, Ledger: ledger, Stats: stats}

	routes.AuthRoutes(app, authHandler)
	routes.ProfileRoutes(app, profileHandler)
	routes.BotRoutes(app, botHandler, provisionHandler)
	routes.CommunityRoutes(app, communityHandler)
	routes.AdminRoutes(app, db, adminHandler)

	port := config.Config("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("✅ Server is running on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
