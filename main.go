package main

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"aromi/config"
	"aromi/handlers/api"
	"aromi/handlers/web"
	"aromi/middleware"
	"aromi/storage"
	"aromi/utils"
)

// Helper function to determine if request is an API request
func isAPIRequest(c *fiber.Ctx) bool {
	if c == nil {
		return false
	}

	if c.Get("Accept") == "application/json" {
		return true
	}

	path := c.Path()
	return len(path) >= 4 && path[:4] == "/api"
}

func main() {
	utils.Log.Info("Initializing AroMi...")

	// Load configuration
	cfg, err := config.LoadConfig("config.toml")
	if err != nil {
		utils.Log.Error("Failed to load config: %v", err)
		return
	}

	// Initialize i18n system
	if err := utils.InitI18n(); err != nil {
		utils.Log.Error("Failed to initialize i18n: %v", err)
	}

	// Conversation log
	db, err := storage.InitDB(cfg.Storage.DataDir)
	if err != nil {
		utils.Log.Error("Failed to open conversation database: %v", err)
		return
	}
	defer db.Close()
	conversations := storage.NewConversationStorage(db)

	// Initialize template engine with custom functions
	engine := html.New("./templates", ".html")
	engine.AddFunc("t", func(messageID string) string {
		return utils.T(utils.Localizer, messageID)
	})
	engine.AddFunc("tWithData", func(messageID string, data map[string]interface{}) string {
		return utils.TWithData(utils.Localizer, messageID, data)
	})
	engine.AddFunc("formatDate", func(t time.Time) string {
		return t.Format("Jan 02, 2006 15:04")
	})
	engine.Reload(true)

	// Initialize Fiber with template engine
	app := fiber.New(fiber.Config{
		Views:       engine,
		ViewsLayout: "layouts/main", // Default layout
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError

			if appErr, ok := err.(*utils.AppError); ok {
				code = appErr.Code
				utils.Log.Error("Application error: %v", appErr)
			} else if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			if isAPIRequest(c) {
				return c.Status(code).JSON(fiber.Map{
					"error": err.Error(),
				})
			}

			return c.Status(code).Render("error", fiber.Map{
				"Error": err.Error(),
				"Code":  code,
			})
		},
	})

	// Add global middleware
	app.Use(recover.New())            // Recover from panics
	app.Use(logger.New())             // Request logging
	app.Use(compress.New())           // Response compression
	app.Use(helmet.New(helmet.Config{ // Security headers
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "SAMEORIGIN",
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; connect-src 'self'",
	}))
	app.Use(cors.New()) // The chat API serves the demo dashboard only

	// Add locale middleware
	app.Use(middleware.LocaleMiddleware())

	// Add rate limiting (100 requests per minute per IP)
	app.Use(middleware.RateLimiter(100, time.Minute))

	// Issue a CSRF token to every browser so the login form posts
	// validate against it
	app.Use(func(c *fiber.Ctx) error {
		if token := c.Cookies("csrf_token"); token != "" {
			c.Locals("csrf", token)
			return c.Next()
		}
		middleware.GenerateCSRFToken(c)
		return c.Next()
	})

	// Serve static files
	app.Static("/assets", "./assets", fiber.Static{
		Compress:      true,
		CacheDuration: 24 * time.Hour,
	})

	// Initialize handlers
	authHandler := web.NewAuthHandler(cfg)
	notificationHandler := api.NewNotificationHandler()
	chatHandler := api.NewChatHandler(
		api.NewGroqClient(cfg.AI),
		cfg.AI.APIKey != "",
		cfg.AI.MaxHistory,
		conversations,
		notificationHandler,
	)
	i18nHandler := api.NewI18nHandler()

	if cfg.AI.APIKey == "" {
		utils.Log.Warn("No AI API key configured; chat will answer with a stub reply")
	}

	// Login page routes
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/login")
	})
	app.Get("/login", authHandler.ShowLogin)

	loginActions := app.Group("/login", middleware.CSRFProtection())
	loginActions.Post("", authHandler.HandleLogin)
	loginActions.Post("/theme", authHandler.HandleToggleTheme)
	loginActions.Post("/password", authHandler.HandleTogglePassword)
	loginActions.Post("/quick", authHandler.HandleQuickLogin)

	app.Get("/dashboard", authHandler.ShowDashboard)

	// API routes
	apiRoutes := app.Group("/api")
	{
		apiRoutes.Post("/chat", chatHandler.HandleChat)
		apiRoutes.Get("/notifications", notificationHandler.HandleSSE)
		apiRoutes.Get("/i18n/:lang", i18nHandler.GetTranslations)
	}

	// WebSocket notifications
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/notifications", websocket.New(notificationHandler.HandleWebSocket))

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "AroMi AI Agent Backend",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	// 404 Handler for undefined routes
	app.Use(func(c *fiber.Ctx) error {
		localizer := c.Locals("localizer").(*i18n.Localizer)

		if isAPIRequest(c) {
			return c.Status(404).JSON(fiber.Map{
				"error": utils.T(localizer, "error_404"),
			})
		}
		return c.Status(404).Render("error", fiber.Map{
			"Error": utils.T(localizer, "error_404"),
			"Code":  404,
		})
	})

	// Start server
	if cfg.SSL.Enabled {
		utils.Log.Info("Starting HTTPS server on port %d...", cfg.SSL.Port)
		if err := app.ListenTLS(fmt.Sprintf(":%d", cfg.SSL.Port), cfg.SSL.CertFile, cfg.SSL.KeyFile); err != nil {
			utils.Log.Error("Error starting server: %v", err)
		}
		return
	}

	utils.Log.Info("Starting server on port %d...", cfg.Server.Port)
	if err := app.Listen(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		utils.Log.Error("Error starting server: %v", err)
	}
}
