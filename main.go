package main

import (
	"os"
	"time"

	"github.com/Njoroge/sokoni-api/config"
	"github.com/Njoroge/sokoni-api/controllers"
	"github.com/Njoroge/sokoni-api/initializers"
	"github.com/Njoroge/sokoni-api/middlewares"
	"github.com/Njoroge/sokoni-api/routes"
	"github.com/Njoroge/sokoni-api/services"
	"github.com/Njoroge/sokoni-api/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.MustLoad()

	if cfg.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db := initializers.ConnectToDB(cfg)
	initializers.SyncDatabase()

	mailer := utils.NewMailer(cfg)
	httpClient := resty.New().SetTimeout(30 * time.Second)

	orderService := services.NewOrderService(db, mailer)
	otpService := services.NewOTPService(db, mailer)
	paymentService := services.NewPaymentService(db, orderService, httpClient, services.PaymentConfig{
		BaseURL:       cfg.PaymentBaseURL,
		APIKey:        cfg.PaymentAPIKey,
		CallbackURL:   cfg.PaymentCallbackURL,
		WebhookSecret: cfg.PaymentWebhookSecret,
	})

	authmw := middlewares.NewAuth(db, cfg.JWTSecret)

	authController := controllers.NewAuthController(db, cfg, mailer)
	productController := controllers.NewProductController(db, cfg.S3Bucket)
	categoryController := controllers.NewCategoryController(db)
	cartController := controllers.NewCartController(db)
	wishlistController := controllers.NewWishlistController(db)
	orderController := controllers.NewOrderController(db, orderService, paymentService, otpService)
	ticketController := controllers.NewTicketController(db)
	notificationController := controllers.NewNotificationController(db)
	adminController := controllers.NewAdminController(db)
	shippingController := controllers.NewShippingController(httpClient, cfg.ExchangeRateURL)

	server := gin.Default()
	server.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:4200", cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.DefaultRoutes(server)
	routes.AuthRoutes(server, authController, authmw)
	routes.ProductRoutes(server, productController, categoryController, authmw)
	routes.CartRoutes(server, cartController, wishlistController, authmw)
	routes.OrderRoutes(server, orderController, shippingController, authmw)
	routes.TicketRoutes(server, ticketController, notificationController, authmw)
	routes.AdminRoutes(server, orderController, ticketController, adminController, authmw)

	log.Info().Str("port", cfg.Port).Msg("starting server")
	if err := server.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
