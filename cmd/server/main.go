package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-gate-entry/internal/blob"
	"github.com/iliyamo/campus-gate-entry/internal/config"
	"github.com/iliyamo/campus-gate-entry/internal/database"
	"github.com/iliyamo/campus-gate-entry/internal/export"
	"github.com/iliyamo/campus-gate-entry/internal/handler"
	"github.com/iliyamo/campus-gate-entry/internal/middleware"
	"github.com/iliyamo/campus-gate-entry/internal/queue"
	"github.com/iliyamo/campus-gate-entry/internal/repository"
	"github.com/iliyamo/campus-gate-entry/internal/router"
	"github.com/iliyamo/campus-gate-entry/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env wins
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()

	visitors := repository.NewVisitorRepo(db)
	buses := repository.NewBusRepo(db)
	authorities := repository.NewAuthorityRepo(db)
	notifications := repository.NewNotificationRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	webhook := export.NewWebhookClient(cfg.VisitorWebhookURL, cfg.BusWebhookURL)
	sheets := export.NewSheetsClient(cfg.SheetsAPIKey, cfg.VisitorsSheetID, cfg.BusesSheetID)
	forward := export.NewForwarder(webhook, sheets)

	var photos service.PhotoStore
	if bc := blob.New(cfg.BlobBaseURL, cfg.BlobBucket, cfg.BlobToken); bc != nil {
		photos = bc
	}

	admission := service.NewAdmissionService(visitors, notifications, authorities, photos, forward)
	vehicles := service.NewVehicleService(buses, forward)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	visitorH := handler.NewVisitorHandler(admission, visitors)
	vehicleH := handler.NewVehicleHandler(vehicles, buses)
	approvalH := handler.NewApprovalHandler(admission, visitors)
	notificationH := handler.NewNotificationHandler(notifications)
	authorityH := handler.NewAuthorityHandler(authorities)
	reportH := handler.NewReportHandler(visitors, buses)
	dashboardH := handler.NewDashboardHandler(visitors, buses, authorities)
	adminH := handler.NewAdminHandler(cfg, users, tokens, sheets)

	rateMW := middleware.NewRateLimiter(config.LoadRateLimitConfig(), rdb)
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	go func() {
		if err := queue.StartGateConsumer(); err != nil {
			log.Printf("gate-consumer: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterGate(e, cfg.JWTSecret, visitorH, vehicleH, authorityH, reportH, dashboardH, rateMW, cacheMW)
	router.RegisterApprovals(e, cfg.JWTSecret, approvalH, notificationH, rateMW)
	router.RegisterAdmin(e, cfg.JWTSecret, adminH, authorityH, rateMW)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
