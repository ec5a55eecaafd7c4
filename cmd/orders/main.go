package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/joao-fontenele/orderdesk/internal/admin"
	"github.com/joao-fontenele/orderdesk/internal/auth"
	"github.com/joao-fontenele/orderdesk/internal/catalog"
	"github.com/joao-fontenele/orderdesk/internal/config"
	"github.com/joao-fontenele/orderdesk/internal/document"
	"github.com/joao-fontenele/orderdesk/internal/fulfillment"
	"github.com/joao-fontenele/orderdesk/internal/messaging"
	"github.com/joao-fontenele/orderdesk/internal/notify"
	"github.com/joao-fontenele/orderdesk/internal/orders"
	"github.com/joao-fontenele/orderdesk/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load(".env", "3000")
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Require("POSTGRES_URL", "ADMIN_PASSWORD_HASH", "ADMIN_EMAIL"); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	svc := telemetry.ServiceInfo{Name: "orders", Version: "0.1.0"}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, svc, cfg.OTLPEndpoint)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(svc)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	instruments, err := telemetry.NewInstruments("orderdesk/orders")
	if err != nil {
		logger.Error("failed to create instruments", "error", err)
		os.Exit(1)
	}

	db, err := telemetry.OpenDB(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	cat := catalog.Default()
	if cfg.CatalogFile != "" {
		cat, err = catalog.LoadFile(cfg.CatalogFile)
		if err != nil {
			logger.Error("failed to load catalog", "error", err, "path", cfg.CatalogFile)
			os.Exit(1)
		}
	}

	authn, err := auth.NewSharedCredential(cfg.AdminUser, cfg.AdminPasswordHash)
	if err != nil {
		logger.Error("invalid admin credentials", "error", err)
		os.Exit(1)
	}

	repo := orders.NewOrderRepository(db)
	service := orders.NewService(cat, repo, instruments, logger)
	renderer := document.NewRenderer(cfg.FontDir)

	var dispatcher orders.Dispatcher
	if len(cfg.KafkaBrokers) > 0 {
		producer := messaging.NewProducer(cfg.KafkaBrokers, cfg.OrderTopic)
		defer func() { _ = producer.Close() }()
		dispatcher = fulfillment.NewQueue(producer, instruments, logger)
	} else {
		notifier, err := notify.FromConfig(cfg.Mail, logger)
		if err != nil {
			logger.Error("failed to create notifier", "error", err)
			os.Exit(1)
		}
		dispatcher = fulfillment.NewInline(renderer, notifier, cfg.AdminEmail, instruments, logger)
	}

	handler := orders.NewHandler(service, dispatcher, logger)
	adminHandler := admin.NewHandler(repo, renderer, logger)

	mux := http.NewServeMux()
	route := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, telemetry.WithHTTPRoute(h))
	}
	adminRoute := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, telemetry.WithHTTPRoute(auth.RequireAdmin(authn, logger, h)))
	}

	route("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	route("GET /catalog", handler.HandleCatalog)
	route("POST /order", handler.HandleCreate)
	route("POST /order/preview", handler.HandlePreview)

	adminRoute("GET /admin/orders", adminHandler.HandleListOrders)
	adminRoute("GET /admin/orders/{id}", adminHandler.HandleGetOrder)
	adminRoute("GET /admin/orders/{id}/document.pdf", adminHandler.HandleDocument)
	adminRoute("GET /admin/stats", adminHandler.HandleStats)
	adminRoute("GET /admin/export.csv", adminHandler.HandleExport)
	adminRoute("POST /admin/reset", adminHandler.HandleReset)

	mux.Handle("GET /metrics", metricsHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      telemetry.HTTPHandler(mux, "orders"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("starting orders service", "port", cfg.Port, "products", len(cat.Products()), "queued", len(cfg.KafkaBrokers) > 0)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
