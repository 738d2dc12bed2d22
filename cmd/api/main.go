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
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/tiendahub/orders-backend/internal/auth"
	"github.com/tiendahub/orders-backend/internal/cart"
	"github.com/tiendahub/orders-backend/internal/catalog"
	"github.com/tiendahub/orders-backend/internal/config"
	"github.com/tiendahub/orders-backend/internal/messaging"
	"github.com/tiendahub/orders-backend/internal/orders"
	"github.com/tiendahub/orders-backend/internal/receipt"
	"github.com/tiendahub/orders-backend/internal/telemetry"
)

const (
	serviceName    = "orders-api"
	serviceVersion = "0.1.0"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, serviceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(serviceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	if err := runtime.Start(); err != nil {
		logger.Error("failed to start runtime instrumentation", "error", err)
		os.Exit(1)
	}

	db, err := telemetry.OpenDB("postgres", cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	var producer *messaging.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = messaging.NewProducer(cfg.KafkaBrokers, cfg.OrderTopic)
		defer func() { _ = producer.Close() }()
	}

	catalogRepo := catalog.NewRepository(db)
	ordersRepo := orders.NewRepository(db)
	builder := cart.NewBuilder(catalogRepo)

	renderer := receipt.NewPDF(cfg.ReceiptDir, cfg.ReceiptPublicPrefix)
	receipts := receipt.NewService(ordersRepo, renderer, logger)

	ordersHandler := orders.NewHandler(builder, ordersRepo, producer, receipts, logger)
	catalogHandler := catalog.NewHandler(catalogRepo, logger)

	mux := http.NewServeMux()
	mux.Handle("POST /orders", auth.Middleware(telemetry.WithHTTPRoute(ordersHandler.HandleCreate)))
	mux.Handle("GET /orders", auth.Middleware(telemetry.WithHTTPRoute(ordersHandler.HandleListMine)))
	mux.Handle("GET /orders/{id}", auth.Middleware(telemetry.WithHTTPRoute(ordersHandler.HandleGet)))
	mux.Handle("PATCH /orders/{id}/status", auth.Middleware(telemetry.WithHTTPRoute(ordersHandler.HandleUpdateStatus)))
	mux.Handle("POST /orders/{id}/receipt", auth.Middleware(telemetry.WithHTTPRoute(ordersHandler.HandleGenerateReceipt)))
	mux.Handle("GET /admin/orders", auth.Middleware(telemetry.WithHTTPRoute(ordersHandler.HandleListAll)))
	mux.HandleFunc("GET /products", telemetry.WithHTTPRoute(catalogHandler.HandleListProducts))
	mux.HandleFunc("GET /products/{id}", telemetry.WithHTTPRoute(catalogHandler.HandleGetProduct))
	mux.Handle("GET /metrics", metricsHandler)

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: otelhttp.NewHandler(mux, serviceName,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("starting orders api", "port", cfg.Port, "kafka", len(cfg.KafkaBrokers) > 0)
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
