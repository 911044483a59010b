package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopflow-backend/config"
	"shopflow-backend/internal/delivery/http/middleware"
	v1 "shopflow-backend/internal/delivery/http/v1"
	"shopflow-backend/internal/repository/pgrepo"
	"shopflow-backend/internal/usecase"
	"shopflow-backend/pkg/cache"
	"shopflow-backend/pkg/logger"
	"shopflow-backend/pkg/storage"
	"shopflow-backend/pkg/utils"

	"github.com/NYTimes/gziphandler"
	"golang.org/x/time/rate"
)

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.JWTSecret)

	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	pgxPool, err := pgrepo.NewPgxPool(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	log.Info().Msg("Successfully connected to PostgreSQL via pgx")

	// Repositories
	orderRepo := pgrepo.NewOrderRepository(pgxPool)
	partnerRepo := pgrepo.NewPartnerRepository(pgxPool)
	returnRepo := pgrepo.NewReturnRepository(pgxPool)
	txManager := pgrepo.NewTransactionManager(pgxPool)

	// In-memory cache: default expiration 30m, cleanup every 60m
	memCache := cache.NewMemoryCache(30*time.Minute, 60*time.Minute)

	mux := http.NewServeMux()

	// --- Modules Initialization ---

	// Order Module
	orderUC := usecase.NewOrderUsecase(orderRepo)
	orderHandler := v1.NewOrderHandler(orderUC)
	adminOrderHandler := v1.NewAdminOrderHandler(orderUC)

	// Delivery Assignment Module
	deliveryUC := usecase.NewDeliveryUsecase(orderRepo, partnerRepo, txManager)
	deliveryHandler := v1.NewDeliveryHandler(deliveryUC)

	// Return Workflow Module
	returnUC := usecase.NewReturnUsecase(returnRepo, orderRepo, memCache)
	returnHandler := v1.NewReturnHandler(returnUC)
	adminReturnHandler := v1.NewAdminReturnHandler(returnUC)

	// Proof Storage Module (S3-compatible)
	proofStorage, err := storage.NewProofStorage(
		context.Background(),
		cfg.S3Endpoint,
		cfg.S3AccessKeyID,
		cfg.S3AccessKeySecret,
		cfg.S3BucketName,
		cfg.S3PublicURL,
		cfg.S3UploadTimeout,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize proof storage")
	}
	uploadHandler := v1.NewUploadHandler(proofStorage, cfg.MaxUploadSizeMB)

	adminMiddleware := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(middleware.AdminMiddleware(h))
	}

	// Orders
	mux.Handle("POST /api/v1/orders", middleware.OptionalAuthMiddleware(http.HandlerFunc(orderHandler.CreateOrder)))
	mux.Handle("GET /api/v1/orders", middleware.AuthMiddleware(http.HandlerFunc(orderHandler.GetMyOrders)))
	mux.Handle("GET /api/v1/orders/{id}", middleware.AuthMiddleware(http.HandlerFunc(orderHandler.GetOrder)))

	// Admin Orders
	mux.Handle("GET /api/v1/admin/orders", adminMiddleware(adminOrderHandler.ListOrders))
	mux.Handle("PUT /api/v1/admin/orders/{id}", adminMiddleware(adminOrderHandler.UpdateStatus))
	mux.Handle("PATCH /api/v1/admin/orders/{id}/payment-status", adminMiddleware(adminOrderHandler.UpdatePaymentStatus))

	// Delivery Assignment
	mux.Handle("POST /api/v1/admin/orders/{orderId}/assign", adminMiddleware(deliveryHandler.AssignOrder))
	mux.Handle("PATCH /api/v1/admin/orders/{orderId}/delivery-status", adminMiddleware(deliveryHandler.UpdateDeliveryStatus))
	mux.Handle("POST /api/v1/admin/orders/{orderId}/reassign", adminMiddleware(deliveryHandler.ReassignOrder))
	mux.Handle("GET /api/v1/admin/orders/available-partners", adminMiddleware(deliveryHandler.AvailablePartners))

	// Partner Management
	mux.Handle("POST /api/v1/admin/partners", adminMiddleware(deliveryHandler.CreatePartner))
	mux.Handle("GET /api/v1/admin/partners", adminMiddleware(deliveryHandler.ListPartners))
	mux.Handle("PATCH /api/v1/admin/partners/{id}/availability", adminMiddleware(deliveryHandler.SetPartnerAvailability))

	// Returns
	mux.Handle("POST /api/v1/returns", middleware.AuthMiddleware(http.HandlerFunc(returnHandler.CreateReturn)))
	mux.Handle("GET /api/v1/returns", middleware.AuthMiddleware(http.HandlerFunc(returnHandler.GetMyReturns)))
	mux.Handle("GET /api/v1/returns/{id}", middleware.AuthMiddleware(http.HandlerFunc(returnHandler.GetReturn)))
	mux.Handle("PUT /api/v1/returns/{id}", middleware.AuthMiddleware(http.HandlerFunc(returnHandler.UpdateReturn)))
	mux.Handle("POST /api/v1/returns/{id}/cancel", middleware.AuthMiddleware(http.HandlerFunc(returnHandler.CancelReturn)))

	// Admin Returns
	mux.Handle("GET /api/v1/returns/admin", adminMiddleware(adminReturnHandler.ListReturns))
	mux.Handle("GET /api/v1/returns/admin/stats", adminMiddleware(adminReturnHandler.Stats))
	mux.Handle("PUT /api/v1/returns/admin/{id}/status", adminMiddleware(adminReturnHandler.UpdateStatus))
	mux.Handle("PUT /api/v1/returns/admin/{id}/process-refund", adminMiddleware(adminReturnHandler.ProcessRefund))
	mux.Handle("PUT /api/v1/returns/admin/{id}/complete-refund", adminMiddleware(adminReturnHandler.CompleteRefund))

	// Uploads
	mux.Handle("POST /api/v1/admin/uploads/delivery-proof", adminMiddleware(uploadHandler.UploadDeliveryProof))

	// Health Check
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok", "db": "connected"}`))
	}
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler) // Root health check for load balancers

	addr := fmt.Sprintf(":%s", cfg.Port)

	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		rate.Limit(cfg.RateLimitRPS),
		cfg.RateLimitBurst,
		time.Minute,   // cleanup period
		3*time.Minute, // client TTL
	)

	// CORS, request logger, rate limit, gzip
	handler := middleware.NewCORSMiddleware(cfg)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	log.Info().Msgf("Server starting on %s", addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	rateLimiter.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	pgxPool.Close()
	log.Info().Msg("Server exited properly")
}
