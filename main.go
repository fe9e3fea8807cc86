package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"resort-backend/config"
	"resort-backend/controllers"
	"resort-backend/routes"
	"resort-backend/services"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("❌ Database connect failed: %v", err)
	}
	db := config.DB
	if db == nil {
		log.Fatal("❌ config.DB is nil after ConnectDatabase()")
	}
	log.Println("✅ Database connection established and migrations applied.")

	// Initialize services
	dispatcher := services.NewEmailDispatcher(64)
	catalogService := services.NewCatalogService(db)
	invoiceService := services.NewInvoiceService(db, catalogService, catalogService, catalogService, dispatcher)
	paymentService := services.NewPaymentService(invoiceService, dispatcher)
	availabilityService := services.NewAvailabilityService(catalogService, catalogService, invoiceService)
	cartService := services.NewCartService(catalogService, catalogService, catalogService)

	// Expired carts get swept in the background.
	sweepDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cartService.Sweep()
			case <-sweepDone:
				return
			}
		}
	}()

	// Initialize controllers
	bookingController := controllers.NewBookingController(invoiceService, paymentService)
	paymentController := controllers.NewPaymentController(paymentService)
	availabilityController := controllers.NewAvailabilityController(availabilityService)
	cartController := controllers.NewCartController(cartService)
	catalogController := controllers.NewCatalogController(catalogService)
	authController := controllers.NewAuthController(db)

	router := routes.SetupRouter(
		db,
		bookingController,
		paymentController,
		availabilityController,
		cartController,
		catalogController,
		authController,
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("⚠️  Shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	close(sweepDone)
	// Flush queued notification emails before exiting.
	dispatcher.Close()

	log.Println("✅ Server stopped gracefully")
}
