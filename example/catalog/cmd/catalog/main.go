package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/halcyon-labs/dispatch-go/example/catalog/internal/catalog"
	"github.com/halcyon-labs/dispatch-go/example/catalog/internal/config"
	"github.com/halcyon-labs/dispatch-go/example/catalog/internal/server"
	"github.com/halcyon-labs/dispatch-go/example/catalog/internal/telemetry"

	"go.opentelemetry.io/otel"
)

func main() {
	ctx := context.Background()

	// 1. Setup OpenTelemetry (Tracing + Metrics)
	shutdownTracing, shutdownMetrics, err := telemetry.Setup(ctx)
	if err != nil {
		log.Fatalf("Failed to setup OTel: %v", err)
	}
	defer func() {
		shutdownTracing(ctx)
		shutdownMetrics(ctx)
	}()

	// 2. Start Prometheus Metrics Server
	metricsServer := &http.Server{Addr: config.MetricsPort}
	go func() {
		log.Printf("Starting Prometheus metrics server on %s", config.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Metrics server failed: %v", err)
		}
	}()

	// 3. Start the local catalog API the client dispatches against
	apiServer := server.New(config.APIPort)
	go func() {
		log.Printf("Starting catalog API on %s", config.APIPort)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Catalog API failed: %v", err)
		}
	}()

	// 4. Build the Dispatch API Client
	client := catalog.New()

	// 5. Perform Catalog Operations in a Loop
	// This generates continuous metrics for demonstration
	tracer := otel.Tracer("example-app")

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(config.OperationInterval) * time.Second)
	defer ticker.Stop()

	fmt.Println("✅ Catalog example app started!")
	fmt.Println("📊 Prometheus metrics: http://localhost:2112/metrics")
	fmt.Println("🔍 Grafana UI: http://localhost:3000")
	fmt.Println("Press Ctrl+C to stop...")

	for {
		select {
		case <-ticker.C:
			ctx, span := tracer.Start(ctx, "catalog-operations")

			// List the catalog using the typed decode path
			if err := client.ListProducts(ctx); err != nil {
				log.Printf("Failed to list products: %v", err)
			}

			// Fetch a single product using the typed decode path
			if _, err := client.GetProduct(ctx, 1); err != nil {
				log.Printf("Failed to get product: %v", err)
			}

			// Place an order asynchronously; the outcome arrives on the
			// client's completion scheduler
			client.PlaceOrderAsync(ctx)

			// Fetch the status endpoint as a generic object
			if err := client.CheckStatus(ctx); err != nil {
				log.Printf("Failed to check status: %v", err)
			}

			// Query both payload shapes the search endpoint serves
			if err := client.Search(ctx, "widget"); err != nil {
				log.Printf("Failed to search: %v", err)
			}
			if err := client.Search(ctx, ""); err != nil {
				log.Printf("Failed to fetch search summary: %v", err)
			}

			span.End()
			log.Println("✓ Catalog operations completed")

		case <-sigChan:
			fmt.Println("\n🛑 Shutting down gracefully...")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := apiServer.Shutdown(ctx); err != nil {
				log.Printf("Catalog API shutdown error: %v", err)
			}
			if err := metricsServer.Shutdown(ctx); err != nil {
				log.Printf("Metrics server shutdown error: %v", err)
			}
			return
		}
	}
}
