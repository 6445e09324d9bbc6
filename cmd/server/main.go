/*
main.go - Application entry point

PURPOSE:

	Initializes and starts the commission engine server. Handles
	configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
 1. Load .env (if present) and parse command-line flags
 2. Initialize SQLite store
 3. Create API handler with dependencies
 4. Configure HTTP router and start the calculation scheduler
 5. Start server with graceful shutdown

COMMAND-LINE FLAGS:

	-port       HTTP server port (default: 8080, env PORT)
	-db         SQLite database path (default: commissions.db, env DATABASE_PATH)
	            Use ":memory:" for in-memory database
	-scheduler  Enable the periodic calculation sweep (default: true)

GRACEFUL SHUTDOWN:

	On SIGINT/SIGTERM:
	1. Stop the scheduler
	2. Stop accepting new connections
	3. Wait for active requests to complete (30s timeout)
	4. Close database connection
	5. Exit

EXAMPLES:

	# Run with file database
	./server -db="./data/commissions.db"

	# Run with in-memory database
	./server -db=":memory:"

	# Run on different port
	./server -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/warp/commission-engine/api"
	"github.com/warp/commission-engine/store/sqlite"
)

func main() {
	// .env is optional; flags take precedence over environment.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envString("DATABASE_PATH", "commissions.db"), "SQLite database path")
	schedulerOn := flag.Bool("scheduler", true, "Enable periodic commission calculation")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize handler
	handler := api.NewHandler(store)

	// Create router
	router := api.NewRouter(handler)

	// Scheduler
	scheduler := api.NewCalculationScheduler(handler)
	scheduler.Enabled = *schedulerOn
	scheduler.Start()
	defer scheduler.Stop()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
