// cmd/api/main.go
// Main entry point for the matching API
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/rentwise/rentwise-backend/internal/auth"
	"github.com/rentwise/rentwise-backend/internal/common/database"
	"github.com/rentwise/rentwise-backend/internal/config"
	"github.com/rentwise/rentwise-backend/internal/matching"
)

var startTime = time.Now()

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("========================================")
	log.Println("🚀 Starting Rentwise Matching API")
	log.Println("========================================")

	// 1. Load environment variables
	log.Println("📁 Step 1: Loading .env file...")
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: No .env file found (%v), using environment variables", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// 2. Load and validate configuration
	log.Println("\n📋 Step 2: Loading configuration...")
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ Configuration validation failed:", err)
	}
	log.Println("✅ Configuration is valid")

	ctx := context.Background()

	// 3. Connect to PostgreSQL
	log.Println("\n🗄️  Step 3: Connecting to PostgreSQL...")
	db, err := database.NewPostgresDBFromURL(ctx, cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
		MaxLifetime:  cfg.DBConnLifetime,
	})
	if err != nil {
		log.Fatal("❌ Failed to connect to PostgreSQL:", err)
	}
	defer db.Close()
	log.Println("✅ Connected to PostgreSQL successfully")

	// 4. Run database migrations
	if cfg.RunMigrations {
		log.Println("\n🔨 Step 4: Running database migrations...")
		if err := runMigrations(ctx, db); err != nil {
			log.Fatal("❌ Failed to run migrations:", err)
		}
		log.Println("✅ Database migrations completed")
	} else {
		log.Println("\n🔨 Step 4: Skipping database migrations")
	}

	// 5. Connect to Redis (optional)
	log.Println("\n📮 Step 5: Connecting to Redis...")
	var redisClient *redis.Client
	if cfg.EnableMatchCache && cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClientFromURL(ctx, cfg.RedisURL, database.RedisPoolConfig{
			PoolSize:  cfg.RedisPoolSize,
			OpTimeout: cfg.RedisTimeout,
		})
		if err != nil {
			log.Printf("⚠️  %v, continuing without match cache", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Println("✅ Connected to Redis successfully")
		}
	} else {
		log.Println("⚠️  Match cache disabled, skipping Redis connection")
	}

	// 6. Media URLs
	log.Println("\n🖼️  Step 6: Initializing media URL provider...")
	var media matching.MediaURLProvider
	if cfg.UseS3 {
		sess, err := matching.NewS3Session(cfg.AWSRegion)
		if err != nil {
			log.Printf("⚠️  Failed to init S3 (%v), serving media locally", err)
			media = matching.NewLocalMediaURLProvider(cfg.BaseURL)
		} else {
			media = matching.NewS3MediaURLProvider(sess, cfg.S3BucketName, cfg.AWSRegion, cfg.PresignExpiry)
			log.Printf("   ✅ Presigning media from s3://%s (expiry %s)", cfg.S3BucketName, cfg.PresignExpiry)
		}
	} else {
		media = matching.NewLocalMediaURLProvider(cfg.BaseURL)
		log.Println("   ✅ Using local media URLs")
	}

	// 7. Initialize matching
	log.Println("\n🏠 Step 7: Initializing matching module...")
	weights := matching.DefaultWeights()
	if cfg.WeightsFile != "" {
		weights, err = matching.LoadWeightsFromFile(cfg.WeightsFile)
		if err != nil {
			log.Fatal("❌ Failed to load weights:", err)
		}
		log.Printf("   ✅ Loaded category weights from %s (total %.0f)", cfg.WeightsFile, weights.Total())
	}

	var cache matching.MatchCache
	if redisClient != nil {
		cache = matching.NewRedisMatchCache(redisClient, cfg.MatchCacheTTL)
		log.Printf("   ✅ Match cache enabled (ttl %s)", cfg.MatchCacheTTL)
	}

	matchingService := matching.NewService(
		matching.NewPostgresPreferencesRepository(db),
		matching.NewPostgresPropertyRepository(db),
		media,
		cache,
		matching.Config{
			Weights:      weights,
			DefaultLimit: cfg.DefaultMatchLimit,
		},
	)
	matchingHandler := matching.NewHandler(matchingService)
	authMiddleware := auth.NewMiddleware(cfg.JWTSecret)
	log.Println("✅ Matching module initialized")

	// 8. Setup routes
	log.Println("\n🛣️  Step 8: Setting up routes...")
	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	matching.RegisterRoutes(router, matchingHandler, authMiddleware)
	router.Use(loggingMiddleware)
	log.Println("   ✅ Matching routes registered")

	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(router)

	// 9. Create and start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		log.Println("\n========================================")
		log.Printf("🚀 Server starting on http://localhost%s", srv.Addr)
		log.Printf("🌍 Environment: %s", cfg.Environment)
		log.Println("========================================")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("❌ Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("\n🛑 Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}
	log.Println("✅ Server exited")
}

// healthCheck returns server health status
func healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// loggingMiddleware logs all requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("→ %s %s from %s", r.Method, r.RequestURI, r.RemoteAddr)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		log.Printf("← %s %s [%d] %v", r.Method, r.RequestURI, wrapped.statusCode, time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
