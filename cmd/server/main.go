package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"wardwatch/internal/cache"
	"wardwatch/internal/config"
	"wardwatch/internal/database"
	"wardwatch/internal/geo"
	"wardwatch/internal/models"
	"wardwatch/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	cfg, err := config.Load("./config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ward boundaries (falls back to placeholder wards when the file is
	// missing)
	wardFile := os.Getenv("WARD_GEOJSON")
	if wardFile == "" {
		wardFile = "static/data/wards.geojson"
	}
	index, err := geo.LoadIndex(wardFile)
	if err != nil {
		log.Fatalf("Failed to load ward boundaries: %v", err)
	}

	// Initialize database
	db, err := database.NewDB(config.GetDatabaseDSN())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Keep ward identity rows in sync with the boundary set
	for _, wardID := range index.WardIDs() {
		name, _ := index.WardName(wardID)
		var centroid *models.Coordinate
		if c, ok := index.Centroid(wardID); ok {
			centroid = &c
		}
		if err := db.UpsertWard(wardID, name, centroid); err != nil {
			log.Printf("Failed to upsert ward %s: %v", wardID, err)
		}
	}

	// Initialize Redis-backed prediction cache
	redisCfg := config.GetRedisConfig()
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})
	defer redisClient.Close()

	snapCache := cache.New(redisClient, time.Duration(cfg.Cache.SnapshotTTLSeconds)*time.Second)

	httpServer := server.NewServer(db, index, snapCache, cfg)

	// Hourly maintenance: pre-warm the upcoming hour's prediction cache
	// and prune history past the retention window.
	c := cron.New()
	_, err = c.AddFunc("0 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		nextHour := (time.Now().Hour() + 1) % 24
		if err := httpServer.WarmCache(ctx, nextHour); err != nil {
			log.Printf("Cache pre-warm failed for hour %d: %v", nextHour, err)
		} else {
			log.Printf("Pre-warmed prediction cache for hour %d", nextHour)
		}

		cutoff := time.Now().AddDate(0, 0, -cfg.History.MaxDays)
		removed, err := db.PruneHistory(cutoff)
		if err != nil {
			log.Printf("History pruning failed: %v", err)
		} else if removed > 0 {
			log.Printf("Pruned %d history rows older than %s", removed, cutoff.Format("2006-01-02"))
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule maintenance job: %v", err)
	}
	c.Start()
	defer c.Stop()

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	log.Printf("Starting server on %s", addr)
	if err := httpServer.Start(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
