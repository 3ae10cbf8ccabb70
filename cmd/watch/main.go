package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wardwatch/internal/api"
	"wardwatch/internal/config"
	"wardwatch/internal/models"
	"wardwatch/internal/palette"
	"wardwatch/internal/playback"
	"wardwatch/internal/snapshot"
	"wardwatch/internal/visibility"
)

// watch drives the playback clock against a running prediction server
// and prints a per-level ward summary for every hour it visits.
func main() {
	cfg, err := config.Load("./config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	baseURL := cfg.API.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	client := api.NewClient(baseURL)

	ctx := context.Background()

	// Ward boundary set drives the visibility overlay
	collection, err := client.Wards(ctx)
	if err != nil {
		log.Fatalf("Failed to fetch ward boundaries: %v", err)
	}
	wardIDs := make([]string, 0, len(collection.Features))
	for _, f := range collection.Features {
		wardIDs = append(wardIDs, f.Properties.WardID)
	}

	vis := visibility.NewController(func(wardID string) {
		log.Printf("Centering on ward %s", wardID)
	})
	vis.SetWards(wardIDs)

	store := snapshot.NewStore(client)

	onHour := func(hour int) {
		loadCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		snap, err := store.Load(loadCtx, hour)
		if err != nil {
			// Transient failures keep the last good snapshot; playback
			// retries implicitly on the next tick.
			log.Printf("Load for hour %02d:00 failed: %v", hour, err)
			return
		}
		printSummary(snap, vis)
	}

	interval := time.Duration(cfg.Playback.IntervalMs) * time.Millisecond
	controller := playback.NewController(interval, time.Now().Hour(), onHour)
	defer controller.Close()

	if len(os.Args) > 1 {
		// Optional search argument isolates the matched ward
		query := os.Args[1]
		result, err := client.Search(ctx, query)
		if err != nil {
			log.Printf("Search for %q failed: %v", query, err)
		} else if err := vis.Isolate(result.WardID); err != nil {
			log.Printf("Cannot isolate %s: %v", result.WardID, err)
		} else {
			log.Printf("Isolated ward %s (%s), %.2f km from %s",
				result.WardID, result.Name, result.DistanceKm, result.MatchedLocation)
		}
	}

	if err := controller.Seek(controller.Hour()); err != nil {
		log.Fatalf("Initial seek failed: %v", err)
	}
	if err := controller.Play(); err != nil {
		log.Fatalf("Failed to start playback: %v", err)
	}
	log.Printf("Playing 24-hour cycle at %v per hour. Press Ctrl+C to stop...", interval)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	controller.Pause()
	log.Println("Playback stopped")
}

func printSummary(snap *models.PredictionSnapshot, vis *visibility.Controller) {
	counts := map[models.SafetyLevel]int{}
	visible := 0
	for id, ward := range snap.Wards {
		if !vis.Visible(id) {
			continue
		}
		visible++
		counts[ward.SafetyLevel]++
	}

	fmt.Printf("%s  %s%d green%s  %s%d yellow%s  %s%d red%s  (%d wards visible)\n",
		snap.Timestamp,
		palette.ANSIOf(models.LevelGreen), counts[models.LevelGreen], palette.ANSIReset,
		palette.ANSIOf(models.LevelYellow), counts[models.LevelYellow], palette.ANSIReset,
		palette.ANSIOf(models.LevelRed), counts[models.LevelRed], palette.ANSIReset,
		visible)
}
