package main

import (
	"hash/fnv"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/joho/godotenv"

	"wardwatch/internal/baseline"
	"wardwatch/internal/config"
	"wardwatch/internal/database"
	"wardwatch/internal/geo"
	"wardwatch/internal/models"
)

const historyDays = 30

var incidentTypes = []string{"Theft", "Pickpocketing", "Vandalism", "Assault", "Chain snatching"}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	if _, err := config.Load("./config.yaml"); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	wardFile := os.Getenv("WARD_GEOJSON")
	if wardFile == "" {
		wardFile = "static/data/wards.geojson"
	}
	index, err := geo.LoadIndex(wardFile)
	if err != nil {
		log.Fatalf("Failed to load ward boundaries: %v", err)
	}

	db, err := database.NewDB(config.GetDatabaseDSN())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	wardIDs := index.WardIDs()
	log.Printf("Seeding %d wards with 24-hour predictions and %d days of history", len(wardIDs), historyDays)

	seeded := 0
	for _, wardID := range wardIDs {
		name, _ := index.WardName(wardID)
		var centroid *models.Coordinate
		if c, ok := index.Centroid(wardID); ok {
			centroid = &c
		}
		if err := db.UpsertWard(wardID, name, centroid); err != nil {
			log.Fatalf("Failed to seed ward %s: %v", wardID, err)
		}

		// One prediction per ward per hour
		for hour := 0; hour < 24; hour++ {
			score := baseline.SafetyScore(wardID, hour)
			err := db.UpsertPrediction(wardID, hour, baseline.LevelFor(score), baseline.CrimeProbability(score))
			if err != nil {
				log.Fatalf("Failed to seed prediction for %s hour %d: %v", wardID, hour, err)
			}
		}

		// Full hourly history for the retention window
		today := time.Now()
		for dayOffset := historyDays; dayOffset > 0; dayOffset-- {
			day := today.AddDate(0, 0, -dayOffset)
			for hour := 0; hour < 24; hour++ {
				score := baseline.HistoricalScore(wardID, day.Weekday(), hour)
				err := db.InsertHistoryPoint(wardID, day, hour, baseline.LevelFor(score), baseline.CrimeProbability(score))
				if err != nil {
					log.Fatalf("Failed to seed history for %s on %s: %v", wardID, day.Format("2006-01-02"), err)
				}
			}
		}

		if err := seedIncidents(db, centroid, wardID); err != nil {
			log.Fatalf("Failed to seed incidents for %s: %v", wardID, err)
		}

		seeded++
		if seeded%10 == 0 {
			log.Printf("Seeded %d/%d wards...", seeded, len(wardIDs))
		}
	}

	log.Printf("Seed complete: %d wards", seeded)
}

// seedIncidents inserts a small deterministic batch of sample incidents
// scattered around the ward centroid over the retention window.
func seedIncidents(db *database.DB, centroid *models.Coordinate, wardID string) error {
	if centroid == nil {
		return nil
	}

	h := fnv.New32a()
	h.Write([]byte(wardID))
	r := rand.New(rand.NewSource(int64(h.Sum32())))

	n := 3 + r.Intn(5)
	now := time.Now()
	for i := 0; i < n; i++ {
		ts := now.AddDate(0, 0, -r.Intn(historyDays)).Add(-time.Duration(r.Intn(24)) * time.Hour)
		incidentType := incidentTypes[r.Intn(len(incidentTypes))]
		lat := centroid.Latitude + (r.Float64()-0.5)*0.01
		lng := centroid.Longitude + (r.Float64()-0.5)*0.01
		severity := 1 + r.Intn(5)
		if err := db.InsertIncident(incidentType, wardID, lat, lng, ts, severity, "Sample incident"); err != nil {
			return err
		}
	}
	return nil
}
