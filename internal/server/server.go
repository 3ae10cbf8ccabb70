package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wardwatch/internal/baseline"
	"wardwatch/internal/cache"
	"wardwatch/internal/config"
	"wardwatch/internal/geo"
	"wardwatch/internal/history"
	"wardwatch/internal/metrics"
	"wardwatch/internal/models"
	"wardwatch/internal/tips"
)

// PredictionSource is the stored prediction and history lookup surface
// the handlers need; *database.DB satisfies it.
type PredictionSource interface {
	GetPredictionsByHour(hour int) ([]models.Ward, error)
	GetPredictionForWard(wardID string, hour int) (*models.Ward, error)
	GetHistory(wardID string, days int) ([]models.DayRecord, error)
}

// Server represents the HTTP server
type Server struct {
	db        PredictionSource
	index     *geo.Index
	snapCache *cache.SnapshotCache
	tipsCache *gocache.Cache
	cfg       *config.Config
	mux       *http.ServeMux
}

// NewServer creates a new HTTP server
func NewServer(db PredictionSource, index *geo.Index, snapCache *cache.SnapshotCache, cfg *config.Config) *Server {
	s := &Server{
		db:        db,
		index:     index,
		snapCache: snapCache,
		tipsCache: gocache.New(5*time.Minute, 10*time.Minute),
		cfg:       cfg,
		mux:       http.NewServeMux(),
	}

	// Register routes
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/predict", s.timed("predict", s.handlePredict))
	s.mux.HandleFunc("/api/wards", s.timed("wards", s.handleWards))
	s.mux.HandleFunc("/api/search", s.timed("search", s.handleSearch))
	s.mux.HandleFunc("/api/historical/", s.timed("historical", s.handleHistorical))
	s.mux.HandleFunc("/api/future/", s.timed("future", s.handleFuture))
	s.mux.HandleFunc("/api/tips/", s.timed("tips", s.handleTips))
	s.mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// timed wraps a handler with request duration metrics per route.
func (s *Server) timed(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		h(rec, r)
		metrics.RecordHTTPRequest(route, strconv.Itoa(rec.status), time.Since(start))
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleHealth returns the server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().String(),
	})
}

// handlePredict returns the per-ward predictions for one hour.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	hour := 12
	if hourStr := r.URL.Query().Get("hour"); hourStr != "" {
		parsed, err := strconv.Atoi(hourStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid hour: "+hourStr)
			return
		}
		hour = parsed
	}
	if hour < 0 || hour > 23 {
		writeError(w, http.StatusBadRequest, "Hour must be between 0 and 23")
		return
	}

	if body, ok := s.snapCache.GetPredictions(r.Context(), hour); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
		return
	}

	wards, err := s.db.GetPredictionsByHour(hour)
	if err != nil {
		log.Printf("Failed to load predictions for hour %d: %v", hour, err)
		writeError(w, http.StatusInternalServerError, "Failed to load predictions")
		return
	}

	for i := range wards {
		wards[i].RiskFactors = baseline.RiskFactors(wards[i].WardID, hour)
	}

	payload := map[string]interface{}{
		"hour":      hour,
		"timestamp": fmt.Sprintf("%02d:00", hour),
		"wards":     wards,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode predictions")
		return
	}
	s.snapCache.SetPredictions(r.Context(), hour, body)

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// WarmCache precomputes and caches the prediction payload for an hour,
// used by the hourly cron to keep the upcoming hour hot.
func (s *Server) WarmCache(ctx context.Context, hour int) error {
	if hour < 0 || hour > 23 {
		return fmt.Errorf("cannot warm cache for hour %d", hour)
	}

	wards, err := s.db.GetPredictionsByHour(hour)
	if err != nil {
		return fmt.Errorf("failed to load predictions for hour %d: %w", hour, err)
	}
	for i := range wards {
		wards[i].RiskFactors = baseline.RiskFactors(wards[i].WardID, hour)
	}

	body, err := json.Marshal(map[string]interface{}{
		"hour":      hour,
		"timestamp": fmt.Sprintf("%02d:00", hour),
		"wards":     wards,
	})
	if err != nil {
		return fmt.Errorf("failed to encode predictions for hour %d: %w", hour, err)
	}
	s.snapCache.SetPredictions(ctx, hour, body)
	return nil
}

// handleWards returns the ward boundary GeoJSON collection.
func (s *Server) handleWards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.index.Collection())
}

// handleSearch resolves a location query against the pre-geocoded
// landmark table and maps it to the nearest ward.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "Search query is required")
		return
	}

	landmark, ok := s.lookupLandmark(query)
	if !ok {
		writeError(w, http.StatusNotFound, "Location not found or not in coverage area")
		return
	}

	result, ok := s.index.NearestWard(landmark.Latitude, landmark.Longitude, s.cfg.Map.MaxSearchDistanceKm)
	if !ok {
		writeError(w, http.StatusNotFound, "Location not found or not in coverage area")
		return
	}
	result.MatchedLocation = landmark.Name
	result.Latitude = landmark.Latitude
	result.Longitude = landmark.Longitude

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) lookupLandmark(query string) (config.Landmark, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	for _, lm := range s.cfg.Landmarks {
		if strings.Contains(strings.ToLower(lm.Name), q) {
			return lm, true
		}
	}
	return config.Landmark{}, false
}

// handleHistorical returns a ward's aggregated safety history.
func (s *Server) handleHistorical(w http.ResponseWriter, r *http.Request) {
	wardID := strings.TrimPrefix(r.URL.Path, "/api/historical/")
	if wardID == "" || strings.Contains(wardID, "/") {
		writeError(w, http.StatusBadRequest, "Ward id is required")
		return
	}
	if !s.index.Contains(wardID) {
		writeError(w, http.StatusNotFound, "No historical data for ward "+wardID)
		return
	}

	days := 7
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid days: "+daysStr)
			return
		}
		days = parsed
	}
	if days > s.cfg.History.MaxDays {
		days = s.cfg.History.MaxDays
	}

	series, err := s.db.GetHistory(wardID, days)
	if err != nil {
		log.Printf("Failed to load history for %s: %v", wardID, err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve historical data")
		return
	}

	summary := history.Aggregate(series, history.DefaultPeriods())

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ward_id":       wardID,
		"days_analyzed": days,
		"daily_data":    series,
		"period_stats":  summary.PeriodStats,
		"daily_grid":    summary.DailyGrid,
	})
}

// handleFuture returns the next N hourly predictions for a ward from
// the stored per-hour prediction table, wrapping the 24-hour clock.
func (s *Server) handleFuture(w http.ResponseWriter, r *http.Request) {
	wardID := strings.TrimPrefix(r.URL.Path, "/api/future/")
	if wardID == "" || strings.Contains(wardID, "/") {
		writeError(w, http.StatusBadRequest, "Ward id is required")
		return
	}
	wardName, ok := s.index.WardName(wardID)
	if !ok {
		writeError(w, http.StatusNotFound, "Ward "+wardID+" not found")
		return
	}

	hours := 24
	if hoursStr := r.URL.Query().Get("hours"); hoursStr != "" {
		parsed, err := strconv.Atoi(hoursStr)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid hours: "+hoursStr)
			return
		}
		hours = parsed
	}
	if hours > 48 {
		hours = 48
	}

	now := time.Now()
	predictions := make([]models.FuturePrediction, 0, hours)
	for i := 0; i < hours; i++ {
		t := now.Add(time.Duration(i) * time.Hour)
		hour := t.Hour()

		level, probability := s.predictionAt(wardID, hour)
		predictions = append(predictions, models.FuturePrediction{
			Timestamp:   t.Format("2006-01-02 15:00"),
			Hour:        hour,
			SafetyLevel: level,
			Probability: probability,
			RiskFactors: baseline.RiskFactors(wardID, hour),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ward_id":     wardID,
		"ward_name":   wardName,
		"predictions": predictions,
	})
}

// predictionAt reads the stored prediction for a ward-hour, falling
// back to the deterministic baseline when no row exists yet.
func (s *Server) predictionAt(wardID string, hour int) (models.SafetyLevel, float64) {
	ward, err := s.db.GetPredictionForWard(wardID, hour)
	if err != nil {
		log.Printf("Failed to read prediction for %s hour %d: %v", wardID, hour, err)
	}
	if ward != nil {
		return ward.SafetyLevel, ward.CrimeProbability
	}
	score := baseline.SafetyScore(wardID, hour)
	return baseline.LevelFor(score), baseline.CrimeProbability(score)
}

// handleTips returns the safety tip lists for a ward at an hour.
func (s *Server) handleTips(w http.ResponseWriter, r *http.Request) {
	wardID := strings.TrimPrefix(r.URL.Path, "/api/tips/")
	if wardID == "" || strings.Contains(wardID, "/") {
		writeError(w, http.StatusBadRequest, "Ward id is required")
		return
	}
	wardName, ok := s.index.WardName(wardID)
	if !ok {
		writeError(w, http.StatusNotFound, "No data available for ward "+wardID)
		return
	}

	hour := time.Now().Hour()
	if hourStr := r.URL.Query().Get("hour"); hourStr != "" {
		parsed, err := strconv.Atoi(hourStr)
		if err != nil || parsed < 0 || parsed > 23 {
			writeError(w, http.StatusBadRequest, "Hour must be between 0 and 23")
			return
		}
		hour = parsed
	}

	cacheKey := fmt.Sprintf("%s:%d", wardID, hour)
	if cached, found := s.tipsCache.Get(cacheKey); found {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	level, _ := s.predictionAt(wardID, hour)
	result := tips.For(wardID, wardName, level, baseline.RiskFactors(wardID, hour), hour)
	s.tipsCache.Set(cacheKey, result, gocache.DefaultExpiration)

	writeJSON(w, http.StatusOK, result)
}
