package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"wardwatch/internal/metrics"
	"wardwatch/internal/models"
)

// DB represents the database connection
type DB struct {
	conn *sql.DB
}

// NewDB creates a new database connection and initializes the schema
// dsn format: "username:password@tcp(host:port)/dbname?parseTime=true"
func NewDB(dsn string) (*DB, error) {
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Configure connection pool
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	db := &DB{conn: conn}

	if err := db.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	// MySQL doesn't support multiple statements in one Exec, so we need to split them
	statements := []string{
		`CREATE TABLE IF NOT EXISTS wards (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			ward_id VARCHAR(10) NOT NULL UNIQUE,
			name VARCHAR(100) NOT NULL,
			centroid_lat DOUBLE,
			centroid_lng DOUBLE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS crime_incidents (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			incident_type VARCHAR(100) NOT NULL,
			ward_id VARCHAR(10) NOT NULL,
			latitude DOUBLE,
			longitude DOUBLE,
			timestamp DATETIME(6) NOT NULL,
			severity INT,
			description TEXT,
			INDEX idx_incidents_ward (ward_id),
			INDEX idx_incidents_timestamp (timestamp)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS safety_predictions (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			ward_id VARCHAR(10) NOT NULL,
			hour INT NOT NULL,
			safety_level VARCHAR(10) NOT NULL,
			crime_probability DOUBLE NOT NULL,
			created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
			UNIQUE KEY uq_predictions_ward_hour (ward_id, hour),
			INDEX idx_predictions_hour (hour)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS safety_history (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			ward_id VARCHAR(10) NOT NULL,
			day DATE NOT NULL,
			hour INT NOT NULL,
			safety_level VARCHAR(10) NOT NULL,
			crime_probability DOUBLE NOT NULL,
			UNIQUE KEY uq_history_ward_day_hour (ward_id, day, hour),
			INDEX idx_history_ward_day (ward_id, day)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

// UpsertWard inserts or refreshes a ward's identity row.
func (db *DB) UpsertWard(wardID, name string, centroid *models.Coordinate) error {
	query := `INSERT INTO wards (ward_id, name, centroid_lat, centroid_lng)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE name = VALUES(name),
			centroid_lat = VALUES(centroid_lat), centroid_lng = VALUES(centroid_lng)`

	var lat, lng interface{}
	if centroid != nil {
		lat, lng = centroid.Latitude, centroid.Longitude
	}

	queryStart := time.Now()
	_, err := db.conn.Exec(query, wardID, name, lat, lng)
	metrics.RecordDBQuery("INSERT", "wards", time.Since(queryStart), err)
	if err != nil {
		return fmt.Errorf("failed to upsert ward %s: %w", wardID, err)
	}
	return nil
}

// UpsertPrediction stores one ward's prediction for one hour, replacing
// any previous value. One row per ward per hour.
func (db *DB) UpsertPrediction(wardID string, hour int, level models.SafetyLevel, crimeProbability float64) error {
	query := `INSERT INTO safety_predictions (ward_id, hour, safety_level, crime_probability)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE safety_level = VALUES(safety_level),
			crime_probability = VALUES(crime_probability)`

	queryStart := time.Now()
	_, err := db.conn.Exec(query, wardID, hour, string(level), crimeProbability)
	metrics.RecordDBQuery("INSERT", "safety_predictions", time.Since(queryStart), err)
	if err != nil {
		return fmt.Errorf("failed to store prediction for %s hour %d: %w", wardID, hour, err)
	}
	return nil
}

// GetPredictionsByHour returns every ward's prediction for one hour,
// joined with the ward's display name, in ward order.
func (db *DB) GetPredictionsByHour(hour int) ([]models.Ward, error) {
	defer func() {
		stats := db.conn.Stats()
		metrics.UpdateDBConnectionStats(stats.OpenConnections, stats.InUse, stats.Idle)
	}()

	query := `SELECT p.ward_id, w.name, p.safety_level, p.crime_probability,
			w.centroid_lat, w.centroid_lng
		FROM safety_predictions p
		JOIN wards w ON w.ward_id = p.ward_id
		WHERE p.hour = ?
		ORDER BY p.ward_id`

	queryStart := time.Now()
	rows, err := db.conn.Query(query, hour)
	metrics.RecordDBQuery("SELECT", "safety_predictions", time.Since(queryStart), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions for hour %d: %w", hour, err)
	}
	defer rows.Close()

	var wards []models.Ward
	for rows.Next() {
		var w models.Ward
		var level string
		var lat, lng sql.NullFloat64
		if err := rows.Scan(&w.WardID, &w.Name, &level, &w.CrimeProbability, &lat, &lng); err != nil {
			return nil, fmt.Errorf("failed to scan prediction row: %w", err)
		}
		w.SafetyLevel = models.SafetyLevel(level)
		if lat.Valid && lng.Valid {
			w.Centroid = &models.Coordinate{Latitude: lat.Float64, Longitude: lng.Float64}
		}
		wards = append(wards, w)
	}
	return wards, rows.Err()
}

// GetPredictionForWard returns one ward's prediction for one hour.
func (db *DB) GetPredictionForWard(wardID string, hour int) (*models.Ward, error) {
	query := `SELECT p.ward_id, w.name, p.safety_level, p.crime_probability
		FROM safety_predictions p
		JOIN wards w ON w.ward_id = p.ward_id
		WHERE p.ward_id = ? AND p.hour = ?`

	queryStart := time.Now()
	var w models.Ward
	var level string
	err := db.conn.QueryRow(query, wardID, hour).Scan(&w.WardID, &w.Name, &level, &w.CrimeProbability)
	metrics.RecordDBQuery("SELECT", "safety_predictions", time.Since(queryStart), err)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query prediction for %s hour %d: %w", wardID, hour, err)
	}
	w.SafetyLevel = models.SafetyLevel(level)
	return &w, nil
}

// InsertHistoryPoint stores one recorded hour of a ward's safety history.
func (db *DB) InsertHistoryPoint(wardID string, day time.Time, hour int, level models.SafetyLevel, crimeProbability float64) error {
	query := `INSERT INTO safety_history (ward_id, day, hour, safety_level, crime_probability)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE safety_level = VALUES(safety_level),
			crime_probability = VALUES(crime_probability)`

	queryStart := time.Now()
	_, err := db.conn.Exec(query, wardID, day.Format("2006-01-02"), hour, string(level), crimeProbability)
	metrics.RecordDBQuery("INSERT", "safety_history", time.Since(queryStart), err)
	if err != nil {
		return fmt.Errorf("failed to store history point for %s: %w", wardID, err)
	}
	return nil
}

// GetHistory returns a ward's recorded hourly history for the last N
// days as chronologically ordered day records. Days with missing hours
// come back with only their recorded hours.
func (db *DB) GetHistory(wardID string, days int) ([]models.DayRecord, error) {
	query := `SELECT day, hour, safety_level, crime_probability
		FROM safety_history
		WHERE ward_id = ? AND day >= ?
		ORDER BY day, hour`

	since := time.Now().AddDate(0, 0, -days).Format("2006-01-02")

	queryStart := time.Now()
	rows, err := db.conn.Query(query, wardID, since)
	metrics.RecordDBQuery("SELECT", "safety_history", time.Since(queryStart), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for %s: %w", wardID, err)
	}
	defer rows.Close()

	var records []models.DayRecord
	for rows.Next() {
		var day time.Time
		var obs models.HourlyObservation
		var level string
		if err := rows.Scan(&day, &obs.Hour, &level, &obs.CrimeProbability); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		obs.SafetyLevel = models.SafetyLevel(level)

		date := day.Format("2006-01-02")
		if len(records) == 0 || records[len(records)-1].Date != date {
			records = append(records, models.DayRecord{
				Date:    date,
				Weekday: day.Weekday().String(),
			})
		}
		last := &records[len(records)-1]
		last.HourlyData = append(last.HourlyData, obs)
	}
	return records, rows.Err()
}

// PruneHistory deletes history rows older than the cutoff and returns
// the number removed.
func (db *DB) PruneHistory(before time.Time) (int64, error) {
	query := `DELETE FROM safety_history WHERE day < ?`

	queryStart := time.Now()
	res, err := db.conn.Exec(query, before.Format("2006-01-02"))
	metrics.RecordDBQuery("DELETE", "safety_history", time.Since(queryStart), err)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	return res.RowsAffected()
}

// InsertIncident stores one crime incident report.
func (db *DB) InsertIncident(incidentType, wardID string, lat, lng float64, timestamp time.Time, severity int, description string) error {
	query := `INSERT INTO crime_incidents (incident_type, ward_id, latitude, longitude, timestamp, severity, description)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryStart := time.Now()
	_, err := db.conn.Exec(query, incidentType, wardID, lat, lng, timestamp, severity, description)
	metrics.RecordDBQuery("INSERT", "crime_incidents", time.Since(queryStart), err)
	if err != nil {
		return fmt.Errorf("failed to store incident for %s: %w", wardID, err)
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}
