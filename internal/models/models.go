package models

// SafetyLevel classifies a ward's predicted risk for one hour.
type SafetyLevel string

const (
	LevelGreen  SafetyLevel = "green"
	LevelYellow SafetyLevel = "yellow"
	LevelRed    SafetyLevel = "red"
)

// Valid reports whether the level is one of the three defined levels.
// Upstream payloads are not trusted to stay inside the closed set.
func (l SafetyLevel) Valid() bool {
	return l == LevelGreen || l == LevelYellow || l == LevelRed
}

// Coordinate is a latitude/longitude pair in degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Ward carries the per-ward risk fields for one prediction hour.
// Wards are value copies; the snapshot store and the view never share
// a mutable reference.
type Ward struct {
	WardID           string      `json:"ward_id"`
	Name             string      `json:"name"`
	SafetyLevel      SafetyLevel `json:"safety_level"`
	CrimeProbability float64     `json:"crime_probability"`
	RiskFactors      []string    `json:"risk_factors"`
	Centroid         *Coordinate `json:"centroid,omitempty"`
}

// PredictionSnapshot is the complete set of per-ward predictions valid
// for exactly one hour. A new snapshot fully replaces the prior one.
type PredictionSnapshot struct {
	Hour      int             `json:"hour"`
	Timestamp string          `json:"timestamp"`
	Wards     map[string]Ward `json:"wards"`
}

// Clone returns a deep value copy so callers can never mutate the
// store's current snapshot through a returned reference.
func (s *PredictionSnapshot) Clone() *PredictionSnapshot {
	if s == nil {
		return nil
	}
	out := &PredictionSnapshot{
		Hour:      s.Hour,
		Timestamp: s.Timestamp,
		Wards:     make(map[string]Ward, len(s.Wards)),
	}
	for id, w := range s.Wards {
		cp := w
		if w.RiskFactors != nil {
			cp.RiskFactors = append([]string(nil), w.RiskFactors...)
		}
		if w.Centroid != nil {
			c := *w.Centroid
			cp.Centroid = &c
		}
		out.Wards[id] = cp
	}
	return out
}

// SearchResult maps a location query to the ward containing it.
type SearchResult struct {
	WardID          string  `json:"ward_id"`
	Name            string  `json:"name"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	DistanceKm      float64 `json:"distance_km"`
	MatchedLocation string  `json:"matched_location"`
}

// SafetyTips holds the three independent tip lists for a ward at an hour.
type SafetyTips struct {
	WardID       string      `json:"ward_id"`
	WardName     string      `json:"ward_name"`
	SafetyLevel  SafetyLevel `json:"safety_level"`
	GeneralTips  []string    `json:"general_tips"`
	SpecificTips []string    `json:"specific_tips"`
	TimeTips     []string    `json:"time_tips"`
}

// HourlyObservation is one recorded hour of a day's safety history.
type HourlyObservation struct {
	Hour             int         `json:"hour"`
	SafetyLevel      SafetyLevel `json:"safety_level"`
	CrimeProbability float64     `json:"crime_probability"`
}

// DayRecord is one day of a ward's history. HourlyData may hold 0-24
// entries; missing hours are tolerated, never interpolated.
type DayRecord struct {
	Date       string              `json:"date"`
	Weekday    string              `json:"weekday"`
	HourlyData []HourlyObservation `json:"hourly_data"`
}

// PeriodStat summarizes the level distribution of one named day period.
// Percentages are over recorded hours only and sum to 100 within rounding.
type PeriodStat struct {
	DominantSafety     SafetyLevel `json:"dominant_safety"`
	DominantPercentage float64     `json:"dominant_percentage"`
	GreenPct           float64     `json:"green_pct"`
	YellowPct          float64     `json:"yellow_pct"`
	RedPct             float64     `json:"red_pct"`
}

// GridCell is one 4-hour group of one day in the daily grid. HourCount
// is the number of recorded hours; a cell with HourCount 0 defaults its
// dominant level to green, and callers tell the two apart by the count.
type GridCell struct {
	Group     string      `json:"group"`
	Dominant  SafetyLevel `json:"dominant"`
	HourCount int         `json:"hour_count"`
	Green     int         `json:"green"`
	Yellow    int         `json:"yellow"`
	Red       int         `json:"red"`
}

// DayGridRow is one chronological row of the daily grid.
type DayGridRow struct {
	Date  string     `json:"date"`
	Cells []GridCell `json:"cells"`
}

// HistoricalSummary is the full output of the aggregation engine.
type HistoricalSummary struct {
	PeriodStats map[string]PeriodStat `json:"period_stats"`
	DailyGrid   []DayGridRow          `json:"daily_grid"`
}

// FuturePrediction is one hourly entry of a ward's forward risk outlook.
type FuturePrediction struct {
	Timestamp   string      `json:"timestamp"`
	Hour        int         `json:"hour"`
	SafetyLevel SafetyLevel `json:"safety_level"`
	Probability float64     `json:"probability"`
	RiskFactors []string    `json:"risk_factors"`
}
