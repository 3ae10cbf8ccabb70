// Package baseline produces the deterministic hour-pattern safety data
// used to seed the database and derive per-ward risk factors. It is not
// a risk model: the same (ward, hour, date) always yields the same
// output.
package baseline

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"wardwatch/internal/models"
)

// Safety-level thresholds on the 0-1 safety score.
const (
	greenThreshold  = 0.7
	yellowThreshold = 0.4
)

// hourFactor encodes the expected safety pattern across the day: mid-day
// is safest, late night is least safe.
func hourFactor(hour int) float64 {
	switch {
	case hour >= 10 && hour <= 15:
		return 0.8
	case (hour >= 7 && hour <= 9) || (hour >= 16 && hour <= 18):
		return 0.7
	case hour == 19 || hour == 20 || hour == 6:
		return 0.5
	case hour == 21 || hour == 22 || hour == 5:
		return 0.3
	default:
		// 23:00 through 04:00
		return 0.2
	}
}

// SafetyScore is the 0-1 safety score for one ward at one hour: the hour
// pattern, a mild diurnal sine term, and a stable per-ward offset.
func SafetyScore(wardID string, hour int) float64 {
	base := hourFactor(hour) + 0.1*math.Sin(math.Pi*float64(hour)/12)
	return clamp(base + wardModifier(wardID))
}

// HistoricalScore varies the hour pattern by weekday and ward, producing
// stable multi-day history.
func HistoricalScore(wardID string, weekday time.Weekday, hour int) float64 {
	dayModifier := float64(hashOf(fmt.Sprintf("%d_%s", int(weekday), wardID))%20) / 100
	return clamp(hourFactor(hour) + dayModifier)
}

// LevelFor converts a safety score to its level.
func LevelFor(score float64) models.SafetyLevel {
	switch {
	case score >= greenThreshold:
		return models.LevelGreen
	case score >= yellowThreshold:
		return models.LevelYellow
	default:
		return models.LevelRed
	}
}

// CrimeProbability is the inverse of the safety score, rounded to three
// decimals as served by the API.
func CrimeProbability(score float64) float64 {
	return math.Round((1-score)*1000) / 1000
}

// allRiskFactors are the known environmental contributors.
var allRiskFactors = []string{
	"Poorly lit areas",
	"High pedestrian traffic",
	"Proximity to transit hubs",
	"Entertainment venues",
	"Commercial activity",
	"Residential density",
	"Previous incidents",
	"School/college proximity",
}

// AllRiskFactors returns the full risk-factor vocabulary.
func AllRiskFactors() []string {
	return append([]string(nil), allRiskFactors...)
}

// RiskFactors deterministically selects 1-3 risk factors for a ward at
// an hour; the same pair always selects the same factors.
func RiskFactors(wardID string, hour int) []string {
	seed := int64(hashOf(fmt.Sprintf("%s_%d", wardID, hour)))
	r := rand.New(rand.NewSource(seed))

	n := 1 + r.Intn(3)
	perm := r.Perm(len(allRiskFactors))

	factors := make([]string, 0, n)
	for _, idx := range perm[:n] {
		factors = append(factors, allRiskFactors[idx])
	}
	return factors
}

// wardModifier is a stable per-ward safety offset in [0, 0.19].
func wardModifier(wardID string) float64 {
	return float64(hashOf(wardID)%20) / 100
}

func hashOf(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
