package history

import (
	"math"

	"wardwatch/internal/models"
)

// Period is a caller-defined named sub-range of the day used for
// aggregate statistics.
type Period struct {
	Name  string
	Hours []int
}

// DefaultPeriods mirrors the day partition used by the prediction API:
// morning, afternoon, evening and the overnight wrap.
func DefaultPeriods() []Period {
	return []Period{
		{Name: "morning", Hours: []int{6, 7, 8, 9, 10, 11}},
		{Name: "afternoon", Hours: []int{12, 13, 14, 15, 16, 17}},
		{Name: "evening", Hours: []int{18, 19, 20, 21}},
		{Name: "night", Hours: []int{22, 23, 0, 1, 2, 3, 4, 5}},
	}
}

// gridGroups are the six fixed 4-hour groups of the daily grid, indexed
// by hour/4.
var gridGroups = [6]string{"Night", "Early", "Morning", "Afternoon", "Evening", "Late"}

// GridGroupNames returns the grid group labels in clock order.
func GridGroupNames() []string {
	return append([]string(nil), gridGroups[:]...)
}

type levelCounts struct {
	green  int
	yellow int
	red    int
}

func (c *levelCounts) add(level models.SafetyLevel) {
	switch level {
	case models.LevelGreen:
		c.green++
	case models.LevelYellow:
		c.yellow++
	case models.LevelRed:
		c.red++
	}
}

func (c levelCounts) total() int {
	return c.green + c.yellow + c.red
}

// dominant applies the fixed tie-break order: yellow wins any tie it is
// part of, red beats green on a tie, green only wins outright. Evaluated
// in that order, not by max(), so ties reproduce identically.
func (c levelCounts) dominant() models.SafetyLevel {
	if c.yellow >= c.green && c.yellow >= c.red {
		return models.LevelYellow
	}
	if c.red >= c.green && c.red >= c.yellow {
		return models.LevelRed
	}
	return models.LevelGreen
}

// Aggregate reduces one ward's multi-day hourly series into named-period
// statistics and a day-by-group dominant-level grid. An empty series
// yields empty outputs, not an error; days with missing hours contribute
// only their recorded hours.
func Aggregate(series []models.DayRecord, periods []Period) models.HistoricalSummary {
	summary := models.HistoricalSummary{
		PeriodStats: make(map[string]models.PeriodStat),
		DailyGrid:   make([]models.DayGridRow, 0, len(series)),
	}

	// Period statistics: count-weighted over all recorded hours across
	// all days. A period with zero recorded hours is absent.
	for _, period := range periods {
		inPeriod := make(map[int]bool, len(period.Hours))
		for _, h := range period.Hours {
			inPeriod[h] = true
		}

		var counts levelCounts
		for _, day := range series {
			for _, obs := range day.HourlyData {
				if inPeriod[obs.Hour] {
					counts.add(obs.SafetyLevel)
				}
			}
		}

		total := counts.total()
		if total == 0 {
			continue
		}

		stat := models.PeriodStat{
			DominantSafety: counts.dominant(),
			GreenPct:       pct(counts.green, total),
			YellowPct:      pct(counts.yellow, total),
			RedPct:         pct(counts.red, total),
		}
		switch stat.DominantSafety {
		case models.LevelGreen:
			stat.DominantPercentage = stat.GreenPct
		case models.LevelYellow:
			stat.DominantPercentage = stat.YellowPct
		case models.LevelRed:
			stat.DominantPercentage = stat.RedPct
		}
		summary.PeriodStats[period.Name] = stat
	}

	// Daily grid: rows keep the supplied chronological order. Every group
	// participates even with zero recorded hours, defaulting to green;
	// HourCount lets callers tell "defaulted" from "data says safe".
	for _, day := range series {
		var counts [6]levelCounts
		for _, obs := range day.HourlyData {
			if obs.Hour < 0 || obs.Hour > 23 {
				continue
			}
			counts[obs.Hour/4].add(obs.SafetyLevel)
		}

		row := models.DayGridRow{Date: day.Date, Cells: make([]models.GridCell, 6)}
		for i, c := range counts {
			cell := models.GridCell{
				Group:     gridGroups[i],
				Dominant:  models.LevelGreen,
				HourCount: c.total(),
				Green:     c.green,
				Yellow:    c.yellow,
				Red:       c.red,
			}
			if cell.HourCount > 0 {
				cell.Dominant = c.dominant()
			}
			row.Cells[i] = cell
		}
		summary.DailyGrid = append(summary.DailyGrid, row)
	}

	return summary
}

// pct rounds to one decimal place, matching the API's display precision.
func pct(count, total int) float64 {
	return math.Round(float64(count)/float64(total)*1000) / 10
}
