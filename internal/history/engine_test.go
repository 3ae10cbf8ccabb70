package history

import (
	"fmt"
	"math"
	"testing"

	"wardwatch/internal/models"
)

func TestDominantLevel(t *testing.T) {
	tests := []struct {
		name   string
		green  int
		yellow int
		red    int
		want   models.SafetyLevel
	}{
		{
			name:   "green majority",
			green:  5,
			yellow: 2,
			red:    1,
			want:   models.LevelGreen,
		},
		{
			name:   "yellow majority",
			green:  1,
			yellow: 4,
			red:    2,
			want:   models.LevelYellow,
		},
		{
			name:   "red majority",
			green:  0,
			yellow: 1,
			red:    6,
			want:   models.LevelRed,
		},
		{
			name:   "green/yellow tie prefers yellow",
			green:  2,
			yellow: 2,
			red:    0,
			want:   models.LevelYellow,
		},
		{
			name:   "green/red tie prefers red",
			green:  1,
			yellow: 0,
			red:    1,
			want:   models.LevelRed,
		},
		{
			name:   "yellow/red tie prefers yellow",
			green:  0,
			yellow: 3,
			red:    3,
			want:   models.LevelYellow,
		},
		{
			name:   "three-way tie prefers yellow",
			green:  2,
			yellow: 2,
			red:    2,
			want:   models.LevelYellow,
		},
		{
			name:   "green wins only outright",
			green:  2,
			yellow: 1,
			red:    1,
			want:   models.LevelGreen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := levelCounts{green: tt.green, yellow: tt.yellow, red: tt.red}
			if got := c.dominant(); got != tt.want {
				t.Errorf("dominant(%d,%d,%d) = %v, want %v", tt.green, tt.yellow, tt.red, got, tt.want)
			}
		})
	}
}

// fullDay builds a 24-hour record where every hour has the given level.
func fullDay(date string, level models.SafetyLevel) models.DayRecord {
	day := models.DayRecord{Date: date}
	for hour := 0; hour < 24; hour++ {
		day.HourlyData = append(day.HourlyData, models.HourlyObservation{
			Hour:        hour,
			SafetyLevel: level,
		})
	}
	return day
}

func TestAggregate_EmptySeries(t *testing.T) {
	summary := Aggregate(nil, DefaultPeriods())

	if len(summary.PeriodStats) != 0 {
		t.Errorf("Expected empty period stats, got %d entries", len(summary.PeriodStats))
	}
	if len(summary.DailyGrid) != 0 {
		t.Errorf("Expected empty daily grid, got %d rows", len(summary.DailyGrid))
	}
}

func TestAggregate_AllGreenWeek(t *testing.T) {
	var series []models.DayRecord
	for i := 0; i < 7; i++ {
		series = append(series, fullDay(fmt.Sprintf("2025-06-0%d", i+1), models.LevelGreen))
	}

	summary := Aggregate(series, DefaultPeriods())

	if len(summary.PeriodStats) != 4 {
		t.Fatalf("Expected 4 period stats, got %d", len(summary.PeriodStats))
	}
	for name, stat := range summary.PeriodStats {
		if stat.GreenPct != 100 {
			t.Errorf("Period %s green_pct = %v, want 100", name, stat.GreenPct)
		}
		if stat.DominantSafety != models.LevelGreen {
			t.Errorf("Period %s dominant = %v, want green", name, stat.DominantSafety)
		}
		if stat.DominantPercentage != 100 {
			t.Errorf("Period %s dominant_percentage = %v, want 100", name, stat.DominantPercentage)
		}
	}

	if len(summary.DailyGrid) != 7 {
		t.Fatalf("Expected 7 grid rows, got %d", len(summary.DailyGrid))
	}
	for _, row := range summary.DailyGrid {
		if len(row.Cells) != 6 {
			t.Fatalf("Row %s has %d cells, want 6", row.Date, len(row.Cells))
		}
		for _, cell := range row.Cells {
			if cell.Dominant != models.LevelGreen {
				t.Errorf("Row %s group %s dominant = %v, want green", row.Date, cell.Group, cell.Dominant)
			}
			if cell.HourCount != 4 {
				t.Errorf("Row %s group %s hour count = %d, want 4", row.Date, cell.Group, cell.HourCount)
			}
		}
	}
}

func TestAggregate_PercentagesSumTo100(t *testing.T) {
	// Mixed levels with missing hours scattered through the days
	series := []models.DayRecord{
		{
			Date: "2025-06-01",
			HourlyData: []models.HourlyObservation{
				{Hour: 6, SafetyLevel: models.LevelGreen},
				{Hour: 7, SafetyLevel: models.LevelYellow},
				{Hour: 8, SafetyLevel: models.LevelRed},
				{Hour: 13, SafetyLevel: models.LevelYellow},
				{Hour: 22, SafetyLevel: models.LevelRed},
			},
		},
		{
			Date: "2025-06-02",
			HourlyData: []models.HourlyObservation{
				{Hour: 9, SafetyLevel: models.LevelGreen},
				{Hour: 10, SafetyLevel: models.LevelGreen},
				{Hour: 23, SafetyLevel: models.LevelRed},
			},
		},
	}

	summary := Aggregate(series, DefaultPeriods())

	for name, stat := range summary.PeriodStats {
		sum := stat.GreenPct + stat.YellowPct + stat.RedPct
		if math.Abs(sum-100) > 0.2 {
			t.Errorf("Period %s percentages sum to %v, want ~100", name, sum)
		}
	}

	// The afternoon period saw exactly one yellow hour
	afternoon, ok := summary.PeriodStats["afternoon"]
	if !ok {
		t.Fatal("Expected afternoon period stats")
	}
	if afternoon.YellowPct != 100 {
		t.Errorf("afternoon yellow_pct = %v, want 100", afternoon.YellowPct)
	}

	// The evening period had no recorded hours at all
	if _, ok := summary.PeriodStats["evening"]; ok {
		t.Error("Expected no stats for evening period with zero recorded hours")
	}
}

func TestAggregate_EmptyGroupDefaultsGreen(t *testing.T) {
	series := []models.DayRecord{
		{
			Date: "2025-06-01",
			HourlyData: []models.HourlyObservation{
				{Hour: 21, SafetyLevel: models.LevelRed},
				{Hour: 22, SafetyLevel: models.LevelRed},
			},
		},
	}

	summary := Aggregate(series, DefaultPeriods())
	if len(summary.DailyGrid) != 1 {
		t.Fatalf("Expected 1 grid row, got %d", len(summary.DailyGrid))
	}
	cells := summary.DailyGrid[0].Cells

	// Late group (20-23) has the two red hours
	late := cells[5]
	if late.Dominant != models.LevelRed || late.HourCount != 2 {
		t.Errorf("Late cell = %+v, want red dominant with 2 hours", late)
	}

	// Every other group has zero recorded hours: defaulted green,
	// distinguishable by the zero count
	for i := 0; i < 5; i++ {
		if cells[i].Dominant != models.LevelGreen {
			t.Errorf("Empty group %s dominant = %v, want green", cells[i].Group, cells[i].Dominant)
		}
		if cells[i].HourCount != 0 {
			t.Errorf("Empty group %s hour count = %d, want 0", cells[i].Group, cells[i].HourCount)
		}
	}
}

func TestAggregate_GridTieBreaks(t *testing.T) {
	series := []models.DayRecord{
		{
			Date: "2025-06-01",
			HourlyData: []models.HourlyObservation{
				// Night group: 2 green, 2 yellow -> yellow
				{Hour: 0, SafetyLevel: models.LevelGreen},
				{Hour: 1, SafetyLevel: models.LevelGreen},
				{Hour: 2, SafetyLevel: models.LevelYellow},
				{Hour: 3, SafetyLevel: models.LevelYellow},
				// Early group: 1 green, 1 red -> red
				{Hour: 4, SafetyLevel: models.LevelGreen},
				{Hour: 5, SafetyLevel: models.LevelRed},
				// Morning group: 2 green, 1 yellow, 1 red -> green
				{Hour: 8, SafetyLevel: models.LevelGreen},
				{Hour: 9, SafetyLevel: models.LevelGreen},
				{Hour: 10, SafetyLevel: models.LevelYellow},
				{Hour: 11, SafetyLevel: models.LevelRed},
			},
		},
	}

	summary := Aggregate(series, DefaultPeriods())
	cells := summary.DailyGrid[0].Cells

	if cells[0].Dominant != models.LevelYellow {
		t.Errorf("Night dominant = %v, want yellow", cells[0].Dominant)
	}
	if cells[1].Dominant != models.LevelRed {
		t.Errorf("Early dominant = %v, want red", cells[1].Dominant)
	}
	if cells[2].Dominant != models.LevelGreen {
		t.Errorf("Morning dominant = %v, want green", cells[2].Dominant)
	}
}

func TestAggregate_RowsKeepChronologicalOrder(t *testing.T) {
	series := []models.DayRecord{
		fullDay("2025-06-03", models.LevelGreen),
		fullDay("2025-06-01", models.LevelYellow),
		fullDay("2025-06-02", models.LevelRed),
	}

	summary := Aggregate(series, DefaultPeriods())

	want := []string{"2025-06-03", "2025-06-01", "2025-06-02"}
	for i, row := range summary.DailyGrid {
		if row.Date != want[i] {
			t.Errorf("Row %d date = %s, want %s (input order preserved)", i, row.Date, want[i])
		}
	}
}

func TestAggregate_OutOfRangeHoursIgnored(t *testing.T) {
	series := []models.DayRecord{
		{
			Date: "2025-06-01",
			HourlyData: []models.HourlyObservation{
				{Hour: -1, SafetyLevel: models.LevelRed},
				{Hour: 24, SafetyLevel: models.LevelRed},
				{Hour: 12, SafetyLevel: models.LevelGreen},
			},
		},
	}

	summary := Aggregate(series, DefaultPeriods())
	cells := summary.DailyGrid[0].Cells

	totalRecorded := 0
	for _, cell := range cells {
		totalRecorded += cell.HourCount
	}
	if totalRecorded != 1 {
		t.Errorf("Recorded hours = %d, want 1 (out-of-range entries dropped)", totalRecorded)
	}
}
