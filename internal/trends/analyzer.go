// Package trends characterizes how a user's signals move over time.
package trends

import (
	"math"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/themobileprof/mediguide-be/internal/session"
	"github.com/themobileprof/mediguide-be/internal/vitals"
)

// Direction of a vital trend
type Direction string

const (
	Increasing Direction = "increasing"
	Decreasing Direction = "decreasing"
	Stable     Direction = "stable"
)

// Score trend directions
const (
	ScoreImproving = "improving"
	ScoreDeclining = "declining"
	ScoreStable    = "stable"
)

// Config holds trend thresholds
type Config struct {
	DeltaPct float64       // fraction of |prior mean| a vital must move
	Window   time.Duration // look-back for symptom and activity frequency
}

// DefaultConfig returns a 5% delta and a 14 day window.
func DefaultConfig() Config {
	return Config{DeltaPct: 0.05, Window: 14 * 24 * time.Hour}
}

// VitalTrend compares the latest reading against the mean of prior ones.
// Improving is nil when the trend is stable or the vital has no polarity.
type VitalTrend struct {
	Direction Direction `json:"direction"`
	Improving *bool     `json:"improving"`
	Change    float64   `json:"change"`
	Latest    string    `json:"latest_value"`
	InRange   *bool     `json:"is_in_range"`
	Readings  int       `json:"readings"`
}

// Count is one entry of a frequency table
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Frequency summarizes how often entries occurred in the window.
type Frequency struct {
	MostFrequent []Count `json:"most_frequent"`
	Total        int     `json:"total"`
	Unique       int     `json:"unique"`
}

// ScoreTrend compares the current score with the previous one.
type ScoreTrend struct {
	Current   int    `json:"current"`
	Previous  *int   `json:"previous,omitempty"`
	Change    int    `json:"change"`
	Direction string `json:"direction"`
}

// Trends is the full analysis for one record.
type Trends struct {
	Vitals      map[vitals.Kind]VitalTrend `json:"vitals"`
	Symptoms    *Frequency                 `json:"symptoms,omitempty"`
	Activities  *Frequency                 `json:"wellness,omitempty"`
	HealthScore *ScoreTrend                `json:"health_score,omitempty"`
}

var (
	lowerIsBetter  = map[vitals.Kind]bool{vitals.BloodPressure: true, vitals.HeartRate: true, vitals.BloodSugar: true, vitals.Temperature: true}
	higherIsBetter = map[vitals.Kind]bool{vitals.OxygenSaturation: true}
)

// Analyze computes every trend for r. currentScore overrides the record's
// last score when given.
func Analyze(r session.Record, currentScore *int, now time.Time, cfg Config) Trends {
	t := Trends{Vitals: make(map[vitals.Kind]VitalTrend)}

	for _, kind := range r.VitalKinds() {
		if vt, ok := Vital(kind, r.Vitals[kind], cfg.DeltaPct); ok {
			t.Vitals[kind] = vt
		}
	}

	since := now.Add(-cfg.Window)
	symptoms := lo.FilterMap(r.Symptoms, func(s session.SymptomEntry, _ int) (string, bool) {
		return s.Symptom, !s.Timestamp.Before(since)
	})
	t.Symptoms = frequency(symptoms)

	activities := lo.FilterMap(r.Activities, func(a session.WellnessActivity, _ int) (string, bool) {
		return string(a.ActivityType), !a.Timestamp.Before(since)
	})
	t.Activities = frequency(activities)

	t.HealthScore = scoreTrend(r.Analytics, currentScore)
	return t
}

// Vital computes the trend of one vital. It needs at least two readings.
func Vital(kind vitals.Kind, readings []vitals.Reading, deltaPct float64) (VitalTrend, bool) {
	if len(readings) < 2 {
		return VitalTrend{}, false
	}
	values := lo.Map(readings, func(rd vitals.Reading, _ int) float64 { return rd.Numeric() })
	latest := values[len(values)-1]
	mean := lo.Sum(values[:len(values)-1]) / float64(len(values)-1)
	margin := deltaPct * math.Abs(mean)

	dir := Stable
	switch {
	case latest > mean+margin:
		dir = Increasing
	case latest < mean-margin:
		dir = Decreasing
	}

	last := readings[len(readings)-1]
	return VitalTrend{
		Direction: dir,
		Improving: polarity(kind, dir),
		Change:    math.Round((latest-mean)*10) / 10,
		Latest:    last.Display(),
		InRange:   vitals.InRange(last),
		Readings:  len(readings),
	}, true
}

func polarity(kind vitals.Kind, dir Direction) *bool {
	if dir == Stable {
		return nil
	}
	var improving bool
	switch {
	case lowerIsBetter[kind]:
		improving = dir == Decreasing
	case higherIsBetter[kind]:
		improving = dir == Increasing
	default:
		return nil
	}
	return &improving
}

func frequency(names []string) *Frequency {
	if len(names) == 0 {
		return nil
	}
	counts := lo.MapToSlice(lo.CountValues(names), func(name string, n int) Count {
		return Count{Name: name, Count: n}
	})
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Name < counts[j].Name
	})
	return &Frequency{
		MostFrequent: lo.Slice(counts, 0, 3),
		Total:        len(names),
		Unique:       len(counts),
	}
}

func scoreTrend(a session.Analytics, current *int) *ScoreTrend {
	if current == nil {
		current = a.LastHealthScore
	}
	if current == nil {
		return nil
	}
	st := &ScoreTrend{Current: *current, Direction: ScoreStable}
	if len(a.HealthScoreHistory) == 0 {
		return st
	}
	prev := a.HealthScoreHistory[len(a.HealthScoreHistory)-1].Score
	st.Previous = &prev
	st.Change = *current - prev
	switch {
	case st.Change > 0:
		st.Direction = ScoreImproving
	case st.Change < 0:
		st.Direction = ScoreDeclining
	}
	return st
}

// Analyzer runs Analyze with a fixed config and clock.
type Analyzer struct {
	cfg   Config
	clock func() time.Time
}

// NewAnalyzer creates an analyzer. Zero config fields take defaults.
func NewAnalyzer(cfg Config, clock func() time.Time) *Analyzer {
	def := DefaultConfig()
	if cfg.DeltaPct <= 0 {
		cfg.DeltaPct = def.DeltaPct
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if clock == nil {
		clock = time.Now
	}
	return &Analyzer{cfg: cfg, clock: clock}
}

// Analyze computes trends for r using its last recorded score.
func (a *Analyzer) Analyze(r session.Record) Trends {
	return Analyze(r, nil, a.clock(), a.cfg)
}

// Config returns the analyzer's thresholds.
func (a *Analyzer) Config() Config {
	return a.cfg
}
