// Package scoring computes the heuristic wellness score. It is not a
// clinical measure.
package scoring

import (
	"math"
	"time"

	"github.com/themobileprof/mediguide-be/internal/session"
	"github.com/themobileprof/mediguide-be/internal/vitals"
)

// BMI categories
const (
	Underweight   = "Underweight"
	HealthyWeight = "Healthy Weight"
	Overweight    = "Overweight"
	Obesity       = "Obesity"
	NotAvailable  = "N/A"
)

// Config holds the scoring constants
type Config struct {
	Base   int
	Window time.Duration // look-back for activities and symptoms
}

// DefaultConfig returns the standard weights.
func DefaultConfig() Config {
	return Config{Base: 70, Window: 7 * 24 * time.Hour}
}

// Breakdown shows how a score was assembled.
type Breakdown struct {
	Base       int `json:"base"`
	BMI        int `json:"bmi"`
	Vitals     int `json:"vitals"`
	Activities int `json:"activities"`
	Symptoms   int `json:"symptoms"`
	Severe     int `json:"severe_symptoms"`
	Chronic    int `json:"chronic_conditions"`
	Total      int `json:"total"`
}

// Explain scores a record at time now.
func Explain(r session.Record, now time.Time, cfg Config) Breakdown {
	b := Breakdown{Base: cfg.Base}

	if bmi, ok := BMI(r.Profile); ok {
		switch {
		case bmi >= 18.5 && bmi < 25:
			b.BMI = 5
		case bmi >= 25 && bmi < 30:
			b.BMI = 0
		default:
			b.BMI = -5
		}
	}

	for _, kind := range r.VitalKinds() {
		latest, _ := r.LatestReading(kind)
		in := vitals.InRange(latest)
		if in == nil {
			continue
		}
		if *in {
			b.Vitals += 3
		} else {
			b.Vitals -= 3
		}
	}

	since := now.Add(-cfg.Window)

	var activities int
	for _, a := range r.Activities {
		if !a.Timestamp.Before(since) {
			activities++
		}
	}
	switch {
	case activities >= 3:
		b.Activities = 5
	case activities > 0:
		b.Activities = 2
	}

	var recent, severe int
	for _, s := range r.Symptoms {
		if s.Timestamp.Before(since) {
			continue
		}
		recent++
		if s.Severity == "severe" {
			severe++
		}
	}
	switch {
	case recent >= 3:
		b.Symptoms = -5
	case recent > 0:
		b.Symptoms = -2
	}
	b.Severe = -2 * severe
	b.Chronic = -2 * len(r.Profile.ChronicConditions)

	total := b.Base + b.BMI + b.Vitals + b.Activities + b.Symptoms + b.Severe + b.Chronic
	b.Total = clamp(total, 0, 100)
	return b
}

// Compute returns the score for a record in [0, 100].
func Compute(r session.Record, now time.Time, cfg Config) int {
	return Explain(r, now, cfg).Total
}

// BMI returns weight / height² rounded to one decimal.
func BMI(p session.Profile) (float64, bool) {
	heightCM, weightKG, ok := p.BMIInputs()
	if !ok || heightCM <= 0 || weightKG <= 0 {
		return 0, false
	}
	m := heightCM / 100
	return math.Round(weightKG/(m*m)*10) / 10, true
}

// BMICategory names the band a BMI falls in.
func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return Underweight
	case bmi < 25:
		return HealthyWeight
	case bmi < 30:
		return Overweight
	default:
		return Obesity
	}
}

// ProfileBMICategory is BMICategory for a profile, N/A when BMI is unknown.
func ProfileBMICategory(p session.Profile) string {
	bmi, ok := BMI(p)
	if !ok {
		return NotAvailable
	}
	return BMICategory(bmi)
}

// Scorer computes scores and records them on the session.
type Scorer struct {
	cfg   Config
	clock func() time.Time
}

// NewScorer creates a scorer. A nil clock uses time.Now and zero config
// fields take their defaults.
func NewScorer(cfg Config, clock func() time.Time) *Scorer {
	if clock == nil {
		clock = time.Now
	}
	if cfg.Base <= 0 {
		cfg.Base = DefaultConfig().Base
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig().Window
	}
	return &Scorer{cfg: cfg, clock: clock}
}

// Score computes without side effects.
func (s *Scorer) Score(r session.Record) Breakdown {
	return Explain(r, s.clock(), s.cfg)
}

// Update computes the score, moves the previous score into history and
// stores the new one. Call it while holding the session.
func (s *Scorer) Update(r *session.Record) int {
	score := Compute(*r, s.clock(), s.cfg)
	r.RecordScore(score)
	return score
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
