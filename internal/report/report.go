// Package report assembles dashboard and health report data from a
// session snapshot. It returns plain data only.
package report

import (
	"time"

	"github.com/samber/lo"
	"github.com/themobileprof/mediguide-be/internal/advice"
	"github.com/themobileprof/mediguide-be/internal/scoring"
	"github.com/themobileprof/mediguide-be/internal/session"
	"github.com/themobileprof/mediguide-be/internal/trends"
	"github.com/themobileprof/mediguide-be/internal/vitals"
)

// Vital status labels
const (
	StatusNormal     = "Normal"
	StatusCheckRange = "Check Range"
	StatusUnknown    = "N/A"
)

// Config controls how much history the views include
type Config struct {
	DashboardSymptoms int
	ReportSymptoms    int
	Trends            trends.Config
	Actions           advice.ActionConfig
}

// DefaultConfig shows 5 symptoms on the dashboard and 10 in the report.
func DefaultConfig() Config {
	return Config{
		DashboardSymptoms: 5,
		ReportSymptoms:    10,
		Trends:            trends.DefaultConfig(),
		Actions:           advice.DefaultActionConfig(),
	}
}

// ProfileSummary is the profile plus derived BMI.
type ProfileSummary struct {
	Name               string   `json:"name,omitempty"`
	Age                *int     `json:"age"`
	Gender             string   `json:"gender,omitempty"`
	HeightCM           *float64 `json:"height_cm"`
	WeightKG           *float64 `json:"weight_kg"`
	BMI                *float64 `json:"bmi"`
	BMICategory        string   `json:"bmi_category"`
	Allergies          []string `json:"allergies"`
	ChronicConditions  []string `json:"chronic_conditions"`
	CurrentMedications []string `json:"current_medications"`
	LastCheckup        string   `json:"last_checkup,omitempty"`
}

// ScoreSummary is the latest score with its trend and reading.
type ScoreSummary struct {
	Score          *int               `json:"score"`
	Trend          *trends.ScoreTrend `json:"trend,omitempty"`
	Interpretation string             `json:"interpretation"`
}

// VitalSummary describes the latest reading of one vital.
type VitalSummary struct {
	Type        vitals.Kind        `json:"type"`
	Latest      string             `json:"latest"`
	Timestamp   time.Time          `json:"timestamp"`
	InRange     *bool              `json:"is_in_range"`
	Status      string             `json:"status"`
	NormalRange string             `json:"normal_range,omitempty"`
	Readings    int                `json:"readings"`
	Trend       *trends.VitalTrend `json:"trend,omitempty"`
}

// Dashboard is the at-a-glance view.
type Dashboard struct {
	UserID         string                       `json:"user_id"`
	GeneratedAt    time.Time                    `json:"generated_at"`
	Score          ScoreSummary                 `json:"health_score"`
	Vitals         []VitalSummary               `json:"vitals"`
	RecentSymptoms []session.SymptomEntry       `json:"recent_symptoms"`
	TopSymptoms    []trends.Count               `json:"top_symptoms"`
	Medications    []session.MedicationReminder `json:"medications"`
	Profile        ProfileSummary               `json:"profile"`
}

// Report is the full health summary.
type Report struct {
	UserID          string                       `json:"user_id"`
	GeneratedAt     time.Time                    `json:"generated_at"`
	Profile         ProfileSummary               `json:"profile"`
	Score           ScoreSummary                 `json:"health_score"`
	Vitals          []VitalSummary               `json:"vitals"`
	Symptoms        []session.SymptomEntry       `json:"symptoms"`
	TopSymptoms     []trends.Count               `json:"top_symptoms"`
	Medications     []session.MedicationReminder `json:"medications"`
	ActivityCounts  map[session.ActivityType]int `json:"activity_counts"`
	ActionItems     []string                     `json:"action_items"`
	Recommendations []session.Recommendation     `json:"recommendations"`
	Disclaimer      string                       `json:"disclaimer"`
}

// Builder produces views at the builder clock's current time.
type Builder struct {
	cfg   Config
	clock func() time.Time
}

// NewBuilder creates a builder. A nil clock uses time.Now.
func NewBuilder(cfg Config, clock func() time.Time) *Builder {
	def := DefaultConfig()
	if cfg.DashboardSymptoms <= 0 {
		cfg.DashboardSymptoms = def.DashboardSymptoms
	}
	if cfg.ReportSymptoms <= 0 {
		cfg.ReportSymptoms = def.ReportSymptoms
	}
	if cfg.Trends.Window <= 0 {
		cfg.Trends = def.Trends
	}
	if cfg.Actions.MaxItems <= 0 {
		cfg.Actions = def.Actions
	}
	if clock == nil {
		clock = time.Now
	}
	return &Builder{cfg: cfg, clock: clock}
}

// Dashboard builds the dashboard for r. The score shown is the last one
// recorded on the session.
func (b *Builder) Dashboard(r session.Record) Dashboard {
	now := b.clock()
	t := trends.Analyze(r, nil, now, b.cfg.Trends)
	return Dashboard{
		UserID:         r.UserID,
		GeneratedAt:    now,
		Score:          scoreSummary(r, t),
		Vitals:         vitalSummaries(r, t),
		RecentSymptoms: latestFirst(r.Symptoms, b.cfg.DashboardSymptoms),
		TopSymptoms:    topSymptoms(t),
		Medications:    orEmpty(r.Medications),
		Profile:        profileSummary(r.Profile),
	}
}

// Report builds the full report for r.
func (b *Builder) Report(r session.Record) Report {
	now := b.clock()
	t := trends.Analyze(r, nil, now, b.cfg.Trends)
	counts := lo.CountValuesBy(r.Activities, func(a session.WellnessActivity) session.ActivityType {
		return a.ActivityType
	})
	return Report{
		UserID:          r.UserID,
		GeneratedAt:     now,
		Profile:         profileSummary(r.Profile),
		Score:           scoreSummary(r, t),
		Vitals:          vitalSummaries(r, t),
		Symptoms:        latestFirst(r.Symptoms, b.cfg.ReportSymptoms),
		TopSymptoms:     topSymptoms(t),
		Medications:     orEmpty(r.Medications),
		ActivityCounts:  counts,
		ActionItems:     advice.ActionItems(r, now, b.cfg.Actions),
		Recommendations: orEmpty(r.Recommendations),
		Disclaimer:      advice.Get(advice.KindReport).Content,
	}
}

func scoreSummary(r session.Record, t trends.Trends) ScoreSummary {
	return ScoreSummary{
		Score:          r.Analytics.LastHealthScore,
		Trend:          t.HealthScore,
		Interpretation: advice.ScoreInterpretation(r.Analytics.LastHealthScore),
	}
}

func vitalSummaries(r session.Record, t trends.Trends) []VitalSummary {
	out := []VitalSummary{}
	for _, kind := range r.VitalKinds() {
		latest, _ := r.LatestReading(kind)
		in := vitals.InRange(latest)
		vs := VitalSummary{
			Type:        kind,
			Latest:      latest.Label(),
			Timestamp:   latest.Timestamp,
			InRange:     in,
			Status:      Status(in),
			NormalRange: vitals.RangeLabel(kind),
			Readings:    len(r.Vitals[kind]),
		}
		if vt, ok := t.Vitals[kind]; ok {
			vs.Trend = &vt
		}
		out = append(out, vs)
	}
	return out
}

// Status maps an in-range result to its label.
func Status(in *bool) string {
	switch {
	case in == nil:
		return StatusUnknown
	case *in:
		return StatusNormal
	default:
		return StatusCheckRange
	}
}

func profileSummary(p session.Profile) ProfileSummary {
	ps := ProfileSummary{
		Name:               p.Name,
		Age:                p.Age,
		Gender:             p.Gender,
		HeightCM:           p.HeightCM,
		WeightKG:           p.WeightKG,
		BMICategory:        scoring.NotAvailable,
		Allergies:          orEmpty(p.Allergies),
		ChronicConditions:  orEmpty(p.ChronicConditions),
		CurrentMedications: orEmpty(p.CurrentMedications),
		LastCheckup:        p.LastCheckup,
	}
	if bmi, ok := scoring.BMI(p); ok {
		ps.BMI = &bmi
		ps.BMICategory = scoring.BMICategory(bmi)
	}
	return ps
}

func topSymptoms(t trends.Trends) []trends.Count {
	if t.Symptoms == nil {
		return []trends.Count{}
	}
	return t.Symptoms.MostFrequent
}

// latestFirst returns the last n entries, newest first.
func latestFirst(entries []session.SymptomEntry, n int) []session.SymptomEntry {
	if len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return lo.Reverse(append([]session.SymptomEntry{}, entries...))
}

func orEmpty[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
