package advice

import (
	"time"

	"github.com/samber/lo"
	"github.com/themobileprof/mediguide-be/internal/session"
	"github.com/themobileprof/mediguide-be/internal/vitals"
)

const (
	itemVitals     = "Review vital signs potentially outside normal ranges with your healthcare provider."
	itemSevere     = "Discuss any 'Severe' symptoms logged with your healthcare provider."
	itemActivities = "Consider incorporating regular wellness activities like exercise or mindfulness into your routine."
	itemProfile    = "Consider sharing basic profile information (age, height, weight) for better context during chats."
)

var genericItems = []string{
	"Maintain a balanced diet and stay hydrated.",
	"Ensure adequate sleep (typically 7-9 hours for adults).",
	"Schedule regular check-ups with your healthcare provider for preventive care.",
}

// ActionConfig tunes report action items
type ActionConfig struct {
	RecentSymptoms int           // how many of the latest symptoms to check for severity
	ActivityWindow time.Duration // look-back for wellness activities
	MinActivities  int
	MaxItems       int
}

// DefaultActionConfig checks the last 10 symptoms and 14 days of activity.
func DefaultActionConfig() ActionConfig {
	return ActionConfig{
		RecentSymptoms: 10,
		ActivityWindow: 14 * 24 * time.Hour,
		MinActivities:  3,
		MaxItems:       5,
	}
}

// ActionItems lists follow-ups suggested by the record.
func ActionItems(r session.Record, now time.Time, cfg ActionConfig) []string {
	var items []string

	outOfRange := lo.SomeBy(r.VitalKinds(), func(k vitals.Kind) bool {
		latest, _ := r.LatestReading(k)
		in := vitals.InRange(latest)
		return in != nil && !*in
	})
	if outOfRange {
		items = append(items, itemVitals)
	}

	recent := r.Symptoms
	if len(recent) > cfg.RecentSymptoms {
		recent = recent[len(recent)-cfg.RecentSymptoms:]
	}
	if lo.SomeBy(recent, func(s session.SymptomEntry) bool { return s.Severity == "severe" }) {
		items = append(items, itemSevere)
	}

	since := now.Add(-cfg.ActivityWindow)
	activities := lo.CountBy(r.Activities, func(a session.WellnessActivity) bool { return !a.Timestamp.Before(since) })
	if activities < cfg.MinActivities {
		items = append(items, itemActivities)
	}

	p := r.Profile
	if p.Age == nil || p.HeightCM == nil || p.WeightKG == nil {
		items = append(items, itemProfile)
	}

	if len(items) < 2 {
		items = append(items, genericItems...)
	}
	return lo.Slice(items, 0, cfg.MaxItems)
}
