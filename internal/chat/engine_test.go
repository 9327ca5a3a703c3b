package chat

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/themobileprof/mediguide-be/internal/advice"
	"github.com/themobileprof/mediguide-be/internal/classifier"
	"github.com/themobileprof/mediguide-be/internal/emergency"
	"github.com/themobileprof/mediguide-be/internal/knowledge"
	"github.com/themobileprof/mediguide-be/internal/profile"
	"github.com/themobileprof/mediguide-be/internal/report"
	"github.com/themobileprof/mediguide-be/internal/scoring"
	"github.com/themobileprof/mediguide-be/internal/session"
	"github.com/themobileprof/mediguide-be/internal/symptoms"
	"github.com/themobileprof/mediguide-be/internal/trends"
	"github.com/themobileprof/mediguide-be/internal/vitals"
	"github.com/themobileprof/mediguide-be/internal/wellness"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestEngine(t *testing.T) (*Engine, *session.Store, *testClock) {
	t.Helper()
	kb, err := knowledge.Load()
	if err != nil {
		t.Fatalf("Failed to load reference data: %v", err)
	}
	clock := &testClock{now: time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)}
	store := session.NewStore(session.Options{Clock: clock.Now})

	engine := NewEngine(Deps{
		Store:      store,
		Emergency:  emergency.NewDetector(emergency.DefaultThreshold),
		Vitals:     vitals.NewExtractor(),
		Profile:    profile.NewExtractor(kb.Symptoms()...),
		Symptoms:   symptoms.NewMatcher(kb),
		Classifier: classifier.NewClassifier(),
		Activities: wellness.NewDetector(),
		Tips:       wellness.NewTipSelector(kb, wellness.DefaultTipEvery, func(int) int { return 0 }),
		Resources:  kb,
		Scorer:     scoring.NewScorer(scoring.DefaultConfig(), clock.Now),
		Trends:     trends.NewAnalyzer(trends.DefaultConfig(), clock.Now),
		Views:      report.NewBuilder(report.DefaultConfig(), clock.Now),
	}, DefaultScoreEvery)
	return engine, store, clock
}

func TestProcessValidation(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name    string
		ctx     context.Context
		userID  string
		content string
		wantErr error
	}{
		{"empty message", context.Background(), "u1", "   ", ErrEmptyMessage},
		{"missing user", context.Background(), "", "hello", ErrMissingUser},
		{"canceled context", canceled, "u1", "hello", context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Process(tt.ctx, tt.userID, tt.content)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestProcessSymptoms(t *testing.T) {
	engine, store, _ := newTestEngine(t)

	res, err := engine.Process(context.Background(), "u1", "I have a severe headache and nausea")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, want := range []string{"headache", "nausea"} {
		found := false
		for _, s := range res.ReportedSymptoms {
			if s == want {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected %s in reported symptoms %v", want, res.ReportedSymptoms)
		}
	}
	if len(res.Conditions) == 0 || res.Conditions[0].Condition != "Migraine" {
		t.Errorf("Expected Migraine first, got %v", res.Conditions)
	}
	if res.IsEmergency {
		t.Error("Expected no emergency")
	}
	if len(res.Advisories) != 1 || res.Advisories[0].Kind != advice.KindSymptomDisclaimer {
		t.Errorf("Expected only the symptom disclaimer, got %v", res.Advisories)
	}
	if res.Tip == nil {
		t.Error("Expected a tip on the first interaction")
	}
	if len(res.Resources) == 0 || res.Resources[0].Category != "General Health" {
		t.Errorf("Expected General Health resources first, got %v", res.Resources)
	}

	sess, _ := store.Get("u1")
	rec := sess.Snapshot()
	severity := map[string]string{}
	for _, s := range rec.Symptoms {
		severity[s.Symptom] = s.Severity
	}
	if severity["headache"] != symptoms.Severe || severity["nausea"] != symptoms.Moderate {
		t.Errorf("Unexpected severities %v", severity)
	}
	if len(rec.Profile.ChronicConditions) != 0 {
		t.Errorf("Expected no chronic conditions, got %v", rec.Profile.ChronicConditions)
	}
	if len(rec.Recommendations) != 1 {
		t.Errorf("Expected the tip to be recorded, got %d recommendations", len(rec.Recommendations))
	}
	if len(rec.Messages) != 2 || rec.Messages[1].Role != session.RoleBot || rec.Messages[1].Content != res.Reply {
		t.Errorf("Expected user and bot messages, got %+v", rec.Messages)
	}
}

func TestProcessEmergency(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	res, err := engine.Process(context.Background(), "u1", "I have chest pain and can't breathe")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !res.IsEmergency || res.EmergencyScore < 19 {
		t.Errorf("Expected emergency with score >= 19, got %v/%d", res.IsEmergency, res.EmergencyScore)
	}
	if len(res.Advisories) != 1 || res.Advisories[0].Kind != advice.KindEmergency {
		t.Errorf("Expected only the emergency advisory, got %v", res.Advisories)
	}
	if res.Tip != nil || len(res.Resources) != 0 || res.Guidance != nil {
		t.Errorf("Expected no tip, resources or guidance during an emergency, got %+v", res)
	}
	if res.Reply != advice.Get(advice.KindEmergency).Content {
		t.Errorf("Expected emergency reply, got %q", res.Reply)
	}
}

func TestProcessVitalsAndProfile(t *testing.T) {
	engine, store, _ := newTestEngine(t)

	res, err := engine.Process(context.Background(), "u1", "bp 130/85, pulse 90 and I weigh 154 lbs")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.Facts["blood_pressure"] != "130/85 mmHg" || res.Facts["heart_rate"] != "90 bpm" {
		t.Errorf("Unexpected facts %v", res.Facts)
	}
	if len(res.Advisories) == 0 || res.Advisories[0].Kind != advice.KindFactsNoted {
		t.Errorf("Expected facts noted advisory, got %v", res.Advisories)
	}

	sess, _ := store.Get("u1")
	rec := sess.Snapshot()
	if len(rec.Vitals[vitals.BloodPressure]) != 1 || len(rec.Vitals[vitals.HeartRate]) != 1 {
		t.Errorf("Expected one pressure and one heart rate reading, got %v", rec.Vitals)
	}
	if len(rec.Vitals[vitals.Weight]) != 1 {
		t.Errorf("Expected a weight reading, got %v", rec.Vitals[vitals.Weight])
	}
	if rec.Profile.WeightKG == nil || math.Abs(*rec.Profile.WeightKG-69.9) > 0.1 {
		t.Errorf("Expected weight 69.9, got %v", rec.Profile.WeightKG)
	}
}

func TestProcessMedicationIdempotent(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	ctx := context.Background()

	for _, msg := range []string{"I take lisinopril 10mg daily", "I take Lisinopril 10mg daily"} {
		if _, err := engine.Process(ctx, "u1", msg); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	sess, _ := store.Get("u1")
	rec := sess.Snapshot()
	if len(rec.Medications) != 1 {
		t.Fatalf("Expected 1 reminder, got %d", len(rec.Medications))
	}
	if rec.Medications[0].Dosage != "10mg" || rec.Medications[0].Schedule != "daily" {
		t.Errorf("Unexpected reminder %+v", rec.Medications[0])
	}
	if len(rec.Profile.CurrentMedications) != 1 {
		t.Errorf("Expected 1 current medication, got %v", rec.Profile.CurrentMedications)
	}
}

func TestProcessScoresEveryThirdMessage(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		res, err := engine.Process(ctx, "u1", "hello there")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if res.InteractionCount != i {
			t.Errorf("Expected interaction %d, got %d", i, res.InteractionCount)
		}
		if i < 3 && res.Score != nil {
			t.Errorf("Expected no score on message %d, got %d", i, *res.Score)
		}
		if i == 3 && (res.Score == nil || *res.Score != 70) {
			t.Errorf("Expected score 70 on message 3, got %v", res.Score)
		}
	}
}

func TestProcessActivityDedup(t *testing.T) {
	engine, store, clock := newTestEngine(t)
	ctx := context.Background()

	steps := []struct {
		advance time.Duration
		logged  int
	}{
		{0, 1},
		{30 * time.Minute, 0},
		{2 * time.Hour, 1},
	}

	for i, step := range steps {
		clock.Advance(step.advance)
		res, err := engine.Process(ctx, "u1", "I went to the gym today")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(res.Activities) != step.logged {
			t.Errorf("Step %d: expected %d activities logged, got %v", i, step.logged, res.Activities)
		}
	}

	sess, _ := store.Get("u1")
	if got := len(sess.Snapshot().Activities); got != 2 {
		t.Errorf("Expected 2 exercise entries, got %d", got)
	}
}

func TestProcessScoreTrendOnlyOnScoredTurns(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		res, err := engine.Process(ctx, "u1", "hello there")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if i == 4 {
			if res.ScoreUpdated || res.Trends.HealthScore != nil {
				t.Errorf("Expected no score trend on an unscored turn, got %+v", res.Trends.HealthScore)
			}
			if res.Score == nil || *res.Score != 70 {
				t.Errorf("Expected the last known score 70, got %v", res.Score)
			}
		}
	}
}

func TestViewsRefreshScore(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.Process(ctx, "u1", "My pulse is 65 this morning"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	d, err := engine.Dashboard(ctx, "u1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	// base 70 plus 3 for an in-range heart rate
	if d.Score.Score == nil || *d.Score.Score != 73 {
		t.Errorf("Expected refreshed score 73, got %v", d.Score.Score)
	}
	if len(d.Vitals) != 1 || d.Vitals[0].Status != report.StatusNormal {
		t.Errorf("Expected one normal vital, got %+v", d.Vitals)
	}

	tr, err := engine.Trends(ctx, "u1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if tr.HealthScore == nil || tr.HealthScore.Direction != trends.ScoreStable {
		t.Errorf("Expected a stable score trend, got %+v", tr.HealthScore)
	}

	r, err := engine.Report(ctx, "u1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if r.Disclaimer == "" {
		t.Error("Expected a report disclaimer")
	}

	if _, err := engine.Dashboard(ctx, ""); !errors.Is(err, ErrMissingUser) {
		t.Errorf("Expected ErrMissingUser, got %v", err)
	}
}

func TestViewsUnknownUser(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.Dashboard(ctx, "stranger"); !errors.Is(err, ErrNoSession) {
		t.Errorf("Expected ErrNoSession, got %v", err)
	}
	if _, err := engine.Report(ctx, "stranger"); !errors.Is(err, ErrNoSession) {
		t.Errorf("Expected ErrNoSession, got %v", err)
	}
	if _, err := engine.Trends(ctx, "stranger"); !errors.Is(err, ErrNoSession) {
		t.Errorf("Expected ErrNoSession, got %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("Expected no session to be created, got %d", store.Len())
	}
}

func TestConditions(t *testing.T) {
	engine, store, _ := newTestEngine(t)

	matches, reported := engine.Conditions("fever and cough")
	if len(matches) == 0 || len(reported) != 2 {
		t.Errorf("Expected matches for two symptoms, got %v / %v", matches, reported)
	}
	if store.Len() != 0 {
		t.Errorf("Expected no session to be created, got %d", store.Len())
	}

	if _, reported := engine.Conditions("all good"); reported == nil {
		t.Error("Expected an empty slice, not nil")
	}
}
