package report

import (
	"testing"
	"time"

	"github.com/themobileprof/mediguide-be/internal/scoring"
	"github.com/themobileprof/mediguide-be/internal/session"
	"github.com/themobileprof/mediguide-be/internal/vitals"
)

func seeded(t *testing.T) (*Builder, session.Record) {
	t.Helper()
	now := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	sess := session.NewStore(session.Options{Clock: clock}).GetOrCreate("user-9")

	sess.Do(func(r *session.Record) {
		_ = r.UpdateProfile(session.FieldHeightCM, 180.0)
		_ = r.UpdateProfile(session.FieldWeightKG, 81.0)
		r.AddVitalSign(vitals.NewScalarReading(vitals.HeartRate, 70, vitals.UnitBPM))
		r.AddVitalSign(vitals.NewScalarReading(vitals.HeartRate, 110, vitals.UnitBPM))
		r.AddVitalSign(vitals.NewScalarReading(vitals.Weight, 81, vitals.UnitKG))
		for _, s := range []string{"cough", "fever", "cough", "headache", "nausea", "fatigue", "cough"} {
			r.LogSymptom(s, "", "")
		}
		r.AddMedicationReminder("Lisinopril", "10mg", "daily", "", "")
		r.AddWellnessActivity(session.ActivityExercise, "", "")
		r.AddRecommendation("Stay hydrated", "nutrition")
		scoring.NewScorer(scoring.DefaultConfig(), clock).Update(r)
	})
	return NewBuilder(Config{}, clock), sess.Snapshot()
}

func TestDashboard(t *testing.T) {
	b, rec := seeded(t)
	d := b.Dashboard(rec)

	if d.UserID != "user-9" {
		t.Errorf("Expected user-9, got %s", d.UserID)
	}
	if d.Score.Score == nil || d.Score.Trend == nil || d.Score.Trend.Direction != "stable" {
		t.Errorf("Expected a score with an initial stable trend, got %+v", d.Score)
	}

	if len(d.RecentSymptoms) != 5 {
		t.Fatalf("Expected 5 recent symptoms, got %d", len(d.RecentSymptoms))
	}
	if d.RecentSymptoms[0].Symptom != "cough" || d.RecentSymptoms[4].Symptom != "cough" {
		t.Errorf("Expected newest first, got %v", d.RecentSymptoms)
	}
	if len(d.TopSymptoms) != 3 || d.TopSymptoms[0].Name != "cough" || d.TopSymptoms[0].Count != 3 {
		t.Errorf("Unexpected top symptoms %v", d.TopSymptoms)
	}

	if len(d.Vitals) != 2 {
		t.Fatalf("Expected 2 vitals, got %d", len(d.Vitals))
	}
	hr := d.Vitals[0]
	if hr.Type != vitals.HeartRate || hr.Latest != "110 bpm" || hr.Status != StatusCheckRange {
		t.Errorf("Unexpected heart rate summary %+v", hr)
	}
	if hr.Trend == nil || hr.Trend.Direction != "increasing" {
		t.Errorf("Expected an increasing heart rate trend, got %+v", hr.Trend)
	}
	if w := d.Vitals[1]; w.Status != StatusUnknown || w.Trend != nil {
		t.Errorf("Expected weight with unknown status and no trend, got %+v", w)
	}

	if d.Profile.BMI == nil || *d.Profile.BMI != 25 || d.Profile.BMICategory != scoring.Overweight {
		t.Errorf("Unexpected profile %+v", d.Profile)
	}
	if len(d.Medications) != 1 {
		t.Errorf("Expected 1 medication, got %d", len(d.Medications))
	}
}

func TestReport(t *testing.T) {
	b, rec := seeded(t)
	r := b.Report(rec)

	if len(r.Symptoms) != 7 {
		t.Errorf("Expected all 7 symptoms, got %d", len(r.Symptoms))
	}
	if r.ActivityCounts[session.ActivityExercise] != 1 {
		t.Errorf("Expected 1 exercise, got %v", r.ActivityCounts)
	}
	if len(r.ActionItems) == 0 || r.ActionItems[0] != "Review vital signs potentially outside normal ranges with your healthcare provider." {
		t.Errorf("Expected vital action item first, got %v", r.ActionItems)
	}
	if len(r.ActionItems) > 5 {
		t.Errorf("Expected at most 5 action items, got %d", len(r.ActionItems))
	}
	if r.Score.Interpretation == "" || r.Disclaimer == "" {
		t.Error("Expected interpretation and disclaimer")
	}
	if len(r.Recommendations) != 1 {
		t.Errorf("Expected 1 recommendation, got %d", len(r.Recommendations))
	}
}

func TestEmptyViews(t *testing.T) {
	sess := session.NewStore(session.Options{}).GetOrCreate("new")
	b := NewBuilder(DefaultConfig(), nil)

	d := b.Dashboard(sess.Snapshot())
	if d.Score.Score != nil || d.Score.Trend != nil {
		t.Errorf("Expected no score yet, got %+v", d.Score)
	}
	if d.Vitals == nil || d.RecentSymptoms == nil || d.TopSymptoms == nil || d.Medications == nil {
		t.Error("Expected empty lists rather than nil")
	}
	if d.Profile.BMICategory != scoring.NotAvailable {
		t.Errorf("Expected N/A BMI category, got %s", d.Profile.BMICategory)
	}
}

func TestStatus(t *testing.T) {
	yes, no := true, false
	tests := []struct {
		in   *bool
		want string
	}{
		{nil, StatusUnknown},
		{&yes, StatusNormal},
		{&no, StatusCheckRange},
	}
	for _, tt := range tests {
		if got := Status(tt.in); got != tt.want {
			t.Errorf("Expected %s, got %s", tt.want, got)
		}
	}
}
