package symptoms

import (
	"reflect"
	"testing"

	"github.com/themobileprof/mediguide-be/internal/knowledge"
)

func loadMatcher(t *testing.T) *Matcher {
	t.Helper()
	base, err := knowledge.Load()
	if err != nil {
		t.Fatalf("Failed to load reference data: %v", err)
	}
	return NewMatcher(base)
}

type staticConditions []knowledge.Condition

func (s staticConditions) Conditions() []knowledge.Condition { return s }

func TestMatchHeadacheAndNausea(t *testing.T) {
	m := loadMatcher(t)

	matches, reported := m.Match("I have a severe headache and nausea")

	for _, want := range []string{"headache", "nausea"} {
		found := false
		for _, s := range reported {
			if s == want {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected %q in reported symptoms %v", want, reported)
		}
	}

	var migraine *ConditionMatch
	for i := range matches {
		if matches[i].Condition == "Migraine" {
			migraine = &matches[i]
		}
	}
	if migraine == nil {
		t.Fatalf("Expected Migraine among %v", matches)
	}

	// severe headache + nausea out of 8 migraine symptoms
	if migraine.MatchPercentage != 25.0 {
		t.Errorf("Expected 25.0%%, got %.1f", migraine.MatchPercentage)
	}
	if matches[0].Condition != "Migraine" {
		t.Errorf("Expected Migraine to rank first, got %s", matches[0].Condition)
	}
}

func TestMatchWholeWord(t *testing.T) {
	m := loadMatcher(t)

	if _, reported := m.Match("My auras are strange"); len(reported) != 0 {
		t.Errorf("Expected no whole-word hits, got %v", reported)
	}

	matches, reported := m.Match("How is the weather?")
	if len(matches) != 0 || len(reported) != 0 {
		t.Errorf("Expected empty results, got %v / %v", matches, reported)
	}
}

func TestMatchRankingAndSpecificity(t *testing.T) {
	m := NewMatcher(staticConditions{
		{Name: "Alpha", Symptoms: []string{"itch", "rash"}},
		{Name: "Beta", Symptoms: []string{"itch", "bump"}},
		{Name: "Gamma", Symptoms: []string{"itch", "rash", "bump", "sting"}},
	})

	matches, reported := m.Match("an itch and a rash")
	if !reflect.DeepEqual(reported, []string{"itch", "rash"}) {
		t.Fatalf("Unexpected reported symptoms %v", reported)
	}

	got := make([]string, len(matches))
	for i, cm := range matches {
		got[i] = cm.Condition
	}
	// Alpha 100%, Gamma 50% with itch+rash, Beta 50% with itch only
	want := []string{"Alpha", "Gamma", "Beta"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected order %v, got %v", want, got)
	}

	// itch listed by 3 conditions, rash by 2
	if spec := m.Specificity([]string{"itch", "rash"}); spec != (0.25+1.0/3)/2 {
		t.Errorf("Unexpected specificity %v", spec)
	}
	if spec := m.Specificity([]string{"unknown"}); spec != 0 {
		t.Errorf("Expected 0 for unlisted symptom, got %v", spec)
	}
}

func TestStrongMatch(t *testing.T) {
	matches := []ConditionMatch{
		{Condition: "A", MatchPercentage: 100, MatchedSymptoms: []string{"x"}},
		{Condition: "B", MatchPercentage: 66.7, MatchedSymptoms: []string{"x", "y"}},
	}
	cm, ok := StrongMatch(matches)
	if !ok || cm.Condition != "B" {
		t.Errorf("Expected B as strong match, got %+v (ok=%v)", cm, ok)
	}
	if _, ok := StrongMatch(matches[:1]); ok {
		t.Error("Expected single-symptom match not to be strong")
	}
}

func TestInferSeverity(t *testing.T) {
	tests := []struct {
		message string
		symptom string
		want    string
	}{
		{"I have a severe headache", "headache", Severe},
		{"my cough is terrible", "cough", Severe},
		{"cough was bad last night", "cough", Severe},
		{"a slight fever today", "fever", Mild},
		{"I have a bit of a headache", "headache", Mild},
		{"noticeable fatigue", "fatigue", Moderate},
		{"I have a headache", "headache", Moderate},
		{"severe weather and a headache", "headache", Moderate},
		{"I have a severe headache", "severe headache", Moderate},
		{"mild fever", "mild fever", Moderate},
		{"a terrible severe headache", "severe headache", Severe},
		{"my severe headache is bad", "severe headache", Severe},
		{"badly bruised and a headache", "headache", Moderate},
	}

	for _, tt := range tests {
		t.Run(tt.message+"/"+tt.symptom, func(t *testing.T) {
			if got := InferSeverity(tt.message, tt.symptom); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestRelatedFactors(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"It started 3 days ago and happens daily", "onset: 3 days ago; frequency: daily"},
		{"Coughing all the time since yesterday", "onset: yesterday; frequency: constant"},
		{"I've had it for the past 2 weeks", "onset: for the past 2 weeks"},
		{"Just a cough", ""},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			if got := RelatedFactors(tt.message); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
