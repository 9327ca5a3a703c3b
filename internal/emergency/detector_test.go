package emergency

import (
	"testing"
)

func TestDetect(t *testing.T) {
	d := NewDetector(0)

	tests := []struct {
		name          string
		message       string
		wantEmergency bool
		minScore      int
		wantScore     int
	}{
		{
			name:          "Chest pain and breathing",
			message:       "I have chest pain and can't breathe",
			wantEmergency: true,
			minScore:      19,
		},
		{
			name:          "Emergency word alone",
			message:       "Is this an emergency?",
			wantEmergency: false,
			wantScore:     5,
		},
		{
			name:          "Single high weight phrase",
			message:       "My father is UNRESPONSIVE",
			wantEmergency: true,
			wantScore:     10,
		},
		{
			name:          "Sub-threshold phrase",
			message:       "I had a head injury last year",
			wantEmergency: false,
			wantScore:     8,
		},
		{
			name:          "Substring variant",
			message:       "she had two seizures today",
			wantEmergency: true,
			wantScore:     9,
		},
		{
			name:          "Nothing",
			message:       "What should I eat for breakfast?",
			wantEmergency: false,
			wantScore:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := d.Detect(tt.message)
			if res.IsEmergency != tt.wantEmergency {
				t.Errorf("Expected emergency=%v, got %v (score %d)", tt.wantEmergency, res.IsEmergency, res.Score)
			}
			if tt.minScore > 0 && res.Score < tt.minScore {
				t.Errorf("Expected score >= %d, got %d", tt.minScore, res.Score)
			}
			if tt.minScore == 0 && res.Score != tt.wantScore {
				t.Errorf("Expected score %d, got %d", tt.wantScore, res.Score)
			}
		})
	}
}

func TestDetectStacksWeights(t *testing.T) {
	d := NewDetectorWithKeywords([]Keyword{{"alpha", 5}, {"beta", 5}}, 9)

	if res := d.Detect("alpha only"); res.IsEmergency {
		t.Errorf("Expected single weight-5 phrase to stay below threshold, got %+v", res)
	}
	res := d.Detect("alpha and beta")
	if !res.IsEmergency || res.Score != 10 {
		t.Errorf("Expected stacked score 10 to trigger, got %+v", res)
	}
	if len(res.Matched) != 2 {
		t.Errorf("Expected 2 matched phrases, got %v", res.Matched)
	}
}

func TestCustomThreshold(t *testing.T) {
	d := NewDetector(20)
	if d.Threshold() != 20 {
		t.Fatalf("Expected threshold 20, got %d", d.Threshold())
	}
	if d.Detect("chest pain").IsEmergency {
		t.Error("Expected chest pain alone to fall under a threshold of 20")
	}
}
