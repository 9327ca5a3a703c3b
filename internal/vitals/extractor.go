package vitals

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/themobileprof/mediguide-be/internal/units"
)

// Facts is what the extractor found in a single message. Weight and
// height are profile facts; the rest are readings.
type Facts struct {
	Readings []Reading `json:"readings,omitempty"`
	WeightKG *float64  `json:"weight_kg,omitempty"`
	HeightCM *float64  `json:"height_cm,omitempty"`
	Age      *int      `json:"age,omitempty"`
}

// Empty reports whether nothing was extracted.
func (f Facts) Empty() bool {
	return len(f.Readings) == 0 && f.WeightKG == nil && f.HeightCM == nil && f.Age == nil
}

// Summary renders the facts as name -> display value.
func (f Facts) Summary() map[string]string {
	out := make(map[string]string)
	for _, r := range f.Readings {
		out[string(r.Kind)] = r.Label()
	}
	if f.WeightKG != nil {
		out["weight_kg"] = trimFloat(*f.WeightKG) + " kg"
	}
	if f.HeightCM != nil {
		out["height_cm"] = trimFloat(*f.HeightCM) + " cm"
	}
	if f.Age != nil {
		out["age"] = strconv.Itoa(*f.Age)
	}
	return out
}

// rule extracts at most one fact from a message. When skip rejects a
// match, later matches of the same pattern are tried.
type rule struct {
	name    string
	pattern *regexp.Regexp
	skip    func(message string, idx []int) bool
	apply   func(m []string, f *Facts) bool
}

// Extractor runs an ordered rule list over a message. Rules sharing a
// name are alternatives: the first one that matches wins.
type Extractor struct {
	rules []rule
}

const lead = `\s*(?:is|was|:|)\s*`

var unitAfterNumber = regexp.MustCompile(`^\s*(?:cm|centimeters|m\b|meters|ft|feet|'|kg|kilos|lb|lbs|pounds|%|bpm|mg)`)

// NewExtractor creates an extractor with the built-in rules.
func NewExtractor() *Extractor {
	return &Extractor{rules: []rule{
		{
			name:    "blood_pressure",
			pattern: regexp.MustCompile(`(?i)\b(?:blood pressure|bp)` + lead + `(\d{2,3})\s*/\s*(\d{2,3})`),
			apply: func(m []string, f *Facts) bool {
				s, err1 := strconv.Atoi(m[1])
				d, err2 := strconv.Atoi(m[2])
				if err1 != nil || err2 != nil {
					return false
				}
				f.Readings = append(f.Readings, NewPressureReading(s, d))
				return true
			},
		},
		{
			name:    "temperature",
			pattern: regexp.MustCompile(`(?i)\b(?:temperature|temp)` + lead + `(\d{2,3}(?:\.\d)?)\s*(?:°|degrees)?\s*(?:([cf])\b)?`),
			apply: func(m []string, f *Facts) bool {
				v, ok := units.ParseFloat(m[1])
				if !ok {
					return false
				}
				t := units.NormalizeTemperature(v, m[2])
				f.Readings = append(f.Readings, NewScalarReading(Temperature, t.Value, t.Unit))
				return true
			},
		},
		{
			name:    "heart_rate",
			pattern: regexp.MustCompile(`(?i)\b(?:heart rate|hr|pulse)` + lead + `(\d{2,3})\s*(?:bpm)?`),
			apply: func(m []string, f *Facts) bool {
				v, ok := units.ParseFloat(m[1])
				if !ok {
					return false
				}
				f.Readings = append(f.Readings, NewScalarReading(HeartRate, v, UnitBPM))
				return true
			},
		},
		{
			name:    "blood_sugar",
			pattern: regexp.MustCompile(`(?i)\b(?:blood sugar|glucose|sugar level)` + lead + `(\d{1,3}(?:\.\d)?)\s*(mg/dl|mmol/l)?`),
			apply: func(m []string, f *Facts) bool {
				v, ok := units.ParseFloat(m[1])
				if !ok {
					return false
				}
				unit := UnitMGDL
				if strings.EqualFold(m[2], "mmol/l") {
					unit = UnitMMOL
				}
				f.Readings = append(f.Readings, NewScalarReading(BloodSugar, v, unit))
				return true
			},
		},
		{
			name:    "oxygen_saturation",
			pattern: regexp.MustCompile(`(?i)\b(?:spo2|oxygen saturation|o2 sat)` + lead + `(\d{2,3})\s*%?`),
			apply: func(m []string, f *Facts) bool {
				v, ok := units.ParseFloat(m[1])
				if !ok {
					return false
				}
				f.Readings = append(f.Readings, NewScalarReading(OxygenSaturation, v, UnitPct))
				return true
			},
		},
		{
			name:    "weight",
			pattern: regexp.MustCompile(`(?i)\b(?:weight|weighs|weigh)` + lead + `(\d{2,4}(?:\.\d)?)\s*(kg|kilos|kilograms|lbs|lb|pounds)\b`),
			apply: func(m []string, f *Facts) bool {
				v, ok := units.ParseFloat(m[1])
				if !ok {
					return false
				}
				kg, ok := units.NormalizeWeight(v, m[2])
				if !ok {
					return false
				}
				f.WeightKG = &kg
				return true
			},
		},
		// Height alternatives, tried in this order.
		{
			name:    "height",
			pattern: regexp.MustCompile(`(?i)\b(?:height|tall)` + lead + `(\d{2,3}(?:\.\d)?)\s*(cm|centimeters)\b`),
			apply:   applyHeight,
		},
		{
			name:    "height",
			pattern: regexp.MustCompile(`(?i)\b(?:height|tall)` + lead + `(\d(?:\.\d{1,2})?)\s*(m|meters)\b`),
			apply:   applyHeight,
		},
		{
			name:    "height",
			pattern: regexp.MustCompile(`(?i)\b(?:height|tall)` + lead + `(\d+)\s*(?:ft|feet|')(?:\s*(\d{1,2})\s*(?:in|inches|"))?`),
			apply: func(m []string, f *Facts) bool {
				feet, ok := units.ParseFloat(m[1])
				if !ok {
					return false
				}
				var inches float64
				if m[2] != "" {
					inches, _ = units.ParseFloat(m[2])
				}
				cm := units.NormalizeHeightFeetInches(feet, inches)
				f.HeightCM = &cm
				return true
			},
		},
		{
			name:    "age",
			pattern: regexp.MustCompile(`(?i)\b(?:age|aged)\s*(\d{1,3})\b|\bI(?: am|'m)\s*(\d{1,3})\s*(?:years? old)?\b`),
			skip:    measurementFollows,
			apply: func(m []string, f *Facts) bool {
				raw := m[1]
				if raw == "" {
					raw = m[2]
				}
				age, err := strconv.Atoi(raw)
				if err != nil {
					return false
				}
				f.Age = &age
				return true
			},
		},
	}}
}

func applyHeight(m []string, f *Facts) bool {
	v, ok := units.ParseFloat(m[1])
	if !ok {
		return false
	}
	cm, ok := units.NormalizeHeight(v, m[2])
	if !ok {
		return false
	}
	f.HeightCM = &cm
	return true
}

// Extract pulls every recognisable vital from the message. Each vital
// is independent: a miss on one never blocks the others.
func (e *Extractor) Extract(message string) Facts {
	var facts Facts
	done := make(map[string]bool)

	for _, r := range e.rules {
		if done[r.name] {
			continue
		}
		for _, idx := range r.pattern.FindAllStringSubmatchIndex(message, -1) {
			if r.skip != nil && r.skip(message, idx) {
				continue
			}
			if r.apply(submatches(message, idx), &facts) {
				done[r.name] = true
				break
			}
		}
	}
	return facts
}

// measurementFollows rejects "I'm 180 cm tall" style matches for age.
func measurementFollows(message string, idx []int) bool {
	return unitAfterNumber.MatchString(message[idx[1]:])
}

func submatches(s string, idx []int) []string {
	out := make([]string, len(idx)/2)
	for i := range out {
		if idx[2*i] >= 0 {
			out[i] = s[idx[2*i]:idx[2*i+1]]
		}
	}
	return out
}
