package vitals

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/themobileprof/mediguide-be/internal/units"
)

// Range is an inclusive normal range.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies within the range, bounds included.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

func (r Range) String() string {
	return fmt.Sprintf("%s-%s", trimFloat(r.Min), trimFloat(r.Max))
}

var (
	SystolicRange    = Range{90, 120}
	DiastolicRange   = Range{60, 80}
	HeartRateRange   = Range{60, 100}
	BloodSugarRange  = Range{70, 100} // fasting, mg/dL
	TempFRange       = Range{97.0, 99.0}
	TempCRange       = Range{36.1, 37.2}
	OxygenRange      = Range{95, 100}
	scalarRanges     = map[Kind]Range{HeartRate: HeartRateRange, BloodSugar: BloodSugarRange, Temperature: TempFRange, OxygenSaturation: OxygenRange}
	pressureRangeTxt = fmt.Sprintf("%s/%s", SystolicRange, DiastolicRange)
)

// NormalRange returns the canonical range for a single-valued vital.
// Temperature is returned in Fahrenheit. Blood pressure has two ranges
// and is not covered here.
func NormalRange(kind Kind) (Range, bool) {
	r, ok := scalarRanges[kind]
	return r, ok
}

// RangeLabel is a display form of a vital's normal range, empty when unknown.
func RangeLabel(kind Kind) string {
	if kind == BloodPressure {
		return pressureRangeTxt + " " + UnitMMHg
	}
	r, ok := NormalRange(kind)
	if !ok {
		return ""
	}
	switch kind {
	case HeartRate:
		return r.String() + " " + UnitBPM
	case BloodSugar:
		return r.String() + " " + UnitMGDL
	case Temperature:
		return r.String() + " " + units.Fahrenheit + " (" + TempCRange.String() + " " + units.Celsius + ")"
	case OxygenSaturation:
		return r.String() + UnitPct
	}
	return r.String()
}

// HasRange reports whether the vital has a known normal range.
func HasRange(kind Kind) bool {
	if kind == BloodPressure {
		return true
	}
	_, ok := scalarRanges[kind]
	return ok
}

// InRange checks a reading against its normal range. It returns nil
// when the vital has no known range.
func InRange(r Reading) *bool {
	if r.Kind == BloodPressure {
		if r.Pressure == nil {
			return boolPtr(false)
		}
		return boolPtr(pressureInRange(*r.Pressure))
	}
	rng, ok := NormalRange(r.Kind)
	if !ok {
		return nil
	}
	value := r.Value
	switch r.Kind {
	case Temperature:
		rng = temperatureRange(value, r.Unit)
	case BloodSugar:
		if strings.EqualFold(r.Unit, UnitMMOL) {
			value *= mmolToMGD
		}
	}
	return boolPtr(rng.Contains(value))
}

// ErrPressureShape and ErrPressureValue distinguish a pressure string
// that is not "S/D" from one whose parts are not integers.
var (
	ErrPressureShape = errors.New("blood pressure is not in S/D form")
	ErrPressureValue = errors.New("blood pressure component is not an integer")
)

// InRangeText checks a textual value. Blood pressure expects "S/D":
// text that does not split into two parts is out of range, while parts
// that are not integers are unknown (nil). Scalar vitals report nil when
// the text is not a number.
func InRangeText(kind Kind, text string) *bool {
	if kind == BloodPressure {
		p, err := ParsePressure(text)
		switch {
		case errors.Is(err, ErrPressureShape):
			return boolPtr(false)
		case err != nil:
			return nil
		}
		return boolPtr(pressureInRange(p))
	}
	if !HasRange(kind) {
		return nil
	}
	v, ok := units.ParseFloat(text)
	if !ok {
		return nil
	}
	return InRange(Reading{Kind: kind, Value: v})
}

// ParsePressure parses "120/80".
func ParsePressure(text string) (Pressure, error) {
	parts := strings.Split(text, "/")
	if len(parts) != 2 {
		return Pressure{}, fmt.Errorf("%w: %q", ErrPressureShape, text)
	}
	s, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Pressure{}, fmt.Errorf("%w: %q", ErrPressureValue, parts[0])
	}
	d, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Pressure{}, fmt.Errorf("%w: %q", ErrPressureValue, parts[1])
	}
	return Pressure{Systolic: s, Diastolic: d}, nil
}

func pressureInRange(p Pressure) bool {
	return SystolicRange.Contains(float64(p.Systolic)) && DiastolicRange.Contains(float64(p.Diastolic))
}

// temperatureRange picks the Celsius range for Celsius-labelled readings
// and, when unlabelled, for values at or below the Fahrenheit threshold.
func temperatureRange(value float64, unit string) Range {
	switch unit {
	case units.Celsius:
		return TempCRange
	case units.Fahrenheit:
		return TempFRange
	}
	if value > units.FahrenheitThreshold {
		return TempFRange
	}
	return TempCRange
}

func boolPtr(b bool) *bool {
	return &b
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
