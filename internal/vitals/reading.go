// Package vitals extracts vital sign readings from text and checks them
// against normal ranges.
package vitals

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind identifies a vital sign
type Kind string

const (
	BloodPressure    Kind = "blood_pressure"
	HeartRate        Kind = "heart_rate"
	Temperature      Kind = "temperature"
	BloodSugar       Kind = "blood_sugar"
	OxygenSaturation Kind = "oxygen_saturation"
	Weight           Kind = "weight"
)

// Canonical units
const (
	UnitMMHg  = "mmHg"
	UnitBPM   = "bpm"
	UnitMGDL  = "mg/dL"
	UnitMMOL  = "mmol/L"
	UnitPct   = "%"
	UnitKG    = "kg"
	mmolToMGD = 18.0
)

// Pressure is a systolic/diastolic pair.
type Pressure struct {
	Systolic  int `json:"systolic"`
	Diastolic int `json:"diastolic"`
}

func (p Pressure) String() string {
	return fmt.Sprintf("%d/%d", p.Systolic, p.Diastolic)
}

// Reading is a single vital sign measurement. Blood pressure readings
// carry Pressure; every other kind carries Value.
type Reading struct {
	Kind      Kind      `json:"type"`
	Pressure  *Pressure `json:"pressure,omitempty"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
	Timestamp time.Time `json:"timestamp"`
}

// NewPressureReading builds a blood pressure reading.
func NewPressureReading(systolic, diastolic int) Reading {
	return Reading{
		Kind:     BloodPressure,
		Pressure: &Pressure{Systolic: systolic, Diastolic: diastolic},
		Value:    float64(systolic),
		Unit:     UnitMMHg,
	}
}

// NewScalarReading builds a single-valued reading.
func NewScalarReading(kind Kind, value float64, unit string) Reading {
	return Reading{Kind: kind, Value: value, Unit: unit}
}

// Numeric returns the value used for trends: systolic for blood pressure
// and mg/dL for blood sugar.
func (r Reading) Numeric() float64 {
	if r.Pressure != nil {
		return float64(r.Pressure.Systolic)
	}
	if r.Kind == BloodSugar && strings.EqualFold(r.Unit, UnitMMOL) {
		return r.Value * mmolToMGD
	}
	return r.Value
}

// Display renders the value without its unit.
func (r Reading) Display() string {
	if r.Pressure != nil {
		return r.Pressure.String()
	}
	return strconv.FormatFloat(r.Value, 'f', -1, 64)
}

// Label renders value and unit, e.g. "120/80 mmHg".
func (r Reading) Label() string {
	if r.Unit == UnitPct {
		return r.Display() + r.Unit
	}
	return r.Display() + " " + r.Unit
}
