// Package units converts free-form measurements to canonical units.
package units

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Temperature units
const (
	Celsius    = "°C"
	Fahrenheit = "°F"
)

// FahrenheitThreshold is the magnitude above which an unlabelled
// temperature is read as Fahrenheit. A value equal to the threshold is Celsius.
const FahrenheitThreshold = 50.0

const (
	poundsToKG = 0.453592
	inchToCM   = 2.54
)

var feetInchesPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:ft|feet|foot|')\s*(?:(\d{1,2})\s*(?:in|inches|inch|"))?`)

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// NormalizeWeight converts a weight to kilograms.
func NormalizeWeight(value float64, unit string) (float64, bool) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "lb", "lbs", "pound", "pounds":
		return Round1(value * poundsToKG), true
	case "kg", "kgs", "kilo", "kilos", "kilogram", "kilograms":
		return value, true
	}
	return 0, false
}

// NormalizeHeight converts a height in cm or meters to centimeters.
func NormalizeHeight(value float64, unit string) (float64, bool) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "cm", "centimeter", "centimeters":
		return Round1(value), true
	case "m", "meter", "meters", "metre", "metres":
		return Round1(value * 100), true
	}
	return 0, false
}

// NormalizeHeightFeetInches converts feet and inches to centimeters.
func NormalizeHeightFeetInches(feet, inches float64) float64 {
	return Round1((feet*12 + inches) * inchToCM)
}

// ParseHeight reads heights like "5 ft 10 in", "5'10\"", "180 cm" or "1.8 m".
func ParseHeight(text string) (float64, bool) {
	if m := feetInchesPattern.FindStringSubmatch(text); m != nil {
		feet, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		var inches float64
		if m[2] != "" {
			inches, _ = strconv.ParseFloat(m[2], 64)
		}
		return NormalizeHeightFeetInches(feet, inches), true
	}

	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return 0, false
	}
	num, unit := splitNumberUnit(fields)
	value, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	return NormalizeHeight(value, unit)
}

// ParseFloat parses a decimal string, reporting false on garbage.
func ParseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// splitNumberUnit handles "180 cm" as well as "180cm".
func splitNumberUnit(fields []string) (string, string) {
	if len(fields) >= 2 {
		return fields[0], fields[1]
	}
	s := fields[0]
	i := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i:]
}

// Temperature is a temperature value with its unit.
type Temperature struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// NormalizeTemperature labels a temperature. When unit is empty the unit
// is inferred from magnitude.
func NormalizeTemperature(value float64, unit string) Temperature {
	switch strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(unit, "°"))) {
	case "C", "CELSIUS":
		return Temperature{Value: value, Unit: Celsius}
	case "F", "FAHRENHEIT":
		return Temperature{Value: value, Unit: Fahrenheit}
	}
	if value > FahrenheitThreshold {
		return Temperature{Value: value, Unit: Fahrenheit}
	}
	return Temperature{Value: value, Unit: Celsius}
}
