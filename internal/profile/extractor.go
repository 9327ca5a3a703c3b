// Package profile pulls allergies, chronic conditions and medications out
// of conversational text.
package profile

import (
	"regexp"
	"strings"
)

// Sentinels for medication fields that were not mentioned
const (
	UnknownDosage   = "Unknown Dosage"
	UnknownSchedule = "As Directed/Unknown Schedule"
)

// Medication is a medication mention
type Medication struct {
	Name     string `json:"name"`
	Dosage   string `json:"dosage"`
	Schedule string `json:"schedule"`
}

// Updates is the set of profile facts found in one message. Applying it
// to a session is idempotent.
type Updates struct {
	Allergies         []string     `json:"allergies,omitempty"`
	ChronicConditions []string     `json:"chronic_conditions,omitempty"`
	Medications       []Medication `json:"medications,omitempty"`
}

// Empty reports whether nothing was found
func (u Updates) Empty() bool {
	return len(u.Allergies) == 0 && len(u.ChronicConditions) == 0 && len(u.Medications) == 0
}

// AcuteTerms are transient complaints that must not be recorded as
// chronic conditions.
var AcuteTerms = []string{"cold", "flu", "headache", "stomach ache", "fever", "cough"}

var (
	allergyPattern = regexp.MustCompile(
		`\b(?:allergic to|allergy to|allergies include)\s+([a-z\s,]+?)(?:\.|\s+and\s+|\s*but\s+|\s*$)`)
	conditionPattern = regexp.MustCompile(
		`\b(?:diagnosed with|suffers? from|have|has)\s+(?:been\s+diagnosed\s+with\s+)?([a-z0-9\s\-,/]+?)(?:\.|\s+and\s+|\s*but\s+|\s+for\s+|\s*$)`)
	medicationPattern = regexp.MustCompile(
		`\b(?:taking|take|on|prescribed|uses?)\s+([a-z][a-z\-]+)(?:\s*(\d+(?:\.\d+)?\s*(?:mg|mcg|ml|iu|g|units?|tablets?|pills?))\b)?(?:\s+((?:[a-z\d]+\s+){0,4}?(?:daily|weekly|nightly|morning|evening|times a day|hours?)))?`)
	listSplitter = regexp.MustCompile(`,|\s+and\s+`)
)

var medicationStopWords = map[string]bool{
	"it": true, "this": true, "that": true, "medication": true, "medicine": true,
	"pill": true, "pills": true, "tablet": true, "tablets": true, "drug": true, "drugs": true,
	"the": true, "my": true, "any": true, "some": true, "them": true, "care": true,
	"time": true, "board": true, "top": true, "vacation": true, "holiday": true,
}

// leading words dropped from a condition phrase
var conditionFillers = []string{"a ", "an ", "the ", "some ", "my ", "really ", "mild ", "slight ", "severe ", "bad ", "terrible "}

// condition phrases starting with these are not conditions
var conditionRejectPrefixes = []string{"to ", "no ", "not ", "been ", "had ", "you ", "it ", "any ", "question"}

// Extractor finds profile facts in a message.
type Extractor struct {
	exclusions []string
}

// NewExtractor creates an extractor. Extra exclusions (for example known
// symptom names) are added to AcuteTerms.
func NewExtractor(extraExclusions ...string) *Extractor {
	ex := make([]string, 0, len(AcuteTerms)+len(extraExclusions))
	ex = append(ex, AcuteTerms...)
	for _, e := range extraExclusions {
		ex = append(ex, strings.ToLower(strings.TrimSpace(e)))
	}
	return &Extractor{exclusions: ex}
}

// Extract returns the profile updates mentioned in message.
func (e *Extractor) Extract(message string) Updates {
	text := strings.ToLower(message)
	return Updates{
		Allergies:         e.allergies(text),
		ChronicConditions: e.conditions(text),
		Medications:       e.medications(text),
	}
}

func (e *Extractor) allergies(text string) []string {
	m := allergyPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return uniqueAppend(nil, splitList(m[1])...)
}

func (e *Extractor) conditions(text string) []string {
	var out []string
	for _, m := range conditionPattern.FindAllStringSubmatch(text, -1) {
		for _, c := range splitList(m[1]) {
			c = stripFillers(c)
			if len(c) <= 2 || e.excluded(c) || rejected(c) {
				continue
			}
			out = uniqueAppend(out, c)
		}
	}
	return out
}

func (e *Extractor) medications(text string) []Medication {
	var out []Medication
	seen := make(map[string]bool)

	for _, m := range medicationPattern.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		if len(name) <= 2 || medicationStopWords[name] || seen[name] {
			continue
		}
		seen[name] = true

		med := Medication{Name: name, Dosage: UnknownDosage, Schedule: UnknownSchedule}
		if d := strings.TrimSpace(m[2]); d != "" {
			med.Dosage = d
		}
		if s := strings.TrimSpace(m[3]); s != "" {
			med.Schedule = s
		}
		out = append(out, med)
	}
	return out
}

// excluded matches an exclusion term exactly or as the trailing words
// of the phrase ("tension headache").
func (e *Extractor) excluded(c string) bool {
	for _, term := range e.exclusions {
		if term == "" {
			continue
		}
		if c == term || strings.HasSuffix(c, " "+term) {
			return true
		}
	}
	return false
}

func rejected(c string) bool {
	for _, p := range conditionRejectPrefixes {
		if strings.HasPrefix(c, p) {
			return true
		}
	}
	return false
}

func stripFillers(c string) string {
	for changed := true; changed; {
		changed = false
		for _, f := range conditionFillers {
			if strings.HasPrefix(c, f) {
				c = strings.TrimSpace(strings.TrimPrefix(c, f))
				changed = true
			}
		}
	}
	return c
}

func splitList(s string) []string {
	var out []string
	for _, part := range listSplitter.Split(s, -1) {
		if p := strings.Join(strings.Fields(part), " "); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func uniqueAppend(list []string, items ...string) []string {
	for _, item := range items {
		dup := false
		for _, existing := range list {
			if existing == item {
				dup = true
				break
			}
		}
		if !dup {
			list = append(list, item)
		}
	}
	return list
}
