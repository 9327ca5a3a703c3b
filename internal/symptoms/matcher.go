// Package symptoms detects reported symptoms and ranks candidate conditions.
package symptoms

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/themobileprof/mediguide-be/internal/knowledge"
)

// ConditionSource supplies the condition table
type ConditionSource interface {
	Conditions() []knowledge.Condition
}

// ConditionMatch is a candidate condition for a message. It is a
// keyword overlap, not a diagnosis.
type ConditionMatch struct {
	Condition        string   `json:"condition"`
	MatchedSymptoms  []string `json:"matched_symptoms"`
	MatchPercentage  float64  `json:"match_percentage"`
	SpecificityScore float64  `json:"specificity_score"`
	SeverityInfo     string   `json:"severity_info"`
	Duration         string   `json:"duration,omitempty"`
	WhenToSeeDoctor  []string `json:"when_to_see_doctor,omitempty"`
	SelfCare         []string `json:"self_care,omitempty"`
}

type symptomPattern struct {
	name    string
	pattern *regexp.Regexp
}

// Matcher matches free text against the condition table
type Matcher struct {
	conditions []knowledge.Condition
	patterns   []symptomPattern
	counts     map[string]int // conditions listing each symptom
}

// NewMatcher builds whole-word patterns for every known symptom.
func NewMatcher(src ConditionSource) *Matcher {
	m := &Matcher{
		conditions: src.Conditions(),
		counts:     make(map[string]int),
	}
	for _, c := range m.conditions {
		for _, s := range lo.Uniq(c.Symptoms) {
			s = strings.ToLower(s)
			if m.counts[s] == 0 {
				m.patterns = append(m.patterns, symptomPattern{
					name:    s,
					pattern: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(s) + `\b`),
				})
			}
			m.counts[s]++
		}
	}
	return m
}

// ReportedSymptoms returns the known symptoms mentioned in message, sorted.
func (m *Matcher) ReportedSymptoms(message string) []string {
	var out []string
	for _, p := range m.patterns {
		if p.pattern.MatchString(message) {
			out = append(out, p.name)
		}
	}
	sort.Strings(out)
	return out
}

// Match returns ranked candidate conditions and the reported symptoms.
// Conditions are ordered by match percentage, then specificity, then name.
func (m *Matcher) Match(message string) ([]ConditionMatch, []string) {
	reported := m.ReportedSymptoms(message)
	if len(reported) == 0 {
		return []ConditionMatch{}, []string{}
	}
	hit := lo.SliceToMap(reported, func(s string) (string, bool) { return s, true })

	matches := make([]ConditionMatch, 0)
	for _, c := range m.conditions {
		matched := lo.Filter(c.Symptoms, func(s string, _ int) bool { return hit[s] })
		if len(matched) == 0 {
			continue
		}
		matches = append(matches, ConditionMatch{
			Condition:        c.Name,
			MatchedSymptoms:  matched,
			MatchPercentage:  round(float64(len(matched))/float64(len(c.Symptoms))*100, 1),
			SpecificityScore: round(m.Specificity(matched), 3),
			SeverityInfo:     c.Severity,
			Duration:         c.Duration,
			WhenToSeeDoctor:  c.WhenToSeeDoctor,
			SelfCare:         c.SelfCare,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.MatchPercentage != b.MatchPercentage {
			return a.MatchPercentage > b.MatchPercentage
		}
		if a.SpecificityScore != b.SpecificityScore {
			return a.SpecificityScore > b.SpecificityScore
		}
		return a.Condition < b.Condition
	})
	return matches, reported
}

// Specificity is the mean of 1/(1+n) over symptoms, where n is the number
// of conditions listing the symptom. Unlisted symptoms score 0.
func (m *Matcher) Specificity(symptoms []string) float64 {
	if len(symptoms) == 0 {
		return 0
	}
	var total float64
	for _, s := range symptoms {
		if n := m.counts[strings.ToLower(s)]; n > 0 {
			total += 1.0 / float64(n+1)
		}
	}
	return total / float64(len(symptoms))
}

// StrongMatch returns the first match covering more than half of a
// condition's symptoms with at least two hits.
func StrongMatch(matches []ConditionMatch) (ConditionMatch, bool) {
	return lo.Find(matches, func(cm ConditionMatch) bool {
		return cm.MatchPercentage > 50 && len(cm.MatchedSymptoms) >= 2
	})
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
