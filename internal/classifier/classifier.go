// Package classifier tags messages with conversation topics.
package classifier

import (
	"regexp"
	"strings"
)

// Topic is a health subject a message touches on
type Topic string

const (
	TopicNutrition      Topic = "nutrition"
	TopicExercise       Topic = "exercise"
	TopicSleep          Topic = "sleep"
	TopicMentalHealth   Topic = "mental_health"
	TopicChronicDisease Topic = "chronic_disease"
	TopicMedication     Topic = "medication"
	TopicPreventive     Topic = "preventive_care"
	TopicSymptoms       Topic = "symptoms"
	TopicVitals         Topic = "vitals"
	TopicAllergy        Topic = "allergy"
)

// Result contains the classification result
type Result struct {
	Topics      []Topic `json:"topics"`
	Primary     Topic   `json:"primary,omitempty"`
	Confidence  float64 `json:"confidence"`
	WantsAdvice bool    `json:"wants_advice"`
}

type topicPatterns struct {
	topic    Topic
	patterns []*regexp.Regexp
}

// Classifier tags messages with health topics using keyword rules
type Classifier struct {
	topics          []topicPatterns
	advicePatterns  []*regexp.Regexp
	spaceNormalizer *regexp.Regexp
}

// NewClassifier creates a new topic classifier
func NewClassifier() *Classifier {
	return &Classifier{
		spaceNormalizer: regexp.MustCompile(`\s+`),
		topics: []topicPatterns{
			{TopicNutrition, compilePatterns([]string{
				`\b(diet|food|eating|nutrient|vitamins?|meals?|calories?|nutrition)\b`,
			})},
			{TopicExercise, compilePatterns([]string{
				`\b(workout|fitness|exercise|gym|run|cardio|strength|activity)\b`,
			})},
			{TopicSleep, compilePatterns([]string{
				`\b(sleep|insomnia|rest|tired|fatigue|nap|bedtime)\b`,
			})},
			{TopicMentalHealth, compilePatterns([]string{
				`\b(stress|anxiety|depression|mood|mental|therapy|emotions?|feeling)\b`,
			})},
			{TopicChronicDisease, compilePatterns([]string{
				`\b(diabetes|hypertension|asthma|arthritis|cholesterol|cancer)\b`,
				`\bheart disease\b`,
			})},
			{TopicMedication, compilePatterns([]string{
				`\b(drugs?|medicine|prescriptions?|pills?|dose|medications?|pharmacy)\b`,
			})},
			{TopicPreventive, compilePatterns([]string{
				`\b(checkup|check-up|screening|vaccinations?|prevention|exam)\b`,
				`\bdoctor visit\b`,
			})},
			{TopicSymptoms, compilePatterns([]string{
				`\b(pain|ache|fever|cough|headache|nausea|dizzy|symptoms?)\b`,
				`\bfeel sick\b`,
			})},
			{TopicVitals, compilePatterns([]string{
				`\b(temperature|glucose|sugar|spo2|oxygen)\b`,
				`\bblood pressure\b`,
				`\bheart rate\b`,
			})},
			{TopicAllergy, compilePatterns([]string{
				`\b(allergy|allergic|reaction|hives)\b`,
			})},
		},
		advicePatterns: compilePatterns([]string{
			`\b(advice|tips?|recommend|recommendations?|improve)\b`,
			`\bhelp with\b`,
		}),
	}
}

// Classify tags the input with every matching topic, in declaration order.
// The primary topic is the one with the most matching rules.
func (c *Classifier) Classify(input string) Result {
	normalized := c.normalizeText(input)
	if normalized == "" {
		return Result{Confidence: 0.1}
	}

	res := Result{WantsAdvice: c.matchesPatterns(normalized, c.advicePatterns)}
	best := 0
	for _, tp := range c.topics {
		n := c.countMatches(normalized, tp.patterns)
		if n == 0 {
			continue
		}
		res.Topics = append(res.Topics, tp.topic)
		if n > best {
			best = n
			res.Primary = tp.topic
		}
	}

	if len(res.Topics) == 0 {
		res.Confidence = 0.3
		return res
	}
	res.Confidence = 0.7 + float64(len(res.Topics))*0.05
	if res.Confidence > 0.95 {
		res.Confidence = 0.95
	}
	return res
}

// Strings returns topics as plain strings
func Strings(topics []Topic) []string {
	out := make([]string, len(topics))
	for i, t := range topics {
		out[i] = string(t)
	}
	return out
}

// normalizeText lowercases and collapses whitespace
func (c *Classifier) normalizeText(input string) string {
	text := strings.ToLower(strings.TrimSpace(input))
	text = c.spaceNormalizer.ReplaceAllString(text, " ")
	return strings.TrimRight(text, "!?.,;:")
}

// matchesPatterns checks if any pattern matches
func (c *Classifier) matchesPatterns(text string, patterns []*regexp.Regexp) bool {
	for _, pattern := range patterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// countMatches counts how many patterns match
func (c *Classifier) countMatches(text string, patterns []*regexp.Regexp) int {
	count := 0
	for _, pattern := range patterns {
		if pattern.MatchString(text) {
			count++
		}
	}
	return count
}

func compilePatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}
