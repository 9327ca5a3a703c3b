// Package emergency scores messages against weighted urgent-care keywords.
package emergency

import (
	"strings"
)

// DefaultThreshold is the score at which a message is treated as an emergency.
const DefaultThreshold = 9

// Keyword is a weighted emergency phrase.
type Keyword struct {
	Phrase string
	Weight int
}

// Result is the outcome of scanning one message.
type Result struct {
	IsEmergency bool     `json:"is_emergency"`
	Score       int      `json:"score"`
	Matched     []string `json:"matched,omitempty"`
}

// DefaultKeywords is the built-in lexicon. Phrases match as plain
// substrings of the lowercased message, so "seizures" hits "seizure".
var DefaultKeywords = []Keyword{
	{"chest pain", 10},
	{"severe pain", 8},
	{"cannot breathe", 10},
	{"can't breathe", 10},
	{"difficulty breathing", 9},
	{"shortness of breath", 8},
	{"stroke symptoms", 10},
	{"sudden weakness", 9},
	{"sudden numbness", 9},
	{"facial droop", 10},
	{"slurred speech", 9},
	{"severe bleeding", 9},
	{"uncontrolled bleeding", 10},
	{"loss of consciousness", 10},
	{"unconscious", 10},
	{"unresponsive", 10},
	{"seizure", 9},
	{"collapse", 8},
	{"head injury", 8},
	{"major trauma", 8},
	{"overdose", 9},
	{"poisoning", 8},
	{"suicidal", 10},
	{"want to die", 10},
	{"kill myself", 10},
	{"allergic reaction severe", 8},
	{"anaphylaxis", 10},
	{"emergency", 5},
}

// Detector flags life-threatening language.
type Detector struct {
	keywords  []Keyword
	threshold int
}

// NewDetector creates a detector with the default lexicon. A threshold
// of zero or less selects DefaultThreshold.
func NewDetector(threshold int) *Detector {
	return NewDetectorWithKeywords(DefaultKeywords, threshold)
}

// NewDetectorWithKeywords creates a detector over a custom lexicon.
func NewDetectorWithKeywords(keywords []Keyword, threshold int) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	kws := make([]Keyword, len(keywords))
	for i, k := range keywords {
		kws[i] = Keyword{Phrase: strings.ToLower(k.Phrase), Weight: k.Weight}
	}
	return &Detector{keywords: kws, threshold: threshold}
}

// Threshold returns the configured emergency threshold.
func (d *Detector) Threshold() int {
	return d.threshold
}

// Detect scores a message. Weights of all matched phrases are summed.
func (d *Detector) Detect(message string) Result {
	text := strings.ToLower(message)

	var res Result
	for _, k := range d.keywords {
		if strings.Contains(text, k.Phrase) {
			res.Score += k.Weight
			res.Matched = append(res.Matched, k.Phrase)
		}
	}
	res.IsEmergency = res.Score >= d.threshold
	return res
}
