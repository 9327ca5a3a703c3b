package symptoms

import (
	"regexp"
	"strings"
)

// Severity levels
const (
	Mild     = "mild"
	Moderate = "moderate"
	Severe   = "severe"
)

type severityLevel struct {
	level    string
	keywords []string
}

// checked in this order; the first hit wins
var severityLevels = []severityLevel{
	{Severe, []string{"severe", "intense", "unbearable", "worst", "bad", "terrible"}},
	{Mild, []string{"mild", "slight", "minor", "a little", "bit of a"}},
	{Moderate, []string{"moderate", "noticeable", "significant"}},
}

type severityKeyword struct {
	level   string
	pattern *regexp.Regexp
}

// compiled once, in severityLevels order
var severityKeywords = func() []severityKeyword {
	var out []severityKeyword
	for _, lvl := range severityLevels {
		for _, kw := range lvl.keywords {
			out = append(out, severityKeyword{lvl.level, regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)})
		}
	}
	return out
}()

const spaces = " \t\n\r\f\v"

// InferSeverity looks for a severity keyword adjacent to the symptom in
// the message: "<keyword> <symptom>", "<symptom> <keyword>" or
// "<symptom> is|was <keyword>". The default is moderate.
func InferSeverity(message, symptom string) string {
	sym := strings.ToLower(strings.TrimSpace(symptom))
	if sym == "" {
		return Moderate
	}
	text := strings.ToLower(message)
	if !strings.Contains(text, sym) {
		return Moderate
	}
	for _, kw := range severityKeywords {
		for _, loc := range kw.pattern.FindAllStringIndex(text, -1) {
			if symptomFollows(text[loc[1]:], sym) || symptomPrecedes(text[:loc[0]], sym) {
				return kw.level
			}
		}
	}
	return Moderate
}

// symptomFollows reports whether rest is whitespace then the symptom as
// a whole word.
func symptomFollows(rest, sym string) bool {
	after := strings.TrimLeft(rest, spaces)
	if len(after) == len(rest) || !strings.HasPrefix(after, sym) {
		return false
	}
	return len(after) == len(sym) || !isWordByte(after[len(sym)])
}

// symptomPrecedes reports whether head ends with the symptom, optionally
// followed by "is" or "was", then whitespace.
func symptomPrecedes(head, sym string) bool {
	trimmed := strings.TrimRight(head, spaces)
	if len(trimmed) == len(head) {
		return false
	}
	if endsWithWord(trimmed, sym) {
		return true
	}
	for _, verb := range []string{"is", "was"} {
		if !endsWithWord(trimmed, verb) {
			continue
		}
		before := trimmed[:len(trimmed)-len(verb)]
		inner := strings.TrimRight(before, spaces)
		if len(inner) < len(before) && endsWithWord(inner, sym) {
			return true
		}
	}
	return false
}

func endsWithWord(s, word string) bool {
	if !strings.HasSuffix(s, word) {
		return false
	}
	i := len(s) - len(word)
	return i == 0 || !isWordByte(s[i-1])
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

type phrase struct {
	label   string
	pattern *regexp.Regexp
}

// checked in order, first match wins
var frequencyPhrases = []phrase{
	{"constant", regexp.MustCompile(`\b(?:constant|all the time|always|won't stop|continuous)\b`)},
	{"daily", regexp.MustCompile(`\b(?:daily|every day|everyday)\b`)},
	{"frequent", regexp.MustCompile(`\b(?:often|frequently|multiple times)\b`)},
	{"occasional", regexp.MustCompile(`\b(?:sometimes|occasionally|now and then)\b`)},
	{"once", regexp.MustCompile(`\b(?:once|one time|just happened)\b`)},
}

var onsetPhrases = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:right now|just now|currently)\b`),
	regexp.MustCompile(`\b(?:today|this morning|this afternoon|this evening|tonight)\b`),
	regexp.MustCompile(`\byesterday\b`),
	regexp.MustCompile(`\b\d+\s*days?\s*ago\b`),
	regexp.MustCompile(`\b\d+\s*weeks?\s*ago\b`),
	regexp.MustCompile(`\bfor (?:the past |the last )?\d+\s*(?:hours?|days?|weeks?)\b`),
	regexp.MustCompile(`\b(?:this|last) week\b`),
	regexp.MustCompile(`\b(?:recently|lately)\b`),
	regexp.MustCompile(`\b(?:few|couple|several) days\b`),
}

// RelatedFactors summarises onset and frequency phrases in the message,
// e.g. "onset: 3 days ago; frequency: daily". Empty when none are found.
func RelatedFactors(message string) string {
	text := strings.ToLower(message)
	var parts []string
	for _, p := range onsetPhrases {
		if m := p.FindString(text); m != "" {
			parts = append(parts, "onset: "+m)
			break
		}
	}
	for _, f := range frequencyPhrases {
		if f.pattern.MatchString(text) {
			parts = append(parts, "frequency: "+f.label)
			break
		}
	}
	return strings.Join(parts, "; ")
}
