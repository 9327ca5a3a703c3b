// Package privacy strips personal identifiers from free text before it
// reaches the logs.
package privacy

import (
	"regexp"
	"unicode/utf8"
)

// MaxLogLength is the longest message SanitizeForLogging returns, in runes.
const MaxLogLength = 200

var (
	emailRegex = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	// 555-123-4567, (555) 123-4567, 555.123.4567, +1-555-123-4567, 555-1234
	phoneRegex = regexp.MustCompile(`(\+\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]\d{4}|\b\d{3}[-.\s]\d{4}\b`)

	ssnRegex = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)

	creditCardRegex = regexp.MustCompile(`\b\d{4}[-\s]\d{4}[-\s]\d{4}[-\s]\d{4}\b`)

	medicalIDRegex = regexp.MustCompile(`(?i)\b(mrn|medical record|patient id|insurance id)[-:#\s]*[a-z0-9]{6,}\b`)

	// Dates of birth: "born on 04/12/1988", "DOB: 1988-04-12"
	dobRegex = regexp.MustCompile(`(?i)\b(dob|date of birth|born on)[-:\s]*\d{1,4}[-/.]\d{1,2}[-/.]\d{1,4}\b`)
)

// Order matters: SSNs and cards must be replaced before the looser
// phone pattern sees their digit groups.
var rules = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{emailRegex, "[EMAIL]"},
	{ssnRegex, "[SSN]"},
	{creditCardRegex, "[CARD]"},
	{dobRegex, "[DOB]"},
	{medicalIDRegex, "[MEDICAL_ID]"},
	{phoneRegex, "[PHONE]"},
}

// RedactSensitiveData removes PII from text
func RedactSensitiveData(text string) string {
	for _, r := range rules {
		text = r.re.ReplaceAllString(text, r.replacement)
	}
	return text
}

// SanitizeForLogging redacts text and truncates it for log lines
func SanitizeForLogging(text string) string {
	redacted := RedactSensitiveData(text)
	if utf8.RuneCountInString(redacted) <= MaxLogLength {
		return redacted
	}
	runes := []rune(redacted)
	return string(runes[:MaxLogLength-3]) + "..."
}

// ContainsPII checks if text contains potential PII
func ContainsPII(text string) bool {
	for _, r := range rules {
		if r.re.MatchString(text) {
			return true
		}
	}
	return false
}
