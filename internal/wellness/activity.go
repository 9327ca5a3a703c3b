// Package wellness detects wellness activities in messages and picks
// tips and reference links to offer back.
package wellness

import (
	"regexp"
	"strings"

	"github.com/themobileprof/mediguide-be/internal/session"
)

var activityKeywords = []struct {
	activity session.ActivityType
	keywords []string
}{
	{session.ActivityExercise, []string{"exercise", "workout", "gym", "run", "ran", "walked", "swam", "cycled", "lifted weights", "yoga", "pilates"}},
	{session.ActivityMeditation, []string{"meditate", "meditation", "mindfulness"}},
	{session.ActivityHealthyEating, []string{"healthy meal", "ate well", "balanced diet", "vegetables", "fruits", "lean protein"}},
	{session.ActivitySleep, []string{"slept well", "good sleep", "hours of sleep"}},
	{session.ActivitySocial, []string{"saw friends", "family time", "social event"}},
	{session.ActivityHobby, []string{"hobby", "leisure activity", "relaxed", "read book"}},
}

type activityPattern struct {
	activity session.ActivityType
	re       *regexp.Regexp
}

// Detector finds wellness activities mentioned in a message
type Detector struct {
	patterns []activityPattern
}

// NewDetector compiles one whole-word pattern per activity type.
func NewDetector() *Detector {
	d := &Detector{}
	for _, ak := range activityKeywords {
		quoted := make([]string, len(ak.keywords))
		for i, k := range ak.keywords {
			quoted[i] = regexp.QuoteMeta(k)
		}
		d.patterns = append(d.patterns, activityPattern{
			activity: ak.activity,
			re:       regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`),
		})
	}
	return d
}

// Detect returns every activity type the message mentions.
func (d *Detector) Detect(message string) []session.ActivityType {
	lower := strings.ToLower(message)
	var out []session.ActivityType
	for _, p := range d.patterns {
		if p.re.MatchString(lower) {
			out = append(out, p.activity)
		}
	}
	return out
}
