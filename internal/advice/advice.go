// Package advice holds the plain-text guidance attached to chat results
// and reports. None of it is markup; rendering belongs to the client.
package advice

import (
	"github.com/samber/lo"
	"github.com/themobileprof/mediguide-be/internal/symptoms"
)

// Action tells the client how prominently to surface an advisory
type Action string

const (
	ActionEmergency Action = "emergency"
	ActionConsult   Action = "consult"
	ActionInform    Action = "inform"
)

// Kind identifies an advisory
type Kind string

const (
	KindEmergency         Kind = "emergency"
	KindSymptomDisclaimer Kind = "symptom_disclaimer"
	KindFactsNoted        Kind = "facts_noted"
	KindReport            Kind = "report_disclaimer"
)

// Advisory is a fixed piece of guidance
type Advisory struct {
	Kind    Kind   `json:"kind"`
	Content string `json:"content"`
	Action  Action `json:"action"`
}

var advisories = map[Kind]Advisory{
	KindEmergency: {
		Kind: KindEmergency,
		Content: "MEDICAL EMERGENCY POSSIBLE: Based on your message, this could be a serious medical situation. " +
			"Please seek immediate medical attention. Call 911 (or your local emergency number) or go to the nearest emergency room. " +
			"Do not rely on this chat for emergency help.",
		Action: ActionEmergency,
	},
	KindSymptomDisclaimer: {
		Kind: KindSymptomDisclaimer,
		Content: "This assistant cannot diagnose. Symptom analysis is informational only and based on common patterns. " +
			"Please consult a healthcare professional for any health concerns or diagnosis.",
		Action: ActionConsult,
	},
	KindFactsNoted: {
		Kind:    KindFactsNoted,
		Content: "This information helps provide context. Remember to consult a healthcare professional for interpretation.",
		Action:  ActionInform,
	},
	KindReport: {
		Kind: KindReport,
		Content: "This report summarizes information you shared in conversation. It is not a medical record or a diagnosis. " +
			"Always consult your doctor for personalized medical advice.",
		Action: ActionConsult,
	},
}

// Get returns the advisory of the given kind
func Get(kind Kind) Advisory {
	return advisories[kind]
}

// ForMessage returns the advisories for one processed message. An
// emergency suppresses everything else.
func ForMessage(isEmergency, factsNoted, symptomsReported bool) []Advisory {
	if isEmergency {
		return []Advisory{advisories[KindEmergency]}
	}
	var out []Advisory
	if factsNoted {
		out = append(out, advisories[KindFactsNoted])
	}
	if symptomsReported {
		out = append(out, advisories[KindSymptomDisclaimer])
	}
	return out
}

// ScoreInterpretation describes a health score in words.
func ScoreInterpretation(score *int) string {
	switch {
	case score == nil:
		return "This score is a simplified estimate based on logged data."
	case *score >= 85:
		return "Indicates generally positive health indicators based on available data."
	case *score >= 70:
		return "Indicates fair health indicators; some areas might warrant attention."
	default:
		return "Suggests potential areas for health focus or review with a professional."
	}
}

// Guidance limits
const (
	maxSelfCare    = 3
	maxSeeDoctor   = 2
	maxListedMatch = 3
)

// Guidance is the self-care information shown for a strong condition match.
type Guidance struct {
	Condition       string   `json:"condition"`
	SelfCare        []string `json:"self_care,omitempty"`
	WhenToSeeDoctor []string `json:"when_to_see_doctor,omitempty"`
}

// ConditionGuidance returns guidance for the first strong match, if any.
func ConditionGuidance(matches []symptoms.ConditionMatch) (Guidance, bool) {
	m, ok := symptoms.StrongMatch(matches)
	if !ok {
		return Guidance{}, false
	}
	return Guidance{
		Condition:       m.Condition,
		SelfCare:        lo.Slice(m.SelfCare, 0, maxSelfCare),
		WhenToSeeDoctor: lo.Slice(m.WhenToSeeDoctor, 0, maxSeeDoctor),
	}, true
}

// TopMatches trims a ranked match list to what is shown to the user.
func TopMatches(matches []symptoms.ConditionMatch) []symptoms.ConditionMatch {
	return lo.Slice(matches, 0, maxListedMatch)
}
