package wellness

import (
	"strings"

	"github.com/samber/lo"
	"github.com/themobileprof/mediguide-be/internal/knowledge"
)

// Limits on suggested links
const (
	MaxResources            = 4
	MaxResourcesPerCategory = 2
)

// ResourceSource provides reference links by category
type ResourceSource interface {
	Resources(category string) ([]knowledge.Resource, bool)
}

// ResourceLink is one suggested reference.
type ResourceLink struct {
	Category    string `json:"category"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

const generalHealth = "General Health"

// Substring keywords per category, in suggestion order.
var resourceTopics = []struct {
	category string
	keywords []string
}{
	{"Mental Health", []string{"stress", "anxiety", "depress", "mood", "mental", "feeling down", "coping"}},
	{"Nutrition", []string{"diet", "food", "eating", "nutrition", "meal", "weight", "calorie", "recipes"}},
	{"Fitness", []string{"exercise", "workout", "activity", "fitness", "gym", "run", "walk", "strength"}},
	{"Medications", []string{"medication", "drug", "prescription", "pill", "medicine", "dose", "pharmacy"}},
	{"Emergency", []string{"emergency", "urgent", "severe", "critical", "911"}},
}

var neurologicalSymptoms = []string{"headache", "migraine", "dizzy", "lightheaded", "confusion", "memory"}

// SuggestResources picks reference links for a message. General Health is
// always included; neurological symptoms add Mental Health.
func SuggestResources(src ResourceSource, message string, reported []string) []ResourceLink {
	lower := strings.ToLower(message)
	wanted := map[string]bool{generalHealth: true}

	for _, rt := range resourceTopics {
		for _, k := range rt.keywords {
			if strings.Contains(lower, k) {
				wanted[rt.category] = true
				break
			}
		}
	}
	for _, s := range reported {
		if lo.Contains(neurologicalSymptoms, s) {
			wanted["Mental Health"] = true
			break
		}
	}

	order := []string{generalHealth}
	for _, rt := range resourceTopics {
		order = append(order, rt.category)
	}

	var out []ResourceLink
	for _, cat := range order {
		if !wanted[cat] {
			continue
		}
		links, _ := src.Resources(cat)
		for i, l := range links {
			if i == MaxResourcesPerCategory || len(out) == MaxResources {
				break
			}
			out = append(out, ResourceLink{Category: cat, Name: l.Name, URL: l.URL, Description: l.Description})
		}
		if len(out) == MaxResources {
			break
		}
	}
	return out
}
