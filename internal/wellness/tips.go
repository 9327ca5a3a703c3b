package wellness

import (
	"math/rand"

	"github.com/themobileprof/mediguide-be/internal/knowledge"
)

// TipSource provides wellness tips by category
type TipSource interface {
	TipCategories() []string
	Tips(category string) ([]knowledge.Tip, bool)
}

// DefaultTipEvery offers a tip on the 1st, 6th, 11th... interaction.
const DefaultTipEvery = 5

var topicCategories = map[string]string{
	"nutrition":     "Nutrition",
	"exercise":      "Physical Activity",
	"sleep":         "Sleep",
	"mental_health": "Mental Wellbeing",
}

// Suggestion is a tip chosen for the user.
type Suggestion struct {
	Category string `json:"category"`
	Tip      string `json:"tip"`
	Benefit  string `json:"benefit"`
}

// TipSelector decides when to offer a tip and which one.
type TipSelector struct {
	src   TipSource
	every int
	intn  func(n int) int
}

// NewTipSelector creates a selector. intn picks an index in [0, n); nil
// uses math/rand.
func NewTipSelector(src TipSource, every int, intn func(n int) int) *TipSelector {
	if every <= 0 {
		every = DefaultTipEvery
	}
	if intn == nil {
		intn = rand.Intn
	}
	return &TipSelector{src: src, every: every, intn: intn}
}

// ShouldOffer reports whether a tip is due for this interaction.
func (s *TipSelector) ShouldOffer(interactionCount int, wantsAdvice bool) bool {
	return wantsAdvice || s.every == 1 || interactionCount%s.every == 1
}

// Select picks a tip. The category follows the first topic that maps to
// a known tip category, otherwise it is chosen at random.
func (s *TipSelector) Select(topics []string) (Suggestion, bool) {
	category := ""
	for _, t := range topics {
		cat, ok := topicCategories[t]
		if !ok {
			continue
		}
		if _, ok := s.src.Tips(cat); ok {
			category = cat
			break
		}
	}
	if category == "" {
		cats := s.src.TipCategories()
		if len(cats) == 0 {
			return Suggestion{}, false
		}
		category = cats[s.intn(len(cats))]
	}

	tips, _ := s.src.Tips(category)
	if len(tips) == 0 {
		return Suggestion{}, false
	}
	tip := tips[s.intn(len(tips))]
	return Suggestion{Category: category, Tip: tip.Tip, Benefit: tip.Benefit}, true
}
