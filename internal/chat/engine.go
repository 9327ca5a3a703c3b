// Package chat runs a user message through extraction, session updates and scoring.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/themobileprof/mediguide-be/internal/advice"
	"github.com/themobileprof/mediguide-be/internal/classifier"
	"github.com/themobileprof/mediguide-be/internal/emergency"
	"github.com/themobileprof/mediguide-be/internal/platform/logger"
	"github.com/themobileprof/mediguide-be/internal/privacy"
	"github.com/themobileprof/mediguide-be/internal/profile"
	"github.com/themobileprof/mediguide-be/internal/report"
	"github.com/themobileprof/mediguide-be/internal/session"
	"github.com/themobileprof/mediguide-be/internal/symptoms"
	"github.com/themobileprof/mediguide-be/internal/trends"
	"github.com/themobileprof/mediguide-be/internal/vitals"
	"github.com/themobileprof/mediguide-be/internal/wellness"
)

var (
	// ErrEmptyMessage is returned for blank input.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrMissingUser is returned when no user id is given.
	ErrMissingUser = errors.New("user id is required")
	// ErrNoSession is returned by the views for a user with no messages yet.
	ErrNoSession = errors.New("no session for user")
)

// DefaultScoreEvery recomputes the score on every 3rd user message.
const DefaultScoreEvery = 3

// Interfaces for dependencies
type EmergencyInterface interface {
	Detect(message string) emergency.Result
}

type VitalsInterface interface {
	Extract(message string) vitals.Facts
}

type ProfileInterface interface {
	Extract(message string) profile.Updates
}

type SymptomInterface interface {
	Match(message string) ([]symptoms.ConditionMatch, []string)
}

type ClassifierInterface interface {
	Classify(input string) classifier.Result
}

type ActivityInterface interface {
	Detect(message string) []session.ActivityType
}

type TipInterface interface {
	ShouldOffer(interactionCount int, wantsAdvice bool) bool
	Select(topics []string) (wellness.Suggestion, bool)
}

type ScorerInterface interface {
	Update(r *session.Record) int
}

type TrendInterface interface {
	Analyze(r session.Record) trends.Trends
}

type ViewInterface interface {
	Dashboard(r session.Record) report.Dashboard
	Report(r session.Record) report.Report
}

// Deps wires the engine's collaborators. Every field is required.
type Deps struct {
	Store      *session.Store
	Emergency  EmergencyInterface
	Vitals     VitalsInterface
	Profile    ProfileInterface
	Symptoms   SymptomInterface
	Classifier ClassifierInterface
	Activities ActivityInterface
	Tips       TipInterface
	Resources  wellness.ResourceSource
	Scorer     ScorerInterface
	Trends     TrendInterface
	Views      ViewInterface
	Logger     *logger.Logger
}

// Engine runs the message pipeline independent of transport
type Engine struct {
	deps       Deps
	scoreEvery int
}

// Result is everything learned from one message.
type Result struct {
	UserID           string                    `json:"user_id"`
	Reply            string                    `json:"reply"`
	IsEmergency      bool                      `json:"is_emergency"`
	EmergencyScore   int                       `json:"emergency_score"`
	Facts            map[string]string         `json:"facts"`
	ProfileUpdates   profile.Updates           `json:"profile_updates"`
	Conditions       []symptoms.ConditionMatch `json:"conditions"`
	ReportedSymptoms []string                  `json:"reported_symptoms"`
	Guidance         *advice.Guidance          `json:"guidance,omitempty"`
	Activities       []session.ActivityType    `json:"activities"`
	Topics           []string                  `json:"topics"`
	Tip              *wellness.Suggestion      `json:"tip,omitempty"`
	Resources        []wellness.ResourceLink   `json:"resources"`
	Score            *int                      `json:"health_score"`
	ScoreUpdated     bool                      `json:"score_updated"`
	Trends           trends.Trends             `json:"trends"`
	Advisories       []advice.Advisory         `json:"advisories"`
	InteractionCount int                       `json:"interaction_count"`
}

// NewEngine creates a new transport-agnostic chat engine. scoreEvery of
// zero or less selects DefaultScoreEvery.
func NewEngine(deps Deps, scoreEvery int) *Engine {
	if scoreEvery <= 0 {
		scoreEvery = DefaultScoreEvery
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	return &Engine{deps: deps, scoreEvery: scoreEvery}
}

// Process runs one user message through extraction, session updates,
// scoring and trend analysis. The whole run holds the user's session.
func (e *Engine) Process(ctx context.Context, userID, content string) (*Result, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingUser
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("process message: %w", err)
	}

	log := e.deps.Logger.With("user_id", userID)
	if privacy.ContainsPII(content) {
		log.Warn("potential PII detected in message")
	}
	log.Debug("processing message", "length", len(content), "message", privacy.SanitizeForLogging(content))

	res := &Result{UserID: userID}
	e.deps.Store.GetOrCreate(userID).Do(func(r *session.Record) {
		e.run(r, content, res, log)
	})
	log.Info("message processed",
		"emergency", res.IsEmergency,
		"facts", len(res.Facts),
		"symptoms", len(res.ReportedSymptoms),
		"interactions", res.InteractionCount,
	)
	return res, nil
}

func (e *Engine) run(r *session.Record, content string, res *Result, log *logger.Logger) {
	r.AddMessage(session.RoleUser, content)
	res.InteractionCount = r.Analytics.InteractionCount

	em := e.deps.Emergency.Detect(content)
	res.IsEmergency, res.EmergencyScore = em.IsEmergency, em.Score
	if em.IsEmergency {
		log.Warn("emergency keywords detected", "score", em.Score, "matched", em.Matched)
	}

	facts := e.deps.Vitals.Extract(content)
	e.applyFacts(r, facts, log)
	res.Facts = facts.Summary()

	updates := e.deps.Profile.Extract(content)
	e.applyProfile(r, updates, log)
	res.ProfileUpdates = updates

	matches, reported := e.deps.Symptoms.Match(content)
	for _, s := range reported {
		r.LogSymptom(s, symptoms.InferSeverity(content, s), symptoms.RelatedFactors(content))
	}
	res.Conditions = advice.TopMatches(matches)
	res.ReportedSymptoms = lo.Ternary(reported == nil, []string{}, reported)

	res.Activities = []session.ActivityType{}
	for _, a := range e.deps.Activities.Detect(content) {
		if r.AddWellnessActivity(a, "", "") {
			res.Activities = append(res.Activities, a)
		}
	}

	cls := e.deps.Classifier.Classify(content)
	res.Topics = classifier.Strings(cls.Topics)
	r.AddTopics(res.Topics...)

	res.Resources = []wellness.ResourceLink{}
	if !em.IsEmergency {
		if g, ok := advice.ConditionGuidance(matches); ok {
			res.Guidance = &g
		}
		if e.deps.Tips.ShouldOffer(res.InteractionCount, cls.WantsAdvice) {
			if tip, ok := e.deps.Tips.Select(res.Topics); ok {
				res.Tip = &tip
				r.AddRecommendation(tip.Tip, strings.ToLower(tip.Category))
			}
		}
		res.Resources = wellness.SuggestResources(e.deps.Resources, content, reported)
	}

	if res.InteractionCount%e.scoreEvery == 0 {
		score := e.deps.Scorer.Update(r)
		res.ScoreUpdated = true
		log.Debug("health score updated", "score", score)
	}
	if s := r.Analytics.LastHealthScore; s != nil {
		v := *s
		res.Score = &v
	}
	res.Trends = e.deps.Trends.Analyze(*r)
	// the score trend only describes a score computed on this turn
	if !res.ScoreUpdated {
		res.Trends.HealthScore = nil
	}

	res.Advisories = advice.ForMessage(em.IsEmergency, !facts.Empty() || !updates.Empty(), len(reported) > 0)
	res.Reply = reply(res)
	r.AddMessage(session.RoleBot, res.Reply)
}

func (e *Engine) applyFacts(r *session.Record, f vitals.Facts, log *logger.Logger) {
	for _, reading := range f.Readings {
		r.AddVitalSign(reading)
	}
	if f.Age != nil {
		_ = r.UpdateProfile(session.FieldAge, *f.Age)
	}
	if f.HeightCM != nil {
		_ = r.UpdateProfile(session.FieldHeightCM, *f.HeightCM)
	}
	if f.WeightKG != nil {
		if err := r.UpdateProfile(session.FieldWeightKG, *f.WeightKG); err == nil {
			r.AddVitalSign(vitals.NewScalarReading(vitals.Weight, *f.WeightKG, vitals.UnitKG))
		}
	}
	if !f.Empty() {
		log.Debug("vital facts extracted", "count", len(f.Summary()))
	}
}

func (e *Engine) applyProfile(r *session.Record, u profile.Updates, log *logger.Logger) {
	if len(u.Allergies) > 0 {
		_ = r.UpdateProfile(session.FieldAllergies, u.Allergies)
	}
	if len(u.ChronicConditions) > 0 {
		_ = r.UpdateProfile(session.FieldChronicConditions, u.ChronicConditions)
	}
	for _, m := range u.Medications {
		if _, added := r.AddMedicationReminder(m.Name, m.Dosage, m.Schedule, "", ""); added {
			log.Debug("medication extracted", "medication", m.Name)
		}
	}
}

// reply renders a plain-text acknowledgement of the result.
func reply(res *Result) string {
	var parts []string
	for _, a := range res.Advisories {
		parts = append(parts, a.Content)
	}
	if res.IsEmergency {
		return strings.Join(parts, "\n\n")
	}

	if len(res.Conditions) > 0 {
		names := lo.Map(res.Conditions, func(c symptoms.ConditionMatch, _ int) string { return c.Condition })
		parts = append(parts, "Conditions that share these symptoms include: "+strings.Join(names, ", ")+".")
	}
	if g := res.Guidance; g != nil {
		if len(g.SelfCare) > 0 {
			parts = append(parts, "Self-care for "+g.Condition+": "+strings.Join(g.SelfCare, "; ")+".")
		}
		if len(g.WhenToSeeDoctor) > 0 {
			parts = append(parts, "See a doctor if: "+strings.Join(g.WhenToSeeDoctor, "; ")+".")
		}
	}
	if len(res.Activities) > 0 {
		parts = append(parts, "Great job staying active with your wellness routine!")
	}
	if t := res.Tip; t != nil {
		parts = append(parts, fmt.Sprintf("%s tip: %s %s", t.Category, t.Tip, t.Benefit))
	}
	if len(parts) == 0 {
		return "Thanks for sharing. Tell me about any symptoms, vital signs or medications you'd like to track."
	}
	return strings.Join(parts, "\n\n")
}

// Dashboard refreshes the user's score and returns the dashboard view.
// Views never create a session.
func (e *Engine) Dashboard(ctx context.Context, userID string) (report.Dashboard, error) {
	rec, err := e.refresh(ctx, userID)
	if err != nil {
		return report.Dashboard{}, err
	}
	return e.deps.Views.Dashboard(rec), nil
}

// Report refreshes the user's score and returns the full report.
func (e *Engine) Report(ctx context.Context, userID string) (report.Report, error) {
	rec, err := e.refresh(ctx, userID)
	if err != nil {
		return report.Report{}, err
	}
	return e.deps.Views.Report(rec), nil
}

// Trends refreshes the user's score and returns current trends.
func (e *Engine) Trends(ctx context.Context, userID string) (trends.Trends, error) {
	rec, err := e.refresh(ctx, userID)
	if err != nil {
		return trends.Trends{}, err
	}
	return e.deps.Trends.Analyze(rec), nil
}

// Conditions ranks conditions for text without touching any session.
func (e *Engine) Conditions(text string) ([]symptoms.ConditionMatch, []string) {
	matches, reported := e.deps.Symptoms.Match(text)
	if reported == nil {
		reported = []string{}
	}
	return matches, reported
}

func (e *Engine) refresh(ctx context.Context, userID string) (session.Record, error) {
	if strings.TrimSpace(userID) == "" {
		return session.Record{}, ErrMissingUser
	}
	if err := ctx.Err(); err != nil {
		return session.Record{}, err
	}
	sess, ok := e.deps.Store.Get(userID)
	if !ok {
		return session.Record{}, ErrNoSession
	}
	var rec session.Record
	sess.Do(func(r *session.Record) {
		e.deps.Scorer.Update(r)
		rec = r.Clone()
	})
	return rec, nil
}
