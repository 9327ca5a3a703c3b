package session

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/themobileprof/mediguide-be/internal/platform/logger"
	"github.com/themobileprof/mediguide-be/internal/units"
	"github.com/themobileprof/mediguide-be/internal/vitals"
)

var (
	// ErrInvalidValue is returned when a profile value fails validation.
	ErrInvalidValue = errors.New("invalid profile value")
	// ErrUnknownField is returned for profile fields that do not exist.
	ErrUnknownField = errors.New("unknown profile field")
)

// ProfileField names an updatable profile field
type ProfileField string

const (
	FieldName               ProfileField = "name"
	FieldAge                ProfileField = "age"
	FieldGender             ProfileField = "gender"
	FieldHeightCM           ProfileField = "height_cm"
	FieldWeightKG           ProfileField = "weight_kg"
	FieldAllergies          ProfileField = "allergies"
	FieldChronicConditions  ProfileField = "chronic_conditions"
	FieldCurrentMedications ProfileField = "current_medications"
	FieldLastCheckup        ProfileField = "last_checkup"
	FieldRiskFactors        ProfileField = "risk_factors"
	FieldWellnessGoals      ProfileField = "wellness_goals"
)

// env is shared by every record in a store
type env struct {
	clock          func() time.Time
	log            *logger.Logger
	activityWindow time.Duration
}

// standalone is used by records built outside a Store.
var standalone = &env{clock: time.Now, log: logger.Nop(), activityWindow: DefaultActivityWindow}

func (r *Record) environment() *env {
	if r.env == nil {
		return standalone
	}
	return r.env
}

func (r *Record) now() time.Time {
	return r.environment().clock()
}

// AddVitalSign appends a reading stamped with the current time.
func (r *Record) AddVitalSign(reading vitals.Reading) vitals.Reading {
	reading.Timestamp = r.now()
	if r.Vitals == nil {
		r.Vitals = make(map[vitals.Kind][]vitals.Reading)
	}
	r.Vitals[reading.Kind] = append(r.Vitals[reading.Kind], reading)
	r.environment().log.Debug("vital sign added", "user_id", r.UserID, "type", reading.Kind, "value", reading.Label())
	return reading
}

// LogSymptom appends a symptom entry.
func (r *Record) LogSymptom(symptom, severity, relatedFactors string) SymptomEntry {
	if severity == "" {
		severity = "moderate"
	}
	entry := SymptomEntry{
		Symptom:        strings.ToLower(strings.TrimSpace(symptom)),
		Severity:       severity,
		RelatedFactors: relatedFactors,
		Timestamp:      r.now(),
	}
	r.Symptoms = append(r.Symptoms, entry)
	r.environment().log.Debug("symptom logged", "user_id", r.UserID, "symptom", entry.Symptom, "severity", severity)
	return entry
}

// AddMedicationReminder adds a reminder unless one already exists for
// the same medication name (case-insensitive). It reports whether a
// reminder was added. The name is also added to the profile's current
// medications.
func (r *Record) AddMedicationReminder(medication, dosage, schedule, duration, notes string) (MedicationReminder, bool) {
	for _, m := range r.Medications {
		if strings.EqualFold(m.Medication, medication) {
			return m, false
		}
	}
	rem := MedicationReminder{
		ID:         uuid.NewString(),
		Medication: medication,
		Dosage:     dosage,
		Schedule:   schedule,
		Duration:   duration,
		Notes:      notes,
		CreatedAt:  r.now(),
	}
	r.Medications = append(r.Medications, rem)
	if !containsFold(r.Profile.CurrentMedications, medication) {
		r.Profile.CurrentMedications = append(r.Profile.CurrentMedications, medication)
	}
	r.environment().log.Info("medication reminder added", "user_id", r.UserID, "medication", medication)
	return rem, true
}

// AddWellnessActivity logs an activity unless the same type was logged
// within the store's de-duplication window. It reports whether it was added.
func (r *Record) AddWellnessActivity(activity ActivityType, duration, notes string) bool {
	now := r.now()
	for _, a := range r.Activities {
		if a.ActivityType == activity && now.Sub(a.Timestamp) < r.environment().activityWindow {
			return false
		}
	}
	r.Activities = append(r.Activities, WellnessActivity{
		ActivityType: activity,
		Duration:     duration,
		Notes:        notes,
		Timestamp:    now,
	})
	r.environment().log.Debug("wellness activity added", "user_id", r.UserID, "activity", activity)
	return true
}

// AddRecommendation records advice given to the user.
func (r *Record) AddRecommendation(text, category string) Recommendation {
	if category == "" {
		category = "general"
	}
	rec := Recommendation{
		ID:        uuid.NewString(),
		Text:      text,
		Category:  category,
		Timestamp: r.now(),
	}
	r.Recommendations = append(r.Recommendations, rec)
	return rec
}

// AddMessage appends a conversation turn. User turns count as interactions.
func (r *Record) AddMessage(role, content string) Message {
	msg := Message{ID: uuid.NewString(), Role: role, Content: content, Timestamp: r.now()}
	r.Messages = append(r.Messages, msg)
	if role == RoleUser {
		r.Analytics.InteractionCount++
	}
	return msg
}

// AddTopics merges topics into the discussed set.
func (r *Record) AddTopics(topics ...string) {
	for _, t := range topics {
		if t != "" && !contains(r.Analytics.TopicsDiscussed, t) {
			r.Analytics.TopicsDiscussed = append(r.Analytics.TopicsDiscussed, t)
		}
	}
	sort.Strings(r.Analytics.TopicsDiscussed)
}

// RecordScore moves the previous score into history and stores score
// as the latest.
func (r *Record) RecordScore(score int) {
	now := r.now()
	if r.Analytics.LastHealthScore != nil {
		r.Analytics.HealthScoreHistory = append(r.Analytics.HealthScoreHistory, ScorePoint{
			Score:     *r.Analytics.LastHealthScore,
			Timestamp: r.Analytics.LastScoredAt,
		})
	}
	r.Analytics.LastHealthScore = &score
	r.Analytics.LastScoredAt = now
	r.environment().log.Info("health score recorded", "user_id", r.UserID, "score", score)
}

// UpdateProfile sets a scalar field or unions values into a list field.
// Numeric fields that fail to parse are left unchanged and ErrInvalidValue
// is returned.
func (r *Record) UpdateProfile(field ProfileField, value interface{}) error {
	if err := r.updateProfile(field, value); err != nil {
		r.environment().log.Warn("profile update rejected", "user_id", r.UserID, "field", field, "error", err)
		return err
	}
	return nil
}

func (r *Record) updateProfile(field ProfileField, value interface{}) error {
	p := &r.Profile
	switch field {
	case FieldAge:
		n, ok := toInt(value)
		if !ok || n < 0 || n > 150 {
			return fmt.Errorf("%w: age %v", ErrInvalidValue, value)
		}
		p.Age = &n
	case FieldHeightCM:
		f, ok := toFloat(value)
		if !ok || f <= 0 || f > 300 {
			return fmt.Errorf("%w: height %v", ErrInvalidValue, value)
		}
		p.HeightCM = &f
	case FieldWeightKG:
		f, ok := toFloat(value)
		if !ok || f <= 0 || f > 700 {
			return fmt.Errorf("%w: weight %v", ErrInvalidValue, value)
		}
		p.WeightKG = &f
	case FieldName, FieldGender, FieldLastCheckup:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %s must be text", ErrInvalidValue, field)
		}
		switch field {
		case FieldName:
			p.Name = s
		case FieldGender:
			p.Gender = s
		default:
			p.LastCheckup = s
		}
	case FieldAllergies:
		return unionInto(&p.Allergies, field, value)
	case FieldChronicConditions:
		return unionInto(&p.ChronicConditions, field, value)
	case FieldCurrentMedications:
		return unionInto(&p.CurrentMedications, field, value)
	case FieldRiskFactors:
		return unionInto(&p.RiskFactors, field, value)
	case FieldWellnessGoals:
		return unionInto(&p.WellnessGoals, field, value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

// BMIInputs returns height and weight when both are known.
func (p Profile) BMIInputs() (heightCM, weightKG float64, ok bool) {
	if p.HeightCM == nil || p.WeightKG == nil {
		return 0, 0, false
	}
	return *p.HeightCM, *p.WeightKG, true
}

func unionInto(list *[]string, field ProfileField, value interface{}) error {
	var items []string
	switch v := value.(type) {
	case string:
		items = []string{v}
	case []string:
		items = v
	default:
		return fmt.Errorf("%w: %s must be text or a list of text", ErrInvalidValue, field)
	}
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" && !contains(*list, item) {
			*list = append(*list, item)
		}
	}
	return nil
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		return units.ParseFloat(n)
	}
	return 0, false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
