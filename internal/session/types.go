package session

import (
	"time"

	"github.com/themobileprof/mediguide-be/internal/vitals"
)

// Profile holds demographic and medical background for a user
type Profile struct {
	Name               string   `json:"name"`
	Age                *int     `json:"age"`
	Gender             string   `json:"gender"`
	HeightCM           *float64 `json:"height_cm"`
	WeightKG           *float64 `json:"weight_kg"`
	Allergies          []string `json:"allergies"`
	ChronicConditions  []string `json:"chronic_conditions"`
	CurrentMedications []string `json:"current_medications"`
	LastCheckup        string   `json:"last_checkup"`
	RiskFactors        []string `json:"risk_factors"`
	WellnessGoals      []string `json:"wellness_goals"`
}

// SymptomEntry is a logged symptom
type SymptomEntry struct {
	Symptom        string    `json:"symptom"`
	Severity       string    `json:"severity"` // "mild", "moderate", "severe"
	RelatedFactors string    `json:"related_factors,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// MedicationReminder tracks a medication the user takes
type MedicationReminder struct {
	ID           string    `json:"id"`
	Medication   string    `json:"medication"`
	Dosage       string    `json:"dosage"`
	Schedule     string    `json:"schedule"`
	Duration     string    `json:"duration,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	AdheredDoses int       `json:"adhered_doses"`
	MissedDoses  int       `json:"missed_doses"`
}

// ActivityType is a kind of wellness activity
type ActivityType string

const (
	ActivityExercise      ActivityType = "exercise"
	ActivityMeditation    ActivityType = "meditation"
	ActivityHealthyEating ActivityType = "healthy_eating"
	ActivitySleep         ActivityType = "sleep"
	ActivitySocial        ActivityType = "social"
	ActivityHobby         ActivityType = "hobby"
)

// WellnessActivity is a logged wellness activity
type WellnessActivity struct {
	ActivityType ActivityType `json:"activity_type"`
	Duration     string       `json:"duration,omitempty"`
	Notes        string       `json:"notes,omitempty"`
	Timestamp    time.Time    `json:"timestamp"`
}

// Recommendation is advice given to the user
type Recommendation struct {
	ID          string    `json:"id"`
	Text        string    `json:"recommendation"`
	Category    string    `json:"category"`
	Timestamp   time.Time `json:"timestamp"`
	Implemented bool      `json:"implemented"`
}

// Message roles
const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// Message is a conversation turn
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ScorePoint is a historical health score
type ScorePoint struct {
	Score     int       `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// Analytics holds interaction counters and score history
type Analytics struct {
	InteractionCount   int          `json:"interaction_count"`
	TopicsDiscussed    []string     `json:"topics_discussed"`
	LastHealthScore    *int         `json:"last_health_score"`
	LastScoredAt       time.Time    `json:"last_scored_at,omitempty"`
	HealthScoreHistory []ScorePoint `json:"health_score_history"`
	WellnessTrend      string       `json:"wellness_trend"`
}

// NotificationPreferences are per-user opt-ins
type NotificationPreferences struct {
	MedicationReminders bool `json:"medication_reminders"`
	CheckupReminders    bool `json:"checkup_reminders"`
	HealthTips          bool `json:"health_tips"`
	DataSummaries       bool `json:"data_summaries"`
}

// Record is everything known about one user
type Record struct {
	UserID          string                           `json:"user_id"`
	CreatedAt       time.Time                        `json:"created_at"`
	Profile         Profile                          `json:"profile"`
	Vitals          map[vitals.Kind][]vitals.Reading `json:"vital_signs"`
	Symptoms        []SymptomEntry                   `json:"symptom_log"`
	Medications     []MedicationReminder             `json:"medication_reminders"`
	Activities      []WellnessActivity               `json:"wellness_activities"`
	Recommendations []Recommendation                 `json:"recommendations"`
	Messages        []Message                        `json:"conversation_history"`
	Analytics       Analytics                        `json:"health_analytics"`
	Notifications   NotificationPreferences          `json:"notification_preferences"`

	env *env
}
