// Package session keeps per-user health records in memory.
package session

import (
	"sort"
	"sync"
	"time"

	"github.com/themobileprof/mediguide-be/internal/platform/logger"
	"github.com/themobileprof/mediguide-be/internal/vitals"
)

// DefaultActivityWindow is how long a wellness activity type is
// suppressed after being logged.
const DefaultActivityWindow = time.Hour

// Session guards one user's record. All reads and writes go through Do
// or Snapshot so a full message pipeline runs under a single lock.
type Session struct {
	mu  sync.Mutex
	rec *Record
}

// Do runs fn with exclusive access to the record.
func (s *Session) Do(fn func(r *Record)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.rec)
}

// Snapshot returns a deep copy of the record.
func (s *Session) Snapshot() Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.Clone()
}

// Options configures a Store
type Options struct {
	Clock          func() time.Time
	Logger         *logger.Logger
	ActivityWindow time.Duration
}

// Store holds every session for the life of the process. Nothing is
// ever evicted.
type Store struct {
	sessions map[string]*Session
	env      *env
	mu       sync.RWMutex
}

// NewStore creates an empty store
func NewStore(opts Options) *Store {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.ActivityWindow <= 0 {
		opts.ActivityWindow = DefaultActivityWindow
	}
	return &Store{
		sessions: make(map[string]*Session),
		env: &env{
			clock:          opts.Clock,
			log:            opts.Logger,
			activityWindow: opts.ActivityWindow,
		},
	}
}

// Now returns the store's current time.
func (s *Store) Now() time.Time {
	return s.env.clock()
}

// GetOrCreate returns the session for userID, creating it on first contact.
func (s *Store) GetOrCreate(userID string) *Session {
	s.mu.RLock()
	sess, ok := s.sessions[userID]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have created it
	if sess, ok := s.sessions[userID]; ok {
		return sess
	}
	sess = &Session{rec: s.newRecord(userID)}
	s.sessions[userID] = sess
	s.env.log.Info("session created", "user_id", userID)
	return sess
}

// Get returns an existing session.
func (s *Store) Get(userID string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	return sess, ok
}

// Len returns the number of sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) newRecord(userID string) *Record {
	return &Record{
		UserID:    userID,
		CreatedAt: s.env.clock(),
		Vitals:    make(map[vitals.Kind][]vitals.Reading),
		Analytics: Analytics{WellnessTrend: "stable"},
		Notifications: NotificationPreferences{
			MedicationReminders: true,
			CheckupReminders:    true,
			HealthTips:          true,
			DataSummaries:       true,
		},
		env: s.env,
	}
}

// Clone returns a deep copy that shares no slices or maps with r.
func (r *Record) Clone() Record {
	c := *r

	c.Profile.Age = copyPtr(r.Profile.Age)
	c.Profile.HeightCM = copyPtr(r.Profile.HeightCM)
	c.Profile.WeightKG = copyPtr(r.Profile.WeightKG)
	c.Profile.Allergies = copySlice(r.Profile.Allergies)
	c.Profile.ChronicConditions = copySlice(r.Profile.ChronicConditions)
	c.Profile.CurrentMedications = copySlice(r.Profile.CurrentMedications)
	c.Profile.RiskFactors = copySlice(r.Profile.RiskFactors)
	c.Profile.WellnessGoals = copySlice(r.Profile.WellnessGoals)

	c.Vitals = make(map[vitals.Kind][]vitals.Reading, len(r.Vitals))
	for k, readings := range r.Vitals {
		cp := make([]vitals.Reading, len(readings))
		for i, rd := range readings {
			if rd.Pressure != nil {
				p := *rd.Pressure
				rd.Pressure = &p
			}
			cp[i] = rd
		}
		c.Vitals[k] = cp
	}

	c.Symptoms = copySlice(r.Symptoms)
	c.Medications = copySlice(r.Medications)
	c.Activities = copySlice(r.Activities)
	c.Recommendations = copySlice(r.Recommendations)
	c.Messages = copySlice(r.Messages)
	c.Analytics.TopicsDiscussed = copySlice(r.Analytics.TopicsDiscussed)
	c.Analytics.HealthScoreHistory = copySlice(r.Analytics.HealthScoreHistory)
	c.Analytics.LastHealthScore = copyPtr(r.Analytics.LastHealthScore)
	return c
}

// LatestReading returns the most recent reading of a vital.
func (r Record) LatestReading(kind vitals.Kind) (vitals.Reading, bool) {
	readings := r.Vitals[kind]
	if len(readings) == 0 {
		return vitals.Reading{}, false
	}
	return readings[len(readings)-1], true
}

// VitalKinds returns the vitals with at least one reading, in a stable order.
func (r Record) VitalKinds() []vitals.Kind {
	order := []vitals.Kind{vitals.BloodPressure, vitals.HeartRate, vitals.Temperature, vitals.BloodSugar, vitals.OxygenSaturation, vitals.Weight}
	var out []vitals.Kind
	seen := make(map[vitals.Kind]bool)
	for _, k := range order {
		if len(r.Vitals[k]) > 0 {
			out = append(out, k)
			seen[k] = true
		}
	}
	var extra []vitals.Kind
	for k, readings := range r.Vitals {
		if !seen[k] && len(readings) > 0 {
			extra = append(extra, k)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

func copySlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
