// Package config reads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

var (
	// ErrMissing is returned when a required variable is unset.
	ErrMissing = errors.New("required environment variable not set")
	// ErrInvalid is returned when a variable cannot be parsed.
	ErrInvalid = errors.New("invalid environment variable")
)

// Config holds every tunable of the server
type Config struct {
	Port             string
	JWTSecret        string
	TokenTTL         time.Duration
	AuthTokenIssuer  bool
	AccessCodeHash   string
	LogMode          string
	LogHashSalt      string
	LogRedact        bool
	ReferenceDataDir string
	CORSOrigins      []string
	ShutdownTimeout  time.Duration

	// Requests per minute and burst sizes
	IPRatePerMin   float64
	IPBurst        int
	UserRatePerMin float64
	UserBurst      int

	EmergencyThreshold  int
	TrendDeltaPct       float64
	ScoreWindow         time.Duration
	TrendWindow         time.Duration
	ActivityDedupWindow time.Duration
	ScoreEvery          int
	TipEvery            int
	DashboardSymptoms   int
	ReportSymptoms      int

	// EnvFileLoaded reports whether a .env file was read
	EnvFileLoaded bool
}

// Load reads .env if present, then the process environment.
func Load() (Config, error) {
	loaded := godotenv.Load() == nil
	cfg, err := LoadFrom(os.LookupEnv)
	cfg.EnvFileLoaded = loaded
	return cfg, err
}

// LoadFrom reads settings through lookup. Every invalid variable is
// reported in the returned error.
func LoadFrom(lookup func(string) (string, bool)) (Config, error) {
	e := env{lookup: lookup}

	cfg := Config{
		Port:             e.str("PORT", "8080"),
		JWTSecret:        e.str("JWT_SECRET", ""),
		TokenTTL:         e.duration("TOKEN_TTL", 7*24*time.Hour),
		AuthTokenIssuer:  e.boolean("AUTH_TOKEN_ISSUER", true),
		AccessCodeHash:   e.str("AUTH_ACCESS_CODE_HASH", ""),
		LogMode:          e.str("LOG_MODE", "production"),
		LogHashSalt:      e.str("LOG_HASH_SALT", ""),
		LogRedact:        e.boolean("LOG_REDACT", true),
		ReferenceDataDir: e.str("REFERENCE_DATA_DIR", ""),
		CORSOrigins:      e.list("CORS_ALLOWED_ORIGINS", []string{"*"}),
		ShutdownTimeout:  e.duration("SHUTDOWN_TIMEOUT", 5*time.Second),

		IPRatePerMin:   e.float("RATE_LIMIT_IP_PER_MIN", 100),
		IPBurst:        e.integer("RATE_LIMIT_IP_BURST", 200),
		UserRatePerMin: e.float("RATE_LIMIT_USER_PER_MIN", 30),
		UserBurst:      e.integer("RATE_LIMIT_USER_BURST", 10),

		EmergencyThreshold:  e.integer("EMERGENCY_THRESHOLD", 9),
		TrendDeltaPct:       e.float("TREND_DELTA_PCT", 0.05),
		ScoreWindow:         e.duration("SCORE_WINDOW", 7*24*time.Hour),
		TrendWindow:         e.duration("TREND_WINDOW", 14*24*time.Hour),
		ActivityDedupWindow: e.duration("ACTIVITY_DEDUP_WINDOW", time.Hour),
		ScoreEvery:          e.integer("SCORE_EVERY", 3),
		TipEvery:            e.integer("TIP_EVERY", 5),
		DashboardSymptoms:   e.integer("DASHBOARD_SYMPTOMS", 5),
		ReportSymptoms:      e.integer("REPORT_SYMPTOMS", 10),
	}

	if cfg.JWTSecret == "" {
		e.errs = multierr.Append(e.errs, fmt.Errorf("%w: JWT_SECRET", ErrMissing))
	}
	return cfg, e.errs
}

// IsDevelopment reports whether logs run in development mode.
func (c Config) IsDevelopment() bool {
	return c.LogMode == "development"
}

type env struct {
	lookup func(string) (string, bool)
	errs   error
}

func (e *env) raw(key string) (string, bool) {
	v, ok := e.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *env) str(key, def string) string {
	if v, ok := e.raw(key); ok {
		return v
	}
	return def
}

func (e *env) integer(key string, def int) int {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		e.invalid(key, v)
		return def
	}
	return i
}

func (e *env) float(key string, def float64) float64 {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.invalid(key, v)
		return def
	}
	return f
}

func (e *env) boolean(key string, def bool) bool {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.invalid(key, v)
		return def
	}
	return b
}

// duration accepts Go durations ("90m", "168h") or plain seconds.
func (e *env) duration(key string, def time.Duration) time.Duration {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.invalid(key, v)
		return def
	}
	return d
}

func (e *env) list(key string, def []string) []string {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (e *env) invalid(key, value string) {
	e.errs = multierr.Append(e.errs, fmt.Errorf("%w: %s=%q", ErrInvalid, key, value))
}
