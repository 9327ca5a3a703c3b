package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/themobileprof/mediguide-be/internal/advice"
	"github.com/themobileprof/mediguide-be/internal/api"
	"github.com/themobileprof/mediguide-be/internal/api/middleware"
	"github.com/themobileprof/mediguide-be/internal/chat"
	"github.com/themobileprof/mediguide-be/internal/classifier"
	"github.com/themobileprof/mediguide-be/internal/config"
	"github.com/themobileprof/mediguide-be/internal/emergency"
	"github.com/themobileprof/mediguide-be/internal/knowledge"
	"github.com/themobileprof/mediguide-be/internal/platform/logger"
	"github.com/themobileprof/mediguide-be/internal/profile"
	"github.com/themobileprof/mediguide-be/internal/report"
	"github.com/themobileprof/mediguide-be/internal/scoring"
	"github.com/themobileprof/mediguide-be/internal/session"
	"github.com/themobileprof/mediguide-be/internal/symptoms"
	"github.com/themobileprof/mediguide-be/internal/trends"
	"github.com/themobileprof/mediguide-be/internal/vitals"
	"github.com/themobileprof/mediguide-be/internal/wellness"
	"github.com/themobileprof/mediguide-be/internal/ws"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, cfgErr := config.Load()

	log, err := logger.New(logger.Options{
		Mode:      cfg.LogMode,
		Redact:    cfg.LogRedact,
		HashSalt:  cfg.LogHashSalt,
		DebugMode: cfg.IsDevelopment(),
	})
	if err != nil {
		return err
	}
	defer log.Sync()

	if !cfg.EnvFileLoaded {
		log.Warn(".env file not found, using process environment")
	}
	if errors.Is(cfgErr, config.ErrMissing) {
		return cfgErr
	}
	if cfgErr != nil {
		log.Warn("invalid settings replaced with defaults", "error", cfgErr)
	}
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	kb, err := loadKnowledge(cfg.ReferenceDataDir)
	if err != nil {
		return fmt.Errorf("load reference data: %w", err)
	}
	log.Info("reference data loaded", "conditions", len(kb.Conditions()), "tip_categories", len(kb.TipCategories()))

	engine := newEngine(cfg, kb, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var auth *api.AuthHandler
	if cfg.AuthTokenIssuer {
		auth = api.NewAuthHandler(cfg.JWTSecret, cfg.TokenTTL, cfg.AccessCodeHash)
	}
	chatHandler := ws.NewChatHandler(engine, cfg.JWTSecret, cfg.CORSOrigins, int(cfg.UserRatePerMin), log)

	router := api.NewRouter(api.RouterConfig{
		Health:      api.NewHealthHandler(engine, log),
		Auth:        auth,
		Chat:        chatHandler.HandleChat,
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
		IPLimiter:   middleware.NewRateLimiter(ctx, middleware.PerMinute(cfg.IPRatePerMin), cfg.IPBurst),
		UserLimiter: middleware.NewRateLimiter(ctx, middleware.PerMinute(cfg.UserRatePerMin), cfg.UserBurst),
		Logger:      log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", "addr", srv.Addr, "token_issuer", cfg.AuthTokenIssuer)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server exited")
	return nil
}

func loadKnowledge(dir string) (*knowledge.Base, error) {
	if dir == "" {
		return knowledge.Load()
	}
	return knowledge.LoadDir(dir)
}

func newEngine(cfg config.Config, kb *knowledge.Base, log *logger.Logger) *chat.Engine {
	store := session.NewStore(session.Options{
		Logger:         log,
		ActivityWindow: cfg.ActivityDedupWindow,
	})
	trendCfg := trends.Config{DeltaPct: cfg.TrendDeltaPct, Window: cfg.TrendWindow}
	scoreCfg := scoring.DefaultConfig()
	scoreCfg.Window = cfg.ScoreWindow

	return chat.NewEngine(chat.Deps{
		Store:      store,
		Emergency:  emergency.NewDetector(cfg.EmergencyThreshold),
		Vitals:     vitals.NewExtractor(),
		Profile:    profile.NewExtractor(kb.Symptoms()...),
		Symptoms:   symptoms.NewMatcher(kb),
		Classifier: classifier.NewClassifier(),
		Activities: wellness.NewDetector(),
		Tips:       wellness.NewTipSelector(kb, cfg.TipEvery, nil),
		Resources:  kb,
		Scorer:     scoring.NewScorer(scoreCfg, nil),
		Trends:     trends.NewAnalyzer(trendCfg, nil),
		Views: report.NewBuilder(report.Config{
			DashboardSymptoms: cfg.DashboardSymptoms,
			ReportSymptoms:    cfg.ReportSymptoms,
			Trends:            trendCfg,
			Actions:           advice.DefaultActionConfig(),
		}, nil),
		Logger: log,
	}, cfg.ScoreEvery)
}
