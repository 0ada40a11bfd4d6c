package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"child-health-tracker/internal/agent"
	"child-health-tracker/internal/config"
	"child-health-tracker/internal/growth"
	"child-health-tracker/internal/insight"
	"child-health-tracker/internal/platform/cache"
	"child-health-tracker/internal/platform/database"
	"child-health-tracker/internal/platform/logging"
	"child-health-tracker/internal/platform/middleware"
	"child-health-tracker/internal/platform/telegram"
	"child-health-tracker/internal/report"
	"child-health-tracker/internal/screening"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "server",
		Short: "Child growth and development tracker API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(analyzeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), cmd.OutOrStdout(), true)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), cmd.OutOrStdout(), false)
		},
	})
	return cmd
}

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a profile JSON file offline with the rule-based analyzer",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("profile")
			metric, _ := cmd.Flags().GetString("metric")
			return runAnalyze(cmd.OutOrStdout(), path, growth.Metric(metric))
		},
	}
	cmd.Flags().String("profile", "", "Path to a profile JSON file")
	cmd.Flags().String("metric", string(growth.MetricHeight), "Metric to analyze (height, weight, head)")
	cmd.MarkFlagRequired("profile")
	return cmd
}

func runMigrate(ctx context.Context, out io.Writer, up bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	changed, err := db.Migrate(cfg.MigrationsDir, up)
	if err != nil {
		return err
	}
	if !changed {
		fmt.Fprintln(out, "No migrations to apply.")
		return nil
	}
	fmt.Fprintf(out, "Migrations on %s applied successfully.\n", db.Dialect.Name())
	return nil
}

// analysisOutput is what the analyze command prints.
type analysisOutput struct {
	Insight     growth.Insight `json:"insight"`
	MonthDomain growth.Range   `json:"month_domain"`
	ValueDomain growth.Range   `json:"value_domain"`
}

func runAnalyze(out io.Writer, path string, metric growth.Metric) error {
	if !metric.Valid() {
		return fmt.Errorf("%w: %s", growth.ErrInvalidMetric, metric)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read profile: %w", err)
	}

	var raw growth.ChildProfile
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode profile: %w", err)
	}

	// Rebuild through WithRecord so the history is sorted and deduplicated.
	p := growth.NewProfile(raw.Name, raw.BirthDate, raw.Gender, nil)
	for _, r := range raw.GrowthHistory {
		if !r.IsEmpty() {
			p = p.WithRecord(r)
		}
	}

	chart := growth.BuildChart(p, metric)
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(analysisOutput{
		Insight:     growth.Analyze(p, metric),
		MonthDomain: chart.MonthDomain,
		ValueDomain: chart.ValueDomain,
	})
}

func openDatabase(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	return database.Open(ctx, cfg.DatabaseType, database.DialectConfig{
		Path: cfg.DatabasePath,
		URL:  cfg.DatabaseURL,
	})
}

func runServer() error {
	// Config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Logger
	logger := logging.New(logging.Options{Level: cfg.LogLevel, Dev: cfg.IsDev(), File: cfg.LogFile})

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	logger.Info().Str("dialect", db.Dialect.Name()).Msg("connected to database")

	if changed, err := db.Migrate(cfg.MigrationsDir, true); err != nil {
		logger.Fatal().Err(err).Msg("migrations failed")
	} else if changed {
		logger.Info().Msg("migrations applied")
	}

	// Insight stores
	growthStore, narrativeStore, closeStores, err := insightStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up insight cache")
	}
	defer closeStores()

	// Providers
	var (
		growthProvider    growth.InsightProvider    = growth.RuleBasedProvider{}
		screeningProvider screening.InsightProvider = screening.RuleBasedProvider{}
	)
	if cfg.RemoteInsights() {
		client := agent.NewDeepSeekClient(agent.Config{
			APIKey:  cfg.DeepSeekAPIKey,
			BaseURL: cfg.DeepSeekBaseURL,
			Model:   cfg.DeepSeekModel,
			Timeout: cfg.AITimeout(),
		})
		growthProvider = agent.NewGrowthAnalyst(client)
		screeningProvider = agent.NewDevelopmentAnalyst(client)
		logger.Info().Str("model", cfg.DeepSeekModel).Msg("using remote insight provider")
	}

	// Services
	growthSvc := growth.NewService(
		growth.NewRepository(db),
		growthProvider,
		insight.NewGate(growthStore, logger.With().Str("gate", "growth").Logger()),
		logger,
	)
	screeningSvc := screening.NewService(
		screening.NewRepository(db),
		growthSvc,
		screeningProvider,
		insight.NewGate(narrativeStore, logger.With().Str("gate", "screening").Logger()),
		logger,
	)

	var tg report.TelegramClient
	if cfg.TelegramEnabled() {
		tg = telegram.NewClient(cfg.TelegramBotToken)
	} else {
		logger.Warn().Msg("TELEGRAM_BOT_TOKEN is not set, report delivery disabled")
	}
	reportSvc := report.NewService(growthSvc, screeningSvc, tg, cfg.TelegramChatID, cfg.ReportFontPath, logger)

	r := newRouter(logger,
		growth.NewHandler(growthSvc),
		screening.NewHandler(screeningSvc),
		report.NewHandler(reportSvc),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// insightStores picks Redis when REDIS_URL is set, the in-process store otherwise.
func insightStores(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (insight.Store[growth.Insight], insight.Store[screening.Narrative], func(), error) {
	ttl := cfg.InsightCacheTTL()
	if cfg.RedisURL == "" {
		return insight.NewMemoryStore[growth.Insight](ttl), insight.NewMemoryStore[screening.Narrative](ttl), func() {}, nil
	}

	rdb, err := cache.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}
	logger.Info().Msg("insight cache backed by redis")
	closeFn := func() {
		if err := rdb.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close redis")
		}
	}
	return cache.NewRedisStore[growth.Insight](rdb, "insight:growth", ttl),
		cache.NewRedisStore[screening.Narrative](rdb, "insight:screening", ttl),
		closeFn, nil
}

func newRouter(logger zerolog.Logger, gh *growth.Handler, sh *screening.Handler, rh *report.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(cors)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		growth.RegisterRoutes(r, gh)
		screening.RegisterRoutes(r, sh)
		report.RegisterRoutes(r, rh)
	})
	return r
}

// cors lets the browser frontend call the API from another origin.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}
