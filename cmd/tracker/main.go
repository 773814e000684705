// Package main provides the value tracker CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/value-tracker/internal/api"
	"github.com/yourusername/value-tracker/internal/config"
	"github.com/yourusername/value-tracker/internal/database"
	"github.com/yourusername/value-tracker/internal/feed"
	"github.com/yourusername/value-tracker/internal/health"
	"github.com/yourusername/value-tracker/internal/ledger"
	"github.com/yourusername/value-tracker/internal/logger"
	"github.com/yourusername/value-tracker/internal/model"
	"github.com/yourusername/value-tracker/internal/scheduler"
	"github.com/yourusername/value-tracker/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	appLog     *logrus.Logger
	cfg        *config.Config
	store      ledger.Store
	tracker    *service.Tracker
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(updateCmd, portfolioCmd, reportCmd, serveCmd)
	updateCmd.Flags().Bool("all", false, "Record every qualifying matchup instead of the best per day")
	reportCmd.Flags().Int("days", 0, "Days ahead to scan (defaults to configured days_ahead)")
}

var rootCmd = &cobra.Command{
	Use:   "tracker",
	Short: "Value bet ledger tracker",
	Long:  `Selects positive expected-value bets from model predictions and market odds, records them to a ledger, settles them against results, and reports portfolio performance.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return setupDependencies(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			store.Close(context.Background())
		}
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Run one ledger update pass",
	RunE: func(cmd *cobra.Command, args []string) error {
		policy := policyFromConfig()
		if all, _ := cmd.Flags().GetBool("all"); all {
			policy.DayCap = 0
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
		defer cancel()

		p, err := tracker.UpdateLedger(ctx, policy)
		if err != nil {
			return err
		}

		fmt.Printf("Recorded %d new bets, settled %d.\n", p.Created, p.Settled)
		n := len(p.Timeseries)
		for _, point := range p.Timeseries[max(0, n-3):] {
			fmt.Printf("  %s  invested=%.2f  value=%.2f  open=%d\n",
				point.Date, point.Invested, point.Value, point.OpenBets)
		}
		return nil
	},
}

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Print the current portfolio summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := tracker.GetPortfolio(cmd.Context())
		if err != nil {
			return err
		}

		s := p.Summary
		fmt.Printf("Bets: %d total, %d open, %d won, %d lost\n", s.TotalBets, s.OpenBets, s.Won, s.Lost)
		fmt.Printf("Staked: %.2f  Returned: %.2f  Profit: %.2f\n", s.TotalStaked, s.SettledReturn, s.Profit)
		fmt.Printf("ROI: %.1f%%  Win rate: %.1f%%\n", s.ROI*100, s.WinRate*100)
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the value report for upcoming matchups",
	RunE: func(cmd *cobra.Command, args []string) error {
		policy := policyFromConfig()
		if days, _ := cmd.Flags().GetInt("days"); days > 0 {
			policy.DaysAhead = days
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
		defer cancel()

		quotes, err := tracker.ValueReport(ctx, policy)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(quotes)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server and scheduled daily updates",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		healthServer := health.NewServer(health.Config{
			ServiceName: cfg.App.Name,
			Port:        cfg.Server.HealthPort,
			Logger:      appLog,
			Store:       store,
		})
		if err := healthServer.Start(ctx); err != nil {
			return err
		}

		apiServer := api.NewServer(tracker, api.Config{
			Address:        cfg.Server.APIAddress,
			Policy:         policyFromConfig(),
			MetricsEnabled: cfg.Server.MetricsEnabled,
			AllowedOrigin:  cfg.Server.AllowedOrigin,
			Logger:         appLog,
		})

		var sched *scheduler.Scheduler
		if cfg.Schedule.Enabled {
			sched = scheduler.NewScheduler(tracker, policyFromConfig(), appLog)
			sched.OnUpdate(apiServer.Hub().Broadcast)
			if err := sched.ScheduleDailyUpdate(cfg.Schedule.CronExpr); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()
		}

		healthServer.SetReady(true)
		return apiServer.Start(ctx)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(context.Background(), cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	return config.Validate(cfg)
}

func setupDependencies(ctx context.Context) error {
	appLog = logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
		"commit":      GitCommit,
	}).Info("Value tracker starting")

	var err error
	store, err = buildStore(ctx)
	if err != nil {
		return err
	}

	httpClient := feed.NewRateLimitedHTTPClient(feedClientConfig(), appLog)
	cacheTTL := time.Duration(cfg.Feeds.CacheTTLMins) * time.Minute

	predictor := model.NewClient(cfg.Feeds.ModelURL, httpClient, cacheTTL, appLog)
	teams := feed.NewStaticTeamMap(feed.DefaultNHLTeams())
	quotes := feed.NewOddsClient(cfg.Feeds.OddsURL, cfg.Feeds.Tournament, cfg.Feeds.APIKey, httpClient, predictor, teams, appLog)
	results := feed.NewScoreboardClient(cfg.Feeds.ScoreboardURL, httpClient, cacheTTL, appLog)

	tracker = service.NewTracker(ledger.New(store, appLog), quotes, results, appLog)
	return nil
}

func buildStore(ctx context.Context) (ledger.Store, error) {
	switch cfg.Ledger.Backend {
	case "postgres":
		db, err := database.NewDB(ctx, database.Config{
			Host:     cfg.Ledger.Database.Host,
			Port:     cfg.Ledger.Database.Port,
			Name:     cfg.Ledger.Database.Name,
			User:     cfg.Ledger.Database.User,
			Password: cfg.Ledger.Database.Password,
			SSLMode:  cfg.Ledger.Database.SSLMode,
			MaxConns: cfg.Ledger.Database.MaxConns,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to ledger database: %w", err)
		}
		return ledger.NewPostgresStore(db, appLog), nil
	default:
		return ledger.NewFileStore(cfg.Ledger.Path, appLog)
	}
}

func feedClientConfig() feed.HTTPClientConfig {
	c := feed.DefaultHTTPClientConfig()
	if cfg.Feeds.TimeoutSeconds > 0 {
		c.Timeout = time.Duration(cfg.Feeds.TimeoutSeconds) * time.Second
	}
	if cfg.Feeds.MaxRetries > 0 {
		c.MaxRetries = cfg.Feeds.MaxRetries
	}
	if cfg.Feeds.RateLimit > 0 {
		c.RateLimit = cfg.Feeds.RateLimit
	}
	return c
}

func policyFromConfig() service.Policy {
	return service.Policy{
		DaysAhead:   cfg.Tracking.DaysAhead,
		StakePerBet: cfg.Tracking.StakePerBet,
		MinValue:    cfg.Tracking.MinValue,
		DayCap:      cfg.Tracking.DayCap,
	}
}
