package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chrisdamba/foodpredict/internal/events"
	"github.com/chrisdamba/foodpredict/internal/factories"
	"github.com/chrisdamba/foodpredict/internal/logger"
	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/chrisdamba/foodpredict/internal/predictive"
	"github.com/chrisdamba/foodpredict/internal/repositories"
	"github.com/chrisdamba/foodpredict/internal/repositories/memory"
	"github.com/chrisdamba/foodpredict/internal/repositories/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var cfgFile string

// app is everything a subcommand needs, built once per invocation.
type app struct {
	cfg       *models.Config
	log       *logger.Logger
	loc       *time.Location
	repos     repositories.Repositories
	pool      *pgxpool.Pool
	publisher *events.Publisher

	analyzer   *predictive.BehaviorAnalyzer
	recognizer *predictive.PatternRecognizer
	forecaster *predictive.QuantityForecaster
	engine     *predictive.SuggestionEngine
	scheduler  *predictive.DeliveryScheduler
	reporter   *predictive.DemandReporter
}

var current *app

var rootCmd = &cobra.Command{
	Use:   "foodpredict",
	Short: "Predictive analytics for food ordering platforms",
	Long: `foodpredict learns customer ordering habits from order history and turns
them into auto-order suggestions, per-item quantity forecasts, delivery
capacity schedules and demand reports for restaurants.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		current = a
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./foodpredict.yaml)")
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := models.LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("error building logger: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, loc: loc}

	switch cfg.Store {
	case "", "memory":
		a.repos = memory.NewStore().Repositories()
	case "postgres":
		if a.pool, err = postgres.Connect(ctx, cfg.Database); err != nil {
			return nil, err
		}
		a.repos = postgres.NewRepositories(a.pool, loc)
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	sink, err := events.NewSink(cfg)
	if err != nil {
		a.close()
		return nil, err
	}
	a.publisher = events.NewPublisher(sink, cfg.Kafka.TopicPrefix)

	opts := predictive.Options{
		Config:   cfg.Predictive,
		Logger:   log,
		Location: loc,
		Events:   a.publisher,
	}
	a.analyzer = predictive.NewBehaviorAnalyzer(a.repos, opts)
	a.recognizer = predictive.NewPatternRecognizer(a.repos, opts)
	a.forecaster = predictive.NewQuantityForecaster(a.repos, opts)
	a.engine = predictive.NewSuggestionEngine(a.repos, a.recognizer, a.analyzer, opts)
	a.scheduler = predictive.NewDeliveryScheduler(a.repos, opts)
	a.reporter = predictive.NewDemandReporter(a.repos, a.forecaster, opts)
	return a, nil
}

func (a *app) close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("failed to close event sink", "error", err)
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	a.log.Sync()
}

// ensureData seeds a generated dataset when running on the in-memory store,
// which starts empty on every invocation.
func (a *app) ensureData(ctx context.Context) error {
	if a.pool != nil {
		return nil
	}
	n, err := a.repos.Users.Count(ctx)
	if err != nil || n > 0 {
		return err
	}
	ds, err := factories.NewGenerator(a.cfg.Seed).Generate(time.Now().In(a.loc), a.cfg.Seed.Users/5)
	if err != nil {
		return err
	}
	a.log.Debug("seeding in-memory store", "users", len(ds.Users), "orders", len(ds.Orders))
	return ds.Load(ctx, a.repos, 0, nil)
}

// parseDate reads a date argument under the configured invalid-date policy.
func (a *app) parseDate(raw string) (time.Time, error) {
	return models.ParseTargetDate(raw, a.cfg.InvalidDatePolicy, time.Now(), a.loc)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := execute(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func execute(ctx context.Context) error {
	defer closeApp()
	return rootCmd.ExecuteContext(ctx)
}

// closeApp releases the store and event sink whether or not the command failed.
func closeApp() {
	if current != nil {
		current.close()
		current = nil
	}
}
