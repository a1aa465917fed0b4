package models

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type MenuDish struct {
	Name     string `mapstructure:"name"`
	Category string `mapstructure:"category"`
}

type DatabaseConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
}

type KafkaConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	BrokerList       string `mapstructure:"broker_list"`
	TopicPrefix      string `mapstructure:"topic_prefix"`
	SessionTimeoutMs int    `mapstructure:"session_timeout_ms"`
}

type OutputConfig struct {
	Destination string `mapstructure:"destination"` // console, file or kafka
	Folder      string `mapstructure:"folder"`
}

type ExportConfig struct {
	Destination string `mapstructure:"destination"` // local or s3
	Folder      string `mapstructure:"folder"`
	BucketName  string `mapstructure:"bucket_name"`
	Region      string `mapstructure:"region"`
}

type SeedConfig struct {
	Seed             int        `mapstructure:"seed"`
	Users            int        `mapstructure:"users"`
	Restaurants      int        `mapstructure:"restaurants"`
	HistoryDays      int        `mapstructure:"history_days"`
	OrdersPerUserDay float64    `mapstructure:"orders_per_user_day"`
	CityLat          float64    `mapstructure:"city_latitude"`
	CityLon          float64    `mapstructure:"city_longitude"`
	UrbanRadius      float64    `mapstructure:"urban_radius"`
	MenuDishes       []MenuDish `mapstructure:"menu_dishes"`
}

// PredictiveConfig holds every tunable threshold of the predictive services.
type PredictiveConfig struct {
	MinFrequency        int            `mapstructure:"min_frequency"`
	MinConfidence       float64        `mapstructure:"min_confidence"`
	DailySlotShare      float64        `mapstructure:"daily_slot_share"`
	PairConfidence      float64        `mapstructure:"pair_confidence"`
	MaxPairPatterns     int            `mapstructure:"max_pair_patterns"`
	HistoryDays         int            `mapstructure:"history_days"`
	AnalysisDays        int            `mapstructure:"analysis_days"`
	SeasonalFactor      float64        `mapstructure:"seasonal_factor"`
	SuggestionExpiry    time.Duration  `mapstructure:"suggestion_expiry"`
	ClusterRadiusKm     float64        `mapstructure:"cluster_radius_km"`
	MinutesPerStop      int            `mapstructure:"minutes_per_stop"`
	OrdersPerDriverHour float64        `mapstructure:"orders_per_driver_hour"`
	DriverBuffer        float64        `mapstructure:"driver_buffer"`
	PeakThreshold       int            `mapstructure:"peak_threshold"`
	ScheduleStartHour   int            `mapstructure:"schedule_start_hour"`
	ScheduleEndHour     int            `mapstructure:"schedule_end_hour"`
	DiscountTiers       []DiscountTier `mapstructure:"discount_tiers"`
}

type Config struct {
	Timezone          string           `mapstructure:"timezone"`
	Store             string           `mapstructure:"store"` // memory or postgres
	LogMode           string           `mapstructure:"log_mode"`
	InvalidDatePolicy DatePolicy       `mapstructure:"invalid_date_policy"`
	AnalyzeWorkers    int              `mapstructure:"analyze_workers"`
	Database          DatabaseConfig   `mapstructure:"database"`
	Kafka             KafkaConfig      `mapstructure:"kafka"`
	Output            OutputConfig     `mapstructure:"output"`
	Export            ExportConfig     `mapstructure:"export"`
	Seed              SeedConfig       `mapstructure:"seed"`
	Predictive        PredictiveConfig `mapstructure:"predictive"`
}

// DefaultPredictiveConfig returns the production thresholds.
func DefaultPredictiveConfig() PredictiveConfig {
	return PredictiveConfig{
		MinFrequency:        3,
		MinConfidence:       0.6,
		DailySlotShare:      0.7,
		PairConfidence:      0.4,
		MaxPairPatterns:     5,
		HistoryDays:         30,
		AnalysisDays:        30,
		SeasonalFactor:      1.2,
		SuggestionExpiry:    2 * time.Hour,
		ClusterRadiusKm:     2,
		MinutesPerStop:      15,
		OrdersPerDriverHour: 3,
		DriverBuffer:        1.2,
		PeakThreshold:       10,
		ScheduleStartHour:   6,
		ScheduleEndHour:     23,
		DiscountTiers: []DiscountTier{
			{MinOrders: 50, MinRevenue: 5000, DiscountPct: 5},
			{MinOrders: 100, MinRevenue: 10000, DiscountPct: 8},
			{MinOrders: 200, MinRevenue: 20000, DiscountPct: 12},
			{MinOrders: 500, MinRevenue: 50000, DiscountPct: 15},
		},
	}
}

// WithDefaults fills zero values from DefaultPredictiveConfig.
func (c PredictiveConfig) WithDefaults() PredictiveConfig {
	d := DefaultPredictiveConfig()
	if c.MinFrequency <= 0 {
		c.MinFrequency = d.MinFrequency
	}
	if c.MinConfidence <= 0 {
		c.MinConfidence = d.MinConfidence
	}
	if c.DailySlotShare <= 0 {
		c.DailySlotShare = d.DailySlotShare
	}
	if c.PairConfidence <= 0 {
		c.PairConfidence = d.PairConfidence
	}
	if c.MaxPairPatterns <= 0 {
		c.MaxPairPatterns = d.MaxPairPatterns
	}
	if c.HistoryDays <= 0 {
		c.HistoryDays = d.HistoryDays
	}
	if c.AnalysisDays <= 0 {
		c.AnalysisDays = d.AnalysisDays
	}
	if c.SeasonalFactor <= 0 {
		c.SeasonalFactor = d.SeasonalFactor
	}
	if c.SuggestionExpiry <= 0 {
		c.SuggestionExpiry = d.SuggestionExpiry
	}
	if c.ClusterRadiusKm <= 0 {
		c.ClusterRadiusKm = d.ClusterRadiusKm
	}
	if c.MinutesPerStop <= 0 {
		c.MinutesPerStop = d.MinutesPerStop
	}
	if c.OrdersPerDriverHour <= 0 {
		c.OrdersPerDriverHour = d.OrdersPerDriverHour
	}
	if c.DriverBuffer <= 0 {
		c.DriverBuffer = d.DriverBuffer
	}
	if c.PeakThreshold <= 0 {
		c.PeakThreshold = d.PeakThreshold
	}
	if c.ScheduleEndHour <= c.ScheduleStartHour {
		c.ScheduleStartHour, c.ScheduleEndHour = d.ScheduleStartHour, d.ScheduleEndHour
	}
	if len(c.DiscountTiers) == 0 {
		c.DiscountTiers = d.DiscountTiers
	}
	return c
}

// Location resolves the configured timezone, UTC when unset.
func (cfg *Config) Location() (*time.Location, error) {
	if cfg.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	return loc, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultPredictiveConfig()
	v.SetDefault("timezone", "UTC")
	v.SetDefault("store", "memory")
	v.SetDefault("log_mode", "development")
	v.SetDefault("invalid_date_policy", string(DatePolicyReject))
	v.SetDefault("analyze_workers", 4)
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("kafka.broker_list", "localhost:9092")
	v.SetDefault("output.destination", "console")
	v.SetDefault("output.folder", "output")
	v.SetDefault("export.destination", "local")
	v.SetDefault("export.folder", "exports")
	v.SetDefault("seed.seed", 42)
	v.SetDefault("seed.users", 50)
	v.SetDefault("seed.restaurants", 10)
	v.SetDefault("seed.history_days", 60)
	v.SetDefault("seed.orders_per_user_day", 0.3)
	v.SetDefault("seed.city_latitude", 51.5074)
	v.SetDefault("seed.city_longitude", -0.1278)
	v.SetDefault("seed.urban_radius", 8.0)
	v.SetDefault("predictive.min_frequency", d.MinFrequency)
	v.SetDefault("predictive.min_confidence", d.MinConfidence)
	v.SetDefault("predictive.history_days", d.HistoryDays)
	v.SetDefault("predictive.analysis_days", d.AnalysisDays)
	v.SetDefault("predictive.suggestion_expiry", d.SuggestionExpiry.String())
	v.SetDefault("predictive.cluster_radius_km", d.ClusterRadiusKm)
	v.SetDefault("predictive.orders_per_driver_hour", d.OrdersPerDriverHour)
}

// LoadConfig initializes and reads the configuration using Viper. A missing
// config file is not an error when no explicit path was given.
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("examples")
		v.SetConfigName("foodpredict")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("FOODPREDICT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err := v.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	config.Predictive = config.Predictive.WithDefaults()

	switch config.InvalidDatePolicy {
	case DatePolicyReject, DatePolicyUseToday:
	default:
		return nil, fmt.Errorf("unknown invalid_date_policy %q", config.InvalidDatePolicy)
	}

	return &config, nil
}

// LoadMenuDishData reads a CSV of (id, name, category) rows used to name seeded menu items.
func (cfg *Config) LoadMenuDishData(filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.Read()

	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if len(fields) < 2 {
			continue
		}
		dish := MenuDish{Name: fields[1]}
		if len(fields) > 2 {
			dish.Category = fields[2]
		}
		cfg.Seed.MenuDishes = append(cfg.Seed.MenuDishes, dish)
	}

	return nil
}
