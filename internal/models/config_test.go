package models

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "foodpredict.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "store: memory\n"))
	require.NoError(t, err)

	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, DatePolicyReject, cfg.InvalidDatePolicy)
	assert.Equal(t, 3, cfg.Predictive.MinFrequency)
	assert.Equal(t, 0.6, cfg.Predictive.MinConfidence)
	assert.Equal(t, 2*time.Hour, cfg.Predictive.SuggestionExpiry)
	assert.Equal(t, 6, cfg.Predictive.ScheduleStartHour)
	assert.Equal(t, 23, cfg.Predictive.ScheduleEndHour)
	assert.Len(t, cfg.Predictive.DiscountTiers, 4)
}

func TestLoadConfigOverrides(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
timezone: Europe/London
invalid_date_policy: use_today
predictive:
  min_confidence: 0.75
  suggestion_expiry: 90m
  discount_tiers:
    - min_orders: 10
      min_revenue: 100
      discount_pct: 3
`))
	require.NoError(t, err)

	assert.Equal(t, DatePolicyUseToday, cfg.InvalidDatePolicy)
	assert.Equal(t, 0.75, cfg.Predictive.MinConfidence)
	assert.Equal(t, 90*time.Minute, cfg.Predictive.SuggestionExpiry)
	assert.Equal(t, []DiscountTier{{MinOrders: 10, MinRevenue: 100, DiscountPct: 3}}, cfg.Predictive.DiscountTiers)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/London", loc.String())
}

func TestLoadConfigRejectsUnknownPolicy(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "invalid_date_policy: guess\n"))
	assert.Error(t, err)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestWithDefaultsKeepsValidSchedule(t *testing.T) {
	cfg := PredictiveConfig{ScheduleStartHour: 8, ScheduleEndHour: 20}.WithDefaults()
	assert.Equal(t, 8, cfg.ScheduleStartHour)
	assert.Equal(t, 20, cfg.ScheduleEndHour)

	cfg = PredictiveConfig{ScheduleStartHour: 20, ScheduleEndHour: 8}.WithDefaults()
	assert.Equal(t, 6, cfg.ScheduleStartHour)
	assert.Equal(t, 23, cfg.ScheduleEndHour)
}
