package scheduler

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mamadbah2/storefront/internal/catalog"
	"github.com/mamadbah2/storefront/internal/config"
	"github.com/mamadbah2/storefront/internal/domain/models"
)

func testCatalog(t *testing.T, now time.Time) *catalog.Catalog {
	t.Helper()
	cat := catalog.New()

	add := func(name string, qty int, p models.Perishability) {
		product, err := models.NewProduct(name, decimal.NewFromInt(10), qty, p, models.NotShippable())
		require.NoError(t, err)
		require.NoError(t, cat.Add(product))
	}
	add("Milk", 3, models.ExpiresOn(now.Add(-time.Hour)))
	add("Yogurt", 0, models.ExpiresOn(now.Add(time.Hour)))
	add("Card", 5, models.NeverExpires())
	return cat
}

func TestSweep(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s, err := NewScheduler(config.SchedulerConfig{ExpirySweepCron: "0 * * * *", Timezone: "UTC"}, testCatalog(t, now), nil)
	require.NoError(t, err)

	result := s.Sweep(now)

	assert.Equal(t, []string{"Milk"}, result.Expired)
	assert.Equal(t, []string{"Yogurt"}, result.OutOfStock)
}

func TestRunSweepLogs(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	core, logs := observer.New(zapcore.InfoLevel)
	s, err := NewScheduler(config.SchedulerConfig{ExpirySweepCron: "0 * * * *", Timezone: "UTC"}, testCatalog(t, now), zap.New(core))
	require.NoError(t, err)
	s.now = func() time.Time { return now }

	s.runSweep()

	expired := logs.FilterMessage("product expired").All()
	require.Len(t, expired, 1)
	assert.Equal(t, zapcore.WarnLevel, expired[0].Level)
	assert.Equal(t, 1, logs.FilterMessage("product out of stock").Len())
}

func TestNewScheduler_InvalidTimezone(t *testing.T) {
	_, err := NewScheduler(config.SchedulerConfig{ExpirySweepCron: "0 * * * *", Timezone: "Mars/Olympus"}, catalog.New(), nil)
	assert.Error(t, err)
}

func TestStart_InvalidSpec(t *testing.T) {
	s, err := NewScheduler(config.SchedulerConfig{ExpirySweepCron: "every now and then", Timezone: "UTC"}, catalog.New(), nil)
	require.NoError(t, err)

	assert.Error(t, s.Start())
}

func TestStartStop(t *testing.T) {
	s, err := NewScheduler(config.SchedulerConfig{ExpirySweepCron: "@every 1h", Timezone: "UTC"}, catalog.New(), nil)
	require.NoError(t, err)

	require.NoError(t, s.Start())
	s.Stop()
}
