package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.True(t, cfg.Analytics.Enabled)
	assert.Equal(t, SignificanceProportionZ, cfg.Analytics.SignificanceTest)
	assert.Equal(t, 4, cfg.Analytics.Concurrency)
	assert.Contains(t, cfg.Analytics.LearningProfiles, "Dyslexia")
	assert.Equal(t, 7*24*time.Hour, cfg.Reports.AutoInterval)
	assert.Equal(t, "pdf", cfg.Reports.AutoFormat)
}

func TestLoadFromEnvironment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ANALYTICS_SIGNIFICANCE_TEST", "GROWTH_WELCH")
	t.Setenv("ANALYTICS_CONTROL_INTERVENTIONS", "Standard Instruction, Peer Tutoring")
	t.Setenv("REPORTS_AUTO_INTERVAL", "24h")
	t.Setenv("JWT_AUDIENCE", "insights-api")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, SignificanceGrowthWelch, cfg.Analytics.SignificanceTest)
	assert.Equal(t, []string{"Standard Instruction", "Peer Tutoring"}, cfg.Analytics.ControlInterventions)
	assert.Equal(t, 24*time.Hour, cfg.Reports.AutoInterval)
	assert.Equal(t, []string{"insights-api"}, cfg.JWT.Audience)
}

func TestLoadRejectsInvalidAnalyticsSettings(t *testing.T) {
	chdirTemp(t)

	t.Setenv("ANALYTICS_SIGNIFICANCE_TEST", "chi_square")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("ANALYTICS_SIGNIFICANCE_TEST", SignificanceProportionZ)
	t.Setenv("ANALYTICS_CONTROL_RATE", "1.5")
	_, err = Load()
	require.Error(t, err)
}

func TestLoadRequiresSecretInProduction(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ENV", EnvProduction)

	_, err := Load()
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "a-real-secret")
	_, err = Load()
	require.NoError(t, err)
}
