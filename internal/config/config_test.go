package config

import (
	"testing"
	"time"

	"github.com/hypernova-labs/fbr-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FBR_TIMEOUT", "")
	t.Setenv("FBR_SANDBOX_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://iris-sandbox.fbr.gov.pk/api/v1", cfg.FBR.SandboxURL)
	assert.Equal(t, "https://iris.fbr.gov.pk/api/v1", cfg.FBR.ProductionURL)
	assert.Equal(t, 30*time.Second, cfg.FBR.Timeout)
	assert.Equal(t, 10*time.Second, cfg.FBR.HealthTimeout)
	assert.Equal(t, "fbr_invoice_api", cfg.FBR.Scope)
	assert.Equal(t, "PKR", cfg.FBR.DefaultCurrency)
}

func TestLoad_ClampsFBRTimeout(t *testing.T) {
	t.Setenv("FBR_TIMEOUT", "2m")
	t.Setenv("FBR_HEALTH_TIMEOUT", "1s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.FBR.Timeout)
	assert.Equal(t, 10*time.Second, cfg.FBR.HealthTimeout)
}

func TestFBRBaseURL(t *testing.T) {
	cfg := &Config{FBR: FBRConfig{SandboxURL: "https://sandbox", ProductionURL: "https://prod"}}

	assert.Equal(t, "https://prod", cfg.FBRBaseURL(models.EnvironmentProduction))
	assert.Equal(t, "https://sandbox", cfg.FBRBaseURL(models.EnvironmentSandbox))
}

func TestGetDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: "5432", User: "u", Password: "p", Name: "fbr", SSLMode: "disable",
	}}

	assert.Equal(t, "host=db port=5432 user=u password=p dbname=fbr sslmode=disable", cfg.GetDSN())
}
