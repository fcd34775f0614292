// internal/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func baseConfig() *Config {
	return &Config{
		Environment: "development",
		JWT:         JWTConfig{SecretKey: "a-real-secret"},
		Database:    DatabaseConfig{Password: "pw"},
		Registry: RegistryConfig{
			HighValueThreshold:   10000,
			TimeLockDelay:        86400,
			MaxBatchSize:         20,
			OperationCeiling:     100,
			MaxNameLength:        255,
			MaxDescriptionLength: 4000,
		},
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, baseConfig().Validate())
}

func TestValidateRejectsDefaultSecretInProduction(t *testing.T) {
	cfg := baseConfig()
	cfg.Environment = "production"
	cfg.JWT.SecretKey = "your-secret-key-change-in-production"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsMissingPasswordInProduction(t *testing.T) {
	cfg := baseConfig()
	cfg.Environment = "production"
	cfg.Database.Password = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadRegistryKnobs(t *testing.T) {
	cfg := baseConfig()
	cfg.Registry.OperationCeiling = 0
	assert.Error(t, cfg.Validate())

	cfg = baseConfig()
	cfg.Registry.MaxBatchSize = 0
	assert.Error(t, cfg.Validate())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, int64(10000), cfg.Registry.HighValueThreshold)
	assert.Equal(t, int64(86400), cfg.Registry.TimeLockDelay)
	assert.Equal(t, 20, cfg.Registry.MaxBatchSize)
	assert.Equal(t, int64(100), cfg.Registry.OperationCeiling)
	assert.Equal(t, int64(100), cfg.Payment.UnitScale)
}
