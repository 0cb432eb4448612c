package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("HC_STRING", "value")
	t.Setenv("HC_INT", "7")
	t.Setenv("HC_BAD_INT", "seven")
	t.Setenv("HC_DURATION", "45s")
	t.Setenv("HC_LIST", " A1 , ,B2,")

	assert.Equal(t, "value", getEnv("HC_STRING", "fallback"))
	assert.Equal(t, "fallback", getEnv("HC_MISSING", "fallback"))
	assert.Equal(t, 7, getEnvAsInt("HC_INT", 1))
	assert.Equal(t, 1, getEnvAsInt("HC_BAD_INT", 1))
	assert.Equal(t, 45*time.Second, getEnvAsDuration("HC_DURATION", time.Second))
	assert.Equal(t, time.Second, getEnvAsDuration("HC_MISSING", time.Second))
	assert.Equal(t, []string{"A1", "B2"}, getEnvAsList("HC_LIST", nil))
	assert.Equal(t, DefaultAccessCodes, getEnvAsList("HC_MISSING", DefaultAccessCodes))
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("JWT_SECRET", "secret")

	LoadConfig()

	assert.Equal(t, "happiness_creator.db", AppConfig.DatabaseURL)
	assert.Equal(t, "8080", AppConfig.HTTPPort)
	assert.Equal(t, "profile_pics", AppConfig.ProfilePicsDir)
	assert.Equal(t, "secret", AppConfig.SessionKey)
	assert.Equal(t, DefaultAccessCodes, AppConfig.AccessCodes)
	assert.Equal(t, 30*time.Second, AppConfig.LLMTimeout)
}
