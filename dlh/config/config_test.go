package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("AI_GATEWAY_URL", "http://gateway.local/v1/")
	t.Setenv("AI_GATEWAY_API_KEY", "")
	t.Setenv("LOVABLE_API_KEY", "legacy-key")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")

	cfg := LoadConfig()

	assert.Equal(t, "http://gateway.local/v1", cfg.Gateway.BaseURL)
	assert.Equal(t, "legacy-key", cfg.Gateway.APIKey)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, "dlh", cfg.MinIOBucket)
}

func TestValidate(t *testing.T) {
	cfg := Config{DBHost: "db"}
	assert.Error(t, cfg.Validate())

	cfg.JWTSecret = "secret"
	assert.NoError(t, cfg.Validate())

	cfg.DBHost = ""
	assert.Error(t, cfg.Validate())
}

func TestDefaultTutorConfig(t *testing.T) {
	cfg, err := LoadTutorConfig("")
	require.NoError(t, err)

	assert.Contains(t, cfg.BasePrompt, "DLH Smart Tutor")
	prompts := cfg.CoursePromptMap()
	assert.Len(t, prompts, len(cfg.Courses))
	assert.Contains(t, prompts["web-development"], "Web Development")
}

func TestParseTutorConfigRejectsDuplicates(t *testing.T) {
	_, err := ParseTutorConfig([]byte(`
base_prompt: hi
courses:
  - id: a
    title: A
  - id: a
    title: Again
`))
	assert.ErrorContains(t, err, "duplicate course id")
}

func TestParseTutorConfigRequiresBasePrompt(t *testing.T) {
	_, err := ParseTutorConfig([]byte("courses: []\n"))
	assert.Error(t, err)
}
