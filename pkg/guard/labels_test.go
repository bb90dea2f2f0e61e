package guard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifierConfig_ValidateDefault(t *testing.T) {
	assert.NoError(t, DefaultClassifierConfig().Validate())
}

func TestClassifierConfig_ValidateFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ClassifierConfig)
	}{
		{"missing base model", func(c *ClassifierConfig) { c.BaseModelName = "" }},
		{"malicious cardinality", func(c *ClassifierConfig) { c.Labels.Malicious = []string{"no"} }},
		{"attacked cardinality", func(c *ClassifierConfig) { c.Labels.Attacked = []string{"no", "yes", "maybe"} }},
		{"harmfulness cardinality", func(c *ClassifierConfig) { c.Labels.Harmfulness = []float64{0.0, 1.0} }},
		{"unknown malicious label", func(c *ClassifierConfig) { c.Labels.Malicious = []string{"no", "YES"} }},
		{"unknown harmfulness value", func(c *ClassifierConfig) { c.Labels.Harmfulness = []float64{0.0, 0.7, 1.0} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultClassifierConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfigMismatch)
		})
	}
}

func TestClassifierConfig_Resolve(t *testing.T) {
	cfg := DefaultClassifierConfig()

	triple, err := cfg.Resolve(1, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, PredictionTriple{Malicious: "yes", Attacked: "no", Harmfulness: 1.0}, triple)

	triple, err = cfg.Resolve(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, PredictionTriple{Malicious: "no", Attacked: "no", Harmfulness: 0.0}, triple)
}

func TestClassifierConfig_ResolveOutOfRange(t *testing.T) {
	cfg := DefaultClassifierConfig()

	tests := []struct{ m, a, h int }{
		{2, 0, 0},
		{-1, 0, 0},
		{0, 2, 0},
		{0, 0, 3},
		{0, 0, -1},
	}
	for _, tt := range tests {
		_, err := cfg.Resolve(tt.m, tt.a, tt.h)
		require.Error(t, err, "indices %d %d %d", tt.m, tt.a, tt.h)
		assert.ErrorIs(t, err, ErrInvalidTriple)
	}
}

func TestLoadClassifierConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classifier_config.json")
	content := `{
		"base_model_name": "Qwen/Qwen3-0.6B",
		"max_length": 1024,
		"labels": {
			"malicious": ["no", "yes"],
			"attacked": ["no", "yes"],
			"harmfulness": [0.0, 0.5, 1.0]
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadClassifierConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Qwen/Qwen3-0.6B", cfg.BaseModelName)
	assert.Equal(t, 1024, cfg.MaxLength)
	assert.Equal(t, []float64{0.0, 0.5, 1.0}, cfg.Labels.Harmfulness)
}

func TestLoadClassifierConfig_RejectsBadArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classifier_config.json")
	content := `{
		"base_model_name": "Qwen/Qwen3-0.6B",
		"max_length": 1024,
		"labels": {
			"malicious": ["no", "yes"],
			"attacked": ["no", "yes"],
			"harmfulness": [0.0, 1.0]
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := LoadClassifierConfig(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigMismatch)
}

func TestLoadClassifierConfig_MissingFile(t *testing.T) {
	_, err := LoadClassifierConfig(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoadClassifierConfigOrDefault_MissingFileUsesDefault(t *testing.T) {
	cfg, err := LoadClassifierConfigOrDefault(filepath.Join(t.TempDir(), "absent.json"), testLogger())
	require.NoError(t, err)
	assert.Equal(t, DefaultClassifierConfig(), cfg)
}

func TestLoadClassifierConfigOrDefault_MismatchAbortsStartup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classifier_config.json")
	content := `{
		"base_model_name": "Qwen/Qwen3-0.6B",
		"max_length": 1024,
		"labels": {
			"malicious": ["yes", "no"],
			"attacked": ["no", "yes"],
			"harmfulness": [0.0, 1.0]
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadClassifierConfigOrDefault(path, testLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigMismatch)
	assert.Nil(t, cfg)
}

func TestLoadClassifierConfigOrDefault_UnreadableArtifactAbortsStartup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classifier_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

	cfg, err := LoadClassifierConfigOrDefault(path, testLogger())
	require.Error(t, err)
	assert.Nil(t, cfg)
}
