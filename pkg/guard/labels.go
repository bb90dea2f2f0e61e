package guard

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// ErrConfigMismatch marks a label-mapping artifact whose head cardinalities
// or values disagree with what the scorer expects. Fatal at load time.
var ErrConfigMismatch = fmt.Errorf("classifier config mismatch")

// ErrInvalidTriple marks a head index outside the artifact's cardinality.
// Structurally impossible with a correctly sized output layer, but checked
// at the serialization boundary rather than silently wrapped.
var ErrInvalidTriple = fmt.Errorf("invalid prediction triple")

// HeadLabels holds the ordered label list of each classification head.
// Index-to-label order is an external contract shipped with the model; it is
// loaded and respected, never assumed.
type HeadLabels struct {
	Malicious   []string  `json:"malicious"`
	Attacked    []string  `json:"attacked"`
	Harmfulness []float64 `json:"harmfulness"`
}

// ClassifierConfig is the persisted artifact written at export time next to
// the model weights.
type ClassifierConfig struct {
	BaseModelName string     `json:"base_model_name"`
	MaxLength     int        `json:"max_length"`
	Labels        HeadLabels `json:"labels"`
}

// LoadClassifierConfig reads and validates the artifact once, at startup.
func LoadClassifierConfig(path string) (*ClassifierConfig, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to read classifier config: %w", err)
	}
	var cfg ClassifierConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse classifier config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadClassifierConfigOrDefault loads the artifact at path for serving.
// Only a genuinely absent file falls back to the built-in default layout;
// any other failure, a validation mismatch above all, is returned so the
// caller aborts startup instead of serving under a wrong label order.
func LoadClassifierConfigOrDefault(path string, logger *logrus.Logger) (*ClassifierConfig, error) {
	cfg, err := LoadClassifierConfig(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		logger.WithField("path", path).Warn("no classifier config shipped, using the default label layout")
		return DefaultClassifierConfig(), nil
	}
	return nil, err
}

// Validate checks head cardinalities and label values against the scoring
// contract.
func (c *ClassifierConfig) Validate() error {
	if c.BaseModelName == "" {
		return fmt.Errorf("%w: base_model_name is required", ErrConfigMismatch)
	}
	if len(c.Labels.Malicious) != 2 {
		return fmt.Errorf("%w: malicious head expects 2 labels, got %d", ErrConfigMismatch, len(c.Labels.Malicious))
	}
	if len(c.Labels.Attacked) != 2 {
		return fmt.Errorf("%w: attacked head expects 2 labels, got %d", ErrConfigMismatch, len(c.Labels.Attacked))
	}
	if len(c.Labels.Harmfulness) != 3 {
		return fmt.Errorf("%w: harmfulness head expects 3 labels, got %d", ErrConfigMismatch, len(c.Labels.Harmfulness))
	}
	for _, v := range c.Labels.Malicious {
		if v != JudgmentNo && v != JudgmentYes {
			return fmt.Errorf("%w: unknown malicious label %q", ErrConfigMismatch, v)
		}
	}
	for _, v := range c.Labels.Attacked {
		if v != JudgmentNo && v != JudgmentYes {
			return fmt.Errorf("%w: unknown attacked label %q", ErrConfigMismatch, v)
		}
	}
	for _, v := range c.Labels.Harmfulness {
		if v != HarmNone && v != HarmModerate && v != HarmSevere {
			return fmt.Errorf("%w: unknown harmfulness label %v", ErrConfigMismatch, v)
		}
	}
	return nil
}

// Resolve maps the three head argmax indices to a prediction triple using
// the artifact's ordering.
func (c *ClassifierConfig) Resolve(malicious, attacked, harmfulness int) (PredictionTriple, error) {
	if malicious < 0 || malicious >= len(c.Labels.Malicious) {
		return PredictionTriple{}, fmt.Errorf("%w: malicious index %d", ErrInvalidTriple, malicious)
	}
	if attacked < 0 || attacked >= len(c.Labels.Attacked) {
		return PredictionTriple{}, fmt.Errorf("%w: attacked index %d", ErrInvalidTriple, attacked)
	}
	if harmfulness < 0 || harmfulness >= len(c.Labels.Harmfulness) {
		return PredictionTriple{}, fmt.Errorf("%w: harmfulness index %d", ErrInvalidTriple, harmfulness)
	}
	return PredictionTriple{
		Malicious:   c.Labels.Malicious[malicious],
		Attacked:    c.Labels.Attacked[attacked],
		Harmfulness: c.Labels.Harmfulness[harmfulness],
	}, nil
}

// DefaultClassifierConfig returns the label ordering the export pipeline has
// always produced. Used where no artifact is shipped, e.g. in tests.
func DefaultClassifierConfig() *ClassifierConfig {
	return &ClassifierConfig{
		BaseModelName: "Qwen/Qwen3-0.6B",
		MaxLength:     1024,
		Labels: HeadLabels{
			Malicious:   []string{JudgmentNo, JudgmentYes},
			Attacked:    []string{JudgmentNo, JudgmentYes},
			Harmfulness: []float64{HarmNone, HarmModerate, HarmSevere},
		},
	}
}
