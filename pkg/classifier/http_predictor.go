package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/triage-ai/triage-guard/pkg/infra/httpx"
)

const (
	predictPath  = "/v1/predict"
	classifyPath = "/v1/classify"
)

// HTTPPredictorConfig points at the inference-runtime sidecar that holds the
// exported model and returns per-head argmax indices.
type HTTPPredictorConfig struct {
	BaseURL string
	Token   string
}

type httpPredictor struct {
	cfg     HTTPPredictorConfig
	client  httpx.Client
	breaker httpx.CircuitBreaker
	logger  *logrus.Logger
}

// NewHTTPPredictor creates a Predictor backed by the tool-guard inference
// sidecar.
func NewHTTPPredictor(
	cfg HTTPPredictorConfig,
	client httpx.Client,
	breaker httpx.CircuitBreaker,
	logger *logrus.Logger,
) Predictor {
	return &httpPredictor{cfg: cfg, client: client, breaker: breaker, logger: logger}
}

type predictRequest struct {
	Prompt string `json:"prompt"`
}

func (p *httpPredictor) Predict(ctx context.Context, prompt string) (HeadIndices, error) {
	payload, err := json.Marshal(predictRequest{Prompt: prompt})
	if err != nil {
		return HeadIndices{}, fmt.Errorf("failed to marshal predict request: %w", err)
	}

	var out HeadIndices
	err = p.breaker.Execute(func() error {
		body, err := postJSON(ctx, p.client, p.cfg.BaseURL+predictPath, p.cfg.Token, payload)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, &out); err != nil {
			return fmt.Errorf("invalid predictor response: %w", err)
		}
		return nil
	})
	if err != nil {
		p.logger.WithError(err).Error("tool-guard predictor call failed")
		return HeadIndices{}, err
	}
	return out, nil
}

// HTTPTextClassifierConfig points at the prompt-guard inference sidecar.
type HTTPTextClassifierConfig struct {
	BaseURL string
	Token   string
}

type httpTextClassifier struct {
	cfg     HTTPTextClassifierConfig
	client  httpx.Client
	breaker httpx.CircuitBreaker
	logger  *logrus.Logger
}

// NewHTTPTextClassifier creates a TextClassifier backed by the prompt-guard
// inference sidecar.
func NewHTTPTextClassifier(
	cfg HTTPTextClassifierConfig,
	client httpx.Client,
	breaker httpx.CircuitBreaker,
	logger *logrus.Logger,
) TextClassifier {
	return &httpTextClassifier{cfg: cfg, client: client, breaker: breaker, logger: logger}
}

type classifyRequest struct {
	Text string `json:"text"`
}

func (c *httpTextClassifier) Classify(ctx context.Context, text string) (TextClassification, error) {
	payload, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return TextClassification{}, fmt.Errorf("failed to marshal classify request: %w", err)
	}

	var out TextClassification
	err = c.breaker.Execute(func() error {
		body, err := postJSON(ctx, c.client, c.cfg.BaseURL+classifyPath, c.cfg.Token, payload)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, &out); err != nil {
			return fmt.Errorf("invalid classifier response: %w", err)
		}
		return nil
	})
	if err != nil {
		c.logger.WithError(err).Error("prompt-guard classifier call failed")
		return TextClassification{}, err
	}
	return out, nil
}

func postJSON(ctx context.Context, client httpx.Client, url, token string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Token", token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("response read error: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference runtime returned status %d", resp.StatusCode)
	}
	return body, nil
}
