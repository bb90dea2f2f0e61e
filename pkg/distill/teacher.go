package distill

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/sirupsen/logrus"
)

// TextGenerator produces the teacher model's free-text verdict for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// TeacherConfig configures the reference model endpoint. The model is served
// by an OpenAI-compatible inference server (vLLM), so the stock client works
// against it with a custom base URL.
type TeacherConfig struct {
	BaseURL     string
	ApiKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	MaxRetries  int
}

type teacherClient struct {
	client openai.Client
	config TeacherConfig
	logger *logrus.Logger
}

func NewTeacherClient(config TeacherConfig, logger *logrus.Logger) TextGenerator {
	if config.Model == "" {
		config.Model = "MurrayTom/TS-Guard"
	}
	if config.Temperature == 0 {
		config.Temperature = 0.1
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 1024
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}

	opts := []option.RequestOption{option.WithAPIKey(config.ApiKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	return &teacherClient{
		client: openai.NewClient(opts...),
		config: config,
		logger: logger,
	}
}

// Generate asks the teacher for a verdict, retrying transient failures with
// exponential backoff.
func (c *teacherClient) Generate(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(c.config.Temperature),
		MaxTokens:   openai.Int(int64(c.config.MaxTokens)),
	}

	var lastErr error
	for attempt := 0; attempt < c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		resp, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			lastErr = err
			c.logger.WithError(err).WithField("attempt", attempt+1).Warn("teacher request failed")
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("no completions returned")
			continue
		}
		return resp.Choices[0].Message.Content, nil
	}
	return "", fmt.Errorf("teacher request failed after %d attempts: %w", c.config.MaxRetries, lastErr)
}
