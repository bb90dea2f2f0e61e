package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/triage-ai/triage-guard/pkg/classifier"
)

type MockPredictor struct {
	mock.Mock
}

func (m *MockPredictor) Predict(ctx context.Context, prompt string) (classifier.HeadIndices, error) {
	args := m.Called(ctx, prompt)
	heads, _ := args.Get(0).(classifier.HeadIndices)
	return heads, args.Error(1)
}

type MockTextClassifier struct {
	mock.Mock
}

func (m *MockTextClassifier) Classify(ctx context.Context, text string) (classifier.TextClassification, error) {
	args := m.Called(ctx, text)
	result, _ := args.Get(0).(classifier.TextClassification)
	return result, args.Error(1)
}
