package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	domain "github.com/triage-ai/triage-guard/pkg/domain/apikey"
)

type MockFinder struct {
	mock.Mock
}

func (m *MockFinder) Find(ctx context.Context, key string) (*domain.APIKey, error) {
	args := m.Called(ctx, key)
	entity, _ := args.Get(0).(*domain.APIKey)
	return entity, args.Error(1)
}
