package apikey

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/triage-ai/triage-guard/pkg/cache"
	"github.com/triage-ai/triage-guard/pkg/common"
	domain "github.com/triage-ai/triage-guard/pkg/domain/apikey"
)

var ErrInvalidCacheType = errors.New("invalid type assertion for apikey model")

//go:generate mockery --name=Finder --dir=. --output=./mocks --filename=apikey_finder_mock.go --case=underscore --with-expecter
type Finder interface {
	Find(ctx context.Context, key string) (*domain.APIKey, error)
}

type finder struct {
	repo        domain.Repository
	cache       *cache.Cache
	memoryCache *common.TTLMap
	logger      *logrus.Logger
}

func NewFinder(
	repository domain.Repository,
	c *cache.Cache,
	logger *logrus.Logger,
) Finder {
	return &finder{
		repo:        repository,
		cache:       c,
		logger:      logger,
		memoryCache: c.GetTTLMap(cache.ApiKeyTTLName),
	}
}

func (f *finder) Find(ctx context.Context, key string) (*domain.APIKey, error) {
	if entity, err := f.getFromMemoryCache(key); err == nil {
		return entity, nil
	} else if errors.Is(err, ErrInvalidCacheType) {
		f.logger.WithError(err).Debug("memory cache read apikey failure")
	}

	if cached, err := f.cache.GetApiKey(ctx, key); err == nil && cached != nil {
		f.saveToMemoryCache(ctx, cached)
		return cached, nil
	}

	entity, err := f.repo.GetByKey(ctx, key)
	if err != nil {
		f.logger.WithError(err).Error("failed to fetch apikey from repository")
		return nil, err
	}

	f.saveToMemoryCache(ctx, entity)
	return entity, nil
}

func (f *finder) getFromMemoryCache(key string) (*domain.APIKey, error) {
	cachedValue, found := f.memoryCache.Get(key)
	if !found {
		return nil, errors.New("apikey not found in memory cache")
	}

	entity, ok := cachedValue.(*domain.APIKey)
	if !ok {
		return nil, ErrInvalidCacheType
	}

	return entity, nil
}

func (f *finder) saveToMemoryCache(ctx context.Context, entity *domain.APIKey) {
	f.memoryCache.Set(entity.Key, entity)
	if err := f.cache.SaveApiKey(ctx, entity); err != nil {
		f.logger.WithError(err).Error("failed to save apikey to distributed cache")
	}
}
