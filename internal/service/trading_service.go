package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"spimexapi/internal/cache"
	"spimexapi/internal/model"
	"spimexapi/internal/repository"
)

const dateLayout = "2006-01-02"

// Cache is the subset of the cache client the service uses.
type Cache interface {
	Get(ctx context.Context, key string) (string, cache.GetStatus)
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	FlushAll(ctx context.Context)
}

// TradingService answers the three query shapes through a cache-aside layer:
// probe the cache, fall back to the repository on a miss, and write the
// result back with a TTL expiring at the next daily cutover. A cached
// payload that fails to decode is treated as a suspect cache generation and
// triggers a full flush before falling back.
type TradingService struct {
	repo   repository.TradingResultRepository
	cache  Cache
	ttl    func() time.Duration
	logger *logrus.Logger
}

func NewTradingService(repo repository.TradingResultRepository, c Cache, ttl func() time.Duration, logger *logrus.Logger) *TradingService {
	return &TradingService{
		repo:   repo,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *TradingService) LastTradingDates(ctx context.Context, limit int) ([]time.Time, error) {
	key := cache.KeyLastTradingDates(limit)

	if payload, status := s.cache.Get(ctx, key); status == cache.Hit {
		dates, err := decodeDates(payload)
		if err == nil {
			s.logger.WithField("key", key).Debug("cache hit")
			return dates, nil
		}
		s.corrupt(ctx, key, err)
	}

	dates, err := s.repo.LastTradingDates(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("last trading dates: %w", err)
	}

	iso := make([]string, 0, len(dates))
	for _, d := range dates {
		iso = append(iso, d.Format(dateLayout))
	}
	s.cache.Set(ctx, key, iso, s.ttl())
	return dates, nil
}

func (s *TradingService) Dynamics(ctx context.Context, f repository.DynamicsFilter) ([]model.TradingResult, error) {
	key := cache.KeyDynamics(f.OilID, f.DeliveryTypeID, f.DeliveryBasisID, f.StartDate, f.EndDate)

	if payload, status := s.cache.Get(ctx, key); status == cache.Hit {
		results, err := decodeResults(payload)
		if err == nil {
			s.logger.WithField("key", key).Debug("cache hit")
			return results, nil
		}
		s.corrupt(ctx, key, err)
	}

	results, err := s.repo.Dynamics(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("dynamics: %w", err)
	}

	s.cache.Set(ctx, key, results, s.ttl())
	return results, nil
}

func (s *TradingService) TradingResults(ctx context.Context, f repository.ResultsFilter, limit int) ([]model.TradingResult, error) {
	key := cache.KeyTradingResults(f.OilID, f.DeliveryTypeID, f.DeliveryBasisID, limit)

	if payload, status := s.cache.Get(ctx, key); status == cache.Hit {
		results, err := decodeResults(payload)
		if err == nil {
			s.logger.WithField("key", key).Debug("cache hit")
			return results, nil
		}
		s.corrupt(ctx, key, err)
	}

	results, err := s.repo.TradingResults(ctx, f, limit)
	if err != nil {
		return nil, fmt.Errorf("trading results: %w", err)
	}

	s.cache.Set(ctx, key, results, s.ttl())
	return results, nil
}

// corrupt handles an undecodable cached payload: any deserialization anomaly
// means the whole cache generation may be suspect, so the entire store is
// flushed, not just the one bad key.
func (s *TradingService) corrupt(ctx context.Context, key string, err error) {
	s.logger.WithError(err).WithField("key", key).Error("corrupt cache entry, flushing cache")
	s.cache.FlushAll(ctx)
}

func decodeDates(payload string) ([]time.Time, error) {
	var iso []string
	if err := json.Unmarshal([]byte(payload), &iso); err != nil {
		return nil, fmt.Errorf("decode cached dates: %w", err)
	}
	dates := make([]time.Time, 0, len(iso))
	for _, s := range iso {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("decode cached dates: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, nil
}

func decodeResults(payload string) ([]model.TradingResult, error) {
	var results []model.TradingResult
	if err := json.Unmarshal([]byte(payload), &results); err != nil {
		return nil, fmt.Errorf("decode cached trading results: %w", err)
	}
	return results, nil
}
