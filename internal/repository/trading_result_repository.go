package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"spimexapi/internal/model"
)

// DynamicsFilter narrows the dynamics query. Empty strings and nil dates
// impose no constraint; supplied filters are combined with AND.
type DynamicsFilter struct {
	OilID           string
	DeliveryTypeID  string
	DeliveryBasisID string
	StartDate       *time.Time // inclusive
	EndDate         *time.Time // inclusive
}

// ResultsFilter narrows the top-N trading results query.
type ResultsFilter struct {
	OilID           string
	DeliveryTypeID  string
	DeliveryBasisID string
}

type TradingResultRepository interface {
	LastTradingDates(ctx context.Context, limit int) ([]time.Time, error)
	Dynamics(ctx context.Context, f DynamicsFilter) ([]model.TradingResult, error)
	TradingResults(ctx context.Context, f ResultsFilter, limit int) ([]model.TradingResult, error)
	CreateTradingResults(ctx context.Context, results []*model.TradingResult) error
}

type gormTradingResultRepository struct {
	db *gorm.DB
}

func NewGormTradingResultRepository(db *gorm.DB) TradingResultRepository {
	return &gormTradingResultRepository{db: db}
}

// LastTradingDates returns up to limit distinct trading dates, most recent
// first. Distinctness is on the calendar date, so several records traded on
// the same day collapse to one entry.
func (r *gormTradingResultRepository) LastTradingDates(ctx context.Context, limit int) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.WithContext(ctx).
		Model(&model.TradingResult{}).
		Distinct("CAST(date AS DATE) AS date").
		Order("date DESC").
		Limit(limit).
		Pluck("date", &dates).Error
	if err != nil {
		return nil, err
	}
	return dates, nil
}

func (r *gormTradingResultRepository) Dynamics(ctx context.Context, f DynamicsFilter) ([]model.TradingResult, error) {
	query := r.db.WithContext(ctx).Model(&model.TradingResult{})

	if f.OilID != "" {
		query = query.Where("oil_id = ?", f.OilID)
	}
	if f.DeliveryTypeID != "" {
		query = query.Where("delivery_type_id = ?", f.DeliveryTypeID)
	}
	if f.DeliveryBasisID != "" {
		query = query.Where("delivery_basis_id = ?", f.DeliveryBasisID)
	}
	if f.StartDate != nil {
		query = query.Where("date >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		query = query.Where("date <= ?", *f.EndDate)
	}

	var results []model.TradingResult
	err := query.Order("date desc").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *gormTradingResultRepository) TradingResults(ctx context.Context, f ResultsFilter, limit int) ([]model.TradingResult, error) {
	query := r.db.WithContext(ctx).Model(&model.TradingResult{})

	if f.OilID != "" {
		query = query.Where("oil_id = ?", f.OilID)
	}
	if f.DeliveryTypeID != "" {
		query = query.Where("delivery_type_id = ?", f.DeliveryTypeID)
	}
	if f.DeliveryBasisID != "" {
		query = query.Where("delivery_basis_id = ?", f.DeliveryBasisID)
	}

	var results []model.TradingResult
	err := query.Order("date desc").Limit(limit).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *gormTradingResultRepository) CreateTradingResults(ctx context.Context, results []*model.TradingResult) error {
	if len(results) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(results).Error
}
