package repository

import (
	"context"
	"errors"

	"github.com/KhaledMKhaled/shipledger/internal/ledger/entity"
	"gorm.io/gorm"
)

// RateRepository persists dated exchange rates.
type RateRepository struct {
	db *gorm.DB
}

func NewRateRepository(db *gorm.DB) *RateRepository {
	return &RateRepository{db: db}
}

func (r *RateRepository) Create(ctx context.Context, rate *entity.ExchangeRate) error {
	return r.db.WithContext(ctx).Create(rate).Error
}

// FindAll lists rates for a pair, newest first.
func (r *RateRepository) FindAll(ctx context.Context, from, to string, limit int) ([]entity.ExchangeRate, error) {
	var items []entity.ExchangeRate
	query := r.db.WithContext(ctx).Model(&entity.ExchangeRate{})
	if from != "" {
		query = query.Where("from_currency = ?", from)
	}
	if to != "" {
		query = query.Where("to_currency = ?", to)
	}
	if limit <= 0 {
		limit = 100
	}
	err := query.Order("rate_date DESC, created_at DESC").Limit(limit).Find(&items).Error
	return items, err
}

// Latest returns the most recent rate for a pair, ErrNotFound when the
// pair has never been quoted.
func (r *RateRepository) Latest(ctx context.Context, from, to string) (*entity.ExchangeRate, error) {
	var rate entity.ExchangeRate
	err := r.db.WithContext(ctx).
		Where("from_currency = ? AND to_currency = ?", from, to).
		Order("rate_date DESC, created_at DESC").
		First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rate, nil
}
