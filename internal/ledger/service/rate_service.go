package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/KhaledMKhaled/shipledger/internal/ledger/entity"
	"github.com/KhaledMKhaled/shipledger/internal/ledger/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateService manages dated exchange rates and serves the latest quote per
// pair through a short-lived redis cache.
type RateService struct {
	repo           *repository.RateRepository
	rdb            *redis.Client
	cacheTTL       time.Duration
	defaultRmbRate float64
}

func NewRateService(repo *repository.RateRepository, rdb *redis.Client, cacheTTL time.Duration, defaultRmbRate float64) *RateService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &RateService{
		repo:           repo,
		rdb:            rdb,
		cacheTTL:       cacheTTL,
		defaultRmbRate: defaultRmbRate,
	}
}

// CreateRateRequest adds a dated quote for a pair.
type CreateRateRequest struct {
	FromCurrency string  `json:"from_currency" binding:"required"`
	ToCurrency   string  `json:"to_currency" binding:"required"`
	Rate         float64 `json:"rate" binding:"required,gt=0"`
	RateDate     string  `json:"rate_date"`
}

var validCurrencies = map[string]bool{
	entity.CurrencyRMB: true,
	entity.CurrencyUSD: true,
	entity.CurrencyEGP: true,
}

// Create records a rate and drops the cached latest quote for the pair.
func (s *RateService) Create(ctx context.Context, userID string, req *CreateRateRequest) (*entity.ExchangeRate, error) {
	if !validCurrencies[req.FromCurrency] || !validCurrencies[req.ToCurrency] {
		return nil, errors.New("عملة غير معروفة")
	}
	if req.FromCurrency == req.ToCurrency {
		return nil, errors.New("لا يمكن تسجيل سعر صرف لنفس العملة")
	}

	rateDate := time.Now()
	if req.RateDate != "" {
		t, err := time.Parse("2006-01-02", req.RateDate)
		if err != nil {
			return nil, errors.New("تاريخ سعر الصرف غير صالح")
		}
		rateDate = t
	}

	rate := &entity.ExchangeRate{
		ID:           uuid.New().String()[:32],
		FromCurrency: req.FromCurrency,
		ToCurrency:   req.ToCurrency,
		Rate:         req.Rate,
		RateDate:     rateDate,
		CreatedBy:    userID,
	}

	if err := s.repo.Create(ctx, rate); err != nil {
		return nil, err
	}

	if s.rdb != nil {
		s.rdb.Del(ctx, s.cacheKey(req.FromCurrency, req.ToCurrency))
	}

	return rate, nil
}

// List returns recent quotes for a pair.
func (s *RateService) List(ctx context.Context, from, to string, limit int) ([]entity.ExchangeRate, error) {
	return s.repo.FindAll(ctx, from, to, limit)
}

// Latest returns the most recent quote for a pair, nil when none exists.
func (s *RateService) Latest(ctx context.Context, from, to string) (*float64, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, s.cacheKey(from, to)).Result(); err == nil {
			if v, perr := strconv.ParseFloat(cached, 64); perr == nil {
				return &v, nil
			}
		}
	}

	rate, err := s.repo.Latest(ctx, from, to)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if s.rdb != nil {
		s.rdb.Set(ctx, s.cacheKey(from, to), strconv.FormatFloat(rate.Rate, 'f', -1, 64), s.cacheTTL)
	}

	v := rate.Rate
	return &v, nil
}

// MarketRateOptions builds the rate candidates for a costing call: the
// latest RMB→EGP market quote plus the configured default.
func (s *RateService) MarketRateOptions(ctx context.Context) (RateOptions, error) {
	market, err := s.Latest(ctx, entity.CurrencyRMB, entity.CurrencyEGP)
	if err != nil {
		return RateOptions{}, err
	}
	return RateOptions{
		MarketRate:  market,
		DefaultRate: s.defaultRmbRate,
	}, nil
}

// ResolveToEgp converts an amount in any tracked currency to EGP. The
// explicit rate, when supplied, wins over the market quote.
func (s *RateService) ResolveToEgp(ctx context.Context, amount float64, currency string, explicitRate *float64) (float64, *float64, error) {
	if currency == entity.CurrencyEGP || currency == "" {
		return round2(amount), nil, nil
	}
	if !validCurrencies[currency] {
		return 0, nil, errors.New("عملة غير معروفة")
	}

	rate := explicitRate
	if rate == nil || *rate <= 0 {
		market, err := s.Latest(ctx, currency, entity.CurrencyEGP)
		if err != nil {
			return 0, nil, err
		}
		rate = market
	}
	if (rate == nil || *rate <= 0) && currency == entity.CurrencyRMB && s.defaultRmbRate > 0 {
		d := s.defaultRmbRate
		rate = &d
	}
	if rate == nil || *rate <= 0 {
		return 0, nil, fmt.Errorf("لا يوجد سعر صرف متاح للعملة %s", currency)
	}

	return round2(amount * *rate), rate, nil
}

func (s *RateService) cacheKey(from, to string) string {
	return "rate:latest:" + from + ":" + to
}
