package entity

import "time"

// ExchangeRate is a dated, directional market rate. The latest row per
// currency pair is what conversions use; older rows stay for statements.
type ExchangeRate struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	FromCurrency string    `json:"from_currency" gorm:"size:10;not null;index:idx_rate_pair"`
	ToCurrency   string    `json:"to_currency" gorm:"size:10;not null;index:idx_rate_pair"`
	Rate         float64   `json:"rate" gorm:"type:decimal(12,4);not null"`
	RateDate     time.Time `json:"rate_date" gorm:"not null;index"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
}

func (ExchangeRate) TableName() string {
	return "exchange_rates"
}

// Tracked currencies.
const (
	CurrencyRMB = "RMB"
	CurrencyUSD = "USD"
	CurrencyEGP = "EGP"
)
