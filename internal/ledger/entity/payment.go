package entity

import "time"

// ShipmentPayment is a (possibly partial) payment recorded against one
// cost component of a shipment. Amount is kept in the original currency;
// AmountEgp is the converted figure that feeds the shipment totals.
type ShipmentPayment struct {
	ID         string `json:"id" gorm:"primaryKey;size:32"`
	ShipmentID string `json:"shipment_id" gorm:"size:32;not null;index"`

	Amount    float64  `json:"amount" gorm:"type:decimal(15,2);not null"`
	Currency  string   `json:"currency" gorm:"size:10;not null;default:EGP"`
	RateToEgp *float64 `json:"rate_to_egp" gorm:"type:decimal(12,4)"`
	AmountEgp float64  `json:"amount_egp" gorm:"type:decimal(15,2);not null"`

	Component string `json:"component" gorm:"size:20;not null"`
	Method    string `json:"method" gorm:"size:20;default:cash"`

	ReceiptPath string `json:"receipt_path" gorm:"size:500"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	Notes     string    `json:"notes" gorm:"type:text"`
}

func (ShipmentPayment) TableName() string {
	return "shipment_payments"
}

// Cost components a payment can be designated to.
const (
	ComponentPurchase   = "purchase"
	ComponentShipping   = "shipping"
	ComponentCommission = "commission"
	ComponentCustoms    = "customs"
	ComponentTakhreeg   = "takhreeg"
)

// Payment methods.
const (
	MethodCash           = "cash"
	MethodBankTransfer   = "transfer"
	MethodExchangeOffice = "exchange_office"
)
