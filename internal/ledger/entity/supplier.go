package entity

import "time"

// Supplier is a foreign supplier shipments are purchased from.
type Supplier struct {
	ID        string `json:"id" gorm:"primaryKey;size:32"`
	Code      string `json:"code" gorm:"size:32;uniqueIndex;not null"`
	Name      string `json:"name" gorm:"size:200;not null"`
	ShortName string `json:"short_name" gorm:"size:50"`
	Status    string `json:"status" gorm:"size:20;default:active"`

	Country string `json:"country" gorm:"size:50"`
	City    string `json:"city" gorm:"size:50"`
	Address string `json:"address" gorm:"size:500"`

	ContactName   string `json:"contact_name" gorm:"size:100"`
	ContactPhone  string `json:"contact_phone" gorm:"size:50"`
	ContactWechat string `json:"contact_wechat" gorm:"size:100"`

	PaymentTerms string `json:"payment_terms" gorm:"size:100"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Notes     string    `json:"notes" gorm:"type:text"`

	Shipments []Shipment `json:"shipments,omitempty" gorm:"foreignKey:SupplierID"`
}

func (Supplier) TableName() string {
	return "suppliers"
}

// Supplier states.
const (
	SupplierStatusActive    = "active"
	SupplierStatusSuspended = "suspended"
)
