package entity

import "time"

// ProductType classifies shipment items.
type ProductType struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Name      string    `json:"name" gorm:"size:100;uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
	Notes     string    `json:"notes" gorm:"type:text"`
}

func (ProductType) TableName() string {
	return "product_types"
}
