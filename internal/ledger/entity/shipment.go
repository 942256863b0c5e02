package entity

import "time"

// Shipment is one import consignment from a foreign supplier. Component
// costs live in both the original currency and EGP; the EGP running totals
// are derived and kept consistent by the service layer.
type Shipment struct {
	ID         string `json:"id" gorm:"primaryKey;size:32"`
	Code       string `json:"code" gorm:"size:32;uniqueIndex;not null"`
	Name       string `json:"name" gorm:"size:200;not null"`
	SupplierID string `json:"supplier_id" gorm:"size:32;not null;index"`
	Status     string `json:"status" gorm:"size:40;default:جديد"`

	// Purchase step
	PurchaseCostRmb *float64 `json:"purchase_cost_rmb" gorm:"type:decimal(15,2)"`
	PurchaseRate    *float64 `json:"purchase_rate" gorm:"type:decimal(12,4)"` // RMB→EGP captured at purchase
	PurchaseCostEgp *float64 `json:"purchase_cost_egp" gorm:"type:decimal(15,2)"`

	// Commission and shipping
	CommissionCostRmb *float64 `json:"commission_cost_rmb" gorm:"type:decimal(15,2)"`
	CommissionCostEgp *float64 `json:"commission_cost_egp" gorm:"type:decimal(15,2)"`
	ShippingCostRmb   *float64 `json:"shipping_cost_rmb" gorm:"type:decimal(15,2)"`
	ShippingCostEgp   *float64 `json:"shipping_cost_egp" gorm:"type:decimal(15,2)"`

	// Customs and clearance
	CustomsCostEgp  *float64 `json:"customs_cost_egp" gorm:"type:decimal(15,2)"`
	TakhreegCostEgp *float64 `json:"takhreeg_cost_egp" gorm:"type:decimal(15,2)"`

	// Derived running totals
	FinalTotalCostEgp float64 `json:"final_total_cost_egp" gorm:"type:decimal(15,2);default:0"`
	TotalPaidEgp      float64 `json:"total_paid_egp" gorm:"type:decimal(15,2);default:0"`
	BalanceEgp        float64 `json:"balance_egp" gorm:"type:decimal(15,2);default:0"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Notes     string    `json:"notes" gorm:"type:text"`

	Items           []ShipmentItem           `json:"items,omitempty" gorm:"foreignKey:ShipmentID"`
	Payments        []ShipmentPayment        `json:"payments,omitempty" gorm:"foreignKey:ShipmentID"`
	ShippingDetails *ShipmentShippingDetails `json:"shipping_details,omitempty" gorm:"foreignKey:ShipmentID"`
	CustomsDetails  *ShipmentCustomsDetails  `json:"customs_details,omitempty" gorm:"foreignKey:ShipmentID"`
	Supplier        *Supplier                `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
}

func (Shipment) TableName() string {
	return "shipments"
}

// Lifecycle states, stored as the Arabic strings shown to users.
const (
	StatusNew              = "جديد"
	StatusAwaitingShipping = "في انتظار الشحن"
	StatusReadyForPickup   = "جاهز للاستلام"
	StatusDelivered        = "تم التسليم"
	StatusArchived         = "مؤرشف"
)

// ShipmentItem is one line of a shipment's purchase step.
type ShipmentItem struct {
	ID            string  `json:"id" gorm:"primaryKey;size:32"`
	ShipmentID    string  `json:"shipment_id" gorm:"size:32;not null;index"`
	ProductTypeID *string `json:"product_type_id" gorm:"size:32"`
	Description   string  `json:"description" gorm:"size:500"`

	CartonCount     int      `json:"carton_count" gorm:"not null"`
	PiecesPerCarton int      `json:"pieces_per_carton" gorm:"not null"`
	PiecePriceRmb   *float64 `json:"piece_price_rmb" gorm:"type:decimal(12,4)"`

	CustomsPerCartonEgp  *float64 `json:"customs_per_carton_egp" gorm:"type:decimal(12,2)"`
	TakhreegPerCartonEgp *float64 `json:"takhreeg_per_carton_egp" gorm:"type:decimal(12,2)"`

	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ShipmentItem) TableName() string {
	return "shipment_items"
}

// ShipmentShippingDetails extends a shipment with the freight figures and
// the exchange rates in effect when they were recorded.
type ShipmentShippingDetails struct {
	ID         string `json:"id" gorm:"primaryKey;size:32"`
	ShipmentID string `json:"shipment_id" gorm:"size:32;not null;uniqueIndex"`

	AreaCbm       *float64 `json:"area_cbm" gorm:"type:decimal(10,3)"`
	RatePerCbmUsd *float64 `json:"rate_per_cbm_usd" gorm:"type:decimal(12,2)"`
	CommissionPct *float64 `json:"commission_pct" gorm:"type:decimal(6,3)"`

	UsdToEgpRate *float64 `json:"usd_to_egp_rate" gorm:"type:decimal(12,4)"`
	RmbToEgpRate *float64 `json:"rmb_to_egp_rate" gorm:"type:decimal(12,4)"`

	ShippingCostEgp   *float64 `json:"shipping_cost_egp" gorm:"type:decimal(15,2)"`
	CommissionCostEgp *float64 `json:"commission_cost_egp" gorm:"type:decimal(15,2)"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Notes     string    `json:"notes" gorm:"type:text"`
}

func (ShipmentShippingDetails) TableName() string {
	return "shipment_shipping_details"
}

// ShipmentCustomsDetails extends a shipment with the customs and clearance
// figures recorded at the port.
type ShipmentCustomsDetails struct {
	ID         string `json:"id" gorm:"primaryKey;size:32"`
	ShipmentID string `json:"shipment_id" gorm:"size:32;not null;uniqueIndex"`

	CustomsCostEgp  *float64 `json:"customs_cost_egp" gorm:"type:decimal(15,2)"`
	TakhreegCostEgp *float64 `json:"takhreeg_cost_egp" gorm:"type:decimal(15,2)"`
	RmbToEgpRate    *float64 `json:"rmb_to_egp_rate" gorm:"type:decimal(12,4)"`

	ReceiptNo string    `json:"receipt_no" gorm:"size:100"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Notes     string    `json:"notes" gorm:"type:text"`
}

func (ShipmentCustomsDetails) TableName() string {
	return "shipment_customs_details"
}
