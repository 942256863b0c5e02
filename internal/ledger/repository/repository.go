package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories bundles every ledger repository.
type Repositories struct {
	Shipment    *ShipmentRepository
	Payment     *PaymentRepository
	Supplier    *SupplierRepository
	Rate        *RateRepository
	ProductType *ProductTypeRepository
	User        *UserRepository
}

// NewRepositories wires the repositories onto one gorm handle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Shipment:    NewShipmentRepository(db),
		Payment:     NewPaymentRepository(db),
		Supplier:    NewSupplierRepository(db),
		Rate:        NewRateRepository(db),
		ProductType: NewProductTypeRepository(db),
		User:        NewUserRepository(db),
	}
}
