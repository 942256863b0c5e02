package repository

import (
	"context"
	"errors"

	"github.com/KhaledMKhaled/shipledger/internal/ledger/entity"
	"gorm.io/gorm"
)

// PaymentRepository persists shipment payments.
type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// CreateWithTotals inserts the payment row and then runs applyTotals inside
// the same transaction. applyTotals recomputes and writes the owning
// shipment's paid/balance/final fields; if it fails, the payment insert is
// rolled back with it. Nothing about a payment may land partially.
func (r *PaymentRepository) CreateWithTotals(ctx context.Context, p *entity.ShipmentPayment, applyTotals func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		return applyTotals(tx)
	})
}

// SumPaidEgp totals the converted amounts for a shipment. Pass the open
// transaction when summing inside a payment insert.
func (r *PaymentRepository) SumPaidEgp(tx *gorm.DB, shipmentID string) (float64, error) {
	var paid float64
	err := tx.Model(&entity.ShipmentPayment{}).
		Where("shipment_id = ?", shipmentID).
		Select("COALESCE(SUM(amount_egp), 0)").
		Scan(&paid).Error
	return paid, err
}

// FindByShipment lists a shipment's payments, newest first.
func (r *PaymentRepository) FindByShipment(ctx context.Context, shipmentID string) ([]entity.ShipmentPayment, error) {
	var items []entity.ShipmentPayment
	err := r.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

// FindByID loads one payment.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*entity.ShipmentPayment, error) {
	var p entity.ShipmentPayment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Update saves payment metadata (receipt path, notes). Monetary fields are
// immutable once recorded.
func (r *PaymentRepository) Update(ctx context.Context, p *entity.ShipmentPayment) error {
	return r.db.WithContext(ctx).Save(p).Error
}
