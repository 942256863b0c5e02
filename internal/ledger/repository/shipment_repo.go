package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KhaledMKhaled/shipledger/internal/ledger/entity"
	"gorm.io/gorm"
)

// ShipmentRepository persists shipments and their extension rows.
type ShipmentRepository struct {
	db *gorm.DB
}

func NewShipmentRepository(db *gorm.DB) *ShipmentRepository {
	return &ShipmentRepository{db: db}
}

// FindAll lists shipments with pagination and the dashboard filters.
func (r *ShipmentRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Shipment, int64, error) {
	var items []entity.Shipment
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Shipment{})

	if supplierID := filters["supplier_id"]; supplierID != "" {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if code := filters["code"]; code != "" {
		query = query.Where("code LIKE ?", "%"+code+"%")
	}
	if unpaid := filters["unpaid"]; unpaid == "true" {
		query = query.Where("balance_egp > 0")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Supplier").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID loads a shipment with every extension row the costing needs.
func (r *ShipmentRepository) FindByID(ctx context.Context, id string) (*entity.Shipment, error) {
	var s entity.Shipment
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Preload("Items").
		Preload("Payments").
		Preload("ShippingDetails").
		Preload("CustomsDetails").
		Where("id = ?", id).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *ShipmentRepository) Update(ctx context.Context, s *entity.Shipment) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// SaveWithItems persists a shipment and its item rows in one transaction,
// replacing the current item set.
func (r *ShipmentRepository) SaveWithItems(ctx context.Context, s *entity.Shipment, items []entity.ShipmentItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(s).Error; err != nil {
			return err
		}
		if err := tx.Where("shipment_id = ?", s.ID).Delete(&entity.ShipmentItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ShipmentID = s.ID
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a shipment that has no payments yet.
func (r *ShipmentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var paid int64
		if err := tx.Model(&entity.ShipmentPayment{}).
			Where("shipment_id = ?", id).
			Count(&paid).Error; err != nil {
			return err
		}
		if paid > 0 {
			return errors.New("لا يمكن حذف شحنة لها مدفوعات مسجلة")
		}
		if err := tx.Where("shipment_id = ?", id).Delete(&entity.ShipmentItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("shipment_id = ?", id).Delete(&entity.ShipmentShippingDetails{}).Error; err != nil {
			return err
		}
		if err := tx.Where("shipment_id = ?", id).Delete(&entity.ShipmentCustomsDetails{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entity.Shipment{}).Error
	})
}

// GenerateCode issues the next shipment code, SHP-YYYYMM-XXXX.
func (r *ShipmentRepository) GenerateCode(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("SHP-%s", time.Now().Format("200601"))
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Shipment{}).
		Where("code LIKE ?", prefix+"%").
		Count(&count).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%04d", prefix, count+1), nil
}

// FindBySupplier lists a supplier's shipments for statements.
func (r *ShipmentRepository) FindBySupplier(ctx context.Context, supplierID string) ([]entity.Shipment, error) {
	var items []entity.Shipment
	err := r.db.WithContext(ctx).
		Preload("Payments").
		Where("supplier_id = ?", supplierID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}
