package repository

import (
	"context"

	"github.com/KhaledMKhaled/shipledger/internal/ledger/entity"
	"gorm.io/gorm"
)

// ProductTypeRepository persists product types.
type ProductTypeRepository struct {
	db *gorm.DB
}

func NewProductTypeRepository(db *gorm.DB) *ProductTypeRepository {
	return &ProductTypeRepository{db: db}
}

func (r *ProductTypeRepository) FindAll(ctx context.Context) ([]entity.ProductType, error) {
	var items []entity.ProductType
	err := r.db.WithContext(ctx).Order("name ASC").Find(&items).Error
	return items, err
}

func (r *ProductTypeRepository) Create(ctx context.Context, pt *entity.ProductType) error {
	return r.db.WithContext(ctx).Create(pt).Error
}
