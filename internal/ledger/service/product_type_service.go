package service

import (
	"context"

	"github.com/KhaledMKhaled/shipledger/internal/ledger/entity"
	"github.com/KhaledMKhaled/shipledger/internal/ledger/repository"
	"github.com/google/uuid"
)

// ProductTypeService manages item classifications.
type ProductTypeService struct {
	repo *repository.ProductTypeRepository
}

func NewProductTypeService(repo *repository.ProductTypeRepository) *ProductTypeService {
	return &ProductTypeService{repo: repo}
}

// CreateProductTypeRequest adds a product type.
type CreateProductTypeRequest struct {
	Name  string `json:"name" binding:"required"`
	Notes string `json:"notes"`
}

func (s *ProductTypeService) List(ctx context.Context) ([]entity.ProductType, error) {
	return s.repo.FindAll(ctx)
}

func (s *ProductTypeService) Create(ctx context.Context, req *CreateProductTypeRequest) (*entity.ProductType, error) {
	pt := &entity.ProductType{
		ID:    uuid.New().String()[:32],
		Name:  req.Name,
		Notes: req.Notes,
	}
	if err := s.repo.Create(ctx, pt); err != nil {
		return nil, err
	}
	return pt, nil
}
