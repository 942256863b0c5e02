package service

import (
	"context"

	"github.com/KhaledMKhaled/shipledger/internal/ledger/entity"
	"github.com/KhaledMKhaled/shipledger/internal/ledger/repository"
	"github.com/google/uuid"
)

// SupplierService manages suppliers and their statements.
type SupplierService struct {
	repo         *repository.SupplierRepository
	shipmentRepo *repository.ShipmentRepository
}

func NewSupplierService(repo *repository.SupplierRepository, shipmentRepo *repository.ShipmentRepository) *SupplierService {
	return &SupplierService{repo: repo, shipmentRepo: shipmentRepo}
}

// CreateSupplierRequest adds a supplier.
type CreateSupplierRequest struct {
	Name          string `json:"name" binding:"required"`
	ShortName     string `json:"short_name"`
	Country       string `json:"country"`
	City          string `json:"city"`
	Address       string `json:"address"`
	ContactName   string `json:"contact_name"`
	ContactPhone  string `json:"contact_phone"`
	ContactWechat string `json:"contact_wechat"`
	PaymentTerms  string `json:"payment_terms"`
	Notes         string `json:"notes"`
}

// UpdateSupplierRequest edits a supplier; nil fields are untouched.
type UpdateSupplierRequest struct {
	Name          *string `json:"name"`
	ShortName     *string `json:"short_name"`
	Status        *string `json:"status"`
	Country       *string `json:"country"`
	City          *string `json:"city"`
	Address       *string `json:"address"`
	ContactName   *string `json:"contact_name"`
	ContactPhone  *string `json:"contact_phone"`
	ContactWechat *string `json:"contact_wechat"`
	PaymentTerms  *string `json:"payment_terms"`
	Notes         *string `json:"notes"`
}

// SupplierStatement is the per-supplier accounting view: every shipment
// with its paid/outstanding figures plus the aggregate position.
type SupplierStatement struct {
	Supplier        *entity.Supplier  `json:"supplier"`
	Shipments       []entity.Shipment `json:"shipments"`
	TotalCostEgp    float64           `json:"total_cost_egp"`
	TotalPaidEgp    float64           `json:"total_paid_egp"`
	TotalBalanceEgp float64           `json:"total_balance_egp"`
	ShipmentCount   int               `json:"shipment_count"`
	UnsettledCount  int               `json:"unsettled_count"`
}

func (s *SupplierService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Supplier, int64, error) {
	return s.repo.FindAll(ctx, page, pageSize, filters)
}

func (s *SupplierService) Get(ctx context.Context, id string) (*entity.Supplier, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *SupplierService) Create(ctx context.Context, userID string, req *CreateSupplierRequest) (*entity.Supplier, error) {
	code, err := s.repo.GenerateCode(ctx)
	if err != nil {
		return nil, err
	}

	supplier := &entity.Supplier{
		ID:            uuid.New().String()[:32],
		Code:          code,
		Name:          req.Name,
		ShortName:     req.ShortName,
		Status:        entity.SupplierStatusActive,
		Country:       req.Country,
		City:          req.City,
		Address:       req.Address,
		ContactName:   req.ContactName,
		ContactPhone:  req.ContactPhone,
		ContactWechat: req.ContactWechat,
		PaymentTerms:  req.PaymentTerms,
		CreatedBy:     userID,
		Notes:         req.Notes,
	}

	if err := s.repo.Create(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *SupplierService) Update(ctx context.Context, id string, req *UpdateSupplierRequest) (*entity.Supplier, error) {
	supplier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		supplier.Name = *req.Name
	}
	if req.ShortName != nil {
		supplier.ShortName = *req.ShortName
	}
	if req.Status != nil {
		supplier.Status = *req.Status
	}
	if req.Country != nil {
		supplier.Country = *req.Country
	}
	if req.City != nil {
		supplier.City = *req.City
	}
	if req.Address != nil {
		supplier.Address = *req.Address
	}
	if req.ContactName != nil {
		supplier.ContactName = *req.ContactName
	}
	if req.ContactPhone != nil {
		supplier.ContactPhone = *req.ContactPhone
	}
	if req.ContactWechat != nil {
		supplier.ContactWechat = *req.ContactWechat
	}
	if req.PaymentTerms != nil {
		supplier.PaymentTerms = *req.PaymentTerms
	}
	if req.Notes != nil {
		supplier.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *SupplierService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Statement builds the supplier's accounting statement from its shipments.
func (s *SupplierService) Statement(ctx context.Context, id string) (*SupplierStatement, error) {
	supplier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	shipments, err := s.shipmentRepo.FindBySupplier(ctx, id)
	if err != nil {
		return nil, err
	}

	statement := &SupplierStatement{
		Supplier:      supplier,
		Shipments:     shipments,
		ShipmentCount: len(shipments),
	}
	for _, sh := range shipments {
		statement.TotalCostEgp += sh.FinalTotalCostEgp
		statement.TotalPaidEgp += sh.TotalPaidEgp
		statement.TotalBalanceEgp += sh.BalanceEgp
		if sh.BalanceEgp > 0 {
			statement.UnsettledCount++
		}
	}
	statement.TotalCostEgp = round2(statement.TotalCostEgp)
	statement.TotalPaidEgp = round2(statement.TotalPaidEgp)
	statement.TotalBalanceEgp = round2(statement.TotalBalanceEgp)

	return statement, nil
}
