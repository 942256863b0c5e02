package service

import (
	"context"
	"errors"

	"github.com/KhaledMKhaled/shipledger/internal/ledger/entity"
	"github.com/KhaledMKhaled/shipledger/internal/ledger/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShipmentService owns the shipment lifecycle: the purchase, shipping and
// customs data-entry steps, cost aggregation from item rows, and keeping
// the derived EGP totals consistent after every mutation.
type ShipmentService struct {
	repo         *repository.ShipmentRepository
	supplierRepo *repository.SupplierRepository
	rates        *RateService
	db           *gorm.DB
}

func NewShipmentService(repo *repository.ShipmentRepository, supplierRepo *repository.SupplierRepository, rates *RateService, db *gorm.DB) *ShipmentService {
	return &ShipmentService{repo: repo, supplierRepo: supplierRepo, rates: rates, db: db}
}

// ItemInput is one purchase line in a create/update request.
type ItemInput struct {
	ProductTypeID        *string  `json:"product_type_id"`
	Description          string   `json:"description"`
	CartonCount          int      `json:"carton_count" binding:"required,gt=0"`
	PiecesPerCarton      int      `json:"pieces_per_carton" binding:"gte=0"`
	PiecePriceRmb        *float64 `json:"piece_price_rmb"`
	CustomsPerCartonEgp  *float64 `json:"customs_per_carton_egp"`
	TakhreegPerCartonEgp *float64 `json:"takhreeg_per_carton_egp"`
}

// CreateShipmentRequest opens a shipment at the purchase step. Costs may
// arrive as quick EGP estimates, as RMB figures, or as item rows.
type CreateShipmentRequest struct {
	Name       string `json:"name" binding:"required"`
	SupplierID string `json:"supplier_id" binding:"required"`
	Notes      string `json:"notes"`

	PurchaseCostRmb   *float64 `json:"purchase_cost_rmb"`
	PurchaseRate      *float64 `json:"purchase_rate"`
	PurchaseCostEgp   *float64 `json:"purchase_cost_egp"`
	CommissionCostRmb *float64 `json:"commission_cost_rmb"`
	CommissionCostEgp *float64 `json:"commission_cost_egp"`
	ShippingCostRmb   *float64 `json:"shipping_cost_rmb"`
	ShippingCostEgp   *float64 `json:"shipping_cost_egp"`
	CustomsCostEgp    *float64 `json:"customs_cost_egp"`
	TakhreegCostEgp   *float64 `json:"takhreeg_cost_egp"`

	Items []ItemInput `json:"items"`
}

// UpdateShipmentRequest edits the purchase step. Nil fields are untouched;
// a non-nil Items slice replaces the item rows.
type UpdateShipmentRequest struct {
	Name  *string `json:"name"`
	Notes *string `json:"notes"`

	PurchaseCostRmb   *float64 `json:"purchase_cost_rmb"`
	PurchaseRate      *float64 `json:"purchase_rate"`
	PurchaseCostEgp   *float64 `json:"purchase_cost_egp"`
	CommissionCostRmb *float64 `json:"commission_cost_rmb"`
	CommissionCostEgp *float64 `json:"commission_cost_egp"`
	ShippingCostRmb   *float64 `json:"shipping_cost_rmb"`
	ShippingCostEgp   *float64 `json:"shipping_cost_egp"`
	CustomsCostEgp    *float64 `json:"customs_cost_egp"`
	TakhreegCostEgp   *float64 `json:"takhreeg_cost_egp"`

	Items []ItemInput `json:"items"`
}

// ShippingDetailsRequest completes the shipping data-entry step.
type ShippingDetailsRequest struct {
	AreaCbm       *float64 `json:"area_cbm" binding:"required,gt=0"`
	RatePerCbmUsd *float64 `json:"rate_per_cbm_usd" binding:"required,gt=0"`
	CommissionPct *float64 `json:"commission_pct"`
	UsdToEgpRate  *float64 `json:"usd_to_egp_rate"`
	RmbToEgpRate  *float64 `json:"rmb_to_egp_rate"`
	Notes         string   `json:"notes"`
}

// CustomsDetailsRequest completes the customs data-entry step.
type CustomsDetailsRequest struct {
	CustomsCostEgp  *float64 `json:"customs_cost_egp" binding:"required,gte=0"`
	TakhreegCostEgp *float64 `json:"takhreeg_cost_egp"`
	RmbToEgpRate    *float64 `json:"rmb_to_egp_rate"`
	ReceiptNo       string   `json:"receipt_no"`
	Notes           string   `json:"notes"`
}

// List returns shipments with the dashboard filters.
func (s *ShipmentService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Shipment, int64, error) {
	return s.repo.FindAll(ctx, page, pageSize, filters)
}

// Get loads one shipment with items, details and payments.
func (s *ShipmentService) Get(ctx context.Context, id string) (*entity.Shipment, error) {
	return s.repo.FindByID(ctx, id)
}

// Create opens a shipment at the purchase step and derives its first totals.
func (s *ShipmentService) Create(ctx context.Context, userID string, req *CreateShipmentRequest) (*entity.Shipment, error) {
	if _, err := s.supplierRepo.FindByID(ctx, req.SupplierID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errors.New("المورد غير موجود")
		}
		return nil, err
	}

	code, err := s.repo.GenerateCode(ctx)
	if err != nil {
		return nil, err
	}

	shipment := &entity.Shipment{
		ID:                uuid.New().String()[:32],
		Code:              code,
		Name:              req.Name,
		SupplierID:        req.SupplierID,
		Status:            entity.StatusNew,
		PurchaseCostRmb:   req.PurchaseCostRmb,
		PurchaseRate:      req.PurchaseRate,
		PurchaseCostEgp:   req.PurchaseCostEgp,
		CommissionCostRmb: req.CommissionCostRmb,
		CommissionCostEgp: req.CommissionCostEgp,
		ShippingCostRmb:   req.ShippingCostRmb,
		ShippingCostEgp:   req.ShippingCostEgp,
		CustomsCostEgp:    req.CustomsCostEgp,
		TakhreegCostEgp:   req.TakhreegCostEgp,
		CreatedBy:         userID,
		Notes:             req.Notes,
	}

	items := buildItems(shipment.ID, req.Items)
	if err := s.aggregateItems(ctx, shipment, items); err != nil {
		return nil, err
	}
	if err := s.refreshTotals(ctx, shipment, nil); err != nil {
		return nil, err
	}

	if err := s.repo.SaveWithItems(ctx, shipment, items); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, shipment.ID)
}

// Update edits the purchase step. Completing the RMB purchase figures (or
// the item rows) advances a new shipment to the awaiting-shipping state.
func (s *ShipmentService) Update(ctx context.Context, id string, req *UpdateShipmentRequest) (*entity.Shipment, error) {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if shipment.Status == entity.StatusArchived {
		return nil, errors.New("لا يمكن تعديل شحنة مؤرشفة")
	}

	if req.Name != nil {
		shipment.Name = *req.Name
	}
	if req.Notes != nil {
		shipment.Notes = *req.Notes
	}
	applyCostFields(shipment, req)

	items := shipment.Items
	if req.Items != nil {
		items = buildItems(shipment.ID, req.Items)
	}
	if err := s.aggregateItems(ctx, shipment, items); err != nil {
		return nil, err
	}

	// Purchase step completed with RMB data: the shipment is on its way.
	if shipment.Status == entity.StatusNew &&
		(len(items) > 0 || (shipment.PurchaseCostRmb != nil && *shipment.PurchaseCostRmb > 0)) {
		shipment.Status = entity.StatusAwaitingShipping
	}

	if err := s.refreshTotals(ctx, shipment, nil); err != nil {
		return nil, err
	}

	if err := s.repo.SaveWithItems(ctx, shipment, items); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, shipment.ID)
}

// Delete removes a shipment that has no recorded payments.
func (s *ShipmentService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// UpdateShippingDetails records the freight figures: shipping cost is
// area × rate converted at the USD rate of the day, commission is a
// percentage of the purchase cost. The rates used are stored on the row.
func (s *ShipmentService) UpdateShippingDetails(ctx context.Context, id string, req *ShippingDetailsRequest) (*entity.Shipment, error) {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if shipment.Status == entity.StatusArchived {
		return nil, errors.New("لا يمكن تعديل شحنة مؤرشفة")
	}

	usdRate := req.UsdToEgpRate
	if usdRate == nil || *usdRate <= 0 {
		usdRate, err = s.rates.Latest(ctx, entity.CurrencyUSD, entity.CurrencyEGP)
		if err != nil {
			return nil, err
		}
	}
	if usdRate == nil || *usdRate <= 0 {
		return nil, errors.New("لا يوجد سعر صرف متاح للدولار")
	}

	rmbRate := req.RmbToEgpRate
	if rmbRate == nil || *rmbRate <= 0 {
		rmbRate, err = s.rates.Latest(ctx, entity.CurrencyRMB, entity.CurrencyEGP)
		if err != nil {
			return nil, err
		}
	}

	shippingEgp := round2(*req.AreaCbm * *req.RatePerCbmUsd * *usdRate)

	var commissionEgp float64
	if req.CommissionPct != nil && *req.CommissionPct > 0 {
		base, err := s.purchaseBaseEgp(shipment, rmbRate)
		if err != nil {
			return nil, err
		}
		commissionEgp = round2(base * *req.CommissionPct / 100)
	}

	details := &entity.ShipmentShippingDetails{
		ID:              uuid.New().String()[:32],
		ShipmentID:      shipment.ID,
		AreaCbm:         req.AreaCbm,
		RatePerCbmUsd:   req.RatePerCbmUsd,
		CommissionPct:   req.CommissionPct,
		UsdToEgpRate:    usdRate,
		RmbToEgpRate:    rmbRate,
		ShippingCostEgp: &shippingEgp,
		Notes:           req.Notes,
	}
	if req.CommissionPct != nil && *req.CommissionPct > 0 {
		details.CommissionCostEgp = &commissionEgp
		shipment.CommissionCostEgp = &commissionEgp
	}
	shipment.ShippingCostEgp = &shippingEgp
	shipment.ShippingDetails = details

	if err := s.refreshTotals(ctx, shipment, nil); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertShippingTx(tx, details); err != nil {
			return err
		}
		return tx.Save(shipment).Error
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, shipment.ID)
}

// UpdateCustomsDetails records the customs and clearance figures and marks
// the shipment ready for pickup.
func (s *ShipmentService) UpdateCustomsDetails(ctx context.Context, id string, req *CustomsDetailsRequest) (*entity.Shipment, error) {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if shipment.Status == entity.StatusArchived {
		return nil, errors.New("لا يمكن تعديل شحنة مؤرشفة")
	}

	details := &entity.ShipmentCustomsDetails{
		ID:              uuid.New().String()[:32],
		ShipmentID:      shipment.ID,
		CustomsCostEgp:  req.CustomsCostEgp,
		TakhreegCostEgp: req.TakhreegCostEgp,
		RmbToEgpRate:    req.RmbToEgpRate,
		ReceiptNo:       req.ReceiptNo,
		Notes:           req.Notes,
	}

	shipment.CustomsCostEgp = req.CustomsCostEgp
	if req.TakhreegCostEgp != nil {
		shipment.TakhreegCostEgp = req.TakhreegCostEgp
	}
	shipment.CustomsDetails = details

	// Customs cleared: goods are waiting at the port.
	if shipment.Status == entity.StatusNew || shipment.Status == entity.StatusAwaitingShipping {
		shipment.Status = entity.StatusReadyForPickup
	}

	if err := s.refreshTotals(ctx, shipment, nil); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertCustomsTx(tx, details); err != nil {
			return err
		}
		return tx.Save(shipment).Error
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, shipment.ID)
}

// Deliver marks a picked-up shipment as delivered.
func (s *ShipmentService) Deliver(ctx context.Context, id string) (*entity.Shipment, error) {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if shipment.Status != entity.StatusReadyForPickup {
		return nil, errors.New("الشحنة ليست جاهزة للاستلام")
	}
	shipment.Status = entity.StatusDelivered
	if err := s.refreshTotals(ctx, shipment, nil); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, shipment); err != nil {
		return nil, err
	}
	return shipment, nil
}

// Archive puts a delivered shipment away.
func (s *ShipmentService) Archive(ctx context.Context, id string) (*entity.Shipment, error) {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if shipment.Status != entity.StatusDelivered {
		return nil, errors.New("لا يمكن أرشفة شحنة لم يتم تسليمها")
	}
	shipment.Status = entity.StatusArchived
	if err := s.repo.Update(ctx, shipment); err != nil {
		return nil, err
	}
	return shipment, nil
}

// Recalculate re-derives the aggregated costs and totals from the current
// item and detail rows, persisting shipment and items together.
func (s *ShipmentService) Recalculate(ctx context.Context, id string) (*entity.Shipment, error) {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.aggregateItems(ctx, shipment, shipment.Items); err != nil {
		return nil, err
	}
	if err := s.refreshTotals(ctx, shipment, nil); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithItems(ctx, shipment, shipment.Items); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, shipment.ID)
}

// aggregateItems re-derives the RMB purchase total and the per-carton
// customs/takhreeg sums from the item rows, converting RMB→EGP at the
// latest market rate (default fallback) when one is available.
func (s *ShipmentService) aggregateItems(ctx context.Context, shipment *entity.Shipment, items []entity.ShipmentItem) error {
	if len(items) == 0 {
		return nil
	}

	purchaseRmb := round2(itemsPurchaseRmb(items))
	shipment.PurchaseCostRmb = &purchaseRmb

	customs, takhreeg := itemsCustomsEgp(items)
	if customs > 0 {
		c := round2(customs)
		shipment.CustomsCostEgp = &c
	}
	if takhreeg > 0 {
		t := round2(takhreeg)
		shipment.TakhreegCostEgp = &t
	}

	opts, err := s.rates.MarketRateOptions(ctx)
	if err != nil {
		return err
	}
	if rate, ok := opts.resolve(shipment); ok {
		egp := round2(purchaseRmb * rate)
		shipment.PurchaseCostEgp = &egp
	}
	return nil
}

// refreshTotals recomputes FinalTotalCostEgp and BalanceEgp from the known
// total. A MissingRmbRateError propagates; it is never flattened to zero.
func (s *ShipmentService) refreshTotals(ctx context.Context, shipment *entity.Shipment, paymentRate *float64) error {
	opts, err := s.rates.MarketRateOptions(ctx)
	if err != nil {
		return err
	}
	opts.PaymentRate = paymentRate

	total, err := ComputeKnownTotal(shipment, opts)
	if err != nil {
		return err
	}
	shipment.FinalTotalCostEgp = total
	shipment.BalanceEgp = Balance(total, shipment.TotalPaidEgp)
	return nil
}

// purchaseBaseEgp returns the purchase cost in EGP for commission
// derivation, converting the RMB figure when no EGP figure exists.
func (s *ShipmentService) purchaseBaseEgp(shipment *entity.Shipment, rmbRate *float64) (float64, error) {
	if shipment.PurchaseCostEgp != nil && *shipment.PurchaseCostEgp > 0 {
		return *shipment.PurchaseCostEgp, nil
	}
	if shipment.PurchaseCostRmb == nil || *shipment.PurchaseCostRmb == 0 {
		return 0, nil
	}
	opts := RateOptions{MarketRate: rmbRate, DefaultRate: s.rates.defaultRmbRate}
	rate, ok := opts.resolve(shipment)
	if !ok {
		return 0, &MissingRmbRateError{ShipmentID: shipment.ID}
	}
	return *shipment.PurchaseCostRmb * rate, nil
}

func applyCostFields(shipment *entity.Shipment, req *UpdateShipmentRequest) {
	if req.PurchaseCostRmb != nil {
		shipment.PurchaseCostRmb = req.PurchaseCostRmb
	}
	if req.PurchaseRate != nil {
		shipment.PurchaseRate = req.PurchaseRate
	}
	if req.PurchaseCostEgp != nil {
		shipment.PurchaseCostEgp = req.PurchaseCostEgp
	}
	if req.CommissionCostRmb != nil {
		shipment.CommissionCostRmb = req.CommissionCostRmb
	}
	if req.CommissionCostEgp != nil {
		shipment.CommissionCostEgp = req.CommissionCostEgp
	}
	if req.ShippingCostRmb != nil {
		shipment.ShippingCostRmb = req.ShippingCostRmb
	}
	if req.ShippingCostEgp != nil {
		shipment.ShippingCostEgp = req.ShippingCostEgp
	}
	if req.CustomsCostEgp != nil {
		shipment.CustomsCostEgp = req.CustomsCostEgp
	}
	if req.TakhreegCostEgp != nil {
		shipment.TakhreegCostEgp = req.TakhreegCostEgp
	}
}

func buildItems(shipmentID string, inputs []ItemInput) []entity.ShipmentItem {
	items := make([]entity.ShipmentItem, 0, len(inputs))
	for i, in := range inputs {
		items = append(items, entity.ShipmentItem{
			ID:                   uuid.New().String()[:32],
			ShipmentID:           shipmentID,
			ProductTypeID:        in.ProductTypeID,
			Description:          in.Description,
			CartonCount:          in.CartonCount,
			PiecesPerCarton:      in.PiecesPerCarton,
			PiecePriceRmb:        in.PiecePriceRmb,
			CustomsPerCartonEgp:  in.CustomsPerCartonEgp,
			TakhreegPerCartonEgp: in.TakhreegPerCartonEgp,
			SortOrder:            i,
		})
	}
	return items
}

func upsertShippingTx(tx *gorm.DB, d *entity.ShipmentShippingDetails) error {
	var existing entity.ShipmentShippingDetails
	err := tx.Where("shipment_id = ?", d.ShipmentID).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(d).Error
		}
		return err
	}
	d.ID = existing.ID
	d.CreatedAt = existing.CreatedAt
	return tx.Save(d).Error
}

func upsertCustomsTx(tx *gorm.DB, d *entity.ShipmentCustomsDetails) error {
	var existing entity.ShipmentCustomsDetails
	err := tx.Where("shipment_id = ?", d.ShipmentID).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(d).Error
		}
		return err
	}
	d.ID = existing.ID
	d.CreatedAt = existing.CreatedAt
	return tx.Save(d).Error
}
