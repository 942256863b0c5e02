package service

import (
	"context"

	"github.com/KhaledMKhaled/shipledger/internal/ledger/entity"
	"gorm.io/gorm"
)

// DashboardService serves the accounting overview.
type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// StatusCount is one slice of the shipments-per-status breakdown.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// AccountingOverview is the dashboard payload.
type AccountingOverview struct {
	ShipmentsByStatus []StatusCount `json:"shipments_by_status"`
	TotalShipments    int           `json:"total_shipments"`
	TotalCostEgp      float64       `json:"total_cost_egp"`
	TotalPaidEgp      float64       `json:"total_paid_egp"`
	TotalBalanceEgp   float64       `json:"total_balance_egp"`
	UnsettledCount    int           `json:"unsettled_count"`
	SupplierCount     int           `json:"supplier_count"`
	PaymentsThisMonth float64       `json:"payments_this_month"`
}

// GetAccountingOverview aggregates the ledger position across shipments.
func (s *DashboardService) GetAccountingOverview(ctx context.Context) (*AccountingOverview, error) {
	overview := &AccountingOverview{}

	rows, err := s.db.WithContext(ctx).Raw(`
		SELECT status, COUNT(*) as count
		FROM shipments
		GROUP BY status
	`).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		overview.ShipmentsByStatus = append(overview.ShipmentsByStatus, sc)
		overview.TotalShipments += sc.Count
	}

	row := s.db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(SUM(final_total_cost_egp), 0),
			COALESCE(SUM(total_paid_egp), 0),
			COALESCE(SUM(balance_egp), 0),
			COUNT(CASE WHEN balance_egp > 0 THEN 1 END)
		FROM shipments
	`).Row()
	if err := row.Scan(
		&overview.TotalCostEgp,
		&overview.TotalPaidEgp,
		&overview.TotalBalanceEgp,
		&overview.UnsettledCount,
	); err != nil {
		return nil, err
	}

	var supplierCount int64
	if err := s.db.WithContext(ctx).Model(&entity.Supplier{}).Count(&supplierCount).Error; err != nil {
		return nil, err
	}
	overview.SupplierCount = int(supplierCount)

	monthRow := s.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(amount_egp), 0)
		FROM shipment_payments
		WHERE date_trunc('month', created_at) = date_trunc('month', now())
	`).Row()
	if err := monthRow.Scan(&overview.PaymentsThisMonth); err != nil {
		return nil, err
	}

	return overview, nil
}
