package service

import (
	"context"
	"fmt"
	"time"

	"github.com/KhaledMKhaled/shipledger/internal/ledger/repository"
	"github.com/xuri/excelize/v2"
)

// ExportService renders the shipment ledger as an xlsx workbook.
type ExportService struct {
	shipmentRepo *repository.ShipmentRepository
}

func NewExportService(shipmentRepo *repository.ShipmentRepository) *ExportService {
	return &ExportService{shipmentRepo: shipmentRepo}
}

var ledgerExportHeaders = []string{
	"الكود",
	"الاسم",
	"المورد",
	"الحالة",
	"تكلفة الشراء (يوان)",
	"تكلفة الشراء (جنيه)",
	"العمولة (جنيه)",
	"الشحن (جنيه)",
	"الجمارك (جنيه)",
	"التخريج (جنيه)",
	"الإجمالي (جنيه)",
	"المدفوع (جنيه)",
	"المتبقي (جنيه)",
}

// ExportShipments builds the ledger workbook with the current filters.
func (s *ExportService) ExportShipments(ctx context.Context, filters map[string]string) (*excelize.File, string, error) {
	shipments, _, err := s.shipmentRepo.FindAll(ctx, 1, 10000, filters)
	if err != nil {
		return nil, "", fmt.Errorf("list shipments: %w", err)
	}

	f := excelize.NewFile()
	sheet := "الشحنات"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, h := range ledgerExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	for i, sh := range shipments {
		rowNum := i + 2
		supplierName := ""
		if sh.Supplier != nil {
			supplierName = sh.Supplier.Name
		}
		values := []interface{}{
			sh.Code,
			sh.Name,
			supplierName,
			sh.Status,
			deref(sh.PurchaseCostRmb),
			deref(sh.PurchaseCostEgp),
			deref(sh.CommissionCostEgp),
			deref(sh.ShippingCostEgp),
			deref(sh.CustomsCostEgp),
			deref(sh.TakhreegCostEgp),
			sh.FinalTotalCostEgp,
			sh.TotalPaidEgp,
			sh.BalanceEgp,
		}
		for j, v := range values {
			col, _ := excelize.ColumnNumberToName(j + 1)
			f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, rowNum), v)
		}
	}

	fileName := fmt.Sprintf("shipments_%s.xlsx", time.Now().Format("20060102_150405"))
	return f, fileName, nil
}
