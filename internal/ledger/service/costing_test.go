package service

import (
	"errors"
	"testing"

	"github.com/KhaledMKhaled/shipledger/internal/ledger/entity"
)

func f(v float64) *float64 { return &v }

func TestKnownTotalNewShipmentUsesEgpFields(t *testing.T) {
	s := &entity.Shipment{
		ID:                "shp-001",
		Status:            entity.StatusNew,
		PurchaseCostEgp:   f(150.50),
		CommissionCostEgp: f(25),
		ShippingCostEgp:   f(0),
	}

	total, err := ComputeKnownTotal(s, RateOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 175.5 {
		t.Fatalf("expected 175.5, got %v", total)
	}
}

func TestKnownTotalAwaitingShippingConvertsRmb(t *testing.T) {
	s := &entity.Shipment{
		ID:                "shp-002",
		Status:            entity.StatusAwaitingShipping,
		PurchaseCostRmb:   f(200),
		CommissionCostRmb: f(30),
		ShippingCostRmb:   f(20),
		PurchaseRate:      f(5),
	}

	total, err := ComputeKnownTotal(s, RateOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1250 {
		t.Fatalf("expected 1250, got %v", total)
	}
}

func TestKnownTotalMissingRmbRate(t *testing.T) {
	s := &entity.Shipment{
		ID:              "shp-003",
		Status:          entity.StatusAwaitingShipping,
		PurchaseCostRmb: f(100),
	}

	_, err := ComputeKnownTotal(s, RateOptions{})
	if err == nil {
		t.Fatal("expected MissingRmbRateError, got nil")
	}
	var missing *MissingRmbRateError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingRmbRateError, got %T: %v", err, err)
	}
	if missing.ShipmentID != "shp-003" {
		t.Fatalf("error should name the shipment, got %q", missing.ShipmentID)
	}
}

func TestKnownTotalRatePreferenceOrder(t *testing.T) {
	base := entity.Shipment{
		ID:              "shp-004",
		Status:          entity.StatusAwaitingShipping,
		PurchaseCostRmb: f(100),
	}

	tests := []struct {
		name     string
		shipRate *float64
		opts     RateOptions
		want     float64
	}{
		{"shipment rate wins", f(5), RateOptions{PaymentRate: f(6), MarketRate: f(7), DefaultRate: 8}, 500},
		{"payment rate next", nil, RateOptions{PaymentRate: f(6), MarketRate: f(7), DefaultRate: 8}, 600},
		{"market rate next", nil, RateOptions{MarketRate: f(7), DefaultRate: 8}, 700},
		{"default rate last", nil, RateOptions{DefaultRate: 8}, 800},
		{"zero shipment rate skipped", f(0), RateOptions{MarketRate: f(7)}, 700},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			s.PurchaseRate = tt.shipRate
			total, err := ComputeKnownTotal(&s, tt.opts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if total != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, total)
			}
		})
	}
}

func TestKnownTotalZeroRmbNeedsNoRate(t *testing.T) {
	s := &entity.Shipment{
		ID:             "shp-005",
		Status:         entity.StatusAwaitingShipping,
		CustomsCostEgp: f(300),
	}

	total, err := ComputeKnownTotal(s, RateOptions{})
	if err != nil {
		t.Fatalf("zero RMB total must not need a rate: %v", err)
	}
	if total != 300 {
		t.Fatalf("expected 300, got %v", total)
	}
}

func TestKnownTotalReadyForPickupPrefersDetailRows(t *testing.T) {
	s := &entity.Shipment{
		ID:           "shp-006",
		Status:       entity.StatusReadyForPickup,
		PurchaseRate: f(7),
		// Column values that must lose to the detail rows below.
		PurchaseCostEgp: f(99999),
		ShippingCostEgp: f(99999),
		CustomsCostEgp:  f(99999),
		Items: []entity.ShipmentItem{
			{CartonCount: 10, PiecesPerCarton: 20, PiecePriceRmb: f(2)},  // 400 RMB
			{CartonCount: 5, PiecesPerCarton: 10, PiecePriceRmb: f(1.5)}, // 75 RMB
		},
		ShippingDetails: &entity.ShipmentShippingDetails{
			ShippingCostEgp:   f(1200),
			CommissionCostEgp: f(150),
		},
		CustomsDetails: &entity.ShipmentCustomsDetails{
			CustomsCostEgp:  f(800),
			TakhreegCostEgp: f(200),
		},
	}

	total, err := ComputeKnownTotal(s, RateOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// (400+75)*7 + 1200 + 150 + 800 + 200
	if total != 5675 {
		t.Fatalf("expected 5675, got %v", total)
	}
}

func TestKnownTotalReadyForPickupItemCustomsFallback(t *testing.T) {
	s := &entity.Shipment{
		ID:           "shp-007",
		Status:       entity.StatusReadyForPickup,
		PurchaseRate: f(7),
		Items: []entity.ShipmentItem{
			{CartonCount: 10, PiecesPerCarton: 10, PiecePriceRmb: f(1), CustomsPerCartonEgp: f(50), TakhreegPerCartonEgp: f(10)},
		},
	}

	total, err := ComputeKnownTotal(s, RateOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 100 RMB * 7 + 10 cartons * (50 + 10)
	if total != 1300 {
		t.Fatalf("expected 1300, got %v", total)
	}
}

func TestBalanceInvariant(t *testing.T) {
	tests := []struct {
		final, paid, want float64
	}{
		{1000, 0, 1000},
		{1000, 400, 600},
		{1000, 1000, 0},
		{1000, 1500, 0}, // overpayment never goes negative
		{0, 0, 0},
	}

	for _, tt := range tests {
		if got := Balance(tt.final, tt.paid); got != tt.want {
			t.Errorf("Balance(%v, %v) = %v, want %v", tt.final, tt.paid, got, tt.want)
		}
	}
}
