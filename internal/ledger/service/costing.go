package service

import (
	"fmt"
	"math"

	"github.com/KhaledMKhaled/shipledger/internal/ledger/entity"
)

// MissingRmbRateError is returned when a shipment carries a nonzero RMB
// amount and no usable RMB→EGP rate can be resolved. Callers must not
// treat this as a zero total.
type MissingRmbRateError struct {
	ShipmentID string
}

func (e *MissingRmbRateError) Error() string {
	return fmt.Sprintf("لا يوجد سعر صرف متاح لتحويل اليوان للشحنة %s", e.ShipmentID)
}

// RateOptions carries the rate candidates a caller can offer beyond the
// shipment's own captured rate. Resolution order: shipment purchase rate,
// payment-supplied rate, latest market rate, configured default.
type RateOptions struct {
	PaymentRate *float64
	MarketRate  *float64
	DefaultRate float64
}

func (o RateOptions) resolve(s *entity.Shipment) (float64, bool) {
	if s.PurchaseRate != nil && *s.PurchaseRate > 0 {
		return *s.PurchaseRate, true
	}
	if o.PaymentRate != nil && *o.PaymentRate > 0 {
		return *o.PaymentRate, true
	}
	if o.MarketRate != nil && *o.MarketRate > 0 {
		return *o.MarketRate, true
	}
	if o.DefaultRate > 0 {
		return o.DefaultRate, true
	}
	return 0, false
}

// ComputeKnownTotal returns the part of a shipment's final cost that can be
// computed from the fields available at its current lifecycle step, in EGP.
//
// Early states trust the EGP columns entered directly on the shipment. Once
// the shipment is in transit the RMB columns become authoritative and need
// conversion. From the pickup step onward the item rows and the
// shipping/customs detail rows take precedence, with the shipment columns
// as fallback.
func ComputeKnownTotal(s *entity.Shipment, opts RateOptions) (float64, error) {
	switch s.Status {
	case entity.StatusNew:
		total := deref(s.PurchaseCostEgp) +
			deref(s.CommissionCostEgp) +
			deref(s.ShippingCostEgp) +
			deref(s.CustomsCostEgp) +
			deref(s.TakhreegCostEgp)
		return round2(total), nil

	case entity.StatusAwaitingShipping:
		rmb := deref(s.PurchaseCostRmb) +
			deref(s.CommissionCostRmb) +
			deref(s.ShippingCostRmb)
		total := deref(s.CustomsCostEgp) + deref(s.TakhreegCostEgp)
		if rmb != 0 {
			rate, ok := opts.resolve(s)
			if !ok {
				return 0, &MissingRmbRateError{ShipmentID: s.ID}
			}
			total += rmb * rate
		}
		return round2(total), nil

	default:
		return knownTotalFromDetails(s, opts)
	}
}

// knownTotalFromDetails computes the total for shipments at or past the
// pickup step, preferring item and detail rows over the shipment columns.
func knownTotalFromDetails(s *entity.Shipment, opts RateOptions) (float64, error) {
	var egp, rmb float64

	// Purchase: item rows win, then the converted RMB column, then EGP.
	if len(s.Items) > 0 {
		rmb += itemsPurchaseRmb(s.Items)
	} else if s.PurchaseCostRmb != nil {
		rmb += *s.PurchaseCostRmb
	} else {
		egp += deref(s.PurchaseCostEgp)
	}

	// Shipping and commission: the shipping detail row carries the figures
	// computed with the rates of its day.
	if s.ShippingDetails != nil {
		egp += deref(s.ShippingDetails.ShippingCostEgp)
		egp += deref(s.ShippingDetails.CommissionCostEgp)
	} else {
		if s.ShippingCostEgp != nil {
			egp += *s.ShippingCostEgp
		} else {
			rmb += deref(s.ShippingCostRmb)
		}
		if s.CommissionCostEgp != nil {
			egp += *s.CommissionCostEgp
		} else {
			rmb += deref(s.CommissionCostRmb)
		}
	}

	// Customs and clearance: detail row, then per-carton item sums, then
	// the shipment columns.
	if s.CustomsDetails != nil {
		egp += deref(s.CustomsDetails.CustomsCostEgp)
		egp += deref(s.CustomsDetails.TakhreegCostEgp)
	} else if len(s.Items) > 0 {
		customs, takhreeg := itemsCustomsEgp(s.Items)
		egp += customs + takhreeg
	} else {
		egp += deref(s.CustomsCostEgp) + deref(s.TakhreegCostEgp)
	}

	if rmb != 0 {
		rate, ok := opts.resolve(s)
		if !ok {
			return 0, &MissingRmbRateError{ShipmentID: s.ID}
		}
		egp += rmb * rate
	}

	return round2(egp), nil
}

// itemsPurchaseRmb sums the purchase value of the item rows in RMB.
func itemsPurchaseRmb(items []entity.ShipmentItem) float64 {
	var total float64
	for _, it := range items {
		pieces := float64(it.CartonCount * it.PiecesPerCarton)
		total += pieces * deref(it.PiecePriceRmb)
	}
	return total
}

// itemsCustomsEgp sums the per-carton customs and clearance charges.
func itemsCustomsEgp(items []entity.ShipmentItem) (customs, takhreeg float64) {
	for _, it := range items {
		cartons := float64(it.CartonCount)
		customs += cartons * deref(it.CustomsPerCartonEgp)
		takhreeg += cartons * deref(it.TakhreegPerCartonEgp)
	}
	return customs, takhreeg
}

// Balance applies the outstanding-balance invariant.
func Balance(finalTotal, totalPaid float64) float64 {
	return math.Max(0, round2(finalTotal-totalPaid))
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
