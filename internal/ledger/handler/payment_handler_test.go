package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/KhaledMKhaled/shipledger/internal/ledger/entity"
	"github.com/KhaledMKhaled/shipledger/internal/ledger/repository"
	"github.com/KhaledMKhaled/shipledger/internal/ledger/service"
	"github.com/KhaledMKhaled/shipledger/internal/ledger/testutil"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func setupPaymentTest(t *testing.T) (*gin.Engine, *gorm.DB, *repository.Repositories, *entity.Shipment) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	supplier := testutil.SeedSupplier(t, db, "مورد ييوو")

	repos := repository.NewRepositories(db)
	rates := service.NewRateService(repos.Rate, nil, 0, 0)
	shipmentSvc := service.NewShipmentService(repos.Shipment, repos.Supplier, rates, db)
	paymentSvc := service.NewPaymentService(repos.Payment, repos.Shipment, rates, nil, "")
	h := NewPaymentHandler(paymentSvc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.POST("/shipments/:id/payments", h.CreatePayment)
	api.GET("/shipments/:id/payments", h.ListPayments)

	// A shipment worth 1000 EGP, still at the purchase step.
	created, err := shipmentSvc.Create(context.Background(), "test-user-001", &service.CreateShipmentRequest{
		Name:            "شحنة للمدفوعات",
		SupplierID:      supplier.ID,
		PurchaseCostEgp: f(800),
		CustomsCostEgp:  f(200),
	})
	if err != nil {
		t.Fatalf("seed shipment: %v", err)
	}

	return router, db, repos, created
}

func f(v float64) *float64 { return &v }

func reloadShipment(t *testing.T, db *gorm.DB, id string) *entity.Shipment {
	t.Helper()
	var s entity.Shipment
	if err := db.First(&s, "id = ?", id).Error; err != nil {
		t.Fatalf("reload shipment: %v", err)
	}
	return &s
}

func TestPaymentRecordingUpdatesBalance(t *testing.T) {
	router, db, _, shipment := setupPaymentTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(router, "POST", "/api/v1/shipments/"+shipment.ID+"/payments",
		map[string]interface{}{
			"amount":    400.0,
			"component": entity.ComponentPurchase,
			"method":    entity.MethodBankTransfer,
		}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	payment := resp["data"].(map[string]interface{})
	if payment["amount_egp"].(float64) != 400 {
		t.Errorf("Expected amount_egp 400, got %v", payment["amount_egp"])
	}
	if payment["currency"] != entity.CurrencyEGP {
		t.Errorf("Expected default currency EGP, got %v", payment["currency"])
	}

	reloaded := reloadShipment(t, db, shipment.ID)
	if reloaded.TotalPaidEgp != 400 {
		t.Errorf("Expected total paid 400, got %v", reloaded.TotalPaidEgp)
	}
	if reloaded.BalanceEgp != 600 {
		t.Errorf("Expected balance 600, got %v", reloaded.BalanceEgp)
	}
}

func TestPaymentOverpaymentClampsBalanceToZero(t *testing.T) {
	router, db, _, shipment := setupPaymentTest(t)
	token := testutil.DefaultTestToken()

	for _, amount := range []float64{700, 700} {
		w := testutil.DoRequest(router, "POST", "/api/v1/shipments/"+shipment.ID+"/payments",
			map[string]interface{}{
				"amount":    amount,
				"component": entity.ComponentPurchase,
			}, token)
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}
	}

	reloaded := reloadShipment(t, db, shipment.ID)
	if reloaded.TotalPaidEgp != 1400 {
		t.Errorf("Expected total paid 1400, got %v", reloaded.TotalPaidEgp)
	}
	if reloaded.BalanceEgp != 0 {
		t.Errorf("Expected balance clamped to 0, got %v", reloaded.BalanceEgp)
	}
}

func TestPaymentRmbConvertedWithExplicitRate(t *testing.T) {
	router, db, _, shipment := setupPaymentTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(router, "POST", "/api/v1/shipments/"+shipment.ID+"/payments",
		map[string]interface{}{
			"amount":      100.0,
			"currency":    entity.CurrencyRMB,
			"rate_to_egp": 7.5,
			"component":   entity.ComponentPurchase,
		}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	payment := resp["data"].(map[string]interface{})
	if payment["amount_egp"].(float64) != 750 {
		t.Errorf("Expected amount_egp 750, got %v", payment["amount_egp"])
	}

	reloaded := reloadShipment(t, db, shipment.ID)
	if reloaded.TotalPaidEgp != 750 {
		t.Errorf("Expected total paid 750, got %v", reloaded.TotalPaidEgp)
	}
}

func TestPaymentRmbWithoutAnyRateRejected(t *testing.T) {
	router, db, _, shipment := setupPaymentTest(t)
	token := testutil.DefaultTestToken()

	// No explicit rate, no market rate seeded, no configured default.
	w := testutil.DoRequest(router, "POST", "/api/v1/shipments/"+shipment.ID+"/payments",
		map[string]interface{}{
			"amount":    100.0,
			"currency":  entity.CurrencyRMB,
			"component": entity.ComponentPurchase,
		}, token)
	if w.Code == http.StatusCreated {
		t.Fatal("Expected RMB payment without a rate to be rejected")
	}

	var count int64
	db.Model(&entity.ShipmentPayment{}).Where("shipment_id = ?", shipment.ID).Count(&count)
	if count != 0 {
		t.Errorf("Expected no payment rows, got %d", count)
	}
}

func TestPaymentInvalidComponentRejected(t *testing.T) {
	router, _, _, shipment := setupPaymentTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(router, "POST", "/api/v1/shipments/"+shipment.ID+"/payments",
		map[string]interface{}{
			"amount":    100.0,
			"component": "insurance",
		}, token)
	if w.Code == http.StatusCreated {
		t.Fatal("Expected unknown component to be rejected")
	}
}

// A failure while rewriting the shipment totals must roll the payment
// insert back with it: no orphan payment row, untouched totals.
func TestPaymentInsertRolledBackWhenTotalsFail(t *testing.T) {
	_, db, repos, shipment := setupPaymentTest(t)

	before := reloadShipment(t, db, shipment.ID)

	payment := &entity.ShipmentPayment{
		ID:         "pay-rollback-0001",
		ShipmentID: shipment.ID,
		Amount:     250,
		Currency:   entity.CurrencyEGP,
		AmountEgp:  250,
		Component:  entity.ComponentPurchase,
		Method:     entity.MethodCash,
	}

	err := repos.Payment.CreateWithTotals(context.Background(), payment, func(tx *gorm.DB) error {
		return errors.New("totals update failed")
	})
	if err == nil {
		t.Fatal("Expected CreateWithTotals to surface the totals failure")
	}

	var count int64
	db.Model(&entity.ShipmentPayment{}).Where("shipment_id = ?", shipment.ID).Count(&count)
	if count != 0 {
		t.Errorf("Expected payment insert to be rolled back, found %d rows", count)
	}

	after := reloadShipment(t, db, shipment.ID)
	if after.TotalPaidEgp != before.TotalPaidEgp {
		t.Errorf("Expected total paid unchanged (%v), got %v", before.TotalPaidEgp, after.TotalPaidEgp)
	}
	if after.BalanceEgp != before.BalanceEgp {
		t.Errorf("Expected balance unchanged (%v), got %v", before.BalanceEgp, after.BalanceEgp)
	}
}

func TestPaymentRefusedOnArchivedShipment(t *testing.T) {
	router, db, _, shipment := setupPaymentTest(t)
	token := testutil.DefaultTestToken()

	db.Model(&entity.Shipment{}).Where("id = ?", shipment.ID).
		Update("status", entity.StatusArchived)

	w := testutil.DoRequest(router, "POST", "/api/v1/shipments/"+shipment.ID+"/payments",
		map[string]interface{}{
			"amount":    100.0,
			"component": entity.ComponentPurchase,
		}, token)
	if w.Code == http.StatusCreated {
		t.Fatal("Expected payment on archived shipment to be refused")
	}
}

func TestPaymentList(t *testing.T) {
	router, _, _, shipment := setupPaymentTest(t)
	token := testutil.DefaultTestToken()

	for _, component := range []string{entity.ComponentPurchase, entity.ComponentCustoms} {
		w := testutil.DoRequest(router, "POST", "/api/v1/shipments/"+shipment.ID+"/payments",
			map[string]interface{}{
				"amount":    50.0,
				"component": component,
			}, token)
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}
	}

	w := testutil.DoRequest(router, "GET", "/api/v1/shipments/"+shipment.ID+"/payments", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	payments := resp["data"].([]interface{})
	if len(payments) != 2 {
		t.Fatalf("Expected 2 payments, got %d", len(payments))
	}
}
