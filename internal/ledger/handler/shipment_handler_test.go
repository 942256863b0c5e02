package handler

import (
	"net/http"
	"testing"

	"github.com/KhaledMKhaled/shipledger/internal/ledger/entity"
	"github.com/KhaledMKhaled/shipledger/internal/ledger/repository"
	"github.com/KhaledMKhaled/shipledger/internal/ledger/service"
	"github.com/KhaledMKhaled/shipledger/internal/ledger/testutil"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func setupShipmentTest(t *testing.T) (*gin.Engine, *gorm.DB, *entity.Supplier) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	supplier := testutil.SeedSupplier(t, db, "مورد جوانزو")

	repos := repository.NewRepositories(db)
	rates := service.NewRateService(repos.Rate, nil, 0, 0)
	shipmentSvc := service.NewShipmentService(repos.Shipment, repos.Supplier, rates, db)
	exportSvc := service.NewExportService(repos.Shipment)
	h := NewShipmentHandler(shipmentSvc, exportSvc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")

	shipments := api.Group("/shipments")
	shipments.GET("", h.ListShipments)
	shipments.POST("", h.CreateShipment)
	shipments.GET("/:id", h.GetShipment)
	shipments.PUT("/:id", h.UpdateShipment)
	shipments.DELETE("/:id", h.DeleteShipment)
	shipments.PUT("/:id/shipping-details", h.UpdateShippingDetails)
	shipments.PUT("/:id/customs-details", h.UpdateCustomsDetails)
	shipments.POST("/:id/deliver", h.DeliverShipment)
	shipments.POST("/:id/archive", h.ArchiveShipment)
	shipments.POST("/:id/recalculate", h.RecalculateShipment)

	return router, db, supplier
}

func createShipment(t *testing.T, router *gin.Engine, token string, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	w := testutil.DoRequest(router, "POST", "/api/v1/shipments", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	return resp["data"].(map[string]interface{})
}

func TestShipmentCreateNewUsesEgpEstimates(t *testing.T) {
	router, _, supplier := setupShipmentTest(t)
	token := testutil.DefaultTestToken()

	data := createShipment(t, router, token, map[string]interface{}{
		"name":              "شحنة لعب أطفال",
		"supplier_id":       supplier.ID,
		"purchase_cost_egp": 150.50,
		"customs_cost_egp":  25.0,
		"shipping_cost_egp": 0.0,
	})

	if data["status"] != entity.StatusNew {
		t.Errorf("Expected status %q, got %v", entity.StatusNew, data["status"])
	}
	if data["final_total_cost_egp"].(float64) != 175.5 {
		t.Errorf("Expected final total 175.5, got %v", data["final_total_cost_egp"])
	}
	if data["balance_egp"].(float64) != 175.5 {
		t.Errorf("Expected balance 175.5, got %v", data["balance_egp"])
	}
	code, _ := data["code"].(string)
	if len(code) < 4 || code[:4] != "SHP-" {
		t.Errorf("Expected code starting with 'SHP-', got %v", data["code"])
	}
}

func TestShipmentUpdateAdvancesToAwaitingShipping(t *testing.T) {
	router, _, supplier := setupShipmentTest(t)
	token := testutil.DefaultTestToken()

	data := createShipment(t, router, token, map[string]interface{}{
		"name":        "شحنة إكسسوارات",
		"supplier_id": supplier.ID,
	})
	id := data["id"].(string)

	w := testutil.DoRequest(router, "PUT", "/api/v1/shipments/"+id, map[string]interface{}{
		"purchase_cost_rmb":   200.0,
		"purchase_rate":       5.0,
		"commission_cost_rmb": 30.0,
		"shipping_cost_rmb":   20.0,
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	updated := resp["data"].(map[string]interface{})
	if updated["status"] != entity.StatusAwaitingShipping {
		t.Errorf("Expected status %q, got %v", entity.StatusAwaitingShipping, updated["status"])
	}
	// (200 + 30 + 20) * 5
	if updated["final_total_cost_egp"].(float64) != 1250 {
		t.Errorf("Expected final total 1250, got %v", updated["final_total_cost_egp"])
	}
}

func TestShipmentUpdateMissingRmbRateRejected(t *testing.T) {
	router, _, supplier := setupShipmentTest(t)
	token := testutil.DefaultTestToken()

	data := createShipment(t, router, token, map[string]interface{}{
		"name":        "شحنة بدون سعر صرف",
		"supplier_id": supplier.ID,
	})
	id := data["id"].(string)

	// RMB figures with no purchase rate, no market rate, no default.
	w := testutil.DoRequest(router, "PUT", "/api/v1/shipments/"+id, map[string]interface{}{
		"purchase_cost_rmb": 500.0,
	}, token)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d: %s", w.Code, w.Body.String())
	}
}

func TestShipmentUpdateFallsBackToMarketRate(t *testing.T) {
	router, db, supplier := setupShipmentTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedRate(t, db, entity.CurrencyRMB, entity.CurrencyEGP, 7.0)

	data := createShipment(t, router, token, map[string]interface{}{
		"name":        "شحنة بسعر السوق",
		"supplier_id": supplier.ID,
	})
	id := data["id"].(string)

	w := testutil.DoRequest(router, "PUT", "/api/v1/shipments/"+id, map[string]interface{}{
		"purchase_cost_rmb": 100.0,
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	updated := resp["data"].(map[string]interface{})
	if updated["final_total_cost_egp"].(float64) != 700 {
		t.Errorf("Expected final total 700, got %v", updated["final_total_cost_egp"])
	}
}

func TestShipmentCustomsDetailsMarksReadyForPickup(t *testing.T) {
	router, _, supplier := setupShipmentTest(t)
	token := testutil.DefaultTestToken()

	data := createShipment(t, router, token, map[string]interface{}{
		"name":              "شحنة قماش",
		"supplier_id":       supplier.ID,
		"purchase_cost_rmb": 1000.0,
		"purchase_rate":     5.0,
	})
	id := data["id"].(string)

	w := testutil.DoRequest(router, "PUT", "/api/v1/shipments/"+id+"/customs-details", map[string]interface{}{
		"customs_cost_egp":  300.0,
		"takhreeg_cost_egp": 120.0,
		"receipt_no":        "CU-2026-118",
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	updated := resp["data"].(map[string]interface{})
	if updated["status"] != entity.StatusReadyForPickup {
		t.Errorf("Expected status %q, got %v", entity.StatusReadyForPickup, updated["status"])
	}
	details, ok := updated["customs_details"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected customs_details in response, got %v", updated["customs_details"])
	}
	if details["receipt_no"] != "CU-2026-118" {
		t.Errorf("Expected receipt_no CU-2026-118, got %v", details["receipt_no"])
	}
}

func TestShipmentShippingDetailsComputesFreight(t *testing.T) {
	router, _, supplier := setupShipmentTest(t)
	token := testutil.DefaultTestToken()

	data := createShipment(t, router, token, map[string]interface{}{
		"name":              "شحنة أدوات منزلية",
		"supplier_id":       supplier.ID,
		"purchase_cost_rmb": 1000.0,
		"purchase_rate":     5.0,
	})
	id := data["id"].(string)

	// 10 cbm at 40 USD/cbm, USD rate 50 => 20000 EGP freight.
	w := testutil.DoRequest(router, "PUT", "/api/v1/shipments/"+id+"/shipping-details", map[string]interface{}{
		"area_cbm":         10.0,
		"rate_per_cbm_usd": 40.0,
		"usd_to_egp_rate":  50.0,
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	updated := resp["data"].(map[string]interface{})
	if updated["shipping_cost_egp"].(float64) != 20000 {
		t.Errorf("Expected shipping cost 20000, got %v", updated["shipping_cost_egp"])
	}
}

func TestShipmentDeliverAndArchive(t *testing.T) {
	router, _, supplier := setupShipmentTest(t)
	token := testutil.DefaultTestToken()

	data := createShipment(t, router, token, map[string]interface{}{
		"name":              "شحنة للتسليم",
		"supplier_id":       supplier.ID,
		"purchase_cost_egp": 900.0,
	})
	id := data["id"].(string)

	// Cannot deliver before customs clearance.
	w := testutil.DoRequest(router, "POST", "/api/v1/shipments/"+id+"/deliver", nil, token)
	if w.Code == http.StatusOK {
		t.Fatal("Expected deliver to fail before customs clearance")
	}

	w = testutil.DoRequest(router, "PUT", "/api/v1/shipments/"+id+"/customs-details",
		map[string]interface{}{"customs_cost_egp": 100.0}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on customs details, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, "POST", "/api/v1/shipments/"+id+"/deliver", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on deliver, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["data"].(map[string]interface{})["status"] != entity.StatusDelivered {
		t.Errorf("Expected status %q after deliver", entity.StatusDelivered)
	}

	w = testutil.DoRequest(router, "POST", "/api/v1/shipments/"+id+"/archive", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on archive, got %d: %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	if resp["data"].(map[string]interface{})["status"] != entity.StatusArchived {
		t.Errorf("Expected status %q after archive", entity.StatusArchived)
	}
}

func TestShipmentListFiltersByStatus(t *testing.T) {
	router, _, supplier := setupShipmentTest(t)
	token := testutil.DefaultTestToken()

	createShipment(t, router, token, map[string]interface{}{
		"name":        "شحنة أولى",
		"supplier_id": supplier.ID,
	})
	second := createShipment(t, router, token, map[string]interface{}{
		"name":        "شحنة ثانية",
		"supplier_id": supplier.ID,
	})

	// Complete the purchase step so the second one leaves the new state.
	w := testutil.DoRequest(router, "PUT", "/api/v1/shipments/"+second["id"].(string), map[string]interface{}{
		"purchase_cost_rmb": 100.0,
		"purchase_rate":     5.0,
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/shipments?status="+entity.StatusNew, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("Expected 1 new shipment, got %d", len(items))
	}
	if items[0].(map[string]interface{})["name"] != "شحنة أولى" {
		t.Errorf("Expected the new shipment, got %v", items[0])
	}
}

func TestShipmentDeleteRefusedWithPayments(t *testing.T) {
	router, db, supplier := setupShipmentTest(t)
	token := testutil.DefaultTestToken()

	data := createShipment(t, router, token, map[string]interface{}{
		"name":              "شحنة مدفوعة جزئيا",
		"supplier_id":       supplier.ID,
		"purchase_cost_egp": 500.0,
	})
	id := data["id"].(string)

	payment := &entity.ShipmentPayment{
		ID:         "pay-test-0001",
		ShipmentID: id,
		Amount:     100,
		Currency:   entity.CurrencyEGP,
		AmountEgp:  100,
		Component:  entity.ComponentPurchase,
		Method:     entity.MethodCash,
	}
	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	w := testutil.DoRequest(router, "DELETE", "/api/v1/shipments/"+id, nil, token)
	if w.Code == http.StatusOK {
		t.Fatal("Expected delete to be refused while payments exist")
	}

	var count int64
	db.Model(&entity.Shipment{}).Where("id = ?", id).Count(&count)
	if count != 1 {
		t.Errorf("Expected shipment to survive the refused delete")
	}
}
