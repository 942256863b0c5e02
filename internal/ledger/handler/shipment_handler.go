package handler

import (
	"fmt"
	"net/http"

	"github.com/KhaledMKhaled/shipledger/internal/ledger/service"
	"github.com/gin-gonic/gin"
)

// ShipmentHandler serves the shipment lifecycle endpoints.
type ShipmentHandler struct {
	svc    *service.ShipmentService
	export *service.ExportService
}

func NewShipmentHandler(svc *service.ShipmentService, export *service.ExportService) *ShipmentHandler {
	return &ShipmentHandler{svc: svc, export: export}
}

// ListShipments GET /shipments
func (h *ShipmentHandler) ListShipments(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"supplier_id": c.Query("supplier_id"),
		"status":      c.Query("status"),
		"code":        c.Query("code"),
		"unpaid":      c.Query("unpaid"),
	}

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "فشل تحميل الشحنات: "+err.Error())
		return
	}

	Success(c, ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages(total, pageSize),
		},
	})
}

// GetShipment GET /shipments/:id
func (h *ShipmentHandler) GetShipment(c *gin.Context) {
	shipment, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		NotFound(c, "الشحنة غير موجودة")
		return
	}
	Success(c, shipment)
}

// CreateShipment POST /shipments
func (h *ShipmentHandler) CreateShipment(c *gin.Context) {
	var req service.CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "بيانات غير صالحة: "+err.Error())
		return
	}

	shipment, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		ServiceError(c, err, "فشل إنشاء الشحنة")
		return
	}
	Created(c, shipment)
}

// UpdateShipment PUT /shipments/:id
func (h *ShipmentHandler) UpdateShipment(c *gin.Context) {
	var req service.UpdateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "بيانات غير صالحة: "+err.Error())
		return
	}

	shipment, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		ServiceError(c, err, "فشل تعديل الشحنة")
		return
	}
	Success(c, shipment)
}

// DeleteShipment DELETE /shipments/:id
func (h *ShipmentHandler) DeleteShipment(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		ServiceError(c, err, "فشل حذف الشحنة")
		return
	}
	Success(c, nil)
}

// UpdateShippingDetails PUT /shipments/:id/shipping
func (h *ShipmentHandler) UpdateShippingDetails(c *gin.Context) {
	var req service.ShippingDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "بيانات غير صالحة: "+err.Error())
		return
	}

	shipment, err := h.svc.UpdateShippingDetails(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		ServiceError(c, err, "فشل تسجيل بيانات الشحن")
		return
	}
	Success(c, shipment)
}

// UpdateCustomsDetails PUT /shipments/:id/customs
func (h *ShipmentHandler) UpdateCustomsDetails(c *gin.Context) {
	var req service.CustomsDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "بيانات غير صالحة: "+err.Error())
		return
	}

	shipment, err := h.svc.UpdateCustomsDetails(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		ServiceError(c, err, "فشل تسجيل بيانات الجمارك")
		return
	}
	Success(c, shipment)
}

// DeliverShipment POST /shipments/:id/deliver
func (h *ShipmentHandler) DeliverShipment(c *gin.Context) {
	shipment, err := h.svc.Deliver(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err, "فشل تسليم الشحنة")
		return
	}
	Success(c, shipment)
}

// ArchiveShipment POST /shipments/:id/archive
func (h *ShipmentHandler) ArchiveShipment(c *gin.Context) {
	shipment, err := h.svc.Archive(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err, "فشل أرشفة الشحنة")
		return
	}
	Success(c, shipment)
}

// RecalculateShipment POST /shipments/:id/recalculate
func (h *ShipmentHandler) RecalculateShipment(c *gin.Context) {
	shipment, err := h.svc.Recalculate(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err, "فشل إعادة حساب التكاليف")
		return
	}
	Success(c, shipment)
}

// ExportShipments GET /shipments/export
func (h *ShipmentHandler) ExportShipments(c *gin.Context) {
	filters := map[string]string{
		"supplier_id": c.Query("supplier_id"),
		"status":      c.Query("status"),
		"unpaid":      c.Query("unpaid"),
	}

	f, fileName, err := h.export.ExportShipments(c.Request.Context(), filters)
	if err != nil {
		InternalError(c, "فشل تصدير الشحنات: "+err.Error())
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fileName))
	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
