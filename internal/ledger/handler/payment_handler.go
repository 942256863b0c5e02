package handler

import (
	"github.com/KhaledMKhaled/shipledger/internal/ledger/service"
	"github.com/gin-gonic/gin"
)

// PaymentHandler serves payment recording and listing.
type PaymentHandler struct {
	svc *service.PaymentService
}

func NewPaymentHandler(svc *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// CreatePayment POST /shipments/:id/payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req service.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "بيانات غير صالحة: "+err.Error())
		return
	}

	payment, err := h.svc.Record(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		ServiceError(c, err, "فشل تسجيل الدفعة")
		return
	}
	Created(c, payment)
}

// ListPayments GET /shipments/:id/payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	payments, err := h.svc.ListByShipment(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err, "فشل تحميل المدفوعات")
		return
	}
	Success(c, payments)
}

// UploadReceipt POST /payments/:id/receipt
func (h *PaymentHandler) UploadReceipt(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "لم يتم إرفاق ملف")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		InternalError(c, "فشل قراءة الملف: "+err.Error())
		return
	}
	defer src.Close()

	payment, err := h.svc.AttachReceipt(
		c.Request.Context(),
		c.Param("id"),
		src,
		fileHeader.Filename,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		ServiceError(c, err, "فشل رفع الإيصال")
		return
	}
	Success(c, payment)
}
