package handler

import (
	"strconv"

	"github.com/KhaledMKhaled/shipledger/internal/ledger/service"
	"github.com/gin-gonic/gin"
)

// RateHandler serves exchange rate management endpoints.
type RateHandler struct {
	svc *service.RateService
}

func NewRateHandler(svc *service.RateService) *RateHandler {
	return &RateHandler{svc: svc}
}

// ListRates GET /rates
func (h *RateHandler) ListRates(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	rates, err := h.svc.List(c.Request.Context(), c.Query("from"), c.Query("to"), limit)
	if err != nil {
		InternalError(c, "فشل تحميل أسعار الصرف: "+err.Error())
		return
	}
	Success(c, rates)
}

// CreateRate POST /rates
func (h *RateHandler) CreateRate(c *gin.Context) {
	var req service.CreateRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "بيانات غير صالحة: "+err.Error())
		return
	}

	rate, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		ServiceError(c, err, "فشل تسجيل سعر الصرف")
		return
	}
	Created(c, rate)
}

// GetLatestRate GET /rates/latest
func (h *RateHandler) GetLatestRate(c *gin.Context) {
	from := c.DefaultQuery("from", "RMB")
	to := c.DefaultQuery("to", "EGP")

	rate, err := h.svc.Latest(c.Request.Context(), from, to)
	if err != nil {
		InternalError(c, "فشل تحميل سعر الصرف: "+err.Error())
		return
	}
	if rate == nil {
		NotFound(c, "لا يوجد سعر صرف مسجل لهذا الزوج")
		return
	}
	Success(c, gin.H{"from": from, "to": to, "rate": *rate})
}
