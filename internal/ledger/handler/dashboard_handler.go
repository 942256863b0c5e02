package handler

import (
	"github.com/KhaledMKhaled/shipledger/internal/ledger/service"
	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the accounting overview.
type DashboardHandler struct {
	svc *service.DashboardService
}

func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// GetAccountingOverview GET /dashboard/accounting
func (h *DashboardHandler) GetAccountingOverview(c *gin.Context) {
	overview, err := h.svc.GetAccountingOverview(c.Request.Context())
	if err != nil {
		InternalError(c, "فشل تحميل لوحة المتابعة: "+err.Error())
		return
	}
	Success(c, overview)
}
