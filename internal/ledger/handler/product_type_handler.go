package handler

import (
	"github.com/KhaledMKhaled/shipledger/internal/ledger/service"
	"github.com/gin-gonic/gin"
)

// ProductTypeHandler serves the product type lookup table.
type ProductTypeHandler struct {
	svc *service.ProductTypeService
}

func NewProductTypeHandler(svc *service.ProductTypeService) *ProductTypeHandler {
	return &ProductTypeHandler{svc: svc}
}

// ListProductTypes GET /product-types
func (h *ProductTypeHandler) ListProductTypes(c *gin.Context) {
	types, err := h.svc.List(c.Request.Context())
	if err != nil {
		InternalError(c, "فشل تحميل أنواع البضائع: "+err.Error())
		return
	}
	Success(c, types)
}

// CreateProductType POST /product-types
func (h *ProductTypeHandler) CreateProductType(c *gin.Context) {
	var req service.CreateProductTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "بيانات غير صالحة: "+err.Error())
		return
	}

	pt, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		ServiceError(c, err, "فشل إنشاء نوع البضاعة")
		return
	}
	Created(c, pt)
}
