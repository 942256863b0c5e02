package handler

import (
	"errors"
	"strconv"

	"github.com/KhaledMKhaled/shipledger/internal/ledger/repository"
	"github.com/KhaledMKhaled/shipledger/internal/ledger/service"
	"github.com/gin-gonic/gin"
)

// Handlers bundles every ledger handler.
type Handlers struct {
	Auth        *AuthHandler
	Shipment    *ShipmentHandler
	Payment     *PaymentHandler
	Supplier    *SupplierHandler
	Rate        *RateHandler
	ProductType *ProductTypeHandler
	Dashboard   *DashboardHandler
}

// NewHandlers wires the handlers onto the service set.
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Auth:        NewAuthHandler(svc.Auth),
		Shipment:    NewShipmentHandler(svc.Shipment, svc.Export),
		Payment:     NewPaymentHandler(svc.Payment),
		Supplier:    NewSupplierHandler(svc.Supplier),
		Rate:        NewRateHandler(svc.Rate),
		ProductType: NewProductTypeHandler(svc.ProductType),
		Dashboard:   NewDashboardHandler(svc.Dashboard),
	}
}

// === response helpers ===

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Unprocessable(c *gin.Context, message string) {
	Error(c, 42200, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// ServiceError maps a service failure onto the right status. Missing
// records become 404 and an unresolvable RMB rate becomes 422.
func ServiceError(c *gin.Context, err error, message string) {
	var missing *service.MissingRmbRateError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, "السجل غير موجود")
	case errors.As(err, &missing):
		Unprocessable(c, missing.Error())
	default:
		InternalError(c, message+": "+err.Error())
	}
}

func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}

func totalPages(total int64, pageSize int) int {
	pages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		pages++
	}
	return pages
}
