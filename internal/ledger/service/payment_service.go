package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/KhaledMKhaled/shipledger/internal/ledger/entity"
	"github.com/KhaledMKhaled/shipledger/internal/ledger/repository"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"gorm.io/gorm"
)

// PaymentService records payments against shipment cost components and
// keeps the owning shipment's paid/balance totals in step, atomically.
type PaymentService struct {
	repo         *repository.PaymentRepository
	shipmentRepo *repository.ShipmentRepository
	rates        *RateService
	minioClient  *minio.Client
	bucketName   string
}

func NewPaymentService(repo *repository.PaymentRepository, shipmentRepo *repository.ShipmentRepository, rates *RateService, minioClient *minio.Client, bucketName string) *PaymentService {
	return &PaymentService{
		repo:         repo,
		shipmentRepo: shipmentRepo,
		rates:        rates,
		minioClient:  minioClient,
		bucketName:   bucketName,
	}
}

// CreatePaymentRequest records a payment in its original currency against
// one cost component.
type CreatePaymentRequest struct {
	Amount    float64  `json:"amount" binding:"required,gt=0"`
	Currency  string   `json:"currency"`
	RateToEgp *float64 `json:"rate_to_egp"`
	Component string   `json:"component" binding:"required"`
	Method    string   `json:"method"`
	Notes     string   `json:"notes"`
}

var validComponents = map[string]bool{
	entity.ComponentPurchase:   true,
	entity.ComponentShipping:   true,
	entity.ComponentCommission: true,
	entity.ComponentCustoms:    true,
	entity.ComponentTakhreeg:   true,
}

// Record converts the payment to EGP and then, inside one transaction,
// inserts the payment row and rewrites the shipment's TotalPaidEgp,
// FinalTotalCostEgp and BalanceEgp. Any failure after the insert rolls the
// whole payment back: no orphan row, no partial shipment update.
func (s *PaymentService) Record(ctx context.Context, shipmentID, userID string, req *CreatePaymentRequest) (*entity.ShipmentPayment, error) {
	if !validComponents[req.Component] {
		return nil, errors.New("بند تكلفة غير معروف")
	}

	shipment, err := s.shipmentRepo.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment.Status == entity.StatusArchived {
		return nil, errors.New("لا يمكن تسجيل دفعة على شحنة مؤرشفة")
	}

	currency := req.Currency
	if currency == "" {
		currency = entity.CurrencyEGP
	}

	amountEgp, usedRate, err := s.rates.ResolveToEgp(ctx, req.Amount, currency, req.RateToEgp)
	if err != nil {
		return nil, err
	}

	method := req.Method
	if method == "" {
		method = entity.MethodCash
	}

	payment := &entity.ShipmentPayment{
		ID:         uuid.New().String()[:32],
		ShipmentID: shipment.ID,
		Amount:     req.Amount,
		Currency:   currency,
		RateToEgp:  usedRate,
		AmountEgp:  amountEgp,
		Component:  req.Component,
		Method:     method,
		CreatedBy:  userID,
		Notes:      req.Notes,
	}

	// The final total can shift when the payment supplies a rate for a
	// shipment that had none; compute it with the payment's rate offered.
	opts, err := s.rates.MarketRateOptions(ctx)
	if err != nil {
		return nil, err
	}
	var paymentRate *float64
	if currency == entity.CurrencyRMB {
		paymentRate = usedRate
	}
	opts.PaymentRate = paymentRate

	finalTotal, err := ComputeKnownTotal(shipment, opts)
	if err != nil {
		return nil, err
	}

	err = s.repo.CreateWithTotals(ctx, payment, func(tx *gorm.DB) error {
		paid, err := s.repo.SumPaidEgp(tx, shipment.ID)
		if err != nil {
			return err
		}
		return tx.Model(&entity.Shipment{}).
			Where("id = ?", shipment.ID).
			Updates(map[string]interface{}{
				"total_paid_egp":       paid,
				"final_total_cost_egp": finalTotal,
				"balance_egp":          Balance(finalTotal, paid),
				"updated_at":           time.Now(),
			}).Error
	})
	if err != nil {
		return nil, err
	}

	return payment, nil
}

// ListByShipment returns a shipment's payments, newest first.
func (s *PaymentService) ListByShipment(ctx context.Context, shipmentID string) ([]entity.ShipmentPayment, error) {
	if _, err := s.shipmentRepo.FindByID(ctx, shipmentID); err != nil {
		return nil, err
	}
	return s.repo.FindByShipment(ctx, shipmentID)
}

// AttachReceipt uploads a receipt image to object storage and links it to
// the payment.
func (s *PaymentService) AttachReceipt(ctx context.Context, paymentID string, reader io.Reader, fileName string, fileSize int64, contentType string) (*entity.ShipmentPayment, error) {
	payment, err := s.repo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	objectName := fmt.Sprintf("receipts/%s/%s%s", time.Now().Format("2006/01"), uuid.New().String()[:8], filepath.Ext(fileName))

	if s.minioClient != nil {
		_, err = s.minioClient.PutObject(ctx, s.bucketName, objectName, reader, fileSize, minio.PutObjectOptions{
			ContentType: contentType,
		})
		if err != nil {
			return nil, fmt.Errorf("upload receipt: %w", err)
		}
	}

	payment.ReceiptPath = objectName
	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}
