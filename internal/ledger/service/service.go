package service

import (
	"github.com/KhaledMKhaled/shipledger/internal/config"
	"github.com/KhaledMKhaled/shipledger/internal/ledger/repository"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services bundles every ledger service.
type Services struct {
	Auth        *AuthService
	Shipment    *ShipmentService
	Payment     *PaymentService
	Supplier    *SupplierService
	Rate        *RateService
	ProductType *ProductTypeService
	Dashboard   *DashboardService
	Export      *ExportService
}

// NewServices wires the services. The minio client is optional; receipt
// uploads degrade to metadata-only when no endpoint is configured.
func NewServices(repos *repository.Repositories, db *gorm.DB, rdb *redis.Client, cfg *config.Config) *Services {
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			minioClient = nil
		}
	}

	rates := NewRateService(repos.Rate, rdb, cfg.Ledger.RateCacheTTL, cfg.Ledger.DefaultRmbRate)
	shipments := NewShipmentService(repos.Shipment, repos.Supplier, rates, db)

	return &Services{
		Auth:        NewAuthService(repos.User, rdb, cfg),
		Shipment:    shipments,
		Payment:     NewPaymentService(repos.Payment, repos.Shipment, rates, minioClient, cfg.MinIO.Bucket),
		Supplier:    NewSupplierService(repos.Supplier, repos.Shipment),
		Rate:        rates,
		ProductType: NewProductTypeService(repos.ProductType),
		Dashboard:   NewDashboardService(db),
		Export:      NewExportService(repos.Shipment),
	}
}
