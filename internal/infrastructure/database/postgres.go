package database

import (
	"fmt"
	"time"

	"github.com/sangkips/pharmacy-pos/internal/config"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.NewGormLogger(log, gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Info("connected to database", zap.String("host", cfg.Host), zap.String("name", cfg.Name))
	return db, nil
}

// AutoMigrate runs GORM auto-migration for the catalog, ledger and support tables
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")

	err := db.AutoMigrate(
		&entity.Product{},
		&entity.Customer{},
		&entity.IdempotencyKey{},
		&entity.Invoice{},
		&entity.InvoiceSequence{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("database migrations completed")
	return nil
}

// SeedDefaultData fills an empty catalog with a handful of common medicines
// so a fresh install can ring up a sale.
func SeedDefaultData(db *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := db.Model(&entity.Product{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		log.Debug("catalog already seeded", zap.Int64("products", count))
		return nil
	}

	products := make([]entity.Product, len(sampleProducts))
	copy(products, sampleProducts)
	for i := range products {
		if err := db.Create(&products[i]).Error; err != nil {
			log.Warn("failed to seed product", zap.String("code", products[i].Code), zap.Error(err))
		}
	}

	customers := []entity.Customer{
		{Name: "Walk-in Customer"},
		{Name: "Meera Iyer"},
	}
	for i := range customers {
		if err := db.Create(&customers[i]).Error; err != nil {
			log.Warn("failed to seed customer", zap.String("name", customers[i].Name), zap.Error(err))
		}
	}

	log.Info("default data seeded", zap.Int("products", len(products)))
	return nil
}

func expiry(year int, month time.Month) *time.Time {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return &t
}

var sampleProducts = []entity.Product{
	{Code: "MED-00001", Name: "Paracetamol 500mg", Brand: "Crocin", BatchNo: "CR2401", ExpiryDate: expiry(2027, time.June), MRP: 35, SellingPrice: 30, Quantity: 200, QuantityAlert: 20},
	{Code: "MED-00002", Name: "Amoxicillin 250mg", Brand: "Mox", BatchNo: "MX1187", ExpiryDate: expiry(2027, time.January), MRP: 95, SellingPrice: 90, Quantity: 80, QuantityAlert: 10},
	{Code: "MED-00003", Name: "Cetirizine 10mg", Brand: "Okacet", BatchNo: "OK5520", ExpiryDate: expiry(2027, time.March), MRP: 20, SellingPrice: 18, Quantity: 150, QuantityAlert: 15},
	{Code: "MED-00004", Name: "Pantoprazole 40mg", Brand: "Pan", BatchNo: "PN0931", ExpiryDate: expiry(2026, time.December), MRP: 155, SellingPrice: 140, Quantity: 60, QuantityAlert: 10},
	{Code: "MED-00005", Name: "ORS Sachet", Brand: "Electral", BatchNo: "EL7710", ExpiryDate: expiry(2028, time.February), MRP: 22, SellingPrice: 20, Quantity: 300, QuantityAlert: 30},
	{Code: "MED-00006", Name: "Metformin 500mg", Brand: "Glycomet", BatchNo: "GM4402", ExpiryDate: expiry(2027, time.August), MRP: 45, SellingPrice: 42, Quantity: 120, QuantityAlert: 20},
}
