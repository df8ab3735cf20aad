package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a stocked catalog item. Each row is one batch of a medicine, so
// the same medicine from two batches is two products with distinct codes.
type Product struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Code          string         `gorm:"size:100;unique;not null" json:"code"`
	Name          string         `gorm:"size:255;not null;index" json:"name"`
	Brand         string         `gorm:"size:255" json:"brand"`
	BatchNo       string         `gorm:"size:100" json:"batch_no"`
	ExpiryDate    *time.Time     `gorm:"type:date" json:"expiry_date,omitempty"`
	MRP           int64          `gorm:"default:0" json:"mrp"`
	SellingPrice  int64          `gorm:"default:0" json:"selling_price"`
	Quantity      int            `gorm:"default:0" json:"quantity"`
	QuantityAlert int            `gorm:"default:0" json:"quantity_alert"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// IsExpired reports whether the batch is past its expiry date at now.
func (p *Product) IsExpired(now time.Time) bool {
	return p.ExpiryDate != nil && now.After(*p.ExpiryDate)
}

// ToBillItem builds a bill line from the catalog row. unitPrice overrides the
// selling price when set. The current quantity becomes the stock snapshot.
func (p *Product) ToBillItem(quantity int, unitPrice *int64) BillItem {
	price := p.SellingPrice
	if unitPrice != nil {
		price = *unitPrice
	}
	item := BillItem{
		ProductID:      p.ID,
		Code:           p.Code,
		Name:           p.Name,
		Brand:          p.Brand,
		BatchNo:        p.BatchNo,
		MRP:            p.MRP,
		Quantity:       quantity,
		UnitPrice:      price,
		AvailableStock: p.Quantity,
	}
	if p.ExpiryDate != nil {
		exp := *p.ExpiryDate
		item.ExpiryDate = &exp
	}
	return item
}

// MarshalJSON adds the low stock flag for the cashier screen
func (p Product) MarshalJSON() ([]byte, error) {
	type Alias Product
	return json.Marshal(&struct {
		Alias
		LowStock bool `json:"low_stock"`
	}{
		Alias:    Alias(p),
		LowStock: p.Quantity <= p.QuantityAlert,
	})
}
