package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sakanusa/gerai-analytics-backend/pkg/enums"
)

// Order is one invoice raised against a store. OrderCode is the business
// identifier from the source system and is unique, the surrogate ID exists
// for foreign keys only.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderCode     string              `gorm:"column:order_code;not null;uniqueIndex"`
	StoreID       string              `gorm:"column:store_id;not null;index"`
	StoreName     string              `gorm:"column:store_name;not null"`
	OrderDate     *time.Time          `gorm:"column:order_date;index"`
	MonthLabel    string              `gorm:"column:month_label"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;type:text;not null"`
	PaymentType   enums.PaymentType   `gorm:"column:payment_type;type:text"`
	DueDate       *time.Time          `gorm:"column:due_date"`
	Area          string              `gorm:"column:area;index"`
	Segment       string              `gorm:"column:segment;index"`
	SubSegment    string              `gorm:"column:sub_segment"`
	Hub           string              `gorm:"column:hub;index"`
	InvoiceAmount decimal.Decimal     `gorm:"column:invoice_amount;type:numeric(18,2);not null;default:0"`
	PaymentAmount decimal.Decimal     `gorm:"column:payment_amount;type:numeric(18,2);not null;default:0"`
	Profit        decimal.Decimal     `gorm:"column:profit;type:numeric(18,2);not null;default:0"`
	LineItems     []OrderLineItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	IngestedAt    *time.Time          `gorm:"column:ingested_at"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
