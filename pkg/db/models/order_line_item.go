package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLineItem captures the snapshot of each product sold within an order.
// NominalQty carries the unit-normalized quantity for products sold in packs.
type OrderLineItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID   string          `gorm:"column:product_id;not null;index"`
	ProductName string          `gorm:"column:product_name;not null"`
	Category    string          `gorm:"column:category"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(18,2);not null;default:0"`
	BuyPrice    decimal.Decimal `gorm:"column:buy_price;type:numeric(18,2);not null;default:0"`
	Quantity    int64           `gorm:"column:qty;not null;default:0"`
	NominalQty  int64           `gorm:"column:nominal_qty;not null;default:0"`
	LineTotal   decimal.Decimal `gorm:"column:line_total;type:numeric(18,2);not null;default:0"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
