package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sakanusa/gerai-analytics-backend/pkg/db/models"
	"github.com/sakanusa/gerai-analytics-backend/pkg/enums"
	"github.com/sakanusa/gerai-analytics-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:orders_%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_code TEXT NOT NULL UNIQUE,
  store_id TEXT NOT NULL,
  store_name TEXT NOT NULL,
  order_date DATETIME,
  month_label TEXT,
  payment_status TEXT NOT NULL,
  payment_type TEXT,
  due_date DATETIME,
  area TEXT,
  segment TEXT,
  sub_segment TEXT,
  hub TEXT,
  invoice_amount NUMERIC NOT NULL DEFAULT 0,
  payment_amount NUMERIC NOT NULL DEFAULT 0,
  profit NUMERIC NOT NULL DEFAULT 0,
  ingested_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	lineItemsTable := `
CREATE TABLE IF NOT EXISTS order_line_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  category TEXT,
  unit_price NUMERIC NOT NULL DEFAULT 0,
  buy_price NUMERIC NOT NULL DEFAULT 0,
  qty INTEGER NOT NULL DEFAULT 0,
  nominal_qty INTEGER NOT NULL DEFAULT 0,
  line_total NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ordersTable).Error)
	require.NoError(t, db.Exec(lineItemsTable).Error)
	return db
}

func fixtureOrder(code, storeID string, date time.Time, invoice int64) *models.Order {
	d := date
	return &models.Order{
		OrderCode:     code,
		StoreID:       storeID,
		StoreName:     "Gerai " + storeID,
		OrderDate:     &d,
		MonthLabel:    date.Format("January 2006"),
		PaymentStatus: enums.PaymentStatusLunas,
		PaymentType:   enums.PaymentTypeCOD,
		Area:          "Jakarta Selatan",
		Segment:       "Retail",
		Hub:           "HUB-JKT",
		InvoiceAmount: decimal.NewFromInt(invoice),
		PaymentAmount: decimal.NewFromInt(invoice),
		Profit:        decimal.NewFromInt(invoice / 10),
	}
}

func fixtureItems(n int) []models.OrderLineItem {
	items := make([]models.OrderLineItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, models.OrderLineItem{
			ProductID:   fmt.Sprintf("SKU-%d", i+1),
			ProductName: fmt.Sprintf("Product %d", i+1),
			UnitPrice:   decimal.NewFromInt(100),
			BuyPrice:    decimal.NewFromInt(80),
			Quantity:    2,
			LineTotal:   decimal.NewFromInt(200),
		})
	}
	return items
}

func TestUpsertCreatesAndReplaces(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	date := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	order := fixtureOrder("ORD-1", "ST-1", date, 1000)
	require.NoError(t, repo.Upsert(ctx, order, fixtureItems(2)))

	stored, err := repo.FindByCode(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Len(t, stored.LineItems, 2)
	assert.True(t, stored.InvoiceAmount.Equal(decimal.NewFromInt(1000)))
	require.NotNil(t, stored.IngestedAt)

	// Replaying the order with new amounts replaces, never duplicates.
	replay := fixtureOrder("ORD-1", "ST-1", date, 1500)
	require.NoError(t, repo.Upsert(ctx, replay, fixtureItems(3)))

	stored, err = repo.FindByCode(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Len(t, stored.LineItems, 3)
	assert.True(t, stored.InvoiceAmount.Equal(decimal.NewFromInt(1500)))

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestListPaginatesWithCursor(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		order := fixtureOrder(fmt.Sprintf("ORD-%d", i+1), "ST-1", base.AddDate(0, 0, i), 100)
		created := base.Add(time.Duration(i) * time.Hour)
		order.CreatedAt = created
		require.NoError(t, repo.Upsert(ctx, order, nil))
	}

	page1, err := repo.List(ctx, pagination.Params{Limit: 3}, Filters{})
	require.NoError(t, err)
	assert.Len(t, page1.Orders, 3)
	require.NotEmpty(t, page1.NextCursor)

	page2, err := repo.List(ctx, pagination.Params{Limit: 3, Cursor: page1.NextCursor}, Filters{})
	require.NoError(t, err)
	assert.Len(t, page2.Orders, 2)
	assert.Empty(t, page2.NextCursor)

	seen := map[string]bool{}
	for _, o := range append(page1.Orders, page2.Orders...) {
		seen[o.OrderCode] = true
	}
	assert.Len(t, seen, 5)
}

func TestListAppliesFilters(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	date := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	inArea := fixtureOrder("ORD-1", "ST-1", date, 100)
	require.NoError(t, repo.Upsert(ctx, inArea, nil))

	other := fixtureOrder("ORD-2", "ST-2", date, 100)
	other.Area = "Bandung"
	other.PaymentStatus = enums.PaymentStatusBelumLunas
	require.NoError(t, repo.Upsert(ctx, other, nil))

	list, err := repo.List(ctx, pagination.Params{}, Filters{Area: "Jakarta Selatan"})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, "ORD-1", list.Orders[0].OrderCode)

	unpaid := enums.PaymentStatusBelumLunas
	list, err = repo.List(ctx, pagination.Params{}, Filters{PaymentStatus: &unpaid})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, "ORD-2", list.Orders[0].OrderCode)

	from := date.AddDate(0, 0, 1)
	list, err = repo.List(ctx, pagination.Params{}, Filters{DateFrom: &from})
	require.NoError(t, err)
	assert.Empty(t, list.Orders)
}

func TestListForAggregationMapsFields(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	date := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	due := date.AddDate(0, 0, 14)
	order := fixtureOrder("ORD-1", "ST-1", date, 1000)
	order.DueDate = &due
	require.NoError(t, repo.Upsert(ctx, order, fixtureItems(1)))

	records, err := repo.ListForAggregation(ctx, Filters{})
	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, "ORD-1", record.ID)
	assert.Equal(t, "ST-1", record.StoreID)
	assert.Equal(t, "May 2025", record.MonthLabel)
	assert.Equal(t, enums.PaymentStatusLunas, record.PaymentStatus)
	assert.Equal(t, "HUB-JKT", record.HubID)
	assert.True(t, record.TotalInvoice.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, due.Unix(), record.DueDate.Unix())
	require.Len(t, record.Items, 1)
	assert.Equal(t, "SKU-1", record.Items[0].ProductID)
	assert.True(t, record.Items[0].BuyPrice.Equal(decimal.NewFromInt(80)))
}
