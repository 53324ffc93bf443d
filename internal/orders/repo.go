package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sakanusa/gerai-analytics-backend/internal/aggregate"
	"github.com/sakanusa/gerai-analytics-backend/pkg/db"
	"github.com/sakanusa/gerai-analytics-backend/pkg/db/models"
	pkgerrors "github.com/sakanusa/gerai-analytics-backend/pkg/errors"
	"github.com/sakanusa/gerai-analytics-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Upsert writes the order keyed by its business code. Replaying the same
// order replaces the previous row and its line items wholesale, so repeated
// deliveries of one source record stay idempotent.
func (r *repository) Upsert(ctx context.Context, order *models.Order, items []models.OrderLineItem) error {
	if order == nil {
		return errors.New("order is required")
	}

	existing, err := r.FindByCode(ctx, order.OrderCode)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now().UTC()
	order.IngestedAt = &now

	if existing != nil {
		order.ID = existing.ID
		order.CreatedAt = existing.CreatedAt
		if err := r.db.WithContext(ctx).
			Where("order_id = ?", existing.ID).
			Delete(&models.OrderLineItem{}).Error; err != nil {
			return err
		}
		if err := r.db.WithContext(ctx).Save(order).Error; err != nil {
			return err
		}
	} else {
		if order.ID == uuid.Nil {
			order.ID = uuid.New()
		}
		if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
			// A concurrent ingest of the same code can slip between the
			// lookup and the insert. Surface it as retryable.
			if db.IsUniqueViolation(err, "idx_orders_order_code") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order code already ingested")
			}
			return err
		}
	}

	if len(items) == 0 {
		return nil
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].OrderID = order.ID
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindByCode(ctx context.Context, orderCode string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("LineItems").
		Where("order_code = ?", orderCode).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters Filters) (*OrderList, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := applyFilters(r.db.WithContext(ctx).Model(&models.Order{}), filters)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
	if err := query.
		Preload("LineItems").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID})
	}

	list := &OrderList{Orders: make([]OrderSummary, 0, len(rows)), NextCursor: nextCursor}
	for _, row := range rows {
		list.Orders = append(list.Orders, toSummary(row))
	}
	return list, nil
}

// ListForAggregation loads every order matching the filters and maps it to
// the aggregation input shape. No pagination: snapshots fold the full set.
func (r *repository) ListForAggregation(ctx context.Context, filters Filters) ([]aggregate.Order, error) {
	var rows []models.Order
	query := applyFilters(r.db.WithContext(ctx).Model(&models.Order{}), filters)
	if err := query.Preload("LineItems").Order("order_date ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]aggregate.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, toAggregateOrder(row))
	}
	return out, nil
}

func applyFilters(query *gorm.DB, filters Filters) *gorm.DB {
	if filters.StoreID != "" {
		query = query.Where("store_id = ?", filters.StoreID)
	}
	if filters.Area != "" {
		query = query.Where("area = ?", filters.Area)
	}
	if filters.Segment != "" {
		query = query.Where("segment = ?", filters.Segment)
	}
	if filters.Hub != "" {
		query = query.Where("hub = ?", filters.Hub)
	}
	if filters.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filters.PaymentStatus)
	}
	if filters.PaymentType != nil {
		query = query.Where("payment_type = ?", *filters.PaymentType)
	}
	if filters.DateFrom != nil {
		query = query.Where("order_date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("order_date < ?", *filters.DateTo)
	}
	return query
}

func toSummary(row models.Order) OrderSummary {
	return OrderSummary{
		ID:            row.ID,
		OrderCode:     row.OrderCode,
		StoreID:       row.StoreID,
		StoreName:     row.StoreName,
		OrderDate:     row.OrderDate,
		Area:          row.Area,
		Segment:       row.Segment,
		Hub:           row.Hub,
		PaymentStatus: row.PaymentStatus,
		PaymentType:   row.PaymentType,
		DueDate:       row.DueDate,
		InvoiceAmount: row.InvoiceAmount,
		PaymentAmount: row.PaymentAmount,
		Profit:        row.Profit,
		TotalItems:    len(row.LineItems),
	}
}

func toAggregateOrder(row models.Order) aggregate.Order {
	order := aggregate.Order{
		ID:            row.OrderCode,
		StoreID:       row.StoreID,
		StoreName:     row.StoreName,
		MonthLabel:    row.MonthLabel,
		Area:          row.Area,
		PaymentType:   row.PaymentType,
		PaymentStatus: row.PaymentStatus,
		TotalInvoice:  row.InvoiceAmount,
		TotalPayment:  row.PaymentAmount,
		Profit:        row.Profit,
		HubID:         row.Hub,
		Segment:       row.Segment,
		SubSegment:    row.SubSegment,
	}
	if row.OrderDate != nil {
		order.OrderDate = *row.OrderDate
	}
	if row.DueDate != nil {
		order.DueDate = *row.DueDate
	}
	for _, item := range row.LineItems {
		order.Items = append(order.Items, aggregate.LineItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal,
			BuyPrice:    item.BuyPrice,
			Category:    item.Category,
			NominalQty:  item.NominalQty,
		})
	}
	return order
}
