package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/sakanusa/gerai-analytics-backend/internal/aggregate"
	"github.com/sakanusa/gerai-analytics-backend/pkg/db/models"
	"github.com/sakanusa/gerai-analytics-backend/pkg/pagination"
)

// Repository defines persistence operations for the orders tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, order *models.Order, items []models.OrderLineItem) error
	FindByCode(ctx context.Context, orderCode string) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters Filters) (*OrderList, error)
	ListForAggregation(ctx context.Context, filters Filters) ([]aggregate.Order, error)
}
