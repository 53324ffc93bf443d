package orders

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	pkgerrors "github.com/sakanusa/gerai-analytics-backend/pkg/errors"
	"github.com/sakanusa/gerai-analytics-backend/pkg/pagination"
)

// Service defines order read operations exposed over the API.
type Service interface {
	List(ctx context.Context, params pagination.Params, filters Filters) (*OrderList, error)
	GetByCode(ctx context.Context, orderCode string) (*OrderSummary, error)
}

type service struct {
	repo Repository
}

// NewService builds the orders service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, params pagination.Params, filters Filters) (*OrderList, error) {
	if filters.DateFrom != nil && filters.DateTo != nil && filters.DateTo.Before(*filters.DateFrom) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date_to must not precede date_from")
	}

	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	return list, nil
}

func (s *service) GetByCode(ctx context.Context, orderCode string) (*OrderSummary, error) {
	code := strings.TrimSpace(orderCode)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order code is required")
	}

	row, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finding order")
	}

	summary := toSummary(*row)
	return &summary, nil
}
