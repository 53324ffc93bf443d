package ingest

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/sakanusa/gerai-analytics-backend/internal/orders"
	"github.com/sakanusa/gerai-analytics-backend/pkg/db/models"
	"github.com/sakanusa/gerai-analytics-backend/pkg/enums"
	pkgerrors "github.com/sakanusa/gerai-analytics-backend/pkg/errors"
	"github.com/sakanusa/gerai-analytics-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

// Service lands decoded order events in the database.
type Service struct {
	repo orders.Repository
	tx   txRunner
	idem idempotencyChecker
	logg *logger.Logger
}

// NewService builds the ingest service.
func NewService(repo orders.Repository, tx txRunner, idem idempotencyChecker, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, errors.New("orders repository is required")
	}
	if tx == nil {
		return nil, errors.New("tx runner is required")
	}
	if idem == nil {
		return nil, errors.New("idempotency manager is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Service{repo: repo, tx: tx, idem: idem, logg: logg}, nil
}

// Process ingests one envelope. Replayed event IDs are dropped; failures
// release the idempotency claim so the broker can redeliver.
func (s *Service) Process(ctx context.Context, envelope *Envelope) error {
	if envelope == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "envelope is required")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"event_id": envelope.EventID})

	already, err := s.idem.CheckAndMarkProcessed(ctx, envelope.EventID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency check")
	}
	if already {
		s.logg.Info(logCtx, "order event already processed")
		return nil
	}

	payload, err := envelope.DecodeOrder()
	if err != nil {
		// A malformed payload never becomes valid on retry; keep the claim.
		s.logg.Error(logCtx, "invalid order payload", err)
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decoding order payload")
	}

	order, items := toModels(payload)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Upsert(ctx, order, items)
	})
	if err != nil {
		_ = s.idem.Delete(ctx, envelope.EventID)
		s.logg.Error(logCtx, "order upsert failed", err)
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upserting order")
	}

	s.logg.Info(s.logg.WithStoreID(logCtx, order.StoreID), "order event ingested")
	return nil
}

func toModels(payload *OrderPayload) (*models.Order, []models.OrderLineItem) {
	order := &models.Order{
		OrderCode:     strings.TrimSpace(payload.OrderCode),
		StoreID:       strings.TrimSpace(payload.StoreID),
		StoreName:     payload.StoreName,
		OrderDate:     payload.OrderDate,
		MonthLabel:    payload.MonthLabel,
		PaymentStatus: parsePaymentStatus(payload.PaymentStatus),
		PaymentType:   parsePaymentType(payload.PaymentType),
		DueDate:       payload.DueDate,
		Area:          payload.Area,
		Segment:       payload.Segment,
		SubSegment:    payload.SubSegment,
		Hub:           payload.Hub,
		InvoiceAmount: payload.TotalInvoice,
		PaymentAmount: payload.TotalPayment,
		Profit:        payload.Profit,
	}

	items := make([]models.OrderLineItem, 0, len(payload.Items))
	for _, item := range payload.Items {
		items = append(items, models.OrderLineItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Category:    item.Category,
			UnitPrice:   item.UnitPrice,
			BuyPrice:    item.BuyPrice,
			Quantity:    item.Quantity,
			NominalQty:  item.NominalQty,
			LineTotal:   item.LineTotal,
		})
	}
	return order, items
}

// parsePaymentStatus normalizes known statuses and passes unknown ones
// through uppercased, so new upstream statuses survive a round trip.
func parsePaymentStatus(value string) enums.PaymentStatus {
	if status, err := enums.ParsePaymentStatus(value); err == nil {
		return status
	}
	return enums.PaymentStatus(strings.ToUpper(strings.TrimSpace(value)))
}

func parsePaymentType(value string) enums.PaymentType {
	if paymentType, err := enums.ParsePaymentType(value); err == nil {
		return paymentType
	}
	return enums.PaymentType(strings.ToUpper(strings.TrimSpace(value)))
}
