package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sakanusa/gerai-analytics-backend/api/responses"
	"github.com/sakanusa/gerai-analytics-backend/api/validators"
	"github.com/sakanusa/gerai-analytics-backend/internal/ingest"
	"github.com/sakanusa/gerai-analytics-backend/pkg/logger"
)

type ingestOrderRequest struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId" validate:"required"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data" validate:"required"`
}

// IngestOrder accepts an order event over HTTP, for backfills and sources
// without a Pub/Sub publisher. Replayed event IDs are dropped silently.
func IngestOrder(service *ingest.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req ingestOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		envelope := &ingest.Envelope{
			Version:    req.Version,
			EventID:    req.EventID,
			OccurredAt: req.OccurredAt,
			Data:       req.Data,
		}

		if err := service.Process(ctx, envelope); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"event_id": req.EventID})
	}
}
