// Package archive persists dashboard snapshots to BigQuery for historical
// trend analysis. Writes are best effort: the dashboard never blocks on them.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	cbigquery "cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sakanusa/gerai-analytics-backend/internal/aggregate"
	pkgbigquery "github.com/sakanusa/gerai-analytics-backend/pkg/bigquery"
)

const (
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 250 * time.Millisecond
	defaultMaximumBackoff = 2 * time.Second
)

// Config controls the snapshot writer behavior.
type Config struct {
	SnapshotsTable string
	RetryPolicy    RetryPolicy
}

// RetryPolicy controls how many times BigQuery inserts are retried.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaximumBackoff time.Duration
}

type tableInserter interface {
	InsertRows(ctx context.Context, table string, rows []any) error
}

// SnapshotRow is the BigQuery row shape for one archived snapshot.
type SnapshotRow struct {
	Variant        string    `bigquery:"variant"`
	ReferenceMonth string    `bigquery:"reference_month"`
	GeneratedAt    time.Time `bigquery:"generated_at"`
	OrderCount     int64     `bigquery:"order_count"`
	TotalInvoice   string    `bigquery:"total_invoice"`
	ActivationRate string    `bigquery:"activation_rate"`
	Payload        string    `bigquery:"payload"`
}

// Writer inserts snapshot rows into BigQuery with retries.
type Writer struct {
	client tableInserter
	table  string
	retry  RetryPolicy
}

// New creates a snapshot writer backed by a shared client.
func New(client *pkgbigquery.Client, cfg Config) (*Writer, error) {
	if client == nil {
		return nil, errors.New("bigquery client required")
	}
	table := strings.TrimSpace(cfg.SnapshotsTable)
	if table == "" {
		return nil, errors.New("snapshots table is required")
	}

	retry := cfg.RetryPolicy
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = defaultMaxAttempts
	}
	if retry.InitialBackoff <= 0 {
		retry.InitialBackoff = defaultInitialBackoff
	}
	if retry.MaximumBackoff <= 0 {
		retry.MaximumBackoff = defaultMaximumBackoff
	}

	return &Writer{client: client, table: table, retry: retry}, nil
}

// Archive serializes the snapshot and writes one row for the given variant.
func (w *Writer) Archive(ctx context.Context, variant string, snapshot *aggregate.Snapshot, generatedAt time.Time) error {
	if snapshot == nil {
		return errors.New("snapshot is required")
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	row := &SnapshotRow{
		Variant:        variant,
		ReferenceMonth: snapshot.ReferenceMonth,
		GeneratedAt:    generatedAt.UTC(),
		OrderCount:     int64(snapshot.Totals.OrderCount),
		TotalInvoice:   snapshot.Totals.TotalInvoice.String(),
		ActivationRate: snapshot.ThisMonth.ActivationRate.String(),
		Payload:        string(payload),
	}
	return w.insertWithRetry(ctx, []any{row})
}

func (w *Writer) insertWithRetry(ctx context.Context, rows []any) error {
	if len(rows) == 0 {
		return nil
	}

	attempts := 0
	backoff := w.retry.InitialBackoff

	for {
		if ctx != nil {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		err := w.client.InsertRows(ctx, w.table, rows)
		if err == nil {
			return nil
		}

		attempts++
		if attempts >= w.retry.MaxAttempts || !isRetryable(err) {
			return fmt.Errorf("insert %s rows: %w", w.table, err)
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		timer.Stop()

		backoff = minDuration(backoff*2, w.retry.MaximumBackoff)
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	var multi *cbigquery.MultiError
	if errors.As(err, &multi) {
		if multi == nil || len(*multi) == 0 {
			return false
		}
		for _, inner := range *multi {
			if !isRetryable(inner) {
				return false
			}
		}
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return isRetryableHTTPCode(apiErr.Code)
	}

	var statusErr interface{ GRPCStatus() *status.Status }
	if errors.As(err, &statusErr) {
		if st := statusErr.GRPCStatus(); st != nil {
			return isRetryableGRPCCode(st.Code())
		}
	}

	return false
}

func isRetryableHTTPCode(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusRequestTimeout,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func isRetryableGRPCCode(code codes.Code) bool {
	switch code {
	case codes.Aborted,
		codes.DeadlineExceeded,
		codes.Internal,
		codes.ResourceExhausted,
		codes.Unavailable:
		return true
	default:
		return false
	}
}
