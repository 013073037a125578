package handler

import (
	"context"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aelshahawy/dokan/internal/domain"
	"github.com/aelshahawy/dokan/internal/telemetry"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMetrics() *telemetry.Metrics {
	return telemetry.NewMetricsWith(prometheus.NewRegistry(), "test")
}

// stubOrderService lets handler tests observe state machine calls
// without a real store.
type stubOrderService struct {
	domain.OrderService

	handleProviderEvent func(ctx context.Context, kind domain.ProviderEventKind, orderID pgtype.UUID) error
	calls               []domain.ProviderEventKind
}

func (s *stubOrderService) HandleProviderEvent(ctx context.Context, kind domain.ProviderEventKind, orderID pgtype.UUID) error {
	s.calls = append(s.calls, kind)
	if s.handleProviderEvent != nil {
		return s.handleProviderEvent(ctx, kind, orderID)
	}
	return nil
}
