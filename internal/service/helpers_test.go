package service

import (
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aelshahawy/dokan/internal/telemetry"
)

func testMetrics() *telemetry.Metrics {
	return telemetry.NewMetricsWith(prometheus.NewRegistry(), "test")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
