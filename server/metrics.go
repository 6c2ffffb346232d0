package server

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("arrow/server")

func (s *Server) initMeter() error {
	_, err := meter.Int64ObservableGauge(
		"arrow.player_count",
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			o.Observe(int64(s.players.Len()))
			return nil
		}),
		metric.WithDescription("The current number of players in Play"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}
	_, err = meter.Int64ObservableGauge(
		"arrow.open_connections",
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			o.Observe(s.openConns.Load())
			return nil
		}),
		metric.WithDescription("The current number of open client connections"),
		metric.WithUnit("1"),
	)
	return err
}
