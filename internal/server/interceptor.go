package server

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/at-ishikawa/neuronest/internal/metrics"
)

// NewMetricsInterceptor records the latency of every unary call and logs failed ones.
func NewMetricsInterceptor(m metrics.Provider) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			res, err := next(ctx, req)
			procedure := req.Spec().Procedure
			m.ObserveRequestDuration(procedure, time.Since(start))
			if err != nil {
				slog.Default().Debug("rpc failed", "procedure", procedure, "code", connect.CodeOf(err).String(), "error", err)
			}
			return res, err
		}
	}
}
