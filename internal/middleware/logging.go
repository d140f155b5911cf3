package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitclaim/internal/metrics"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC call
// and records it in m, which may be nil. Credentials are never logged.
func LoggingInterceptor(m *metrics.RPCMetrics) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure
			authenticated := GetPrivateID(ctx) != ""

			resp, err := next(ctx, req)

			elapsed := time.Since(start)
			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()

				var connectErr *connect.Error
				if errors.As(err, &connectErr) && connectErr.Code() != connect.CodeInternal && connectErr.Code() != connect.CodeUnknown {
					slog.Warn("RPC error",
						"procedure", procedure,
						"code", connectErr.Code(),
						"error", connectErr.Message(),
						"authenticated", authenticated,
						"duration_ms", elapsed.Milliseconds(),
					)
				} else {
					slog.Error("RPC error",
						"procedure", procedure,
						"error", err,
						"authenticated", authenticated,
						"duration_ms", elapsed.Milliseconds(),
					)
				}
			} else {
				slog.Info("RPC ok",
					"procedure", procedure,
					"authenticated", authenticated,
					"duration_ms", elapsed.Milliseconds(),
				)
			}
			m.Observe(procedure, code, elapsed)

			return resp, err
		}
	}
}
