package middleware

import (
	"strconv"
	"time"

	"thokmarket/internal/observability"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestLogger はリクエスト完了時にzapで1行出し、メトリクスも記録する
func RequestLogger(logger *zap.Logger, metrics *observability.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// ステータスを確定させる
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			latency := time.Since(start)

			if metrics != nil {
				metrics.Requests.WithLabelValues(route, req.Method, strconv.Itoa(res.Status)).Inc()
				metrics.LatencyMS.WithLabelValues(route).Observe(float64(latency.Milliseconds()))
			}

			fields := []zap.Field{
				zap.String("request_id", res.Header().Get(echo.HeaderXRequestID)),
				zap.String("method", req.Method),
				zap.String("route", route),
				zap.Int("status", res.Status),
				zap.Duration("latency", latency),
			}
			if userID, ok := c.Get(CtxUserIDKey).(string); ok {
				fields = append(fields, zap.String("user_id", userID))
			}

			level := zapcore.InfoLevel
			switch {
			case res.Status >= 500:
				level = zapcore.ErrorLevel
			case res.Status >= 400:
				level = zapcore.WarnLevel
			}
			if ce := logger.Check(level, "request"); ce != nil {
				ce.Write(fields...)
			}
			return nil
		}
	}
}
