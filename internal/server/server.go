package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"thokmarket/internal/middleware"
	"thokmarket/internal/observability"
	"thokmarket/internal/usecase"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Options struct {
	Addr            string
	FEURL           string // CORSで許可するオリジン
	StaticDir       string
	ShutdownTimeout time.Duration
}

// New はミドルウェアとルートを登録したEchoを返す
func New(opts Options, h Handlers, logger *zap.Logger, metrics *observability.Metrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger, metrics))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{opts.FEURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, "Idempotency-Key", "X-Admin-Key"},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	RegisterRoutes(e, h)

	// SPAのビルド成果物（未知のパスはindex.html）
	if opts.StaticDir != "" {
		e.Use(echomw.StaticWithConfig(echomw.StaticConfig{
			Root:    opts.StaticDir,
			HTML5:   true,
			Skipper: isAPIPath,
		}))
	}
	return e
}

// /api と /metrics はindex.htmlに落とさない（未知のAPIはJSONの404）
func isAPIPath(c echo.Context) bool {
	p := c.Request().URL.Path
	return p == APIPrefix || strings.HasPrefix(p, APIPrefix+"/") || p == "/metrics" || p == "/healthz"
}

// Run はSIGINT/SIGTERMまで待ってから graceful shutdown する
func Run(e *echo.Echo, opts Options, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", zap.String("addr", opts.Addr))
		if err := e.Start(opts.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", opts.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// echo内部のエラー（404ルート・405など）も { success, error, message } にそろえる
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		kind := usecase.KindInternal
		message := "internal error"

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			kind = usecase.KindForStatus(status)
			if m, ok := he.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(status)
			}
		} else if ue, ok := usecase.AsHTTPError(err); ok {
			status, kind, message = ue.Status, ue.Kind, ue.Message
		} else {
			logger.Error("unhandled error", zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, map[string]any{"success": false, "error": kind, "message": message})
	}
}
