package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
)

// RequestMetrics lo que el middleware de observación reporta por petición. Lo implementa *metrics.Metrics.
type RequestMetrics interface {
	RequestStarted()
	RequestFinished(method, path string, status int, elapsed time.Duration)
}

// AppOptions opciones del servidor Fiber.
type AppOptions struct {
	Name    string
	Log     zerolog.Logger
	Metrics RequestMetrics // nil = sin métricas HTTP
}

// NewApp crea la app Fiber con request id, access log + métricas, recover y ErrorHandler propio.
func NewApp(opts AppOptions) *fiber.App {
	errHandler := ErrorHandler(opts.Log)
	app := fiber.New(fiber.Config{
		AppName:               opts.Name,
		ErrorHandler:          errHandler,
		DisableStartupMessage: true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
		IdleTimeout:           60 * time.Second,
	})
	app.Use(requestid.New())
	app.Use(observe(opts.Log, opts.Metrics, errHandler))
	app.Use(recover.New())
	return app
}

// observe resuelve el error de la cadena aquí mismo para conocer el status final,
// y deja una línea de access log y las métricas de la petición.
func observe(log zerolog.Logger, m RequestMetrics, errHandler fiber.ErrorHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if m != nil {
			m.RequestStarted()
		}

		if chainErr := c.Next(); chainErr != nil {
			if err := errHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		elapsed := time.Since(start)
		status := c.Response().StatusCode()
		if m != nil {
			m.RequestFinished(c.Method(), c.Route().Path, status, elapsed)
		}

		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Warn()
		}
		if id := GetUserID(c); id != 0 {
			ev = ev.Int64("user_id", id)
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", elapsed).
			Str("ip", c.IP()).
			Str("request_id", requestID(c)).
			Msg("http")
		return nil
	}
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
