// Package server 以 HTTP 接口提供排版、PDF、LaTeX 与简历整理服务。
package server

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/ByLCY/folio/generator"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/renderer"
	"github.com/ByLCY/folio/resume"
)

// Options 注入服务依赖。Generator 为空时 /v1/fix 返回 503。
type Options struct {
	Typesetter layout.Typesetter
	Renderer   renderer.Renderer
	Profile    *layout.Profile
	Generator  generator.ContentGenerator
	Logger     *slog.Logger
	BodyLimit  int
}

// Server 包装 fiber.App。
type Server struct {
	app *fiber.App
	h   *Handler
}

// New 创建服务并注册路由。
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = 20 << 20
	}
	h := &Handler{opts: opts, log: opts.Logger}

	app := fiber.New(fiber.Config{
		AppName:               "folio",
		BodyLimit:             opts.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          h.handleError,
	})
	app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	}))
	app.Use(h.logRequests)

	app.Get("/healthz", h.Health)
	v1 := app.Group("/v1")
	v1.Post("/layout", h.Layout)
	v1.Post("/pdf", h.PDF)
	v1.Post("/latex", h.LaTeX)
	v1.Post("/fix", h.Fix)

	return &Server{app: app, h: h}
}

// App 返回底层 fiber.App，测试中配合 app.Test 使用。
func (s *Server) App() *fiber.App { return s.app }

// Listen 在 addr 上提供服务，直到 Shutdown 被调用。
func (s *Server) Listen(addr string) error { return s.app.Listen(addr) }

// Shutdown 停止接受新请求并等待进行中的请求结束。
func (s *Server) Shutdown(timeout time.Duration) error {
	return s.app.ShutdownWithTimeout(timeout)
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}

func (h *Handler) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	status := c.Response().StatusCode()
	if err != nil {
		status = statusOf(err)
	}
	h.log.InfoContext(c.UserContext(), "request",
		slog.String("request_id", requestID(c)),
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.Int("status", status),
		slog.Duration("elapsed", time.Since(start)),
	)
	return err
}

// statusOf 把错误映射为 HTTP 状态码。
func statusOf(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, resume.ErrMalformed):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, generator.ErrNoGenerator):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *Handler) handleError(c *fiber.Ctx, err error) error {
	status := statusOf(err)
	if status >= fiber.StatusInternalServerError {
		h.log.ErrorContext(c.UserContext(), "request failed",
			slog.String("request_id", requestID(c)),
			slog.String("error", err.Error()),
		)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error(), "requestId": requestID(c)})
}
