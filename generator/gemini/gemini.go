// Package gemini 使用 Google Gemini 实现 generator.ContentGenerator。
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/ByLCY/folio/generator"
	"github.com/ByLCY/folio/resume"
)

// DefaultModel 为未指定模型时使用的 Gemini 模型。
const DefaultModel = "gemini-2.5-flash"

// modelClient 是 genai.Models 中用到的部分，测试可替换。
type modelClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config 配置 Gemini 生成器。
type Config struct {
	APIKey   string
	Model    string
	Attempts int           // 含首次调用，默认 3
	Backoff  time.Duration // 首次重试前的等待，之后每次翻倍，默认 1s
	Logger   *slog.Logger
}

// Generator 调用 Gemini 把原始简历整理为文档模型。
type Generator struct {
	models   modelClient
	model    string
	attempts int
	backoff  time.Duration
	logger   *slog.Logger
}

var _ generator.ContentGenerator = (*Generator)(nil)

// New 创建 Gemini 客户端。APIKey 为空时返回 generator.ErrNoGenerator。
func New(ctx context.Context, cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, generator.ErrNoGenerator
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 Gemini 客户端失败: %w", err)
	}
	return newGenerator(client.Models, cfg), nil
}

func newGenerator(models modelClient, cfg Config) *Generator {
	g := &Generator{
		models:   models,
		model:    cfg.Model,
		attempts: cfg.Attempts,
		backoff:  cfg.Backoff,
		logger:   cfg.Logger,
	}
	if g.model == "" {
		g.model = DefaultModel
	}
	if g.attempts <= 0 {
		g.attempts = 3
	}
	if g.backoff <= 0 {
		g.backoff = time.Second
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// FixResume 发送原始内容并把模型返回的 JSON 解码为文档。可重试的错误按指数退避重试。
func (g *Generator) FixResume(ctx context.Context, content []byte, mimeType string) (*resume.Document, error) {
	contents := buildContents(content, mimeType)
	config := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}

	var lastErr error
	wait := g.backoff
	for attempt := 1; attempt <= g.attempts; attempt++ {
		doc, err := g.generate(ctx, contents, config)
		if err == nil {
			return doc, nil
		}
		lastErr = err
		if !retryable(err) || attempt == g.attempts {
			break
		}
		g.logger.WarnContext(ctx, "gemini request failed, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("backoff", wait),
			slog.String("error", err.Error()),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return nil, fmt.Errorf("gemini: 生成简历失败: %w", lastErr)
}

func (g *Generator) generate(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*resume.Document, error) {
	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return nil, err
	}
	text := resp.Text()
	g.logger.DebugContext(ctx, "gemini response",
		slog.String("model", g.model),
		slog.Int("chars", len(text)),
		slog.Duration("elapsed", time.Since(start)),
	)
	if text == "" {
		return nil, errEmptyResponse
	}
	return resume.DecodeBytes([]byte(text))
}

var errEmptyResponse = errors.New("gemini: 模型没有返回内容")

// retryable 判断错误是否值得重试：限流、服务端错误、空响应与格式错误的 JSON。
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	return true
}
