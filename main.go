package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ByLCY/folio/generator"
	"github.com/ByLCY/folio/generator/gemini"
	"github.com/ByLCY/folio/latex"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/profile"
	canvasrenderer "github.com/ByLCY/folio/renderer/canvas"
	"github.com/ByLCY/folio/resume"
	"github.com/ByLCY/folio/server"
)

// config 汇总命令行参数。
type config struct {
	input       string
	source      string
	profilePath string
	output      string
	tex         string
	debug       string
	serve       bool
	addr        string
}

func main() {
	var cfg config
	flag.StringVar(&cfg.input, "in", "", "简历 JSON 文件路径（- 表示标准输入）")
	flag.StringVar(&cfg.source, "source", "", "待整理的原始简历（PDF 或文本），需要 GEMINI_API_KEY")
	flag.StringVar(&cfg.profilePath, "profile", "", "版式文件路径，缺省使用内置经典版式")
	flag.StringVar(&cfg.output, "out", "output/resume.pdf", "PDF 输出路径，留空则不生成")
	flag.StringVar(&cfg.tex, "tex", "", "LaTeX 输出路径")
	flag.StringVar(&cfg.debug, "debug", "", "布局调试 JSON 输出路径")
	flag.BoolVar(&cfg.serve, "serve", false, "以 HTTP 服务方式运行")
	flag.StringVar(&cfg.addr, "addr", ":"+envOr("PORT", "8080"), "HTTP 监听地址")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	if cfg.serve {
		err = serve(ctx, cfg, logger)
	} else {
		err = run(ctx, cfg, logger)
	}
	if err != nil {
		logger.Error("运行失败", "err", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func loadProfile(path string) (*layout.Profile, error) {
	if path == "" {
		return profile.Default()
	}
	return profile.LoadFile(path)
}

// newGenerator 按环境变量创建 Gemini 客户端；未配置密钥时返回 generator.ErrNoGenerator。
func newGenerator(ctx context.Context, logger *slog.Logger) (generator.ContentGenerator, error) {
	g, err := gemini.New(ctx, gemini.Config{
		APIKey: os.Getenv("GEMINI_API_KEY"),
		Model:  os.Getenv("GEMINI_MODEL"),
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func serve(ctx context.Context, cfg config, logger *slog.Logger) error {
	prof, err := loadProfile(cfg.profilePath)
	if err != nil {
		return fmt.Errorf("加载版式失败: %w", err)
	}
	gen, err := newGenerator(ctx, logger)
	switch {
	case errors.Is(err, generator.ErrNoGenerator):
		logger.Warn("未配置 GEMINI_API_KEY，/v1/fix 不可用")
		gen = nil
	case err != nil:
		return err
	}

	r := canvasrenderer.NewRenderer(filepath.Dir(cfg.profilePath))
	srv := server.New(server.Options{
		Typesetter: r,
		Renderer:   r,
		Profile:    prof,
		Generator:  gen,
		Logger:     logger,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("服务已启动", "addr", cfg.addr)
		errCh <- srv.Listen(cfg.addr)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("正在关闭服务")
		return srv.Shutdown(10 * time.Second)
	}
}

// run 串联取得文档、排版、渲染与 LaTeX 输出。
func run(ctx context.Context, cfg config, logger *slog.Logger) error {
	if (cfg.input == "") == (cfg.source == "") {
		return fmt.Errorf("-in 与 -source 必须且只能指定一个")
	}
	prof, err := loadProfile(cfg.profilePath)
	if err != nil {
		return fmt.Errorf("加载版式失败: %w", err)
	}

	var doc *resume.Document
	if cfg.input != "" {
		doc, err = readDocument(cfg.input)
	} else {
		doc, err = fixSource(ctx, cfg.source, logger)
	}
	if err != nil {
		return err
	}

	r := canvasrenderer.NewRenderer(filepath.Dir(cfg.profilePath))
	result, err := layout.Build(doc, layout.BuildOptions{Typesetter: r, Profile: prof})
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}
	logger.Info("排版完成", "pages", len(result.Pages))

	if cfg.debug != "" {
		if err := writeDebug(result, cfg.debug); err != nil {
			return err
		}
	}
	if cfg.output != "" {
		pdfBytes, err := r.Render(result)
		if err != nil {
			return fmt.Errorf("渲染 PDF 失败: %w", err)
		}
		if err := writeFile(cfg.output, pdfBytes); err != nil {
			return err
		}
		logger.Info("已生成 PDF", "path", cfg.output)
	}
	if cfg.tex != "" {
		src, err := latex.Emit(doc, latex.Options{Profile: prof})
		if err != nil {
			return fmt.Errorf("生成 LaTeX 失败: %w", err)
		}
		if err := writeFile(cfg.tex, []byte(src)); err != nil {
			return err
		}
		logger.Info("已生成 LaTeX", "path", cfg.tex)
	}
	return nil
}

func readDocument(path string) (*resume.Document, error) {
	if path == "-" {
		doc, err := resume.Decode(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("解析标准输入失败: %w", err)
		}
		return doc, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开简历文件 %s: %w", path, err)
	}
	doc, err := resume.DecodeBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("解析简历文件 %s 失败: %w", path, err)
	}
	return doc, nil
}

func fixSource(ctx context.Context, path string, logger *slog.Logger) (*resume.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开原始简历 %s: %w", path, err)
	}
	gen, err := newGenerator(ctx, logger)
	if err != nil {
		return nil, err
	}
	return gen.FixResume(ctx, raw, sourceMIME(path))
}

func sourceMIME(path string) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); t != "" {
		return t
	}
	return "text/plain"
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", path, err)
	}
	return nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
