package server

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/folio/generator"
	"github.com/ByLCY/folio/latex"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/resume"
)

// Handler 实现各个 HTTP 接口。
type Handler struct {
	opts Options
	log  *slog.Logger
}

type fixResponse struct {
	LaTeX      string           `json:"latex"`
	PDFContent *resume.Document `json:"pdfContent"`
	Pages      int              `json:"pages"`
}

// Health 报告服务状态以及是否配置了内容生成器。
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "generator": h.opts.Generator != nil})
}

// Layout 接收文档模型 JSON，返回分页布局结果。
func (h *Handler) Layout(c *fiber.Ctx) error {
	doc, err := decodeBody(c)
	if err != nil {
		return err
	}
	res, err := h.build(doc)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := layout.EncodeJSON(&buf, res); err != nil {
		return fmt.Errorf("编码布局结果失败: %w", err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(buf.Bytes())
}

// PDF 接收文档模型 JSON，返回渲染好的 PDF。
func (h *Handler) PDF(c *fiber.Ctx) error {
	doc, err := decodeBody(c)
	if err != nil {
		return err
	}
	data, err := h.renderPDF(doc)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="resume.pdf"`)
	return c.Send(data)
}

// LaTeX 接收文档模型 JSON，返回 LaTeX 源文件。
func (h *Handler) LaTeX(c *fiber.Ctx) error {
	doc, err := decodeBody(c)
	if err != nil {
		return err
	}
	src, err := latex.Emit(doc, latex.Options{Profile: h.opts.Profile})
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/x-tex; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="resume.tex"`)
	return c.SendString(src)
}

// Fix 接收原始简历（multipart 的 file 字段，或直接作为请求体），
// 交给内容生成器整理后并发运行两个输出端。
func (h *Handler) Fix(c *fiber.Ctx) error {
	if h.opts.Generator == nil {
		return generator.ErrNoGenerator
	}
	content, mimeType, err := readUpload(c)
	if err != nil {
		return err
	}

	doc, err := h.opts.Generator.FixResume(c.UserContext(), content, mimeType)
	if err != nil {
		return err
	}

	var (
		out fixResponse
		g   errgroup.Group
	)
	out.PDFContent = doc
	g.Go(func() error {
		res, err := h.build(doc)
		if err != nil {
			return err
		}
		out.Pages = len(res.Pages)
		return nil
	})
	g.Go(func() error {
		src, err := latex.Emit(doc, latex.Options{Profile: h.opts.Profile})
		if err != nil {
			return err
		}
		out.LaTeX = src
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return c.JSON(out)
}

func (h *Handler) build(doc *resume.Document) (*layout.Result, error) {
	if h.opts.Typesetter == nil {
		return nil, fiber.NewError(fiber.StatusServiceUnavailable, "未配置排版后端")
	}
	res, err := layout.Build(doc, layout.BuildOptions{Typesetter: h.opts.Typesetter, Profile: h.opts.Profile})
	if err != nil {
		return nil, fmt.Errorf("排版失败: %w", err)
	}
	return res, nil
}

func (h *Handler) renderPDF(doc *resume.Document) ([]byte, error) {
	if h.opts.Renderer == nil {
		return nil, fiber.NewError(fiber.StatusServiceUnavailable, "未配置 PDF 渲染器")
	}
	res, err := h.build(doc)
	if err != nil {
		return nil, err
	}
	data, err := h.opts.Renderer.Render(res)
	if err != nil {
		return nil, fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	return data, nil
}

func decodeBody(c *fiber.Ctx) (*resume.Document, error) {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "请求体为空")
	}
	return resume.DecodeBytes(body)
}

// readUpload 优先读取 multipart 的 file 字段，否则使用原始请求体与其 Content-Type。
func readUpload(c *fiber.Ctx) ([]byte, string, error) {
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return nil, "", fiber.NewError(fiber.StatusBadRequest, "无法读取上传文件")
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, "", fiber.NewError(fiber.StatusBadRequest, "无法读取上传文件")
		}
		if len(data) == 0 {
			return nil, "", fiber.NewError(fiber.StatusBadRequest, "上传文件为空")
		}
		mt := fh.Header.Get(fiber.HeaderContentType)
		if mt == "" || mt == fiber.MIMEOctetStream {
			if byExt := mime.TypeByExtension(filepath.Ext(fh.Filename)); byExt != "" {
				mt = byExt
			}
		}
		return data, mt, nil
	}

	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, "", fiber.NewError(fiber.StatusBadRequest, "请求体为空")
	}
	mt := c.Get(fiber.HeaderContentType)
	if mt == "" {
		mt = fiber.MIMETextPlainCharsetUTF8
	}
	return append([]byte(nil), body...), mt, nil
}
