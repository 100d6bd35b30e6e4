package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/folio/generator"
	"github.com/ByLCY/folio/layout"
)

const sampleResume = `{
  "header": {"name": "Jane Doe", "contact": "jane@example.com"},
  "skills": "Go, SQL",
  "experience": [{"company": "Acme", "role": "Engineer", "date": "2020 - 2024", "bullets": ["Did 100% of the work"]}]
}`

func TestRunWritesAllOutputs(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "cv.json")
	require.NoError(t, os.WriteFile(in, []byte(sampleResume), 0o644))

	cfg := config{
		input:  in,
		output: filepath.Join(dir, "out", "cv.pdf"),
		tex:    filepath.Join(dir, "out", "cv.tex"),
		debug:  filepath.Join(dir, "debug", "layout.json"),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, run(context.Background(), cfg, logger))

	pdf, err := os.ReadFile(cfg.output)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	tex, err := os.ReadFile(cfg.tex)
	require.NoError(t, err)
	assert.Contains(t, string(tex), `100\% of the work`)

	raw, err := os.ReadFile(cfg.debug)
	require.NoError(t, err)
	var res layout.Result
	require.NoError(t, json.Unmarshal(raw, &res))
	assert.Len(t, res.Pages, 1)
}

func TestRunRequiresOneInput(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.Error(t, run(context.Background(), config{}, logger))
	assert.Error(t, run(context.Background(), config{input: "a", source: "b"}, logger))
}

func TestRunSourceWithoutKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	dir := t.TempDir()
	src := filepath.Join(dir, "cv.txt")
	require.NoError(t, os.WriteFile(src, []byte("Jane Doe"), 0o644))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	err := run(context.Background(), config{source: src}, logger)
	assert.ErrorIs(t, err, generator.ErrNoGenerator)
}

func TestSourceMIME(t *testing.T) {
	assert.Equal(t, "application/pdf", sourceMIME("cv.PDF"))
	assert.Equal(t, "text/plain", sourceMIME("cv"))
}
