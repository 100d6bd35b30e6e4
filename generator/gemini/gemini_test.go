package gemini

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/ByLCY/folio/generator"
	"github.com/ByLCY/folio/resume"
)

type reply struct {
	text string
	err  error
}

type fakeModels struct {
	replies []reply
	calls   int
	model   string
	config  *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, _ []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	r := f.replies[min(f.calls, len(f.replies)-1)]
	f.calls++
	f.model, f.config = model, config
	if r.err != nil {
		return nil, r.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(r.text, genai.RoleModel)}},
	}, nil
}

func testGenerator(models *fakeModels) *Generator {
	return newGenerator(models, Config{
		Backoff: time.Millisecond,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

const validReply = "```json\n" + `{"latex": "ignored", "pdfContent": {"header": {"name": "Jane Doe", "contact": "jane@x.com"}, "skills": "Go"}}` + "\n```"

func TestFixResumeDecodesEnvelope(t *testing.T) {
	models := &fakeModels{replies: []reply{{text: validReply}}}
	doc, err := testGenerator(models).FixResume(context.Background(), []byte("my cv"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", doc.Header.Name)
	assert.Equal(t, "Go", doc.Skills)
	assert.Equal(t, DefaultModel, models.model)
	assert.Equal(t, "application/json", models.config.ResponseMIMEType)
	assert.Equal(t, 1, models.calls)
}

func TestFixResumeRetriesServerErrors(t *testing.T) {
	models := &fakeModels{replies: []reply{
		{err: genai.APIError{Code: 503, Message: "overloaded"}},
		{err: genai.APIError{Code: 429, Message: "slow down"}},
		{text: validReply},
	}}
	doc, err := testGenerator(models).FixResume(context.Background(), []byte("cv"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", doc.Header.Name)
	assert.Equal(t, 3, models.calls)
}

func TestFixResumeDoesNotRetryClientErrors(t *testing.T) {
	models := &fakeModels{replies: []reply{{err: genai.APIError{Code: 400, Message: "bad request"}}}}
	_, err := testGenerator(models).FixResume(context.Background(), []byte("cv"), "text/plain")
	require.Error(t, err)
	assert.Equal(t, 1, models.calls)
}

func TestFixResumeGivesUpOnMalformedReplies(t *testing.T) {
	models := &fakeModels{replies: []reply{{text: `{"pdfContent": {"header": {"contact": "x"}}}`}}}
	_, err := testGenerator(models).FixResume(context.Background(), []byte("cv"), "text/plain")
	require.Error(t, err)
	assert.True(t, errors.Is(err, resume.ErrMalformed))
	assert.Equal(t, 3, models.calls)
}

func TestFixResumeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	models := &fakeModels{replies: []reply{{err: context.Canceled}}}
	_, err := testGenerator(models).FixResume(ctx, []byte("cv"), "text/plain")
	require.Error(t, err)
	assert.Equal(t, 1, models.calls)
}

func TestBuildContentsPDF(t *testing.T) {
	contents := buildContents([]byte("%PDF-1.7"), "application/pdf; charset=binary")
	require.Len(t, contents, 1)
	parts := contents[0].Parts
	require.Len(t, parts, 2)
	require.NotNil(t, parts[0].InlineData)
	assert.Equal(t, "application/pdf", parts[0].InlineData.MIMEType)
	assert.Equal(t, []byte("%PDF-1.7"), parts[0].InlineData.Data)
	assert.Equal(t, instructions, parts[1].Text)
}

func TestBuildContentsTruncatesText(t *testing.T) {
	source := strings.Repeat("ж", maxSourceRunes+5000)
	contents := buildContents([]byte(source), "text/plain")
	require.Len(t, contents, 1)
	text := contents[0].Parts[0].Text
	assert.True(t, strings.HasPrefix(text, instructions))
	assert.Equal(t, maxSourceRunes, strings.Count(text, "ж"))
}

func TestNewWithoutKey(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.ErrorIs(t, err, generator.ErrNoGenerator)
}
