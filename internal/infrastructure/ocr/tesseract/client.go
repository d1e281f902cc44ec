package tesseract

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/expenseops/expense-analyzer/internal/infrastructure/resilience"
)

// Client talks to a tesseract OCR sidecar over HTTP. The sidecar takes
// base64 image bytes and answers with the recognized plain text.
type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Options struct {
	Timeout            time.Duration
	ResilienceExecutor *resilience.Executor
}

func New(baseURL string) *Client {
	return NewWithOptions(baseURL, Options{})
}

func NewWithOptions(baseURL string, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		executor:   options.ResilienceExecutor,
	}
}

func (c *Client) RecognizeText(ctx context.Context, image []byte, mimeType string) (string, error) {
	request := map[string]any{
		"image":     base64.StdEncoding.EncodeToString(image),
		"mime_type": mimeType,
	}

	var response struct {
		Text string `json:"text"`
	}

	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/api/ocr", request, &response, "recognize")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "ocr.recognize", call, classifyOCRError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded("ocr recognize", err)
	}
	return strings.TrimSpace(response.Text), nil
}
