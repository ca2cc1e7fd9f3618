package utils

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// LoggingTransport implements http.RoundTripper and logs upstream calls.
type LoggingTransport struct {
	Transport http.RoundTripper
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	transport := t.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	start := time.Now()
	resp, err := transport.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		zap.L().Warn("upstream request failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Duration("duration", duration),
			zap.Error(err))
		return nil, err
	}

	zap.L().Debug("upstream request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration))

	return resp, nil
}

// ReadAndRestoreBody drains a request/response body and puts an identical
// reader back, so callers can log and still consume it.
func ReadAndRestoreBody(body io.ReadCloser) ([]byte, io.ReadCloser) {
	if body == nil {
		return nil, body
	}
	bodyBytes, _ := io.ReadAll(body)
	return bodyBytes, io.NopCloser(bytes.NewReader(bodyBytes))
}

// NewHTTPClient returns an http.Client with the given timeout and upstream
// call logging.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &LoggingTransport{Transport: http.DefaultTransport},
	}
}
