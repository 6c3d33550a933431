package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/leonmuri/Progol-aleatorio2/internal/logger"
)

const (
	ProgolURL = "https://www.lotenal.gob.mx/ESM/progol.html"
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	Timeout   = 10 * time.Second

	// MaxRetries bounds the immediate retries after a transient failure.
	MaxRetries = 1

	maxBodyBytes = 5 << 20
)

// FetchError describes why the page could not be retrieved.
type FetchError struct {
	Reason     string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	msg := e.Reason
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher retrieves the raw Progol page.
type Fetcher struct {
	client  *http.Client
	url     string
	retries uint64
}

// Option customises a Fetcher.
type Option func(*Fetcher)

// WithURL points the fetcher at a different page, e.g. a test server.
func WithURL(url string) Option {
	return func(f *Fetcher) {
		f.url = url
	}
}

// WithTimeout overrides the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.client.Timeout = d
	}
}

// NewFetcher creates a Fetcher for ProgolURL.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Timeout: Timeout,
		},
		url:     ProgolURL,
		retries: MaxRetries,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// URL returns the page the fetcher reads.
func (f *Fetcher) URL() string {
	return f.url
}

// Fetch returns the page body. Any failure is reported as a *FetchError.
// Transient failures (timeouts, resets, 5xx) are retried once immediately;
// 4xx responses are not retried.
func (f *Fetcher) Fetch(ctx context.Context) (string, error) {
	var body string
	attempt := 0

	operation := func() error {
		attempt++
		logger.IncrCounter("fetch.attempts")

		b, err := f.fetchOnce(ctx)
		if err != nil {
			logger.Debug("fetch attempt failed", logger.Fields{
				"url":     f.url,
				"attempt": attempt,
				"error":   err.Error(),
			})
			return err
		}
		body = b
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(&backoff.ZeroBackOff{}, f.retries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		logger.IncrCounter("fetch.failures")

		var fetchErr *FetchError
		if errors.As(err, &fetchErr) {
			return "", fetchErr
		}
		return "", &FetchError{Reason: "fetching page", Err: err}
	}

	return body, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return "", backoff.Permanent(&FetchError{Reason: "creating request", Err: err})
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "es-MX,es;q=0.9,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		fetchErr := &FetchError{Reason: "fetching page", Err: err}
		if isTransient(err) {
			return "", fetchErr
		}
		return "", backoff.Permanent(fetchErr)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return "", &FetchError{Reason: "server error", StatusCode: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", backoff.Permanent(&FetchError{Reason: "unexpected status code", StatusCode: resp.StatusCode})
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", &FetchError{Reason: "reading body", Err: err}
	}

	return string(data), nil
}

// isTransient reports whether a transport error is worth one more try.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
