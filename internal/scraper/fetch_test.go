package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetch(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []int // status per attempt; the last one repeats
		wantError bool
		wantCode  int
		wantHits  int32
	}{
		{
			name:     "successful fetch",
			statuses: []int{http.StatusOK},
			wantHits: 1,
		},
		{
			name:      "not found is not retried",
			statuses:  []int{http.StatusNotFound},
			wantError: true,
			wantCode:  http.StatusNotFound,
			wantHits:  1,
		},
		{
			name:      "forbidden is not retried",
			statuses:  []int{http.StatusForbidden},
			wantError: true,
			wantCode:  http.StatusForbidden,
			wantHits:  1,
		},
		{
			name:     "server error retried once then succeeds",
			statuses: []int{http.StatusServiceUnavailable, http.StatusOK},
			wantHits: 2,
		},
		{
			name:      "server error twice gives up after one retry",
			statuses:  []int{http.StatusBadGateway},
			wantError: true,
			wantCode:  http.StatusBadGateway,
			wantHits:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := int(hits.Add(1))

				// Verify browser-like identity
				if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "Mozilla") {
					t.Errorf("User-Agent = %q, should look like a browser", ua)
				}

				status := tt.statuses[min(n, len(tt.statuses))-1]
				w.WriteHeader(status)
				w.Write([]byte("<html><body>Progol</body></html>"))
			}))
			defer server.Close()

			f := NewFetcher(WithURL(server.URL))
			body, err := f.Fetch(context.Background())

			if got := hits.Load(); got != tt.wantHits {
				t.Errorf("server hits = %d, want %d", got, tt.wantHits)
			}

			if tt.wantError {
				var fetchErr *FetchError
				if !errors.As(err, &fetchErr) {
					t.Fatalf("Fetch() error = %v, want *FetchError", err)
				}
				if fetchErr.StatusCode != tt.wantCode {
					t.Errorf("FetchError.StatusCode = %d, want %d", fetchErr.StatusCode, tt.wantCode)
				}
				return
			}

			if err != nil {
				t.Fatalf("Fetch() unexpected error: %v", err)
			}
			if !strings.Contains(body, "Progol") {
				t.Errorf("Fetch() body = %q, want page content", body)
			}
		})
	}
}

func TestFetch_TimeoutRetriedOnce(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	f := NewFetcher(WithURL(server.URL), WithTimeout(50*time.Millisecond))
	_, err := f.Fetch(context.Background())

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Fetch() error = %v, want *FetchError", err)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("server hits = %d, want 2 (one retry)", got)
	}
}

func TestFetch_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	f := NewFetcher(WithURL(url), WithTimeout(time.Second))
	body, err := f.Fetch(context.Background())

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Fetch() error = %v, want *FetchError", err)
	}
	if body != "" {
		t.Errorf("Fetch() body = %q, want empty on failure", body)
	}
	if fetchErr.Error() == "" {
		t.Error("FetchError.Error() is empty")
	}
}

func TestNewFetcher(t *testing.T) {
	f := NewFetcher()

	if f.client == nil {
		t.Fatal("fetcher client is nil")
	}
	if f.URL() != ProgolURL {
		t.Errorf("fetcher url = %q, want %q", f.URL(), ProgolURL)
	}
	if f.client.Timeout != Timeout {
		t.Errorf("fetcher timeout = %v, want %v", f.client.Timeout, Timeout)
	}
	if f.retries != MaxRetries {
		t.Errorf("fetcher retries = %d, want %d", f.retries, MaxRetries)
	}
}

func TestFetchError_Unwrap(t *testing.T) {
	inner := errors.New("connection reset by peer")
	err := &FetchError{Reason: "fetching page", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("errors.Is(FetchError, inner) = false, want true")
	}
	if got := (&FetchError{Reason: "unexpected status code", StatusCode: 404}).Error(); got != "unexpected status code: status 404" {
		t.Errorf("Error() = %q", got)
	}
}
