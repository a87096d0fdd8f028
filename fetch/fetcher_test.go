package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testFetcher(opts ...Option) *Fetcher {
	base := []Option{WithMaxRetries(2), WithBaseDelay(time.Millisecond)}
	return NewFetcher(append(base, opts...)...)
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a User-Agent header")
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("ETag", `"abc123"`)
		_, _ = w.Write([]byte("archive-bytes"))
	}))
	defer server.Close()

	archive, err := testFetcher(WithHTTPClient(server.Client())).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	defer archive.Body.Close()

	body, err := io.ReadAll(archive.Body)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "archive-bytes" {
		t.Errorf("body = %q", body)
	}
	if archive.ContentType != "application/octet-stream" {
		t.Errorf("content type = %q", archive.ContentType)
	}
	if archive.Size != int64(len("archive-bytes")) {
		t.Errorf("size = %d", archive.Size)
	}
	if archive.ETag != `"abc123"` {
		t.Errorf("etag = %q", archive.ETag)
	}
}

func TestFetchNotFoundDoesNotRetry(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := testFetcher(WithHTTPClient(server.Client())).Fetch(context.Background(), server.URL)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected 1 request, got %d", got)
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	archive, err := testFetcher(WithHTTPClient(server.Client())).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	defer archive.Body.Close()

	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected 3 requests, got %d", got)
	}
}

func TestFetchRateLimitExhaustsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := testFetcher(WithHTTPClient(server.Client())).Fetch(context.Background(), server.URL)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestFetchCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testFetcher(WithHTTPClient(server.Client())).Fetch(ctx, server.URL)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestHead(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/x-tar")
		w.Header().Set("Content-Length", "42")
	}))
	defer server.Close()

	size, contentType, err := testFetcher(WithHTTPClient(server.Client())).Head(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Head failed: %v", err)
	}
	if size != 42 {
		t.Errorf("size = %d, want 42", size)
	}
	if contentType != "application/x-tar" {
		t.Errorf("content type = %q", contentType)
	}
}

func TestHeadNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, _, err := testFetcher(WithHTTPClient(server.Client())).Head(context.Background(), server.URL)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
