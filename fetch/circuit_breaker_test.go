package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCircuitBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := NewFetcher(
		WithHTTPClient(server.Client()),
		WithMaxRetries(0),
		WithBaseDelay(time.Millisecond),
	)
	cbf := NewCircuitBreakerFetcher(fetcher)

	// Trips after 5 consecutive failures.
	for i := 0; i < 5; i++ {
		if _, err := cbf.Fetch(context.Background(), server.URL); err == nil {
			t.Fatalf("call %d: expected an error", i)
		}
	}

	_, err := cbf.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected the open breaker to reject the call")
	}
	if !strings.Contains(err.Error(), "circuit breaker open") {
		t.Errorf("unexpected error: %v", err)
	}

	states := cbf.BreakerStates()
	host := extractHost(server.URL)
	if states[host] != "open" {
		t.Errorf("breaker state for %s = %q, want open", host, states[host])
	}
}

func TestCircuitBreakerPassesThroughSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	cbf := NewCircuitBreakerFetcher(NewFetcher(WithHTTPClient(server.Client())))

	archive, err := cbf.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	archive.Body.Close()

	states := cbf.BreakerStates()
	if got := states[extractHost(server.URL)]; got != "closed" {
		t.Errorf("breaker state = %q, want closed", got)
	}
}

func TestExtractHost(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://example.com/foo.tbz", "example.com"},
		{"https://example.com:8443/foo.tbz", "example.com:8443"},
		{"not a url", "not a url"},
	}

	for _, tt := range tests {
		if got := extractHost(tt.input); got != tt.want {
			t.Errorf("extractHost(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
