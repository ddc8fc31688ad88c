package shortener

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientShortenSuccess(t *testing.T) {
	t.Parallel()

	var gotBody shortenRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/v4/shorten" {
			t.Errorf("path = %s, want /v4/shorten", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("authorization = %q, want Bearer test-token", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"link": "https://sho.rt/abc"}`))
	}))
	defer server.Close()

	c, err := NewClient(server.URL, "test-token")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	short, err := c.Shorten(context.Background(), "https://example.com/very/long/url")
	if err != nil {
		t.Fatalf("Shorten() unexpected error: %v", err)
	}

	if short != "https://sho.rt/abc" {
		t.Fatalf("short url = %q, want https://sho.rt/abc", short)
	}
	if gotBody.LongURL != "https://example.com/very/long/url" {
		t.Fatalf("long_url = %q, want the original url", gotBody.LongURL)
	}
}

func TestClientShortenErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c, err := NewClient(server.URL, "test-token")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = c.Shorten(context.Background(), "https://example.com")
	if err == nil {
		t.Fatal("expected error for non-2xx status")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Fatalf("error = %v, want status 403 mentioned", err)
	}
}

func TestClientShortenEmptyLink(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c, err := NewClient(server.URL, "test-token")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if _, err := c.Shorten(context.Background(), "https://example.com"); err == nil {
		t.Fatal("expected error for empty link in response")
	}
}

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewClient("", "token"); err == nil {
		t.Fatal("expected error for missing base url")
	}
	if _, err := NewClient("https://api-ssl.bitly.com", ""); err == nil {
		t.Fatal("expected error for missing token")
	}
}
