package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/localaudit/localaudit/internal/cache"
	"github.com/localaudit/localaudit/internal/model"
)

func TestTransportCachesResponses(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	transport := NewTransport(model.HTTPConfig{
		Timeout:      5 * time.Second,
		MaxBodyBytes: 1 << 20,
	}, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute, nil, nil)

	req := request{method: "GET", url: server.URL + "/data", cacheable: true}
	for i := 0; i < 3; i++ {
		if _, err := transport.do(context.Background(), req); err != nil {
			t.Fatalf("do: %v", err)
		}
	}
	if hits != 1 {
		t.Errorf("server hit %d times, want 1 with caching", hits)
	}

	transport.forget(req)
	if _, err := transport.do(context.Background(), req); err != nil {
		t.Fatalf("do after forget: %v", err)
	}
	if hits != 2 {
		t.Errorf("server hit %d times after forget, want 2", hits)
	}
}

func TestTransportSkipsCacheWhenNotCacheable(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`ok`))
	}))
	defer server.Close()

	transport := NewTransport(model.HTTPConfig{
		Timeout:      5 * time.Second,
		MaxBodyBytes: 1 << 20,
	}, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute, nil, nil)

	req := request{method: "GET", url: server.URL + "/poll"}
	for i := 0; i < 2; i++ {
		if _, err := transport.do(context.Background(), req); err != nil {
			t.Fatalf("do: %v", err)
		}
	}
	if hits != 2 {
		t.Errorf("server hit %d times, want 2 without caching", hits)
	}
}

func TestTransportErrorCarriesSnippet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid api key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	transport := newTestTransport()
	_, err := transport.do(context.Background(), request{method: "GET", url: server.URL})
	if err == nil {
		t.Fatal("expected an error for a 401 response")
	}
	if !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "invalid api key") {
		t.Errorf("err = %v, want the status and a payload snippet", err)
	}
}

func TestTransportLimitsBodySize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 4096))
	}))
	defer server.Close()

	transport := NewTransport(model.HTTPConfig{
		Timeout:      5 * time.Second,
		MaxBodyBytes: 1024,
	}, nil, 0, nil, nil)

	body, err := transport.do(context.Background(), request{method: "GET", url: server.URL})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if len(body) != 1024 {
		t.Errorf("body = %d bytes, want the 1024 cap", len(body))
	}
}

func TestTransportSendsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "localaudit-test" {
			t.Errorf("User-Agent = %q", ua)
		}
		if key := r.Header.Get("X-API-KEY"); key != "secret" {
			t.Errorf("X-API-KEY = %q", key)
		}
		_, _ = w.Write([]byte(`ok`))
	}))
	defer server.Close()

	transport := newTestTransport()
	_, err := transport.do(context.Background(), request{
		method:  "GET",
		url:     server.URL,
		headers: map[string]string{"X-API-KEY": "secret"},
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
}
