package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/localaudit/localaudit/internal/model"
)

func pagespeedTestClient(serverURL string) *PageSpeedClient {
	return NewPageSpeedClient(model.SourcesConfig{
		PageSpeedAPIKey:  "test-key",
		PageSpeedBaseURL: serverURL,
	}, newTestTransport(), nil)
}

func TestCheckWebsiteBothStrategies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("url") != "https://example.com" {
			t.Errorf("url = %q", q.Get("url"))
		}
		if q.Get("key") != "test-key" {
			t.Errorf("key = %q", q.Get("key"))
		}
		switch q.Get("strategy") {
		case "mobile":
			_, _ = w.Write([]byte(`{
				"lighthouseResult": {
					"categories": {"performance": {"score": 0.72}},
					"audits": {"first-contentful-paint": {"numericValue": 1234.5}}
				}
			}`))
		case "desktop":
			_, _ = w.Write([]byte(`{
				"lighthouseResult": {"categories": {"performance": {"score": 0.91}}}
			}`))
		default:
			t.Errorf("unexpected strategy %q", q.Get("strategy"))
		}
	}))
	defer server.Close()

	check, err := pagespeedTestClient(server.URL).CheckWebsite(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("CheckWebsite: %v", err)
	}

	if !check.HTTPSValid || !check.Loads {
		t.Error("https URL should report HTTPSValid and Loads")
	}
	if check.MobileScore == nil || *check.MobileScore != 72 {
		t.Errorf("MobileScore = %v, want 72", check.MobileScore)
	}
	if check.DesktopScore == nil || *check.DesktopScore != 91 {
		t.Errorf("DesktopScore = %v, want 91", check.DesktopScore)
	}
	if check.LoadSpeedMS == nil || *check.LoadSpeedMS != 1235 {
		t.Errorf("LoadSpeedMS = %v, want 1235", check.LoadSpeedMS)
	}
	if !check.MobileResponsive || !check.MobileFriendly {
		t.Error("a 72 mobile score clears both mobile thresholds")
	}
}

func TestCheckWebsiteSlowMobileSite(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"lighthouseResult": {"categories": {"performance": {"score": 0.25}}}
		}`))
	}))
	defer server.Close()

	check, err := pagespeedTestClient(server.URL).CheckWebsite(context.Background(), "https://slow.example")
	if err != nil {
		t.Fatalf("CheckWebsite: %v", err)
	}
	if check.MobileResponsive {
		t.Error("a 25 mobile score must fail the responsive threshold")
	}
	if check.MobileFriendly {
		t.Error("a 25 mobile score must fail the friendly threshold")
	}
}

func TestCheckWebsiteOneStrategyFailing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("strategy") == "desktop" {
			http.Error(w, "quota", http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{
			"lighthouseResult": {"categories": {"performance": {"score": 0.6}}}
		}`))
	}))
	defer server.Close()

	check, err := pagespeedTestClient(server.URL).CheckWebsite(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("one failing strategy must not fail the check: %v", err)
	}
	if check.MobileScore == nil || *check.MobileScore != 60 {
		t.Errorf("MobileScore = %v, want 60", check.MobileScore)
	}
	if check.DesktopScore != nil {
		t.Errorf("DesktopScore = %v, want nil for the failed strategy", check.DesktopScore)
	}
}

func TestCheckWebsiteBothStrategiesFailing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	if _, err := pagespeedTestClient(server.URL).CheckWebsite(context.Background(), "https://dead.example"); err == nil {
		t.Error("expected an error when both strategies fail")
	}
}

func TestCheckWebsiteEmptyURL(t *testing.T) {
	check, err := pagespeedTestClient("http://unused").CheckWebsite(context.Background(), "")
	if err != nil {
		t.Fatalf("CheckWebsite(\"\"): %v", err)
	}
	if check.Loads || check.HTTPSValid {
		t.Error("empty URL must yield a zero-value check")
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.com", "https://example.com"},
		{"https://example.com", "https://example.com"},
		{"http://example.com", "http://example.com"},
	}
	for _, tt := range tests {
		if got := normalizeURL(tt.in); got != tt.want {
			t.Errorf("normalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
