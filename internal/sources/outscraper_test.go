package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/localaudit/localaudit/internal/model"
)

func outscraperTestClient(serverURL string) *OutscraperClient {
	client := NewOutscraperClient(model.SourcesConfig{
		OutscraperAPIKey:  "test-key",
		OutscraperBaseURL: serverURL,
	}, newTestTransport(), nil)
	client.sleep = func(time.Duration) {}
	return client
}

func TestOutscraperFullBusinessData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if key := r.Header.Get("X-API-KEY"); key != "test-key" {
			t.Errorf("X-API-KEY = %q", key)
		}
		q := r.URL.Query()
		if q.Get("query") != "Austin Premier Plumbing, Austin" {
			t.Errorf("query = %q", q.Get("query"))
		}
		if q.Get("limit") != "1" || q.Get("async") != "false" {
			t.Errorf("limit = %q async = %q", q.Get("limit"), q.Get("async"))
		}

		_, _ = w.Write([]byte(`{
			"status": "Success",
			"data": [[{
				"name": "Austin Premier Plumbing",
				"full_address": "4521 Congress Ave, Austin, TX 78745",
				"place_id": "ChIJtest",
				"category": "Plumber",
				"subtypes": "Plumber, Water heater installer, Drainage service",
				"description": "Family owned plumbing company.",
				"phone": "(512) 555-0198",
				"site": "https://austinpremierplumbing.com",
				"working_hours": {"Monday": "7AM-6PM", "Saturday": "8AM-2PM"},
				"services": ["Drain Cleaning", {"name": "Pipe Repair", "description": "Burst pipes"}],
				"about": {"summary": "ignored here", "Wheelchair accessible": true, "Online estimates": true},
				"photos_count": 34,
				"owner_photos_count": 12,
				"logo": "https://lh3.example/logo.png",
				"reviews": 87,
				"rating": 4.6,
				"last_review_date": "2026-03-01",
				"reviews_with_response": 39,
				"last_post_date": "2026-02-13T00:00:00Z",
				"posts_count": 6
			}]]
		}`))
	}))
	defer server.Close()

	facts, err := outscraperTestClient(server.URL).FullBusinessData(context.Background(), "Austin Premier Plumbing, Austin", testNow)
	if err != nil {
		t.Fatalf("FullBusinessData: %v", err)
	}

	if facts.BusinessName != "Austin Premier Plumbing" {
		t.Errorf("BusinessName = %q", facts.BusinessName)
	}
	if len(facts.SecondaryCategories) != 3 || facts.SecondaryCategories[1] != "Water heater installer" {
		t.Errorf("SecondaryCategories = %v, want the comma string split", facts.SecondaryCategories)
	}
	if len(facts.Services) != 2 {
		t.Fatalf("Services = %v, want both string and object entries", facts.Services)
	}
	if facts.Services[1].Name != "Pipe Repair" || facts.Services[1].Description != "Burst pipes" {
		t.Errorf("Services[1] = %+v", facts.Services[1])
	}
	if facts.Hours["monday"] != "7AM-6PM" {
		t.Errorf("Hours = %v", facts.Hours)
	}
	if len(facts.Attributes) != 2 {
		t.Errorf("Attributes = %v, the about summary key must not become an attribute", facts.Attributes)
	}
	if facts.PhotoCount != 34 || facts.OwnerPhotoCount != 12 {
		t.Errorf("photos = %d/%d", facts.PhotoCount, facts.OwnerPhotoCount)
	}
	if rate := facts.ResponseRate; rate < 0.44 || rate > 0.45 {
		t.Errorf("ResponseRate = %v, want 39/87", rate)
	}
	wantReview := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if facts.RecentReviewDate == nil || !facts.RecentReviewDate.Equal(wantReview) {
		t.Errorf("RecentReviewDate = %v, want %v", facts.RecentReviewDate, wantReview)
	}
	if facts.LastPostDate == nil || facts.LastPostDate.Day() != 13 {
		t.Errorf("LastPostDate = %v", facts.LastPostDate)
	}
	// 6 posts lands in the monthly cadence bucket
	if facts.PostFrequency != model.PostMonthly {
		t.Errorf("PostFrequency = %q", facts.PostFrequency)
	}
	if facts.Source != "outscraper" {
		t.Errorf("Source = %q", facts.Source)
	}
}

func TestOutscraperOwnerPhotosFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"status": "Success",
			"data": [[{"name": "Shop", "photos_count": 30, "reviews": 5}]]
		}`))
	}))
	defer server.Close()

	facts, err := outscraperTestClient(server.URL).FullBusinessData(context.Background(), "Shop", testNow)
	if err != nil {
		t.Fatalf("FullBusinessData: %v", err)
	}
	if facts.OwnerPhotoCount != 12 {
		t.Errorf("OwnerPhotoCount = %d, want the 40%% estimate of 30", facts.OwnerPhotoCount)
	}
	if facts.ResponseRate != 0.5 {
		t.Errorf("ResponseRate = %v, want the 0.5 placeholder", facts.ResponseRate)
	}
}

func TestOutscraperPendingPoll(t *testing.T) {
	polls := 0
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/maps/search-v3", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"status": "Pending", "results_location": "%s/requests/abc123"}`, server.URL)
	})
	mux.HandleFunc("/requests/abc123", func(w http.ResponseWriter, r *http.Request) {
		polls++
		if polls < 3 {
			_, _ = w.Write([]byte(`{"status": "Pending"}`))
			return
		}
		_, _ = w.Write([]byte(`{
			"status": "Success",
			"data": [[{"name": "Polled Shop", "reviews": 12, "rating": 4.2}]]
		}`))
	})

	facts, err := outscraperTestClient(server.URL).FullBusinessData(context.Background(), "Polled Shop, Austin", testNow)
	if err != nil {
		t.Fatalf("FullBusinessData: %v", err)
	}
	if facts.BusinessName != "Polled Shop" {
		t.Errorf("BusinessName = %q", facts.BusinessName)
	}
	if polls != 3 {
		t.Errorf("polled %d times, want 3", polls)
	}
}

func TestOutscraperPollFailure(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/maps/search-v3", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"status": "Pending", "results_location": "%s/requests/dead"}`, server.URL)
	})
	mux.HandleFunc("/requests/dead", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "Error"}`))
	})

	if _, err := outscraperTestClient(server.URL).FullBusinessData(context.Background(), "Shop", testNow); err == nil {
		t.Error("expected an error when the async job fails")
	}
}

func TestOutscraperNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "Success", "data": [[]]}`))
	}))
	defer server.Close()

	if _, err := outscraperTestClient(server.URL).FullBusinessData(context.Background(), "Ghost Shop", testNow); err == nil {
		t.Error("expected an error for an empty result set")
	}
}

func TestFirstPlaceShapes(t *testing.T) {
	if p := firstPlace([]byte(`[[{"name": "Nested"}]]`)); p == nil || p.Name != "Nested" {
		t.Errorf("nested shape = %+v", p)
	}
	if p := firstPlace([]byte(`[{"name": "Flat"}]`)); p == nil || p.Name != "Flat" {
		t.Errorf("flat shape = %+v", p)
	}
	if p := firstPlace(nil); p != nil {
		t.Errorf("empty payload = %+v, want nil", p)
	}
}

func TestPostFrequency(t *testing.T) {
	tests := []struct {
		posts int
		want  model.PostFrequency
	}{
		{0, model.PostNever},
		{1, model.PostRarely},
		{4, model.PostMonthly},
		{12, model.PostWeekly},
		{50, model.PostWeekly},
	}
	for _, tt := range tests {
		if got := postFrequency(tt.posts); got != tt.want {
			t.Errorf("postFrequency(%d) = %q, want %q", tt.posts, got, tt.want)
		}
	}
}

func TestParseReviewDateFallsBackToEstimate(t *testing.T) {
	if d := parseReviewDate("not a date", 87, testNow); d == nil || !d.Equal(testNow.AddDate(0, 0, -7)) {
		t.Errorf("fallback date = %v", d)
	}
	if d := parseReviewDate("2026-03-01 10:30:00", 0, testNow); d == nil || d.Day() != 1 {
		t.Errorf("datetime layout = %v", d)
	}
}
