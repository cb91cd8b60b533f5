package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/localaudit/localaudit/internal/model"
)

const (
	outscraperPollAttempts = 10
	outscraperPollDelay    = 3 * time.Second
)

// OutscraperClient is the deep-data source. Its Maps scraper returns the
// fields the baseline source cannot see: services, photo counts, owner
// response counts, and post activity. The endpoint is asynchronous by
// design; even with async=false it may answer with a pending job that has
// to be polled.
type OutscraperClient struct {
	transport *Transport
	apiKey    string
	baseURL   string
	logger    *zap.Logger

	// sleep is replaceable in tests to skip real polling delays
	sleep func(time.Duration)
}

// NewOutscraperClient creates an Outscraper adapter
func NewOutscraperClient(cfg model.SourcesConfig, transport *Transport, logger *zap.Logger) *OutscraperClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutscraperClient{
		transport: transport,
		apiKey:    cfg.OutscraperAPIKey,
		baseURL:   strings.TrimRight(cfg.OutscraperBaseURL, "/"),
		logger:    logger,
		sleep:     time.Sleep,
	}
}

// Configured reports whether an API key is present
func (c *OutscraperClient) Configured() bool {
	return c.apiKey != ""
}

// outscraperEnvelope is the response wrapper. Data nests one result list
// per query: data[0][0] is the place for a single-query request.
type outscraperEnvelope struct {
	Status          string          `json:"status"`
	ResultsLocation string          `json:"results_location"`
	Data            json.RawMessage `json:"data"`
}

// outscraperPlace mirrors the scraper's place dictionary. Subtypes may be
// an array or a comma-joined string; services may be strings or objects.
type outscraperPlace struct {
	Name                string                 `json:"name"`
	FullAddress         string                 `json:"full_address"`
	Address             string                 `json:"address"`
	PlaceID             string                 `json:"place_id"`
	Category            string                 `json:"category"`
	Type                string                 `json:"type"`
	Subtypes            json.RawMessage        `json:"subtypes"`
	Description         string                 `json:"description"`
	About               map[string]interface{} `json:"about"`
	Phone               string                 `json:"phone"`
	InternationalPhone  string                 `json:"international_phone"`
	Site                string                 `json:"site"`
	Website             string                 `json:"website"`
	WorkingHours        map[string]interface{} `json:"working_hours"`
	Services            json.RawMessage        `json:"services"`
	PhotosCount         int                    `json:"photos_count"`
	OwnerPhotosCount    *int                   `json:"owner_photos_count"`
	Logo                string                 `json:"logo"`
	MainPhoto           string                 `json:"main_photo"`
	Reviews             int                    `json:"reviews"`
	Rating              float64                `json:"rating"`
	LastReviewDate      string                 `json:"last_review_date"`
	ReviewsWithResponse *int                   `json:"reviews_with_response"`
	LastPostDate        string                 `json:"last_post_date"`
	PostsCount          int                    `json:"posts_count"`
}

// FullBusinessData fetches deep profile data for a "Name, City" query and
// maps it into a facts record.
func (c *OutscraperClient) FullBusinessData(ctx context.Context, query string, now time.Time) (*model.BusinessFacts, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("outscraper API key is not configured")
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", "1")
	params.Set("language", "en")
	params.Set("async", "false")

	req := request{
		method:    "GET",
		url:       c.baseURL + "/maps/search-v3?" + params.Encode(),
		headers:   map[string]string{"X-API-KEY": c.apiKey},
		cacheable: true,
	}

	c.logger.Debug("outscraper request", zap.String("query", query))
	body, err := c.transport.do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("outscraper search: %w", err)
	}

	var envelope outscraperEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("parse outscraper response: %w", err)
	}

	var place *outscraperPlace
	switch {
	case len(envelope.Data) > 0:
		place = firstPlace(envelope.Data)
	case envelope.Status == "Pending":
		// A pending envelope must not be served from cache on retry
		c.transport.forget(req)
		c.logger.Debug("outscraper job pending, polling",
			zap.String("results_location", envelope.ResultsLocation))
		place, err = c.poll(ctx, envelope.ResultsLocation)
		if err != nil {
			return nil, err
		}
	}

	if place == nil || place.Name == "" {
		return nil, fmt.Errorf("outscraper returned no results for %q", query)
	}

	c.logger.Debug("outscraper result",
		zap.String("name", place.Name), zap.Int("reviews", place.Reviews))
	return c.mapPlace(place, now), nil
}

// poll fetches the async job result until it succeeds, fails, or the
// attempt budget runs out.
func (c *OutscraperClient) poll(ctx context.Context, resultsURL string) (*outscraperPlace, error) {
	if resultsURL == "" {
		return nil, fmt.Errorf("outscraper pending response without results location")
	}

	for attempt := 1; attempt <= outscraperPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		c.sleep(outscraperPollDelay)

		body, err := c.transport.do(ctx, request{
			method:  "GET",
			url:     resultsURL,
			headers: map[string]string{"X-API-KEY": c.apiKey},
		})
		if err != nil {
			c.logger.Debug("outscraper poll failed", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}

		var envelope outscraperEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			continue
		}

		switch envelope.Status {
		case "Success":
			return firstPlace(envelope.Data), nil
		case "Pending":
			c.logger.Debug("outscraper still pending",
				zap.Int("attempt", attempt), zap.Int("max", outscraperPollAttempts))
		default:
			return nil, fmt.Errorf("outscraper job ended with status %q", envelope.Status)
		}
	}
	return nil, fmt.Errorf("outscraper polling timed out after %d attempts", outscraperPollAttempts)
}

// firstPlace unwraps the nested data payload: [[place, ...]] or [place, ...]
func firstPlace(data json.RawMessage) *outscraperPlace {
	if len(data) == 0 {
		return nil
	}

	var nested [][]outscraperPlace
	if err := json.Unmarshal(data, &nested); err == nil {
		if len(nested) > 0 && len(nested[0]) > 0 {
			return &nested[0][0]
		}
		return nil
	}

	var flat []outscraperPlace
	if err := json.Unmarshal(data, &flat); err == nil && len(flat) > 0 {
		return &flat[0]
	}
	return nil
}

func (c *OutscraperClient) mapPlace(place *outscraperPlace, now time.Time) *model.BusinessFacts {
	facts := model.NewBusinessFacts()
	facts.BusinessName = place.Name
	facts.BusinessAddress = firstNonEmpty(place.FullAddress, place.Address)
	facts.GooglePlaceID = place.PlaceID
	facts.PrimaryCategory = firstNonEmpty(place.Category, place.Type)
	facts.SecondaryCategories = parseSubtypes(place.Subtypes)
	facts.Description = firstNonEmpty(place.Description, aboutSummary(place.About))
	facts.Phone = firstNonEmpty(place.Phone, place.InternationalPhone)
	facts.WebsiteURL = firstNonEmpty(place.Site, place.Website)
	facts.Hours = parseWorkingHours(place.WorkingHours)
	facts.Attributes = aboutAttributes(place.About)
	facts.Services = parseServices(place.Services)

	facts.PhotoCount = place.PhotosCount
	if place.OwnerPhotosCount != nil {
		facts.OwnerPhotoCount = *place.OwnerPhotosCount
	} else {
		facts.OwnerPhotoCount = place.PhotosCount * 4 / 10
	}
	facts.HasLogo = place.Logo != "" || place.PhotosCount > 0
	facts.HasCoverPhoto = place.MainPhoto != "" || place.PhotosCount > 0

	facts.ReviewCount = place.Reviews
	facts.AverageRating = place.Rating
	facts.RecentReviewDate = parseReviewDate(place.LastReviewDate, place.Reviews, now)
	facts.MonthlyReviewVelocity = estimateReviewVelocity(place.Reviews)
	if place.ReviewsWithResponse != nil && place.Reviews > 0 {
		facts.ResponseRate = float64(*place.ReviewsWithResponse) / float64(place.Reviews)
	} else {
		facts.ResponseRate = 0.5
	}

	if t, err := time.Parse(time.RFC3339, place.LastPostDate); err == nil {
		facts.LastPostDate = &t
	}
	facts.PostFrequency = postFrequency(place.PostsCount)

	site := facts.WebsiteURL
	facts.WebsiteHTTPS = strings.HasPrefix(site, "https")
	facts.WebsiteLoads = site != ""
	facts.WebsiteMobile = true // refined by the website stage

	facts.Source = "outscraper"
	return facts
}

func parseSubtypes(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}

	var asArray []string
	if err := json.Unmarshal(raw, &asArray); err == nil {
		if len(asArray) > 5 {
			asArray = asArray[:5]
		}
		return asArray
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		out := []string{}
		for _, part := range strings.Split(asString, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
			if len(out) == 5 {
				break
			}
		}
		return out
	}
	return []string{}
}

func parseWorkingHours(workingHours map[string]interface{}) map[string]string {
	hours := map[string]string{}
	for day, value := range workingHours {
		if interval, ok := value.(string); ok {
			hours[strings.ToLower(day)] = interval
		}
	}
	return hours
}

func aboutSummary(about map[string]interface{}) string {
	if summary, ok := about["summary"].(string); ok {
		return summary
	}
	return ""
}

func aboutAttributes(about map[string]interface{}) map[string]interface{} {
	attrs := map[string]interface{}{}
	for key, value := range about {
		if key == "summary" {
			continue
		}
		attrs[key] = value
	}
	return attrs
}

func parseServices(raw json.RawMessage) []model.Service {
	if len(raw) == 0 {
		return []model.Service{}
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return []model.Service{}
	}

	services := []model.Service{}
	for _, entry := range entries {
		var name string
		if err := json.Unmarshal(entry, &name); err == nil {
			if name != "" {
				services = append(services, model.Service{Name: name})
			}
			continue
		}
		var obj struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := json.Unmarshal(entry, &obj); err == nil && obj.Name != "" {
			services = append(services, model.Service{Name: obj.Name, Description: obj.Description})
		}
	}
	return services
}

func parseReviewDate(raw string, reviewCount int, now time.Time) *time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return estimateRecentReviewDate(reviewCount, now)
}

func postFrequency(postsCount int) model.PostFrequency {
	switch {
	case postsCount >= 12:
		return model.PostWeekly
	case postsCount >= 4:
		return model.PostMonthly
	case postsCount >= 1:
		return model.PostRarely
	default:
		return model.PostNever
	}
}
