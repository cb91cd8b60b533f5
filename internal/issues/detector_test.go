package issues_test

import (
	"strings"
	"testing"
	"time"

	"github.com/localaudit/localaudit/internal/issues"
	"github.com/localaudit/localaudit/internal/model"
	"github.com/localaudit/localaudit/internal/pipeline"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newDetector(t *testing.T) *issues.Detector {
	t.Helper()
	library, err := issues.LoadLibrary()
	if err != nil {
		t.Fatalf("LoadLibrary: %v", err)
	}
	return issues.NewDetector(library)
}

func TestDetectDemoFixture(t *testing.T) {
	detector := newDetector(t)
	facts := pipeline.SyntheticFacts("", "", testNow)

	detected := detector.Detect(facts, testNow)

	// Severity first, catalogue order within a severity.
	want := []string{
		"PROF-001",
		"PROF-007", "REV-004", "VIS-003", "COMP-001",
		"VIS-002", "ACT-001", "WEB-001",
		"PROF-012",
	}
	if len(detected) != len(want) {
		ids := make([]string, len(detected))
		for i, issue := range detected {
			ids[i] = issue.ID
		}
		t.Fatalf("detected %d issues %v, want %d", len(detected), ids, len(want))
	}
	for i, issue := range detected {
		if issue.ID != want[i] {
			t.Errorf("detected[%d] = %s, want %s", i, issue.ID, want[i])
		}
	}
}

func TestDetectSortedBySeverity(t *testing.T) {
	detector := newDetector(t)
	facts := pipeline.SyntheticFacts("", "", testNow)

	detected := detector.Detect(facts, testNow)

	for i := 1; i < len(detected); i++ {
		if detected[i-1].Severity.Rank() > detected[i].Severity.Rank() {
			t.Errorf("issue %s (%s) sorted after %s (%s)",
				detected[i-1].ID, detected[i-1].Severity,
				detected[i].ID, detected[i].Severity)
		}
	}
}

func TestDetectFillsPlaceholders(t *testing.T) {
	detector := newDetector(t)
	facts := pipeline.SyntheticFacts("", "", testNow)

	detected := detector.Detect(facts, testNow)

	byID := map[string]model.DetectedIssue{}
	for _, issue := range detected {
		byID[issue.ID] = issue
	}

	if desc := byID["PROF-001"].Description; !strings.Contains(desc, "only 4 services") {
		t.Errorf("PROF-001 description = %q, want the service count filled in", desc)
	}
	if desc := byID["REV-004"].Description; !strings.Contains(desc, "45%") {
		t.Errorf("REV-004 description = %q, want the response rate filled in", desc)
	}
	if desc := byID["COMP-001"].Description; !strings.Contains(desc, "312") || !strings.Contains(desc, "225-review gap") {
		t.Errorf("COMP-001 description = %q, want competitor numbers filled in", desc)
	}
	if desc := byID["ACT-001"].Description; !strings.Contains(desc, "25 days ago") {
		t.Errorf("ACT-001 description = %q, want the post age filled in", desc)
	}

	for _, issue := range detected {
		if strings.Contains(issue.Description, "{") {
			t.Errorf("issue %s description still has a placeholder: %q", issue.ID, issue.Description)
		}
	}
}

func TestDetectNoWebsite(t *testing.T) {
	detector := newDetector(t)
	facts := pipeline.SyntheticFacts("", "", testNow)
	facts.WebsiteURL = ""
	facts.WebsiteHTTPS = false
	facts.WebsiteLoads = false
	facts.WebsiteMobile = false

	detected := detector.Detect(facts, testNow)

	sawMissing := false
	for _, issue := range detected {
		switch issue.ID {
		case "WEB-002":
			sawMissing = true
		case "WEB-001", "WEB-003", "WEB-004", "WEB-005":
			t.Errorf("downstream website issue %s fired without a linked website", issue.ID)
		}
	}
	if !sawMissing {
		t.Error("WEB-002 did not fire for a profile without a website")
	}
}

func TestDetectHealthyProfile(t *testing.T) {
	detector := newDetector(t)
	recentReview := testNow.AddDate(0, 0, -3)
	lastPost := testNow.AddDate(0, 0, -2)

	facts := model.NewBusinessFacts()
	facts.BusinessName = "Apex Plumbing"
	facts.BusinessAddress = "100 Main St, Austin, TX 78701"
	facts.PrimaryCategory = "Plumber"
	facts.SecondaryCategories = []string{"Drainage Service", "Gasfitter", "Water Heater Installation Service"}
	facts.Description = strings.Repeat("Trusted plumber serving Austin homes and businesses. ", 10)
	facts.Hours = map[string]string{
		"monday": "Open", "tuesday": "Open", "wednesday": "Open",
		"thursday": "Open", "friday": "Open", "saturday": "Open", "sunday": "Open",
	}
	for i := 0; i < 12; i++ {
		facts.Attributes[strings.Repeat("a", i+1)] = true
	}
	for i := 0; i < 12; i++ {
		facts.Services = append(facts.Services, model.Service{Name: strings.Repeat("s", i+1)})
	}
	facts.PhotoCount = 80
	facts.OwnerPhotoCount = 30
	facts.HasLogo = true
	facts.HasCoverPhoto = true
	facts.ReviewCount = 500
	facts.AverageRating = 4.8
	facts.RecentReviewDate = &recentReview
	facts.MonthlyReviewVelocity = 6
	facts.ResponseRate = 0.9
	facts.LastPostDate = &lastPost
	facts.PostFrequency = model.PostWeekly
	facts.WebsiteURL = "https://apexplumbing.example"
	facts.WebsiteHTTPS = true
	facts.WebsiteLoads = true
	facts.WebsiteMobile = true
	facts.WebsiteHasNAP = true
	facts.Competitors = []model.Competitor{
		{Name: "Rival", Category: "Plumber", ReviewCount: 200, Rating: 4.5, PhotoCount: 40},
	}

	if detected := detector.Detect(facts, testNow); len(detected) != 0 {
		ids := make([]string, len(detected))
		for i, issue := range detected {
			ids[i] = issue.ID
		}
		t.Errorf("healthy profile raised issues: %v", ids)
	}
}
