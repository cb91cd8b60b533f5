package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderJSONRoundTrip(t *testing.T) {
	p := newTestPipeline(t, NewDataProvider(nil, nil, nil, nil, nil))
	result, err := p.Run(context.Background(), AuditRequest{BusinessName: "Austin Premier Plumbing"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	path := filepath.Join(t.TempDir(), "audit.json")
	if err := NewRenderer(true).RenderJSON(result, path); err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["totalScore"].(float64) != 62 {
		t.Errorf("totalScore = %v, want 62", decoded["totalScore"])
	}
	if decoded["grade"] != "C" {
		t.Errorf("grade = %v, want C", decoded["grade"])
	}
	if decoded["dataSource"] != "synthetic" {
		t.Errorf("dataSource = %v, want synthetic", decoded["dataSource"])
	}
	if _, ok := decoded["llm"]; ok {
		t.Error("llm key serialized despite being unset")
	}
}

func TestRenderMarkdown(t *testing.T) {
	p := newTestPipeline(t, NewDataProvider(nil, nil, nil, nil, nil))
	result, err := p.Run(context.Background(), AuditRequest{BusinessName: "Austin Premier Plumbing"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	path := filepath.Join(t.TempDir(), "audit.md")
	if err := NewRenderer(true).RenderMarkdown(result, path); err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	report := string(data)

	for _, want := range []string{
		"# Profile Audit: Austin Premier Plumbing",
		"**Score: 62/100 (C)**",
		"## Section Scores",
		"## Issues (9)",
		"## Action Plan",
		"### Do Today",
		"## Check Details",
		"Generated by localaudit",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report is missing %q", want)
		}
	}
}

func TestRenderMarkdownNoFooter(t *testing.T) {
	p := newTestPipeline(t, NewDataProvider(nil, nil, nil, nil, nil))
	result, err := p.Run(context.Background(), AuditRequest{BusinessName: "Austin Premier Plumbing"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	path := filepath.Join(t.TempDir(), "audit.md")
	if err := NewRenderer(false).RenderMarkdown(result, path); err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "Generated by localaudit") {
		t.Error("footer rendered despite being disabled")
	}
}

func TestSectionOrder(t *testing.T) {
	p := newTestPipeline(t, NewDataProvider(nil, nil, nil, nil, nil))
	result, err := p.Run(context.Background(), AuditRequest{BusinessName: "Austin Premier Plumbing"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	order := sectionOrder(result.CheckResults)
	if len(order) != 6 {
		t.Fatalf("sections = %d, want 6", len(order))
	}
	if order[0].id != "profile" || order[0].max != 32 {
		t.Errorf("first section = %s/%d, want profile/32", order[0].id, order[0].max)
	}
	if order[5].id != "competitive" || order[5].max != 8 {
		t.Errorf("last section = %s/%d, want competitive/8", order[5].id, order[5].max)
	}
}
