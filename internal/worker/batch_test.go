package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/localaudit/localaudit/internal/model"
)

type stubAuditor struct {
	failFor string
}

func (a *stubAuditor) Audit(ctx context.Context, businessName, city string) (*model.AuditResult, error) {
	if businessName == a.failFor {
		return nil, errors.New("audit failed")
	}
	result := &model.AuditResult{TotalScore: 62, Grade: "C"}
	result.BusinessName = businessName
	result.BusinessAddress = city
	return result, nil
}

func TestBatchProcessorProcess(t *testing.T) {
	processor := NewBatchProcessor(&stubAuditor{}, 2)

	entries := []BatchEntry{
		{BusinessName: "Shop One", City: "Austin"},
		{BusinessName: "Shop Two", City: "Dallas"},
		{BusinessName: "Shop Three"},
	}
	outcomes := processor.Process(context.Background(), entries)

	if len(outcomes) != len(entries) {
		t.Fatalf("outcomes = %d, want %d", len(outcomes), len(entries))
	}
	for _, outcome := range outcomes {
		if outcome.Error != nil {
			t.Errorf("%s failed: %v", outcome.Entry.BusinessName, outcome.Error)
			continue
		}
		if outcome.Result.BusinessName != outcome.Entry.BusinessName {
			t.Errorf("result for %q carries name %q", outcome.Entry.BusinessName, outcome.Result.BusinessName)
		}
	}
}

func TestBatchProcessorPartialFailure(t *testing.T) {
	processor := NewBatchProcessor(&stubAuditor{failFor: "Broken Shop"}, 2)

	outcomes := processor.Process(context.Background(), []BatchEntry{
		{BusinessName: "Good Shop"},
		{BusinessName: "Broken Shop"},
	})

	var failed, succeeded int
	for _, outcome := range outcomes {
		if outcome.GetError() != nil {
			failed++
			if outcome.Result != nil {
				t.Error("failed outcome carries a result")
			}
		} else {
			succeeded++
		}
	}
	if failed != 1 || succeeded != 1 {
		t.Errorf("failed = %d, succeeded = %d, want 1 and 1", failed, succeeded)
	}
}

func TestBatchProcessorEmptyInput(t *testing.T) {
	processor := NewBatchProcessor(&stubAuditor{}, 2)
	if outcomes := processor.Process(context.Background(), nil); len(outcomes) != 0 {
		t.Errorf("outcomes = %d for empty input", len(outcomes))
	}
}

func TestReadBatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "businesses.txt")
	content := `# plumbing shops to audit
Austin Premier Plumbing | Austin

Radiant Plumbing & Air | Austin
Solo Shop
Austin Premier Plumbing | Austin
 | Dallas
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	entries, err := ReadBatchFile(path)
	if err != nil {
		t.Fatalf("ReadBatchFile: %v", err)
	}

	want := []BatchEntry{
		{BusinessName: "Austin Premier Plumbing", City: "Austin"},
		{BusinessName: "Radiant Plumbing & Air", City: "Austin"},
		{BusinessName: "Solo Shop"},
	}
	if len(entries) != len(want) {
		t.Fatalf("entries = %+v, want %d entries", entries, len(want))
	}
	for i, entry := range entries {
		if entry != want[i] {
			t.Errorf("entries[%d] = %+v, want %+v", i, entry, want[i])
		}
	}
}

func TestReadBatchFileMissing(t *testing.T) {
	if _, err := ReadBatchFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestBatchProcessorProcessFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.txt")
	if err := os.WriteFile(path, []byte("Shop A | Austin\nShop B | Dallas\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	processor := NewBatchProcessor(&stubAuditor{}, 1)
	outcomes, err := processor.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if len(outcomes) != 2 {
		t.Errorf("outcomes = %d, want 2", len(outcomes))
	}
}
