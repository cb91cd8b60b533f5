package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/localaudit/localaudit/internal/model"
)

// Auditor runs one audit for a named business
type Auditor interface {
	Audit(ctx context.Context, businessName, city string) (*model.AuditResult, error)
}

// BatchEntry is one business parsed from a batch file
type BatchEntry struct {
	BusinessName string
	City         string
}

// AuditJob wraps one batch entry for pool execution
type AuditJob struct {
	Entry   BatchEntry
	Auditor Auditor
}

// Execute runs the audit and wraps its outcome
func (j *AuditJob) Execute(ctx context.Context) Result {
	result, err := j.Auditor.Audit(ctx, j.Entry.BusinessName, j.Entry.City)
	return &AuditOutcome{
		Entry:  j.Entry,
		Result: result,
		Error:  err,
	}
}

// AuditOutcome is the result of one batch audit. Result is nil when Error
// is set.
type AuditOutcome struct {
	Entry  BatchEntry
	Result *model.AuditResult
	Error  error
}

// GetError returns the audit error, if any
func (r *AuditOutcome) GetError() error {
	return r.Error
}

// BatchProcessor audits multiple businesses concurrently
type BatchProcessor struct {
	auditor     Auditor
	concurrency int
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(auditor Auditor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		auditor:     auditor,
		concurrency: concurrency,
	}
}

// Process audits all entries through a worker pool and returns one outcome
// per entry, in completion order.
func (b *BatchProcessor) Process(ctx context.Context, entries []BatchEntry) []*AuditOutcome {
	if len(entries) == 0 {
		return []*AuditOutcome{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, entry := range entries {
		pool.Submit(&AuditJob{Entry: entry, Auditor: b.auditor})
	}

	results := pool.Wait()

	outcomes := make([]*AuditOutcome, len(results))
	for i, result := range results {
		outcomes[i] = result.(*AuditOutcome)
	}
	return outcomes
}

// ProcessFile reads a batch file and audits every entry in it
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AuditOutcome, error) {
	entries, err := ReadBatchFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	return b.Process(ctx, entries), nil
}

// ReadBatchFile parses a batch file with one business per line in the form
// "Business Name | City" (city optional). Empty lines and #-comments are
// skipped and duplicate lines are collapsed.
func ReadBatchFile(filePath string) ([]BatchEntry, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var entries []BatchEntry
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true

		name, city := line, ""
		if idx := strings.Index(line, "|"); idx >= 0 {
			name = strings.TrimSpace(line[:idx])
			city = strings.TrimSpace(line[idx+1:])
		}
		if name == "" {
			continue
		}
		entries = append(entries, BatchEntry{BusinessName: name, City: city})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return entries, nil
}
