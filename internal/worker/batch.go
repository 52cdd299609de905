package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/coasterscan/internal/model"
)

// Outcome summarizes one reconciliation run
type Outcome struct {
	Message    string
	ProposalID string
	Changes    int
}

// Runner reconciles a single stored entity
type Runner interface {
	Run(ctx context.Context, kind model.Kind, id string) (*Outcome, error)
}

// ReconcileJob reconciles one entity
type ReconcileJob struct {
	Index  int
	Kind   model.Kind
	ID     string
	Runner Runner
}

// Execute executes the reconcile job
func (j *ReconcileJob) Execute(ctx context.Context) Result {
	outcome, err := j.Runner.Run(ctx, j.Kind, j.ID)
	return &JobResult{
		Index:   j.Index,
		Kind:    j.Kind,
		ID:      j.ID,
		Outcome: outcome,
		Error:   err,
	}
}

// JobResult is the result of a reconcile job
type JobResult struct {
	Index   int
	Kind    model.Kind
	ID      string
	Outcome *Outcome
	Error   error
}

// GetError returns the error from the job result
func (r *JobResult) GetError() error {
	return r.Error
}

// BatchProcessor reconciles many entities concurrently. Every entity id is
// scheduled at most once per batch, so no entity is reconciled twice at the
// same time.
type BatchProcessor struct {
	runner      Runner
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(runner Runner, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
	}
}

// ProcessIDs reconciles the given entities and returns results in input
// order, after de-duplication
func (b *BatchProcessor) ProcessIDs(ctx context.Context, kind model.Kind, ids []string) []*JobResult {
	ids = Dedupe(ids)
	if len(ids) == 0 {
		return []*JobResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	collected := make(chan []*JobResult, 1)
	go func() {
		var out []*JobResult
		for r := range pool.Results() {
			out = append(out, r.(*JobResult))
		}
		collected <- out
	}()

	for i, id := range ids {
		if !pool.Submit(&ReconcileJob{Index: i, Kind: kind, ID: id, Runner: b.runner}) {
			break
		}
	}
	pool.Close()

	results := <-collected
	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })
	return results
}

// ProcessFile reads entity ids from a file and reconciles them
func (b *BatchProcessor) ProcessFile(ctx context.Context, kind model.Kind, filePath string) ([]*JobResult, error) {
	ids, err := ReadIDsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read ids: %w", err)
	}
	return b.ProcessIDs(ctx, kind, ids), nil
}

// Dedupe trims ids, drops blanks and repeats, and keeps first-seen order
func Dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// ReadIDsFromFile reads entity ids from a file (one per line, '#' comments)
func ReadIDsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var ids []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return Dedupe(ids), nil
}
