package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/coasterscan/internal/model"
	"github.com/ppiankov/coasterscan/internal/reconcile"
	"github.com/ppiankov/coasterscan/internal/worker"
)

var (
	concurrency  int
	batchAll     bool
	batchFile    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <park|manufacturer> [ids...]",
	Short: "Reconcile several entities in parallel",
	Long: `Batch reconciles many entities concurrently:
- ids from the command line, from --file (one per line), or --all
- duplicate ids are dropped, so no entity is reconciled twice at once
- each entity gets its own pending proposal when something changed

Example:
  coasterscan batch park --all
  coasterscan batch manufacturer 4f1d... 9a2c... --concurrency 4
  coasterscan batch park --file parks.txt --timeout 30m`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().BoolVar(&batchAll, "all", false, "reconcile every stored entity of the kind")
	batchCmd.Flags().StringVar(&batchFile, "file", "", "read entity ids from a file")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	kind, err := model.ParseKind(args[0])
	if err != nil {
		return err
	}
	ids := args[1:]

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	if batchFile != "" {
		fromFile, err := worker.ReadIDsFromFile(batchFile)
		if err != nil {
			return err
		}
		ids = append(ids, fromFile...)
	}
	if batchAll {
		entities, err := a.store.ListEntities(ctx, kind)
		if err != nil {
			return err
		}
		for _, e := range entities {
			ids = append(ids, e.ID)
		}
	}
	ids = worker.Dedupe(ids)
	if len(ids) == 0 {
		return fmt.Errorf("no entity ids given (pass ids, --file or --all)")
	}

	workers := concurrency
	if workers <= 0 {
		workers = a.cfg.Concurrency.Workers
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  coasterscan batch reconcile\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Kind:         %s\n", kind)
	fmt.Fprintf(os.Stderr, "  Entities:     %d\n", len(ids))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "  Text model:   %s\n", a.completer.Name())
	fmt.Fprintf(os.Stderr, "\n")

	runner := reconcile.StoreRunner{Reconciler: a.reconciler, Entities: a.store}
	processor := worker.NewBatchProcessor(runner, workers)
	results := processor.ProcessIDs(ctx, kind, ids)

	proposals, unchanged, failures := 0, 0, 0
	for _, result := range results {
		if result.Error != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.ID, result.Error)
			continue
		}
		if result.Outcome.ProposalID != "" {
			proposals++
			fmt.Fprintf(os.Stderr, "✓ %s: proposal %s (%d fields)\n", result.ID, result.Outcome.ProposalID, result.Outcome.Changes)
			continue
		}
		unchanged++
		fmt.Fprintf(os.Stderr, "· %s: %s\n", result.ID, result.Outcome.Message)
	}
	skipped := len(ids) - len(results)

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:      %d\n", len(ids))
	fmt.Fprintf(os.Stderr, "  Proposals:  %d\n", proposals)
	fmt.Fprintf(os.Stderr, "  Unchanged:  %d\n", unchanged)
	fmt.Fprintf(os.Stderr, "  Failures:   %d\n", failures)
	if skipped > 0 {
		fmt.Fprintf(os.Stderr, "  Skipped:    %d (timeout)\n", skipped)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if failures > 0 {
		return fmt.Errorf("%d of %d entities failed", failures, len(ids))
	}
	return nil
}
