package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/coasterscan/internal/model"
	"github.com/ppiankov/coasterscan/internal/reconcile"
)

var reconcileTimeout time.Duration

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile <park|manufacturer> <id>",
	Short: "Check one entity against its sources and propose changes",
	Long: `Reconcile fetches the entity's official website, looks the entity up in
Wikidata and Wikipedia, merges what it finds under a fixed source priority
and stores the fields that would change as a pending proposal.

The entity itself is not modified. Review the proposal with
'coasterscan proposals show <id>' and apply it with 'proposals accept'.

Example:
  coasterscan reconcile park 0b6c1c1e-...
  coasterscan reconcile manufacturer 4f1d... --llm-provider openai`,
	Args: cobra.ExactArgs(2),
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
	reconcileCmd.Flags().DurationVar(&reconcileTimeout, "timeout", 3*time.Minute, "overall timeout for the run")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	kind, err := model.ParseKind(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	e, err := a.store.GetEntity(ctx, kind, args[1])
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Reconciling %s %q (%s)\n", kind, e.Name, e.Website())
		fmt.Fprintf(os.Stderr, "Text capability: %s\n\n", a.completer.Name())
	}

	res, err := a.reconciler.Reconcile(ctx, e)
	if err != nil {
		if reconcile.IsValidation(err) {
			return fmt.Errorf("cannot reconcile: %w", err)
		}
		return fmt.Errorf("reconcile failed: %w", err)
	}

	if res.Proposal == nil {
		fmt.Printf("✓ %s: %s (source page %s)\n", e.Name, res.Message, res.SourcePageID)
		return nil
	}

	fmt.Printf("✓ %s: %s %s\n", e.Name, res.Message, res.Proposal.ID)
	printChanges(os.Stdout, kind, res.Proposal.Current, res.Diff)
	return nil
}
