package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/coasterscan/internal/model"
	"github.com/ppiankov/coasterscan/internal/store"
)

var (
	proposalStatus string
	proposalKind   string
	proposalFields string
	proposalNote   string
	proposalJSON   bool
)

// proposalsCmd represents the proposals command
var proposalsCmd = &cobra.Command{
	Use:     "proposals",
	Aliases: []string{"proposal"},
	Short:   "Review change-set proposals",
}

var proposalsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List proposals (pending by default)",
	RunE:  runProposalsList,
}

var proposalsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a proposal with its current and suggested values",
	Args:  cobra.ExactArgs(1),
	RunE:  runProposalsShow,
}

var proposalsAcceptCmd = &cobra.Command{
	Use:   "accept <id>",
	Short: "Apply a pending proposal to its entity",
	Long: `Accept applies the suggested fields to the entity and marks the proposal
accepted. Use --fields to apply only some of them; system-managed fields
(id, created_at, updated_at) are never written.`,
	Example: `  coasterscan proposals accept 7c1e...
  coasterscan proposals accept 7c1e... --fields country_code,opening_year --note "checked on site"`,
	Args: cobra.ExactArgs(1),
	RunE: runProposalsAccept,
}

var proposalsRejectCmd = &cobra.Command{
	Use:   "reject <id>",
	Short: "Reject a pending proposal",
	Args:  cobra.ExactArgs(1),
	RunE:  runProposalsReject,
}

func init() {
	rootCmd.AddCommand(proposalsCmd)
	proposalsCmd.AddCommand(proposalsListCmd, proposalsShowCmd, proposalsAcceptCmd, proposalsRejectCmd)

	proposalsListCmd.Flags().StringVar(&proposalStatus, "status", string(model.StatusPending), "filter by status (pending, accepted, rejected, all)")
	proposalsListCmd.Flags().StringVar(&proposalKind, "kind", "", "filter by entity kind")
	proposalsShowCmd.Flags().BoolVar(&proposalJSON, "json", false, "print JSON")
	proposalsAcceptCmd.Flags().StringVar(&proposalFields, "fields", "", "comma-separated fields to apply (default: all)")
	proposalsAcceptCmd.Flags().StringVar(&proposalNote, "note", "", "review note")
	proposalsRejectCmd.Flags().StringVar(&proposalNote, "note", "", "review note")
}

func runProposalsList(cmd *cobra.Command, args []string) error {
	filter := store.ProposalFilter{}
	switch proposalStatus {
	case "", "all":
	case string(model.StatusPending), string(model.StatusAccepted), string(model.StatusRejected):
		filter.Status = model.ProposalStatus(proposalStatus)
	default:
		return fmt.Errorf("unknown status: %q", proposalStatus)
	}
	if proposalKind != "" {
		kind, err := model.ParseKind(proposalKind)
		if err != nil {
			return err
		}
		filter.EntityKind = kind
	}

	a, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	proposals, err := a.store.ListProposals(context.Background(), filter)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tENTITY\tSTATUS\tFIELDS\tCREATED")
	for _, p := range proposals {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			p.ID, p.EntityKind, p.EntityID, p.Status, len(p.Suggested), p.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runProposalsShow(cmd *cobra.Command, args []string) error {
	a, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	p, err := a.store.GetProposal(context.Background(), args[0])
	if err != nil {
		return err
	}
	if proposalJSON {
		return printJSON(os.Stdout, p)
	}

	fmt.Printf("Proposal %s (%s)\n", p.ID, p.Status)
	fmt.Printf("  Entity:  %s %s\n", p.EntityKind, p.EntityID)
	fmt.Printf("  Source:  %s\n", p.SourceURL)
	fmt.Printf("  Created: %s\n", p.CreatedAt.Format("2006-01-02 15:04:05"))
	if p.ReviewNote != "" {
		fmt.Printf("  Note:    %s\n", p.ReviewNote)
	}
	fmt.Println()
	printChanges(os.Stdout, p.EntityKind, p.Current, p.Suggested)
	return nil
}

func runProposalsAccept(cmd *cobra.Command, args []string) error {
	a, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	applied, err := a.review.Accept(context.Background(), args[0], splitFields(proposalFields), proposalNote)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Printf("✓ Accepted %s (no fields applied)\n", args[0])
		return nil
	}
	fmt.Printf("✓ Accepted %s: applied %v\n", args[0], applied)
	return nil
}

func runProposalsReject(cmd *cobra.Command, args []string) error {
	a, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	if err := a.review.Reject(context.Background(), args[0], proposalNote); err != nil {
		return err
	}
	fmt.Printf("✓ Rejected %s\n", args[0])
	return nil
}
