package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/coasterscan/internal/extract"
	"github.com/ppiankov/coasterscan/internal/model"
	"github.com/ppiankov/coasterscan/internal/sources"
)

var (
	probeURL     string
	probeTimeout time.Duration
)

// probeCmd represents the probe command
var probeCmd = &cobra.Command{
	Use:   "probe <park|manufacturer> <name>",
	Short: "Query every source for a name without writing anything",
	Long: `Probe runs the official website, Wikidata and Wikipedia lookups for a
name and prints what each one returned. Nothing is stored, which makes it
useful for checking network access and source matching before a real
reconcile run.`,
	Example: `  coasterscan probe park Efteling --url https://www.efteling.com
  coasterscan probe manufacturer Vekoma`,
	Args: cobra.MinimumNArgs(2),
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().StringVar(&probeURL, "url", "", "official website to fetch")
	probeCmd.Flags().DurationVar(&probeTimeout, "timeout", time.Minute, "timeout for all lookups")
}

func runProbe(cmd *cobra.Command, args []string) error {
	kind, err := model.ParseKind(args[0])
	if err != nil {
		return err
	}
	name := strings.Join(args[1:], " ")

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	q := sources.Query{Name: name, URL: probeURL, Kind: kind, Lang: a.cfg.Sources.Language}
	section := func(title string) {
		fmt.Println(strings.Repeat("-", 60))
		fmt.Println(title)
		fmt.Println(strings.Repeat("-", 60))
	}

	if probeURL != "" {
		section("Official website: " + probeURL)
		if page := a.official.Fetch(ctx, q); page != nil {
			fmt.Printf("  Status:      %d\n", page.StatusCode)
			fmt.Printf("  Title:       %s\n", page.Title)
			fmt.Printf("  Description: %s\n", page.Description)
			fmt.Printf("  Text:        %d chars\n", len(page.Text))
		} else {
			fmt.Println("  ✗ unavailable")
		}
		fmt.Println()
	}

	section("Wikidata")
	record := a.wikidata.Fetch(ctx, q)
	if record != nil {
		fmt.Printf("  Entity: %s (%s)\n", record.EntityID, record.URL)
		fmt.Println(indent(record.Snippet().Text))
		if record.Candidate.Name != nil {
			q.Name = *record.Candidate.Name
		}
	} else {
		fmt.Println("  ✗ no match")
	}
	fmt.Println()

	section("Wikipedia (" + q.Lang + ")")
	if article := a.wikipedia.Fetch(ctx, q); article != nil {
		fmt.Printf("  Article: %s (%s)\n", article.Title, article.URL)
		selected := extract.SelectRelevant(article.Extract, []string{name, q.Name}, nil, a.cfg.Sources.MaxSentences)
		fmt.Printf("  Extract: %d chars, %d after filtering\n", len(article.Extract), len(selected))
	} else {
		fmt.Println("  ✗ no match")
	}
	fmt.Println()

	if record == nil {
		fmt.Fprintln(os.Stderr, "Note: Wikidata lookup returned nothing; reconcile would rely on the website and Wikipedia only.")
	}
	return nil
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}
