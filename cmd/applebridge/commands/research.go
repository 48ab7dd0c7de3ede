// ABOUTME: Research command runs the web research pipeline from the terminal
// ABOUTME: Searches, fetches top results, and prints extracted content
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"applebridge/internal/config"
	"applebridge/internal/web"
)

// NewResearchCmd creates the research command
func NewResearchCmd() *cobra.Command {
	var maxPages int

	cmd := &cobra.Command{
		Use:   "research <query>",
		Short: "Search the web and extract content from the top results",
		Long: `Search the web for a query, fetch the top results concurrently,
and print the main content extracted from each page. Results whose
page could not be fetched are listed with the failure reason.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if maxPages > 0 {
				cfg.MaxContentPages = maxPages
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			query := strings.Join(args, " ")
			result, err := web.NewPipeline(cfg).Research(cmd.Context(), query)
			if err != nil {
				return err
			}

			printResearch(cmd, result)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxPages, "pages", 0, "number of result pages to fetch (default from config)")
	return cmd
}

func printResearch(cmd *cobra.Command, result *web.ResearchResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Research results for: %s\n\n", result.Query)

	if result.Error != "" {
		fmt.Fprintf(out, "%s\n", result.Error)
		return
	}

	for i, r := range result.Results {
		fmt.Fprintf(out, "%d. %s\n   %s\n", i+1, r.Title, r.URL)
		if r.Snippet != "" && verbose {
			fmt.Fprintf(out, "   %s\n", r.Snippet)
		}
		switch {
		case r.Content != nil:
			fmt.Fprintf(out, "\n%s\n\n", truncate(*r.Content, 2000))
		default:
			fmt.Fprintf(out, "   [fetch failed: %s]\n\n", r.Error)
		}
	}
}

// truncate shortens a string to maxLen runes, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
