package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/oratriage/internal/agent/core"
	"github.com/mohammad-safakhou/oratriage/internal/helpers"
)

func askCMD(cfgPath *string) *cobra.Command {
	var (
		dbDir    string
		allowWeb bool
		strict   bool
		locale   string
		asJSON   bool
	)
	ask := &cobra.Command{
		Use:   "ask [query]",
		Short: "Troubleshoot one error message from the command line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			if locale == "" {
				locale = a.cfg.General.DefaultLocale
			}
			res, err := a.orchestrator.Run(cmd.Context(), core.Request{
				Query:     strings.Join(args, " "),
				CorpusDir: dbDir,
				Strict:    strict,
				AllowWeb:  allowWeb,
				Locale:    locale,
			})
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				return enc.Encode(res)
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	ask.Flags().StringVar(&dbDir, "db-dir", "", "corpus directory (default corpus.default_dir)")
	ask.Flags().BoolVar(&allowWeb, "allow-web", false, "fall back to web search when no local evidence matches")
	ask.Flags().BoolVar(&strict, "strict", true, "require the error code in every evidence item")
	ask.Flags().StringVar(&locale, "locale", "", "answer language: en or ko")
	ask.Flags().BoolVar(&asJSON, "json", false, "print the raw result as JSON")
	return ask
}

func printResult(w io.Writer, res core.Result) {
	fmt.Fprintln(w, "## Causes")
	for _, c := range res.Causes.Causes {
		fmt.Fprintf(w, "- %s\n", c)
	}
	if res.Causes.Notes != "" {
		fmt.Fprintf(w, "\n_%s_\n", res.Causes.Notes)
	}
	fmt.Fprintf(w, "\n%s\n", res.SolutionMarkdown)

	var cites []helpers.Citation
	for _, r := range res.References {
		cites = append(cites, helpers.Citation{Tag: r.Tag, Title: r.Filename, Page: r.Page})
	}
	for _, r := range res.WebRefs {
		cites = append(cites, helpers.Citation{Tag: r.Tag, Title: r.Title, URL: r.URL})
	}
	if len(cites) > 0 {
		fmt.Fprintln(w, "\n## Sources")
		for _, line := range helpers.FormatCitations(cites) {
			fmt.Fprintf(w, "- %s\n", line)
		}
	}
	if res.WebNote != "" {
		fmt.Fprintf(w, "\n%s\n", res.WebNote)
	}
	if res.NeedWeb && !res.WebFallbackAttempted {
		fmt.Fprintln(w, "\nNo local evidence matched; rerun with --allow-web to search the web.")
	}
}
