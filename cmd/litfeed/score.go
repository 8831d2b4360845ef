package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nao1215/litfeed/internal/config"
	"github.com/nao1215/litfeed/internal/model"
	"github.com/nao1215/litfeed/internal/quality"
	"github.com/spf13/cobra"
)

// NewScoreCmd creates the score command.
func NewScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score [file]",
		Short: "Run the quality scorer over a local text",
		Long: `Score evaluates a plain-text file with the same rules the feed uses to
separate literary texts from lists, indexes and hubs, and prints the
measurements together with the rule that decided the verdict.

The text is read from standard input when no file is given.

Examples:
  # Score a poem
  litfeed score poem.txt

  # Score a page that had 40 outbound links
  litfeed score --links 40 --title "Contents" page.txt

  # Machine-readable output
  cat page.txt | litfeed score --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScoreCmd,
	}

	cmd.Flags().String("title", "", "Page title (default: the file name)")
	cmd.Flags().Int("links", 0, "Number of outbound links of the page")
	cmd.Flags().Float64("max-link-density", config.DefaultMaxLinkDensity,
		"Highest share of link text a page may have to be accepted")
	cmd.Flags().BoolP("json", "j", false, "Output the verdict and measurements as JSON")

	return cmd
}

// scoreOutput is the JSON output of the score command.
type scoreOutput struct {
	Accepted bool               `json:"accepted"`
	Reason   model.RejectReason `json:"reason,omitempty"`
	quality.Report
}

// runScoreCmd executes the score command.
func runScoreCmd(cmd *cobra.Command, args []string) error {
	title, err := cmd.Flags().GetString("title")
	if err != nil {
		return err
	}
	links, err := cmd.Flags().GetInt("links")
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	density, err := cmd.Flags().GetFloat64("max-link-density")
	if err != nil {
		return err
	}
	if density <= 0 || density > 1 {
		return config.ErrInvalidLinkDensity
	}

	var body []byte
	if len(args) == 0 || args[0] == "-" {
		body, err = io.ReadAll(cmd.InOrStdin())
	} else {
		body, err = os.ReadFile(filepath.Clean(args[0]))
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		}
	}
	if err != nil {
		return fmt.Errorf("failed to read text: %w", err)
	}

	return writeScore(cmd.OutOrStdout(), newScorer(density), string(body), links, title, asJSON)
}

// writeScore scores body and prints the verdict.
func writeScore(w io.Writer, s *quality.Scorer, body string, links int, title string, asJSON bool) error {
	verdict, report := s.Explain(body, links, title)

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(scoreOutput{
			Accepted: verdict.Accepted,
			Reason:   verdict.Reason,
			Report:   report,
		})
	}

	th := s.Thresholds()
	fmt.Fprintln(w, renderTable(
		[]string{"Measurement", "Value", "Threshold"},
		[][]string{
			{"Length (runes)", strconv.Itoa(report.Length), fmt.Sprintf("%d..%d", th.MinLength, th.MaxLength)},
			{"Outbound links", strconv.Itoa(report.LinkCount), ""},
			{"Link density", strconv.FormatFloat(report.LinkDensity, 'f', 3, 64), "<= " + strconv.FormatFloat(th.MaxLinkDensity, 'f', 2, 64)},
			{"Lines", strconv.Itoa(report.Lines), ""},
			{"Average line", strconv.FormatFloat(report.AverageLine, 'f', 1, 64), ">= " + strconv.FormatFloat(th.ListyMaxAverageLine, 'f', 0, 64) + " or punctuated"},
			{"Punctuated lines", strconv.FormatFloat(report.PunctuatedRatio, 'f', 2, 64), ">= " + strconv.FormatFloat(th.ListyMinPunctuated, 'f', 2, 64)},
		},
		[]columnAlignment{alignLeft, alignRight, alignLeft},
	))

	if verdict.Accepted {
		fmt.Fprintln(w, "Verdict: accepted")
		return nil
	}
	fmt.Fprintf(w, "Verdict: rejected (%s, rule %s)\n", verdict.Reason, report.Rule)
	return nil
}
