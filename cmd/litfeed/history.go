package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/litfeed/internal/config"
	"github.com/nao1215/litfeed/internal/database"
	"github.com/spf13/cobra"
)

const (
	// historyTimeFormat is the timestamp layout of the history tables.
	historyTimeFormat = "2006-01-02 15:04"

	// fingerprintWidth is the number of fingerprint digits shown in the
	// history table. Equal prefixes mark the same text shown twice.
	fingerprintWidth = 12
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List texts shown in past feed sessions",
		Long: `History lists the texts recorded by 'litfeed feed', most recent first.

Examples:
  # Last 20 texts
  litfeed history

  # All feed sessions
  litfeed history --sessions

  # Texts of one session
  litfeed history --session 7c9e6679-7425-40de-944b-e07fc1f90ae7

  # French texts as JSON
  litfeed history --lang fr --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().Bool("sessions", false, "List sessions instead of texts")
	cmd.Flags().String("session", "", "Only texts of this session")
	cmd.Flags().StringP("lang", "l", "", "Only texts in this language")
	cmd.Flags().IntP("limit", "n", 20, "Maximum number of texts (0 for all)")
	cmd.Flags().BoolP("json", "j", false, "Output JSON")
	cmd.Flags().String("db-dir", "", "Directory of the history database (default: XDG data directory)")

	return cmd
}

// historyOptions are the history command settings.
type historyOptions struct {
	sessions bool
	filter   database.HistoryFilter
	asJSON   bool
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	var opts historyOptions
	var err error
	flags := cmd.Flags()

	if opts.sessions, err = flags.GetBool("sessions"); err != nil {
		return err
	}
	if opts.filter.SessionID, err = flags.GetString("session"); err != nil {
		return err
	}
	if opts.filter.Language, err = flags.GetString("lang"); err != nil {
		return err
	}
	if opts.filter.Limit, err = flags.GetInt("limit"); err != nil {
		return err
	}
	if opts.asJSON, err = flags.GetBool("json"); err != nil {
		return err
	}
	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	return writeHistory(cmd.Context(), cmd.OutOrStdout(), db, opts)
}

// writeHistory prints sessions or shown texts.
func writeHistory(ctx context.Context, w io.Writer, db *database.DB, opts historyOptions) error {
	if opts.sessions {
		sessions, err := db.Sessions(ctx)
		if err != nil {
			return err
		}
		if opts.asJSON {
			return encodeJSON(w, sessions)
		}
		if len(sessions) == 0 {
			fmt.Fprintln(w, "No feed sessions recorded yet.")
			return nil
		}
		rows := make([][]string, 0, len(sessions))
		for _, s := range sessions {
			rows = append(rows, []string{s.ID, formatTime(s.Started), strconv.Itoa(s.Shown)})
		}
		fmt.Fprintln(w, renderTable(
			[]string{"Session", "Started", "Texts"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight},
		))
		return nil
	}

	records, err := db.History(ctx, opts.filter)
	if err != nil {
		return err
	}
	if opts.asJSON {
		return encodeJSON(w, records)
	}
	if len(records) == 0 {
		fmt.Fprintln(w, "No texts shown yet. Run 'litfeed feed' to start reading.")
		return nil
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			formatTime(r.Timestamp),
			r.Title,
			r.Author,
			r.Genre,
			r.Language,
			r.Source.String(),
			shortFingerprint(r.Fingerprint),
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"Shown", "Title", "Author", "Genre", "Lang", "Source", "Text"},
		rows,
		nil,
	))
	return nil
}

func shortFingerprint(fp string) string {
	if len(fp) > fingerprintWidth {
		return fp[:fingerprintWidth]
	}
	return fp
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(historyTimeFormat)
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
