package cmd

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/todoscan/internal/config"
	"github.com/harrison/todoscan/internal/display"
	"github.com/harrison/todoscan/internal/history"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded scan runs",
		Long: `List the scans recorded in the history database configured by
history_db, newest first. With a run ID, print the entries that run wrote.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistory,
	}

	cmd.Flags().Int("limit", 10, "Maximum number of runs to list (0 = all)")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config-file")
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.HistoryDB == "" {
		return fmt.Errorf("history is disabled: set history_db in %s", configPath)
	}

	store, err := history.NewStore(cfg.HistoryDB)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		run, err := store.GetRun(ctx, args[0])
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("run %s not found", args[0])
		}
		if err != nil {
			return err
		}
		entries, err := store.Entries(ctx, run.ID)
		if err != nil {
			return err
		}
		display.DisplayRuns(out, []*history.Run{run}, time.Now())
		fmt.Fprintln(out)
		for _, e := range entries {
			fmt.Fprintln(out, e.Rendered)
		}
		return nil
	}

	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	display.DisplayRuns(out, runs, time.Now())
	return nil
}
