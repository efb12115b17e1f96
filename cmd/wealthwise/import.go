package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kamthamc/wealthwise/internal/cli"
	"github.com/kamthamc/wealthwise/internal/importer"
	"github.com/kamthamc/wealthwise/internal/parse"
	"github.com/kamthamc/wealthwise/internal/review"
	"github.com/kamthamc/wealthwise/internal/service"
	"github.com/kamthamc/wealthwise/internal/storage"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a bank statement with duplicate detection",
		Long: `Import transactions from a bank statement export.

Each row is checked against the ledger; flagged duplicates default to
skip and require an explicit decision before commit.

Examples:
  wealthwise import --account acct-1 ~/Downloads/hdfc_statement.csv
  wealthwise import --account acct-1 --yes statement.xlsx
  wealthwise import --account acct-1 --no-duplicate-check chase.qfx`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().StringP("account", "a", "", "account to import into (required)")
	cmd.Flags().BoolP("yes", "y", false, "accept proposed mapping and default actions without prompting")
	cmd.Flags().Bool("no-duplicate-check", false, "import without duplicate detection (higher risk)")
	cmd.Flags().Int("window-days", 0, "duplicate detection date window (default from config)")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	accountID, _ := cmd.Flags().GetString("account")
	autoYes, _ := cmd.Flags().GetBool("yes")
	skipCheck, _ := cmd.Flags().GetBool("no-duplicate-check")
	windowDays, _ := cmd.Flags().GetInt("window-days")
	if windowDays <= 0 {
		windowDays = viper.GetInt("import.window_days")
	}

	filePath := args[0]
	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filePath, err)
	}

	dbPath, err := databasePath()
	if err != nil {
		return err
	}
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	prompter.AutoConfirm = autoYes

	pipeline := importer.New(store, parse.DefaultRegistry(nil), prompter, importer.Options{
		WindowDays:         windowDays,
		SkipDuplicateCheck: skipCheck,
		Retry:              service.RetryOptions{MaxAttempts: 3},
	})

	committer := review.NewCommitter(store).WithProgress(func(total int) *progressbar.ProgressBar {
		return progressbar.NewOptions(total,
			progressbar.OptionSetWriter(cmd.OutOrStdout()),
			progressbar.OptionSetDescription("Committing"),
			progressbar.OptionShowCount(),
		)
	})

	stats, err := pipeline.Run(ctx, accountID, filepath.Base(filePath), content, committer)
	if errors.Is(err, importer.ErrCanceled) {
		cmd.Println("Import canceled; nothing was committed.")
		return nil
	}
	if err != nil {
		return err
	}

	cmd.Println()
	cmd.Println(cli.SuccessStyle.Render(fmt.Sprintf(
		"Imported %d, updated %d, skipped %d", stats.Created, stats.Updated, stats.Skipped)))
	if stats.Failed > 0 {
		cmd.Println(cli.ErrorStyle.Render(fmt.Sprintf(
			"%d row(s) failed; see the log and rows %v", stats.Failed, failedRowNumbers(stats))))
	}
	return nil
}

// failedRowNumbers reports 1-based review-order row numbers.
func failedRowNumbers(stats service.CommitStats) []int {
	rows := make([]int, len(stats.FailedAt))
	for i, idx := range stats.FailedAt {
		rows[i] = idx + 1
	}
	return rows
}
