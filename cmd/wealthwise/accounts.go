package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamthamc/wealthwise/internal/model"
	"github.com/kamthamc/wealthwise/internal/storage"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage ledger accounts",
	}
	cmd.AddCommand(accountsListCmd())
	cmd.AddCommand(accountsAddCmd())
	return cmd
}

func accountsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			accounts, err := store.ListAccounts(cmd.Context())
			if err != nil {
				return err
			}
			if len(accounts) == 0 {
				cmd.Println("No accounts yet. Add one with: wealthwise accounts add <name>")
				return nil
			}
			for _, account := range accounts {
				cmd.Printf("%-38s %-24s %s\n", account.ID, account.Name, account.Currency)
			}
			return nil
		},
	}
}

func accountsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			currency, _ := cmd.Flags().GetString("currency")

			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			account := &model.Account{Name: args[0], Currency: currency}
			if err := store.CreateAccount(cmd.Context(), account); err != nil {
				return err
			}
			cmd.Printf("Created account %s (%s)\n", account.ID, account.Name)
			return nil
		},
	}
	cmd.Flags().String("currency", "INR", "account currency")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()
			cmd.Println("Database schema is up to date.")
			return nil
		},
	}
}

// openStore opens the configured database and applies migrations.
func openStore(cmd *cobra.Command) (*storage.SQLiteStorage, error) {
	dbPath, err := databasePath()
	if err != nil {
		return nil, err
	}
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(cmd.Context()); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return store, nil
}
