package main

import (
	"github.com/spf13/cobra"

	"github.com/bookshelf/library-api/internal/infrastructure/config"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Apply pending SQL migrations (postgres) or create the unique indexes
(mongo) for the configured DB_DRIVER.`,
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := cfg.ValidateStore(); err != nil {
		return err
	}

	cmd.Printf("Preparing %s store...\n", cfg.Store.Driver)
	st, err := openStore(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer st.close()

	cmd.Println("Migrations completed successfully")
	return nil
}
