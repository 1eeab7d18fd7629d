package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the library-api CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library-api",
		Short: "Library API - users and books over HTTP",
		Long: `library-api serves an authenticated CRUD API for users and books.
Configuration is read from the environment (JWT_SECRET, DB_DRIVER, DB_URL, ...).`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewCreateUserCmd())

	return cmd
}
