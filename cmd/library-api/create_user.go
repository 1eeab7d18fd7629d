package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bookshelf/library-api/internal/core/domain"
	"github.com/bookshelf/library-api/internal/core/ports"
	"github.com/bookshelf/library-api/internal/core/service"
	"github.com/bookshelf/library-api/internal/infrastructure/config"
	"github.com/bookshelf/library-api/internal/infrastructure/security"
	"github.com/bookshelf/library-api/pkg/logger"
)

type createUserOptions struct {
	username string
	password string
	email    string
	fullName string
}

// NewCreateUserCmd creates the create-user subcommand used to seed accounts.
func NewCreateUserCmd() *cobra.Command {
	var opts createUserOptions
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user account",
		Long: `Create a user directly in the configured store. Running it again for an
existing username reports the account and exits successfully.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCreateUser(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.username, "username", "", "account username")
	cmd.Flags().StringVar(&opts.password, "password", "", "account password")
	cmd.Flags().StringVar(&opts.email, "email", "", "optional email address")
	cmd.Flags().StringVar(&opts.fullName, "full-name", "", "optional display name")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func runCreateUser(cmd *cobra.Command, opts createUserOptions) error {
	ctx := cmd.Context()

	username := strings.TrimSpace(opts.username)
	if username == "" || opts.password == "" {
		return errors.New("username and password must not be empty")
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := cfg.ValidateStore(); err != nil {
		return err
	}

	logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Pretty(),
		Service: "library-api",
		Version: version,
		Output:  cmd.ErrOrStderr(),
	})

	st, err := openStore(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer st.close()

	users := service.NewUserService(st.users, security.NewBcryptHasher(cfg.Auth.BcryptCost), logger.Component("users"))
	u, err := users.Create(ctx, ports.CreateUserInput{
		Username: username,
		Password: opts.password,
		Email:    optional(opts.email),
		FullName: optional(opts.fullName),
	})

	var conflict *domain.ConflictError
	switch {
	case errors.As(err, &conflict) && conflict.Field == "username":
		cmd.Printf("User %q already exists\n", username)
		return nil
	case err != nil:
		return err
	}

	cmd.Printf("Created user %q (id %d)\n", u.Username, u.ID)
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
