package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"careerdesk/internal/app"
	"careerdesk/internal/config"
	"careerdesk/internal/domain"
	"careerdesk/internal/logging"
	"careerdesk/internal/service"
)

// adminPasswordEnv lets scripts avoid passing the password on the command line.
const adminPasswordEnv = "CAREERDESK_ADMIN_PASSWORD"

type appLoader func(ctx context.Context) (*app.App, error)

// loadApp only needs the database section, so the full server validation is skipped.
func loadApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logging: %w", err)
	}
	return app.New(ctx, cfg, logger)
}

func newRootCmd(load appLoader) *cobra.Command {
	root := &cobra.Command{
		Use:           "careerdeskctl",
		Short:         "Maintenance commands for the careerdesk service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(load),
		newCreateAdminCmd(load),
		newSetRoleCmd(load),
		newReconcileCmd(load),
	)
	return root
}

// withApp builds the application for one command and closes it afterwards.
func withApp(cmd *cobra.Command, load appLoader, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := load(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.Logger.WithError(err).Warn("close database")
		}
	}()
	return fn(ctx, a)
}

func newMigrateCmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, load, func(_ context.Context, _ *app.App) error {
				fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
				return nil
			})
		},
	}
}

func newCreateAdminCmd(load appLoader) *cobra.Command {
	var name, email, password, phone string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account, or promote and reset an existing one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv(adminPasswordEnv)
			}
			if password == "" {
				return fmt.Errorf("password is required (--password or %s)", adminPasswordEnv)
			}
			return withApp(cmd, load, func(ctx context.Context, a *app.App) error {
				user, created, err := a.Users.EnsureAdmin(ctx, service.RegisterInput{
					Name:     name,
					Email:    email,
					Password: password,
					Phone:    phone,
				})
				if err != nil {
					return err
				}
				verb := "updated"
				if created {
					verb = "created"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s admin %s (id %d)\n", verb, user.Email, user.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email address")
	cmd.Flags().StringVar(&name, "name", "", "display name (kept when promoting an existing user)")
	cmd.Flags().StringVar(&password, "password", "", "password (min 8 characters)")
	cmd.Flags().StringVar(&phone, "phone", "", "contact phone")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newSetRoleCmd(load appLoader) *cobra.Command {
	var email, role string
	cmd := &cobra.Command{
		Use:   "set-role",
		Short: "Change the role of an existing user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			next := domain.Role(strings.ToLower(strings.TrimSpace(role)))
			if !next.Valid() {
				return fmt.Errorf("unknown role %q (want %s or %s)", role, domain.RoleUser, domain.RoleAdmin)
			}
			return withApp(cmd, load, func(ctx context.Context, a *app.App) error {
				user, err := a.Repos.Users.GetByEmail(ctx, domain.NormalizeEmail(email))
				if err != nil {
					if errors.Is(err, domain.ErrNotFound) {
						return fmt.Errorf("no user with email %s", email)
					}
					return err
				}
				updated, err := a.Users.UpdateRole(ctx, user.ID, next)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", updated.Email, updated.Role)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "user email address")
	cmd.Flags().StringVar(&role, "role", "", "user or admin")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func newReconcileCmd(load appLoader) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Refresh open payments from the gateway once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, load, func(ctx context.Context, a *app.App) error {
				refreshed, err := a.Payments.RefreshStale(ctx, olderThan)
				a.Logger.WithFields(logrus.Fields{
					"refreshed":  refreshed,
					"older_than": olderThan.String(),
				}).Info("reconcile finished")
				fmt.Fprintf(cmd.OutOrStdout(), "refreshed %d payments\n", refreshed)
				return err
			})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 10*time.Minute, "only payments untouched for at least this long")
	return cmd
}
