package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	financeapp "github.com/sparkcode/dashboard/internal/application/finance"
	identityapp "github.com/sparkcode/dashboard/internal/application/identity"
	teamapp "github.com/sparkcode/dashboard/internal/application/team"
	"github.com/sparkcode/dashboard/internal/bootstrap"
	"github.com/sparkcode/dashboard/internal/domain/identity"
	"github.com/sparkcode/dashboard/internal/infrastructure/config"
	"github.com/sparkcode/dashboard/internal/infrastructure/logger"
	"github.com/sparkcode/dashboard/internal/infrastructure/printing"
)

// operator is the actor recorded in the activity feed for CLI writes.
var operator = &identity.Session{UserID: "dashctl", Name: "dashctl", Role: identity.RoleAdmin}

// app holds what the commands share. A nil cfg or log is loaded on setup.
type app struct {
	cfg  *config.Config
	log  *zap.Logger
	core *bootstrap.Core
}

func (a *app) setup(cmd *cobra.Command, logLevel string) error {
	if a.cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if a.log == nil {
		log, err := logger.New(logger.Config{Level: logLevel, Format: "console", Output: "stderr"})
		if err != nil {
			return err
		}
		a.log = log
	}
	core, err := bootstrap.Open(cmd.Context(), a.cfg, a.log)
	if err != nil {
		return err
	}
	a.core = core
	return nil
}

func (a *app) teardown() error {
	if a.core == nil {
		return nil
	}
	err := a.core.Close()
	a.core = nil
	return err
}

func newRootCmd(a *app) *cobra.Command {
	var logLevel string
	root := &cobra.Command{
		Use:           "dashctl",
		Short:         "Administer the SparkCode dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, logLevel)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.AddCommand(newUsersCmd(a), newTeamCmd(a), newFinanceCmd(a))
	return root
}

func newUsersCmd(a *app) *cobra.Command {
	users := &cobra.Command{Use: "users", Short: "Manage dashboard logins"}

	var input identityapp.CreateUserInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a login and its profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := identityapp.NewUserService(a.core.Credentials, a.core.Store, a.log)
			info, err := svc.CreateUser(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", info.ID, info.Email, info.RoleLabel)
			return nil
		},
	}
	create.Flags().StringVar(&input.Email, "email", "", "Login e-mail")
	create.Flags().StringVar(&input.Password, "password", "", "Initial password")
	create.Flags().StringVar(&input.Name, "name", "", "Display name (defaults to the e-mail's local part)")
	create.Flags().BoolVar(&input.Admin, "admin", false, "Grant the admin role")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")

	setRole := &cobra.Command{
		Use:   "set-role <user-id> <admin|member>",
		Short: "Change a user's role; it applies at their next login or refresh",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := identity.ParseRole(args[1])
			if role != identity.RoleAdmin && role != identity.RoleMember {
				return fmt.Errorf("unknown role %q, want admin or member", args[1])
			}
			svc := identityapp.NewUserService(a.core.Credentials, a.core.Store, a.log)
			if err := svc.SetRole(cmd.Context(), args[0], role); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", args[0], identity.FormatRole(string(role)))
			return nil
		},
	}

	users.AddCommand(create, setRole)
	return users
}

func newTeamCmd(a *app) *cobra.Command {
	teamCmd := &cobra.Command{Use: "team", Short: "Manage the agency team"}
	teamCmd.AddCommand(&cobra.Command{
		Use:   "seed-founders",
		Short: "Add the founding members (again, if they already exist)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := teamapp.NewService(a.core.Store, a.core.Recorder, a.log)
			members, err := svc.SeedFounders(cmd.Context(), operator)
			if err != nil {
				return err
			}
			for _, m := range members {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", m.ID, m.Name, m.Role)
			}
			return nil
		},
	})
	return teamCmd
}

func newFinanceCmd(a *app) *cobra.Command {
	financeCmd := &cobra.Command{Use: "finance", Short: "Finance ledger"}

	var format, out string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write the transactions as CSV or the statement as PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []financeapp.Option
			format = strings.ToLower(format)
			switch format {
			case "csv":
			case "pdf":
				renderer := printing.NewChromedpRenderer(a.cfg.PDF, a.log)
				defer func() { _ = renderer.Close() }()
				opts = append(opts, financeapp.WithPrinter(printing.NewStatementPrinter(renderer)))
			default:
				return fmt.Errorf("unknown format %q, want csv or pdf", format)
			}

			svc := financeapp.NewService(a.core.Store, a.core.Recorder, a.log, opts...)
			var file *financeapp.Export
			var err error
			if format == "pdf" {
				file, err = svc.StatementPDF(cmd.Context())
			} else {
				file, err = svc.CSV(cmd.Context())
			}
			if err != nil {
				return err
			}
			return writeExport(cmd.OutOrStdout(), out, file)
		},
	}
	export.Flags().StringVar(&format, "format", "csv", "csv or pdf")
	export.Flags().StringVarP(&out, "out", "o", "", "Output file or directory; - writes to stdout (default: the export's filename)")

	financeCmd.AddCommand(export)
	return financeCmd
}

// writeExport writes to stdout for "-", into dir/<filename> for a directory
// and to the path otherwise.
func writeExport(stdout io.Writer, out string, export *financeapp.Export) error {
	if out == "-" {
		_, err := stdout.Write(export.Data)
		return err
	}
	path := out
	if path == "" {
		path = export.Filename
	} else if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, export.Filename)
	}
	if err := os.WriteFile(path, export.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintln(stdout, path)
	return nil
}
