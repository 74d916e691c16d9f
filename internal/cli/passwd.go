package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"qrmenu/internal/config"
	"qrmenu/internal/models"
	"qrmenu/internal/store"
)

// PasswdOptions holds the flags of the passwd command.
type PasswdOptions struct {
	Password string
	Create   bool
	Reset2FA bool
}

// userAdmin is the part of store.UserStore the passwd command needs.
type userAdmin interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, username, password string) (*models.User, error)
	UpdatePassword(ctx context.Context, username, newPassword string) error
	ResetTOTP(ctx context.Context, userID int64) error
}

// NewPasswdCommand creates the passwd command.
func NewPasswdCommand(_ *RootOptions) *cobra.Command {
	opts := &PasswdOptions{}

	cmd := &cobra.Command{
		Use:   "passwd <username>",
		Short: "Set the admin password or reset two-factor authentication",
		Long: `Set the password of an admin user.

The new password is taken from --password or, when that flag is absent,
from the first line of standard input. With --reset-2fa alone the password
is left unchanged and only two-factor authentication is turned off.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := opts.Password
			if !cmd.Flags().Changed("password") && !(opts.Reset2FA && !opts.Create) {
				var err error
				if password, err = readPassword(cmd.InOrStdin()); err != nil {
					return err
				}
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			return runPasswd(cmd.Context(), store.NewUserStore(db), args[0], password, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.Password, "password", "p", "", "new password (read from stdin when omitted)")
	cmd.Flags().BoolVar(&opts.Create, "create", false, "create the user if it does not exist")
	cmd.Flags().BoolVar(&opts.Reset2FA, "reset-2fa", false, "disable two-factor authentication")

	return cmd
}

// readPassword returns the first line of r without its line ending.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("read password: no password given")
	}
	return line, nil
}

func runPasswd(ctx context.Context, users userAdmin, username, password string, opts *PasswdOptions, out io.Writer) error {
	user, err := users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}

	switch {
	case user == nil && opts.Create:
		if user, err = users.Create(ctx, username, password); err != nil {
			return err
		}
		fmt.Fprintf(out, "user %s created\n", username)
	case user == nil:
		return fmt.Errorf("user %q does not exist (use --create)", username)
	case password != "":
		if err := users.UpdatePassword(ctx, username, password); err != nil {
			return err
		}
		fmt.Fprintf(out, "password for %s updated\n", username)
	}

	if opts.Reset2FA {
		if err := users.ResetTOTP(ctx, user.ID); err != nil {
			return err
		}
		fmt.Fprintf(out, "two-factor authentication disabled for %s\n", username)
	}
	return nil
}
