package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/finanzas/internal/auth"
	"github.com/Veraticus/finanzas/internal/cli"
	"github.com/Veraticus/finanzas/internal/common"
	"github.com/Veraticus/finanzas/internal/model"
	"github.com/spf13/cobra"
)

func loginCmd() *cobra.Command {
	var (
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the backend",
		Long: `Exchange your username and password for a session token.

The password is read without echo when not passed as a flag.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(a *app) error {
				ctx := cmd.Context()
				prompter := cli.NewPrompter(cmd.InOrStdin(), a.out)

				var err error
				if username == "" {
					if username, err = prompter.AskRequired(ctx, "Username"); err != nil {
						return err
					}
				}
				if password == "" {
					if password, err = prompter.Password(ctx, "Password"); err != nil {
						return err
					}
				}

				sess, err := a.auth.Login(ctx, username, password)
				if err != nil {
					return err
				}

				fmt.Fprintln(a.out, cli.FormatSuccess(fmt.Sprintf("Logged in as %s", sess.User.Username)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")

	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(a *app) error {
				if err := a.auth.Logout(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(a.out, cli.FormatSuccess("Logged out"))
				return nil
			})
		},
	}
}

func registerCmd() *cobra.Command {
	var (
		password string
		roleID   int64
	)

	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create a backend user account",
		Long: `Create a new user. The current session, if any, is left untouched;
run 'finanzas login' afterwards to use the new account.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				ctx := cmd.Context()
				prompter := cli.NewPrompter(cmd.InOrStdin(), a.out)

				if password == "" {
					first, err := prompter.Password(ctx, "Password")
					if err != nil {
						return err
					}
					again, err := prompter.Password(ctx, "Repeat password")
					if err != nil {
						return err
					}
					if first != again {
						return common.NewUserError("Passwords do not match.", nil)
					}
					password = first
				}

				if err := a.auth.Register(ctx, model.NewRegistration(args[0], password, roleID)); err != nil {
					return err
				}

				fmt.Fprintln(a.out, cli.FormatSuccess(fmt.Sprintf("User %s created", args[0])))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	cmd.Flags().Int64Var(&roleID, "role", auth.DefaultRoleID, "role ID to assign")

	return cmd
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(a *app) error {
				sess := a.store.Session()
				if !sess.Active() {
					fmt.Fprintln(a.out, cli.FormatInfo("Not logged in"))
					return nil
				}

				lines := []string{
					fmt.Sprintf("Username:  %s", sess.User.Username),
					fmt.Sprintf("Backend:   %s", a.client.BaseURL()),
				}
				if sess.User.Email != "" {
					lines = append(lines, fmt.Sprintf("Email:     %s", sess.User.Email))
				}

				info, err := auth.ParseTokenInfo(sess.Token)
				switch {
				case err != nil:
					lines = append(lines, fmt.Sprintf("Token:     %s (opaque)", common.MaskToken(sess.Token)))
				case info.ExpiresAt.IsZero():
					lines = append(lines, "Expires:   never")
				case info.Expired(time.Now()):
					lines = append(lines, cli.WarningStyle.Render(fmt.Sprintf("Expired:   %s", info.ExpiresAt.Local().Format(time.RFC1123))))
				default:
					lines = append(lines, fmt.Sprintf("Expires:   %s", info.ExpiresAt.Local().Format(time.RFC1123)))
				}

				fmt.Fprintln(a.out, cli.RenderBox(cli.LockIcon+" Session", strings.Join(lines, "\n")))
				return nil
			})
		},
	}
}
