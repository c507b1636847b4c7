package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sujalbistaa/suara/pkg/client"
)

func (a *app) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if email == "" {
				if email, err = a.prompt(cmd, "Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = a.promptPassword(cmd, "Password: "); err != nil {
					return err
				}
			}

			sess, err := a.client().Login(commandContext(cmd), email, password)
			if err != nil {
				return err
			}
			if err := a.settings.SaveSession(sess.Token, sess.User.ID, sess.User.Username); err != nil {
				return err
			}
			a.log.Debug("Saved session", "path", a.settings.Path(), "expires", sess.ExpiresAt)

			return a.out.Object(sess.User, func(w io.Writer) {
				a.out.Success("Logged in as %s (%s)", sess.User.Username, sess.User.Role)
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	return cmd
}

func (a *app) registerCmd() *cobra.Command {
	var in client.RegisterInput

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Password == "" {
				pw, err := a.promptPassword(cmd, "Password: ")
				if err != nil {
					return err
				}
				in.Password = pw
			}

			sess, err := a.client().Register(commandContext(cmd), in)
			if err != nil {
				return err
			}
			if err := a.settings.SaveSession(sess.Token, sess.User.ID, sess.User.Username); err != nil {
				return err
			}
			return a.out.Object(sess.User, func(w io.Writer) {
				a.out.Success("Registered %s <%s>", sess.User.Username, sess.User.Email)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Email, "email", "", "Campus email")
	f.StringVar(&in.Username, "username", "", "Display name (3-50 characters)")
	f.StringVar(&in.Password, "password", "", "Password, at least 6 characters (prompted when omitted)")
	f.StringVar(&in.NIM, "nim", "", "Student number")
	f.StringVar(&in.Gender, "gender", "", "Gender")
	f.StringVar(&in.Jurusan, "jurusan", "", "Major")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.settings.ClearSession(); err != nil {
				return err
			}
			a.out.Success("Logged out")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			me, err := c.Me(commandContext(cmd))
			if err != nil {
				if client.IsUnauthorized(err) {
					return fmt.Errorf("session expired, run 'suaractl login' again")
				}
				return err
			}
			return a.out.Object(me, func(w io.Writer) {
				bold.Fprintln(w, me.Username)
				fmt.Fprintf(w, "  id:    %s\n  email: %s\n  role:  %s\n", me.ID, me.Email, me.Role)
				if me.Jurusan != "" {
					fmt.Fprintf(w, "  major: %s\n", me.Jurusan)
				}
			})
		},
	}
}

func (a *app) prompt(cmd *cobra.Command, label string) (string, error) {
	if a.stdin == nil {
		a.stdin = bufio.NewReader(cmd.InOrStdin())
	}
	fmt.Fprint(cmd.ErrOrStderr(), label)
	line, err := a.stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads without echo on a terminal and falls back to a plain
// line read when stdin is piped.
func (a *app) promptPassword(cmd *cobra.Command, label string) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	return a.prompt(cmd, label)
}
