// Package cli implements suaractl, the command-line client for the suara
// API plus a few operator commands that talk to the database directly.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sujalbistaa/suara/pkg/client"
)

// app is the state shared by every command of one invocation.
type app struct {
	configPath string
	verbose    bool
	output     string

	settings *Settings
	log      *log.Logger
	out      *printer
	stdin    *bufio.Reader
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "suaractl",
		Short:         "suaractl - command-line client for suara",
		Long:          "suaractl talks to a suara server: log in, browse and write posts,\nreact and comment, and run operator tasks against the database.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to config file (default: ~/.config/suara/config.toml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output")
	flags.StringVarP(&a.output, "output", "o", "text", "Output format: text, json")

	root.AddCommand(
		a.loginCmd(),
		a.registerCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.postsCmd(),
		a.reactCmd(),
		a.commentsCmd(),
		a.notificationsCmd(),
		a.adminCmd(),
		a.seedCmd(),
		a.watchCmd(),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		newPrinter(os.Stdout, os.Stderr, "text").Error("%v", err)
		os.Exit(1)
	}
}

func (a *app) init(stdout, stderr io.Writer) error {
	if a.output != "text" && a.output != "json" {
		return fmt.Errorf("unknown output format %q", a.output)
	}

	settings, err := LoadSettings(a.configPath)
	if err != nil {
		return err
	}
	a.settings = settings

	a.log = log.NewWithOptions(stderr, log.Options{Prefix: "suaractl"})
	a.log.SetLevel(log.WarnLevel)
	if a.verbose {
		a.log.SetLevel(log.DebugLevel)
	}
	a.log.Debug("Loaded config", "path", settings.Path(), "api", settings.BaseURL())

	a.out = newPrinter(stdout, stderr, a.output)
	return nil
}

func (a *app) client() *client.Client {
	timeout := time.Duration(a.settings.TimeoutSeconds()) * time.Second
	return client.New(a.settings.BaseURL(),
		client.WithToken(a.settings.Token()),
		client.WithTimeout(timeout),
		client.WithLogger(a.log),
	)
}

// authedClient fails early when no login is stored.
func (a *app) authedClient() (*client.Client, error) {
	if a.settings.Token() == "" {
		return nil, fmt.Errorf("not logged in, run 'suaractl login' first")
	}
	return a.client(), nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
