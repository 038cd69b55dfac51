// Package cli implements adminctl, the operator command line for the admin
// API. The token is kept in a local file between invocations.
package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/jrsteele09/materials-admin/apiclient"
	"github.com/jrsteele09/materials-admin/internal/config"
	"github.com/jrsteele09/materials-admin/resource"
	"github.com/jrsteele09/materials-admin/session"
	"github.com/jrsteele09/materials-admin/tokenstore/filestore"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose   bool
	Format    string // "text" | "json" | "yaml"
	APIURL    string
	TokenFile string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command. Flag defaults come from the
// environment.
func NewRootCommand() *cobra.Command {
	cfg := config.New()
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "adminctl",
		Short: "Manage materials, clients and purchases",
		Long: `adminctl talks to the materials admin API.

Log in once with "adminctl login"; the session token is stored in the token
file and reused by every other command until "adminctl logout".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				msg := fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
				out := &OutputFormatter{Format: "text", Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr()}
				return usageError(out, msg, nil)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.APIURL, "api-url", cfg.GetAPIBaseURL(), "admin API base URL")
	cmd.PersistentFlags().StringVar(&opts.TokenFile, "token-file", cfg.GetTokenFile(), "where the session token is kept")

	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewRegisterCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewWhoAmICommand(opts))
	cmd.AddCommand(NewMaterialsCommand(opts))
	cmd.AddCommand(NewClientsCommand(opts))
	cmd.AddCommand(NewPurchasesCommand(opts))
	cmd.AddCommand(NewSummaryCommand(opts))

	return cmd
}

// app is what a command needs to talk to the API.
type app struct {
	opts    *RootOptions
	out     *OutputFormatter
	api     *apiclient.Client
	tokens  *filestore.Store
	session *session.Manager
	logger  zerolog.Logger
}

func newApp(opts *RootOptions, cmd *cobra.Command) (*app, error) {
	cfg := config.New()
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	level := zerolog.WarnLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true}).Level(level).With().Timestamp().Logger()

	api, err := apiclient.New(opts.APIURL,
		apiclient.WithTimeout(cfg.GetAPITimeout()),
		apiclient.WithLogger(logger),
	)
	if err != nil {
		return nil, usageError(out, err.Error(), err)
	}

	var storeOpts []filestore.Option
	if pass := cfg.GetTokenPassphrase(); pass != "" {
		storeOpts = append(storeOpts, filestore.WithPassphrase(pass))
	}
	tokens := filestore.New(opts.TokenFile, storeOpts...)

	out.VerboseLog("api: %s", api.BaseURL())
	out.VerboseLog("token file: %s", tokens.Path())

	return &app{
		opts:    opts,
		out:     out,
		api:     api,
		tokens:  tokens,
		session: session.New(api, tokens, session.WithLogger(logger)),
		logger:  logger,
	}, nil
}

func (a *app) storeOptions() []resource.Option {
	return []resource.Option{resource.WithLogger(a.logger)}
}

// withApp adapts a command body that needs an app to cobra's RunE.
func withApp(opts *RootOptions, run func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(opts, cmd)
		if err != nil {
			return err
		}
		return run(cmd.Context(), a, args)
	}
}
