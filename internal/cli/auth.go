package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jrsteele09/materials-admin/session"
	"github.com/jrsteele09/materials-admin/token"
	"github.com/jrsteele09/materials-admin/users"
	"github.com/spf13/cobra"
)

type loginOptions struct {
	email    string
	password string
}

func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &loginOptions{}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Args:  cobra.NoArgs,
		RunE: withApp(rootOpts, func(ctx context.Context, a *app, _ []string) error {
			return runLogin(ctx, a, opts)
		}),
	}
	cmd.Flags().StringVar(&opts.email, "email", "", "account email")
	cmd.Flags().StringVar(&opts.password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func runLogin(ctx context.Context, a *app, opts *loginOptions) error {
	err := a.session.Login(ctx, users.Credentials{Email: opts.email, Password: opts.password})
	if err != nil {
		return remoteError(a.out, err, a.session.State().Error)
	}
	return a.out.Success(newWhoAmI(a, a.session.User()))
}

type registerOptions struct {
	fullName string
	email    string
	password string
}

func NewRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &registerOptions{}
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: withApp(rootOpts, func(ctx context.Context, a *app, _ []string) error {
			err := a.session.Register(ctx, users.Registration{FullName: opts.fullName, Email: opts.email, Password: opts.password})
			if err != nil {
				return remoteError(a.out, err, a.session.State().Error)
			}
			return a.out.Success(newWhoAmI(a, a.session.User()))
		}),
	}
	cmd.Flags().StringVar(&opts.fullName, "name", "", "full name")
	cmd.Flags().StringVar(&opts.email, "email", "", "account email")
	cmd.Flags().StringVar(&opts.password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: withApp(rootOpts, func(ctx context.Context, a *app, _ []string) error {
			if err := a.session.Logout(ctx); err != nil {
				return usageError(a.out, "could not clear the token file", err)
			}
			return a.out.Success(message("Logged out"))
		}),
	}
}

func NewWhoAmICommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Validate the stored session and show the user",
		Args:  cobra.NoArgs,
		RunE: withApp(rootOpts, func(ctx context.Context, a *app, _ []string) error {
			v := a.session.CheckAuth(ctx)
			if !v.OK() {
				return invalidSession(a.out, v)
			}
			return a.out.Success(newWhoAmI(a, v.User()))
		}),
	}
}

func invalidSession(out *OutputFormatter, v session.Validation) error {
	switch v.Reason() {
	case session.ReasonNoToken:
		_ = out.Error(ErrCodeAuth, notLoggedIn, nil)
		return WrapExitError(ExitAuth, notLoggedIn, v.Err())
	case session.ReasonNetwork:
		return remoteError(out, v.Err(), "Could not reach the API")
	}
	msg := fmt.Sprintf("session %s, run \"adminctl login\"", v.Reason())
	out.VerboseLog("session check failed: %v", v.Err())
	_ = out.Error(ErrCodeAuth, msg, nil)
	return WrapExitError(ExitAuth, msg, v.Err())
}

// WhoAmI describes the logged in user and what is known about the token.
type WhoAmI struct {
	ID        int64  `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Email     string `json:"email,omitempty" yaml:"email,omitempty"`
	ExpiresAt string `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"` // RFC 3339, JWT tokens only
	TokenFile string `json:"tokenFile" yaml:"tokenFile"`
}

func newWhoAmI(a *app, u *users.User) WhoAmI {
	w := WhoAmI{TokenFile: a.tokens.Path()}
	if u != nil {
		w.ID = u.ID
		w.Name = u.DisplayName()
		w.Email = u.Email
	}
	if raw, err := a.tokens.Get(context.Background()); err == nil {
		if info, err := token.Inspect(raw); err == nil {
			if exp, ok := info.ExpiresAt(); ok {
				w.ExpiresAt = exp.UTC().Format(time.RFC3339)
			}
		}
	}
	return w
}

func (w WhoAmI) RenderText(out io.Writer) error {
	line := fmt.Sprintf("Logged in as %s", w.Name)
	if w.Email != "" && w.Email != w.Name {
		line += fmt.Sprintf(" <%s>", w.Email)
	}
	if _, err := fmt.Fprintln(out, line); err != nil {
		return err
	}
	if w.ExpiresAt != "" {
		if _, err := fmt.Fprintf(out, "Session expires %s\n", w.ExpiresAt); err != nil {
			return err
		}
	}
	return nil
}

// message is a one-line result.
type message string

func (m message) RenderText(out io.Writer) error {
	_, err := fmt.Fprintln(out, string(m))
	return err
}
