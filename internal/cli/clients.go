package cli

import (
	"context"
	"io"
	"strconv"

	"github.com/jrsteele09/materials-admin/clients"
	"github.com/spf13/cobra"
)

func NewClientsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "List and add clients",
	}
	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List clients",
		Args:    cobra.NoArgs,
		RunE: withApp(rootOpts, func(ctx context.Context, a *app, _ []string) error {
			store := clients.NewStore(a.api, a.tokens, a.storeOptions()...)
			if err := store.FetchAll(ctx); err != nil {
				return remoteError(a.out, err, store.Err())
			}
			return a.out.Success(ClientList{Clients: store.Items()})
		}),
	})
	cmd.AddCommand(newClientsAddCommand(rootOpts))
	return cmd
}

type ClientList struct {
	Clients []clients.Client `json:"clients" yaml:"clients"`
}

func (l ClientList) RenderText(out io.Writer) error {
	t := newTable("ID", "NAME", "PHONE", "EMAIL", "ADDRESS")
	for _, c := range l.Clients {
		t.add(strconv.FormatInt(c.ID, 10), c.Name, dash(c.Phone), dash(c.Email), dash(c.Address))
	}
	return t.write(out)
}

func newClientsAddCommand(rootOpts *RootOptions) *cobra.Command {
	var c clients.Client
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a client",
		Args:  cobra.NoArgs,
		RunE: withApp(rootOpts, func(ctx context.Context, a *app, _ []string) error {
			store := clients.NewStore(a.api, a.tokens, a.storeOptions()...)
			created, err := store.Add(ctx, c)
			if err != nil {
				return remoteError(a.out, err, store.Err())
			}
			return a.out.Success(ClientList{Clients: []clients.Client{created}})
		}),
	}
	cmd.Flags().StringVar(&c.Name, "name", "", "client name")
	cmd.Flags().StringVar(&c.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&c.Email, "email", "", "email address")
	cmd.Flags().StringVar(&c.Address, "address", "", "postal address")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
