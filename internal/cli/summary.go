package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/jrsteele09/materials-admin/clients"
	"github.com/jrsteele09/materials-admin/materials"
	"github.com/jrsteele09/materials-admin/purchases"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const topClients = 5

func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show stock value, revenue and the best clients",
		Args:  cobra.NoArgs,
		RunE: withApp(rootOpts, func(ctx context.Context, a *app, _ []string) error {
			return runSummary(ctx, a)
		}),
	}
}

type ClientSpend struct {
	ClientID  int64   `json:"clientId" yaml:"clientId"`
	Name      string  `json:"name" yaml:"name"`
	Purchases int     `json:"purchases" yaml:"purchases"`
	Total     float64 `json:"total" yaml:"total"`
}

// Summary is the result of "summary".
type Summary struct {
	Materials  int           `json:"materials" yaml:"materials"`
	Clients    int           `json:"clients" yaml:"clients"`
	Purchases  int           `json:"purchases" yaml:"purchases"`
	StockValue float64       `json:"stockValue" yaml:"stockValue"`
	Revenue    float64       `json:"revenue" yaml:"revenue"`
	TopClients []ClientSpend `json:"topClients" yaml:"topClients"`
}

func runSummary(ctx context.Context, a *app) error {
	mats := materials.NewStore(a.api, a.tokens, a.storeOptions()...)
	cls := clients.NewStore(a.api, a.tokens, a.storeOptions()...)
	buys := purchases.NewStore(a.api, a.tokens, a.storeOptions()...)

	var g errgroup.Group
	g.Go(func() error { return mats.FetchAll(ctx) })
	g.Go(func() error { return cls.FetchAll(ctx) })
	g.Go(func() error { return buys.FetchAll(ctx) })
	if err := g.Wait(); err != nil {
		msg := firstNonEmpty(mats.Err(), cls.Err(), buys.Err())
		return remoteError(a.out, err, msg)
	}

	s := Summary{
		Materials:  len(mats.Items()),
		Clients:    len(cls.Items()),
		Purchases:  len(buys.Items()),
		TopClients: []ClientSpend{},
	}
	for _, m := range mats.Items() {
		s.StockValue += m.StockValue()
	}
	for _, p := range buys.Items() {
		s.Revenue += p.Total()
	}

	names := clients.ByID(cls.Items())
	for i, ct := range purchases.TotalsByClient(buys.Items()) {
		if i == topClients {
			break
		}
		name := names[ct.ClientID].Name
		if name == "" {
			name = fmt.Sprintf("client %d", ct.ClientID)
		}
		s.TopClients = append(s.TopClients, ClientSpend{ClientID: ct.ClientID, Name: name, Purchases: ct.Purchases, Total: ct.Total})
	}
	return a.out.Success(s)
}

func (s Summary) RenderText(out io.Writer) error {
	_, err := fmt.Fprintf(out, "Materials: %d\nClients: %d\nPurchases: %d\nStock value: %s\nRevenue: %s\n",
		s.Materials, s.Clients, s.Purchases, money(s.StockValue), money(s.Revenue))
	if err != nil || len(s.TopClients) == 0 {
		return err
	}
	if _, err := io.WriteString(out, "\n"); err != nil {
		return err
	}
	t := newTable("CLIENT", "NAME", "PURCHASES", "TOTAL")
	for _, c := range s.TopClients {
		t.add(strconv.FormatInt(c.ClientID, 10), c.Name, strconv.Itoa(c.Purchases), money(c.Total))
	}
	return t.write(out)
}

// currentPrice looks up a material's unit price.
func currentPrice(ctx context.Context, a *app, materialID int64) (float64, error) {
	store := materials.NewStore(a.api, a.tokens, a.storeOptions()...)
	if err := store.FetchAll(ctx); err != nil {
		return 0, remoteError(a.out, err, store.Err())
	}
	m, ok := store.Find(materialID)
	if !ok {
		return 0, usageError(a.out, "no material with id "+strconv.FormatInt(materialID, 10), nil)
	}
	return m.Price, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
