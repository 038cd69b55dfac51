package cli

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/jrsteele09/materials-admin/purchases"
	"github.com/spf13/cobra"
)

func NewPurchasesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purchases",
		Short: "List and record purchases",
	}
	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List purchases",
		Args:    cobra.NoArgs,
		RunE: withApp(rootOpts, func(ctx context.Context, a *app, _ []string) error {
			store := purchases.NewStore(a.api, a.tokens, a.storeOptions()...)
			if err := store.FetchAll(ctx); err != nil {
				return remoteError(a.out, err, store.Err())
			}
			list := PurchaseList{Purchases: store.Items()}
			for _, p := range list.Purchases {
				list.Revenue += p.Total()
			}
			return a.out.Success(list)
		}),
	})
	cmd.AddCommand(newPurchasesAddCommand(rootOpts))
	return cmd
}

type PurchaseList struct {
	Purchases []purchases.Purchase `json:"purchases" yaml:"purchases"`
	Revenue   float64              `json:"revenue" yaml:"revenue"`
}

func (l PurchaseList) RenderText(out io.Writer) error {
	t := newTable("ID", "DATE", "CLIENT", "MATERIAL", "QTY", "PRICE", "TOTAL")
	for _, p := range l.Purchases {
		t.add(strconv.FormatInt(p.ID, 10), dash(p.Date), strconv.FormatInt(p.ClientID, 10),
			strconv.FormatInt(p.MaterialID, 10), qty(p.Quantity), money(p.Price), money(p.Total()))
	}
	if err := t.write(out); err != nil {
		return err
	}
	_, err := io.WriteString(out, "Revenue: "+money(l.Revenue)+"\n")
	return err
}

// NowTimeFunc supplies the default purchase date.
var NowTimeFunc = time.Now

func newPurchasesAddCommand(rootOpts *RootOptions) *cobra.Command {
	var p purchases.Purchase
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a purchase",
		Long: `Record a purchase. Without --price the material's current unit price
is used; without --date today's date is used.`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = withApp(rootOpts, func(ctx context.Context, a *app, _ []string) error {
		if p.ClientID <= 0 || p.MaterialID <= 0 {
			return usageError(a.out, "--client and --material must be positive ids", nil)
		}
		if p.Date == "" {
			p.Date = NowTimeFunc().Format(time.DateOnly)
		}
		if !cmd.Flags().Changed("price") {
			price, err := currentPrice(ctx, a, p.MaterialID)
			if err != nil {
				return err
			}
			p.Price = price
		}

		store := purchases.NewStore(a.api, a.tokens, a.storeOptions()...)
		created, err := store.Add(ctx, p)
		if err != nil {
			return remoteError(a.out, err, store.Err())
		}
		return a.out.Success(PurchaseList{Purchases: []purchases.Purchase{created}, Revenue: created.Total()})
	})
	cmd.Flags().Int64Var(&p.ClientID, "client", 0, "client id")
	cmd.Flags().Int64Var(&p.MaterialID, "material", 0, "material id")
	cmd.Flags().Float64Var(&p.Quantity, "quantity", 1, "quantity bought")
	cmd.Flags().Float64Var(&p.Price, "price", 0, "unit price (defaults to the material's price)")
	cmd.Flags().StringVar(&p.Date, "date", "", "purchase date, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("client")
	_ = cmd.MarkFlagRequired("material")
	return cmd
}
