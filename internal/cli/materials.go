package cli

import (
	"context"
	"io"
	"strconv"

	"github.com/jrsteele09/materials-admin/materials"
	"github.com/spf13/cobra"
)

func NewMaterialsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "materials",
		Aliases: []string{"mat"},
		Short:   "List and edit materials",
	}
	cmd.AddCommand(newMaterialsListCommand(rootOpts))
	cmd.AddCommand(newMaterialsAddCommand(rootOpts))
	cmd.AddCommand(newMaterialsUpdateCommand(rootOpts))
	cmd.AddCommand(newMaterialsDeleteCommand(rootOpts))
	return cmd
}

// MaterialList is the result of "materials list".
type MaterialList struct {
	Materials  []materials.Material `json:"materials" yaml:"materials"`
	StockValue float64              `json:"stockValue" yaml:"stockValue"`
}

func (l MaterialList) RenderText(out io.Writer) error {
	t := newTable("ID", "NAME", "CATEGORY", "QTY", "UNIT", "PRICE", "SUPPLIER", "VALUE")
	for _, m := range l.Materials {
		t.add(strconv.FormatInt(m.ID, 10), m.Name, dash(m.Category), qty(m.Quantity), dash(m.Unit),
			money(m.Price), dash(m.Supplier), money(m.StockValue()))
	}
	if err := t.write(out); err != nil {
		return err
	}
	_, err := io.WriteString(out, "Stock value: "+money(l.StockValue)+"\n")
	return err
}

// MaterialResult is a single material.
type MaterialResult struct {
	Material materials.Material `json:"material" yaml:"material"`
}

func (r MaterialResult) RenderText(out io.Writer) error {
	return MaterialList{Materials: []materials.Material{r.Material}, StockValue: r.Material.StockValue()}.RenderText(out)
}

func newMaterialsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List materials",
		Args:    cobra.NoArgs,
		RunE: withApp(rootOpts, func(ctx context.Context, a *app, _ []string) error {
			store := materials.NewStore(a.api, a.tokens, a.storeOptions()...)
			if err := store.FetchAll(ctx); err != nil {
				return remoteError(a.out, err, store.Err())
			}
			list := MaterialList{Materials: store.Items()}
			for _, m := range list.Materials {
				list.StockValue += m.StockValue()
			}
			return a.out.Success(list)
		}),
	}
}

// materialFlags binds one flag per editable field.
type materialFlags struct {
	m materials.Material
}

func (f *materialFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.m.Name, "name", "", "material name")
	cmd.Flags().StringVar(&f.m.Category, "category", "", "category")
	cmd.Flags().StringVar(&f.m.Unit, "unit", "", "unit of measure (kg, m, pcs)")
	cmd.Flags().Float64Var(&f.m.Quantity, "quantity", 0, "units in stock")
	cmd.Flags().Float64Var(&f.m.Price, "price", 0, "price per unit")
	cmd.Flags().StringVar(&f.m.Supplier, "supplier", "", "supplier")
}

// apply copies the flags the user set onto m.
func (f *materialFlags) apply(cmd *cobra.Command, m materials.Material) materials.Material {
	changed := cmd.Flags().Changed
	if changed("name") {
		m.Name = f.m.Name
	}
	if changed("category") {
		m.Category = f.m.Category
	}
	if changed("unit") {
		m.Unit = f.m.Unit
	}
	if changed("quantity") {
		m.Quantity = f.m.Quantity
	}
	if changed("price") {
		m.Price = f.m.Price
	}
	if changed("supplier") {
		m.Supplier = f.m.Supplier
	}
	return m
}

func newMaterialsAddCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &materialFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a material",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = withApp(rootOpts, func(ctx context.Context, a *app, _ []string) error {
		store := materials.NewStore(a.api, a.tokens, a.storeOptions()...)
		created, err := store.Add(ctx, flags.m)
		if err != nil {
			return remoteError(a.out, err, store.Err())
		}
		return a.out.Success(MaterialResult{Material: created})
	})
	flags.bind(cmd)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newMaterialsUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &materialFlags{}
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the given fields of a material",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = withApp(rootOpts, func(ctx context.Context, a *app, args []string) error {
		id, err := parseID(a.out, args[0])
		if err != nil {
			return err
		}
		store := materials.NewStore(a.api, a.tokens, a.storeOptions()...)
		if err := store.FetchAll(ctx); err != nil {
			return remoteError(a.out, err, store.Err())
		}
		current, ok := store.Find(id)
		if !ok {
			return usageError(a.out, "no material with id "+args[0], nil)
		}
		updated, err := store.Update(ctx, id, flags.apply(cmd, current))
		if err != nil {
			return remoteError(a.out, err, store.Err())
		}
		return a.out.Success(MaterialResult{Material: updated})
	})
	flags.bind(cmd)
	return cmd
}

func newMaterialsDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a material",
		Args:    cobra.ExactArgs(1),
		RunE: withApp(rootOpts, func(ctx context.Context, a *app, args []string) error {
			id, err := parseID(a.out, args[0])
			if err != nil {
				return err
			}
			store := materials.NewStore(a.api, a.tokens, a.storeOptions()...)
			if err := store.Remove(ctx, id); err != nil {
				return remoteError(a.out, err, store.Err())
			}
			return a.out.Success(message("Deleted material " + args[0]))
		}),
	}
}

func parseID(out *OutputFormatter, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, usageError(out, "invalid id "+strconv.Quote(raw), err)
	}
	return id, nil
}
