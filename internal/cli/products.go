package cli

import (
	"context"
	"fmt"
	"strconv"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID %q", what, arg)
	}
	return id, nil
}

// pageFlags registers --page and --size; unset flags are not sent.
func pageFlags(flags *pflag.FlagSet, page, size *int) {
	flags.IntVar(page, "page", 0, "page number (0-based)")
	flags.IntVar(size, "size", 20, "page size")
}

func pageQuery(cmd *cobra.Command, page, size int) domain.PageQuery {
	var q domain.PageQuery
	if cmd.Flags().Changed("page") {
		q.Page = &page
	}
	if cmd.Flags().Changed("size") {
		q.Size = &size
	}
	return q
}

func newProductsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse and manage the catalogue",
	}
	cmd.AddCommand(newProductsListCmd(opts))
	cmd.AddCommand(newProductsGetCmd(opts))
	cmd.AddCommand(newProductsCreateCmd(opts))
	cmd.AddCommand(newProductsUpdateCmd(opts))
	cmd.AddCommand(newProductsDeleteCmd(opts))
	return cmd
}

func newProductsListCmd(opts *rootOptions) *cobra.Command {
	var (
		page, size int
		q          domain.ProductQuery
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, false, func(ctx context.Context, app *App) error {
				q.PageQuery = pageQuery(cmd, page, size)
				result, err := app.API.ListProducts(ctx, q)
				if err != nil {
					return err
				}
				return opts.render(cmd, result)
			})
		},
	}
	pageFlags(cmd.Flags(), &page, &size)
	cmd.Flags().StringVar(&q.Search, "search", "", "match name or description")
	cmd.Flags().StringVar(&q.Category, "category", "", "filter by category")
	cmd.Flags().StringVar(&q.SortBy, "sort-by", "", "sort field (id, name, price, stockQuantity)")
	cmd.Flags().StringVar(&q.SortDir, "sort-dir", "", "asc or desc")
	return cmd
}

func newProductsGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "product")
			if err != nil {
				return err
			}
			return opts.run(cmd, false, func(ctx context.Context, app *App) error {
				p, err := app.API.GetProduct(ctx, id)
				if err != nil {
					return err
				}
				return opts.render(cmd, p)
			})
		},
	}
}

type productFlags struct {
	name, description, price, category string
	stock                              int
	sku, brand, imageURL, tags         string
}

func (f *productFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.name, "name", "", "product name")
	flags.StringVar(&f.description, "description", "", "description")
	flags.StringVar(&f.price, "price", "", "unit price, e.g. 19.99")
	flags.StringVar(&f.category, "category", "", "category")
	flags.IntVar(&f.stock, "stock", 0, "stock quantity")
	flags.StringVar(&f.sku, "sku", "", "SKU (generated when empty)")
	flags.StringVar(&f.brand, "brand", "", "brand")
	flags.StringVar(&f.imageURL, "image-url", "", "image URL")
	flags.StringVar(&f.tags, "tags", "", "comma-separated tags")
}

// apply copies the flags the user set onto p.
func (f *productFlags) apply(flags *pflag.FlagSet, p *domain.Product) error {
	if flags.Changed("price") {
		price, err := decimal.NewFromString(f.price)
		if err != nil {
			return fmt.Errorf("invalid price %q: %w", f.price, err)
		}
		p.Price = price
	}
	set := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	set("name", &p.Name, f.name)
	set("description", &p.Description, f.description)
	set("category", &p.Category, f.category)
	set("sku", &p.SKU, f.sku)
	set("brand", &p.Brand, f.brand)
	set("image-url", &p.ImageURL, f.imageURL)
	set("tags", &p.Tags, f.tags)
	if flags.Changed("stock") {
		p.StockQuantity = f.stock
	}
	return nil
}

func newProductsCreateCmd(opts *rootOptions) *cobra.Command {
	var f productFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var p domain.Product
			if err := f.apply(cmd.Flags(), &p); err != nil {
				return err
			}
			return opts.run(cmd, true, func(ctx context.Context, app *App) error {
				if err := app.Guard.RequireAdmin(app.Session.Snapshot()); err != nil {
					return err
				}
				created, err := app.API.CreateProduct(ctx, p)
				if err != nil {
					return err
				}
				return opts.render(cmd, created)
			})
		},
	}
	f.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func newProductsUpdateCmd(opts *rootOptions) *cobra.Command {
	var f productFlags
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change a product (admin); unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "product")
			if err != nil {
				return err
			}
			return opts.run(cmd, true, func(ctx context.Context, app *App) error {
				if err := app.Guard.RequireAdmin(app.Session.Snapshot()); err != nil {
					return err
				}
				current, err := app.API.GetProduct(ctx, id)
				if err != nil {
					return err
				}
				if err := f.apply(cmd.Flags(), current); err != nil {
					return err
				}
				updated, err := app.API.UpdateProduct(ctx, id, *current)
				if err != nil {
					return err
				}
				return opts.render(cmd, updated)
			})
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newProductsDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a product (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "product")
			if err != nil {
				return err
			}
			return opts.run(cmd, true, func(ctx context.Context, app *App) error {
				if err := app.Guard.RequireAdmin(app.Session.Snapshot()); err != nil {
					return err
				}
				if err := app.API.DeleteProduct(ctx, id); err != nil {
					return err
				}
				app.Notifier.Success(fmt.Sprintf("Product %d deleted", id))
				return nil
			})
		},
	}
}
