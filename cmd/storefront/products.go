package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/utafrali/EcommerceGo/storefront/internal/catalog"
)

func productsCmd(rt *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product", "p"},
		Short:   "Browse and manage the catalog",
	}
	cmd.AddCommand(
		productsListCmd(rt),
		productsShowCmd(rt),
		productsCreateCmd(rt),
		productsEditCmd(rt),
		productsDeleteCmd(rt),
	)
	return cmd
}

func productsListCmd(rt *cli) *cobra.Command {
	var q catalog.ListQuery

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sf := rt.storefront()
			_, err := sf.Catalog.ListProducts(cmd.Context(), q)
			if err == nil {
				st := sf.Catalog.State()
				err = printJSON(cmd.OutOrStdout(), map[string]any{
					"products":     st.ProductList,
					"totalPageNum": st.TotalPageNum,
				})
			}
			return finish(cmd, rt, err)
		},
	}

	cmd.Flags().StringVar(&q.Name, "name", "", "Filter by product name")
	cmd.Flags().IntVar(&q.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&q.PerPage, "per-page", 0, "Page size (server default when 0)")

	return cmd
}

func productsShowCmd(rt *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := rt.storefront().Catalog.GetProductDetail(cmd.Context(), args[0])
			if err == nil {
				err = printJSON(cmd.OutOrStdout(), p)
			}
			return finish(cmd, rt, err)
		},
	}
}

// productFlags binds the product form to flags.
type productFlags struct {
	sku         string
	name        string
	price       string
	description string
	image       string
	stock       map[string]int
}

func (f *productFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.sku, "sku", "", "Stock keeping unit")
	cmd.Flags().StringVar(&f.name, "name", "", "Product name")
	cmd.Flags().StringVar(&f.price, "price", "0", "Price, e.g. 19.99")
	cmd.Flags().StringVar(&f.description, "description", "", "Description")
	cmd.Flags().StringVar(&f.image, "image", "", "Image URL")
	cmd.Flags().StringToIntVar(&f.stock, "stock", nil, "Stock per size, e.g. s=3,m=5")
}

func (f *productFlags) input() (catalog.ProductInput, error) {
	price, err := decimal.NewFromString(f.price)
	if err != nil {
		return catalog.ProductInput{}, fmt.Errorf("invalid price %q: %w", f.price, err)
	}
	return catalog.ProductInput{
		SKU:         f.sku,
		Name:        f.name,
		Price:       price,
		Description: f.description,
		Image:       f.image,
		Stock:       f.stock,
	}, nil
}

func productsCreateCmd(rt *cli) *cobra.Command {
	var f productFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := f.input()
			if err != nil {
				return err
			}
			p, err := rt.storefront().Catalog.CreateProduct(cmd.Context(), in)
			if err == nil {
				err = printJSON(cmd.OutOrStdout(), p)
			}
			return finish(cmd, rt, err)
		},
	}
	f.register(cmd)

	return cmd
}

func productsEditCmd(rt *cli) *cobra.Command {
	var f productFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Replace a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := f.input()
			if err != nil {
				return err
			}
			p, err := rt.storefront().Catalog.EditProduct(cmd.Context(), args[0], in)
			if err == nil {
				err = printJSON(cmd.OutOrStdout(), p)
			}
			return finish(cmd, rt, err)
		},
	}
	f.register(cmd)

	return cmd
}

func productsDeleteCmd(rt *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := rt.storefront().Catalog.DeleteProduct(cmd.Context(), args[0])
			return finish(cmd, rt, err)
		},
	}
}
