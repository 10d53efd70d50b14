package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/utafrali/EcommerceGo/storefront/internal/cart"
)

func cartCmd(rt *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect and change the signed-in user's cart",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <product-id> <size>",
			Short: "Add one unit of a product size",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := rt.storefront().AddToCart(cmd.Context(), args[0], args[1])
				if err == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%d items in cart\n", n)
				}
				return finish(cmd, rt, err)
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List cart lines",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := rt.storefront().Cart.ListCart(cmd.Context())
				return finish(cmd, rt, printCart(cmd, rt, err))
			},
		},
		&cobra.Command{
			Use:   "remove <line-id>",
			Short: "Remove a cart line",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := rt.storefront().Cart.DeleteCartItem(cmd.Context(), args[0])
				return finish(cmd, rt, printCart(cmd, rt, err))
			},
		},
		&cobra.Command{
			Use:   "qty <line-id> <quantity>",
			Short: "Set the quantity of a cart line",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				qty, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid quantity %q", args[1])
				}
				_, err = rt.storefront().Cart.UpdateQuantity(cmd.Context(), cart.UpdateInput{ID: args[0], Qty: qty})
				return finish(cmd, rt, printCart(cmd, rt, err))
			},
		},
		&cobra.Command{
			Use:   "count",
			Short: "Print the number of items in the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := rt.storefront().Cart.FetchCartCount(cmd.Context())
				if err == nil {
					fmt.Fprintln(cmd.OutOrStdout(), n)
				}
				return finish(cmd, rt, err)
			},
		},
	)
	return cmd
}

func printCart(cmd *cobra.Command, rt *cli, err error) error {
	if err != nil {
		return err
	}
	st := rt.storefront().Cart.State()
	return printJSON(cmd.OutOrStdout(), map[string]any{
		"lines":         st.CartList,
		"cartItemCount": st.CartItemCount,
		"totalPrice":    st.TotalPrice,
	})
}
