package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/utafrali/EcommerceGo/storefront/internal/session"
)

func authCmd(rt *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in, register and sign out",
	}
	cmd.AddCommand(
		authLoginCmd(rt),
		authRegisterCmd(rt),
		&cobra.Command{
			Use:   "whoami",
			Short: "Print the signed-in user",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				st := rt.storefront().Session.State()
				if !st.Authenticated() {
					msg := "not signed in"
					if st.LoginError != "" {
						msg += ": " + st.LoginError
					}
					fmt.Fprintln(cmd.OutOrStdout(), msg)
					return nil
				}
				return printJSON(cmd.OutOrStdout(), st.User)
			},
		},
		&cobra.Command{
			Use:   "logout",
			Short: "Sign out and forget the session token",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				rt.storefront().Session.Logout(cmd.Context())
				fmt.Fprintln(cmd.OutOrStdout(), "signed out")
				return nil
			},
		},
	)
	return cmd
}

func authLoginCmd(rt *cli) *cobra.Command {
	var (
		in     session.LoginInput
		google string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password, or a Google credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := rt.storefront().Session
			var (
				u   session.User
				err error
			)
			if google != "" {
				u, err = sess.LoginWithGoogle(cmd.Context(), google)
			} else {
				u, err = sess.LoginWithEmail(cmd.Context(), in)
			}
			if err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s\n", u.Email)
			}
			return finish(cmd, rt, err)
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "Account password")
	cmd.Flags().StringVar(&google, "google", "", "Google ID token (federated login)")

	return cmd
}

func authRegisterCmd(rt *cli) *cobra.Command {
	var in session.RegisterInput

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := rt.storefront().Session.RegisterUser(cmd.Context(), in)
			if err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "account created, sign in with `storefront auth login`")
			}
			return finish(cmd, rt, err)
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&in.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&in.Password, "password", "", "Account password")

	return cmd
}
