package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kleincho/humint/internal/auth"
)

func newLoginCmd(configPath *string) *cobra.Command {
	var email, name string

	cmd := &cobra.Command{
		Use:   "login <user-id>",
		Short: "Record the signed-in identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(*configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			app.Auth.SignIn(auth.Identity{
				UserID: args[0],
				Email:  email,
				Name:   name,
			})
			if current := app.Auth.Current(); current != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s\n", current.UserID)
				return nil
			}
			return fmt.Errorf("sign-in rejected: user id must not be empty")
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	return cmd
}

func newLogoutCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the signed-in identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(*configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			app.Auth.SignOut()
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}

func newWhoamiCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(*configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			identity := app.Auth.Current()
			if identity == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "signed out")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s", identity.UserID)
			if identity.Email != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " <%s>", identity.Email)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}
