package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newPersonaCmd(configPath *string) *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "persona [value]",
		Short: "Show or set the target persona hint",
		Long:  "The persona hint shapes who answers are voiced for (e.g. \"PE analyst\"). With no argument the current hint is printed.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(*configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			switch {
			case clear:
				app.Personas.Set("")
				fmt.Fprintln(cmd.OutOrStdout(), "persona cleared")
			case len(args) == 1:
				value := strings.TrimSpace(args[0])
				app.Personas.Set(value)
				fmt.Fprintf(cmd.OutOrStdout(), "persona set to %q\n", value)
			default:
				current := app.Personas.Get()
				if current == "" {
					fmt.Fprintln(cmd.OutOrStdout(), "no persona set")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), current)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&clear, "clear", false, "Clear the persona hint")
	return cmd
}
