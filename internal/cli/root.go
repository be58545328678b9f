// Package cli wires the HUMINT client together and exposes it as a
// cobra command tree. Invoked with no subcommand it launches the TUI.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kleincho/humint/internal/tui"
)

func Execute(version string) error {
	return newRootCmd(version).Execute()
}

func newRootCmd(version string) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "humint",
		Short:         "Ask questions answered from firsthand industry accounts",
		Long:          "humint is a terminal client for conversational research over firsthand accounts from people inside the industry.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(configPath)
		},
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")

	cmd.AddCommand(
		newLoginCmd(&configPath),
		newLogoutCmd(&configPath),
		newWhoamiCmd(&configPath),
		newThreadsCmd(&configPath),
		newPersonaCmd(&configPath),
	)

	return cmd
}

func runTUI(configPath string) error {
	if !hasTTY() {
		return fmt.Errorf("the TUI requires an interactive terminal; use subcommands instead (humint --help)")
	}

	app, err := buildApp(configPath)
	if err != nil {
		return err
	}
	defer app.Close()

	return tui.Run(tui.Config{
		Theme:          app.Config.TUI.Theme,
		ShowTimestamps: app.Config.TUI.ShowTimestamps,
		CompactMode:    app.Config.TUI.CompactMode,
	}, tui.Deps{
		Controller: app.Controller,
		Threads:    app.Threads,
		Personas:   app.Personas,
		Auth:       app.Auth,
		Relay:      app.Relay,
	})
}

func hasTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
