// cmd/ixtcl/shell.go

package main

import (
	"fmt"

	"ixexplorer/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "open an interactive Tcl console",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cleanup, err := newClient()
		if err != nil {
			return err
		}
		defer cleanup()
		if err := client.Connect(cmd.Context()); err != nil {
			return err
		}
		defer client.Close()

		major, minor, err := client.HalVersion()
		if err != nil {
			return err
		}
		title := fmt.Sprintf("%s (%s, IxTclHal %s.%s)", client.Host(), client.Kind(), major, minor)
		p := tea.NewProgram(ui.NewModel(client, title), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
