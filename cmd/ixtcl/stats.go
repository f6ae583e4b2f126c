// cmd/ixtcl/stats.go

package main

import (
	"fmt"
	"sort"

	"ixexplorer/internal/ixe"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <chassis/card/port>...",
	Short: "print port statistics and rates",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cleanup, err := newClient()
		if err != nil {
			return err
		}
		defer cleanup()
		app := ixe.New(client, ixe.WithLogger(log.StandardLogger()))
		if _, err := app.Connect(cmd.Context(), user); err != nil {
			return err
		}
		defer app.Disconnect()

		ports := app.Session.AddPorts(args...)
		stats, err := app.Session.ReadStats(ports...)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, p := range ports {
			counters := stats[p.Name()]
			names := make([]string, 0, len(counters))
			for name := range counters {
				names = append(names, name)
			}
			sort.Strings(names)
			fmt.Fprintf(out, "%s\n", p.Name())
			for _, name := range names {
				fmt.Fprintf(out, "  %-24s %d\n", name, counters[name])
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
