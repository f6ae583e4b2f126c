// cmd/ixtcl/discover.go

package main

import (
	"fmt"
	"io"
	"sort"

	"ixexplorer/internal/ixe"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var discoverCmd = &cobra.Command{
	Use:     "discover",
	Short:   "log in and print the chassis, cards and ports",
	Aliases: []string{"d"},
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
		if err := app.Discover(); err != nil {
			return err
		}
		return printTree(cmd.OutOrStdout(), app)
	},
}

func printTree(w io.Writer, app *ixe.App) error {
	for _, c := range app.Chassis() {
		typeName, err := c.TypeName()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "chassis %s %s\n", c.Name(), typeName)
		cards := c.Cards()
		for _, id := range sortedKeys(cards) {
			card := cards[id]
			cardType, err := card.GetString("typeName")
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "  card %s %s\n", card.Name(), cardType)
			ports := card.Ports()
			for _, pid := range sortedKeys(ports) {
				p := ports[pid]
				owner, err := p.Owner()
				if err != nil {
					return err
				}
				link, err := p.LinkState()
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "    port %s owner=%q link=%d\n", p.Name(), owner, link)
			}
		}
	}
	return nil
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}
