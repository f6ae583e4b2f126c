// cmd/ixtcl/exec.go

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var slow bool

var execCmd = &cobra.Command{
	Use:     "exec <tcl command>",
	Short:   "run one Tcl command and print its result",
	Aliases: []string{"e"},
	Args:    cobra.MinimumNArgs(1),
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

		line := strings.Join(args, " ")
		call := client.Call
		if slow {
			call = client.CallSlow
		}
		result, err := call(line)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), result)
		return nil
	},
}

func init() {
	execCmd.Flags().BoolVarP(&slow, "slow", "s", false, "use the long timeout for slow commands")
	rootCmd.AddCommand(execCmd)
}
