package cmd

import (
	"fmt"

	"github.com/icco/midikeys/internal/transport"
	"github.com/spf13/cobra"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI output ports",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		names := transport.OutPortNames()
		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No MIDI output ports found.")
			return
		}
		for i, name := range names {
			fmt.Fprintf(cmd.OutOrStdout(), "%d: %s\n", i, name)
		}
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
