package cli

import (
	"github.com/spf13/cobra"
)

// AddVersionCommand adds the version command to the root command.
func AddVersionCommand(root *cobra.Command, info BuildInfo) {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("slotshift %s\n", formatVersion(info))
		},
	}
	root.AddCommand(cmd)
}
