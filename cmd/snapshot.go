package cmd

import (
	"github.com/spf13/cobra"
)

// snapshotCmd groups the snapshot maintenance commands
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Create and inspect snapshots",
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}
