package cmd

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/snapfs/snapfs/pkg/snap"
)

// snapshotCreateCmd represents the snapshot create command
var snapshotCreateCmd = &cobra.Command{
	Use:   "create <repo> <ref> <src-dir>",
	Short: "Commit a directory tree as a new snapshot",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		store, err := snap.Open(args[0])
		if err != nil {
			log.WithError(err).Fatal("cannot open repository")
		}
		defer store.Close()

		id, err := store.Commit(args[1], args[2])
		if err != nil {
			log.WithError(err).Fatal("cannot create snapshot")
		}

		fmt.Printf("%s -> %s\n", args[1], id)
	},
}

func init() {
	snapshotCmd.AddCommand(snapshotCreateCmd)
}
