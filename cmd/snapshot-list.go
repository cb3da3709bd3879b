package cmd

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/snapfs/snapfs/pkg/snap"
)

// snapshotListCmd represents the snapshot list command
var snapshotListCmd = &cobra.Command{
	Use:   "list <repo>",
	Short: "List the snapshots in a repository",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, err := snap.Open(args[0])
		if err != nil {
			log.WithError(err).Fatal("cannot open repository")
		}
		defer store.Close()

		refs, err := store.Refs()
		if err != nil {
			log.WithError(err).Fatal("cannot enumerate snapshots")
		}
		for _, r := range refs {
			fmt.Printf("%s\t%s\n", r.Name, r.ID)
		}
	},
}

func init() {
	snapshotCmd.AddCommand(snapshotListCmd)
}
