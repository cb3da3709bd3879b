package cmd

import (
	"encoding/json"
	"os"
	"path"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/snapfs/snapfs/pkg/snap"
)

// snapshotDumpCmd represents the snapshot dump command
var snapshotDumpCmd = &cobra.Command{
	Use:   "dump <repo> <ref>",
	Short: "Dumps a snapshot's entries as JSON",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		store, err := snap.Open(args[0])
		if err != nil {
			log.WithError(err).Fatal("cannot open repository")
		}
		defer store.Close()

		tree, err := store.OpenTree(args[1])
		if err != nil {
			log.WithError(err).Fatal("cannot open snapshot")
		}

		type entry struct {
			Path    string    `json:"path"`
			Dir     bool      `json:"dir"`
			Size    int64     `json:"size"`
			ModTime time.Time `json:"mtime"`
		}

		var (
			res  []entry
			dirs = []string{""}
		)
		for len(dirs) > 0 {
			dir := dirs[0]
			dirs = dirs[1:]

			children, err := tree.List(dir)
			if err != nil {
				log.WithError(err).WithField("path", dir).Fatal("cannot list directory")
			}
			for _, c := range children {
				p := path.Join(dir, c.Name)
				res = append(res, entry{Path: p, Dir: c.Info.Dir, Size: c.Info.Size, ModTime: c.Info.ModTime})
				if c.Info.Dir {
					dirs = append(dirs, p)
				}
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(res)
	},
}

func init() {
	snapshotCmd.AddCommand(snapshotDumpCmd)
}
