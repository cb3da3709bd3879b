package cmd

import (
	"fmt"
	"os"
	"time"

	daemon "github.com/sevlyar/go-daemon"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/snapfs/snapfs/pkg/snap"
	"github.com/snapfs/snapfs/pkg/snapfs"
)

var mountOpts struct {
	Ref        string
	FsName     string
	AllowOther bool
	Daemonize  bool
}

// mountCmd represents the mount command
var mountCmd = &cobra.Command{
	Use:   "mount <repo> <mountpoint>",
	Short: "Mount a snapshot as a read-only filesystem",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if mountOpts.Daemonize {
			cntxt := &daemon.Context{}
			child, err := cntxt.Reborn()
			if err != nil {
				log.WithError(err).Fatal("cannot daemonize")
			}
			if child != nil {
				return
			}
			defer cntxt.Release()
		}

		t0 := time.Now()

		store, err := snap.Open(args[0])
		if err != nil {
			log.WithError(err).Fatal("cannot open repository")
		}
		defer store.Close()

		ref := mountOpts.Ref
		if ref == "" {
			refs, err := store.Refs()
			if err != nil {
				log.WithError(err).Fatal("cannot enumerate snapshots")
			}
			if len(refs) == 0 {
				log.Fatal("repository contains no snapshots")
			}
			ref = refs[0].Name
		}

		tree, err := store.OpenTree(ref)
		if err != nil {
			log.WithError(err).WithField("ref", ref).Fatal("cannot open snapshot")
		}

		mnt := args[1]
		os.Mkdir(mnt, 0755)
		server, err := snapfs.Mount(mnt, tree, snapfs.Options{
			FsName:     mountOpts.FsName,
			AllowOther: mountOpts.AllowOther,
			Debug:      rootOpts.Verbose,
		})
		if err != nil {
			log.WithError(err).Fatal("cannot mount filesystem")
		}

		fmt.Printf("mounted %s in %v\n", ref, time.Since(t0))
		fmt.Printf("to unmount: fusermount -u %s\n", mnt)
		server.Wait()
	},
}

func init() {
	rootCmd.AddCommand(mountCmd)
	mountCmd.Flags().StringVar(&mountOpts.Ref, "ref", "", "snapshot to mount (default: first available)")
	mountCmd.Flags().StringVar(&mountOpts.FsName, "fsname", "snapfs", "filesystem display name")
	mountCmd.Flags().BoolVar(&mountOpts.AllowOther, "allow-other", false, "allow other users to access the mount")
	mountCmd.Flags().BoolVar(&mountOpts.Daemonize, "daemonize", false, "keep the mount in a detached background process")
}
