package snapfs

import (
	"fmt"

	"github.com/hanwen/go-fuse/v2/fuse"
	log "github.com/sirupsen/logrus"
)

// Options configures a mount.
type Options struct {
	// FsName is the filesystem display name shown in mtab.
	FsName string

	// AllowOther permits other users to access the mount. Requires
	// user_allow_other in /etc/fuse.conf.
	AllowOther bool

	// Debug enables FUSE wire logging.
	Debug bool
}

// Mount exposes tree at mountpoint as a read-only filesystem and returns
// once the mount is established. The caller blocks on Server.Wait and
// unmounts with Server.Unmount; the mount also carries auto_unmount, so
// it disappears with the process.
func Mount(mountpoint string, tree Tree, opts Options) (*fuse.Server, error) {
	if opts.FsName == "" {
		opts.FsName = "snapfs"
	}

	server, err := fuse.NewServer(New(tree), mountpoint, &fuse.MountOptions{
		FsName:        opts.FsName,
		Name:          "snapfs",
		AllowOther:    opts.AllowOther,
		Debug:         opts.Debug,
		DisableXAttrs: true,
		Options:       []string{"ro", "auto_unmount"},
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create FUSE server: %w", err)
	}

	go server.Serve()
	if err := server.WaitMount(); err != nil {
		return nil, fmt.Errorf("mount did not complete: %w", err)
	}

	log.WithField("mountpoint", mountpoint).Debug("mounted")
	return server, nil
}
