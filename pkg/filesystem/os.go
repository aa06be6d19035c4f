package filesystem

import (
	"errors"

	"github.com/arthur-debert/dotmod/pkg/types"
	"github.com/spf13/afero"
)

var errHardLinkUnsupported = errors.New("hard links not supported by this filesystem")

// NewOS creates a filesystem backed by the operating system
func NewOS() types.FS {
	return NewAferoFS(afero.NewOsFs())
}

func isOsFs(base afero.Fs) bool {
	_, ok := base.(*afero.OsFs)
	return ok
}
