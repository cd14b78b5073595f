package archive

import (
	"assetcore/internal/infra/archive/fs"
)

// NewFilesystem constructs a filesystem-backed archive rooted at the given
// path. It returns the Store interface so call sites never touch the
// concrete driver.
func NewFilesystem(root string) (Store, error) {
	return fs.New(root)
}
