package detector

import (
	"context"

	"github.com/spf13/afero"
)

// PathDetector detects a dependency by the presence of a filesystem entry.
// Any stat error other than "not exist" is returned next to false so callers
// can tell a permission problem from a missing file.
type PathDetector struct {
	Fs   afero.Fs // nil uses the OS filesystem
	Path string
}

func (d PathDetector) Alive(_ context.Context) (bool, error) {
	if d.Path == "" {
		return false, nil
	}
	fs := d.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return afero.Exists(fs, d.Path)
}

func (d PathDetector) Describe() string { return "path:" + d.Path }
