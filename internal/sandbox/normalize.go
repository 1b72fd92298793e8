package sandbox

import (
	"os"
	"path/filepath"

	"github.com/whiterabbit74/kinopub-wnldr/internal/utils"
)

const separator = os.PathSeparator

// normalize resolves a path to cleaned absolute form without touching the
// filesystem beyond working-directory resolution.
func normalize(path string) string {
	return filepath.Clean(utils.EnsureAbsPath(path))
}
