package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/conn-castle/rigkit/internal/errkind"
	"github.com/conn-castle/rigkit/internal/messages"
)

// DirName is the per-project settings directory.
const DirName = ".rigkit"

// Paths holds resolved settings locations for a project root.
type Paths struct {
	Root       string
	ConfigTOML string
	ConfigJSON string
	EnvPath    string
}

// DefaultPaths returns the settings locations under root.
func DefaultPaths(root string) Paths {
	dir := filepath.Join(root, DirName)
	return Paths{
		Root:       root,
		ConfigTOML: filepath.Join(dir, "config.toml"),
		ConfigJSON: filepath.Join(dir, "config.json"),
		EnvPath:    filepath.Join(dir, ".env"),
	}
}

// ConfigPath returns the first settings file that exists, preferring TOML, or
// "" when neither does.
func (p Paths) ConfigPath() string {
	for _, candidate := range []string{p.ConfigTOML, p.ConfigJSON} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// FindRoot walks up from start to the nearest directory holding a .rigkit
// directory. found is false when none exists up to the filesystem root. A
// .rigkit entry that is not a directory is an error.
func FindRoot(start string) (string, bool, error) {
	if start == "" {
		return "", false, fmt.Errorf("%w: %s", errkind.ErrMalformed, messages.ConfigRootStartRequired)
	}
	dir := filepath.Clean(start)
	for {
		info, err := os.Stat(filepath.Join(dir, DirName))
		switch {
		case err == nil && info.IsDir():
			return dir, true, nil
		case err == nil:
			return "", false, fmt.Errorf("%w: "+messages.ConfigRootNotDirFmt, errkind.ErrMalformed, filepath.Join(dir, DirName))
		case !errors.Is(err, os.ErrNotExist):
			return "", false, errkind.IOf("stat "+filepath.Join(dir, DirName), err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}
