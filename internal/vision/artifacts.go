package vision

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// collisionSuffix is inserted before the extension when the requested name is taken.
const collisionSuffix = "_old"

// ArtifactStore places uploaded images in a single directory that is also
// exposed by the static file server.
//
// Renaming happens at most once: a third upload of the same original name
// overwrites the "_old" file. Two concurrent uploads of one name may both pick
// the same target; the later write wins.
type ArtifactStore struct {
	dir string
}

func NewArtifactStore(dir string) (*ArtifactStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create upload dir: %w", ErrIO, err)
	}
	return &ArtifactStore{dir: dir}, nil
}

func (s *ArtifactStore) Dir() string { return s.dir }

// Resolve maps the client filename to the name the upload will be stored under.
func (s *ArtifactStore) Resolve(requested string) (string, error) {
	name := path.Base(strings.ReplaceAll(requested, `\`, "/"))
	if name == "" || name == "." || name == ".." || name == "/" {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, requested)
	}

	_, err := os.Stat(filepath.Join(s.dir, name))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return name, nil
	case err != nil:
		return "", fmt.Errorf("%w: stat %s: %w", ErrIO, name, err)
	}

	base, ext := splitExt(name)
	return base + collisionSuffix + ext, nil
}

// Save writes data in full under name and returns the file path.
func (s *ArtifactStore) Save(name string, data []byte) (string, error) {
	p := filepath.Join(s.dir, name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: write %s: %w", ErrIO, name, err)
	}
	return p, nil
}

// splitExt splits at the last dot, ignoring leading dots, so ".env" has no
// extension and "a.tar.gz" splits into "a.tar" and ".gz".
func splitExt(name string) (string, string) {
	i := strings.LastIndex(name, ".")
	if i <= 0 || strings.Trim(name[:i], ".") == "" {
		return name, ""
	}
	return name[:i], name[i:]
}
