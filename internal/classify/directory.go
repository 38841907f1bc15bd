package classify

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ismailkaraca/kohasayim/internal/models"
	"github.com/ismailkaraca/kohasayim/internal/normalize"
)

// Directory is the list of known libraries, used for the wrong-library
// prefix search. Entries added at runtime are visible to subsequent
// classifications immediately.
type Directory struct {
	mu        sync.RWMutex
	libraries []models.Library
}

// NewDirectory creates a directory seeded with the given libraries.
func NewDirectory(libraries ...models.Library) *Directory {
	d := &Directory{}
	d.libraries = append(d.libraries, libraries...)
	return d
}

// LoadDirectory reads a YAML library list: a sequence of {code, name} pairs.
func LoadDirectory(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read library directory: %w", err)
	}

	var libraries []models.Library
	if err := yaml.Unmarshal(data, &libraries); err != nil {
		return nil, fmt.Errorf("failed to parse library directory: %w", err)
	}

	return NewDirectory(libraries...), nil
}

// Add registers a library at runtime.
func (d *Directory) Add(library models.Library) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.libraries = append(d.libraries, library)
}

// Libraries returns a copy of the directory entries.
func (d *Directory) Libraries() []models.Library {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]models.Library, len(d.libraries))
	copy(out, d.libraries)
	return out
}

// MatchPrefix searches the directory for a library whose identifier prefix
// matches the scanned identifier.
func (d *Directory) MatchPrefix(identifier string) (models.Library, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, library := range d.libraries {
		prefix := normalize.ExpectedPrefix(library.Code)
		if prefix != "" && strings.HasPrefix(identifier, prefix) {
			return library, true
		}
	}
	return models.Library{}, false
}
