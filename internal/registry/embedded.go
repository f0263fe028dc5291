package registry

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"github.com/tombee/awsdeck/internal/service"
)

//go:embed definitions/*.json
var definitionsFS embed.FS

// EmbeddedSources returns the bundled definition documents in file name
// order.
func EmbeddedSources() ([]Source, error) {
	entries, err := fs.ReadDir(definitionsFS, "definitions")
	if err != nil {
		return nil, fmt.Errorf("failed to read bundled definitions: %w", err)
	}
	sources := make([]Source, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := path.Join("definitions", entry.Name())
		data, err := definitionsFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read bundled definition %s: %w", name, err)
		}
		sources = append(sources, Source{Name: "builtin:" + entry.Name(), Data: data})
	}
	return sources, nil
}

// LoadEmbedded builds a registry from the bundled definitions only.
func (l *Loader) LoadEmbedded() (*Registry, error) {
	sources, err := EmbeddedSources()
	if err != nil {
		return nil, err
	}
	return l.Load(sources...)
}

// LoadEmbedded builds a registry from the bundled definitions, checked
// against the default service catalog.
func LoadEmbedded() (*Registry, error) {
	return NewLoader(WithCatalog(service.Default())).LoadEmbedded()
}
