// Package schemas registers the built-in import types.
//
// Import it for its side effect:
//
//	import _ "github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/importer/schemas"
package schemas

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/importer"
	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/vessel"
)

//go:embed *.yaml
var files embed.FS

// enrichers attaches row enrichment to schema keys.
var enrichers = map[string]importer.EnrichFunc{
	"vessels": vessel.Enrich,
}

func init() {
	schemas, err := importer.LoadSchemasFS(files)
	if err != nil {
		panic(err)
	}
	for _, s := range schemas {
		importer.Register(importer.Definition{Schema: s, Enrich: enrichers[s.Key]})
	}
}

// LoadDir registers every schema file in fsys, typically os.DirFS of
// IMPORT_SCHEMA_DIR. Schemas whose key has a built-in enricher get it.
func LoadDir(fsys fs.FS) (int, error) {
	schemas, err := importer.LoadSchemasFS(fsys)
	if err != nil {
		return 0, err
	}
	for _, s := range schemas {
		if _, exists := importer.Get(s.Key); exists {
			return 0, fmt.Errorf("schemas: %s is already registered", s.Key)
		}
	}
	for _, s := range schemas {
		importer.Register(importer.Definition{Schema: s, Enrich: enrichers[s.Key]})
	}
	return len(schemas), nil
}
