package importer

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type schemaFile struct {
	Key     string       `yaml:"key"`
	Label   string       `yaml:"label"`
	Columns []columnFile `yaml:"columns"`
}

type columnFile struct {
	Key      string `yaml:"key"`
	Label    string `yaml:"label"`
	Example  string `yaml:"example"`
	Required bool   `yaml:"required"`
	Type     string `yaml:"type"`
	Internal bool   `yaml:"internal"`
}

// ParseSchema decodes one YAML column schema. source names the file in
// error messages.
func ParseSchema(data []byte, source string) (ColumnSchema, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return ColumnSchema{}, fmt.Errorf("importer: schema file %s is empty", source)
	}

	var doc schemaFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return ColumnSchema{}, fmt.Errorf("importer: parse %s: %w", source, err)
	}

	schema := ColumnSchema{
		Key:     strings.TrimSpace(doc.Key),
		Label:   strings.TrimSpace(doc.Label),
		Columns: make([]ColumnSpec, 0, len(doc.Columns)),
	}
	for _, col := range doc.Columns {
		ft, err := ParseFieldType(col.Type)
		if err != nil {
			return ColumnSchema{}, fmt.Errorf("importer: %s column %q: %w", source, col.Key, err)
		}
		schema.Columns = append(schema.Columns, ColumnSpec{
			Key:      strings.TrimSpace(col.Key),
			Label:    strings.TrimSpace(col.Label),
			Example:  col.Example,
			Required: col.Required,
			Type:     ft,
			Internal: col.Internal,
		})
	}
	if schema.Label == "" {
		schema.Label = schema.Key
	}

	if err := schema.Validate(); err != nil {
		return ColumnSchema{}, fmt.Errorf("importer: %s: %w", source, err)
	}
	return schema, nil
}

// LoadSchemasFS walks fsys and parses every .yaml/.yml file as a column
// schema. A nil fsys yields no schemas. Duplicate keys are an error.
func LoadSchemasFS(fsys fs.FS) ([]ColumnSchema, error) {
	if fsys == nil {
		return nil, nil
	}

	var schemas []ColumnSchema
	seen := make(map[string]string)

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("importer: read %s: %w", path, err)
		}

		schema, err := ParseSchema(data, path)
		if err != nil {
			return err
		}
		if prev, exists := seen[schema.Key]; exists {
			return fmt.Errorf("importer: duplicate schema %q (files %s and %s)", schema.Key, prev, path)
		}
		seen[schema.Key] = path
		schemas = append(schemas, schema)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return schemas, nil
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}
