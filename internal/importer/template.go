package importer

import (
	"io"

	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/sheet"
)

// mandatorySuffix marks required columns in generated templates. The
// column mapper strips it again on import.
const mandatorySuffix = " (Mandatory)"

// TemplateHeaders returns the header labels for a blank import file.
// Internal columns are included: operators supply them, only the upserter
// never sees them.
func TemplateHeaders(schema ColumnSchema) []string {
	headers := make([]string, len(schema.Columns))
	for i, col := range schema.Columns {
		headers[i] = col.Label
		if col.Required {
			headers[i] += mandatorySuffix
		}
	}
	return headers
}

// TemplateExample returns the example row matching TemplateHeaders.
func TemplateExample(schema ColumnSchema) []string {
	example := make([]string, len(schema.Columns))
	for i, col := range schema.Columns {
		example[i] = col.Example
	}
	return example
}

// WriteTemplate writes an .xlsx template for schema to w.
func WriteTemplate(w io.Writer, schema ColumnSchema) error {
	return sheet.WriteTemplate(w, sheet.DefaultTemplateSheet, TemplateHeaders(schema), TemplateExample(schema))
}
