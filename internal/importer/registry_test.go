package importer

import (
	"bytes"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/sheet"
)

// =============================================================================
// Registry
// =============================================================================

func TestRegistry(t *testing.T) {
	Clear()
	t.Cleanup(Clear)

	Register(Definition{Schema: ColumnSchema{Key: "vessels", Columns: []ColumnSpec{{Key: "a", Label: "A"}}}})
	Register(Definition{Schema: ColumnSchema{Key: "barges", Columns: []ColumnSpec{{Key: "a", Label: "A"}}}})

	if _, ok := Get("vessels"); !ok {
		t.Error("Get(vessels) not found")
	}
	if _, err := Lookup("trains"); !errors.Is(err, ErrUnknownSchema) {
		t.Errorf("Lookup(trains) error = %v, want ErrUnknownSchema", err)
	}

	var keys []string
	for _, def := range All() {
		keys = append(keys, def.Schema.Key)
	}
	if diff := cmp.Diff([]string{"barges", "vessels"}, keys); diff != "" {
		t.Errorf("All() keys mismatch (-want +got):\n%s", diff)
	}
}

func TestRegister_Panics(t *testing.T) {
	Clear()
	t.Cleanup(Clear)

	def := Definition{Schema: ColumnSchema{Key: "vessels", Columns: []ColumnSpec{{Key: "a", Label: "A"}}}}
	Register(def)

	tests := map[string]Definition{
		"duplicate key":    def,
		"duplicate column": {Schema: ColumnSchema{Key: "x", Columns: []ColumnSpec{{Key: "a", Label: "A"}, {Key: "a", Label: "B"}}}},
		"no columns":       {Schema: ColumnSchema{Key: "y"}},
	}
	for name, d := range tests {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("Register() did not panic")
				}
			}()
			Register(d)
		})
	}
}

// =============================================================================
// Schema files
// =============================================================================

const vesselYAML = `
key: vessels
label: Vessel movements
columns:
  - key: vessel_name
    label: Vessel name
    example: Tanzanite
    required: true
  - key: imo
    label: IMO
    example: "9456147"
    internal: true
  - key: loading_start
    label: Loading start
    example: "2024-03-15"
    type: date
  - key: quantity
    label: Quantity
    example: "31500"
    type: number
`

func TestParseSchema(t *testing.T) {
	got, err := ParseSchema([]byte(vesselYAML), "vessels.yaml")
	if err != nil {
		t.Fatalf("ParseSchema() error = %v", err)
	}

	want := ColumnSchema{
		Key:   "vessels",
		Label: "Vessel movements",
		Columns: []ColumnSpec{
			{Key: "vessel_name", Label: "Vessel name", Example: "Tanzanite", Required: true, Type: FieldText},
			{Key: "imo", Label: "IMO", Example: "9456147", Type: FieldText, Internal: true},
			{Key: "loading_start", Label: "Loading start", Example: "2024-03-15", Type: FieldDate},
			{Key: "quantity", Label: "Quantity", Example: "31500", Type: FieldNumber},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("schema mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSchema_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":        "  \n",
		"bad yaml":     "key: [",
		"bad type":     "key: s\ncolumns:\n  - key: a\n    label: A\n    type: money\n",
		"missing key":  "columns:\n  - key: a\n    label: A\n",
		"no label":     "key: s\ncolumns:\n  - key: a\n",
		"duplicate id": "key: s\ncolumns:\n  - key: a\n    label: A\n  - key: a\n    label: B\n",
	}
	for name, doc := range tests {
		if _, err := ParseSchema([]byte(doc), name+".yaml"); err == nil {
			t.Errorf("%s: ParseSchema() expected error", name)
		}
	}
}

func TestLoadSchemasFS(t *testing.T) {
	fsys := fstest.MapFS{
		"vessels.yaml":       {Data: []byte(vesselYAML)},
		"nested/barges.yml":  {Data: []byte("key: barges\ncolumns:\n  - key: a\n    label: A\n")},
		"README.md":          {Data: []byte("not a schema")},
		"nested/ignored.txt": {Data: []byte("key: nope")},
	}

	got, err := LoadSchemasFS(fsys)
	if err != nil {
		t.Fatalf("LoadSchemasFS() error = %v", err)
	}
	var keys []string
	for _, s := range got {
		keys = append(keys, s.Key)
	}
	if diff := cmp.Diff([]string{"barges", "vessels"}, keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}

	dup := fstest.MapFS{
		"a.yaml": {Data: []byte(vesselYAML)},
		"b.yaml": {Data: []byte(vesselYAML)},
	}
	if _, err := LoadSchemasFS(dup); err == nil {
		t.Error("LoadSchemasFS() with duplicate keys expected error")
	}

	if got, err := LoadSchemasFS(nil); err != nil || got != nil {
		t.Errorf("LoadSchemasFS(nil) = %v, %v, want nil, nil", got, err)
	}
}

// =============================================================================
// Templates
// =============================================================================

func TestTemplate_RoundTrip(t *testing.T) {
	schema, err := ParseSchema([]byte(vesselYAML), "vessels.yaml")
	if err != nil {
		t.Fatalf("ParseSchema() error = %v", err)
	}

	wantHeaders := []string{"Vessel name (Mandatory)", "IMO", "Loading start", "Quantity"}
	if diff := cmp.Diff(wantHeaders, TemplateHeaders(schema)); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}

	var buf bytes.Buffer
	if err := WriteTemplate(&buf, schema); err != nil {
		t.Fatalf("WriteTemplate() error = %v", err)
	}

	res, err := ParseFile(buf.Bytes(), sheet.EngineExcelize, Definition{Schema: schema})
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if len(res.Rows) != 1 {
		t.Fatalf("len(Rows) = %d, want 1", len(res.Rows))
	}
	if got := res.Rows[0].Get("vessel_name"); got != "Tanzanite" {
		t.Errorf("vessel_name = %q, want Tanzanite", got)
	}
	if got := res.Rows[0].Get("imo"); got != "9456147" {
		t.Errorf("imo = %q, want 9456147", got)
	}
	if got := res.Rows[0].Get("loading_start"); got != "2024-03-15" {
		t.Errorf("loading_start = %q, want 2024-03-15", got)
	}
}
