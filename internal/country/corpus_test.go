package country

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEntries_Embedded(t *testing.T) {
	entries := Entries()
	if len(entries) < 240 {
		t.Fatalf("len(Entries()) = %d, want the full ISO list", len(entries))
	}

	codes := make(map[string]bool, len(entries))
	names := make(map[string]string, len(entries))
	for _, e := range entries {
		if codes[e.Code] {
			t.Errorf("duplicate code %s", e.Code)
		}
		codes[e.Code] = true

		lower := strings.ToLower(e.Name)
		if prev, ok := names[lower]; ok {
			t.Errorf("name %q used by %s and %s", e.Name, prev, e.Code)
		}
		names[lower] = e.Code
	}
}

func TestParseEntries(t *testing.T) {
	in := "code,name,aliases\nro,Romania,România|Rumania\nGB,United Kingdom,\n"
	got, err := ParseEntries(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseEntries() error = %v", err)
	}
	want := []Entry{
		{Code: "RO", Name: "Romania", Aliases: []string{"România", "Rumania"}},
		{Code: "GB", Name: "United Kingdom"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEntries_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":        "",
		"wrong header": "name,code,aliases\n",
		"short code":   "code,name,aliases\nR,Romania,\n",
		"no name":      "code,name,aliases\nRO,,\n",
		"field count":  "code,name,aliases\nRO,Romania\n",
	}
	for name, in := range tests {
		if _, err := ParseEntries(strings.NewReader(in)); err == nil {
			t.Errorf("%s: ParseEntries() expected error", name)
		}
	}
}

func TestAliasCorpus(t *testing.T) {
	c := NewAliasCorpus([]Entry{{Code: "CI", Name: "Côte d'Ivoire", Aliases: []string{"Ivory Coast"}}})

	if code, ok := c.LookupFuzzy("IVORY-COAST"); !ok || code != "CI" {
		t.Errorf("LookupFuzzy(IVORY-COAST) = %q, %v, want CI", code, ok)
	}
	if _, ok := c.LookupFuzzy("Ghana"); ok {
		t.Error("LookupFuzzy(Ghana) matched")
	}
}
