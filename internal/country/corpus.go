package country

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

//go:embed countries.csv
var countriesCSV []byte

// Entry is one country of the corpus.
type Entry struct {
	Code    string   // ISO 3166-1 alpha-2, upper case
	Name    string   // English short name
	Aliases []string // Other names operators use
}

// Corpus answers name lookups the official-name maps miss. The default
// corpus matches the alias column of the embedded country list.
type Corpus interface {
	LookupFuzzy(name string) (code string, ok bool)
}

// ParseEntries reads a code,name,aliases CSV with a header row. Aliases are
// separated by "|".
func ParseEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("country: read header: %w", err)
	}
	if strings.ToLower(strings.TrimSpace(header[0])) != "code" {
		return nil, errors.New("country: corpus header must start with code")
	}

	var entries []Entry
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("country: %w", err)
		}

		code := strings.ToUpper(strings.TrimSpace(rec[0]))
		name := strings.TrimSpace(rec[1])
		if len(code) != 2 || name == "" {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("country: line %d: need a two-letter code and a name", line)
		}

		e := Entry{Code: code, Name: name}
		for _, alias := range strings.Split(rec[2], "|") {
			if alias = strings.TrimSpace(alias); alias != "" {
				e.Aliases = append(e.Aliases, alias)
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Entries returns the embedded corpus.
func Entries() []Entry {
	entries, err := ParseEntries(bytes.NewReader(countriesCSV))
	if err != nil {
		panic(err)
	}
	return entries
}

// AliasCorpus matches stripped alias spellings.
type AliasCorpus map[string]string

// NewAliasCorpus indexes the aliases of entries.
func NewAliasCorpus(entries []Entry) AliasCorpus {
	c := make(AliasCorpus)
	for _, e := range entries {
		for _, alias := range e.Aliases {
			if key := strip(alias); key != "" {
				c[key] = e.Code
			}
		}
	}
	return c
}

// LookupFuzzy implements Corpus.
func (c AliasCorpus) LookupFuzzy(name string) (string, bool) {
	code, ok := c[strip(name)]
	return code, ok
}
