package source

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// CatalogEntry is one row of the diagnostic catalog: the hint/suggestion
// text that goes with a code, independent of where it's raised.
type CatalogEntry struct {
	Hint       string `yaml:"hint"`
	Suggestion string `yaml:"suggestion"`
}

// Catalog maps diagnostic codes to their default hint/suggestion text.
// Keeping this as data (rather than a Go switch at every call site) lets
// the catalog grow without touching the passes that raise diagnostics.
type Catalog struct {
	entries map[Code]CatalogEntry
}

// DefaultCatalog parses the catalog embedded in the binary. It never
// fails on a well-formed build; a malformed embed is a programmer error
// that panics here, not a runtime condition.
func DefaultCatalog() *Catalog {
	c, err := LoadCatalog(defaultCatalogYAML)
	if err != nil {
		panic("source: embedded catalog.yaml is invalid: " + err.Error())
	}
	return c
}

// LoadCatalog parses a YAML document of the same shape as catalog.yaml.
// A project may ship its own catalog (e.g. to localize hints) and load
// it here instead of using DefaultCatalog.
func LoadCatalog(data []byte) (*Catalog, error) {
	raw := map[Code]CatalogEntry{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return &Catalog{entries: raw}, nil
}

// Lookup returns the catalog entry for code, if any.
func (c *Catalog) Lookup(code Code) (CatalogEntry, bool) {
	if c == nil {
		return CatalogEntry{}, false
	}
	e, ok := c.entries[code]
	return e, ok
}
