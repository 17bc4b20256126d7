// Package capability answers feature queries against a table fixed at
// startup. The table maps a runtime class and interface version to the
// set of capability tags its instances support; there is no runtime
// introspection, only lookups into the loaded table.
package capability

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed features.toml
var defaultTable []byte

// Class is one entry of the capability table.
type Class struct {
	// Name of the runtime class, e.g. "ComputeDevice".
	Name string `toml:"name"`
	// Version of the class interface the tag set was recorded for.
	Version int `toml:"version"`
	// Tags the class supports.
	Tags []string `toml:"tags"`
}

type table struct {
	Classes []Class `toml:"class"`
}

// Registry is an immutable capability table. Build one at startup via
// Default or Load and share it freely; lookups do not mutate it.
type Registry struct {
	classes map[string]Class
	tags    map[string]map[string]bool
}

// Default returns the registry built from the table embedded at
// compile time.
func Default() (*Registry, error) {
	return Parse(defaultTable)
}

// Load reads a capability table from a TOML file on disk.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("capability: read table: %w", err)
	}
	return Parse(data)
}

// Parse builds a registry from TOML bytes.
func Parse(data []byte) (*Registry, error) {
	var t table
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("capability: parse table: %w", err)
	}

	r := &Registry{
		classes: make(map[string]Class, len(t.Classes)),
		tags:    make(map[string]map[string]bool, len(t.Classes)),
	}
	for _, c := range t.Classes {
		if c.Name == "" {
			return nil, fmt.Errorf("capability: class entry with empty name")
		}
		if _, dup := r.classes[c.Name]; dup {
			return nil, fmt.Errorf("capability: duplicate class %q", c.Name)
		}
		r.classes[c.Name] = c

		set := make(map[string]bool, len(c.Tags))
		for _, tag := range c.Tags {
			set[tag] = true
		}
		r.tags[c.Name] = set
	}
	return r, nil
}

// Supports reports whether the named class lists the tag. An unknown
// class and a known class lacking the tag both return false; callers
// that need to tell the cases apart use Lookup.
func (r *Registry) Supports(class, tag string) bool {
	return r.tags[class][tag]
}

// Lookup returns the table entry for class, and whether the class is
// known at all.
func (r *Registry) Lookup(class string) (Class, bool) {
	c, ok := r.classes[class]
	return c, ok
}

// Classes returns the names of every class in the table, in no
// particular order.
func (r *Registry) Classes() []string {
	names := make([]string, 0, len(r.classes))
	for name := range r.classes {
		names = append(names, name)
	}
	return names
}
