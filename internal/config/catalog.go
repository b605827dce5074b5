package config

import "sort"

// Slot is one named exercise definition from the catalog.
type Slot struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Exercise string `yaml:"exercise"`
	Reps     string `yaml:"reps"`
	Image    string `yaml:"image"`
}

// Catalog is the flat slot lookup built once at startup.
type Catalog map[string]Slot

// BuildCatalog flattens the grouped slot configuration into a lookup keyed
// by slot id. Groups are visited in sorted order; a duplicate id overwrites
// the earlier one.
func BuildCatalog(groups map[string][]Slot) Catalog {
	catalog := make(Catalog)
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, slot := range groups[name] {
			catalog[slot.ID] = slot
		}
	}
	return catalog
}

// Lookup returns the slot definition for id.
func (c Catalog) Lookup(id string) (Slot, bool) {
	slot, ok := c[id]
	return slot, ok
}
