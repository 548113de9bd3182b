package domain

import (
	"sort"
	"strings"
)

// CatalogEntry is a candidate substitute product
type CatalogEntry struct {
	Category    string `json:"category"`
	ProductName string `json:"productName"`
	Price       Money  `json:"price"`
	HealthScore int    `json:"healthScore"`
}

// Catalog is a read-only index of substitute products by category.
// It is built once and never mutated, so concurrent lookups need no locking.
type Catalog struct {
	version    string
	byCategory map[string][]CatalogEntry
	categories []string
	size       int
}

// NewCatalog indexes entries by category. Within a category entries are
// ordered by health score descending, then price ascending, then name.
// Entries are expected to carry already-normalized categories.
func NewCatalog(version string, entries []CatalogEntry) *Catalog {
	byCategory := make(map[string][]CatalogEntry)
	for _, e := range entries {
		byCategory[e.Category] = append(byCategory[e.Category], e)
	}

	categories := make([]string, 0, len(byCategory))
	for category, list := range byCategory {
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].HealthScore != list[j].HealthScore {
				return list[i].HealthScore > list[j].HealthScore
			}
			if list[i].Price != list[j].Price {
				return list[i].Price < list[j].Price
			}
			return strings.ToLower(list[i].ProductName) < strings.ToLower(list[j].ProductName)
		})
		// Cap capacity so an append by a caller can never write into the index
		byCategory[category] = list[:len(list):len(list)]
		categories = append(categories, category)
	}
	sort.Strings(categories)

	return &Catalog{
		version:    version,
		byCategory: byCategory,
		categories: categories,
		size:       len(entries),
	}
}

// Lookup returns the ranked candidates for a category, or nil when the
// category has none. The returned slice must not be modified.
func (c *Catalog) Lookup(category string) []CatalogEntry {
	if c == nil {
		return nil
	}
	return c.byCategory[category]
}

// Categories returns the sorted list of categories that have candidates
func (c *Catalog) Categories() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// Version identifies the reference data the catalog was built from
func (c *Catalog) Version() string {
	if c == nil {
		return ""
	}
	return c.version
}

// Len returns the total number of entries
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return c.size
}
