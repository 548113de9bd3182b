package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nutribudget/backend/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// Supported file formats
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// file is the on-disk layout of the catalog reference data
type file struct {
	Version string   `json:"version" yaml:"version"`
	Entries []record `json:"entries" yaml:"entries"`
}

type record struct {
	Category    string  `json:"category" yaml:"category"`
	ProductName string  `json:"productName" yaml:"productName"`
	Price       float64 `json:"price" yaml:"price"`
	HealthScore int     `json:"healthScore" yaml:"healthScore"`
}

// LoadDefault builds the catalog embedded in the binary
func LoadDefault() (*domain.Catalog, error) {
	return Parse(defaultCatalog, FormatYAML)
}

// Load reads a catalog file. The format is chosen by extension: .json is
// JSON, .yaml and .yml are YAML.
func Load(path string) (*domain.Catalog, error) {
	format, err := formatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read catalog file: %w", err)
	}

	return Parse(data, format)
}

// LoadOrDefault loads path when it is set and the embedded catalog otherwise
func LoadOrDefault(path string) (*domain.Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return LoadDefault()
	}
	return Load(path)
}

// Parse decodes and validates catalog data. Every record must have a product
// name, a non-negative price and a score in [0,100]; categories are
// normalized onto the closed category set. Any invalid record fails the
// whole load.
func Parse(data []byte, format string) (*domain.Catalog, error) {
	var f file
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", domain.ErrInvalidCatalog, format)
	}

	if strings.TrimSpace(f.Version) == "" {
		return nil, fmt.Errorf("%w: version is required", domain.ErrInvalidCatalog)
	}

	entries := make([]domain.CatalogEntry, 0, len(f.Entries))
	seen := make(map[string]bool, len(f.Entries))
	for i, r := range f.Entries {
		entry, err := r.toEntry()
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", domain.ErrInvalidCatalog, i+1, err)
		}

		key := entry.Category + "\x00" + strings.ToLower(entry.ProductName)
		if seen[key] {
			return nil, fmt.Errorf("%w: entry %d: duplicate product %q in %s",
				domain.ErrInvalidCatalog, i+1, entry.ProductName, entry.Category)
		}
		seen[key] = true

		entries = append(entries, entry)
	}

	return domain.NewCatalog(f.Version, entries), nil
}

func (r record) toEntry() (domain.CatalogEntry, error) {
	name := strings.TrimSpace(r.ProductName)
	if name == "" {
		return domain.CatalogEntry{}, fmt.Errorf("productName is required")
	}
	price, err := domain.ParseAmount(r.Price)
	if err != nil {
		return domain.CatalogEntry{}, fmt.Errorf("%q has an invalid price: %v", name, err)
	}
	if r.HealthScore < 0 || r.HealthScore > 100 {
		return domain.CatalogEntry{}, fmt.Errorf("%q has a health score outside [0,100]", name)
	}
	category := domain.NormalizeCategory(r.Category)
	if !domain.IsKnownCategory(category) {
		return domain.CatalogEntry{}, fmt.Errorf("%q has unknown category %q", name, r.Category)
	}

	return domain.CatalogEntry{
		Category:    category,
		ProductName: name,
		Price:       price,
		HealthScore: r.HealthScore,
	}, nil
}

func formatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: unsupported catalog file extension %q", domain.ErrInvalidCatalog, filepath.Ext(path))
	}
}
