package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nutribudget/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefault(t *testing.T) {
	cat, err := LoadDefault()
	require.NoError(t, err)

	assert.NotEmpty(t, cat.Version())
	assert.Equal(t, domain.KnownCategories(), sortedKnown(cat.Categories()),
		"default catalog should cover every category")

	for _, category := range cat.Categories() {
		entries := cat.Lookup(category)
		require.NotEmpty(t, entries, category)
		for i := 1; i < len(entries); i++ {
			prev, cur := entries[i-1], entries[i]
			ordered := prev.HealthScore > cur.HealthScore ||
				(prev.HealthScore == cur.HealthScore && prev.Price <= cur.Price)
			assert.True(t, ordered, "%s: %q should rank before %q", category, prev.ProductName, cur.ProductName)
		}
	}

	var sparkling *domain.CatalogEntry
	for _, e := range cat.Lookup(domain.CategoryBeverages) {
		if e.ProductName == "Sparkling Water" {
			e := e
			sparkling = &e
		}
	}
	require.NotNil(t, sparkling)
	assert.Equal(t, domain.Money(180), sparkling.Price)
	assert.Equal(t, 80, sparkling.HealthScore)
}

// sortedKnown orders categories the way domain.KnownCategories does
func sortedKnown(categories []string) []string {
	present := make(map[string]bool, len(categories))
	for _, c := range categories {
		present[c] = true
	}
	var out []string
	for _, c := range domain.KnownCategories() {
		if present[c] {
			out = append(out, c)
		}
	}
	return out
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		format  string
		wantErr bool
		wantLen int
	}{
		{
			name: "yaml with aliases",
			data: `
version: test
entries:
  - {category: Beverage, productName: Sparkling Water, price: 1.80, healthScore: 80}
  - {category: fruit, productName: Apples, price: 1.99, healthScore: 92}
`,
			format:  FormatYAML,
			wantLen: 2,
		},
		{
			name:    "json",
			data:    `{"version":"test","entries":[{"category":"dairy","productName":"Skim Milk","price":2.99,"healthScore":78}]}`,
			format:  FormatJSON,
			wantLen: 1,
		},
		{
			name:    "empty entry list",
			data:    `{"version":"test","entries":[]}`,
			format:  FormatJSON,
			wantLen: 0,
		},
		{
			name:    "missing version",
			data:    `{"entries":[]}`,
			format:  FormatJSON,
			wantErr: true,
		},
		{
			name:    "missing product name",
			data:    `{"version":"v","entries":[{"category":"dairy","productName":" ","price":1,"healthScore":50}]}`,
			format:  FormatJSON,
			wantErr: true,
		},
		{
			name:    "negative price",
			data:    `{"version":"v","entries":[{"category":"dairy","productName":"Milk","price":-1,"healthScore":50}]}`,
			format:  FormatJSON,
			wantErr: true,
		},
		{
			name:    "price too large",
			data:    `{"version":"v","entries":[{"category":"dairy","productName":"Milk","price":1e18,"healthScore":50}]}`,
			format:  FormatJSON,
			wantErr: true,
		},
		{
			name:    "score above range",
			data:    `{"version":"v","entries":[{"category":"dairy","productName":"Milk","price":1,"healthScore":101}]}`,
			format:  FormatJSON,
			wantErr: true,
		},
		{
			name:    "unknown category",
			data:    `{"version":"v","entries":[{"category":"hardware","productName":"Nails","price":1,"healthScore":50}]}`,
			format:  FormatJSON,
			wantErr: true,
		},
		{
			name:    "duplicate product",
			data:    `{"version":"v","entries":[{"category":"dairy","productName":"Milk","price":1,"healthScore":50},{"category":"milk","productName":"milk","price":2,"healthScore":60}]}`,
			format:  FormatJSON,
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			data:    "version: [unclosed",
			format:  FormatYAML,
			wantErr: true,
		},
		{
			name:    "unsupported format",
			data:    "version = 1",
			format:  "toml",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, err := Parse([]byte(tt.data), tt.format)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidCatalog)
				assert.Nil(t, cat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, cat.Len())
		})
	}
}

func TestParse_NormalizesAndConvertsPrices(t *testing.T) {
	data := `
version: "2024-06"
entries:
  - {category: " Drinks ", productName: "  Sparkling Water ", price: 1.8, healthScore: 80}
`
	cat, err := Parse([]byte(data), FormatYAML)
	require.NoError(t, err)

	entries := cat.Lookup(domain.CategoryBeverages)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.CatalogEntry{
		Category:    domain.CategoryBeverages,
		ProductName: "Sparkling Water",
		Price:       180,
		HealthScore: 80,
	}, entries[0])
	assert.Equal(t, "2024-06", cat.Version())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(jsonPath,
		[]byte(`{"version":"file","entries":[{"category":"snacks","productName":"Hummus","price":3.49,"healthScore":72}]}`), 0o600))

	ymlPath := filepath.Join(dir, "catalog.yml")
	require.NoError(t, os.WriteFile(ymlPath,
		[]byte("version: file\nentries:\n  - {category: snacks, productName: Hummus, price: 3.49, healthScore: 72}\n"), 0o600))

	for _, path := range []string{jsonPath, ymlPath} {
		cat, err := Load(path)
		require.NoError(t, err, path)
		assert.Equal(t, "file", cat.Version())
		assert.Len(t, cat.Lookup(domain.CategorySnacks), 1)
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "catalog.txt"))
		assert.ErrorIs(t, err, domain.ErrInvalidCatalog)
	})
}

func TestLoadOrDefault(t *testing.T) {
	cat, err := LoadOrDefault("  ")
	require.NoError(t, err)

	def, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, def.Len(), cat.Len())
	assert.Equal(t, def.Version(), cat.Version())
}
