// internal/catalog/catalog_test.go
package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLookups(t *testing.T) {
	c := Default()

	b, ok := c.Bundle("MTN", "mtn-500")
	require.True(t, ok)
	assert.Equal(t, "500MB - 7 Days", b.Name)
	assert.True(t, b.Price.Equal(decimal.NewFromInt(500)))

	_, ok = c.Bundle("MTN", "air-100")
	assert.False(t, ok, "bundle id must belong to the requested network")
	_, ok = c.Bundle("Unknown", "mtn-100")
	assert.False(t, ok)

	r, ok := c.Rate(" usd ")
	require.True(t, ok)
	assert.True(t, r.Rate.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, "1.2", r.FeePercent.String())

	_, ok = c.Rate("JPY")
	assert.False(t, ok)

	assert.Equal(t, []string{"9Mobile", "Airtel", "Glo", "MTN"}, c.Networks())
	assert.Equal(t, []string{"EUR", "GBP", "USD"}, c.Currencies())
}

func TestCopiesAreDetached(t *testing.T) {
	c := Default()
	bundles := c.BundlesCopy()
	bundles["MTN"][0].Price = decimal.NewFromInt(1)
	delete(bundles, "Glo")

	rates := c.RatesCopy()
	delete(rates, "USD")

	b, _ := c.Bundle("MTN", "mtn-100")
	assert.True(t, b.Price.Equal(decimal.NewFromInt(100)))
	_, ok := c.Bundle("Glo", "glo-200")
	assert.True(t, ok)
	_, ok = c.Rate("USD")
	assert.True(t, ok)
}

func TestLoadYAMLOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := `
fx:
  cad:
    rate: 1100
    fee_percent: 0.9
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	r, ok := c.Rate("CAD")
	require.True(t, ok)
	assert.Equal(t, "1100", r.Rate.String())
	_, ok = c.Rate("USD")
	assert.False(t, ok, "fx section replaces the default table")

	_, ok = c.Bundle("MTN", "mtn-100")
	assert.True(t, ok, "bundles fall back to defaults when absent")
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := `
bundles:
  MTN:
    - id: mtn-free
      name: Free
      price: 0
      data: 1MB
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := Load(path)
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	c, err := Load("")
	require.NoError(t, err)
	assert.Len(t, c.FX, 3)
}
