package field_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrsobakin/seabattle/internal/game/field"
)

func TestCatalog(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		c := field.DefaultCatalog()
		require.Equal(t, 5, c.Len())

		total := 0
		for _, spec := range c.Specs() {
			total += spec.Cells()
		}
		assert.Equal(t, 17, total)
	})

	t.Run("Lookup", func(t *testing.T) {
		c := field.DefaultCatalog()

		spec, err := c.Lookup(3)
		require.NoError(t, err)
		assert.Equal(t, "cruiser", spec.Name)

		_, err = c.Lookup(42)
		assert.ErrorIs(t, err, field.ErrConfiguration)
	})

	t.Run("ByName", func(t *testing.T) {
		c := field.DefaultCatalog()

		spec, ok := c.ByName("destroyer")
		require.True(t, ok)
		assert.Equal(t, 5, spec.ID)
		assert.Equal(t, int64(2), spec.W)

		_, ok = c.ByName("Destroyer")
		assert.False(t, ok, "names are case sensitive")

		_, ok = c.ByName("")
		assert.False(t, ok)
	})

	t.Run("SpecsAreCopied", func(t *testing.T) {
		c := field.DefaultCatalog()

		specs := c.Specs()
		specs[0].Name = "dinghy"

		_, ok := c.ByName("carrier")
		assert.True(t, ok)
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := field.NewCatalog()
		assert.ErrorIs(t, err, field.ErrConfiguration)

		_, err = field.NewCatalog(line(2), line(2))
		assert.ErrorIs(t, err, field.ErrConfiguration, "duplicate id")

		_, err = field.NewCatalog(field.ShipSpec{ID: 1, Name: "flat", W: 3, H: 0})
		assert.ErrorIs(t, err, field.ErrConfiguration)

		_, err = field.LoadCatalog([]byte(`{"id": 1}`))
		assert.ErrorIs(t, err, field.ErrConfiguration)
	})
}
