package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComponentsMerge(t *testing.T) {
	t.Run("first writer wins", func(t *testing.T) {
		c := Components{Street: "Mashtots Avenue", Provider: "first"}
		c.Merge(Components{
			Street: "Wrong Street", Town: "Yerevan", Provider: "second",
		})

		assert.Equal(t, "Mashtots Avenue", c.Street)
		assert.Equal(t, "Yerevan", c.Town)
		assert.Equal(t, "first", c.Provider)
	})

	t.Run("coordinates merge as a pair", func(t *testing.T) {
		c := Components{Latitude: 40.18, Longitude: 44.51}
		c.Merge(Components{Latitude: 1, Longitude: 2})

		assert.InDelta(t, 40.18, c.Latitude, 1e-9)
		assert.InDelta(t, 44.51, c.Longitude, 1e-9)
	})

	t.Run("empty target takes everything", func(t *testing.T) {
		var c Components
		c.Merge(Components{Country: "Armenia", Latitude: 40, Longitude: 44})

		assert.Equal(t, "Armenia", c.Country)
		assert.InDelta(t, 40.0, c.Latitude, 1e-9)
	})
}

func TestComponentsIsEmpty(t *testing.T) {
	assert.True(t, (&Components{}).IsEmpty())
	assert.True(t, (&Components{Provider: "tag only"}).IsEmpty())
	assert.False(t, (&Components{Town: "Yerevan"}).IsEmpty())
	assert.False(t, (&Components{Latitude: 40.18, Longitude: 44.51}).IsEmpty())
}

func TestUniqueAddressResolved(t *testing.T) {
	assert.False(t, (&UniqueAddress{Status: StatusPending}).Resolved())
	assert.True(t, (&UniqueAddress{Status: StatusOK}).Resolved())
	assert.True(t, (&UniqueAddress{Status: StatusFailed}).Resolved())
}
