package separator

import (
	"testing"

	"github.com/address-resolver/app/models"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestSeparate(t *testing.T) {
	s := New(zap.NewNop())

	testCases := []struct {
		name     string
		row      models.UniqueAddress
		expected models.UniqueAddress
	}{
		{
			name: "block and building from street",
			row: models.UniqueAddress{
				Components: models.Components{Street: "Davidashen 4th Block 25"},
			},
			expected: models.UniqueAddress{
				Components: models.Components{Block: "Davidashen 4th Block", Building: "25"},
			},
		},
		{
			name: "lane from street",
			row: models.UniqueAddress{
				Components: models.Components{Street: "3rd Lane 7"},
			},
			expected: models.UniqueAddress{
				Components: models.Components{Lane: "3rd Lane", Building: "7"},
			},
		},
		{
			name: "ordinal never mistaken for building",
			row: models.UniqueAddress{
				Components: models.Components{Street: "2-nd Street 15"},
			},
			expected: models.UniqueAddress{
				Components: models.Components{Street: "2-nd Street", Building: "15"},
			},
		},
		{
			name: "neighbourhood from street",
			row: models.UniqueAddress{
				Components: models.Components{Street: "Ajapnyak District 5"},
			},
			expected: models.UniqueAddress{
				Components: models.Components{Neighbourhood: "Ajapnyak District", Building: "5"},
			},
		},
		{
			name: "numbered street recovered",
			row: models.UniqueAddress{
				Components: models.Components{Street: "August 23"},
			},
			expected: models.UniqueAddress{
				Components: models.Components{Street: "August 23 Street"},
			},
		},
		{
			name: "block mislabeled as neighbourhood",
			row: models.UniqueAddress{
				Components: models.Components{Neighbourhood: "2nd Block"},
			},
			expected: models.UniqueAddress{
				Components: models.Components{Block: "2nd Block"},
			},
		},
		{
			name: "building recovered from translated text",
			row: models.UniqueAddress{
				Translated: "Yerevan Abovyan 10",
				Components: models.Components{Street: "Abovyan"},
			},
			expected: models.UniqueAddress{
				Translated: "Yerevan Abovyan 10",
				Components: models.Components{Street: "Abovyan", Building: "10"},
			},
		},
		{
			name: "populated fields never overwritten",
			row: models.UniqueAddress{
				Components: models.Components{Street: "Mashtots 5", Building: "12A"},
			},
			expected: models.UniqueAddress{
				Components: models.Components{Street: "Mashtots", Building: "12A"},
			},
		},
		{
			name: "regional street value dropped",
			row: models.UniqueAddress{
				Components: models.Components{Street: "Yerevan", Town: "Yerevan"},
			},
			expected: models.UniqueAddress{
				Components: models.Components{Town: "Yerevan"},
			},
		},
		{
			name: "generic street enriched with nearest place",
			row: models.UniqueAddress{
				Components: models.Components{Street: "Street", Town: "Abovyan", Province: "Kotayk"},
			},
			expected: models.UniqueAddress{
				Components: models.Components{Street: "Abovyan Street", Town: "Abovyan", Province: "Kotayk"},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			row := tc.row
			s.Separate(&row)

			assert.Equal(t, tc.expected.Street, row.Street, "street")
			assert.Equal(t, tc.expected.Block, row.Block, "block")
			assert.Equal(t, tc.expected.Lane, row.Lane, "lane")
			assert.Equal(t, tc.expected.Building, row.Building, "building")
			assert.Equal(t, tc.expected.Neighbourhood, row.Neighbourhood, "neighbourhood")
			assert.Equal(t, tc.expected.Translated, row.Translated, "translated")
		})
	}
}

func TestSeparateIsIdempotent(t *testing.T) {
	s := New(zap.NewNop())

	row := models.UniqueAddress{
		Translated: "Yerevan, Davidashen 4th Block 25",
		Components: models.Components{Street: "Davidashen 4th Block 25"},
	}
	s.Separate(&row)
	first := row

	s.Separate(&row)
	assert.Equal(t, first, row)
}

func TestSplitOnDelimiters(t *testing.T) {
	testCases := []struct {
		name           string
		row            models.UniqueAddress
		expectedStreet string
		expectedTown   string
	}{
		{
			name:           "comma splits street then town",
			row:            models.UniqueAddress{Translated: "Mashtots Avenue, Yerevan"},
			expectedStreet: "Mashtots Avenue",
			expectedTown:   "Yerevan",
		},
		{
			name:           "marker delimiter carries town first",
			row:            models.UniqueAddress{Translated: "Yerevan › Abovyan Street"},
			expectedStreet: "Abovyan Street",
			expectedTown:   "Yerevan",
		},
		{
			name:           "short parts discarded",
			row:            models.UniqueAddress{Translated: "Mashtots Avenue, 1"},
			expectedStreet: "Mashtots Avenue",
			expectedTown:   "",
		},
		{
			name: "existing values preserved",
			row: models.UniqueAddress{
				Translated: "Something, Else",
				Components: models.Components{Street: "Komitas", Town: "Gyumri"},
			},
			expectedStreet: "Komitas",
			expectedTown:   "Gyumri",
		},
		{
			name:           "no delimiter leaves fields empty",
			row:            models.UniqueAddress{Translated: "Mashtots Avenue 5"},
			expectedStreet: "",
			expectedTown:   "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			row := tc.row
			SplitOnDelimiters(&row)
			assert.Equal(t, tc.expectedStreet, row.Street)
			assert.Equal(t, tc.expectedTown, row.Town)
		})
	}
}
