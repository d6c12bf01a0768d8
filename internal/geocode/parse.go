package geocode

import (
	"strconv"
	"strings"

	"github.com/address-resolver/app/models"
)

// yerevanDistricts disambiguates capital districts that Nominatim reports as
// suburbs from ordinary neighbourhoods.
var yerevanDistricts = map[string]struct{}{
	"Ajapnyak": {}, "Avan": {}, "Davtashen": {}, "Erebuni": {},
	"Kanaker-Zeytun": {}, "Kentron": {}, "Malatia-Sebastia": {},
	"Nor Nork": {}, "Nork-Marash": {}, "Nubarashen": {}, "Shengavit": {},
	"Arabkir": {}, "Qanaqer-Zeytun": {},
}

type nominatimResult struct {
	Lat     string            `json:"lat"`
	Lon     string            `json:"lon"`
	Address map[string]string `json:"address"`
}

// parseNominatim maps Nominatim address details into the common schema.
// https://nominatim.org/release-docs/latest/api/Output/#addressdetails
func parseNominatim(result nominatimResult) models.Components {
	c := models.Components{Provider: models.ProviderNominatim}
	c.Latitude, _ = strconv.ParseFloat(result.Lat, 64)
	c.Longitude, _ = strconv.ParseFloat(result.Lon, 64)

	fields := result.Address
	if fields == nil {
		return c
	}

	if suburb := fields["suburb"]; suburb != "" {
		if _, ok := yerevanDistricts[suburb]; ok {
			c.AdministrativeUnit = suburb
			delete(fields, "suburb")
		}
	}
	if locality := fields["locality"]; locality != "" {
		if strings.Contains(strings.ToLower(locality), "village") {
			c.Village = locality
			delete(fields, "locality")
		}
	}

	assign := func(target *string, labels ...string) {
		for _, label := range labels {
			if *target == "" && fields[label] != "" {
				*target = fields[label]
			}
		}
	}
	assign(&c.Building, "house_number")
	assign(&c.Street, "road", "highway")
	assign(&c.Country, "country")
	assign(&c.Province, "state")
	assign(&c.AdministrativeUnit, "state_district", "municipality")
	assign(&c.Town, "city", "town")
	assign(&c.Village, "village")
	assign(&c.Neighbourhood, "suburb", "neighbourhood", "quarter", "allotments", "subdivision")
	assign(&c.Block, "city_block")
	return c
}

type yandexResponse struct {
	Response struct {
		GeoObjectCollection struct {
			FeatureMember []struct {
				GeoObject struct {
					MetaDataProperty struct {
						GeocoderMetaData struct {
							Address struct {
								Components []struct {
									Kind string `json:"kind"`
									Name string `json:"name"`
								} `json:"Components"`
							} `json:"Address"`
						} `json:"GeocoderMetaData"`
					} `json:"metaDataProperty"`
					Point struct {
						Pos string `json:"pos"`
					} `json:"Point"`
				} `json:"GeoObject"`
			} `json:"featureMember"`
		} `json:"GeoObjectCollection"`
	} `json:"response"`
}

// parseYandex extracts coordinates and address parts keyed on the component
// "kind" field. Yandex returns "lon lat" as a single string.
// https://yandex.com/maps-api/docs/geocoder-api/response.html
func parseYandex(data yandexResponse) models.Components {
	c := models.Components{Provider: models.ProviderYandex}

	members := data.Response.GeoObjectCollection.FeatureMember
	if len(members) == 0 {
		return models.Components{}
	}
	geo := members[0].GeoObject

	if parts := strings.Fields(geo.Point.Pos); len(parts) == 2 {
		c.Longitude, _ = strconv.ParseFloat(parts[0], 64)
		c.Latitude, _ = strconv.ParseFloat(parts[1], 64)
	}

	kinds := make(map[string]string)
	for _, comp := range geo.MetaDataProperty.GeocoderMetaData.Address.Components {
		kinds[comp.Kind] = comp.Name
	}

	if locality := kinds["locality"]; locality != "" {
		if strings.Contains(strings.ToLower(locality), "village") {
			c.Village = locality
			delete(kinds, "locality")
		}
	}

	c.Country = kinds["country"]
	c.Province = kinds["province"]
	c.Town = kinds["locality"]
	c.Street = kinds["street"]
	c.Building = kinds["house"]
	c.AdministrativeUnit = kinds["area"]
	c.Neighbourhood = kinds["district"]
	return c
}

type azureResponse struct {
	Results []azureResult `json:"results"`
}

type azureResult struct {
	Address struct {
		CountrySubdivision          string `json:"countrySubdivision"`
		CountrySecondarySubdivision string `json:"countrySecondarySubdivision"`
		Municipality                string `json:"municipality"`
		Neighbourhood               string `json:"neighbourhood"`
		Locality                    string `json:"locality"`
		StreetName                  string `json:"streetName"`
		StreetNumber                string `json:"streetNumber"`
		Country                     string `json:"country"`
	} `json:"address"`
	Position struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"position"`
}

// parseAzure maps an Azure Maps search result into the common schema.
// https://learn.microsoft.com/en-us/rest/api/maps/search/get-search-address
func parseAzure(result azureResult) models.Components {
	addr := result.Address
	c := models.Components{Provider: models.ProviderAzure}

	c.Province = addr.CountrySubdivision
	c.AdministrativeUnit = addr.CountrySecondarySubdivision
	if c.AdministrativeUnit == "" {
		c.AdministrativeUnit = addr.Municipality
	}
	c.Neighbourhood = addr.Neighbourhood
	c.Town = addr.Locality
	c.Street = strings.TrimSpace(addr.StreetName + " " + addr.StreetNumber)
	c.Country = addr.Country
	c.Latitude = result.Position.Lat
	c.Longitude = result.Position.Lon
	return c
}

// parseLibpostal maps libpostal parser labels into the common schema.
// https://github.com/openvenues/libpostal#parser-labels
func parseLibpostal(labeled map[string]string) models.Components {
	c := models.Components{Provider: models.ProviderLibpostal}
	c.Building = strings.TrimSpace(labeled["house_number"])
	c.Street = strings.TrimSpace(labeled["road"])
	c.Town = strings.TrimSpace(labeled["city"])
	c.AdministrativeUnit = strings.TrimSpace(labeled["state_district"])
	c.Province = strings.TrimSpace(labeled["state"])
	c.Country = strings.TrimSpace(labeled["country"])
	return c
}
