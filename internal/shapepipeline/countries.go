// Package shapepipeline enriches the tile store with planet-wide shapefile
// data once the PBF pass is done: land polygons, admin boundary lines, and
// country/city population centers. Grounded on osm_tool/src/shape_processor.rs
// and osm_tool/src/countries.rs.
package shapepipeline

// TempCountries is the temp_countries.json schema: a country-code reference
// table used as a stand-in until a proper shapefile source is found for
// country centroids (see countries.rs's own "TODO Find shapefile for that").
type TempCountries struct {
	RefCountryCodes []RefCountryCode `json:"ref_country_codes"`
}

// RefCountryCode is one country's reference point and ISO codes.
type RefCountryCode struct {
	Country   string  `json:"country"`
	Alpha2    string  `json:"alpha2"`
	Alpha3    string  `json:"alpha3"`
	Numeric   int64   `json:"numeric"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
