// Package shashlikconfig decodes the extract subcommand's input JSON,
// grounded on osm_tool/src/config.rs's ShashlikConfig.
package shashlikconfig

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/paulmach/orb"
)

// Area is one named extract region: an input file plus its clip rectangle.
type Area struct {
	Name    string  `json:"name"`
	Enabled bool    `json:"enabled"`
	Path    string  `json:"path"`
	Left    float64 `json:"left"`
	Top     float64 `json:"top"`
	Right   float64 `json:"right"`
	Bottom  float64 `json:"bottom"`
}

// Bound returns the area's clip rectangle as an orb.Bound (left/right are
// longitude, top/bottom are latitude with top > bottom, OSM-export style).
func (a Area) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{a.Left, a.Bottom},
		Max: orb.Point{a.Right, a.Top},
	}
}

// Config is the full shashlik extract config JSON.
type Config struct {
	LandPath             string `json:"land_path"`
	PlanetData           bool   `json:"planet_data"`
	MergePolygons        bool   `json:"merge_polygons"`
	PreserveRoadTopology bool   `json:"preserve_road_topology"`
	Areas                []Area `json:"areas"`

	// CountriesPath, CitiesPath and AdminLinesPath are not part of the
	// original shashlik config schema; they default to the paths
	// shape_processor.rs hard-codes and may be overridden here.
	CountriesPath  string `json:"countries_path"`
	CitiesPath     string `json:"cities_path"`
	AdminLinesPath string `json:"admin_lines_path"`
}

// defaultCountriesPath, defaultCitiesPath and defaultAdminLinesPath mirror
// the literal paths shape_processor.rs opens when the config doesn't
// override them.
const (
	defaultCountriesPath  = "temp_countries.json"
	defaultCitiesPath     = "ne_50m_populated_places/ne_50m_populated_places.shp"
	defaultAdminLinesPath = "ne_50m_admin_0_boundary_lines_land/ne_50m_admin_0_boundary_lines_land.shp"
)

// withDefaults fills in the shapefile enrichment paths shape_processor.rs
// hard-codes when the config leaves them unset.
func (c Config) withDefaults() Config {
	if c.CountriesPath == "" {
		c.CountriesPath = defaultCountriesPath
	}
	if c.CitiesPath == "" {
		c.CitiesPath = defaultCitiesPath
	}
	if c.AdminLinesPath == "" {
		c.AdminLinesPath = defaultAdminLinesPath
	}
	return c
}

// Load reads and decodes the config at path.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg.withDefaults(), nil
}
