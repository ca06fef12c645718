package shapepipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"

	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/geomclip"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/mapgeom"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/tileprocessor"
)

// Config names the planet-data source files. CitiesPath and AdminLinesPath
// are optional enrichment: a missing or unreadable file there is logged and
// skipped. LandPath and CountriesPath are required; a failure to read either
// aborts extraction.
type Config struct {
	LandPath       string
	CountriesPath  string
	CitiesPath     string
	AdminLinesPath string
}

// landAreaFloor drops land polygons too small to matter at planet scale —
// there are on the order of 800000 shapes in a typical land_polygons.shp,
// most of them irrelevant slivers.
const landAreaFloor = 0.001

// ExtractPlanetData reads land polygons, country/city population centers,
// and admin boundary lines, and feeds each as a (object, geometry) pair into
// proc — the same dispatch every PBF-derived feature goes through. Grounded
// on shape_processor.rs's ShapeProcessor::extract_planet_data.
func ExtractPlanetData(ctx context.Context, cfg Config, proc *tileprocessor.Processor, worldBoundary orb.Bound, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	var landErr, countryErr error
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		landErr = extractLandShapes(ctx, cfg.LandPath, proc, worldBoundary, logger)
	}()
	go func() {
		defer wg.Done()
		countryErr = extractCountriesAndCities(ctx, cfg.CountriesPath, cfg.CitiesPath, proc, logger)
	}()
	go func() {
		defer wg.Done()
		extractAdminBoundaries(ctx, cfg.AdminLinesPath, proc, worldBoundary, logger)
	}()

	wg.Wait()

	if landErr != nil {
		return fmt.Errorf("extract land shapes: %w", landErr)
	}
	if countryErr != nil {
		return fmt.Errorf("extract countries: %w", countryErr)
	}
	return nil
}

// polygonFromShape reassembles a shp.Polygon's parts into an orb.Polygon,
// treating part 0 as the exterior ring and every remaining part as a hole —
// land polygons are documented upstream to resolve to a single geo::Polygon
// per shape (see shape_processor.rs's "MultiPolygon for land should have
// only one polygon" comment).
func polygonFromShape(poly *shp.Polygon) orb.Polygon {
	parts := append(poly.Parts, int32(len(poly.Points)))
	rings := make(orb.Polygon, 0, len(poly.Parts))
	for i := 0; i < len(poly.Parts); i++ {
		start, end := parts[i], parts[i+1]
		ring := make(orb.Ring, 0, end-start)
		for _, pt := range poly.Points[start:end] {
			ring = append(ring, orb.Point{pt.X, pt.Y})
		}
		rings = append(rings, ring)
	}
	return rings
}

func boundFromBox(box shp.Box) orb.Bound {
	return orb.Bound{Min: orb.Point{box.MinX, box.MinY}, Max: orb.Point{box.MaxX, box.MaxY}}
}

func extractLandShapes(ctx context.Context, path string, proc *tileprocessor.Processor, worldBoundary orb.Bound, logger *slog.Logger) error {
	if path == "" {
		return fmt.Errorf("no land shapes path configured")
	}
	logger.Info("Extracting land shapes", "path", path)

	reader, err := shp.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer reader.Close()

	count := 0
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			continue
		}
		if !geomclip.RectIntersects(worldBoundary, boundFromBox(poly.Box)) {
			continue
		}

		rings := polygonFromShape(poly)
		if len(rings) == 0 {
			continue
		}
		if unsignedRingArea(rings[0]) < landAreaFloor {
			continue
		}

		obj := mapgeom.Object{ID: -1, Kind: mapgeom.ObjectKind{Tag: mapgeom.KindNature, Nature: mapgeom.NatureGround}}
		proc.AddToTiles(ctx, obj, mapgeom.Poly(rings))
		count++
	}
	logger.Info("Land shapes extracted", "count", count)
	return nil
}

func extractAdminBoundaries(ctx context.Context, path string, proc *tileprocessor.Processor, worldBoundary orb.Bound, logger *slog.Logger) {
	if path == "" {
		logger.Info("No admin boundary lines path configured, skipping")
		return
	}
	logger.Info("Extracting admin boundaries", "path", path)

	reader, err := shp.Open(path)
	if err != nil {
		logger.Warn("Can't read admin boundary shapefile, skipping", "error", err)
		return
	}
	defer reader.Close()

	count := 0
	for reader.Next() {
		_, shape := reader.Shape()
		line, ok := shape.(*shp.PolyLine)
		if !ok {
			continue
		}
		if !geomclip.RectIntersects(worldBoundary, boundFromBox(line.Box)) {
			continue
		}

		// A MultiLineString's first part only, matching
		// shape_processor.rs's `line.0.first().unwrap()`.
		parts := append(line.Parts, int32(len(line.Points)))
		end := parts[1]
		ls := make(orb.LineString, 0, end)
		for _, pt := range line.Points[:end] {
			ls = append(ls, orb.Point{pt.X, pt.Y})
		}

		obj := mapgeom.Object{ID: -1, Kind: mapgeom.ObjectKind{Tag: mapgeom.KindAdminLine}}
		proc.AddToTiles(ctx, obj, mapgeom.Line(ls))
		count++
	}
	logger.Info("Admin boundary lines extracted", "count", count)
}

func extractCountriesAndCities(ctx context.Context, countriesPath, citiesPath string, proc *tileprocessor.Processor, logger *slog.Logger) error {
	if countriesPath == "" {
		return fmt.Errorf("no countries reference file configured")
	}

	f, err := os.Open(countriesPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", countriesPath, err)
	}
	var countries TempCountries
	decodeErr := json.NewDecoder(f).Decode(&countries)
	f.Close()
	if decodeErr != nil {
		return fmt.Errorf("decode %s: %w", countriesPath, decodeErr)
	}

	for _, country := range countries.RefCountryCodes {
		obj := mapgeom.Object{
			ID: -1,
			Kind: mapgeom.ObjectKind{
				Tag: mapgeom.KindPoi,
				Poi: mapgeom.PointInfo{Text: country.Country, Kind: mapgeom.PoiPopArea, PopLevel: 1},
			},
		}
		proc.AddToTiles(ctx, obj, mapgeom.Point(orb.Point{country.Longitude, country.Latitude}))
	}

	extractCities(ctx, citiesPath, proc, logger)
	return nil
}

// extractCities reads the Natural Earth populated-places shapefile, source:
// https://www.naturalearthdata.com/downloads/50m-cultural-vectors/50m-populated-places/
func extractCities(ctx context.Context, path string, proc *tileprocessor.Processor, logger *slog.Logger) {
	if path == "" {
		logger.Info("No populated-places shapefile configured, skipping cities")
		return
	}

	reader, err := shp.Open(path)
	if err != nil {
		logger.Warn("Can't read cities shapefile, skipping", "error", err)
		return
	}
	defer reader.Close()

	fieldIndex := make(map[string]int)
	for i, field := range reader.Fields() {
		fieldIndex[field.String()] = i
	}

	count := 0
	for reader.Next() {
		_, shape := reader.Shape()
		point, ok := shape.(*shp.Point)
		if !ok {
			continue
		}

		name := attributeString(reader, fieldIndex, "NAME")
		if name == "" {
			continue
		}
		population := attributeUint(reader, fieldIndex, "POP_MIN")

		obj := mapgeom.Object{
			ID: -1,
			Kind: mapgeom.ObjectKind{
				Tag: mapgeom.KindPoi,
				Poi: mapgeom.PointInfo{Text: name, Kind: mapgeom.PoiPopArea, PopLevel: 0, Population: population},
			},
		}
		proc.AddToTiles(ctx, obj, mapgeom.Point(orb.Point{point.X, point.Y}))
		count++
	}
	logger.Info("Cities extracted", "count", count)
}

func attributeString(reader *shp.Reader, fieldIndex map[string]int, name string) string {
	idx, ok := fieldIndex[name]
	if !ok {
		return ""
	}
	return reader.Attribute(idx)
}

func attributeUint(reader *shp.Reader, fieldIndex map[string]int, name string) uint32 {
	s := attributeString(reader, fieldIndex, name)
	var n uint32
	_, _ = fmt.Sscanf(s, "%d", &n)
	return n
}

func unsignedRingArea(ring orb.Ring) float64 {
	var sum float64
	n := len(ring)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += ring[i][0]*ring[j][1] - ring[j][0]*ring[i][1]
	}
	if sum < 0 {
		sum = -sum
	}
	return sum / 2
}
