package pbfreader

// Tag tables carried forward verbatim from pbf_processor.rs's
// PbfProcessor::{POI_TAG, RELATION_TAG, WAYS_TAG} constants plus the inline
// road/building/name/train filters it builds per-blob.

// POITags selects the node kinds that become point-of-interest objects.
var POITags = []TagRule{
	{Key: "highway", Value: "traffic_signals", HasValue: true},
	{Key: "amenity", Value: "toilets", HasValue: true},
	{Key: "amenity", Value: "parking", HasValue: true},
	{Key: "railway", Value: "station", HasValue: true},
}

// RelationTags selects the relations PbfProcessor turns into polygons, and
// is also used by ExtractWayIDsFromRelations' pre-scan.
var RelationTags = []TagRule{
	{Key: "water", HasValue: false},
	{Key: "natural", Value: "wood", HasValue: true},
	{Key: "natural", Value: "water", HasValue: true},
	{Key: "natural", Value: "bay", HasValue: true},
	{Key: "landuse", Value: "grass", HasValue: true},
	{Key: "landuse", Value: "forest", HasValue: true},
}

// WayTags selects every way kind this pipeline extracts, roads and area
// ways alike; the dispatch on key ("railway"/"highway" vs. everything else)
// happens in the pbfpipeline way pass.
var WayTags = []TagRule{
	{Key: "railway", Value: "rail", HasValue: true},
	{Key: "highway", Value: "motorway", HasValue: true},
	{Key: "highway", Value: "trunk", HasValue: true},
	{Key: "highway", Value: "primary", HasValue: true},
	{Key: "highway", Value: "secondary", HasValue: true},
	{Key: "highway", Value: "tertiary", HasValue: true},
	{Key: "highway", Value: "unclassified", HasValue: true},
	{Key: "highway", Value: "residential", HasValue: true},
	{Key: "highway", Value: "motorway_link", HasValue: true},
	{Key: "highway", Value: "trunk_link", HasValue: true},
	{Key: "highway", Value: "primary_link", HasValue: true},
	{Key: "highway", Value: "secondary_link", HasValue: true},
	{Key: "highway", Value: "tertiary_link", HasValue: true},
	{Key: "highway", Value: "service", HasValue: true},
	{Key: "highway", Value: "footway", HasValue: true},
	{Key: "water", HasValue: false},
	{Key: "leisure", Value: "park", HasValue: true},
	{Key: "natural", Value: "wood", HasValue: true},
	{Key: "natural", Value: "water", HasValue: true},
	{Key: "landuse", Value: "forest", HasValue: true},
	{Key: "landuse", Value: "grass", HasValue: true},
	{Key: "building", Value: "yes", HasValue: true},
	{Key: "building", Value: "commercial", HasValue: true},
	{Key: "building", Value: "industrial", HasValue: true},
}

// RoadTags resolves layer/tunnel/bridge/name:en/name on a road way, read via
// FilterAll (a way can carry several of these at once).
var RoadTags = []TagRule{
	{Key: "layer", HasValue: false},
	{Key: "tunnel", Value: "yes", HasValue: true},
	{Key: "bridge", HasValue: false},
	{Key: "name:en", HasValue: false},
	{Key: "name", HasValue: false},
}

// BuildingTags resolves building:levels on an area way.
var BuildingTags = []TagRule{
	{Key: "building:levels", HasValue: false},
}

// NameTags resolves name:en/name on a POI node.
var NameTags = []TagRule{
	{Key: "name:en", HasValue: false},
	{Key: "name", HasValue: false},
}

// TrainTag detects the train=yes marker on a railway=station POI node.
var TrainTag = []TagRule{
	{Key: "train", Value: "yes", HasValue: true},
}
