package pbfreader

import (
	"bytes"
	"compress/zlib"
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/paulmach/orb"

	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/errs"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/worker"
)

// decodeWorkers is the size of the blob-decode pool Data() and
// ExtractWayIDsFromRelations use, matching pbf_processor.rs/reader/mod.rs's
// threadpool::ThreadPool::new(6).
const decodeWorkers = 6

// Reader streams BlobHeader/Blob records out of an OSM PBF file and decodes
// them into BlobData, grounded on osm_tool/src/reader/mod.rs's OsmReader.
type Reader struct {
	r        io.ReadSeeker
	boundary orb.Bound
}

// NewReader wraps r, clipping decoded nodes to boundary.
func NewReader(r io.ReadSeeker, boundary orb.Bound) *Reader {
	return &Reader{r: r, boundary: boundary}
}

// readBlobHeader reads the 4-byte big-endian length prefix and the
// BlobHeader it introduces, returning the header and the total byte span of
// the record it introduces (length prefix + header bytes + blob bytes).
// io.EOF at the length prefix is a clean end of stream.
func (r *Reader) readBlobHeader() (BlobHeader, int64, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r.r, lenBuf[:]); err != nil {
		if err == io.EOF {
			return BlobHeader{}, 0, io.EOF
		}
		return BlobHeader{}, 0, fmt.Errorf("%w: blob header length: %v", errs.ErrRead, err)
	}
	headerLen := int32(binary.BigEndian.Uint32(lenBuf[:]))

	buf := make([]byte, headerLen)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return BlobHeader{}, 0, fmt.Errorf("%w: blob header body: %v", errs.ErrRead, err)
	}

	h, err := decodeBlobHeader(buf)
	if err != nil {
		return BlobHeader{}, 0, err
	}
	total := int64(4) + int64(headerLen) + int64(h.DataSize)
	return h, total, nil
}

// readBlob reads one header+blob record, or io.EOF at a clean end of stream.
func (r *Reader) readBlob() (BlobHeader, Blob, error) {
	h, _, err := r.readBlobHeader()
	if err != nil {
		return BlobHeader{}, Blob{}, err
	}

	buf := make([]byte, h.DataSize)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return BlobHeader{}, Blob{}, fmt.Errorf("%w: blob body: %v", errs.ErrRead, err)
	}

	b, err := decodeBlob(buf)
	if err != nil {
		return BlobHeader{}, Blob{}, err
	}
	return h, b, nil
}

// extractBlob returns the decompressed payload of a blob.
func extractBlob(b Blob) ([]byte, error) {
	switch {
	case b.Raw != nil:
		return b.Raw, nil
	case b.ZlibData != nil:
		zr, err := zlib.NewReader(bytes.NewReader(b.ZlibData))
		if err != nil {
			return nil, fmt.Errorf("%w: zlib: %v", errs.ErrDecode, err)
		}
		defer zr.Close()

		var out bytes.Buffer
		out.Grow(int(b.RawSize))
		if _, err := out.ReadFrom(zr); err != nil {
			return nil, fmt.Errorf("%w: zlib read: %v", errs.ErrDecode, err)
		}
		if out.Len() != int(b.RawSize) {
			return nil, fmt.Errorf("%w: raw blob size %d but expected %d", errs.ErrDecode, out.Len(), b.RawSize)
		}
		return out.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: blob has neither raw nor zlib_data", errs.ErrUnsupportedCompression)
	}
}

// blobToData decodes one header+blob pair. An OSMHeader blob yields a nil
// *BlobData (nothing of interest downstream, matching OsmHeaderBlock); an
// OSMData blob yields the decoded primitive block.
func blobToData(h BlobHeader, b Blob, boundary orb.Bound) (*BlobData, error) {
	payload, err := extractBlob(b)
	if err != nil {
		return nil, err
	}

	switch h.Type {
	case "OSMHeader":
		return nil, nil
	case "OSMData":
		pb, err := decodePrimitiveBlock(payload)
		if err != nil {
			return nil, err
		}
		return primitiveBlockToData(pb, boundary), nil
	default:
		return nil, fmt.Errorf("%w: unknown blob header type %q", errs.ErrDecode, h.Type)
	}
}

func primitiveBlockToData(pb rawPrimitiveBlock, boundary orb.Bound) *BlobData {
	stringTable := make([]string, len(pb.StringTable))
	for i, s := range pb.StringTable {
		stringTable[i] = string(s)
	}

	granularity := int64(pb.Granularity)
	if granularity == 0 {
		granularity = 100
	}

	data := &BlobData{StringTable: stringTable}

	for _, g := range pb.Groups {
		if g.Dense != nil {
			ids := deltaDecode(g.Dense.ID)
			lats := deltaDecode(g.Dense.Lat)
			lons := deltaDecode(g.Dense.Lon)
			tagSets := decodePackedTags(g.Dense.KeysVals)

			n := len(ids)
			for i := 0; i < n; i++ {
				coord := orb.Point{
					1e-9 * float64(lons[i]*granularity+pb.LonOffset),
					1e-9 * float64(lats[i]*granularity+pb.LatOffset),
				}
				if !boundary.Intersects(coord.Bound()) {
					continue
				}
				var tags map[uint32]uint32
				if i < len(tagSets) {
					tags = tagSets[i]
				}
				data.Nodes = append(data.Nodes, Node{ID: ids[i], Coord: coord, Tags: tags})
			}
		}

		for _, w := range g.Ways {
			tags := make(map[uint32]uint32, len(w.Keys))
			for i := range w.Keys {
				if i < len(w.Vals) {
					tags[w.Keys[i]] = w.Vals[i]
				}
			}
			data.Ways = append(data.Ways, Way{ID: w.ID, Tags: tags, Refs: deltaDecode(w.Refs)})
		}

		for _, r := range g.Relations {
			data.Relations = append(data.Relations, newRelation(r))
		}
	}

	return data
}

// unrestricted covers the whole planet; used for decode passes where no
// geographic boundary filter should apply.
var unrestricted = orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

// ExtractWayIDsFromRelations pre-scans the relations at the tail of the
// file (PBF block order is always Nodes/DenseNodes, then Ways, then
// Relations) to find every way id referenced by a relation matching
// relationTags, so the caller only has to cache node coordinates for ways it
// will actually need. Grounded exactly on
// OsmReader::extract_ways_id_from_relations: walk block offsets forward
// once, then decode blocks back to front until one contains nodes or ways,
// at which point the relation section has ended.
func (r *Reader) ExtractWayIDsFromRelations(relationTags []TagRule) (map[int64]struct{}, error) {
	if _, err := r.r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: seek start: %v", errs.ErrRead, err)
	}

	var offsets []int64
	var cur int64
	for {
		offsets = append(offsets, cur)
		h, total, err := r.readBlobHeader()
		if err == io.EOF {
			offsets = offsets[:len(offsets)-1]
			break
		}
		if err != nil {
			return nil, err
		}
		if _, err := r.r.Seek(int64(h.DataSize), io.SeekCurrent); err != nil {
			return nil, fmt.Errorf("%w: skip blob body: %v", errs.ErrRead, err)
		}
		cur += total
	}

	wayIDs := map[int64]struct{}{}

	for i := len(offsets) - 1; i >= 0; i-- {
		if _, err := r.r.Seek(offsets[i], io.SeekStart); err != nil {
			return nil, fmt.Errorf("%w: seek block %d: %v", errs.ErrRead, i, err)
		}

		h, b, err := r.readBlob()
		if err != nil {
			break
		}
		data, err := blobToData(h, b, unrestricted)
		if err != nil || data == nil {
			break
		}
		if len(data.Nodes) > 0 || len(data.Ways) > 0 {
			break
		}

		filter := NewTagFilter(data.StringTable, relationTags)
		for _, rel := range data.Relations {
			if _, _, ok := filter.Filter(data.StringTable, rel.Tags); ok {
				for _, m := range rel.Ways {
					wayIDs[m.WayID] = struct{}{}
				}
			}
		}
	}

	if _, err := r.r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: seek start: %v", errs.ErrRead, err)
	}
	return wayIDs, nil
}

// Data reads every remaining blob from the current position, decoding them
// concurrently on a decodeWorkers-sized pool, and classifies each resulting
// BlobData into node/way/relation buckets by its dominant content (mirroring
// OsmReader::data's three output vectors).
func (r *Reader) Data(ctx context.Context) (nodeBlobs, wayBlobs, relBlobs []*BlobData, err error) {
	var headers []BlobHeader
	var blobs []Blob
	for {
		h, b, rerr := r.readBlob()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, nil, nil, rerr
		}
		headers = append(headers, h)
		blobs = append(blobs, b)
	}

	type task struct {
		h BlobHeader
		b Blob
	}
	tasks := make([]task, len(headers))
	for i := range headers {
		tasks[i] = task{h: headers[i], b: blobs[i]}
	}

	pool := worker.New[task, *BlobData](worker.Config{Workers: decodeWorkers})
	results := pool.Run(ctx, tasks, func(_ context.Context, t task) (*BlobData, error) {
		return blobToData(t.h, t.b, r.boundary)
	})

	for _, res := range results {
		if res.Err != nil {
			return nil, nil, nil, res.Err
		}
		data := res.Value
		if data == nil {
			continue
		}
		switch {
		case len(data.Nodes) > 0:
			nodeBlobs = append(nodeBlobs, data)
		case len(data.Ways) > 0:
			wayBlobs = append(wayBlobs, data)
		default:
			relBlobs = append(relBlobs, data)
		}
	}
	return nodeBlobs, wayBlobs, relBlobs, nil
}
