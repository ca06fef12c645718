// Package pbfreader decodes OpenStreetMap PBF extract files: the
// length-prefixed BlobHeader/Blob framing, zlib-compressed PrimitiveBlock
// payloads, and the packed delta-encoded node/way/relation primitives inside
// them. Grounded on osm_tool/src/reader/mod.rs, with the blob-framing shape
// (read length, read header, read blob, decompress) following the style of
// other_examples' maguro-pbf decoder.go, but decoded here with
// google.golang.org/protobuf/encoding/protowire against the standard
// osmformat.proto/fileformat.proto field numbers directly, since this repo
// never observed a generated PrimitiveBlock/DenseNodes/Way/Relation type in
// the retrieval pack to call into.
package pbfreader

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/errs"
)

// BlobHeader is fileformat.proto's BlobHeader (field 1 type, field 3 datasize).
type BlobHeader struct {
	Type     string
	DataSize int32
}

// Blob is fileformat.proto's Blob (field 1 raw, field 2 raw_size, field 3 zlib_data).
type Blob struct {
	Raw      []byte
	RawSize  int32
	ZlibData []byte
}

func decodeBlobHeader(buf []byte) (BlobHeader, error) {
	var h BlobHeader
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return h, fmt.Errorf("%w: blob header tag: %v", errs.ErrDecode, protowire.ParseError(n))
		}
		buf = buf[n:]

		switch {
		case num == 1 && typ == protowire.BytesType:
			v, m := protowire.ConsumeBytes(buf)
			if m < 0 {
				return h, fmt.Errorf("%w: blob header type field", errs.ErrDecode)
			}
			h.Type = string(v)
			buf = buf[m:]
		case num == 3 && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(buf)
			if m < 0 {
				return h, fmt.Errorf("%w: blob header datasize field", errs.ErrDecode)
			}
			h.DataSize = int32(v)
			buf = buf[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, buf)
			if m < 0 {
				return h, fmt.Errorf("%w: blob header unknown field %d", errs.ErrDecode, num)
			}
			buf = buf[m:]
		}
	}
	return h, nil
}

func decodeBlob(buf []byte) (Blob, error) {
	var b Blob
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return b, fmt.Errorf("%w: blob tag: %v", errs.ErrDecode, protowire.ParseError(n))
		}
		buf = buf[n:]

		switch {
		case num == 1 && typ == protowire.BytesType:
			v, m := protowire.ConsumeBytes(buf)
			if m < 0 {
				return b, fmt.Errorf("%w: blob raw field", errs.ErrDecode)
			}
			b.Raw = v
			buf = buf[m:]
		case num == 2 && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(buf)
			if m < 0 {
				return b, fmt.Errorf("%w: blob raw_size field", errs.ErrDecode)
			}
			b.RawSize = int32(v)
			buf = buf[m:]
		case num == 3 && typ == protowire.BytesType:
			v, m := protowire.ConsumeBytes(buf)
			if m < 0 {
				return b, fmt.Errorf("%w: blob zlib_data field", errs.ErrDecode)
			}
			b.ZlibData = v
			buf = buf[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, buf)
			if m < 0 {
				return b, fmt.Errorf("%w: blob unknown field %d", errs.ErrDecode, num)
			}
			buf = buf[m:]
		}
	}
	return b, nil
}

// rawWay/rawRelation/rawDenseNodes mirror the wire shape of
// osmformat.proto's Way/Relation/DenseNodes messages, using plain int32/int64
// slices rather than the delta/tag decoding done by the caller.
type rawWay struct {
	ID   int64
	Keys []uint32
	Vals []uint32
	Refs []int64 // delta-encoded
}

type rawRelation struct {
	ID       int64
	Keys     []uint32
	Vals     []uint32
	RolesSid []int32
	MemIDs   []int64 // delta-encoded
	Types    []int32
}

type rawDenseNodes struct {
	ID       []int64 // delta-encoded
	Lat      []int64 // delta-encoded
	Lon      []int64 // delta-encoded
	KeysVals []int32 // packed tags, 0-terminated per node
}

type rawPrimitiveGroup struct {
	Dense     *rawDenseNodes
	Ways      []rawWay
	Relations []rawRelation
}

type rawPrimitiveBlock struct {
	StringTable  [][]byte
	Groups       []rawPrimitiveGroup
	Granularity  int32
	LatOffset    int64
	LonOffset    int64
}

func decodePrimitiveBlock(buf []byte) (rawPrimitiveBlock, error) {
	pb := rawPrimitiveBlock{Granularity: 100}
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return pb, fmt.Errorf("%w: primitive block tag: %v", errs.ErrDecode, protowire.ParseError(n))
		}
		buf = buf[n:]

		switch {
		case num == 1 && typ == protowire.BytesType: // stringtable
			v, m := protowire.ConsumeBytes(buf)
			if m < 0 {
				return pb, fmt.Errorf("%w: primitive block stringtable", errs.ErrDecode)
			}
			st, err := decodeStringTable(v)
			if err != nil {
				return pb, err
			}
			pb.StringTable = st
			buf = buf[m:]
		case num == 2 && typ == protowire.BytesType: // primitivegroup
			v, m := protowire.ConsumeBytes(buf)
			if m < 0 {
				return pb, fmt.Errorf("%w: primitive group", errs.ErrDecode)
			}
			g, err := decodePrimitiveGroup(v)
			if err != nil {
				return pb, err
			}
			pb.Groups = append(pb.Groups, g)
			buf = buf[m:]
		case num == 17 && typ == protowire.VarintType: // granularity
			v, m := protowire.ConsumeVarint(buf)
			if m < 0 {
				return pb, fmt.Errorf("%w: granularity", errs.ErrDecode)
			}
			pb.Granularity = int32(v)
			buf = buf[m:]
		case num == 19 && typ == protowire.VarintType: // lat_offset
			v, m := protowire.ConsumeVarint(buf)
			if m < 0 {
				return pb, fmt.Errorf("%w: lat_offset", errs.ErrDecode)
			}
			pb.LatOffset = int64(v)
			buf = buf[m:]
		case num == 20 && typ == protowire.VarintType: // lon_offset
			v, m := protowire.ConsumeVarint(buf)
			if m < 0 {
				return pb, fmt.Errorf("%w: lon_offset", errs.ErrDecode)
			}
			pb.LonOffset = int64(v)
			buf = buf[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, buf)
			if m < 0 {
				return pb, fmt.Errorf("%w: primitive block unknown field %d", errs.ErrDecode, num)
			}
			buf = buf[m:]
		}
	}
	return pb, nil
}

func decodeStringTable(buf []byte) ([][]byte, error) {
	var s [][]byte
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return nil, fmt.Errorf("%w: string table tag: %v", errs.ErrDecode, protowire.ParseError(n))
		}
		buf = buf[n:]

		if num == 1 && typ == protowire.BytesType {
			v, m := protowire.ConsumeBytes(buf)
			if m < 0 {
				return nil, fmt.Errorf("%w: string table entry", errs.ErrDecode)
			}
			cp := make([]byte, len(v))
			copy(cp, v)
			s = append(s, cp)
			buf = buf[m:]
			continue
		}
		m := protowire.ConsumeFieldValue(num, typ, buf)
		if m < 0 {
			return nil, fmt.Errorf("%w: string table unknown field %d", errs.ErrDecode, num)
		}
		buf = buf[m:]
	}
	return s, nil
}

func decodePrimitiveGroup(buf []byte) (rawPrimitiveGroup, error) {
	var g rawPrimitiveGroup
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return g, fmt.Errorf("%w: primitive group tag: %v", errs.ErrDecode, protowire.ParseError(n))
		}
		buf = buf[n:]

		switch {
		case num == 2 && typ == protowire.BytesType: // dense
			v, m := protowire.ConsumeBytes(buf)
			if m < 0 {
				return g, fmt.Errorf("%w: dense nodes", errs.ErrDecode)
			}
			dn, err := decodeDenseNodes(v)
			if err != nil {
				return g, err
			}
			g.Dense = &dn
			buf = buf[m:]
		case num == 3 && typ == protowire.BytesType: // ways
			v, m := protowire.ConsumeBytes(buf)
			if m < 0 {
				return g, fmt.Errorf("%w: way", errs.ErrDecode)
			}
			w, err := decodeWay(v)
			if err != nil {
				return g, err
			}
			g.Ways = append(g.Ways, w)
			buf = buf[m:]
		case num == 4 && typ == protowire.BytesType: // relations
			v, m := protowire.ConsumeBytes(buf)
			if m < 0 {
				return g, fmt.Errorf("%w: relation", errs.ErrDecode)
			}
			r, err := decodeRelation(v)
			if err != nil {
				return g, err
			}
			g.Relations = append(g.Relations, r)
			buf = buf[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, buf)
			if m < 0 {
				return g, fmt.Errorf("%w: primitive group unknown field %d", errs.ErrDecode, num)
			}
			buf = buf[m:]
		}
	}
	return g, nil
}

func decodeDenseNodes(buf []byte) (rawDenseNodes, error) {
	var dn rawDenseNodes
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return dn, fmt.Errorf("%w: dense nodes tag: %v", errs.ErrDecode, protowire.ParseError(n))
		}
		buf = buf[n:]

		switch {
		case num == 1 && typ == protowire.BytesType: // id, packed sint64
			v, m := protowire.ConsumeBytes(buf)
			if m < 0 {
				return dn, fmt.Errorf("%w: dense id", errs.ErrDecode)
			}
			vals, err := consumePackedSint64(v)
			if err != nil {
				return dn, err
			}
			dn.ID = vals
			buf = buf[m:]
		case num == 8 && typ == protowire.BytesType: // lat
			v, m := protowire.ConsumeBytes(buf)
			if m < 0 {
				return dn, fmt.Errorf("%w: dense lat", errs.ErrDecode)
			}
			vals, err := consumePackedSint64(v)
			if err != nil {
				return dn, err
			}
			dn.Lat = vals
			buf = buf[m:]
		case num == 9 && typ == protowire.BytesType: // lon
			v, m := protowire.ConsumeBytes(buf)
			if m < 0 {
				return dn, fmt.Errorf("%w: dense lon", errs.ErrDecode)
			}
			vals, err := consumePackedSint64(v)
			if err != nil {
				return dn, err
			}
			dn.Lon = vals
			buf = buf[m:]
		case num == 10 && typ == protowire.BytesType: // keys_vals, packed int32
			v, m := protowire.ConsumeBytes(buf)
			if m < 0 {
				return dn, fmt.Errorf("%w: dense keys_vals", errs.ErrDecode)
			}
			vals, err := consumePackedInt32(v)
			if err != nil {
				return dn, err
			}
			dn.KeysVals = vals
			buf = buf[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, buf)
			if m < 0 {
				return dn, fmt.Errorf("%w: dense nodes unknown field %d", errs.ErrDecode, num)
			}
			buf = buf[m:]
		}
	}
	return dn, nil
}

func decodeWay(buf []byte) (rawWay, error) {
	var w rawWay
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return w, fmt.Errorf("%w: way tag: %v", errs.ErrDecode, protowire.ParseError(n))
		}
		buf = buf[n:]

		switch {
		case num == 1 && typ == protowire.VarintType: // id
			v, m := protowire.ConsumeVarint(buf)
			if m < 0 {
				return w, fmt.Errorf("%w: way id", errs.ErrDecode)
			}
			w.ID = int64(v)
			buf = buf[m:]
		case num == 2 && typ == protowire.BytesType: // keys, packed uint32
			v, m := protowire.ConsumeBytes(buf)
			if m < 0 {
				return w, fmt.Errorf("%w: way keys", errs.ErrDecode)
			}
			vals, err := consumePackedUint32(v)
			if err != nil {
				return w, err
			}
			w.Keys = vals
			buf = buf[m:]
		case num == 3 && typ == protowire.BytesType: // vals, packed uint32
			v, m := protowire.ConsumeBytes(buf)
			if m < 0 {
				return w, fmt.Errorf("%w: way vals", errs.ErrDecode)
			}
			vals, err := consumePackedUint32(v)
			if err != nil {
				return w, err
			}
			w.Vals = vals
			buf = buf[m:]
		case num == 8 && typ == protowire.BytesType: // refs, packed sint64 delta
			v, m := protowire.ConsumeBytes(buf)
			if m < 0 {
				return w, fmt.Errorf("%w: way refs", errs.ErrDecode)
			}
			vals, err := consumePackedSint64(v)
			if err != nil {
				return w, err
			}
			w.Refs = vals
			buf = buf[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, buf)
			if m < 0 {
				return w, fmt.Errorf("%w: way unknown field %d", errs.ErrDecode, num)
			}
			buf = buf[m:]
		}
	}
	return w, nil
}

func decodeRelation(buf []byte) (rawRelation, error) {
	var r rawRelation
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return r, fmt.Errorf("%w: relation tag: %v", errs.ErrDecode, protowire.ParseError(n))
		}
		buf = buf[n:]

		switch {
		case num == 1 && typ == protowire.VarintType: // id
			v, m := protowire.ConsumeVarint(buf)
			if m < 0 {
				return r, fmt.Errorf("%w: relation id", errs.ErrDecode)
			}
			r.ID = int64(v)
			buf = buf[m:]
		case num == 2 && typ == protowire.BytesType: // keys
			v, m := protowire.ConsumeBytes(buf)
			if m < 0 {
				return r, fmt.Errorf("%w: relation keys", errs.ErrDecode)
			}
			vals, err := consumePackedUint32(v)
			if err != nil {
				return r, err
			}
			r.Keys = vals
			buf = buf[m:]
		case num == 3 && typ == protowire.BytesType: // vals
			v, m := protowire.ConsumeBytes(buf)
			if m < 0 {
				return r, fmt.Errorf("%w: relation vals", errs.ErrDecode)
			}
			vals, err := consumePackedUint32(v)
			if err != nil {
				return r, err
			}
			r.Vals = vals
			buf = buf[m:]
		case num == 8 && typ == protowire.BytesType: // roles_sid, packed int32
			v, m := protowire.ConsumeBytes(buf)
			if m < 0 {
				return r, fmt.Errorf("%w: relation roles_sid", errs.ErrDecode)
			}
			vals, err := consumePackedInt32(v)
			if err != nil {
				return r, err
			}
			r.RolesSid = vals
			buf = buf[m:]
		case num == 9 && typ == protowire.BytesType: // memids, packed sint64 delta
			v, m := protowire.ConsumeBytes(buf)
			if m < 0 {
				return r, fmt.Errorf("%w: relation memids", errs.ErrDecode)
			}
			vals, err := consumePackedSint64(v)
			if err != nil {
				return r, err
			}
			r.MemIDs = vals
			buf = buf[m:]
		case num == 10 && typ == protowire.BytesType: // types, packed enum
			v, m := protowire.ConsumeBytes(buf)
			if m < 0 {
				return r, fmt.Errorf("%w: relation types", errs.ErrDecode)
			}
			vals, err := consumePackedInt32(v)
			if err != nil {
				return r, err
			}
			r.Types = vals
			buf = buf[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, buf)
			if m < 0 {
				return r, fmt.Errorf("%w: relation unknown field %d", errs.ErrDecode, num)
			}
			buf = buf[m:]
		}
	}
	return r, nil
}

func consumePackedInt32(buf []byte) ([]int32, error) {
	var out []int32
	for len(buf) > 0 {
		v, n := protowire.ConsumeVarint(buf)
		if n < 0 {
			return nil, fmt.Errorf("%w: packed int32", errs.ErrDecode)
		}
		out = append(out, int32(v))
		buf = buf[n:]
	}
	return out, nil
}

func consumePackedUint32(buf []byte) ([]uint32, error) {
	var out []uint32
	for len(buf) > 0 {
		v, n := protowire.ConsumeVarint(buf)
		if n < 0 {
			return nil, fmt.Errorf("%w: packed uint32", errs.ErrDecode)
		}
		out = append(out, uint32(v))
		buf = buf[n:]
	}
	return out, nil
}

// consumePackedSint64 decodes a packed repeated sint64 field, zigzag-decoding
// each varint (osmformat.proto declares id/lat/lon/refs/memids as sint64).
func consumePackedSint64(buf []byte) ([]int64, error) {
	var out []int64
	for len(buf) > 0 {
		v, n := protowire.ConsumeVarint(buf)
		if n < 0 {
			return nil, fmt.Errorf("%w: packed sint64", errs.ErrDecode)
		}
		out = append(out, protowire.DecodeZigZag(v))
		buf = buf[n:]
	}
	return out, nil
}
