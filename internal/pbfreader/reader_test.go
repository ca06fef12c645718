package pbfreader

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func appendWay(id int64, keys, vals []uint32, refs []int64) []byte {
	packUint32 := func(vals []uint32) []byte {
		var b []byte
		for _, v := range vals {
			b = protowire.AppendVarint(b, uint64(v))
		}
		return b
	}
	packSint64 := func(vals []int64) []byte {
		var b []byte
		for _, v := range vals {
			b = protowire.AppendVarint(b, protowire.EncodeZigZag(v))
		}
		return b
	}

	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(id))
	buf = protowire.AppendTag(buf, 2, protowire.BytesType)
	buf = protowire.AppendBytes(buf, packUint32(keys))
	buf = protowire.AppendTag(buf, 3, protowire.BytesType)
	buf = protowire.AppendBytes(buf, packUint32(vals))
	buf = protowire.AppendTag(buf, 8, protowire.BytesType)
	buf = protowire.AppendBytes(buf, packSint64(refs))
	return buf
}

func appendRelation(id int64, keys, vals []uint32, rolesSid, types []int32, memIDs []int64) []byte {
	packUint32 := func(vals []uint32) []byte {
		var b []byte
		for _, v := range vals {
			b = protowire.AppendVarint(b, uint64(v))
		}
		return b
	}
	packInt32 := func(vals []int32) []byte {
		var b []byte
		for _, v := range vals {
			b = protowire.AppendVarint(b, uint64(v))
		}
		return b
	}
	packSint64 := func(vals []int64) []byte {
		var b []byte
		for _, v := range vals {
			b = protowire.AppendVarint(b, protowire.EncodeZigZag(v))
		}
		return b
	}

	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(id))
	buf = protowire.AppendTag(buf, 2, protowire.BytesType)
	buf = protowire.AppendBytes(buf, packUint32(keys))
	buf = protowire.AppendTag(buf, 3, protowire.BytesType)
	buf = protowire.AppendBytes(buf, packUint32(vals))
	buf = protowire.AppendTag(buf, 8, protowire.BytesType)
	buf = protowire.AppendBytes(buf, packInt32(rolesSid))
	buf = protowire.AppendTag(buf, 9, protowire.BytesType)
	buf = protowire.AppendBytes(buf, packSint64(memIDs))
	buf = protowire.AppendTag(buf, 10, protowire.BytesType)
	buf = protowire.AppendBytes(buf, packInt32(types))
	return buf
}

func appendPrimitiveGroupWays(ways ...[]byte) []byte {
	var buf []byte
	for _, w := range ways {
		buf = protowire.AppendTag(buf, 3, protowire.BytesType)
		buf = protowire.AppendBytes(buf, w)
	}
	return buf
}

func appendPrimitiveGroupRelations(rels ...[]byte) []byte {
	var buf []byte
	for _, r := range rels {
		buf = protowire.AppendTag(buf, 4, protowire.BytesType)
		buf = protowire.AppendBytes(buf, r)
	}
	return buf
}

func TestReader_ExtractWayIDsFromRelations_FindsOuterMemberWays(t *testing.T) {
	stringTable := appendStringTable([]string{"", "natural", "wood", "outer"})

	// way block
	way := appendWay(7, nil, nil, []int64{1, 1, 1})
	wayPB := appendPrimitiveBlock(stringTable, appendPrimitiveGroupWays(way))

	// relation block: tags {natural(1): wood(2)}, one way member (type=1) with
	// role "outer" (index 3), memid delta [7].
	rel := appendRelation(99, []uint32{1}, []uint32{2}, []int32{3}, []int32{1}, []int64{7})
	relPB := appendPrimitiveBlock(stringTable, appendPrimitiveGroupRelations(rel))

	var buf bytes.Buffer
	writeRecord(&buf, "OSMData", wayPB)
	writeRecord(&buf, "OSMData", relPB)

	r := NewReader(bytes.NewReader(buf.Bytes()), unrestricted)
	wayIDs, err := r.ExtractWayIDsFromRelations(RelationTags)
	require.NoError(t, err)
	require.Contains(t, wayIDs, int64(7))

	// the reader must rewind to the start so subsequent Data() calls see
	// every block again.
	_, wayBlobs, relBlobs, err := r.Data(context.Background())
	require.NoError(t, err)
	require.Len(t, wayBlobs, 1)
	require.Len(t, relBlobs, 1)
}
