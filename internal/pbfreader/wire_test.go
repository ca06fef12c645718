package pbfreader

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

// appendBlobHeader/appendBlob/appendPrimitiveBlock build minimal raw (not
// zlib-compressed) wire-format buffers, exercising the same field layout
// decodePrimitiveBlock reads.

func appendStringTable(strs []string) []byte {
	var buf []byte
	for _, s := range strs {
		buf = protowire.AppendTag(buf, 1, protowire.BytesType)
		buf = protowire.AppendBytes(buf, []byte(s))
	}
	return buf
}

func appendDenseNodes(ids, lats, lons []int64, keysVals []int32) []byte {
	packSint64 := func(vals []int64) []byte {
		var b []byte
		for _, v := range vals {
			b = protowire.AppendVarint(b, protowire.EncodeZigZag(v))
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

	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.BytesType)
	buf = protowire.AppendBytes(buf, packSint64(ids))
	buf = protowire.AppendTag(buf, 8, protowire.BytesType)
	buf = protowire.AppendBytes(buf, packSint64(lats))
	buf = protowire.AppendTag(buf, 9, protowire.BytesType)
	buf = protowire.AppendBytes(buf, packSint64(lons))
	buf = protowire.AppendTag(buf, 10, protowire.BytesType)
	buf = protowire.AppendBytes(buf, packInt32(keysVals))
	return buf
}

func appendPrimitiveGroup(dense []byte) []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, 2, protowire.BytesType)
	buf = protowire.AppendBytes(buf, dense)
	return buf
}

func appendPrimitiveBlock(stringTable, group []byte) []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.BytesType)
	buf = protowire.AppendBytes(buf, stringTable)
	buf = protowire.AppendTag(buf, 2, protowire.BytesType)
	buf = protowire.AppendBytes(buf, group)
	return buf
}

func appendBlob(raw []byte) []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.BytesType)
	buf = protowire.AppendBytes(buf, raw)
	return buf
}

func appendBlobHeader(typ string, dataSize int) []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.BytesType)
	buf = protowire.AppendBytes(buf, []byte(typ))
	buf = protowire.AppendTag(buf, 3, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(dataSize))
	return buf
}

func writeRecord(w *bytes.Buffer, typ string, payload []byte) {
	blob := appendBlob(payload)
	header := appendBlobHeader(typ, len(blob))

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(header)))
	w.Write(lenBuf[:])
	w.Write(header)
	w.Write(blob)
}

func TestReader_Data_DecodesDenseNodeWithTags(t *testing.T) {
	stringTable := appendStringTable([]string{"", "highway", "traffic_signals"})
	dense := appendDenseNodes([]int64{42}, []int64{10_000_000}, []int64{20_000_000}, []int32{1, 2, 0})
	pb := appendPrimitiveBlock(stringTable, appendPrimitiveGroup(dense))

	var buf bytes.Buffer
	writeRecord(&buf, "OSMData", pb)

	r := NewReader(bytes.NewReader(buf.Bytes()), unrestricted)
	nodeBlobs, wayBlobs, relBlobs, err := r.Data(context.Background())
	require.NoError(t, err)
	require.Len(t, wayBlobs, 0)
	require.Len(t, relBlobs, 0)
	require.Len(t, nodeBlobs, 1)

	data := nodeBlobs[0]
	require.Len(t, data.Nodes, 1)
	node := data.Nodes[0]
	require.Equal(t, int64(42), node.ID)
	require.InDelta(t, 2.0, node.Coord[0], 1e-9)
	require.InDelta(t, 1.0, node.Coord[1], 1e-9)
	require.Equal(t, uint32(2), node.Tags[1])

	filter := NewTagFilter(data.StringTable, POITags)
	k, v, ok := filter.Filter(data.StringTable, node.Tags)
	require.True(t, ok)
	require.Equal(t, "highway", k)
	require.Equal(t, "traffic_signals", v)
}
