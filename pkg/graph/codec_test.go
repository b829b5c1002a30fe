package graph

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"road_router/pkg/geo"
)

func buildCodecGraph(t *testing.T) *Graph {
	t.Helper()
	nodes := []Node{
		{Loc: geo.Location{Lat: 44.9778, Lon: -93.2650}},
		{Loc: geo.Location{Lat: 44.9537, Lon: -93.0900}},
		{Loc: geo.Location{Lat: 45.1986, Lon: -92.6920}},
	}
	nodes[0].Adj.PushPair(1, 2)
	nodes[1].Adj.Push(0)
	nodes[1].Adj.Push(0) // duplicate
	nodes[2].Adj.Push(0)
	return New(nodes)
}

func assertSameGraph(t *testing.T, want, got *Graph) {
	t.Helper()
	require.Equal(t, want.NumNodes(), got.NumNodes())
	for i := range want.NumNodes() {
		idx := Index(i)
		assert.Equal(t, want.Location(idx), got.Location(idx), "location of node %d", i)
		assert.ElementsMatch(t, want.Neighbors(idx), got.Neighbors(idx), "neighbors of node %d", i)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	original := buildCodecGraph(t)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, original))

	// 4 + 3 nodes × 17 bytes + 5 neighbor entries × 4.
	assert.Equal(t, 4+3*17+5*4, buf.Len())

	loaded, err := Decode(&buf)
	require.NoError(t, err)
	assertSameGraph(t, original, loaded)
}

func TestCodecLayoutIsBigEndian(t *testing.T) {
	nodes := []Node{{Loc: geo.Location{Lat: 1.5, Lon: -2.25}}, {}}
	nodes[0].Adj.Push(1)
	nodes[1].Adj.Push(0)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, New(nodes)))
	b := buf.Bytes()

	assert.Equal(t, uint32(2), binary.BigEndian.Uint32(b[0:4]))
	assert.Equal(t, 1.5, math.Float64frombits(binary.BigEndian.Uint64(b[4:12])))
	assert.Equal(t, -2.25, math.Float64frombits(binary.BigEndian.Uint64(b[12:20])))
	assert.Equal(t, byte(1), b[20])
	assert.Equal(t, uint32(1), binary.BigEndian.Uint32(b[21:25]))
}

func TestCodecEmptyGraph(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, New(nil)))
	assert.Equal(t, []byte{0, 0, 0, 0}, buf.Bytes())

	g, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 0, g.NumNodes())
}

func TestDecodeTruncatedNeighbors(t *testing.T) {
	// One node declaring five neighbors but providing two.
	var b []byte
	b = binary.BigEndian.AppendUint32(b, 1)
	b = binary.BigEndian.AppendUint64(b, math.Float64bits(45))
	b = binary.BigEndian.AppendUint64(b, math.Float64bits(-93))
	b = append(b, 5)
	b = binary.BigEndian.AppendUint32(b, 0)
	b = binary.BigEndian.AppendUint32(b, 0)

	g, err := Decode(bytes.NewReader(b))
	assert.Nil(t, g)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestDecodeTruncatedAnywhere(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, buildCodecGraph(t)))
	full := buf.Bytes()

	for n := 0; n < len(full); n++ {
		g, err := Decode(bytes.NewReader(full[:n]))
		require.ErrorIs(t, err, ErrTruncated, "prefix of %d bytes", n)
		require.Nil(t, g)
	}
}

func TestDecodeRejectsOutOfRangeNeighbor(t *testing.T) {
	var b []byte
	b = binary.BigEndian.AppendUint32(b, 1)
	b = binary.BigEndian.AppendUint64(b, 0)
	b = binary.BigEndian.AppendUint64(b, 0)
	b = append(b, 1)
	b = binary.BigEndian.AppendUint32(b, 1)

	_, err := Decode(bytes.NewReader(b))
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestDecodeRejectsHugeNodeCount(t *testing.T) {
	b := binary.BigEndian.AppendUint32(nil, math.MaxUint32)

	_, err := Decode(bytes.NewReader(b))
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestDecodeHeaderOnlyAllocatesLittle(t *testing.T) {
	// A valid-looking count with no records behind it.
	b := binary.BigEndian.AppendUint32(nil, 20_000_000)

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err := Decode(bytes.NewReader(b))
	runtime.ReadMemStats(&after)

	assert.ErrorIs(t, err, ErrTruncated)
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(16<<20),
		"decoding a 4-byte input allocated too much")
}

func TestFileRoundTrip(t *testing.T) {
	original := buildCodecGraph(t)

	for _, name := range []string{"map.save", "map.save.zst", "map.save.lz4"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, WriteFile(path, original))

			_, err := os.Stat(path + ".tmp")
			assert.True(t, os.IsNotExist(err), "temp file must be removed")

			loaded, err := ReadFile(path)
			require.NoError(t, err)
			assertSameGraph(t, original, loaded)
		})
	}
}

func TestReadFileTruncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truncated.save")
	require.NoError(t, os.WriteFile(path, []byte{0, 0, 0, 2, 1, 2}, 0o644))

	_, err := ReadFile(path)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.save"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
