package graph

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"road_router/pkg/geo"
)

// File layout, all fields big-endian:
//
//	u32 node_count
//	node_count × { f64 lat, f64 lon, u8 neighbor_count, neighbor_count × u32 }
//
// Record order is index order. There is no header or version; any change to
// the layout is breaking.

const maxNodes = 100_000_000

// initialNodeCap bounds the up-front allocation in Decode. The header count
// is untrusted until the records behind it have been read.
const initialNodeCap = 1 << 16

var (
	// ErrTruncated is returned when the stream ends before the declared data.
	ErrTruncated = errors.New("graph file truncated")

	// ErrCorrupt is returned when decoded values violate graph invariants.
	ErrCorrupt = errors.New("graph file corrupt")
)

// Encode writes g to w.
func Encode(w io.Writer, g *Graph) error {
	bw := bufio.NewWriterSize(w, 1<<20)

	var buf [8]byte
	binary.BigEndian.PutUint32(buf[:4], uint32(g.NumNodes()))
	if _, err := bw.Write(buf[:4]); err != nil {
		return fmt.Errorf("write node count: %w", err)
	}

	for i := range g.nodes {
		n := &g.nodes[i]
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(n.Loc.Lat))
		if _, err := bw.Write(buf[:]); err != nil {
			return fmt.Errorf("write node %d: %w", i, err)
		}
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(n.Loc.Lon))
		if _, err := bw.Write(buf[:]); err != nil {
			return fmt.Errorf("write node %d: %w", i, err)
		}
		if err := bw.WriteByte(n.Adj.n); err != nil {
			return fmt.Errorf("write node %d: %w", i, err)
		}
		for _, v := range n.Adj.Slice() {
			binary.BigEndian.PutUint32(buf[:4], uint32(v))
			if _, err := bw.Write(buf[:4]); err != nil {
				return fmt.Errorf("write node %d: %w", i, err)
			}
		}
	}

	return bw.Flush()
}

// Decode reads a graph written by Encode. It never returns a partially
// populated graph.
func Decode(r io.Reader) (*Graph, error) {
	br := bufio.NewReaderSize(r, 1<<20)

	var buf [8]byte
	if err := readFull(br, buf[:4]); err != nil {
		return nil, fmt.Errorf("read node count: %w", err)
	}
	count := binary.BigEndian.Uint32(buf[:4])
	if count > maxNodes {
		return nil, fmt.Errorf("%w: node count %d exceeds limit %d", ErrCorrupt, count, maxNodes)
	}

	nodes := make([]Node, 0, min(count, initialNodeCap))
	adj := make([]Index, 0, MaxDegree)
	for i := range int(count) {
		if err := readFull(br, buf[:]); err != nil {
			return nil, fmt.Errorf("read node %d lat: %w", i, err)
		}
		lat := math.Float64frombits(binary.BigEndian.Uint64(buf[:]))
		if err := readFull(br, buf[:]); err != nil {
			return nil, fmt.Errorf("read node %d lon: %w", i, err)
		}
		lon := math.Float64frombits(binary.BigEndian.Uint64(buf[:]))

		degree, err := br.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("read node %d neighbor count: %w", i, eofToTruncated(err))
		}

		adj = adj[:0]
		for j := range int(degree) {
			if err := readFull(br, buf[:4]); err != nil {
				return nil, fmt.Errorf("read node %d neighbor %d of %d: %w", i, j, degree, err)
			}
			v := binary.BigEndian.Uint32(buf[:4])
			if v >= count {
				return nil, fmt.Errorf("%w: node %d neighbor %d >= node count %d", ErrCorrupt, i, v, count)
			}
			adj = append(adj, Index(v))
		}

		nodes = append(nodes, Node{
			Loc: geo.Location{Lat: lat, Lon: lon},
			Adj: adjacencyFrom(adj),
		})
	}

	return New(nodes), nil
}

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	return eofToTruncated(err)
}

func eofToTruncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", ErrTruncated, err)
	}
	return err
}

// WriteFile encodes g to path, replacing it atomically. A ".zst" or ".lz4"
// extension compresses the whole stream.
func WriteFile(path string, g *Graph) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath) // clean up on error
	}()

	w, err := compressWriter(path, f)
	if err != nil {
		return err
	}
	if err := Encode(w, g); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close compressor: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// Atomic rename.
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// ReadFile decodes the graph stored at path.
func ReadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	r, closeFn, err := decompressReader(path, f)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	return Decode(r)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func compressWriter(path string, w io.Writer) (io.WriteCloser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst":
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("zstd writer: %w", err)
		}
		return enc, nil
	case ".lz4":
		return lz4.NewWriter(w), nil
	default:
		return nopWriteCloser{w}, nil
	}
}

func decompressReader(path string, r io.Reader) (io.Reader, func(), error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst":
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("zstd reader: %w", err)
		}
		return dec, dec.Close, nil
	case ".lz4":
		return lz4.NewReader(r), func() {}, nil
	default:
		return r, func() {}, nil
	}
}
