package export

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/chazu/treenail/pkg/kernel"
)

const stlHeaderSize = 80

// WriteSTL writes the meshes as one binary STL body. Binary STL has no
// part boundaries, so all meshes land in a single triangle soup.
func WriteSTL(w io.Writer, meshes []*kernel.Mesh) error {
	var header [stlHeaderSize]byte
	copy(header[:], "treenail binary stl")
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("stl: write header: %w", err)
	}

	var count uint32
	for _, m := range meshes {
		count += uint32(m.TriangleCount())
	}
	if err := binary.Write(w, binary.LittleEndian, count); err != nil {
		return fmt.Errorf("stl: write triangle count: %w", err)
	}

	for _, m := range meshes {
		if err := writeTriangles(w, m); err != nil {
			return fmt.Errorf("stl: part %s: %w", m.PartName, err)
		}
	}
	return nil
}

// WriteSTLFile writes the meshes to path, replacing any existing file.
func WriteSTLFile(path string, meshes []*kernel.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("stl: %w", err)
	}
	if err := WriteSTL(f, meshes); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeTriangles(w io.Writer, m *kernel.Mesh) error {
	// 12 floats plus the attribute word per triangle.
	var rec [50]byte
	for t := 0; t < m.TriangleCount(); t++ {
		i0 := m.Indices[3*t]
		i1 := m.Indices[3*t+1]
		i2 := m.Indices[3*t+2]

		off := 0
		put := func(v float32) {
			binary.LittleEndian.PutUint32(rec[off:], math.Float32bits(v))
			off += 4
		}
		// Per-vertex normals agree within a triangle for the meshes we
		// emit, so the first vertex carries the facet normal.
		put(m.Normals[3*i0])
		put(m.Normals[3*i0+1])
		put(m.Normals[3*i0+2])
		for _, i := range []uint32{i0, i1, i2} {
			put(m.Vertices[3*i])
			put(m.Vertices[3*i+1])
			put(m.Vertices[3*i+2])
		}
		binary.LittleEndian.PutUint16(rec[off:], 0)

		if _, err := w.Write(rec[:]); err != nil {
			return err
		}
	}
	return nil
}
