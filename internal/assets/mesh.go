package assets

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/modelview/gpucore"
	"github.com/gogpu/modelview/scene"
)

// Mesh file extensions.
const (
	// GeometryExt is the preprocessed geometry format written by
	// WriteGeometry.
	GeometryExt = ".bin"

	// OBJExt is Wavefront OBJ, loaded as a raw mesh.
	OBJExt = ".obj"
)

var geometryMagic = [4]byte{'M', 'V', 'G', '1'}

// MaxGeometryBytes bounds the vertex and index data of one geometry file.
const MaxGeometryBytes = 1 << 30

// ErrBadGeometry is returned for malformed geometry files.
var ErrBadGeometry = errors.New("assets: malformed geometry")

// MeshData is CPU-side mesh data in the scene vertex layout.
type MeshData struct {
	// Vertices holds interleaved position, normal and texture coordinate,
	// scene.VertexStride bytes per vertex.
	Vertices []byte

	// Indices holds 16- or 32-bit little-endian indices.
	Indices     []byte
	IndexFormat gpucore.IndexFormat

	// Raw marks data parsed from a source format rather than loaded
	// from preprocessed geometry.
	Raw bool
}

// VertexCount returns the number of vertices.
func (m *MeshData) VertexCount() int { return len(m.Vertices) / scene.VertexStride }

// IndexCount returns the number of indices.
func (m *MeshData) IndexCount() int { return len(m.Indices) / indexSize(m.IndexFormat) }

func indexSize(f gpucore.IndexFormat) int {
	if f == gpucore.IndexFormatUint16 {
		return 2
	}
	return 4
}

// Vertex is one vertex in the scene layout.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

func appendVertex(buf []byte, v Vertex) []byte {
	for _, f := range [8]float32{
		v.Position[0], v.Position[1], v.Position[2],
		v.Normal[0], v.Normal[1], v.Normal[2],
		v.UV[0], v.UV[1],
	} {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}

// NewMeshData packs vertices and indices. Indices are stored as 16-bit
// when every vertex is addressable that way.
func NewMeshData(vertices []Vertex, indices []uint32) *MeshData {
	m := &MeshData{
		Vertices:    make([]byte, 0, len(vertices)*scene.VertexStride),
		IndexFormat: gpucore.IndexFormatUint32,
	}
	for _, v := range vertices {
		m.Vertices = appendVertex(m.Vertices, v)
	}
	if len(vertices) <= math.MaxUint16+1 {
		m.IndexFormat = gpucore.IndexFormatUint16
	}
	m.Indices = make([]byte, 0, len(indices)*indexSize(m.IndexFormat))
	for _, i := range indices {
		if m.IndexFormat == gpucore.IndexFormatUint16 {
			m.Indices = binary.LittleEndian.AppendUint16(m.Indices, uint16(i))
		} else {
			m.Indices = binary.LittleEndian.AppendUint32(m.Indices, i)
		}
	}
	return m
}

// OpenMesh reads a mesh file, choosing the format by extension.
func OpenMesh(path string) (*MeshData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case GeometryExt:
		return ReadGeometry(f)
	case OBJExt:
		return ReadOBJ(f)
	default:
		return nil, fmt.Errorf("assets: unsupported mesh format %q", filepath.Ext(path))
	}
}

// WriteGeometry writes m in the preprocessed geometry format: a four
// byte magic, vertex count, index count and index size as little-endian
// uint32, then the vertex and index data.
func WriteGeometry(w io.Writer, m *MeshData) error {
	hdr := make([]byte, 0, 16)
	hdr = append(hdr, geometryMagic[:]...)
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(m.VertexCount()))
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(m.IndexCount()))
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(indexSize(m.IndexFormat)))
	for _, b := range [][]byte{hdr, m.Vertices, m.Indices} {
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}

// ReadGeometry reads the format written by WriteGeometry.
func ReadGeometry(r io.Reader) (*MeshData, error) {
	var hdr [16]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrBadGeometry, err)
	}
	if !bytes.Equal(hdr[:4], geometryMagic[:]) {
		return nil, fmt.Errorf("%w: bad magic", ErrBadGeometry)
	}
	vertexCount := binary.LittleEndian.Uint32(hdr[4:])
	indexCount := binary.LittleEndian.Uint32(hdr[8:])
	size := binary.LittleEndian.Uint32(hdr[12:])

	m := &MeshData{}
	switch size {
	case 2:
		m.IndexFormat = gpucore.IndexFormatUint16
	case 4:
		m.IndexFormat = gpucore.IndexFormatUint32
	default:
		return nil, fmt.Errorf("%w: index size %d", ErrBadGeometry, size)
	}

	vertexBytes := uint64(vertexCount) * scene.VertexStride
	want := vertexBytes + uint64(indexCount)*uint64(size)
	if want > MaxGeometryBytes {
		return nil, fmt.Errorf("%w: %d vertices and %d indices exceed %d bytes",
			ErrBadGeometry, vertexCount, indexCount, MaxGeometryBytes)
	}

	// The body grows with the bytes actually present, never with the
	// header counts.
	body, err := io.ReadAll(io.LimitReader(r, int64(want)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: body: %w", ErrBadGeometry, err)
	}
	if uint64(len(body)) != want {
		return nil, fmt.Errorf("%w: body is %d bytes, header describes %d",
			ErrBadGeometry, len(body), want)
	}
	m.Vertices = body[:vertexBytes:vertexBytes]
	m.Indices = body[vertexBytes:]

	for i, n := 0, int(indexCount); i < n; i++ {
		var idx uint32
		if size == 2 {
			idx = uint32(binary.LittleEndian.Uint16(m.Indices[i*2:]))
		} else {
			idx = binary.LittleEndian.Uint32(m.Indices[i*4:])
		}
		if idx >= vertexCount {
			return nil, fmt.Errorf("%w: index %d is %d, mesh has %d vertices",
				ErrBadGeometry, i, idx, vertexCount)
		}
	}
	return m, nil
}

// ReadOBJ parses triangulated or polygonal Wavefront OBJ geometry.
// Polygons are fanned into triangles. Materials, groups and smoothing
// are ignored. Indices are always 32-bit.
func ReadOBJ(r io.Reader) (*MeshData, error) {
	var (
		positions []mgl32.Vec3
		normals   []mgl32.Vec3
		uvs       []mgl32.Vec2
		vertices  []Vertex
		indices   []uint32
		cache     = make(map[string]uint32)
	)

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("assets: obj line %d: %w", line, err)
			}
			positions = append(positions, mgl32.Vec3{v[0], v[1], v[2]})
		case "vn":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("assets: obj line %d: %w", line, err)
			}
			normals = append(normals, mgl32.Vec3{v[0], v[1], v[2]})
		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("assets: obj line %d: %w", line, err)
			}
			uvs = append(uvs, mgl32.Vec2{v[0], v[1]})
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("assets: obj line %d: face needs 3 vertices", line)
			}
			face := make([]uint32, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				idx, ok := cache[ref]
				if !ok {
					v, err := resolveOBJVertex(ref, positions, normals, uvs)
					if err != nil {
						return nil, fmt.Errorf("assets: obj line %d: %w", line, err)
					}
					idx = uint32(len(vertices))
					vertices = append(vertices, v)
					cache[ref] = idx
				}
				face = append(face, idx)
			}
			for i := 1; i+1 < len(face); i++ {
				indices = append(indices, face[0], face[i], face[i+1])
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("assets: read obj: %w", err)
	}
	if len(indices) == 0 {
		return nil, errors.New("assets: obj has no faces")
	}

	m := NewMeshData(vertices, nil)
	m.IndexFormat = gpucore.IndexFormatUint32
	m.Indices = make([]byte, 0, len(indices)*4)
	for _, i := range indices {
		m.Indices = binary.LittleEndian.AppendUint32(m.Indices, i)
	}
	m.Raw = true
	return m, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

// resolveOBJVertex resolves a v, v/vt, v//vn or v/vt/vn reference.
// Negative indices count from the end.
func resolveOBJVertex(ref string, positions, normals []mgl32.Vec3, uvs []mgl32.Vec2) (Vertex, error) {
	parts := strings.Split(ref, "/")
	var v Vertex

	pi, err := objIndex(parts[0], len(positions))
	if err != nil {
		return v, fmt.Errorf("position %q: %w", ref, err)
	}
	v.Position = positions[pi]

	if len(parts) > 1 && parts[1] != "" {
		ti, err := objIndex(parts[1], len(uvs))
		if err != nil {
			return v, fmt.Errorf("uv %q: %w", ref, err)
		}
		v.UV = uvs[ti]
	}
	if len(parts) > 2 && parts[2] != "" {
		ni, err := objIndex(parts[2], len(normals))
		if err != nil {
			return v, fmt.Errorf("normal %q: %w", ref, err)
		}
		v.Normal = normals[ni]
	}
	return v, nil
}

func objIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		i = n + i
	} else {
		i--
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("index out of range [1, %d]", n)
	}
	return i, nil
}

// Cube returns a unit cube centered on the origin with per-face normals.
func Cube() *MeshData {
	faces := []struct {
		n, u, v mgl32.Vec3
	}{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	}
	corners := [4]mgl32.Vec2{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	vertices := make([]Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(vertices))
		for _, c := range corners {
			p := f.n.Add(f.u.Mul(c[0])).Add(f.v.Mul(c[1])).Mul(0.5)
			vertices = append(vertices, Vertex{
				Position: p,
				Normal:   f.n,
				UV:       mgl32.Vec2{(c[0] + 1) / 2, (1 - c[1]) / 2},
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return NewMeshData(vertices, indices)
}
