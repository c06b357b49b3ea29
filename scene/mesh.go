package scene

import "github.com/gogpu/modelview/gpucore"

// Mesh is indexed geometry ready to draw. It is exactly one of
// *Preprocessed or *Raw; the two own their GPU buffers differently and
// release them through different paths.
type Mesh interface {
	// IndexCount returns the number of indices to draw.
	IndexCount() uint32

	// VertexBuffers returns the vertex streams in binding order.
	VertexBuffers() []gpucore.BufferID

	IndexBuffer() gpucore.BufferID
	IndexFormat() gpucore.IndexFormat

	// Destroy releases the mesh's GPU objects. The queue must be idle.
	Destroy(gpucore.Device)

	mesh()
}

// Geometry is a mesh as produced by the resource loader: one or more
// vertex streams sharing one index buffer.
type Geometry struct {
	VertexBuffers []gpucore.BufferID
	IndexBuffer   gpucore.BufferID
	IndexCount    uint32
	IndexFormat   gpucore.IndexFormat
}

// GeometryData is the CPU-side copy the loader keeps next to a Geometry.
type GeometryData struct {
	Vertices []byte
	Indices  []byte
}

// Preprocessed is a mesh loaded from a preprocessed geometry file.
type Preprocessed struct {
	Geometry *Geometry
	Data     *GeometryData
}

// Raw is a mesh whose buffers were filled directly from parsed vertex and
// index arrays. Indices are 32-bit.
type Raw struct {
	VertexBuffer gpucore.BufferID
	Index        gpucore.BufferID
	Count        uint32
}

var (
	_ Mesh = (*Preprocessed)(nil)
	_ Mesh = (*Raw)(nil)
)

func (*Preprocessed) mesh() {}
func (*Raw) mesh()          {}

// IndexCount implements Mesh.
func (m *Preprocessed) IndexCount() uint32 { return m.Geometry.IndexCount }

// VertexBuffers implements Mesh.
func (m *Preprocessed) VertexBuffers() []gpucore.BufferID { return m.Geometry.VertexBuffers }

// IndexBuffer implements Mesh.
func (m *Preprocessed) IndexBuffer() gpucore.BufferID { return m.Geometry.IndexBuffer }

// IndexFormat implements Mesh.
func (m *Preprocessed) IndexFormat() gpucore.IndexFormat { return m.Geometry.IndexFormat }

// Destroy releases the geometry buffers and drops the CPU copy.
func (m *Preprocessed) Destroy(dev gpucore.Device) {
	if m.Geometry != nil {
		for _, b := range m.Geometry.VertexBuffers {
			dev.DestroyBuffer(b)
		}
		dev.DestroyBuffer(m.Geometry.IndexBuffer)
		m.Geometry = nil
	}
	m.Data = nil
}

// IndexCount implements Mesh.
func (m *Raw) IndexCount() uint32 { return m.Count }

// VertexBuffers implements Mesh.
func (m *Raw) VertexBuffers() []gpucore.BufferID { return []gpucore.BufferID{m.VertexBuffer} }

// IndexBuffer implements Mesh.
func (m *Raw) IndexBuffer() gpucore.BufferID { return m.Index }

// IndexFormat implements Mesh.
func (m *Raw) IndexFormat() gpucore.IndexFormat { return gpucore.IndexFormatUint32 }

// Destroy releases the vertex and index buffers.
func (m *Raw) Destroy(dev gpucore.Device) {
	dev.DestroyBuffer(m.Index)
	dev.DestroyBuffer(m.VertexBuffer)
	m.Index = gpucore.InvalidID
	m.VertexBuffer = gpucore.InvalidID
	m.Count = 0
}

// meshKind names the variant for log output.
func meshKind(m Mesh) string {
	switch m.(type) {
	case *Preprocessed:
		return "preprocessed"
	case *Raw:
		return "raw"
	default:
		return "unknown"
	}
}
