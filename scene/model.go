package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/modelview/gpucore"
)

// Vertex layout of scene meshes: position, normal and texture coordinate,
// all float32, interleaved in one stream.
const (
	VertexStride   = 32
	PositionOffset = 0
	NormalOffset   = 12
	UVOffset       = 24
)

// Scene is the mesh being viewed.
type Scene struct {
	Mesh Mesh

	// Scale uniformly scales the mesh. It is tunable at runtime.
	Scale float32

	// Transform places the mesh in the world before scaling.
	Transform mgl32.Mat4
}

// New returns a scene around mesh at unit scale.
func New(mesh Mesh) *Scene {
	return &Scene{
		Mesh:      mesh,
		Scale:     1,
		Transform: mgl32.Ident4(),
	}
}

// Matrix returns the model matrix.
func (s *Scene) Matrix() mgl32.Mat4 {
	return s.Transform.Mul4(mgl32.Scale3D(s.Scale, s.Scale, s.Scale))
}

// Destroy releases the mesh. The queue must be idle.
func (s *Scene) Destroy(dev gpucore.Device) {
	if s.Mesh != nil {
		s.Mesh.Destroy(dev)
		s.Mesh = nil
	}
}

func sceneVertexAttributes() []gpucore.VertexAttribute {
	return []gpucore.VertexAttribute{
		{Location: 0, Format: gpucore.VertexFormatFloat32x3, Offset: PositionOffset},
		{Location: 1, Format: gpucore.VertexFormatFloat32x3, Offset: NormalOffset},
		{Location: 2, Format: gpucore.VertexFormatFloat32x2, Offset: UVOffset},
	}
}
