package scene

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/modelview/gpucore"
)

// SideCount is the number of skybox faces.
const SideCount = 6

// SkyBoxVertexCount is the number of vertices drawn for the skybox cube.
const SkyBoxVertexCount = 6 * SideCount

// skyBoxVertexStride is the size of one skybox vertex: xyz plus the face
// index in w.
const skyBoxVertexStride = 16

// DefaultFaceFiles are the skybox face images in texture binding order:
// right, left, top, bottom, front, back.
var DefaultFaceFiles = [SideCount]string{
	"Skybox_right1.png",
	"Skybox_left2.png",
	"Skybox_top3.png",
	"Skybox_bottom4.png",
	"Skybox_front5.png",
	"Skybox_back6.png",
}

// skyBoxVertices is a cube of side 20 centered on the origin. The w
// component is the 1-based face index into DefaultFaceFiles.
var skyBoxVertices = [SkyBoxVertexCount * 4]float32{
	// -z
	10, -10, -10, 6, -10, -10, -10, 6, -10, 10, -10, 6,
	-10, 10, -10, 6, 10, 10, -10, 6, 10, -10, -10, 6,

	// -x
	-10, -10, 10, 2, -10, -10, -10, 2, -10, 10, -10, 2,
	-10, 10, -10, 2, -10, 10, 10, 2, -10, -10, 10, 2,

	// +x
	10, -10, -10, 1, 10, -10, 10, 1, 10, 10, 10, 1,
	10, 10, 10, 1, 10, 10, -10, 1, 10, -10, -10, 1,

	// +z
	-10, -10, 10, 5, -10, 10, 10, 5, 10, 10, 10, 5,
	10, 10, 10, 5, 10, -10, 10, 5, -10, -10, 10, 5,

	// +y
	-10, 10, -10, 3, 10, 10, -10, 3, 10, 10, 10, 3,
	10, 10, 10, 3, -10, 10, 10, 3, -10, 10, -10, 3,

	// -y
	10, -10, 10, 4, 10, -10, -10, 4, -10, -10, -10, 4,
	-10, -10, -10, 4, -10, -10, 10, 4, 10, -10, 10, 4,
}

// SkyBox is the six face textures, their sampler and the cube vertex
// buffer.
type SkyBox struct {
	textures     [SideCount]gpucore.TextureID
	sampler      gpucore.SamplerID
	vertexBuffer gpucore.BufferID
}

// NewSkyBox takes ownership of the face textures and creates the sampler
// and vertex buffer. On failure the textures are left to the caller.
func NewSkyBox(dev gpucore.Device, faces [SideCount]gpucore.TextureID) (*SkyBox, error) {
	for i, f := range faces {
		if f == gpucore.InvalidID {
			return nil, fmt.Errorf("scene: skybox face %d has no texture", i)
		}
	}

	sampler, err := dev.CreateSampler(&gpucore.SamplerDesc{
		Label:       "skybox sampler",
		Filter:      gpucore.FilterLinear,
		AddressMode: gpucore.AddressClampToEdge,
	})
	if err != nil {
		return nil, fmt.Errorf("scene: create skybox sampler: %w", err)
	}

	data := skyBoxVertexData()
	vb, err := dev.CreateBuffer(&gpucore.BufferDesc{
		Label: "skybox vertices",
		Size:  uint64(len(data)),
		Usage: gpucore.BufferUsageVertex | gpucore.BufferUsageCopyDst,
		Data:  data,
	})
	if err != nil {
		dev.DestroySampler(sampler)
		return nil, fmt.Errorf("scene: create skybox vertex buffer: %w", err)
	}

	return &SkyBox{
		textures:     faces,
		sampler:      sampler,
		vertexBuffer: vb,
	}, nil
}

// Textures returns the face textures in binding order.
func (s *SkyBox) Textures() [SideCount]gpucore.TextureID { return s.textures }

// Sampler returns the face sampler.
func (s *SkyBox) Sampler() gpucore.SamplerID { return s.sampler }

// VertexBuffer returns the cube vertex buffer.
func (s *SkyBox) VertexBuffer() gpucore.BufferID { return s.vertexBuffer }

// Destroy releases everything the skybox owns. The queue must be idle.
func (s *SkyBox) Destroy(dev gpucore.Device) {
	dev.DestroyBuffer(s.vertexBuffer)
	dev.DestroySampler(s.sampler)
	for i := range s.textures {
		dev.DestroyTexture(s.textures[i])
		s.textures[i] = gpucore.InvalidID
	}
	s.vertexBuffer = gpucore.InvalidID
	s.sampler = gpucore.InvalidID
}

func skyBoxVertexData() []byte {
	buf := make([]byte, 0, len(skyBoxVertices)*4)
	for _, v := range skyBoxVertices {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	return buf
}
