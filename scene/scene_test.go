package scene

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/modelview/gpucore"
	"github.com/gogpu/modelview/gpucore/gputest"
)

func depthAt(proj mgl32.Mat4, z float32) float32 {
	clip := proj.Mul4x1(mgl32.Vec4{0, 0, z, 1})
	return clip.Z() / clip.W()
}

func TestPerspectiveReverseZ(t *testing.T) {
	proj := PerspectiveReverseZ(HorizontalFOV, 1, NearPlane, FarPlane)

	assert.InDelta(t, 1, depthAt(proj, NearPlane), 1e-5)
	assert.InDelta(t, 0, depthAt(proj, FarPlane), 1e-5)

	// Depth decreases with distance.
	assert.Greater(t, depthAt(proj, 1), depthAt(proj, 10))
}

func TestProjectionAspect(t *testing.T) {
	proj := Projection(200, 100)
	assert.InDelta(t, 1, proj[0], 1e-5)
	assert.InDelta(t, 2, proj[5], 1e-5)

	square := Projection(0, 0)
	assert.InDelta(t, square[0], square[5], 1e-6)
}

func TestSceneMatrix(t *testing.T) {
	s := New(nil)
	assert.Equal(t, float32(1), s.Scale)
	assert.Equal(t, mgl32.Ident4(), s.Matrix())

	s.Scale = 2
	s.Transform = mgl32.Translate3D(1, 0, 0)
	p := s.Matrix().Mul4x1(mgl32.Vec4{1, 1, 1, 1})
	assert.Equal(t, mgl32.Vec4{3, 2, 2, 1}, p)

	// Destroy without a mesh is a no-op.
	s.Destroy(gputest.NewDevice())
}

func TestSkyBoxVertexData(t *testing.T) {
	data := skyBoxVertexData()
	require.Len(t, data, SkyBoxVertexCount*skyBoxVertexStride)

	perFace := make(map[float32]int)
	for i := 0; i < SkyBoxVertexCount; i++ {
		off := i*skyBoxVertexStride + 12
		w := math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
		perFace[w]++
	}
	assert.Len(t, perFace, SideCount)
	for face := 1; face <= SideCount; face++ {
		assert.Equal(t, 6, perFace[float32(face)], "face %d", face)
	}
}

func TestNewSkyBoxOwnsFaces(t *testing.T) {
	dev := gputest.NewDevice()
	var faces [SideCount]gpucore.TextureID
	for i := range faces {
		id, err := dev.CreateTexture(&gpucore.TextureDesc{Width: 1, Height: 1})
		require.NoError(t, err)
		faces[i] = id
	}

	sky, err := NewSkyBox(dev, faces)
	require.NoError(t, err)
	assert.Equal(t, faces, sky.Textures())
	assert.NotZero(t, sky.Sampler())
	assert.NotZero(t, sky.VertexBuffer())
	assert.Equal(t, 1, dev.Live("Sampler"))
	assert.Equal(t, 1, dev.Live("Buffer"))

	sky.Destroy(dev)
	assert.Zero(t, dev.Live("Texture"))
	assert.Zero(t, dev.Live("Sampler"))
	assert.Zero(t, dev.Live("Buffer"))
}

func TestNewSkyBoxErrors(t *testing.T) {
	dev := gputest.NewDevice()
	var faces [SideCount]gpucore.TextureID
	_, err := NewSkyBox(dev, faces)
	require.Error(t, err)

	for i := range faces {
		faces[i] = gpucore.TextureID(100 + i)
	}
	dev.Fail("CreateBuffer", nil)
	_, err = NewSkyBox(dev, faces)
	require.ErrorIs(t, err, gputest.ErrInjected)
	assert.Zero(t, dev.Live("Sampler"), "sampler leaked")
}

func TestUniformLayout(t *testing.T) {
	u := sceneUniforms{
		modelViewProj: mgl32.Ident4(),
		lightPosition: lightPosition,
		lightColor:    lightColor,
	}
	b := u.bytes()
	require.Len(t, b, sceneUniformSize)
	assert.Equal(t, float32(0.9), math.Float32frombits(binary.LittleEndian.Uint32(b[80:])))

	sky := skyUniforms{viewProj: mgl32.Ident4()}
	assert.Len(t, sky.bytes(), skyUniformSize)
}

func TestWithoutTranslation(t *testing.T) {
	view := mgl32.Translate3D(4, 5, 6).Mul4(mgl32.HomogRotate3DY(0.5))
	got := withoutTranslation(view)
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, got.Col(3))
	assert.Equal(t, view.Col(0), got.Col(0))
}
