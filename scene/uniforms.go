package scene

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	sceneUniformSize = 64 + 16 + 16
	skyUniformSize   = 64
)

// Light defaults.
var (
	lightPosition = mgl32.Vec4{0, 0, 0, 0}
	lightColor    = mgl32.Vec4{0.9, 0.9, 0.7, 1}
)

type sceneUniforms struct {
	modelViewProj mgl32.Mat4
	lightPosition mgl32.Vec4
	lightColor    mgl32.Vec4
}

func (u *sceneUniforms) bytes() []byte {
	buf := make([]byte, 0, sceneUniformSize)
	buf = appendFloats(buf, u.modelViewProj[:])
	buf = appendFloats(buf, u.lightPosition[:])
	return appendFloats(buf, u.lightColor[:])
}

type skyUniforms struct {
	viewProj mgl32.Mat4
}

func (u *skyUniforms) bytes() []byte {
	return appendFloats(make([]byte, 0, skyUniformSize), u.viewProj[:])
}

func appendFloats(buf []byte, v []float32) []byte {
	for _, f := range v {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}

// withoutTranslation returns view with its translation column cleared so
// that the skybox stays centered on the eye.
func withoutTranslation(view mgl32.Mat4) mgl32.Mat4 {
	view.SetCol(3, mgl32.Vec4{0, 0, 0, 1})
	return view
}
