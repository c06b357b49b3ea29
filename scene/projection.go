package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Projection defaults.
const (
	HorizontalFOV = math32.Pi / 2
	NearPlane     = 0.1
	FarPlane      = 1000
)

// PerspectiveReverseZ returns a left-handed perspective projection that
// maps the near plane to depth 1 and the far plane to depth 0.
// aspectInverse is height divided by width.
func PerspectiveReverseZ(horizontalFOV, aspectInverse, near, far float32) mgl32.Mat4 {
	sx := 1 / math32.Tan(horizontalFOV/2)
	sy := sx / aspectInverse
	a := near / (near - far)
	b := -far * a

	// Column-major.
	return mgl32.Mat4{
		sx, 0, 0, 0,
		0, sy, 0, 0,
		0, 0, a, 1,
		0, 0, b, 0,
	}
}

// Projection returns the viewer's projection for a width x height target.
func Projection(width, height uint32) mgl32.Mat4 {
	if width == 0 || height == 0 {
		return PerspectiveReverseZ(HorizontalFOV, 1, NearPlane, FarPlane)
	}
	return PerspectiveReverseZ(HorizontalFOV, float32(height)/float32(width), NearPlane, FarPlane)
}
