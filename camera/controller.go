package camera

import "github.com/go-gl/mathgl/mgl32"

// Controller is the capability set the viewer needs from a camera.
type Controller interface {
	// Update integrates the input accumulated since the previous tick.
	// dt is the elapsed time in seconds.
	Update(dt float32)

	// ViewMatrix returns the world-to-view transform.
	ViewMatrix() mgl32.Mat4

	// EyePosition returns the eye position in world space.
	EyePosition() mgl32.Vec3

	OnMove(v mgl32.Vec2)
	OnMoveY(y float32)
	OnRotate(v mgl32.Vec2)
	OnZoom(v mgl32.Vec2)

	// ResetView restores the pose captured at construction.
	ResetView()

	MoveTo(p mgl32.Vec3)
	LookAt(p mgl32.Vec3)

	SetMotionParameters(p MotionParameters)
}

// MotionParameters tune the damped motion model.
type MotionParameters struct {
	// Acceleration is applied to both radial and angular velocity while
	// input is held, in units per second squared.
	Acceleration float32 `toml:"acceleration" yaml:"acceleration"`

	// Braking is the deceleration applied once input is released.
	Braking float32 `toml:"braking" yaml:"braking"`

	// MovementSpeed caps the radial (zoom) speed.
	MovementSpeed float32 `toml:"zoom_speed" yaml:"zoom_speed"`

	// RotationSpeed caps the angular (orbit) speed in radians per second.
	RotationSpeed float32 `toml:"orbit_speed" yaml:"orbit_speed"`
}

// DefaultMotionParameters returns the parameters the viewer starts with.
func DefaultMotionParameters() MotionParameters {
	return MotionParameters{
		Acceleration:  600,
		Braking:       200,
		MovementSpeed: 10,
		RotationSpeed: pi,
	}
}
