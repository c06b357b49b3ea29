package camera

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const pi = float32(math.Pi)

// Orbit limits.
const (
	// Epsilon is the threshold below which input and velocities count as zero.
	Epsilon float32 = 1e-6

	// MinTheta and MaxTheta are the pitch poles. Pitch always stays strictly
	// between them.
	MinTheta = -pi / 2
	MaxTheta = pi / 2

	// MinDistance is the closest the eye may get to the pivot.
	MinDistance float32 = 1
)

// State is a snapshot of an orbit camera.
type State struct {
	Pivot  mgl32.Vec3
	Radius float32

	// Rotation holds yaw (X) and pitch (Y) in radians.
	Rotation mgl32.Vec2

	Speed  float32
	RotVel mgl32.Vec2
}

// OrbitController orbits the eye around a pivot point.
//
// Input is accumulated through OnMove, OnRotate, OnZoom and friends and
// consumed by the next Update. Negative radial input moves the eye toward
// the pivot.
type OrbitController struct {
	params MotionParameters

	pivot    mgl32.Vec3
	radius   float32
	rotation mgl32.Vec2 // yaw, pitch

	currentSpeed  float32
	currentRotVel mgl32.Vec2

	// pending input since the last Update
	dr, dtheta, dphi float32

	home struct {
		pivot    mgl32.Vec3
		radius   float32
		rotation mgl32.Vec2
	}
}

var _ Controller = (*OrbitController)(nil)

// NewOrbitController creates a controller with the eye at eye looking at
// lookAt. The resulting pose becomes the home pose used by ResetView.
func NewOrbitController(eye, lookAt mgl32.Vec3) *OrbitController {
	c := &OrbitController{
		params: DefaultMotionParameters(),
		pivot:  lookAt,
		radius: MinDistance,
	}
	c.MoveTo(eye)
	c.home.pivot = c.pivot
	c.home.radius = c.radius
	c.home.rotation = c.rotation
	return c
}

// SetMotionParameters replaces the motion tuning. Values take effect on the
// next Update.
func (c *OrbitController) SetMotionParameters(p MotionParameters) {
	c.params = p
}

// MotionParameters returns the current motion tuning.
func (c *OrbitController) MotionParameters() MotionParameters {
	return c.params
}

// OnMove maps planar movement input: X orbits around the vertical axis and
// Y moves along the view radius.
func (c *OrbitController) OnMove(v mgl32.Vec2) {
	c.dphi += v.X()
	c.dr += v.Y()
}

// OnMoveY maps vertical movement input to pitch.
func (c *OrbitController) OnMoveY(y float32) {
	c.dtheta += y
}

// OnRotate maps look input to yaw and pitch.
func (c *OrbitController) OnRotate(v mgl32.Vec2) {
	c.dtheta -= v.Y()
	c.dphi += v.X()
}

// OnZoom maps scroll input to the view radius.
func (c *OrbitController) OnZoom(v mgl32.Vec2) {
	c.dr += v.X() + v.Y()
}

// Accumulate adds one frame's worth of move, rotate and zoom input.
// Nothing is clamped until Update.
func (c *OrbitController) Accumulate(move, rotate, zoom mgl32.Vec2) {
	c.OnMove(move)
	c.OnRotate(rotate)
	c.OnZoom(zoom)
}

// Update advances the motion model by dt seconds and clears pending input.
func (c *OrbitController) Update(dt float32) {
	c.updateRadial(dt)
	c.updateAngular(dt)

	c.radius += c.currentSpeed * dt
	if c.radius < MinDistance {
		c.radius = MinDistance
		c.currentSpeed = 0
	}

	c.rotation = c.rotation.Add(c.currentRotVel.Mul(dt))
	pitch := c.rotation.Y()
	if pitch < MinTheta+Epsilon || pitch > MaxTheta-Epsilon {
		c.currentRotVel[1] = 0
		c.rotation[1] = mgl32.Clamp(pitch, MinTheta+Epsilon, MaxTheta-Epsilon)
	}

	c.dr, c.dtheta, c.dphi = 0, 0, 0
}

func (c *OrbitController) updateRadial(dt float32) {
	if math32.Abs(c.dr) > Epsilon {
		c.currentSpeed += c.params.Acceleration * sign(c.dr) * dt
	} else {
		braking := c.params.Braking * dt
		if braking > math32.Abs(c.currentSpeed) {
			c.currentSpeed = 0
		} else {
			c.currentSpeed -= braking * sign(c.currentSpeed)
		}
	}
	c.currentSpeed = mgl32.Clamp(c.currentSpeed, -c.params.MovementSpeed, c.params.MovementSpeed)
}

// updateAngular brakes along the combined velocity direction with a single
// scalar, so both axes come to rest on the same tick.
func (c *OrbitController) updateAngular(dt float32) {
	dir := mgl32.Vec2{sign(c.dphi), sign(c.dtheta)}
	if lenSq := dir.Dot(dir); lenSq > 1 {
		dir = dir.Mul(1 / math32.Sqrt(lenSq))
	}

	if dir.Dot(dir) > Epsilon {
		c.currentRotVel = c.currentRotVel.Add(dir.Mul(c.params.Acceleration * dt))
	} else if speed := c.currentRotVel.Len(); speed > 0 {
		b := math32.Min(c.params.Braking*dt, speed)
		c.currentRotVel = c.currentRotVel.Sub(c.currentRotVel.Mul(b / speed))
	}

	if speed := c.currentRotVel.Len(); speed > c.params.RotationSpeed {
		c.currentRotVel = c.currentRotVel.Mul(c.params.RotationSpeed / speed)
	}
}

// EyePosition returns the eye position on the orbit sphere.
func (c *OrbitController) EyePosition() mgl32.Vec3 {
	phi, theta := c.rotation.X(), c.rotation.Y()
	dir := mgl32.Vec3{
		math32.Cos(theta) * math32.Sin(phi),
		math32.Sin(theta),
		math32.Cos(theta) * math32.Cos(phi),
	}
	return c.pivot.Add(dir.Mul(c.radius))
}

// ViewMatrix returns a left-handed look-at transform from the eye to the
// pivot with +Y up.
func (c *OrbitController) ViewMatrix() mgl32.Mat4 {
	return LookAtLH(c.EyePosition(), c.pivot, mgl32.Vec3{0, 1, 0})
}

// Rotation returns yaw (X) and pitch (Y) in radians.
func (c *OrbitController) Rotation() mgl32.Vec2 {
	return c.rotation
}

// Pivot returns the point the camera orbits.
func (c *OrbitController) Pivot() mgl32.Vec3 {
	return c.pivot
}

// Radius returns the distance from the pivot to the eye.
func (c *OrbitController) Radius() float32 {
	return c.radius
}

// State returns a snapshot of the controller.
func (c *OrbitController) State() State {
	return State{
		Pivot:    c.pivot,
		Radius:   c.radius,
		Rotation: c.rotation,
		Speed:    c.currentSpeed,
		RotVel:   c.currentRotVel,
	}
}

// ResetView restores the home pose and stops all motion.
func (c *OrbitController) ResetView() {
	c.pivot = c.home.pivot
	c.radius = c.home.radius
	c.rotation = c.home.rotation
	c.currentSpeed = 0
	c.currentRotVel = mgl32.Vec2{}
	c.dr, c.dtheta, c.dphi = 0, 0, 0
}

// MoveTo places the eye at p, keeping the pivot.
func (c *OrbitController) MoveTo(p mgl32.Vec3) {
	offset := p.Sub(c.pivot)
	dist := offset.Len()
	if dist < Epsilon {
		c.radius = MinDistance
		c.rotation = mgl32.Vec2{}
		return
	}
	theta := math32.Asin(mgl32.Clamp(offset.Y()/dist, -1, 1))
	c.rotation = mgl32.Vec2{
		math32.Atan2(offset.X(), offset.Z()),
		mgl32.Clamp(theta, MinTheta+Epsilon, MaxTheta-Epsilon),
	}
	c.radius = math32.Max(dist, MinDistance)
}

// LookAt moves the pivot to p, keeping the eye where it is.
func (c *OrbitController) LookAt(p mgl32.Vec3) {
	eye := c.EyePosition()
	c.pivot = p
	c.MoveTo(eye)
}

// LookAtLH builds a left-handed view matrix.
func LookAtLH(eye, center, up mgl32.Vec3) mgl32.Mat4 {
	z := center.Sub(eye).Normalize()
	x := up.Cross(z).Normalize()
	y := z.Cross(x)
	return mgl32.Mat4{
		x.X(), y.X(), z.X(), 0,
		x.Y(), y.Y(), z.Y(), 0,
		x.Z(), y.Z(), z.Z(), 0,
		-x.Dot(eye), -y.Dot(eye), -z.Dot(eye), 1,
	}
}

func sign(v float32) float32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
