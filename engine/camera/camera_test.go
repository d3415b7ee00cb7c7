package camera

import (
	"math"
	"testing"

	"github.com/Dualsub/rusty-rift/common"
	"github.com/stretchr/testify/assert"
)

func TestControllerSphericalPosition(t *testing.T) {
	cc := NewCameraController(
		WithTarget(0, 120, 0),
		WithRadius(100),
		WithAzimuth(0),
		WithElevation(float32(math.Pi/6)),
	)

	x, y, z := cc.Position()
	assert.InDelta(t, 0.0, x, 1e-4)
	assert.InDelta(t, 120.0+50.0, y, 1e-3)
	assert.InDelta(t, 100.0*math.Sqrt(3)/2.0, z, 1e-3)
}

func TestControllerZoomClamps(t *testing.T) {
	cc := NewCameraController(
		WithRadius(100),
		WithRadiusRange(50, 200),
		WithZoomSpeed(10),
	)

	cc.Zoom(100)
	assert.Equal(t, float32(50), cc.Radius())

	cc.Zoom(-100)
	assert.Equal(t, float32(200), cc.Radius())
}

func TestControllerOrbitClampsElevation(t *testing.T) {
	cc := NewCameraController(
		WithElevation(0.5),
		WithElevationRange(0.1, 1.2),
		WithOrbitSensitivity(0.01),
	)

	cc.Orbit(0, 1000)
	assert.InDelta(t, 1.2, cc.Elevation(), 1e-6)

	cc.Orbit(0, -1000)
	assert.InDelta(t, 0.1, cc.Elevation(), 1e-6)

	cc.Orbit(500, 0)
	assert.InDelta(t, 5.0, cc.Azimuth(), 1e-5)
}

func TestControllerPanMovesTargetOnGroundPlane(t *testing.T) {
	// At azimuth 0 the camera sits on +Z looking toward -Z, so right is +X
	// and forward is -Z.
	cc := NewCameraController(
		WithTarget(0, 5, 0),
		WithAzimuth(0),
		WithPanSpeed(1),
	)

	cc.Pan(2, 3)

	tx, ty, tz := cc.Target()
	assert.InDelta(t, 2.0, tx, 1e-5)
	assert.InDelta(t, 5.0, ty, 1e-5)
	assert.InDelta(t, -3.0, tz, 1e-5)
}

func TestControllerFollow(t *testing.T) {
	cc := NewCameraController(
		WithTarget(0, 0, 0),
		WithFollowRate(8),
	)

	// 8 * 0.05 = 0.4 of the remaining distance per step.
	cc.Follow(10, 0, 0, 0.05)
	tx, _, _ := cc.Target()
	assert.InDelta(t, 4.0, tx, 1e-4)

	cc.Follow(10, 0, 0, 0.05)
	tx, _, _ = cc.Target()
	assert.InDelta(t, 6.4, tx, 1e-4)

	// Large dt clamps to a full snap.
	cc.Follow(10, 0, 0, 10.0)
	tx, _, _ = cc.Target()
	assert.InDelta(t, 10.0, tx, 1e-4)
}

func TestCameraProjectsTargetToClipCenter(t *testing.T) {
	cc := NewCameraController(
		WithTarget(3, 1, -2),
		WithRadius(100),
		WithElevation(0.4),
		WithAzimuth(0.7),
	)
	cam := NewCamera(
		WithController(cc),
		WithAspect(16.0/9.0),
	)

	vp := cam.ViewProjectionMatrix()
	clip := common.TransformVec4(vp[:], [4]float32{3, 1, -2, 1})

	assert.InDelta(t, 0.0, clip[0]/clip[3], 1e-5)
	assert.InDelta(t, 0.0, clip[1]/clip[3], 1e-5)
	assert.Greater(t, clip[3], float32(0))
}

func TestCameraInverseProjection(t *testing.T) {
	cc := NewCameraController()
	cam := NewCamera(WithController(cc), WithAspect(1.5))

	proj := cam.ProjectionMatrix()
	inv := cam.InverseProjectionMatrix()

	var product [16]float32
	common.Mul4(product[:], inv[:], proj[:])

	identity := [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	for i := range identity {
		assert.InDelta(t, identity[i], product[i], 1e-4)
	}
}

func TestCameraUpdateTracksController(t *testing.T) {
	cc := NewCameraController(WithTarget(0, 0, 0), WithRadius(100))
	cam := NewCamera(WithController(cc))

	before := cam.ViewMatrix()
	cc.SetTarget(50, 0, 0)
	cam.Update()
	after := cam.ViewMatrix()

	assert.NotEqual(t, before, after)

	px, py, pz := cc.Position()
	assert.Equal(t, [3]float32{px, py, pz}, cam.Position())
}
