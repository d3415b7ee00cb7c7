package camera

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithTarget sets the initial look-at/pivot point.
//
// Parameters:
//   - x, y, z: world-space coordinates of the target
//
// Returns:
//   - CameraControllerOption: functional option to set the target
func WithTarget(x, y, z float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.target = [3]float32{x, y, z}
	}
}

// WithRadius sets the initial orbit radius (distance from target).
//
// Parameters:
//   - radius: distance from the orbit target
//
// Returns:
//   - CameraControllerOption: functional option to set the radius
func WithRadius(radius float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.radius = radius
	}
}

// WithRadiusRange sets the minimum and maximum orbit radius bounds.
//
// Parameters:
//   - minRadius: closest allowed zoom distance
//   - maxRadius: farthest allowed zoom distance
//
// Returns:
//   - CameraControllerOption: functional option to set the radius bounds
func WithRadiusRange(minRadius, maxRadius float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minRadius = minRadius
		cc.maxRadius = maxRadius
	}
}

// WithAzimuth sets the initial horizontal angle around the Y axis.
//
// Parameters:
//   - azimuth: horizontal angle in radians (0 = +Z axis)
//
// Returns:
//   - CameraControllerOption: functional option to set the azimuth
func WithAzimuth(azimuth float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.azimuth = azimuth
	}
}

// WithElevation sets the initial vertical angle from the horizontal plane.
//
// Parameters:
//   - elevation: vertical angle in radians (0 = horizontal)
//
// Returns:
//   - CameraControllerOption: functional option to set the elevation
func WithElevation(elevation float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.elevation = elevation
	}
}

// WithElevationRange sets the minimum and maximum elevation bounds.
//
// Parameters:
//   - minElevation: lowest allowed tilt angle in radians
//   - maxElevation: highest allowed tilt angle in radians
//
// Returns:
//   - CameraControllerOption: functional option to set the elevation bounds
func WithElevationRange(minElevation, maxElevation float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minElevation = minElevation
		cc.maxElevation = maxElevation
	}
}

// WithOrbitSensitivity sets the multiplier applied to orbit drag deltas.
//
// Parameters:
//   - sensitivity: radians per drag unit
//
// Returns:
//   - CameraControllerOption: functional option to set the orbit sensitivity
func WithOrbitSensitivity(sensitivity float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.orbitSensitivity = sensitivity
	}
}

// WithZoomSpeed sets the multiplier applied to zoom input.
//
// Parameters:
//   - speed: world units per zoom step
//
// Returns:
//   - CameraControllerOption: functional option to set the zoom speed
func WithZoomSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomSpeed = speed
	}
}

// WithPanSpeed sets the multiplier applied to pan input.
//
// Parameters:
//   - speed: world units per pan unit
//
// Returns:
//   - CameraControllerOption: functional option to set the pan speed
func WithPanSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.panSpeed = speed
	}
}

// WithFollowRate sets the exponential smoothing rate used by Follow.
//
// Parameters:
//   - rate: smoothing rate in 1/seconds (higher values track tighter)
//
// Returns:
//   - CameraControllerOption: functional option to set the follow rate
func WithFollowRate(rate float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.followRate = rate
	}
}
