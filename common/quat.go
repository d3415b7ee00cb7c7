package common

import (
	"math"
)

// Quat is a rotation quaternion stored as (x, y, z, w).
type Quat [4]float32

// QuatIdentity returns the identity rotation.
func QuatIdentity() Quat {
	return Quat{0, 0, 0, 1}
}

// QuatNormalize returns q scaled to unit length. A zero quaternion is
// replaced by the identity rotation rather than producing NaNs.
//
// Parameters:
//   - q: the quaternion to normalize
//
// Returns:
//   - Quat: the normalized quaternion
func QuatNormalize(q Quat) Quat {
	lenSq := float64(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	if lenSq == 0 {
		return QuatIdentity()
	}
	inv := float32(1.0 / math.Sqrt(lenSq))
	return Quat{q[0] * inv, q[1] * inv, q[2] * inv, q[3] * inv}
}

// QuatNlerp blends between two rotations with normalized linear
// interpolation. The second quaternion is negated when the pair lies in
// opposite hemispheres so the blend always takes the shortest path.
//
// Parameters:
//   - a: rotation at t=0
//   - b: rotation at t=1
//   - t: blend factor in [0, 1]
//
// Returns:
//   - Quat: the blended, normalized rotation
func QuatNlerp(a, b Quat, t float32) Quat {
	dot := a[0]*b[0] + a[1]*b[1] + a[2]*b[2] + a[3]*b[3]
	if dot < 0 {
		b = Quat{-b[0], -b[1], -b[2], -b[3]}
	}
	return QuatNormalize(Quat{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
		a[3] + (b[3]-a[3])*t,
	})
}

// RotationTranslation builds a 4x4 column-major transform from a unit
// quaternion rotation followed by a translation. This is the bone pose
// to palette-matrix conversion used by skeletal skinning.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - q: unit rotation quaternion
//   - tx, ty, tz: translation components
func RotationTranslation(out []float32, q Quat, tx, ty, tz float32) {
	x, y, z, w := q[0], q[1], q[2], q[3]

	xx := x * x
	yy := y * y
	zz := z * z
	xy := x * y
	xz := x * z
	yz := y * z
	wx := w * x
	wy := w * y
	wz := w * z

	out[0] = 1 - 2*(yy+zz)
	out[1] = 2 * (xy + wz)
	out[2] = 2 * (xz - wy)
	out[3] = 0

	out[4] = 2 * (xy - wz)
	out[5] = 1 - 2*(xx+zz)
	out[6] = 2 * (yz + wx)
	out[7] = 0

	out[8] = 2 * (xz + wy)
	out[9] = 2 * (yz - wx)
	out[10] = 1 - 2*(xx+yy)
	out[11] = 0

	out[12] = tx
	out[13] = ty
	out[14] = tz
	out[15] = 1
}
