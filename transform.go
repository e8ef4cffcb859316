package silhouette

import "math"

// Vec3 is a 3D vector or point.
type Vec3 struct {
	X, Y, Z float64
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Len returns the Euclidean length of v.
func (v Vec3) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Mat4 is a 4x4 matrix stored column-major:
//
//	| e0  e4  e8   e12 |
//	| e1  e5  e9   e13 |
//	| e2  e6  e10  e14 |
//	| e3  e7  e11  e15 |
type Mat4 [16]float64

// IdentityMat4 is the identity matrix.
var IdentityMat4 = Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// Mul returns m * n.
func (m Mat4) Mul(n Mat4) Mat4 {
	var r Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			r[col*4+row] = m[row]*n[col*4] +
				m[4+row]*n[col*4+1] +
				m[8+row]*n[col*4+2] +
				m[12+row]*n[col*4+3]
		}
	}
	return r
}

// TransformPoint applies m to the point v (w = 1) and divides by the
// resulting w. A zero w leaves the coordinates undivided.
func (m Mat4) TransformPoint(v Vec3) Vec3 {
	x := m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]
	y := m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]
	z := m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]
	w := m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]
	if w == 0 {
		return Vec3{x, y, z}
	}
	inv := 1 / w
	return Vec3{x * inv, y * inv, z * inv}
}

// Translation returns a translation matrix.
func Translation(x, y, z float64) Mat4 {
	m := IdentityMat4
	m[12], m[13], m[14] = x, y, z
	return m
}

// Scaling returns a scale matrix.
func Scaling(x, y, z float64) Mat4 {
	m := IdentityMat4
	m[0], m[5], m[10] = x, y, z
	return m
}

// RotationX returns a rotation of angle radians around the X axis.
func RotationX(angle float64) Mat4 {
	s, c := math.Sincos(angle)
	m := IdentityMat4
	m[5], m[6] = c, s
	m[9], m[10] = -s, c
	return m
}

// RotationY returns a rotation of angle radians around the Y axis.
func RotationY(angle float64) Mat4 {
	s, c := math.Sincos(angle)
	m := IdentityMat4
	m[0], m[2] = c, -s
	m[8], m[10] = s, c
	return m
}

// RotationZ returns a rotation of angle radians around the Z axis.
func RotationZ(angle float64) Mat4 {
	s, c := math.Sincos(angle)
	m := IdentityMat4
	m[0], m[1] = c, s
	m[4], m[5] = -s, c
	return m
}

// Perspective returns a right-handed perspective projection mapping the view
// frustum to clip space with X, Y and Z in [-1, 1]. fovY is in radians.
func Perspective(fovY, aspect, near, far float64) Mat4 {
	f := 1 / math.Tan(fovY/2)
	nf := 1 / (near - far)
	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, -1,
		0, 0, 2 * far * near * nf, 0,
	}
}

// Transform is a node's local position, rotation and scale.
//
// Composition order:
//
//	Scale -> RotateZ -> RotateY -> RotateX -> Translate
//
// i.e. the matrix T * Rx * Ry * Rz * S, Euler "XYZ" order in three.js terms.
type Transform struct {
	Position Vec3
	Rotation Vec3 // Euler angles in radians
	Scale    Vec3
}

// NewTransform returns a transform at position with unit scale.
func NewTransform(position Vec3) Transform {
	return Transform{Position: position, Scale: Vec3{1, 1, 1}}
}

// Matrix composes the transform into a local matrix.
func (t Transform) Matrix() Mat4 {
	m := Translation(t.Position.X, t.Position.Y, t.Position.Z)
	if t.Rotation != (Vec3{}) {
		m = m.Mul(RotationX(t.Rotation.X)).
			Mul(RotationY(t.Rotation.Y)).
			Mul(RotationZ(t.Rotation.Z))
	}
	return m.Mul(Scaling(t.Scale.X, t.Scale.Y, t.Scale.Z))
}
