package render

import "github.com/chewxy/math32"

// Vec is a plain 3-component float32 vector used throughout the renderer.
type Vec = [3]float32

// Mat4 is a 4x4 column-major matrix.
type Mat4 [16]float32

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mul returns a*b.
func (a Mat4) Mul(b Mat4) Mat4 {
	var out Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[k*4+r] * b[c*4+k]
			}
			out[c*4+r] = sum
		}
	}
	return out
}

// Translate returns a translation matrix.
func Translate(x, y, z float32) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = x, y, z
	return m
}

// Scale returns a scale matrix.
func Scale(x, y, z float32) Mat4 {
	m := Identity()
	m[0], m[5], m[10] = x, y, z
	return m
}

// RotateX returns a rotation about the x axis, angle in radians.
func RotateX(a float32) Mat4 {
	c, s := math32.Cos(a), math32.Sin(a)
	m := Identity()
	m[5], m[9] = c, -s
	m[6], m[10] = s, c
	return m
}

// RotateY returns a rotation about the y axis.
func RotateY(a float32) Mat4 {
	c, s := math32.Cos(a), math32.Sin(a)
	m := Identity()
	m[0], m[8] = c, s
	m[2], m[10] = -s, c
	return m
}

// RotateZ returns a rotation about the z axis.
func RotateZ(a float32) Mat4 {
	c, s := math32.Cos(a), math32.Sin(a)
	m := Identity()
	m[0], m[4] = c, -s
	m[1], m[5] = s, c
	return m
}

// TRS composes translate * rotZ * rotY * rotX * scale, the conventional
// object transform for position/rotation/scale triples.
func TRS(pos, rot, scale Vec) Mat4 {
	m := Translate(pos[0], pos[1], pos[2])
	m = m.Mul(RotateZ(rot[2]))
	m = m.Mul(RotateY(rot[1]))
	m = m.Mul(RotateX(rot[0]))
	return m.Mul(Scale(scale[0], scale[1], scale[2]))
}

// Perspective returns a right-handed perspective projection (camera looks
// down -z). fovy is the vertical field of view in radians.
func Perspective(fovy, aspect, near, far float32) Mat4 {
	f := 1 / math32.Tan(fovy/2)
	var m Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = (far + near) / (near - far)
	m[11] = -1
	m[14] = 2 * far * near / (near - far)
	return m
}

// LookAt returns a view matrix for a camera at eye aimed at center.
func LookAt(eye, center, up Vec) Mat4 {
	f := normalize(sub(center, eye))
	s := normalize(cross(f, up))
	u := cross(s, f)

	var m Mat4
	m[0], m[4], m[8] = s[0], s[1], s[2]
	m[1], m[5], m[9] = u[0], u[1], u[2]
	m[2], m[6], m[10] = -f[0], -f[1], -f[2]
	m[12] = -dot(s, eye)
	m[13] = -dot(u, eye)
	m[14] = dot(f, eye)
	m[15] = 1
	return m
}

// TransformPoint applies m to point v, returning the transformed point and
// its clip-space w.
func (m Mat4) TransformPoint(v Vec) (Vec, float32) {
	x := m[0]*v[0] + m[4]*v[1] + m[8]*v[2] + m[12]
	y := m[1]*v[0] + m[5]*v[1] + m[9]*v[2] + m[13]
	z := m[2]*v[0] + m[6]*v[1] + m[10]*v[2] + m[14]
	w := m[3]*v[0] + m[7]*v[1] + m[11]*v[2] + m[15]
	return Vec{x, y, z}, w
}

// TransformDir applies the rotation/scale part of m to a direction.
func (m Mat4) TransformDir(v Vec) Vec {
	return Vec{
		m[0]*v[0] + m[4]*v[1] + m[8]*v[2],
		m[1]*v[0] + m[5]*v[1] + m[9]*v[2],
		m[2]*v[0] + m[6]*v[1] + m[10]*v[2],
	}
}

func sub(a, b Vec) Vec { return Vec{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }

func dot(a, b Vec) float32 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func cross(a, b Vec) Vec {
	return Vec{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func normalize(v Vec) Vec {
	l := math32.Sqrt(dot(v, v))
	if l < 1e-8 {
		return Vec{}
	}
	return Vec{v[0] / l, v[1] / l, v[2] / l}
}
