package common

import "math"

// Identity writes the identity into the 16-element column-major matrix m.
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// Mul4 stores a * b in out. out may alias a or b.
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for col := range 4 {
		for row := range 4 {
			var sum float32
			for k := range 4 {
				sum += a[k*4+row] * b[col*4+k]
			}
			buf[col*4+row] = sum
		}
	}
	copy(out, buf[:])
}

// Perspective writes a right-handed perspective projection that maps view depth
// [-near, -far] to the WebGPU clip range [0, 1].
//
// Parameters:
//   - out: the 16-element destination
//   - fovY: vertical field of view in radians
//   - aspect: width / height
//   - near, far: positive clip distances with near < far
func Perspective(out []float32, fovY, aspect, near, far float32) {
	f := float32(1 / math.Tan(float64(fovY)/2))
	clear(out[:16])
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1
	out[14] = near * far / (near - far)
}

// BuildModelMatrix writes translate * rotate * scale, with the rotation applied in
// yaw (Y), pitch (X), roll (Z) order.
func BuildModelMatrix(out []float32, posX, posY, posZ, rotX, rotY, rotZ, scaleX, scaleY, scaleZ float32) {
	sx, cx := sincos(rotX)
	sy, cy := sincos(rotY)
	sz, cz := sincos(rotZ)

	basis := [3][3]float32{
		{cy*cz + sy*sx*sz, cx * sz, cy*sx*sz - sy*cz},
		{sy*sx*cz - cy*sz, cx * cz, sy*sz + cy*sx*cz},
		{sy * cx, -sx, cy * cx},
	}
	scale := [3]float32{scaleX, scaleY, scaleZ}
	for col := range 3 {
		for row := range 3 {
			out[col*4+row] = basis[col][row] * scale[col]
		}
		out[col*4+3] = 0
	}
	out[12], out[13], out[14], out[15] = posX, posY, posZ, 1
}

func sincos(a float32) (float32, float32) {
	s, c := math.Sincos(float64(a))
	return float32(s), float32(c)
}

// Invert4 writes the inverse of m into out using 2x2 cofactor expansion. It reports
// false and leaves out untouched when m is singular.
func Invert4(out, m []float32) bool {
	// upper and lower 2x2 minors
	s0 := m[0]*m[5] - m[4]*m[1]
	s1 := m[0]*m[6] - m[4]*m[2]
	s2 := m[0]*m[7] - m[4]*m[3]
	s3 := m[1]*m[6] - m[5]*m[2]
	s4 := m[1]*m[7] - m[5]*m[3]
	s5 := m[2]*m[7] - m[6]*m[3]
	c0 := m[8]*m[13] - m[12]*m[9]
	c1 := m[8]*m[14] - m[12]*m[10]
	c2 := m[8]*m[15] - m[12]*m[11]
	c3 := m[9]*m[14] - m[13]*m[10]
	c4 := m[9]*m[15] - m[13]*m[11]
	c5 := m[10]*m[15] - m[14]*m[11]

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if det == 0 {
		return false
	}
	inv := 1 / det
	res := [16]float32{
		m[5]*c5 - m[6]*c4 + m[7]*c3,
		-m[1]*c5 + m[2]*c4 - m[3]*c3,
		m[13]*s5 - m[14]*s4 + m[15]*s3,
		-m[9]*s5 + m[10]*s4 - m[11]*s3,

		-m[4]*c5 + m[6]*c2 - m[7]*c1,
		m[0]*c5 - m[2]*c2 + m[3]*c1,
		-m[12]*s5 + m[14]*s2 - m[15]*s1,
		m[8]*s5 - m[10]*s2 + m[11]*s1,

		m[4]*c4 - m[5]*c2 + m[7]*c0,
		-m[0]*c4 + m[1]*c2 - m[3]*c0,
		m[12]*s4 - m[13]*s2 + m[15]*s0,
		-m[8]*s4 + m[9]*s2 - m[11]*s0,

		-m[4]*c3 + m[5]*c1 - m[6]*c0,
		m[0]*c3 - m[1]*c1 + m[2]*c0,
		-m[12]*s3 + m[13]*s1 - m[14]*s0,
		m[8]*s3 - m[9]*s1 + m[10]*s0,
	}
	for i, v := range res {
		out[i] = v * inv
	}
	return true
}

// LookAt writes a right-handed view matrix for a camera at eye facing center. The
// camera looks down its -Z axis. A degenerate direction or up vector is left
// unnormalized rather than producing NaNs.
//
// Parameters:
//   - out: the 16-element destination
//   - eyeX, eyeY, eyeZ: camera position
//   - centerX, centerY, centerZ: the point looked at
//   - upX, upY, upZ: the world up direction
func LookAt(out []float32, eyeX, eyeY, eyeZ, centerX, centerY, centerZ, upX, upY, upZ float32) {
	eye := [3]float32{eyeX, eyeY, eyeZ}
	z := normalize3([3]float32{eyeX - centerX, eyeY - centerY, eyeZ - centerZ})
	x := normalize3(cross3([3]float32{upX, upY, upZ}, z))
	y := cross3(z, x)

	for i, axis := range [3][3]float32{x, y, z} {
		out[i], out[4+i], out[8+i] = axis[0], axis[1], axis[2]
		out[12+i] = -dot3(axis, eye)
	}
	out[3], out[7], out[11], out[15] = 0, 0, 0, 1
}

func cross3(a, b [3]float32) [3]float32 {
	return [3]float32{a[1]*b[2] - a[2]*b[1], a[2]*b[0] - a[0]*b[2], a[0]*b[1] - a[1]*b[0]}
}

func dot3(a, b [3]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func normalize3(v [3]float32) [3]float32 {
	l := dot3(v, v)
	if l == 0 {
		return v
	}
	inv := float32(1 / math.Sqrt(float64(l)))
	return [3]float32{v[0] * inv, v[1] * inv, v[2] * inv}
}

// Orthographic builds a column-major orthographic projection for WebGPU clip space:
// X/Y in [-1, 1], Z in [0, 1].
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - left, right, bottom, top: view volume bounds
//   - near, far: clip plane distances
func Orthographic(out []float32, left, right, bottom, top, near, far float32) {
	Identity(out)
	rl := right - left
	tb := top - bottom
	fn := far - near

	out[0] = 2.0 / rl
	out[5] = 2.0 / tb
	out[10] = -1.0 / fn
	out[12] = -(right + left) / rl
	out[13] = -(top + bottom) / tb
	out[14] = -near / fn
}

// DirectionalLightVP builds the orthographic view-projection used to render a
// directional light's shadow map. The volume is centered on center and looks along dir.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - dir: normalized light direction, from the light toward the scene
//   - center: world-space center of the shadow volume
//   - halfExtent: half-size of the volume in world units
//   - near, far: clip plane distances
func DirectionalLightVP(out []float32, dir, center [3]float32, halfExtent, near, far float32) {
	eyeX := center[0] - dir[0]*far*0.5
	eyeY := center[1] - dir[1]*far*0.5
	eyeZ := center[2] - dir[2]*far*0.5

	upX, upY, upZ := float32(0), float32(1), float32(0)
	if dir[1] > 0.99 || dir[1] < -0.99 {
		upX, upY, upZ = 1, 0, 0
	}

	var view, proj [16]float32
	LookAt(view[:], eyeX, eyeY, eyeZ, center[0], center[1], center[2], upX, upY, upZ)
	Orthographic(proj[:], -halfExtent, halfExtent, -halfExtent, halfExtent, near, far)
	Mul4(out, proj[:], view[:])
}
