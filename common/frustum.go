package common

import "math"

// Plane is the set of points p with dot(Normal, p) + Distance = 0. Points with a
// positive value lie on the inner side.
type Plane struct {
	Normal   [3]float32
	Distance float32
}

// Frustum is the six inward-facing planes of a view volume.
type Frustum struct {
	Planes [6]Plane
}

// Plane indices into Frustum.Planes.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// ExtractFrustumFromMatrix derives the planes of a column-major view-projection
// matrix by combining its rows (Gribb and Hartmann). The near plane assumes the
// WebGPU depth range of [0, 1].
//
// Parameters:
//   - viewProj: the projection * view matrix
//
// Returns:
//   - Frustum: the frustum with unit-length plane normals
func ExtractFrustumFromMatrix(viewProj []float32) Frustum {
	row := func(r int) [4]float32 {
		return [4]float32{viewProj[r], viewProj[4+r], viewProj[8+r], viewProj[12+r]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	var f Frustum
	for i, coeffs := range [6][4]float32{
		FrustumLeft:   add4(r3, r0),
		FrustumRight:  sub4(r3, r0),
		FrustumBottom: add4(r3, r1),
		FrustumTop:    sub4(r3, r1),
		FrustumNear:   r2,
		FrustumFar:    sub4(r3, r2),
	} {
		f.Planes[i] = planeFrom(coeffs)
	}
	return f
}

func add4(a, b [4]float32) [4]float32 {
	return [4]float32{a[0] + b[0], a[1] + b[1], a[2] + b[2], a[3] + b[3]}
}

func sub4(a, b [4]float32) [4]float32 {
	return [4]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2], a[3] - b[3]}
}

func planeFrom(c [4]float32) Plane {
	p := Plane{Normal: [3]float32{c[0], c[1], c[2]}, Distance: c[3]}
	length := float32(math.Sqrt(float64(c[0]*c[0] + c[1]*c[1] + c[2]*c[2])))
	if length == 0 {
		return p
	}
	for i := range p.Normal {
		p.Normal[i] /= length
	}
	p.Distance /= length
	return p
}

// IntersectsSphere reports whether a sphere lies at least partly inside the frustum.
//
// Parameters:
//   - center: sphere center in world space
//   - radius: sphere radius
//
// Returns:
//   - bool: false only when the sphere is fully outside one of the planes
func (f *Frustum) IntersectsSphere(center [3]float32, radius float32) bool {
	for _, p := range f.Planes {
		d := p.Normal[0]*center[0] + p.Normal[1]*center[1] + p.Normal[2]*center[2] + p.Distance
		if d < -radius {
			return false
		}
	}
	return true
}
