package target

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Ray is a world-space half line. Direction need not be unit length.
type Ray struct {
	Origin    r3.Vec
	Direction r3.Vec
}

// Valid reports whether the ray has finite components and a usable direction.
func (r Ray) Valid() bool {
	return finiteVec(r.Origin) && finiteVec(r.Direction) && r3.Norm(r.Direction) > 0
}

// At returns the point at parameter t along the unit direction.
func (r Ray) At(t float64) r3.Vec {
	return r3.Add(r.Origin, r3.Scale(t, r3.Unit(r.Direction)))
}

// ClosestApproach returns the ray parameter nearest to p and the distance
// between p and that point. Points behind the origin clamp to t=0.
func (r Ray) ClosestApproach(p r3.Vec) (float64, float64) {
	t := math.Max(0, r3.Dot(r3.Sub(p, r.Origin), r3.Unit(r.Direction)))
	return t, r3.Norm(r3.Sub(p, r.At(t)))
}

// Intersection describes where a ray met a target.
type Intersection struct {
	// T is the distance along the ray to Contact.
	T       float64
	Contact r3.Vec
	// Offset is the world distance between the scoring center and the ray.
	Offset float64
}

// raySphere intersects a ray with a sphere. Offset is the perpendicular
// distance from the center to the ray.
func raySphere(r Ray, center r3.Vec, radius float64) (Intersection, bool) {
	d := r3.Unit(r.Direction)
	oc := r3.Sub(r.Origin, center)
	b := r3.Dot(oc, d)
	c := r3.Dot(oc, oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return Intersection{}, false
	}

	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		// Origin inside the sphere.
		t = -b + sq
	}
	if t < 0 {
		return Intersection{}, false
	}

	return Intersection{
		T:       t,
		Contact: r3.Add(r.Origin, r3.Scale(t, d)),
		Offset:  math.Sqrt(math.Max(0, r3.Dot(oc, oc)-b*b)),
	}, true
}

// rayDisc intersects a ray with a flat disc facing along normal.
func rayDisc(r Ray, center, normal r3.Vec, radius float64) (Intersection, bool) {
	d := r3.Unit(r.Direction)
	denom := r3.Dot(d, normal)
	if math.Abs(denom) < 1e-9 {
		return Intersection{}, false
	}
	t := r3.Dot(r3.Sub(center, r.Origin), normal) / denom
	if t < 0 {
		return Intersection{}, false
	}

	contact := r3.Add(r.Origin, r3.Scale(t, d))
	offset := r3.Norm(r3.Sub(contact, center))
	if offset > radius {
		return Intersection{}, false
	}
	return Intersection{T: t, Contact: contact, Offset: offset}, true
}

func finiteVec(v r3.Vec) bool {
	for _, f := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
