// Package geom provides the derived-geometry math for molecular
// structures: bond lengths, bond angles and signed dihedral angles, plus
// XYZ parsing. All functions are pure.
package geom

import "math"

// Atom is one atom of a molecular geometry, with coordinates in angstroms.
type Atom struct {
	Symbol  string
	X, Y, Z float64
}

type vec3 struct{ x, y, z float64 }

func sub(a, b Atom) vec3 {
	return vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

func dot(a, b vec3) float64 {
	return a.x*b.x + a.y*b.y + a.z*b.z
}

func cross(a, b vec3) vec3 {
	return vec3{
		a.y*b.z - a.z*b.y,
		a.z*b.x - a.x*b.z,
		a.x*b.y - a.y*b.x,
	}
}

func norm(a vec3) float64 {
	return math.Sqrt(dot(a, a))
}

func unit(a vec3) vec3 {
	n := norm(a)
	return vec3{a.x / n, a.y / n, a.z / n}
}

// Bond returns the distance between two atoms.
func Bond(a, b Atom) float64 {
	return norm(sub(a, b))
}

// Angle returns the a-b-c bond angle in degrees, computed from the
// normalized difference vectors around the central atom b.
func Angle(a, b, c Atom) float64 {
	u := unit(sub(a, b))
	v := unit(sub(c, b))
	// clamp against rounding drift before acos
	cos := math.Max(-1, math.Min(1, dot(u, v)))
	return math.Acos(cos) * 180 / math.Pi
}

// Dihedral returns the signed a-b-c-d torsion angle in degrees, in
// (-180, 180]. The sign follows the usual convention: looking down the b-c
// axis, a positive angle is a clockwise rotation of the c-d bond relative
// to the b-a bond.
func Dihedral(a, b, c, d Atom) float64 {
	b1 := sub(b, a)
	b2 := sub(c, b)
	b3 := sub(d, c)

	n1 := cross(b1, b2)
	n2 := cross(b2, b3)
	m1 := cross(n1, unit(b2))

	x := dot(n1, n2)
	y := dot(m1, n2)
	return math.Atan2(y, x) * 180 / math.Pi
}
