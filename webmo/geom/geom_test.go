package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBond(t *testing.T) {
	a := Atom{Symbol: "O"}
	b := Atom{Symbol: "H", X: 3, Y: 4}
	assert.InDelta(t, 5.0, Bond(a, b), 1e-12)
	assert.InDelta(t, Bond(a, b), Bond(b, a), 1e-12)
}

func TestAngle(t *testing.T) {
	origin := Atom{}

	t.Run("right angle", func(t *testing.T) {
		a := Atom{X: 1}
		c := Atom{Y: 1}
		assert.InDelta(t, 90.0, Angle(a, origin, c), 1e-9)
	})

	t.Run("linear", func(t *testing.T) {
		a := Atom{X: -1.5}
		c := Atom{X: 2}
		assert.InDelta(t, 180.0, Angle(a, origin, c), 1e-9)
	})

	t.Run("independent of bond lengths", func(t *testing.T) {
		a := Atom{X: 0.1}
		c := Atom{X: 5, Y: 5}
		assert.InDelta(t, 45.0, Angle(a, origin, c), 1e-9)
	})
}

func TestDihedral(t *testing.T) {
	// a-b along +y, b-c axis along +x; d rotated around the axis
	a := Atom{Y: 1}
	b := Atom{}
	c := Atom{X: 1}

	tests := []struct {
		name string
		d    Atom
		want float64
	}{
		{"cis", Atom{X: 1, Y: 1}, 0},
		{"trans", Atom{X: 1, Y: -1}, 180},
		{"gauche plus", Atom{X: 1, Z: -1}, 90},
		{"gauche minus", Atom{X: 1, Z: 1}, -90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Dihedral(a, b, c, tt.d), 1e-9)
		})
	}
}

func TestParseXYZ(t *testing.T) {
	t.Run("bare geometry", func(t *testing.T) {
		atoms, err := ParseXYZ("O\t0.0\t0.0\t0.0\nH\t0.757\t0.586\t0.0\nH\t-0.757\t0.586\t0.0\n")
		require.NoError(t, err)
		require.Len(t, atoms, 3)
		assert.Equal(t, Atom{Symbol: "H", X: 0.757, Y: 0.586}, atoms[1])
	})

	t.Run("full file with count and comment", func(t *testing.T) {
		atoms, err := ParseXYZ("3\nwater, optimized\nO 0 0 0\nH 0.757 0.586 0\nH -0.757 0.586 0\n")
		require.NoError(t, err)
		assert.Len(t, atoms, 3)
	})

	t.Run("malformed coordinates", func(t *testing.T) {
		_, err := ParseXYZ("O 0 zero 0\n")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "malformed coordinates")
	})

	t.Run("short line after atoms", func(t *testing.T) {
		_, err := ParseXYZ("O 0 0 0\nH 1 2\n")
		require.Error(t, err)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := ParseXYZ("\n\n")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no atoms")
	})
}

func TestFormatXYZRoundTrip(t *testing.T) {
	atoms := []Atom{
		{Symbol: "O"},
		{Symbol: "H", X: 0.757, Y: 0.586},
	}

	formatted := FormatXYZ(atoms)
	parsed, err := ParseXYZ(formatted)
	require.NoError(t, err)
	assert.Equal(t, atoms, parsed)
}
