package result

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(`{"properties":{"route":"#N B3LYP OPT"}}`))
	require.NoError(t, err)

	route, err := doc.Property("route")
	require.NoError(t, err)
	assert.Equal(t, "#N B3LYP OPT", route)

	_, err = Parse([]byte(`not json`))
	require.Error(t, err)
}

func TestParseList(t *testing.T) {
	docs, err := ParseList([]byte(`[{"properties":{"a":1}},{"properties":{"a":2}}]`))
	require.NoError(t, err)
	require.Len(t, docs, 2)

	second, err := docs[1].Float("a")
	require.NoError(t, err)
	assert.Equal(t, 2.0, second)
}

func TestPropertyNotFound(t *testing.T) {
	doc := FromMap(map[string]any{"properties": map[string]any{}})

	_, err := doc.Property("route")
	var notFound *PropertyNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "route", notFound.Key)
}

func TestEnergy(t *testing.T) {
	tests := []struct {
		name  string
		props map[string]any
		want  float64
	}{
		{"plain key", map[string]any{"rb3lyp_energy": -76.4}, -76.4},
		{"unrestricted fallback", map[string]any{"urb3lyp_energy": -76.5}, -76.5},
		{"restricted-open fallback", map[string]any{"rorb3lyp_energy": -76.6}, -76.6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := FromMap(map[string]any{"properties": tt.props})
			got, err := doc.Energy("rb3lyp")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("plain key preferred over variants", func(t *testing.T) {
		doc := FromMap(map[string]any{"properties": map[string]any{
			"rhf_energy":  -1.0,
			"urhf_energy": -2.0,
		}})
		got, err := doc.Energy("rhf")
		require.NoError(t, err)
		assert.Equal(t, -1.0, got)
	})

	t.Run("missing names the base key", func(t *testing.T) {
		doc := FromMap(map[string]any{"properties": map[string]any{}})
		_, err := doc.Energy("rhf")
		var notFound *PropertyNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "rhf_energy", notFound.Key)
	})
}

func TestDipole(t *testing.T) {
	doc := FromMap(map[string]any{"properties": map[string]any{
		"dipole_moment": []any{3.0, 0.0, 4.0},
	}})

	components, err := doc.DipoleMoment()
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 0, 4}, components)

	magnitude, err := doc.DipoleMagnitude()
	require.NoError(t, err)
	assert.InDelta(t, 5.0, magnitude, 1e-12)
}

func TestStoichiometry(t *testing.T) {
	t.Run("top level wins", func(t *testing.T) {
		doc := FromMap(map[string]any{
			"stoichiometry": "H2O",
			"properties":    map[string]any{"stoichiometry": "C6H6"},
		})
		got, err := doc.Stoichiometry()
		require.NoError(t, err)
		assert.Equal(t, "H2O", got)
	})

	t.Run("falls back to properties", func(t *testing.T) {
		doc := FromMap(map[string]any{
			"properties": map[string]any{"stoichiometry": "C6H6"},
		})
		got, err := doc.Stoichiometry()
		require.NoError(t, err)
		assert.Equal(t, "C6H6", got)
	})

	t.Run("missing", func(t *testing.T) {
		doc := FromMap(map[string]any{})
		_, err := doc.Stoichiometry()
		var notFound *PropertyNotFoundError
		require.ErrorAs(t, err, &notFound)
	})
}

func TestSymbols(t *testing.T) {
	doc := FromMap(map[string]any{"symbols": []any{"O", "H", "H"}})
	symbols, err := doc.Symbols()
	require.NoError(t, err)
	assert.Equal(t, []string{"O", "H", "H"}, symbols)

	doc = FromMap(map[string]any{"symbols": []any{"O", 1.0}})
	_, err = doc.Symbols()
	require.Error(t, err)
}

func TestPartialCharges(t *testing.T) {
	doc := FromMap(map[string]any{"properties": map[string]any{
		"partial_charges": map[string]any{
			"mulliken": []any{-0.8, 0.4, 0.4},
		},
	}})

	charges, err := doc.PartialCharges("mulliken")
	require.NoError(t, err)
	assert.Equal(t, []float64{-0.8, 0.4, 0.4}, charges)

	_, err = doc.PartialCharges("lowdin")
	var notFound *PropertyNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "partial_charges.lowdin", notFound.Key)
}

func TestVibrations(t *testing.T) {
	doc := FromMap(map[string]any{"properties": map[string]any{
		"vibrations": map[string]any{
			"frequencies": []any{1600.0, 3800.0},
			"intensities": map[string]any{"IR": []any{10.0, 80.0}},
			"displacement": []any{
				[]any{0.1, 0.0, 0.0},
				[]any{0.0, 0.2, 0.0},
			},
		},
	}})

	vib, err := doc.Vibrations()
	require.NoError(t, err)
	assert.Equal(t, []float64{1600, 3800}, vib.Frequencies)
	assert.Equal(t, []float64{10, 80}, vib.Intensities["IR"])
	require.Len(t, vib.Displacements, 2)
	assert.Equal(t, []float64{0, 0.2, 0}, vib.Displacements[1])

	t.Run("frequencies required", func(t *testing.T) {
		doc := FromMap(map[string]any{"properties": map[string]any{
			"vibrations": map[string]any{},
		}})
		_, err := doc.Vibrations()
		var notFound *PropertyNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "vibrations.frequencies", notFound.Key)
	})
}

func TestExcitedStates(t *testing.T) {
	doc := FromMap(map[string]any{"properties": map[string]any{
		"excited_states": map[string]any{
			"transition_energies": []any{4.5, 6.1},
			"intensities":         []any{0.3, 0.01},
			"units":               "eV",
		},
	}})

	states, err := doc.ExcitedStates()
	require.NoError(t, err)
	assert.Equal(t, []float64{4.5, 6.1}, states.TransitionEnergies)
	assert.Equal(t, []float64{0.3, 0.01}, states.Intensities)
	assert.Equal(t, "eV", states.Units)
}

func TestNMRShifts(t *testing.T) {
	doc := FromMap(map[string]any{"properties": map[string]any{
		"nmr_shifts": map[string]any{
			"isotropic":  []any{180.0, 29.5},
			"anisotropy": []any{10.0, 5.0},
		},
	}})

	shifts, err := doc.NMRShifts()
	require.NoError(t, err)
	assert.Equal(t, []float64{180, 29.5}, shifts.Isotropic)
	assert.Equal(t, []float64{10, 5}, shifts.Anisotropy)
}

func TestMarshalJSON(t *testing.T) {
	doc := FromMap(map[string]any{"properties": map[string]any{"a": 1.0}})

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"properties":{"a":1}}`, string(data))
}
