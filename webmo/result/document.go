// Package result provides read-only projections over the parsed results
// document of a WebMO job.
package result

import (
	"encoding/json"
	"fmt"
	"math"
)

// PropertyNotFoundError is returned when a requested key is absent from
// the results document.
type PropertyNotFoundError struct {
	Key string
}

func (e *PropertyNotFoundError) Error() string {
	return fmt.Sprintf("result: property %q not found in results document", e.Key)
}

// Document is one job's results document. It is immutable after Parse.
type Document struct {
	raw map[string]any
}

// Parse decodes a single results document.
func Parse(data []byte) (*Document, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("result: decoding results document: %w", err)
	}
	return &Document{raw: raw}, nil
}

// ParseList decodes a JSON array of results documents, as returned by the
// batch results resource.
func ParseList(data []byte) ([]*Document, error) {
	var raws []map[string]any
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("result: decoding results documents: %w", err)
	}
	docs := make([]*Document, len(raws))
	for i, raw := range raws {
		docs[i] = &Document{raw: raw}
	}
	return docs, nil
}

// FromMap wraps an already-decoded results document.
func FromMap(raw map[string]any) *Document {
	return &Document{raw: raw}
}

// MarshalJSON re-encodes the underlying document.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.raw)
}

// lookup walks a path of nested map keys.
func (d *Document) lookup(path ...string) (any, bool) {
	var cur any = d.raw
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Property returns the named entry of the document's properties section.
func (d *Document) Property(name string) (any, error) {
	v, ok := d.lookup("properties", name)
	if !ok {
		return nil, &PropertyNotFoundError{Key: name}
	}
	return v, nil
}

// Float returns the named property as a scalar.
func (d *Document) Float(name string) (float64, error) {
	v, err := d.Property(name)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("result: property %q is not a scalar", name)
	}
	return f, nil
}

// Floats returns the named property as a numeric vector.
func (d *Document) Floats(name string) ([]float64, error) {
	v, err := d.Property(name)
	if err != nil {
		return nil, err
	}
	return toFloats(v, name)
}

// Energy returns the calculated energy for the given method. The document
// key is method-specific; when the plain key is absent the spin-variant
// prefixed alternatives are tried in order: <method>_energy, u<method>_energy,
// ro<method>_energy. If none is present the error names the base key.
func (d *Document) Energy(method string) (float64, error) {
	base := method + "_energy"
	for _, key := range []string{base, "u" + base, "ro" + base} {
		if v, ok := d.lookup("properties", key); ok {
			f, ok := v.(float64)
			if !ok {
				return 0, fmt.Errorf("result: property %q is not a scalar", key)
			}
			return f, nil
		}
	}
	return 0, &PropertyNotFoundError{Key: base}
}

// DipoleMoment returns the dipole moment vector components.
func (d *Document) DipoleMoment() ([]float64, error) {
	return d.Floats("dipole_moment")
}

// DipoleMagnitude returns the norm of the dipole moment vector.
func (d *Document) DipoleMagnitude() (float64, error) {
	components, err := d.DipoleMoment()
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, c := range components {
		sum += c * c
	}
	return math.Sqrt(sum), nil
}

// Stoichiometry returns the molecular formula of the calculated system.
func (d *Document) Stoichiometry() (string, error) {
	if v, ok := d.lookup("stoichiometry"); ok {
		if s, ok := v.(string); ok {
			return s, nil
		}
	}
	if v, ok := d.lookup("properties", "stoichiometry"); ok {
		if s, ok := v.(string); ok {
			return s, nil
		}
	}
	return "", &PropertyNotFoundError{Key: "stoichiometry"}
}

// Symbols returns the element symbols of the system's atoms.
func (d *Document) Symbols() ([]string, error) {
	v, ok := d.lookup("symbols")
	if !ok {
		return nil, &PropertyNotFoundError{Key: "symbols"}
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("result: symbols entry is not a list")
	}
	symbols := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("result: symbols entry is not a list of strings")
		}
		symbols[i] = s
	}
	return symbols, nil
}

// PartialCharges returns the per-atom partial charges for the given
// population scheme (e.g. mulliken).
func (d *Document) PartialCharges(scheme string) ([]float64, error) {
	v, ok := d.lookup("properties", "partial_charges", scheme)
	if !ok {
		return nil, &PropertyNotFoundError{Key: "partial_charges." + scheme}
	}
	return toFloats(v, "partial_charges."+scheme)
}

// Vibrations holds the vibrational analysis of a job.
type Vibrations struct {
	Frequencies   []float64
	Intensities   map[string][]float64 // keyed IR, raman or VCD
	Displacements [][]float64          // one flattened x,y,z triple list per mode
}

// Vibrations returns the vibrational frequencies, intensities and normal
// mode displacements.
func (d *Document) Vibrations() (*Vibrations, error) {
	freqRaw, ok := d.lookup("properties", "vibrations", "frequencies")
	if !ok {
		return nil, &PropertyNotFoundError{Key: "vibrations.frequencies"}
	}
	frequencies, err := toFloats(freqRaw, "vibrations.frequencies")
	if err != nil {
		return nil, err
	}

	vib := &Vibrations{
		Frequencies: frequencies,
		Intensities: make(map[string][]float64),
	}

	if raw, ok := d.lookup("properties", "vibrations", "intensities"); ok {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("result: vibrations.intensities is not a map")
		}
		for kind, v := range m {
			vals, err := toFloats(v, "vibrations.intensities."+kind)
			if err != nil {
				return nil, err
			}
			vib.Intensities[kind] = vals
		}
	}

	if raw, ok := d.lookup("properties", "vibrations", "displacement"); ok {
		modes, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("result: vibrations.displacement is not a list")
		}
		vib.Displacements = make([][]float64, len(modes))
		for i, mode := range modes {
			vals, err := toFloats(mode, "vibrations.displacement")
			if err != nil {
				return nil, err
			}
			vib.Displacements[i] = vals
		}
	}

	return vib, nil
}

// ExcitedStates holds the electronic excitation spectrum of a job.
type ExcitedStates struct {
	TransitionEnergies []float64
	Intensities        []float64
	Units              string
}

// ExcitedStates returns the computed electronic transitions.
func (d *Document) ExcitedStates() (*ExcitedStates, error) {
	raw, ok := d.lookup("properties", "excited_states")
	if !ok {
		return nil, &PropertyNotFoundError{Key: "excited_states"}
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("result: excited_states is not a map")
	}

	energies, err := toFloats(m["transition_energies"], "excited_states.transition_energies")
	if err != nil {
		return nil, err
	}
	intensities, err := toFloats(m["intensities"], "excited_states.intensities")
	if err != nil {
		return nil, err
	}
	units, _ := m["units"].(string)

	return &ExcitedStates{
		TransitionEnergies: energies,
		Intensities:        intensities,
		Units:              units,
	}, nil
}

// NMRShifts holds the isotropic shieldings and anisotropies of a job.
type NMRShifts struct {
	Isotropic  []float64
	Anisotropy []float64
}

// NMRShifts returns the computed NMR shielding tensors' isotropic and
// anisotropic parts.
func (d *Document) NMRShifts() (*NMRShifts, error) {
	raw, ok := d.lookup("properties", "nmr_shifts")
	if !ok {
		return nil, &PropertyNotFoundError{Key: "nmr_shifts"}
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("result: nmr_shifts is not a map")
	}
	isotropic, err := toFloats(m["isotropic"], "nmr_shifts.isotropic")
	if err != nil {
		return nil, err
	}
	anisotropy, err := toFloats(m["anisotropy"], "nmr_shifts.anisotropy")
	if err != nil {
		return nil, err
	}
	return &NMRShifts{Isotropic: isotropic, Anisotropy: anisotropy}, nil
}

func toFloats(v any, key string) ([]float64, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("result: property %q is not a numeric vector", key)
	}
	out := make([]float64, len(items))
	for i, item := range items {
		f, ok := item.(float64)
		if !ok {
			return nil, fmt.Errorf("result: property %q is not a numeric vector", key)
		}
		out[i] = f
	}
	return out, nil
}
