package render

import (
	"fmt"
	"strings"

	"github.com/chemtools/webmo-go/webmo/result"
)

// Options carries the display options of one render request. The zero
// value renders a 400x400 image on a white opaque background in the
// default orientation.
type Options struct {
	// PropertyIndex is the 1-based index of the property instance to
	// display, e.g. which vibrational mode or orbital. Defaults to 1.
	// Surface kinds ignore it (the renderer requires index 0).
	PropertyIndex int

	Width  int // pixels, defaults to 400
	Height int // pixels, defaults to 400

	Background  *[3]int // r,g,b in [0,255], defaults to white
	Transparent bool
	Rotate      [3]float64 // degrees about x,y,z from the default view

	// Spectrum options.
	XRange         *[2]float64
	YRange         *[2]float64
	PeakWidth      float64 // 0 selects the spectrum-type default
	TMSShift       float64 // ppm, H1 NMR reference shift
	ProtonCoupling float64 // Hz, H1 NMR proton-proton coupling
	NMRField       float64 // MHz, defaults to 400
}

func (o *Options) normalized() Options {
	opts := Options{PropertyIndex: 1, Width: 400, Height: 400, NMRField: 400}
	if o != nil {
		opts = *o
		if opts.PropertyIndex == 0 {
			opts.PropertyIndex = 1
		}
		if opts.Width <= 0 {
			opts.Width = 400
		}
		if opts.Height <= 0 {
			opts.Height = 400
		}
		if opts.NMRField <= 0 {
			opts.NMRField = 400
		}
	}
	if opts.Background == nil {
		opts.Background = &[3]int{255, 255, 255}
	}
	return opts
}

// renderRequest is the per-call state a property composer works against.
// It is ephemeral: built per render call, never persisted.
type renderRequest struct {
	b     *scriptBuilder
	doc   *result.Document
	opts  Options
	job   int
	index int
	port  int
}

// propertySpec is one row of the displayable-property table: how to build
// the compact parameter string from the results document and which control
// code it fills. The table is the single source of truth for what can be
// rendered; adding a property means adding a row.
type propertySpec struct {
	// wavefunction kinds render through the moledit orbital pipeline,
	// which triggers the screenshot from its own completion callback.
	wavefunction bool
	// surface kinds additionally force property index 0.
	surface bool
	// spectrum kinds render through the datagrapher.
	spectrum bool

	compose func(req *renderRequest) error
}

var properties = map[string]propertySpec{
	"geometry": {
		compose: func(req *renderRequest) error { return nil },
	},
	"dipole_moment": {
		compose: composeDipoleMoment,
	},
	"partial_charges": {
		compose: composePartialCharges,
	},
	"vibrational_mode": {
		compose: composeVibrationalMode,
	},

	"mo":  {wavefunction: true, compose: composeWavefunction("mo")},
	"nao": {wavefunction: true, compose: composeWavefunction("nao")},
	"nho": {wavefunction: true, compose: composeWavefunction("nho")},
	"nbo": {wavefunction: true, compose: composeWavefunction("nbo")},

	"esp":           {wavefunction: true, surface: true, compose: composeWavefunction("esp")},
	"nucleophilic":  {wavefunction: true, surface: true, compose: composeWavefunction("nucleophilic")},
	"electrophilic": {wavefunction: true, surface: true, compose: composeWavefunction("electrophilic")},
	"radical":       {wavefunction: true, surface: true, compose: composeWavefunction("radical")},

	"ir_spectrum":    {spectrum: true, compose: composeVibrationalSpectrum("ir_spectrum", "IR")},
	"raman_spectrum": {spectrum: true, compose: composeVibrationalSpectrum("raman_spectrum", "raman")},
	"vcd_spectrum":   {spectrum: true, compose: composeVibrationalSpectrum("vcd_spectrum", "VCD")},
	"uvvis_spectrum": {spectrum: true, compose: composeUVVisSpectrum},
	"hnmr_spectrum":  {spectrum: true, compose: composeNMRSpectrum("H")},
	"cnmr_spectrum":  {spectrum: true, compose: composeNMRSpectrum("C")},
}

func composeDipoleMoment(req *renderRequest) error {
	components, err := req.doc.DipoleMoment()
	if err != nil {
		return err
	}
	if len(components) != 3 {
		return fmt.Errorf("render: dipole moment has %d components, expected 3", len(components))
	}
	total, err := req.doc.DipoleMagnitude()
	if err != nil {
		return err
	}
	value := fmt.Sprintf("%f:%f:%f:%f", components[0], components[1], components[2], total)
	req.b.setMoleditDipoleMoment(value)
	return nil
}

func composePartialCharges(req *renderRequest) error {
	charges, err := req.doc.PartialCharges("mulliken")
	if err != nil {
		return err
	}
	parts := make([]string, len(charges))
	for i, q := range charges {
		parts[i] = fmt.Sprintf("%d,X,%f", i+1, q)
	}
	req.b.setMoleditPartialCharge(strings.Join(parts, ":"))
	return nil
}

func composeVibrationalMode(req *renderRequest) error {
	vib, err := req.doc.Vibrations()
	if err != nil {
		return err
	}
	if req.index > len(vib.Frequencies) || req.index > len(vib.Displacements) {
		return fmt.Errorf("render: vibrational mode %d out of range (%d modes)", req.index, len(vib.Frequencies))
	}
	frequency := vib.Frequencies[req.index-1]
	displacements := vib.Displacements[req.index-1]

	parts := make([]string, 0, len(displacements)/3)
	for i := 0; i < len(displacements)/3; i++ {
		parts = append(parts, fmt.Sprintf("%d,%f,%f,%f", i+1, displacements[i*3], displacements[i*3+1], displacements[i*3+2]))
	}
	req.b.setMoleditVibrationalMode(strings.Join(parts, ":"), req.index, frequency, 1.0)
	return nil
}

func composeWavefunction(kind string) func(*renderRequest) error {
	return func(req *renderRequest) error {
		req.b.rotateMoleditView(req.opts.Rotate[0], req.opts.Rotate[1], req.opts.Rotate[2])
		req.b.setMoleditWavefunction(req.job, kind, req.index, req.port, req.opts.Transparent)
		return nil
	}
}

func composeVibrationalSpectrum(kind, intensityKey string) func(*renderRequest) error {
	return func(req *renderRequest) error {
		vib, err := req.doc.Vibrations()
		if err != nil {
			return err
		}
		intensities, ok := vib.Intensities[intensityKey]
		if !ok {
			return &result.PropertyNotFoundError{Key: "vibrations.intensities." + intensityKey}
		}
		parts := make([]string, len(vib.Frequencies))
		for i, f := range vib.Frequencies {
			parts[i] = fmt.Sprintf("%d,-,%f,%f", i+1, f, intensities[i])
		}
		peakWidth := req.opts.PeakWidth
		if peakWidth <= 0 {
			peakWidth = 40.0
		}
		req.b.setDatagrapherSpectrum(kind, strings.Join(parts, ":"), peakWidth)
		return nil
	}
}

func composeUVVisSpectrum(req *renderRequest) error {
	states, err := req.doc.ExcitedStates()
	if err != nil {
		return err
	}
	parts := make([]string, len(states.TransitionEnergies))
	for i, e := range states.TransitionEnergies {
		parts[i] = fmt.Sprintf("%d,-,%f,%f", i+1, e, states.Intensities[i])
	}
	peakWidth := req.opts.PeakWidth
	if peakWidth <= 0 {
		peakWidth = 20.0
	}
	req.b.setDatagrapherUVVisSpectrum(strings.Join(parts, ":"), states.Units, peakWidth)
	return nil
}

func composeNMRSpectrum(atomType string) func(*renderRequest) error {
	return func(req *renderRequest) error {
		symbols, err := req.doc.Symbols()
		if err != nil {
			return err
		}
		shifts, err := req.doc.NMRShifts()
		if err != nil {
			return err
		}

		parts := make([]string, len(shifts.Isotropic))
		for i, iso := range shifts.Isotropic {
			if req.opts.TMSShift > 0 && symbols[i] == "H" {
				iso = req.opts.TMSShift - iso
			}
			parts[i] = fmt.Sprintf("%d,%s,%f,%f", i+1, symbols[i], iso, shifts.Anisotropy[i])
		}
		value := strings.Join(parts, ":")

		peakWidth := req.opts.PeakWidth
		if peakWidth <= 0 {
			peakWidth = 0.001
		}
		relative := 0
		if req.opts.TMSShift > 0 && atomType == "H" {
			relative = 1
		}

		if atomType == "H" && req.opts.ProtonCoupling > 0 {
			req.b.setDatagrapherH1NMRSpectrum(value, peakWidth, req.opts.ProtonCoupling, req.opts.NMRField, relative)
		} else {
			req.b.setDatagrapherNMRSpectrum(value, atomType, peakWidth, relative)
		}
		return nil
	}
}
