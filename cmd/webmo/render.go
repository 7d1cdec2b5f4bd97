package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chemtools/webmo-go/webmo/render"
)

func newRenderCmd(opts *rootOptions) *cobra.Command {
	var (
		htmlOut     string
		imageOut    string
		index       int
		width       int
		height      int
		background  []int
		transparent bool
		rotate      []float64
		xRange      []float64
		yRange      []float64
		peakWidth   float64
		tmsShift    float64
		coupling    float64
		nmrField    float64
	)

	cmd := &cobra.Command{
		Use:   "render JOB PROPERTY",
		Short: "Render a job property to a PNG image",
		Long: `Render writes a display page to --html-out, dispatches the rendering
control code into it, and waits for the page to post the captured image
back to a local callback port. Open the page in a browser while the
command is waiting; it saves the posted image to --out.

Properties: geometry, dipole_moment, partial_charges, vibrational_mode,
mo, nao, nho, nbo, esp, nucleophilic, electrophilic, radical,
ir_spectrum, raman_spectrum, vcd_spectrum, uvvis_spectrum,
hnmr_spectrum, cnmr_spectrum.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			numbers, err := parseJobNumbers(args[:1])
			if err != nil {
				return err
			}

			renderOpts := &render.Options{
				PropertyIndex:  index,
				Width:          width,
				Height:         height,
				Transparent:    transparent,
				PeakWidth:      peakWidth,
				TMSShift:       tmsShift,
				ProtonCoupling: coupling,
				NMRField:       nmrField,
			}
			if len(background) > 0 {
				if len(background) != 3 {
					return fmt.Errorf("--background needs three components (r,g,b)")
				}
				renderOpts.Background = &[3]int{background[0], background[1], background[2]}
			}
			if len(rotate) > 0 {
				if len(rotate) != 3 {
					return fmt.Errorf("--rotate needs three angles (x,y,z)")
				}
				copy(renderOpts.Rotate[:], rotate)
			}
			if renderOpts.XRange, err = parseRange(xRange, "--x-range"); err != nil {
				return err
			}
			if renderOpts.YRange, err = parseRange(yRange, "--y-range"); err != nil {
				return err
			}

			page, err := os.Create(htmlOut)
			if err != nil {
				return fmt.Errorf("creating display page: %w", err)
			}
			defer page.Close()

			client, ctx, cancel, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cancel()

			fmt.Fprintf(cmd.ErrOrStderr(), "open %s in a browser to complete the render\n", htmlOut)

			surface := &render.WriterSurface{W: page}
			image, err := client.DisplayJobProperty(ctx, surface, numbers[0], args[1], renderOpts)
			if err != nil {
				return err
			}

			written, err := image.Save(imageOut)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", written)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&htmlOut, "html-out", "webmo-render.html", "display page to write")
	f.StringVarP(&imageOut, "out", "o", "webmo-render", "image file to write (.png appended)")
	f.IntVar(&index, "index", 1, "1-based property instance (orbital or mode number)")
	f.IntVar(&width, "width", 400, "image width in pixels")
	f.IntVar(&height, "height", 400, "image height in pixels")
	f.IntSliceVar(&background, "background", nil, "background color as r,g,b in [0,255] (default white)")
	f.BoolVar(&transparent, "transparent", false, "transparent background")
	f.Float64SliceVar(&rotate, "rotate", nil, "view rotation in degrees about x,y,z")
	f.Float64SliceVar(&xRange, "x-range", nil, "spectrum x axis range as min,max")
	f.Float64SliceVar(&yRange, "y-range", nil, "spectrum y axis range as min,max")
	f.Float64Var(&peakWidth, "peak-width", 0, "spectrum peak width (0 selects the default)")
	f.Float64Var(&tmsShift, "tms-shift", 0, "H1 NMR reference shift in ppm")
	f.Float64Var(&coupling, "proton-coupling", 0, "H1 NMR proton-proton coupling in Hz")
	f.Float64Var(&nmrField, "nmr-field", 400, "NMR spectrometer field in MHz")
	return cmd
}

func parseRange(values []float64, flag string) (*[2]float64, error) {
	if len(values) == 0 {
		return nil, nil
	}
	if len(values) != 2 {
		return nil, fmt.Errorf("%s needs two values (min,max)", flag)
	}
	return &[2]float64{values[0], values[1]}, nil
}
