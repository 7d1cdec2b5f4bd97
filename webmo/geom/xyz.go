package geom

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseXYZ parses a bare XYZ-formatted geometry: one atom per line, symbol
// followed by three coordinates, whitespace separated. Leading count and
// comment lines of full XYZ files are tolerated and skipped.
func ParseXYZ(s string) ([]Atom, error) {
	var atoms []Atom
	for i, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 1 {
			// atom-count header line of a full XYZ file
			if _, err := strconv.Atoi(fields[0]); err == nil {
				continue
			}
		}
		if len(fields) < 4 {
			if atoms == nil {
				// comment line following the count header
				continue
			}
			return nil, fmt.Errorf("geom: line %d: expected symbol and 3 coordinates, got %q", i+1, line)
		}

		x, errX := strconv.ParseFloat(fields[1], 64)
		y, errY := strconv.ParseFloat(fields[2], 64)
		z, errZ := strconv.ParseFloat(fields[3], 64)
		if errX != nil || errY != nil || errZ != nil {
			return nil, fmt.Errorf("geom: line %d: malformed coordinates in %q", i+1, line)
		}
		atoms = append(atoms, Atom{Symbol: fields[0], X: x, Y: y, Z: z})
	}
	if len(atoms) == 0 {
		return nil, fmt.Errorf("geom: no atoms found in geometry")
	}
	return atoms, nil
}

// FormatXYZ renders atoms as bare XYZ lines, one atom per line.
func FormatXYZ(atoms []Atom) string {
	var sb strings.Builder
	for _, a := range atoms {
		fmt.Fprintf(&sb, "%s\t%f\t%f\t%f\n", a.Symbol, a.X, a.Y, a.Z)
	}
	return sb.String()
}
