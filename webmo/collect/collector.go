// Package collect provides menu-driven collectors that turn job template
// variables into the variables mapping consumed by input generation. One
// collector variant exists per presentation medium.
package collect

// Collector gathers values for a subset of a job template's variables.
type Collector interface {
	// Display presents the menu for the collector's medium.
	Display() error

	// Variables returns the collected values, merged over any additional
	// caller-supplied variables.
	Variables() (map[string]string, error)
}
