package collect

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chemtools/webmo-go/webmo"
)

// ConsoleCollector collects template variables over a line-oriented
// console: checkboxes as y/n prompts, dropdowns as numbered menus, and
// everything else as free text with the template default.
type ConsoleCollector struct {
	template   webmo.Template
	queryVars  []string
	additional map[string]string

	in     *bufio.Reader
	out    io.Writer
	values map[string]string
}

// NewConsoleCollector builds a collector for the given template variables.
// additional holds extra variable values merged into the final mapping.
func NewConsoleCollector(tmpl webmo.Template, queryVars []string, additional map[string]string, in io.Reader, out io.Writer) *ConsoleCollector {
	return &ConsoleCollector{
		template:   tmpl,
		queryVars:  queryVars,
		additional: additional,
		in:         bufio.NewReader(in),
		out:        out,
	}
}

// Display runs the prompts, one per query variable, in order.
func (c *ConsoleCollector) Display() error {
	c.values = make(map[string]string, len(c.queryVars))

	for _, name := range c.queryVars {
		v, ok := c.template.Variables[name]
		if !ok {
			return fmt.Errorf("collect: template has no variable %q", name)
		}

		var err error
		switch v.Type {
		case "checkbox":
			err = c.promptCheckbox(name, v)
		case "dropdown":
			err = c.promptDropdown(name, v)
		default:
			err = c.promptText(name, v)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Variables returns the collected mapping. Collected values override
// additional ones on key collisions.
func (c *ConsoleCollector) Variables() (map[string]string, error) {
	if c.values == nil {
		return nil, fmt.Errorf("collect: Display must run before Variables")
	}
	merged := make(map[string]string, len(c.additional)+len(c.values))
	for k, v := range c.additional {
		merged[k] = v
	}
	for k, v := range c.values {
		merged[k] = v
	}
	return merged, nil
}

func (c *ConsoleCollector) promptCheckbox(name string, v webmo.TemplateVariable) error {
	def := "n"
	if v.Default == "on" {
		def = "y"
	}
	line, err := c.ask("%s [y/n] (default %s): ", name, def)
	if err != nil {
		return err
	}
	if line == "" {
		line = def
	}
	if strings.HasPrefix(strings.ToLower(line), "y") {
		c.values[name] = "on"
	} else {
		c.values[name] = ""
	}
	return nil
}

func (c *ConsoleCollector) promptDropdown(name string, v webmo.TemplateVariable) error {
	if len(v.Options) == 0 {
		return fmt.Errorf("collect: dropdown %s has no options", name)
	}
	fmt.Fprintf(c.out, "%s:\n", name)
	defIndex := 1
	for i, opt := range v.Options {
		if opt == v.Default {
			defIndex = i + 1
		}
		fmt.Fprintf(c.out, "  %d) %s\n", i+1, opt)
	}

	line, err := c.ask("selection (default %d): ", defIndex)
	if err != nil {
		return err
	}
	if line == "" {
		c.values[name] = v.Options[defIndex-1]
		return nil
	}
	choice, err := strconv.Atoi(line)
	if err != nil || choice < 1 || choice > len(v.Options) {
		return fmt.Errorf("collect: invalid selection %q for %s", line, name)
	}
	c.values[name] = v.Options[choice-1]
	return nil
}

func (c *ConsoleCollector) promptText(name string, v webmo.TemplateVariable) error {
	line, err := c.ask("%s (default %q): ", name, v.Default)
	if err != nil {
		return err
	}
	if line == "" {
		line = v.Default
	}
	c.values[name] = line
	return nil
}

func (c *ConsoleCollector) ask(format string, args ...any) (string, error) {
	fmt.Fprintf(c.out, format, args...)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("collect: reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
