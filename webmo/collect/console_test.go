package collect

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemtools/webmo-go/webmo"
)

func testTemplate() webmo.Template {
	return webmo.Template{
		ID: "t-opt",
		Variables: map[string]webmo.TemplateVariable{
			"SOLVENT":   {Type: "checkbox", Default: ""},
			"BASIS_SET": {Type: "dropdown", Default: "6-31G(d)", Options: []string{"STO-3G", "6-31G(d)", "cc-pVDZ"}},
			"CHARGE":    {Type: "text", Default: "0"},
		},
	}
}

func collect(t *testing.T, queryVars []string, additional map[string]string, input string) (map[string]string, string) {
	t.Helper()
	var out bytes.Buffer
	c := NewConsoleCollector(testTemplate(), queryVars, additional, strings.NewReader(input), &out)
	require.NoError(t, c.Display())
	values, err := c.Variables()
	require.NoError(t, err)
	return values, out.String()
}

func TestConsoleCollectorCheckbox(t *testing.T) {
	t.Run("yes maps to on", func(t *testing.T) {
		values, prompt := collect(t, []string{"SOLVENT"}, nil, "y\n")
		assert.Equal(t, "on", values["SOLVENT"])
		assert.Contains(t, prompt, "SOLVENT [y/n] (default n):")
	})

	t.Run("no maps to empty", func(t *testing.T) {
		values, _ := collect(t, []string{"SOLVENT"}, nil, "n\n")
		assert.Equal(t, "", values["SOLVENT"])
	})

	t.Run("empty input takes the default", func(t *testing.T) {
		values, _ := collect(t, []string{"SOLVENT"}, nil, "\n")
		assert.Equal(t, "", values["SOLVENT"])
	})
}

func TestConsoleCollectorDropdown(t *testing.T) {
	t.Run("numbered selection", func(t *testing.T) {
		values, prompt := collect(t, []string{"BASIS_SET"}, nil, "3\n")
		assert.Equal(t, "cc-pVDZ", values["BASIS_SET"])
		assert.Contains(t, prompt, "1) STO-3G")
		assert.Contains(t, prompt, "2) 6-31G(d)")
		assert.Contains(t, prompt, "selection (default 2):")
	})

	t.Run("empty input takes the template default", func(t *testing.T) {
		values, _ := collect(t, []string{"BASIS_SET"}, nil, "\n")
		assert.Equal(t, "6-31G(d)", values["BASIS_SET"])
	})

	t.Run("dropdown without options", func(t *testing.T) {
		tmpl := testTemplate()
		tmpl.Variables["EMPTY"] = webmo.TemplateVariable{Type: "dropdown", Default: "x"}
		c := NewConsoleCollector(tmpl, []string{"EMPTY"}, nil, strings.NewReader("\n"), &bytes.Buffer{})
		err := c.Display()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "has no options")
	})

	t.Run("invalid selection", func(t *testing.T) {
		for _, input := range []string{"0\n", "4\n", "abc\n"} {
			var out bytes.Buffer
			c := NewConsoleCollector(testTemplate(), []string{"BASIS_SET"}, nil, strings.NewReader(input), &out)
			err := c.Display()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid selection")
		}
	})
}

func TestConsoleCollectorText(t *testing.T) {
	values, prompt := collect(t, []string{"CHARGE"}, nil, "-1\n")
	assert.Equal(t, "-1", values["CHARGE"])
	assert.Contains(t, prompt, `CHARGE (default "0"):`)

	values, _ = collect(t, []string{"CHARGE"}, nil, "\n")
	assert.Equal(t, "0", values["CHARGE"])
}

func TestConsoleCollectorUnknownVariable(t *testing.T) {
	c := NewConsoleCollector(testTemplate(), []string{"NOPE"}, nil, strings.NewReader(""), &bytes.Buffer{})
	err := c.Display()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no variable "NOPE"`)
}

func TestConsoleCollectorVariablesMerge(t *testing.T) {
	additional := map[string]string{"CHARGE": "2", "MULTIPLICITY": "1"}

	values, _ := collect(t, []string{"CHARGE"}, additional, "-1\n")

	// collected values win over additional ones; extras pass through
	assert.Equal(t, "-1", values["CHARGE"])
	assert.Equal(t, "1", values["MULTIPLICITY"])
}

func TestConsoleCollectorVariablesBeforeDisplay(t *testing.T) {
	c := NewConsoleCollector(testTemplate(), nil, nil, strings.NewReader(""), &bytes.Buffer{})
	_, err := c.Variables()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Display must run")
}
