package webmo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/templates/gaussian", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"templates":{
			"Geometry Optimization":{"id":"t-opt","variables":{
				"BASIS_SET":{"type":"dropdown","default":"6-31G(d)","options":["STO-3G","6-31G(d)"]},
				"SOLVENT":{"type":"checkbox","default":""}
			}},
			"Single Point":{"id":"t-sp","variables":{}}
		}}`)
	})
	client := newTestClient(t, mux)

	templates, err := client.Templates(context.Background(), "gaussian")
	require.NoError(t, err)
	require.Len(t, templates, 2)

	opt := templates["Geometry Optimization"]
	assert.Equal(t, "t-opt", opt.ID)
	assert.Equal(t, TemplateVariable{
		Type:    "dropdown",
		Default: "6-31G(d)",
		Options: []string{"STO-3G", "6-31G(d)"},
	}, opt.Variables["BASIS_SET"])
}

func TestGenerateInput(t *testing.T) {
	tmpl := Template{
		ID: "t-opt",
		Variables: map[string]TemplateVariable{
			"BASIS_SET": {Type: "dropdown", Default: "6-31G(d)"},
			"CHARGE":    {Type: "text", Default: "0"},
		},
	}

	t.Run("fills defaults for omitted variables", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/templates/t-opt", func(w http.ResponseWriter, r *http.Request) {
			var got map[string]string
			require.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("variables")), &got))
			assert.Equal(t, map[string]string{
				"BASIS_SET": "STO-3G", // explicit value wins over the default
				"CHARGE":    "0",
			}, got)
			fmt.Fprint(w, "#N HF/STO-3G OPT")
		})
		client := newTestClient(t, mux)

		input, err := client.GenerateInput(context.Background(), tmpl, map[string]string{"BASIS_SET": "STO-3G"}, true)
		require.NoError(t, err)
		assert.Equal(t, "#N HF/STO-3G OPT", input)
	})

	t.Run("without auto defaults only given variables travel", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/templates/t-opt", func(w http.ResponseWriter, r *http.Request) {
			var got map[string]string
			require.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("variables")), &got))
			assert.Equal(t, map[string]string{"CHARGE": "1"}, got)
			fmt.Fprint(w, "input")
		})
		client := newTestClient(t, mux)

		_, err := client.GenerateInput(context.Background(), tmpl, map[string]string{"CHARGE": "1"}, false)
		require.NoError(t, err)
	})

	t.Run("template without id is rejected", func(t *testing.T) {
		client := newTestClient(t, http.NewServeMux())

		_, err := client.GenerateInput(context.Background(), Template{}, nil, true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no id")
	})
}
