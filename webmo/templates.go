package webmo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// TemplateVariable describes one input variable of a job template.
type TemplateVariable struct {
	Type    string   `json:"type"` // checkbox, dropdown or text
	Default string   `json:"default"`
	Options []string `json:"options,omitempty"`
}

// Template is one job template, as returned by Templates.
type Template struct {
	ID        string                      `json:"id"`
	Variables map[string]TemplateVariable `json:"variables"`
}

// Templates fetches the job templates available for the given engine,
// keyed by template name.
func (c *Client) Templates(ctx context.Context, engine string) (map[string]Template, error) {
	var out struct {
		Templates map[string]Template `json:"templates"`
	}
	if err := c.getJSON(ctx, "/templates/"+url.PathEscape(engine), nil, &out); err != nil {
		return nil, err
	}
	return out.Templates, nil
}

// GenerateInput renders a text input file from the template and the given
// variables. With autoDefaults, omitted template variables are filled with
// their template defaults before the request.
func (c *Client) GenerateInput(ctx context.Context, tmpl Template, variables map[string]string, autoDefaults bool) (string, error) {
	if tmpl.ID == "" {
		return "", fmt.Errorf("webmo: template has no id; obtain it from Templates")
	}

	amended := make(map[string]string, len(variables)+len(tmpl.Variables))
	for k, v := range variables {
		amended[k] = v
	}
	if autoDefaults {
		for name, v := range tmpl.Variables {
			if _, ok := amended[name]; !ok {
				amended[name] = v.Default
			}
		}
	}

	encoded, err := json.Marshal(amended)
	if err != nil {
		return "", fmt.Errorf("encoding template variables: %w", err)
	}

	query := url.Values{}
	query.Set("variables", string(encoded))
	return c.getText(ctx, "/templates/"+url.PathEscape(tmpl.ID), query)
}
