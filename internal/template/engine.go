// Package template renders descriptor values against the resolved
// configuration snapshot. Descriptor env entries may be literal strings or
// Go templates such as "{{ .POSTGRES_HOST }}"; templates are expanded with
// the sprig function map available, so entries like
// "{{ .POSTGRES_PORT | default \"5432\" }}" also work.
package template

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// IsTemplate reports whether value contains template syntax.
func IsTemplate(value string) bool {
	return strings.Contains(value, "{{")
}

// Render expands a single value against data. Referencing a key that is not
// present in data is an error, so typos in descriptor templates surface at
// load time instead of producing empty env values.
func Render(value string, data map[string]string) (string, error) {
	if !IsTemplate(value) {
		return value, nil
	}

	tmpl, err := template.New("value").
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(value)
	if err != nil {
		return "", fmt.Errorf("parse template %q: %w", value, err)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render template %q: %w", value, err)
	}
	return sb.String(), nil
}

// RenderAll expands every value of env against data and returns a new map.
// The input map is never mutated.
func RenderAll(env map[string]string, data map[string]string) (map[string]string, error) {
	rendered := make(map[string]string, len(env))
	for key, value := range env {
		out, err := Render(value, data)
		if err != nil {
			return nil, fmt.Errorf("env %s: %w", key, err)
		}
		rendered[key] = out
	}
	return rendered, nil
}
