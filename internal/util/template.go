package util

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// funcMap is sprig's text function set extended with prompt specific helpers.
func funcMap() template.FuncMap {
	fm := sprig.TxtFuncMap()
	fm["tag"] = func(name, body string) string {
		return fmt.Sprintf("<%s>%s</%s>", name, body, name)
	}
	fm["numbered"] = func(items []string) string {
		var b strings.Builder
		for i, it := range items {
			fmt.Fprintf(&b, "%d. %s\n", i+1, it)
		}
		return strings.TrimRight(b.String(), "\n")
	}
	return fm
}

// CompileTemplate parses text with the shared function map. Missing keys are
// rendered as empty strings.
func CompileTemplate(name, text string) (*template.Template, error) {
	return template.New(name).Funcs(funcMap()).Option("missingkey=zero").Parse(text)
}

// RenderTemplate replaces template variables using Go's text/template package.
// This lives in internal to avoid committing to public API stability prematurely.
func RenderTemplate(text string, data any) (string, error) {
	if !strings.Contains(text, "{{") { // fast path: no template markers
		return text, nil
	}

	tmpl, err := CompileTemplate("prompt", text)
	if err != nil {
		return "", err
	}

	return Execute(tmpl, data)
}

// Execute runs a compiled template into a string.
func Execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
