package notify

import (
	"strings"
	"text/template"
)

// TextRenderer renders Go text/template bodies. Referencing a field the
// data context does not have is an error.
type TextRenderer struct{}

func (TextRenderer) Render(name, body string, data any) (string, error) {
	tpl, err := template.New(name).Option("missingkey=error").Parse(body)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if err := tpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
