package mailer

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Each template's first line is the subject; the remainder is the body.
var templateSources = map[string]string{
	"verification_code": `Your verification code
Hello{{ if .FullName }} {{ .FullName }}{{ end }},

Your verification code is {{ .Code }}. It expires in {{ .ExpiresIn }}.

If you did not request this code, you can ignore this message.`,

	"welcome": `Welcome to {{ .AppName | default "Farm Management" }}
Hello {{ .FullName }},

Your account is ready. Your farm "{{ .FarmName }}" has been set up and
is waiting for its first records.

Happy farming!`,

	"password_reset": `Password reset requested
Hello{{ if .FullName }} {{ .FullName }}{{ end }},

A password reset was requested for your account. Use the token below
within {{ .ExpiresIn }} to choose a new password:

{{ .Token }}

If you did not request a reset, no action is needed; your password is
unchanged.`,
}

// Templates renders notification messages.
type Templates struct {
	parsed map[string]*template.Template
}

// NewTemplates parses the built-in template set with the sprig funcmap.
func NewTemplates() (*Templates, error) {
	parsed := make(map[string]*template.Template, len(templateSources))
	for kind, src := range templateSources {
		tmpl, err := template.New(kind).Funcs(sprig.FuncMap()).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parse mail template %q: %w", kind, err)
		}
		parsed[kind] = tmpl
	}
	return &Templates{parsed: parsed}, nil
}

// Render produces the subject and body for a template kind.
func (t *Templates) Render(kind string, data map[string]any) (subject, body string, err error) {
	tmpl, ok := t.parsed[kind]
	if !ok {
		return "", "", fmt.Errorf("unknown mail template %q", kind)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render mail template %q: %w", kind, err)
	}

	rendered := buf.String()
	subject, body, found := strings.Cut(rendered, "\n")
	if !found {
		return "", "", fmt.Errorf("mail template %q has no body", kind)
	}

	return strings.TrimSpace(subject), strings.TrimLeft(body, "\n"), nil
}
