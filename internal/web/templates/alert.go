// Package templates holds the HTML fragments swapped in by HTMX requests.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// ErrorAlert renders a dismissible error box with an optional suggested
// action and the support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div class="alert alert-error" role="alert"><p class="alert-message">`+
			templ.EscapeString(message)+`</p>`); err != nil {
			return err
		}
		if action != "" {
			if _, err := io.WriteString(w, `<p class="alert-action">`+templ.EscapeString(action)+`</p>`); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `<small class="alert-code">Error code: `+templ.EscapeString(code)+`</small></div>`)
		return err
	})
}

// FieldErrors renders per-field validation messages below a form.
func FieldErrors(errs map[string]string, order []string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(order) == 0 {
			return nil
		}
		if _, err := io.WriteString(w, `<ul class="field-errors">`); err != nil {
			return err
		}
		for _, field := range order {
			line := `<li data-field="` + templ.EscapeString(field) + `"><strong>` + templ.EscapeString(field) +
				`</strong>: ` + templ.EscapeString(errs[field]) + `</li>`
			if _, err := io.WriteString(w, line); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ul>`)
		return err
	})
}
