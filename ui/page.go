// Package ui renders the colour picker page served at "/".
package ui

import (
	"bytes"
	"embed"
	"html/template"
	"io"
)

//go:embed templates/index.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// Duties are the PWM values shown under the picker.
type Duties struct {
	Anode   [3]uint32
	Cathode [3]uint32
}

// Page is the data rendered into the picker.
type Page struct {
	// Color is the picker value, "#rrggbb".
	Color  string
	Error  string
	Duties *Duties
}

// Render writes the page to w. The page is rendered to a buffer first so a
// template error never leaves a half-written response.
func Render(w io.Writer, p Page) error {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
