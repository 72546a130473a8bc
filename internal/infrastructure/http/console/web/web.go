// Package web embeds the console's HTML templates.
package web

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

var funcs = template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
}

// Templates parses every page template. Pages share the "header" and
// "footer" blocks from layout.html.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(files, "templates/*.html")
}

// MustTemplates is Templates for program startup.
func MustTemplates() *template.Template {
	return template.Must(Templates())
}
