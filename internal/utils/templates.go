package utils

import (
	"html/template"
	"io"
	"whoislookup/internal/lookup"

	"github.com/labstack/echo/v4"
)

type TemplateRegistry struct {
	Templates *template.Template
}

func (t *TemplateRegistry) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.Templates.ExecuteTemplate(w, name, data)
}

// FuncMap is shared by every template the server parses.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"IsIP":         IsIP,
		"FormatResult": FormatResult,
	}
}

func IsIP(val interface{}) bool {
	if str, ok := val.(string); ok {
		return lookup.IsIP(str)
	}
	return false
}
