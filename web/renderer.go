package web

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"

	"github.com/labstack/echo/v4"
)

// TemplateRenderer renders the standalone html/template pages for Echo.
// Console pages are templ components and do not go through it.
type TemplateRenderer struct {
	templates map[string]*template.Template
}

// NewTemplateRenderer parses every templates/*.html in fsys, one template set per page.
func NewTemplateRenderer(fsys fs.FS) (*TemplateRenderer, error) {
	pages, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.ParseFS(fsys, page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", page, err)
		}
		templates[path.Base(page)] = tmpl
	}
	return &TemplateRenderer{templates: templates}, nil
}

// Render renders a template document
func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := t.templates[name]
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "Template not found: "+name)
	}
	return tmpl.Execute(w, data)
}
