package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"isURL": func(s string) bool {
		return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "/")
	},
	"money": func(v float64) string {
		return fmt.Sprintf("$%.2f", v)
	},
}

// Templates holds one parsed set per page, each sharing the layout.
type Templates struct {
	pages map[string]*template.Template
}

func NewTemplates() (*Templates, error) {
	t := &Templates{pages: make(map[string]*template.Template)}
	for _, name := range []string{"itinerary", "destination", "listing"} {
		tpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		t.pages[name] = tpl
	}
	return t, nil
}

func (t *Templates) Itinerary(w io.Writer, v ItineraryView) error {
	return t.execute(w, "itinerary", v)
}

func (t *Templates) Destination(w io.Writer, v DestinationView) error {
	return t.execute(w, "destination", v)
}

func (t *Templates) Listing(w io.Writer, v ListingView) error {
	return t.execute(w, "listing", v)
}

func (t *Templates) execute(w io.Writer, page string, data any) error {
	return t.pages[page].ExecuteTemplate(w, "layout", data)
}
