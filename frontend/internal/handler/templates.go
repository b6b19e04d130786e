package handler

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/microsmart/portal/shared/domain"
)

const (
	baseTemplate     = "base.html"
	partialsTemplate = "partials.html"
	tmplDir          = "templates"
)

//go:embed templates/*.html
var embedded embed.FS

var (
	printer   = message.NewPrinter(language.English)
	titleCase = cases.Title(language.English)
)

func money(v float64) string { return printer.Sprintf("%.2f", v) }

func percent(v float64) string { return printer.Sprintf("%.2f%%", v) }

// label turns backend identifiers (payment_reminder) into display text.
func label(v any) string {
	s := strings.ReplaceAll(fmt.Sprint(v), "_", " ")
	if s == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(s)
	return titleCase.String(s[:size]) + s[size:]
}

// date keeps the date part of a backend timestamp ("2026-01-02 15:04:05").
func date(v any) string {
	s := timestamp(v)
	if len(s) >= 10 {
		return s[:10]
	}
	return s
}

// datetime drops seconds.
func datetime(v any) string {
	s := timestamp(v)
	if len(s) >= 16 {
		return s[:16]
	}
	return s
}

func timestamp(v any) string {
	switch t := v.(type) {
	case domain.Timestamp:
		return t
	case *domain.Timestamp:
		if t == nil {
			return ""
		}
		return *t
	default:
		return fmt.Sprint(v)
	}
}

func dict(values ...any) (map[string]any, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("invalid dict call: number of arguments must be even")
	}
	m := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict keys must be strings")
		}
		m[key] = values[i+1]
	}
	return m, nil
}

var funcs = template.FuncMap{
	"money":    money,
	"percent":  percent,
	"label":    label,
	"date":     date,
	"datetime": datetime,
	"dict":     dict,
	"join":     strings.Join,
}

// LoadTemplates parses every page in fsys together with the base layout and
// partials. Pages are keyed by file name.
func LoadTemplates(fsys fs.FS) (map[string]*template.Template, error) {
	files, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}

	templates := make(map[string]*template.Template)
	for _, f := range files {
		name := f.Name()
		if path.Ext(name) != ".html" || name == baseTemplate || name == partialsTemplate {
			continue
		}
		tmpl, err := template.New(baseTemplate).Funcs(funcs).ParseFS(fsys, baseTemplate, name, partialsTemplate)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		templates[name] = tmpl
	}
	return templates, nil
}

// EmbeddedTemplates returns the templates compiled into the binary.
func EmbeddedTemplates() fs.FS {
	sub, err := fs.Sub(embedded, tmplDir)
	if err != nil {
		panic(err)
	}
	return sub
}
