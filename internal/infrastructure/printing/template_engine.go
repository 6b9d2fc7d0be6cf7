package printing

import (
	"bytes"
	"html/template"
	"maps"
	"strings"
	"time"

	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateEngine renders HTML templates with the document helper functions
type TemplateEngine struct {
	funcMap template.FuncMap
}

// TemplateEngineOption configures a TemplateEngine
type TemplateEngineOption func(*TemplateEngine)

// WithFuncs adds or overrides template functions
func WithFuncs(funcs template.FuncMap) TemplateEngineOption {
	return func(e *TemplateEngine) {
		maps.Copy(e.funcMap, funcs)
	}
}

// NewTemplateEngine creates a TemplateEngine with the default functions
func NewTemplateEngine(opts ...TemplateEngineOption) *TemplateEngine {
	e := &TemplateEngine{
		funcMap: template.FuncMap{
			"formatMoney":    formatMoney,
			"formatDate":     formatDate,
			"formatDateTime": formatDateTime,
			"formatPeriod":   formatPeriod,
			"statusText":     statusText,
			"shortID":        shortID,
			"upper":          strings.ToUpper,
			"title":          titleCase,
			"default":        defaultString,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Parse compiles a named template with the engine's functions
func (e *TemplateEngine) Parse(name, content string) (*template.Template, error) {
	if strings.TrimSpace(content) == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "template content is empty", nil)
	}
	tmpl, err := template.New(name).Funcs(e.funcMap).Parse(content)
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "failed to parse template", err)
	}
	return tmpl, nil
}

// Execute runs a parsed template and returns the HTML
func Execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template", err)
	}
	return buf.String(), nil
}

// RenderString parses and executes a template in one step
func (e *TemplateEngine) RenderString(name, content string, data any) (string, error) {
	tmpl, err := e.Parse(name, content)
	if err != nil {
		return "", err
	}
	return Execute(tmpl, data)
}

// formatMoney formats an amount as "$1,234.50"
func formatMoney(v any) string {
	switch m := v.(type) {
	case valueobject.Money:
		return m.StringWithSymbol()
	case *valueobject.Money:
		if m == nil {
			return valueobject.Zero().StringWithSymbol()
		}
		return m.StringWithSymbol()
	default:
		return ""
	}
}

// formatDate formats a time as "Aug 3, 2024"; nil and zero times render empty
func formatDate(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

func formatDateTime(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("Jan 2, 2006 15:04 UTC")
}

// formatPeriod formats a billing period as "August 2024"
func formatPeriod(p billing.Period) string {
	if p.IsZero() {
		return ""
	}
	return p.Month().String() + " " + p.String()[:4]
}

func statusText(s billing.InvoiceStatus) string {
	return titleCase(strings.ReplaceAll(strings.ToLower(s.String()), "_", " "))
}

func shortID(v any) string {
	s := strings.ToUpper(strings.ReplaceAll(toString(v), "-", ""))
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func defaultString(def, v string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func toTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t == nil {
			return time.Time{}
		}
		return *t
	default:
		return time.Time{}
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case interface{ String() string }:
		return s.String()
	default:
		return ""
	}
}
