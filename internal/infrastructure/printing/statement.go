package printing

import (
	"context"
	"embed"
	"fmt"
	"html/template"

	appbilling "github.com/rentflow/backend/internal/application/billing"
)

//go:embed templates/*.html
var templateFS embed.FS

const statementTemplatePath = "templates/statement.html"

// StatementPrinter renders invoice statements to PDF
type StatementPrinter struct {
	tmpl     *template.Template
	renderer PDFRenderer
	paper    PaperSize
	margins  Margins
}

// NewStatementPrinter parses the embedded statement template
func NewStatementPrinter(engine *TemplateEngine, renderer PDFRenderer) (*StatementPrinter, error) {
	content, err := templateFS.ReadFile(statementTemplatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read statement template: %w", err)
	}
	tmpl, err := engine.Parse("statement", string(content))
	if err != nil {
		return nil, err
	}
	return &StatementPrinter{
		tmpl:     tmpl,
		renderer: renderer,
		paper:    PaperSizeA4,
		margins:  DefaultMargins(),
	}, nil
}

// HTML renders the statement without converting it to PDF
func (p *StatementPrinter) HTML(st *appbilling.Statement) (string, error) {
	return Execute(p.tmpl, st)
}

// RenderStatement implements appbilling.StatementRenderer
func (p *StatementPrinter) RenderStatement(ctx context.Context, st *appbilling.Statement) ([]byte, error) {
	html, err := p.HTML(st)
	if err != nil {
		return nil, err
	}
	result, err := p.renderer.Render(ctx, &RenderRequest{
		HTML:        html,
		PaperSize:   p.paper,
		Orientation: OrientationPortrait,
		Margins:     p.margins,
		Title:       "Statement " + st.Period.String(),
	})
	if err != nil {
		return nil, err
	}
	return result.PDFData, nil
}

var _ appbilling.StatementRenderer = (*StatementPrinter)(nil)
