// Package printing renders invoice statements to PDF.
//
// Statements are html/template documents executed by TemplateEngine and then
// printed by a PDFRenderer. ChromedpRenderer drives a headless Chrome over the
// DevTools protocol, either launched locally or reached at a remote URL.
//
//	renderer := NewChromedpRenderer(ChromedpConfig{RemoteURL: "ws://chrome:9222"})
//	defer renderer.Close()
//
//	printer, err := NewStatementPrinter(NewTemplateEngine(), renderer)
//	if err != nil {
//	    return err
//	}
//	pdf, err := printer.RenderStatement(ctx, statement)
package printing
