package printing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChromedpRenderer_Defaults(t *testing.T) {
	r := NewChromedpRenderer(ChromedpConfig{RemoteURL: "ws://127.0.0.1:1/devtools/browser"})
	defer r.Close()

	assert.Equal(t, defaultChromeTimeout, r.config.DefaultTimeout)
	assert.Equal(t, defaultScale, r.config.Scale)
	assert.NotNil(t, r.logger)
}

func TestBuildPrintParams(t *testing.T) {
	r := &ChromedpRenderer{config: ChromedpConfig{Scale: 1.0}}

	t.Run("A4 portrait", func(t *testing.T) {
		p := r.buildPrintParams(&RenderRequest{PaperSize: PaperSizeA4, Margins: DefaultMargins()})
		assert.InDelta(t, 8.2677, p.paperWidth, 0.001)
		assert.InDelta(t, 11.6929, p.paperHeight, 0.001)
		assert.False(t, p.landscape)
		assert.False(t, p.displayHeaderFooter)
	})

	t.Run("landscape", func(t *testing.T) {
		p := r.buildPrintParams(&RenderRequest{PaperSize: PaperSizeLetter, Orientation: OrientationLandscape})
		assert.True(t, p.landscape)
		assert.InDelta(t, mmToInches(216), p.paperWidth, 0.001)
	})

	t.Run("margins", func(t *testing.T) {
		p := r.buildPrintParams(&RenderRequest{
			PaperSize: PaperSizeA4,
			Margins:   Margins{Top: 10, Right: 15, Bottom: 20, Left: 25},
		})
		assert.InDelta(t, mmToInches(10), p.marginTop, 0.001)
		assert.InDelta(t, mmToInches(15), p.marginRight, 0.001)
		assert.InDelta(t, mmToInches(20), p.marginBottom, 0.001)
		assert.InDelta(t, mmToInches(25), p.marginLeft, 0.001)
	})

	t.Run("header and footer raise small margins", func(t *testing.T) {
		p := r.buildPrintParams(&RenderRequest{
			PaperSize:  PaperSizeA4,
			Margins:    Margins{Top: 2, Bottom: 2},
			HeaderHTML: "<div>Header</div>",
			FooterHTML: "<div>Footer</div>",
		})
		assert.True(t, p.displayHeaderFooter)
		assert.Equal(t, "<div>Header</div>", p.headerTemplate)
		assert.Equal(t, "<div>Footer</div>", p.footerTemplate)
		assert.InDelta(t, mmToInches(headerFooterMarginMM), p.marginTop, 0.001)
		assert.InDelta(t, mmToInches(headerFooterMarginMM), p.marginBottom, 0.001)
	})
}

func TestWrapDocument(t *testing.T) {
	full := "<!DOCTYPE html><html><body>test</body></html>"
	assert.Equal(t, full, wrapDocument(&RenderRequest{HTML: full}))

	bare := "<html><body>test</body></html>"
	assert.Equal(t, bare, wrapDocument(&RenderRequest{HTML: bare}))

	doc := wrapDocument(&RenderRequest{HTML: "<div>Hello</div>", Title: "Rent & Utilities"})
	assert.Contains(t, doc, "<!DOCTYPE html>")
	assert.Contains(t, doc, `<meta charset="UTF-8">`)
	assert.Contains(t, doc, "<title>Rent &amp; Utilities</title>")
	assert.Contains(t, doc, "<body><div>Hello</div></body></html>")
}

func TestMmToInches(t *testing.T) {
	assert.InDelta(t, 0.0, mmToInches(0), 0.001)
	assert.InDelta(t, 1.0, mmToInches(25.4), 0.001)
	assert.InDelta(t, 8.5039, mmToInches(216), 0.001)
}

func TestChromedpRenderer_RejectsInvalidRequest(t *testing.T) {
	r := NewChromedpRenderer(ChromedpConfig{RemoteURL: "ws://127.0.0.1:1/devtools/browser"})
	defer r.Close()

	_, err := r.Render(context.Background(), &RenderRequest{HTML: "", PaperSize: PaperSizeA4})
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)
}

func TestChromedpRenderer_UnreachableBrowser(t *testing.T) {
	if testing.Short() {
		t.Skip("dials a devtools endpoint")
	}
	r := NewChromedpRenderer(ChromedpConfig{
		RemoteURL:      "ws://127.0.0.1:1/devtools/browser",
		DefaultTimeout: 2 * time.Second,
	})
	defer r.Close()

	_, err := r.Render(context.Background(), &RenderRequest{HTML: "<p>hi</p>", PaperSize: PaperSizeA4})
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Contains(t, []string{ErrCodeRenderFailed, ErrCodeRenderTimeout}, renderErr.Code)
}

func TestChromedpRenderer_Close(t *testing.T) {
	r := &ChromedpRenderer{}
	assert.NoError(t, r.Close())
}
