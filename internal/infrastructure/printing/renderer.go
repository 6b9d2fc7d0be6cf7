package printing

import (
	"bytes"
	"context"
	"time"
)

// PaperSize names a sheet format the renderer knows the size of
type PaperSize string

const (
	PaperSizeA4     PaperSize = "A4"
	PaperSizeA5     PaperSize = "A5"
	PaperSizeLetter PaperSize = "LETTER"
)

// sheetsMM holds width and height in millimeters
var sheetsMM = map[PaperSize][2]int{
	PaperSizeA4:     {210, 297},
	PaperSizeA5:     {148, 210},
	PaperSizeLetter: {216, 279},
}

func (p PaperSize) IsValid() bool {
	_, ok := sheetsMM[p]
	return ok
}

// Dimensions returns width and height in millimeters, zero for unknown sizes
func (p PaperSize) Dimensions() (width, height int) {
	wh := sheetsMM[p]
	return wh[0], wh[1]
}

type Orientation string

const (
	OrientationPortrait  Orientation = "PORTRAIT"
	OrientationLandscape Orientation = "LANDSCAPE"
)

// Margins in millimeters
type Margins struct {
	Top, Right, Bottom, Left int
}

// DefaultMargins leave room for the statement letterhead
func DefaultMargins() Margins {
	return Margins{Top: 15, Right: 12, Bottom: 15, Left: 12}
}

// RenderRequest is one HTML document to print. HeaderHTML and FooterHTML
// repeat on every page; Timeout of zero uses the renderer default.
type RenderRequest struct {
	HTML        string
	Title       string
	PaperSize   PaperSize
	Orientation Orientation
	Margins     Margins
	HeaderHTML  string
	FooterHTML  string
	Timeout     time.Duration
}

type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer turns HTML into PDF. The chromedp renderer is the production one.
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

const (
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
)

// RenderError carries one of the ErrCode values above
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}

func (e *RenderError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *RenderError) Unwrap() error { return e.Cause }

var (
	pageMarker  = []byte("/Type /Page")
	pagesMarker = []byte("/Type /Pages")
)

// estimatePageCount counts page objects without parsing the PDF.
// The page marker is a prefix of the page-tree marker, hence the subtraction.
func estimatePageCount(pdf []byte) int {
	return max(bytes.Count(pdf, pageMarker)-bytes.Count(pdf, pagesMarker), 1)
}
