package printing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaperSize(t *testing.T) {
	tests := []struct {
		size          PaperSize
		valid         bool
		width, height int
	}{
		{PaperSizeA4, true, 210, 297},
		{PaperSizeA5, true, 148, 210},
		{PaperSizeLetter, true, 216, 279},
		{PaperSize("RECEIPT_58MM"), false, 0, 0},
		{PaperSize(""), false, 0, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.size), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.size.IsValid())
			w, h := tt.size.Dimensions()
			assert.Equal(t, tt.width, w)
			assert.Equal(t, tt.height, h)
		})
	}
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name string
		req  *RenderRequest
		code string
	}{
		{"nil request", nil, ErrCodeInvalidHTML},
		{"empty HTML", &RenderRequest{PaperSize: PaperSizeA4}, ErrCodeInvalidHTML},
		{"whitespace only HTML", &RenderRequest{HTML: "   \n\t  ", PaperSize: PaperSizeA4}, ErrCodeInvalidHTML},
		{"invalid paper size", &RenderRequest{HTML: "<p>x</p>", PaperSize: "INVALID"}, ErrCodeInvalidPaperSize},
		{"valid", &RenderRequest{HTML: "<p>x</p>", PaperSize: PaperSizeA4, Margins: DefaultMargins()}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRequest(tt.req)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			var renderErr *RenderError
			if assert.ErrorAs(t, err, &renderErr) {
				assert.Equal(t, tt.code, renderErr.Code)
			}
		})
	}
}

func TestRenderError(t *testing.T) {
	t.Run("error without cause", func(t *testing.T) {
		err := NewRenderError(ErrCodeRenderTimeout, "timeout occurred", nil)

		assert.Equal(t, "timeout occurred", err.Error())
		assert.Nil(t, err.Unwrap())
	})

	t.Run("error with cause", func(t *testing.T) {
		err := NewRenderError(ErrCodeRenderFailed, "render failed", assert.AnError)

		assert.Equal(t, "render failed: "+assert.AnError.Error(), err.Error())
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestEstimatePageCount(t *testing.T) {
	twoPages := []byte("<< /Type /Pages /Count 2 >> << /Type /Page >> << /Type /Page >>")
	assert.Equal(t, 2, estimatePageCount(twoPages))
	assert.Equal(t, 1, estimatePageCount([]byte("%PDF-1.4")))
}
