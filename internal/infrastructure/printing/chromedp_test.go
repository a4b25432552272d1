package printing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChromedpRenderer_Defaults(t *testing.T) {
	r, err := NewChromedpRenderer(nil)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, defaultChromeTimeout, r.config.DefaultTimeout)
	assert.NotNil(t, r.logger)
	assert.NotNil(t, r.allocCtx)
}

func TestNewChromedpRenderer_KeepsTimeout(t *testing.T) {
	r, err := NewChromedpRenderer(&ChromedpConfig{DefaultTimeout: 5 * time.Second})
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 5*time.Second, r.config.DefaultTimeout)
}

func TestBuildPrintParams_A4Portrait(t *testing.T) {
	r := &ChromedpRenderer{config: &ChromedpConfig{}}

	params := r.buildPrintParams(&RenderRequest{
		PaperSize: PaperSizeA4,
		Margins:   DefaultMargins(),
	})

	assert.InDelta(t, 8.27, params.paperWidth, 0.01)
	assert.InDelta(t, 11.69, params.paperHeight, 0.01)
	assert.InDelta(t, mmToInches(10), params.marginTop, 0.001)
	assert.False(t, params.landscape)
	assert.False(t, params.displayFooter)
}

func TestBuildPrintParams_LetterLandscape(t *testing.T) {
	r := &ChromedpRenderer{config: &ChromedpConfig{}}

	params := r.buildPrintParams(&RenderRequest{
		PaperSize: PaperSizeLetter,
		Landscape: true,
	})

	assert.InDelta(t, 8.5, params.paperWidth, 0.001)
	assert.InDelta(t, 11.0, params.paperHeight, 0.001)
	assert.True(t, params.landscape)
}

func TestBuildPrintParams_FooterWidensBottomMargin(t *testing.T) {
	r := &ChromedpRenderer{config: &ChromedpConfig{}}

	params := r.buildPrintParams(&RenderRequest{
		PaperSize:  PaperSizeA4,
		Margins:    DefaultMargins(),
		FooterHTML: "<span class=\"pageNumber\"></span>",
	})

	assert.True(t, params.displayFooter)
	assert.Equal(t, "<span class=\"pageNumber\"></span>", params.footerTemplate)
	assert.InDelta(t, mmToInches(12), params.marginBottom, 0.001)
	assert.InDelta(t, mmToInches(10), params.marginTop, 0.001)
}

func TestBuildCompleteHTML(t *testing.T) {
	r := &ChromedpRenderer{config: &ChromedpConfig{}}

	t.Run("wraps fragment", func(t *testing.T) {
		out := r.buildCompleteHTML(&RenderRequest{HTML: "<p>hello</p>", Title: "A & B"})
		assert.Contains(t, out, "<!DOCTYPE html>")
		assert.Contains(t, out, "<title>A &amp; B</title>")
		assert.Contains(t, out, "<body><p>hello</p></body>")
	})

	t.Run("keeps full document", func(t *testing.T) {
		doc := "<!DOCTYPE html><html><body>x</body></html>"
		assert.Equal(t, doc, r.buildCompleteHTML(&RenderRequest{HTML: doc}))
	})
}

func TestChromedpRenderer_RenderRejectsBadRequests(t *testing.T) {
	r := &ChromedpRenderer{config: &ChromedpConfig{}}

	_, err := r.Render(t.Context(), nil)
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)

	_, err = r.Render(t.Context(), &RenderRequest{HTML: "   "})
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)

	_, err = r.Render(t.Context(), &RenderRequest{HTML: "<p>x</p>", PaperSize: "A0"})
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ErrCodeInvalidPaperSize, renderErr.Code)
}

func TestRenderError(t *testing.T) {
	cause := assert.AnError
	err := NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", cause)

	assert.Equal(t, "chromedp execution failed: "+cause.Error(), err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "bare", NewRenderError(ErrCodeRenderFailed, "bare", nil).Error())
}

func TestEstimatePageCount(t *testing.T) {
	pdf := []byte("<< /Type /Pages /Count 2 >> << /Type /Page >> << /Type /Page >>")
	assert.Equal(t, 2, estimatePageCount(pdf))
	assert.Equal(t, 1, estimatePageCount([]byte("%PDF-1.4")))
}

func TestPaperSize(t *testing.T) {
	assert.True(t, PaperSizeA4.IsValid())
	assert.True(t, PaperSizeLetter.IsValid())
	assert.False(t, PaperSize("A0").IsValid())

	w, h := PaperSizeLetter.Dimensions()
	assert.InDelta(t, 215.9, w, 0.001)
	assert.InDelta(t, 279.4, h, 0.001)

	w, h = PaperSizeA4.Dimensions()
	assert.InDelta(t, 210.0, w, 0.001)
	assert.InDelta(t, 297.0, h, 0.001)
}
