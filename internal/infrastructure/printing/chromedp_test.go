package printing

import (
	"context"
	"errors"
	"testing"

	"github.com/sparkcode/dashboard/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChromedpRenderer_RejectsEmptyHTML(t *testing.T) {
	r := NewChromedpRenderer(config.PDFConfig{}, nil)
	defer r.Close()

	for _, req := range []*RenderRequest{nil, {HTML: "   "}} {
		_, err := r.Render(context.Background(), req)
		var re *RenderError
		require.True(t, errors.As(err, &re))
		assert.Equal(t, ErrCodeInvalidHTML, re.Code)
	}
}

func TestNewChromedpRenderer_DefaultTimeout(t *testing.T) {
	r := NewChromedpRenderer(config.PDFConfig{RemoteURL: "ws://127.0.0.1:9222"}, nil)
	defer r.Close()
	assert.Equal(t, defaultChromeTimeout, r.timeout)
}

func TestPrintParamsFor(t *testing.T) {
	t.Run("a4 with default margins", func(t *testing.T) {
		p := printParamsFor(&RenderRequest{HTML: "<p>x</p>"})
		assert.InDelta(t, 8.27, p.PaperWidth, 0.01)
		assert.InDelta(t, 11.69, p.PaperHeight, 0.01)
		assert.InDelta(t, 15/25.4, p.MarginTop, 0.0001)
		assert.InDelta(t, 15/25.4, p.MarginLeft, 0.0001)
		assert.True(t, p.PrintBackground)
		assert.False(t, p.DisplayHeaderFooter)
	})

	t.Run("footer enables header and footer display", func(t *testing.T) {
		p := printParamsFor(&RenderRequest{
			HTML:       "<p>x</p>",
			Margins:    Margins{Top: 10, Right: 5, Bottom: 20, Left: 5},
			FooterHTML: "<span class=\"pageNumber\"></span>",
			Landscape:  true,
		})
		assert.True(t, p.DisplayHeaderFooter)
		assert.True(t, p.Landscape)
		assert.Equal(t, "<span class=\"pageNumber\"></span>", p.FooterTemplate)
		assert.InDelta(t, 20/25.4, p.MarginBottom, 0.0001)
	})
}

func TestWrapDocument(t *testing.T) {
	full := "<!DOCTYPE html><html><body>x</body></html>"
	assert.Equal(t, full, wrapDocument(&RenderRequest{HTML: full}))

	got := wrapDocument(&RenderRequest{HTML: "<p>x</p>", Title: "A & B"})
	assert.Contains(t, got, "<title>A &amp; B</title>")
	assert.Contains(t, got, "<body><p>x</p></body>")
}

func TestCountPages(t *testing.T) {
	pdf := []byte("1 0 obj << /Type /Pages /Count 2 >>\n2 0 obj << /Type /Page /Parent 1 0 R >>\n3 0 obj << /Type/Page /Parent 1 0 R >>")
	assert.Equal(t, 2, countPages(pdf))
	assert.Equal(t, 0, countPages(nil))
}
