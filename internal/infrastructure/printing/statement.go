package printing

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/sparkcode/dashboard/internal/domain/finance"
)

//go:embed templates/statement.html
var templateFS embed.FS

// GeneratedOnLayout formats the statement date.
const GeneratedOnLayout = "1/2/2006"

var statementTemplate = template.Must(
	template.New("statement.html").
		Funcs(template.FuncMap{
			"date": func(s *finance.Statement) string { return s.GeneratedAt.Format(GeneratedOnLayout) },
			"last": func(i int, pages [][]finance.StatementRow) bool { return i == len(pages)-1 },
		}).
		ParseFS(templateFS, "templates/statement.html"),
)

// StatementPrinter prints financial statements
type StatementPrinter struct {
	renderer PDFRenderer
}

// NewStatementPrinter creates a printer on top of renderer
func NewStatementPrinter(renderer PDFRenderer) *StatementPrinter {
	return &StatementPrinter{renderer: renderer}
}

// HTML lays the statement out, one section per page with the table header
// repeated on every page.
func (p *StatementPrinter) HTML(st *finance.Statement) (string, error) {
	var buf bytes.Buffer
	if err := statementTemplate.Execute(&buf, st); err != nil {
		return "", fmt.Errorf("render statement template: %w", err)
	}
	return buf.String(), nil
}

// PDF renders the statement to PDF bytes
func (p *StatementPrinter) PDF(ctx context.Context, st *finance.Statement) ([]byte, error) {
	doc, err := p.HTML(st)
	if err != nil {
		return nil, err
	}
	res, err := p.renderer.Render(ctx, &RenderRequest{
		HTML:       doc,
		Title:      st.Title,
		Margins:    DefaultMargins(),
		FooterHTML: `<div style="font-size:8px;width:100%;text-align:center;color:#888"><span class="pageNumber"></span> / <span class="totalPages"></span></div>`,
	})
	if err != nil {
		return nil, err
	}
	return res.PDFData, nil
}
