package printing

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"time"

	"github.com/logidocs/backend/internal/application/generalinfo"
	"github.com/logidocs/backend/internal/domain/document"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

const footerTemplate = `<div style="font-size:8px;width:100%;text-align:center;color:#666">` +
	`<span class="title"></span> &middot; page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`

// GeneralInfoExporter renders General Info summaries to PDF
type GeneralInfoExporter struct {
	renderer PDFRenderer
	tmpl     *template.Template
	timeout  time.Duration
}

// NewGeneralInfoExporter parses the General Info template
func NewGeneralInfoExporter(renderer PDFRenderer, timeout time.Duration) (*GeneralInfoExporter, error) {
	tmpl, err := template.New("general_info.html").
		Funcs(templateFuncs()).
		ParseFS(templateFS, "templates/general_info.html")
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplateFailed, "failed to parse General Info template", err)
	}
	return &GeneralInfoExporter{renderer: renderer, tmpl: tmpl, timeout: timeout}, nil
}

// HTML renders the summary as an HTML document
func (e *GeneralInfoExporter) HTML(summary *generalinfo.Summary) (string, error) {
	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, summary); err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "failed to render General Info template", err)
	}
	return buf.String(), nil
}

// GeneralInfoPDF renders the summary as an A4 landscape PDF
func (e *GeneralInfoExporter) GeneralInfoPDF(ctx context.Context, summary *generalinfo.Summary) ([]byte, error) {
	html, err := e.HTML(summary)
	if err != nil {
		return nil, err
	}
	result, err := e.renderer.Render(ctx, &RenderRequest{
		HTML:       html,
		PaperSize:  PaperSizeA4,
		Landscape:  true,
		Margins:    DefaultMargins(),
		Title:      "General Info " + summary.ProNumber,
		FooterHTML: footerTemplate,
		Timeout:    e.timeout,
	})
	if err != nil {
		return nil, err
	}
	return result.PDFData, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"amount": document.FormatAmount,
		"number": func(d decimal.Decimal) string {
			return document.FormatDecimal(d, 3)
		},
		"optional": func(d *decimal.Decimal) string {
			if d == nil {
				return "-"
			}
			return document.FormatDecimal(*d, 3)
		},
		"dash": func(s string) string {
			if s == "" {
				return "-"
			}
			return s
		},
		"datetime": func(t time.Time) string {
			return t.UTC().Format("2006-01-02 15:04 UTC")
		},
	}
}

// Ensure GeneralInfoExporter implements generalinfo.PDFExporter
var _ generalinfo.PDFExporter = (*GeneralInfoExporter)(nil)
