// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/kupipodariday-backend/internal/config"
)

// Service handles PDF generation
type Service struct {
	config *config.Config
	tmpl   *template.Template
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		tmpl: template.Must(template.New("wishlist").Funcs(template.FuncMap{
			"money": FormatMoney,
		}).Parse(wishlistTemplate)),
	}
}

// Document is a printable wishlist
type Document struct {
	Title       string
	Description string
	Image       string
	Owner       string
	Items       []Item
	GeneratedAt time.Time
}

// Item is one printable wish
type Item struct {
	Name   string
	Link   string
	Image  string
	Price  int64
	Raised int64
}

// Remaining is what is still missing to fund the item
func (i Item) Remaining() int64 {
	if i.Raised >= i.Price {
		return 0
	}
	return i.Price - i.Raised
}

// Total sums the item prices
func (d *Document) Total() int64 {
	var total int64
	for _, item := range d.Items {
		total += item.Price
	}
	return total
}

type templateData struct {
	*Document
	AppName   string
	BaseURL   string
	Generated string
}

// GenerateWishlist renders the document to PDF with wkhtmltopdf
func (s *Service) GenerateWishlist(doc *Document) (*bytes.Buffer, error) {
	htmlContent, err := s.RenderHTML(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Title.Set(doc.Title)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Encoding.Set("utf-8")

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// RenderHTML produces the HTML page the PDF is printed from
func (s *Service) RenderHTML(doc *Document) (string, error) {
	generated := doc.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	data := templateData{
		Document:  doc,
		Generated: generated.Format("January 2, 2006"),
	}
	if s.config != nil {
		data.AppName = s.config.App.Name
		data.BaseURL = s.config.App.BaseURL
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// FormatMoney prints minor currency units with two decimals
func FormatMoney(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}

const wishlistTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 24px; color: #222; }
        h1 { margin-bottom: 4px; }
        .meta { color: #777; font-size: 12px; margin-bottom: 16px; }
        .cover { max-width: 240px; margin-bottom: 16px; }
        table { width: 100%; border-collapse: collapse; }
        th, td { border-bottom: 1px solid #ddd; padding: 8px; text-align: left; }
        td.num, th.num { text-align: right; }
        tfoot td { font-weight: bold; }
    </style>
</head>
<body>
    <h1>{{.Title}}</h1>
    <div class="meta">by {{.Owner}} &middot; {{.Generated}}{{if .AppName}} &middot; {{.AppName}}{{end}}</div>
    {{if .Image}}<img class="cover" src="{{.Image}}" alt="">{{end}}
    {{if .Description}}<p>{{.Description}}</p>{{end}}
    <table>
        <thead>
            <tr><th>Wish</th><th class="num">Price</th><th class="num">Raised</th><th class="num">Remaining</th></tr>
        </thead>
        <tbody>
        {{range .Items}}
            <tr>
                <td><a href="{{.Link}}">{{.Name}}</a></td>
                <td class="num">{{money .Price}}</td>
                <td class="num">{{money .Raised}}</td>
                <td class="num">{{money .Remaining}}</td>
            </tr>
        {{else}}
            <tr><td colspan="4">This wishlist is empty.</td></tr>
        {{end}}
        </tbody>
        <tfoot>
            <tr><td>Total</td><td class="num">{{money .Total}}</td><td></td><td></td></tr>
        </tfoot>
    </table>
</body>
</html>
`
