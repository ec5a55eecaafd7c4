// Package document renders the PDF order summary that is mailed to the shop
// and the customer.
package document

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/joao-fontenele/orderdesk/internal/domain"
)

const (
	regularFontFile = "DejaVuSans.ttf"
	boldFontFile    = "DejaVuSans-Bold.ttf"

	margin     = 60.0
	lineHeight = 14.0
	colGap     = 12.0
	qtyWidth   = 70.0
	unitWidth  = 110.0
	totalWidth = 90.0
	minRowH    = 18.0
)

// Labels are the fixed texts printed on the document.
type Labels struct {
	Title     string
	OrderNo   string
	Date      string
	Customer  string
	Name      string
	Phone     string
	Email     string
	Note      string
	Items     string
	Product   string
	Quantity  string
	UnitPrice string
	Amount    string
	Total     string
	Footer    []string
}

func DefaultLabels() Labels {
	return Labels{
		Title:     "Aytaç'tan Helal Et Siparişi",
		OrderNo:   "Sipariş No",
		Date:      "Tarih",
		Customer:  "Müşteri Bilgileri",
		Name:      "İsim Soyisim",
		Phone:     "Telefon",
		Email:     "E-posta",
		Note:      "Not",
		Items:     "Sipariş Kalemleri",
		Product:   "Ürün",
		Quantity:  "Miktar",
		UnitPrice: "Birim",
		Amount:    "Tutar",
		Total:     "TOPLAM:",
		Footer: []string{
			"Siparişiniz alınmıştır.",
			"Teslimat günü ve saatini biz haber edeceğiz.",
		},
	}
}

// Renderer produces an A4 PDF for an order. Output depends only on the
// order and the renderer settings.
type Renderer struct {
	// FontDir holds DejaVuSans.ttf and DejaVuSans-Bold.ttf. When empty the
	// core Helvetica font is used, which covers Windows-1252 only.
	FontDir  string
	Labels   Labels
	Compress bool
}

func NewRenderer(fontDir string) *Renderer {
	return &Renderer{
		FontDir:  fontDir,
		Labels:   DefaultLabels(),
		Compress: true,
	}
}

type page struct {
	pdf    *fpdf.Fpdf
	family string
	tr     func(string) string
	width  float64
}

func (r *Renderer) Render(order domain.Order) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", r.FontDir)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetCompression(r.Compress)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(order.CreatedAt)
	pdf.SetModificationDate(order.CreatedAt)
	pdf.SetTitle(fmt.Sprintf("%s %d", r.Labels.OrderNo, order.ID), true)

	p := &page{pdf: pdf, tr: func(s string) string { return s }}
	if r.FontDir != "" {
		pdf.AddUTF8Font("DejaVu", "", regularFontFile)
		pdf.AddUTF8Font("DejaVu", "B", boldFontFile)
		p.family = "DejaVu"
	} else {
		p.family = "Helvetica"
		p.tr = pdf.UnicodeTranslatorFromDescriptor("")
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("load fonts from %s: %w", filepath.Clean(r.FontDir), err)
	}

	pageW, _ := pdf.GetPageSize()
	p.width = pageW - 2*margin

	pdf.SetFooterFunc(func() { r.footer(p) })
	pdf.AddPage()

	r.header(p, order)
	r.table(p, order.Items)
	r.total(p, order.Total())

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render order %d: %w", order.ID, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) header(p *page, order domain.Order) {
	pdf := p.pdf
	l := r.Labels

	p.font("B", 18)
	pdf.CellFormat(p.width, 24, p.tr(l.Title), "", 1, "C", false, 0, "")
	pdf.Ln(10)

	p.font("", 11)
	p.line(l.OrderNo + ": " + strconv.FormatInt(order.ID, 10))
	p.line(l.Date + ": " + order.CreatedAt.UTC().Format("2006-01-02 15:04"))
	pdf.Ln(8)

	p.font("BU", 11)
	p.line(l.Customer)
	pdf.Ln(4)

	p.font("", 11)
	p.line(l.Name + ": " + safeText(order.CustomerName))
	p.line(l.Phone + ": " + safeText(order.Phone))
	if order.Email != "" {
		p.line(l.Email + ": " + safeText(order.Email))
	}
	if order.Note != "" {
		for _, ln := range p.wrap(l.Note+": "+safeText(order.Note), p.width) {
			p.line(ln)
		}
	}

	pdf.Ln(10)
	p.hline()
	pdf.Ln(10)

	p.font("B", 14)
	pdf.CellFormat(p.width, 20, p.tr(l.Items), "", 1, "L", false, 0, "")
	pdf.Ln(6)
}

type columns struct {
	productX, productW float64
	qtyX, unitX        float64
	totalX             float64
}

func (p *page) columns() columns {
	productW := p.width - (qtyWidth + unitWidth + totalWidth + 3*colGap)
	return columns{
		productX: margin,
		productW: productW,
		qtyX:     margin + productW + colGap,
		unitX:    margin + productW + colGap + qtyWidth + colGap,
		totalX:   margin + p.width - totalWidth,
	}
}

func (r *Renderer) table(p *page, items []domain.LineItem) {
	pdf := p.pdf
	col := p.columns()

	r.tableHeader(p, col)

	p.font("", 11)
	for _, item := range items {
		name := p.wrap(safeText(item.ProductName), col.productW)
		unit := p.wrap(FormatUnitPrice(item.UnitPrice, safeText(item.UnitLabel)), unitWidth)
		rowH := float64(max(len(name), len(unit))) * lineHeight
		if rowH < minRowH {
			rowH = minRowH
		}

		if r.ensureSpace(p, rowH+10) {
			r.tableHeader(p, col)
			p.font("", 11)
		}

		y := pdf.GetY()
		p.column(col.productX, y, col.productW, name, "L")
		p.column(col.qtyX, y, qtyWidth, []string{FormatQuantity(item.Quantity)}, "L")
		p.column(col.unitX, y, unitWidth, unit, "L")
		p.column(col.totalX, y, totalWidth, []string{item.LineTotal.String()}, "R")
		pdf.SetY(y + rowH + 10)
	}

	p.hline()
	pdf.Ln(10)
}

func (r *Renderer) tableHeader(p *page, col columns) {
	pdf := p.pdf
	l := r.Labels

	p.font("B", 11)
	y := pdf.GetY()
	p.column(col.productX, y, col.productW, []string{l.Product}, "L")
	p.column(col.qtyX, y, qtyWidth, []string{l.Quantity}, "L")
	p.column(col.unitX, y, unitWidth, []string{l.UnitPrice}, "L")
	p.column(col.totalX, y, totalWidth, []string{l.Amount}, "R")
	pdf.SetY(y + lineHeight + 6)
	p.hline()
	pdf.Ln(6)
}

func (r *Renderer) total(p *page, total domain.Money) {
	pdf := p.pdf
	r.ensureSpace(p, 40)

	const labelW = 110.0
	y := pdf.GetY()
	valueX := margin + p.width - totalWidth
	labelX := valueX - colGap - labelW

	p.font("B", 12)
	p.column(labelX, y, labelW, []string{r.Labels.Total}, "R")
	p.column(valueX, y, totalWidth, []string{total.String()}, "R")
	pdf.SetY(y + lineHeight)
}

func (r *Renderer) footerHeight() float64 {
	return float64(len(r.Labels.Footer)) * lineHeight
}

func (r *Renderer) footer(p *page) {
	pdf := p.pdf
	_, pageH := pdf.GetPageSize()

	p.font("", 11)
	y := pageH - margin - r.footerHeight()
	for i, ln := range r.Labels.Footer {
		pdf.SetXY(margin, y+float64(i)*lineHeight)
		pdf.CellFormat(p.width, lineHeight, p.tr(ln), "", 0, "L", false, 0, "")
	}
}

// ensureSpace starts a new page when need points would run into the
// footer. It reports whether a page was added.
func (r *Renderer) ensureSpace(p *page, need float64) bool {
	_, pageH := p.pdf.GetPageSize()
	limit := pageH - margin - r.footerHeight() - 12
	if p.pdf.GetY()+need <= limit {
		return false
	}
	p.pdf.AddPage()
	return true
}

func (p *page) font(style string, size float64) {
	p.pdf.SetFont(p.family, style, size)
}

func (p *page) line(s string) {
	p.pdf.SetX(margin)
	p.pdf.CellFormat(p.width, lineHeight, p.tr(s), "", 1, "L", false, 0, "")
}

func (p *page) column(x, y, w float64, lines []string, align string) {
	for i, s := range lines {
		p.pdf.SetXY(x, y+float64(i)*lineHeight)
		p.pdf.CellFormat(w, lineHeight, p.tr(s), "", 0, align, false, 0, "")
	}
}

func (p *page) hline() {
	y := p.pdf.GetY()
	p.pdf.SetLineWidth(1)
	p.pdf.Line(margin, y, margin+p.width, y)
}

// wrap breaks s into lines no wider than w in the current font.
func (p *page) wrap(s string, w float64) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if p.pdf.GetStringWidth(p.tr(candidate)) <= w {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}
