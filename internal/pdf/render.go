// Package pdf renders invoices as PDF documents and writes them to disk.
package pdf

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"invoicer/internal/core"
)

// Document is a rendered invoice ready to be written out.
type Document interface {
	Output(w io.Writer) error
}

// Renderer turns an invoice into a Document.
type Renderer interface {
	Render(ctx context.Context, inv core.Invoice) (Document, error)
}

// FPDFRenderer lays invoices out on A4 pages with the core PDF fonts.
type FPDFRenderer struct {
	// Creator is written into the document metadata.
	Creator string
}

func NewFPDFRenderer() *FPDFRenderer {
	return &FPDFRenderer{Creator: "invoicer"}
}

const (
	pageMargin = 15.0
	lineHeight = 5.5
	fontFamily = "Helvetica"
)

// column widths of the item table, summing to the printable width (180mm)
var itemColumns = []struct {
	title string
	width float64
	align string
}{
	{"Description", 96, "L"},
	{"Qty", 20, "R"},
	{"Price", 32, "R"},
	{"Total", 32, "R"},
}

func (r *FPDFRenderer) Render(ctx context.Context, inv core.Invoice) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; the translator maps characters such as the pound sign.
	tr := doc.UnicodeTranslatorFromDescriptor("")
	money := func(v float64) string { return tr(core.FormatCurrency(v, inv.Currency)) }

	doc.SetTitle("Invoice "+inv.InvoiceNumber, true)
	doc.SetCreator(r.Creator, true)
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(true, pageMargin)
	doc.AddPage()

	// Header: title on the left, number and dates on the right.
	doc.SetFont(fontFamily, "B", 22)
	doc.CellFormat(90, 12, "INVOICE", "", 0, "L", false, 0, "")
	doc.SetFont(fontFamily, "", 10)
	headerY := doc.GetY()
	for i, line := range []string{
		"Invoice #: " + inv.InvoiceNumber,
		"Date: " + inv.Date.String(),
		"Due: " + inv.DueDate.String(),
		"Status: " + strings.ToUpper(string(inv.Status)),
	} {
		doc.SetXY(105, headerY+float64(i)*lineHeight)
		doc.CellFormat(90, lineHeight, tr(line), "", 0, "R", false, 0, "")
	}
	doc.SetY(headerY + 4*lineHeight + 6)

	// From / Bill to.
	top := doc.GetY()
	partyBlock(doc, tr, "From", inv.Company.Party, pageMargin, top)
	leftEnd := doc.GetY()
	partyBlock(doc, tr, "Bill To", inv.Client, 105, top)
	if doc.GetY() < leftEnd {
		doc.SetY(leftEnd)
	}
	doc.Ln(6)

	// Items.
	doc.SetFont(fontFamily, "B", 10)
	doc.SetFillColor(235, 235, 235)
	for _, c := range itemColumns {
		doc.CellFormat(c.width, 8, c.title, "B", 0, c.align, true, 0, "")
	}
	doc.Ln(-1)
	doc.SetFont(fontFamily, "", 10)
	for _, it := range inv.Items {
		cells := []string{
			tr(it.Description),
			strconv.FormatFloat(it.Quantity, 'f', -1, 64),
			money(it.Price),
			money(it.Total),
		}
		for i, c := range itemColumns {
			doc.CellFormat(c.width, 7, cells[i], "B", 0, c.align, false, 0, "")
		}
		doc.Ln(-1)
	}
	doc.Ln(4)

	// Totals, right aligned under the table.
	labelX := pageMargin + itemColumns[0].width + itemColumns[1].width
	for _, row := range []struct {
		label string
		value string
		bold  bool
	}{
		{"Subtotal", money(inv.Subtotal), false},
		{fmt.Sprintf("Tax (%s%%)", strconv.FormatFloat(inv.TaxRate, 'f', -1, 64)), money(inv.TaxAmount), false},
		{"Total", money(inv.Total), true},
	} {
		style := ""
		if row.bold {
			style = "B"
		}
		doc.SetFont(fontFamily, style, 10)
		doc.SetX(labelX)
		doc.CellFormat(itemColumns[2].width, 7, row.label, "", 0, "R", false, 0, "")
		doc.CellFormat(itemColumns[3].width, 7, row.value, "", 1, "R", false, 0, "")
	}
	doc.Ln(6)

	if inv.Company.HasPaymentDetails() {
		pd := inv.Company.PaymentDetails
		section(doc, "Payment Details")
		for _, line := range []string{
			labelled("Account Name", pd.AccountName),
			labelled("Account Number", pd.AccountNumber),
			labelled("Sort Code", pd.SortCode),
		} {
			if line != "" {
				doc.CellFormat(0, lineHeight, tr(line), "", 1, "L", false, 0, "")
			}
		}
		doc.Ln(3)
	}
	if inv.PaymentTerms != "" {
		section(doc, "Payment Terms")
		doc.MultiCell(0, lineHeight, tr(inv.PaymentTerms), "", "L", false)
		doc.Ln(3)
	}
	if inv.Notes != "" {
		section(doc, "Notes")
		doc.MultiCell(0, lineHeight, tr(inv.Notes), "", "L", false)
	}

	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("layout invoice %s: %w", inv.InvoiceNumber, err)
	}
	return doc, nil
}

func partyBlock(doc *gofpdf.Fpdf, tr func(string) string, title string, p core.Party, x, y float64) {
	doc.SetXY(x, y)
	doc.SetFont(fontFamily, "B", 9)
	doc.CellFormat(90, lineHeight, strings.ToUpper(title), "", 1, "L", false, 0, "")
	doc.SetFont(fontFamily, "B", 11)
	doc.SetX(x)
	doc.CellFormat(90, lineHeight+1, tr(p.Name), "", 1, "L", false, 0, "")
	doc.SetFont(fontFamily, "", 10)
	for _, line := range partyLines(p) {
		doc.SetX(x)
		doc.CellFormat(90, lineHeight, tr(line), "", 1, "L", false, 0, "")
	}
}

// partyLines returns the non-empty address lines of p, city/state/zip joined.
func partyLines(p core.Party) []string {
	var lines []string
	if p.Address != "" {
		lines = append(lines, p.Address)
	}
	var place []string
	for _, s := range []string{p.City, p.State, p.ZipCode} {
		if s != "" {
			place = append(place, s)
		}
	}
	if len(place) > 0 {
		lines = append(lines, strings.Join(place, ", "))
	}
	if p.Phone != "" {
		lines = append(lines, p.Phone)
	}
	if p.Email != "" {
		lines = append(lines, p.Email)
	}
	return lines
}

func section(doc *gofpdf.Fpdf, title string) {
	doc.SetFont(fontFamily, "B", 10)
	doc.CellFormat(0, lineHeight+1, title, "", 1, "L", false, 0, "")
	doc.SetFont(fontFamily, "", 10)
}

func labelled(label, value string) string {
	if value == "" {
		return ""
	}
	return label + ": " + value
}
