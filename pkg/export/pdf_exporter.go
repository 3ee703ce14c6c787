package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const receiptFontFamily = "receipt"

// PDFExporter renders datasets as a narrow, receipt-shaped PDF.
type PDFExporter struct {
	fontPath string
}

// NewPDFExporter constructs a PDF exporter. When fontPath points at a TTF
// file it is embedded as a UTF-8 font; otherwise the core Courier font is used
// and non-Latin glyphs will not render.
func NewPDFExporter(fontPath string) *PDFExporter {
	return &PDFExporter{fontPath: fontPath}
}

// Render creates a single-column receipt with a title, the table body and footer lines.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	const width = 80.0
	height := 60.0 + float64(len(data.Rows)+len(data.Footer))*7
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    gofpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetMargins(5, 8, 5)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	family := "Courier"
	if e.fontPath != "" {
		pdf.AddUTF8Font(receiptFontFamily, "", e.fontPath)
		if pdf.Err() {
			return nil, fmt.Errorf("load receipt font: %w", pdf.Error())
		}
		family = receiptFontFamily
	}

	if title != "" {
		pdf.SetFont(family, "", 12)
		pdf.CellFormat(0, 8, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(2)
	}

	inner := width - 10
	colWidth := inner / float64(len(data.Headers))
	pdf.SetFont(family, "", 8)
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 6, header, "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 6, truncate(row[header], 18), "", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(2)
	for _, line := range data.Footer {
		pdf.CellFormat(inner/2, 6, line[0], "T", 0, "L", false, 0, "")
		pdf.CellFormat(inner/2, 6, line[1], "T", 1, "R", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-1]) + "…"
}
