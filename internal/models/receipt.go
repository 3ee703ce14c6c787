package models

import "time"

// ReceiptFormat enumerates supported receipt renderings.
type ReceiptFormat string

const (
	ReceiptFormatPDF ReceiptFormat = "pdf"
	ReceiptFormatCSV ReceiptFormat = "csv"
)

// Quarter filters receipt candidates by calendar quarter.
type Quarter string

const (
	QuarterAll Quarter = "all"
	QuarterQ1  Quarter = "Q1"
	QuarterQ2  Quarter = "Q2"
	QuarterQ3  Quarter = "Q3"
	QuarterQ4  Quarter = "Q4"
)

// QuarterOf returns the quarter a month falls in.
func QuarterOf(m time.Month) Quarter {
	switch {
	case m <= time.March:
		return QuarterQ1
	case m <= time.June:
		return QuarterQ2
	case m <= time.September:
		return QuarterQ3
	default:
		return QuarterQ4
	}
}

// DefaultReceiptRole is printed when the visitor picks none.
const DefaultReceiptRole = "Listener"

// Receipt is a year-end summary of attended events.
type Receipt struct {
	ID        string
	Year      int
	Name      string
	Role      string
	Events    []AnnotatedEvent
	PrintedAt time.Time
}

// ReceiptFile describes a rendered receipt stored for download.
type ReceiptFile struct {
	ReceiptID    string
	Year         int
	Format       ReceiptFormat
	RelativePath string
	URL          string
	ExpiresAt    time.Time
	TotalEvents  int
}
