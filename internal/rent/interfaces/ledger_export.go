package interfaces

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	rentapp "rentnotice-cloud/internal/rent/application"
	rent "rentnotice-cloud/internal/rent/domain"
)

const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// ErrUnsupportedLedgerFormat is returned for formats other than xlsx and pdf.
var ErrUnsupportedLedgerFormat = errors.New("ledger export: unsupported format")

var statusOrder = []rent.Status{rent.StatusPaid, rent.StatusPartial, rent.StatusUnpaid, rent.StatusNotApplicable}

// LedgerFile is an exported ledger.
type LedgerFile struct {
	Data        []byte
	ContentType string
	Filename    string
}

// ExportLedger renders a ledger view in the given format.
func ExportLedger(view *rentapp.LedgerView, format string) (*LedgerFile, error) {
	if view == nil {
		return nil, errors.New("ledger export: nil view")
	}
	var (
		data        []byte
		err         error
		contentType string
	)
	switch format {
	case FormatXLSX:
		data, err = BuildLedgerXLSX(view)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		data, err = BuildLedgerPDF(view)
		contentType = "application/pdf"
	default:
		return nil, ErrUnsupportedLedgerFormat
	}
	if err != nil {
		return nil, err
	}
	return &LedgerFile{
		Data:        data,
		ContentType: contentType,
		Filename:    fmt.Sprintf("ledger-%s-%s.%s", view.Tenant.ID, rent.CurrentPeriod(view.AsOf), format),
	}, nil
}

// BuildLedgerXLSX renders a ledger as a workbook with a summary and a rows sheet.
func BuildLedgerXLSX(view *rentapp.LedgerView) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	summarySheet := "summary"
	rowsSheet := "ledger"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(rowsSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Rent Ledger")
	_ = f.SetCellValue(summarySheet, "A3", "Tenant")
	_ = f.SetCellValue(summarySheet, "B3", view.Tenant.Name)
	_ = f.SetCellValue(summarySheet, "A4", "Unit")
	_ = f.SetCellValue(summarySheet, "B4", view.Tenant.Unit)
	_ = f.SetCellValue(summarySheet, "A5", "As Of")
	_ = f.SetCellValue(summarySheet, "B5", view.AsOf.Format("2006-01-02"))
	_ = f.SetCellValue(summarySheet, "A6", "Expected")
	_ = f.SetCellValue(summarySheet, "B6", view.Summary.Expected.InexactFloat64())
	_ = f.SetCellValue(summarySheet, "A7", "Paid")
	_ = f.SetCellValue(summarySheet, "B7", view.Summary.Paid.InexactFloat64())
	_ = f.SetCellValue(summarySheet, "A8", "Outstanding")
	_ = f.SetCellValue(summarySheet, "B8", view.Summary.Outstanding.InexactFloat64())
	for i, status := range statusOrder {
		row := 10 + i
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), string(status))
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), view.Summary.Counts[status])
	}

	_ = f.SetCellValue(rowsSheet, "A1", "Period")
	_ = f.SetCellValue(rowsSheet, "B1", "Expected")
	_ = f.SetCellValue(rowsSheet, "C1", "Paid")
	_ = f.SetCellValue(rowsSheet, "D1", "Status")
	for i, row := range view.Rows {
		r := i + 2
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("A%d", r), row.Period.String())
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("B%d", r), row.Expected.InexactFloat64())
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("C%d", r), row.Paid.InexactFloat64())
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("D%d", r), string(row.Status))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildLedgerPDF renders a one-page ledger table.
func BuildLedgerPDF(view *rentapp.LedgerView) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "Letter", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Rent Ledger")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Tenant: %s", view.Tenant.Name)))
	pdf.Ln(5)
	if view.Tenant.Unit != "" {
		pdf.Cell(0, 6, tr(fmt.Sprintf("Unit: %s", view.Tenant.Unit)))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("As of: %s", view.AsOf.Format(time.DateOnly)))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(35, 6, "Period", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Expected", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Paid", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Status", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	for _, row := range view.Rows {
		pdf.CellFormat(35, 6, row.Period.String(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, row.Expected.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, row.Paid.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, string(row.Status), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.Cell(0, 6, fmt.Sprintf("Expected: %s  Paid: %s  Outstanding: %s",
		view.Summary.Expected.StringFixed(2), view.Summary.Paid.StringFixed(2), view.Summary.Outstanding.StringFixed(2)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
