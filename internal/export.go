package internal

import (
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"
)

// SheetName is the name of the single worksheet in exported files
const SheetName = "Expenses"

// ExportColumns is the column order of exported spreadsheets
var ExportColumns = []string{"Date", "Amount", "Recipient", "Comment", "Category", "Source", "Flags"}

// WriteXLSX writes the records as an Excel workbook to w.
// Absent dates and amounts are left as empty cells.
func WriteXLSX(w io.Writer, records []ExpenseRecord) error {
	f, err := buildWorkbook(records)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// SaveXLSX writes the records to an Excel file at path
func SaveXLSX(path string, records []ExpenseRecord) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := WriteXLSX(out, records); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing file: %w", err)
	}
	return nil
}

func buildWorkbook(records []ExpenseRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	dateFormat := "yyyy-mm-dd hh:mm"
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFormat})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating date style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	// Header row
	header := make([]any, len(ExportColumns))
	for i, col := range ExportColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing header: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(ExportColumns))
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("styling header: %w", err)
	}

	// Data rows
	for i, rec := range records {
		row := i + 2
		cells := []any{nil, nil, rec.Recipient, rec.Comment, rec.Category, rec.Source, rec.FlagsString()}
		if rec.Date != nil {
			cells[0] = *rec.Date
		}
		if rec.Amount != nil {
			cells[1] = *rec.Amount
		}
		cell := fmt.Sprintf("A%d", row)
		if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing row %d: %w", row, err)
		}
		if rec.Date != nil {
			if err := f.SetCellStyle(SheetName, cell, cell, dateStyle); err != nil {
				f.Close()
				return nil, fmt.Errorf("styling row %d: %w", row, err)
			}
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 18); err != nil {
		f.Close()
		return nil, fmt.Errorf("sizing columns: %w", err)
	}
	if err := f.SetColWidth(SheetName, "C", "D", 24); err != nil {
		f.Close()
		return nil, fmt.Errorf("sizing columns: %w", err)
	}

	return f, nil
}
