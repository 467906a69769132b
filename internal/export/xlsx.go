package export

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	defaultSheetName  = "Leads"
	defaultFilePrefix = "leads"
	defaultSheet      = "Sheet1"
)

// XLSXEncoder writes rows to a single-sheet workbook.
type XLSXEncoder struct {
	SheetName  string
	FilePrefix string
	Now        func() time.Time
}

// NewXLSXEncoder creates an encoder; empty arguments take the defaults.
func NewXLSXEncoder(sheetName, filePrefix string) *XLSXEncoder {
	if sheetName == "" {
		sheetName = defaultSheetName
	}
	if filePrefix == "" {
		filePrefix = defaultFilePrefix
	}
	return &XLSXEncoder{
		SheetName:  sheetName,
		FilePrefix: filePrefix,
		Now:        time.Now,
	}
}

// FileName returns "<prefix>_YYYY-MM-DD.xlsx" for the current UTC date.
func (e *XLSXEncoder) FileName() string {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	return fmt.Sprintf("%s_%s.xlsx", e.FilePrefix, now().UTC().Format("2006-01-02"))
}

// Encode writes a header row followed by one row per lead.
func (e *XLSXEncoder) Encode(ctx context.Context, rows []Row) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := e.SheetName
	if err := f.SetSheetName(defaultSheet, sheet); err != nil {
		return nil, fmt.Errorf("%w: rename sheet: %w", ErrEncodeFailed, err)
	}

	if err := f.SetSheetRow(sheet, "A1", toCells(Columns)); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrEncodeFailed, err)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(Columns), 1)
		_ = f.SetCellStyle(sheet, "A1", last, style)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEncodeFailed, err)
		}
		if err := f.SetSheetRow(sheet, cell, toCells(row.Values())); err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrEncodeFailed, i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: write: %w", ErrEncodeFailed, err)
	}

	return &File{
		Name: e.FileName(),
		URL:  dataURI(XLSXMimeType, buf.Bytes()),
	}, nil
}

func toCells(values []string) *[]interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return &cells
}
